package model

import (
	"strconv"
	"strings"
)

type Action string // "alert", "pass"

const (
	Alert Action = "alert"
	Pass  Action = "pass"
)

// AdditionMarker is the Action value the request sheet uses for new rules.
const AdditionMarker = "追加/Add"

// Source sheet column names, after trimming.
const (
	ColAction        = "Action"
	ColProtocol      = "Protocol"
	ColSourceIP      = "Source IP address"
	ColDestinationIP = "Destination IP address"
	ColPortNumber    = "Port number"
)

// RawRequirementRow is one data row of the request sheet keyed by trimmed
// header name.
type RawRequirementRow map[string]string

func (r RawRequirementRow) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// VariableDefinition is one row of an IP set variables table.
type VariableDefinition struct {
	Name      string
	Addresses string // newline separated literals
}

type ExpandedRule struct {
	Action          Action
	Protocol        string
	FlowOption      string
	SourceIP        string
	DestinationIP   string
	DestinationPort string
}

type FinalRuleRecord struct {
	ItemNumber       int
	RuleID           int
	ChangeBatchLabel string
	ExpandedRule
	AccountIDField string
}

// Values returns the record in sheet column order.
func (r FinalRuleRecord) Values() []any {
	return []any{
		r.ItemNumber,
		r.RuleID,
		r.ChangeBatchLabel,
		string(r.Action),
		r.Protocol,
		r.FlowOption,
		r.SourceIP,
		r.DestinationIP,
		portValue(r.DestinationPort),
		r.AccountIDField,
	}
}

// portValue keeps single ports numeric so the sheet does not flag them as
// numbers stored as text. Text that would not round-trip, like "080", stays text.
func portValue(port string) any {
	if n, err := strconv.Atoi(port); err == nil && strconv.Itoa(n) == port {
		return n
	}
	return port
}
