package engine

import (
	"log/slog"

	"fw-transfer/internal/model"
	"fw-transfer/internal/utils"

	"github.com/samber/lo"
)

// AddressResolver maps an address group to the text written in a rule.
type AddressResolver interface {
	Resolve(group string) string
}

// VariableIndex maps single address literals to IP set variable names.
type VariableIndex struct {
	vars map[string]string
}

// NewVariableIndex binds every address of every definition to its variable.
// When two variables list the same address, the later definition wins.
func NewVariableIndex(defs []model.VariableDefinition, logger *slog.Logger) *VariableIndex {
	if logger == nil {
		logger = slog.Default()
	}
	index := &VariableIndex{vars: make(map[string]string)}
	for _, def := range defs {
		for _, addr := range utils.SplitAddressList(def.Addresses) {
			if prev, ok := index.vars[addr]; ok && prev != def.Name {
				logger.Warn("Address rebound to another variable", "address", addr, "previous", prev, "variable", def.Name)
			}
			index.vars[addr] = def.Name
		}
	}
	return index
}

func (ix *VariableIndex) Len() int {
	return len(ix.vars)
}

func (ix *VariableIndex) Lookup(addr string) (string, bool) {
	name, ok := ix.vars[addr]
	return name, ok
}

// Resolve returns "$NAME" when every address in group belongs to the same
// variable. Otherwise the group is returned in bracketed form, unchanged
// apart from whitespace.
func (ix *VariableIndex) Resolve(group string) string {
	addrs := utils.SplitAddressGroup(group)
	if len(addrs) == 0 {
		return utils.FormatAddressGroup(nil)
	}

	names := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		name, ok := ix.vars[addr]
		if !ok {
			return utils.FormatAddressGroup(addrs)
		}
		names = append(names, name)
	}
	if len(lo.Uniq(names)) != 1 {
		return utils.FormatAddressGroup(addrs)
	}
	return "$" + names[0]
}
