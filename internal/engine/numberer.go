package engine

import (
	"time"

	"fw-transfer/internal/model"
)

const (
	// FirstRuleID is the sid given to the first rule of every run.
	FirstRuleID = 1000001
	batchSuffix = "/X追加"
)

// ChangeBatchLabel formats the history column value for rules added at t.
func ChangeBatchLabel(t time.Time) string {
	return t.Format("2006/01") + batchSuffix
}

// NumberRules assigns item numbers, rule IDs, the batch label and the
// account field, then substitutes address variables. Ordering is fixed
// before substitution, so resolution never changes it.
func NumberRules(rules []model.ExpandedRule, accountID string, now time.Time, resolver AddressResolver) []model.FinalRuleRecord {
	label := ChangeBatchLabel(now)
	account := `"` + accountID + `"`

	records := make([]model.FinalRuleRecord, len(rules))
	for i, r := range rules {
		records[i] = model.FinalRuleRecord{
			ItemNumber:       i + 1,
			RuleID:           FirstRuleID + i,
			ChangeBatchLabel: label,
			ExpandedRule:     r,
			AccountIDField:   account,
		}
	}

	if resolver == nil {
		return records
	}
	for i := range records {
		records[i].SourceIP = resolver.Resolve(records[i].SourceIP)
		records[i].DestinationIP = resolver.Resolve(records[i].DestinationIP)
	}
	return records
}
