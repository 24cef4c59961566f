package engine

import (
	"regexp"
	"testing"
	"time"

	"fw-transfer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeBatchLabelFormat(t *testing.T) {
	fixed := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024/03/X追加", ChangeBatchLabel(fixed))
	assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/X追加$`), ChangeBatchLabel(time.Now()))
}

func TestNumberRulesAssignsSequences(t *testing.T) {
	rules, err := ExpandRules([]model.RawRequirementRow{
		row("tcp", "[10.0.0.1,10.0.0.2]", "[10.1.0.1]", "443"),
		row("udp", "[10.0.0.1]", "[10.1.0.5,10.1.0.6]", "53"),
	})
	require.NoError(t, err)

	now := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	records := NumberRules(rules, "123456789012", now, webIndex())
	require.Len(t, records, 4)

	for i, rec := range records {
		assert.Equal(t, i+1, rec.ItemNumber)
		assert.Equal(t, 1000000+rec.ItemNumber, rec.RuleID)
		assert.Equal(t, "2025/12/X追加", rec.ChangeBatchLabel)
		assert.Equal(t, `"123456789012"`, rec.AccountIDField)
	}

	// Order comes from the raw addresses, substitution happens afterwards.
	assert.Equal(t, "$WEB", records[0].SourceIP)
	assert.Equal(t, "$WEB", records[1].SourceIP)
	assert.Equal(t, "$WEB", records[2].SourceIP)
	assert.Equal(t, "[10.1.0.5,10.1.0.6]", records[2].DestinationIP)
	assert.Equal(t, "tcp", records[0].Protocol)
	assert.Equal(t, "udp", records[2].Protocol)
}

func TestNumberRulesWithoutResolver(t *testing.T) {
	rules := []model.ExpandedRule{{Action: model.Alert, SourceIP: "[10.0.0.1]"}}
	records := NumberRules(rules, "1", time.Now(), nil)
	require.Len(t, records, 1)
	assert.Equal(t, "[10.0.0.1]", records[0].SourceIP)
	assert.Equal(t, FirstRuleID, records[0].RuleID)
}

func TestFinalRuleRecordValuesOrder(t *testing.T) {
	rec := model.FinalRuleRecord{
		ItemNumber:       3,
		RuleID:           1000003,
		ChangeBatchLabel: "2025/01/X追加",
		ExpandedRule: model.ExpandedRule{
			Action: model.Pass, Protocol: "tcp", FlowOption: "f", SourceIP: "$A", DestinationIP: "$B", DestinationPort: "443",
		},
		AccountIDField: `"1"`,
	}
	assert.Equal(t, []any{3, 1000003, "2025/01/X追加", "pass", "tcp", "f", "$A", "$B", 443, `"1"`}, rec.Values())

	rec.DestinationPort = "1024-2048"
	assert.Equal(t, "1024-2048", rec.Values()[8])

	for _, port := range []string{"080", "+80", " 80"} {
		rec.DestinationPort = port
		assert.Equal(t, port, rec.Values()[8], "port %q should stay text", port)
	}
}
