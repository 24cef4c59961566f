package engine

import (
	"fmt"
	"sort"

	"fw-transfer/internal/model"
	"fw-transfer/pkg/wellknown"

	"github.com/samber/lo"
)

type groupKey struct {
	src, dst, proto string
}

func keyOf(r model.ExpandedRule) groupKey {
	return groupKey{src: r.SourceIP, dst: r.DestinationIP, proto: r.Protocol}
}

func (k groupKey) less(o groupKey) bool {
	if k.src != o.src {
		return k.src < o.src
	}
	if k.dst != o.dst {
		return k.dst < o.dst
	}
	return k.proto < o.proto
}

// ExpandRules turns every request row into an alert rule and a pass rule,
// ordered by source, destination and protocol with each alert directly
// followed by its pass.
func ExpandRules(rows []model.RawRequirementRow) ([]model.ExpandedRule, error) {
	base := lo.Map(rows, func(r model.RawRequirementRow, _ int) model.ExpandedRule {
		proto := wellknown.NormalizeProtocol(r.Get(model.ColProtocol))
		return model.ExpandedRule{
			Protocol:        proto,
			FlowOption:      wellknown.FlowOption(proto),
			SourceIP:        r.Get(model.ColSourceIP),
			DestinationIP:   r.Get(model.ColDestinationIP),
			DestinationPort: r.Get(model.ColPortNumber),
		}
	})

	expanded := make([]model.ExpandedRule, 0, 2*len(base))
	for _, action := range []model.Action{model.Alert, model.Pass} {
		for _, r := range base {
			r.Action = action
			expanded = append(expanded, r)
		}
	}

	sort.SliceStable(expanded, func(i, j int) bool {
		return keyOf(expanded[i]).less(keyOf(expanded[j]))
	})

	result := make([]model.ExpandedRule, 0, len(expanded))
	for start := 0; start < len(expanded); {
		end := start + 1
		for end < len(expanded) && keyOf(expanded[end]) == keyOf(expanded[start]) {
			end++
		}
		paired, err := pairGroup(expanded[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, paired...)
		start = end
	}
	return result, nil
}

// pairGroup interleaves the alert and pass rules of one group positionally.
func pairGroup(group []model.ExpandedRule) ([]model.ExpandedRule, error) {
	alerts := lo.Filter(group, func(r model.ExpandedRule, _ int) bool { return r.Action == model.Alert })
	passes := lo.Filter(group, func(r model.ExpandedRule, _ int) bool { return r.Action == model.Pass })
	if len(alerts) != len(passes) {
		k := keyOf(group[0])
		return nil, fmt.Errorf("%w: %s -> %s (%s) has %d alert and %d pass rules",
			model.ErrUnpairedRule, k.src, k.dst, k.proto, len(alerts), len(passes))
	}

	out := make([]model.ExpandedRule, 0, len(group))
	for i := range alerts {
		out = append(out, alerts[i], passes[i])
	}
	return out, nil
}
