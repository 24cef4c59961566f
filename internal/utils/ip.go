package utils

import (
	"strings"
)

// SplitAddressGroup returns the address literals of a group written as
// "[a,b,c]" or as a single bare address. Empty entries are dropped.
func SplitAddressGroup(group string) []string {
	trimmed := strings.NewReplacer("[", "", "]", "").Replace(group)
	return splitNonEmpty(trimmed, ",")
}

// FormatAddressGroup renders addresses in the bracketed form used by the
// rule list.
func FormatAddressGroup(addrs []string) string {
	return "[" + strings.Join(addrs, ",") + "]"
}

// SplitAddressList splits a newline separated list of address literals, as
// stored in an IP set variable cell.
func SplitAddressList(list string) []string {
	return splitNonEmpty(list, "\n")
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
