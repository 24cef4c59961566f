package wellknown

import "strings"

// EstablishedFlow is the flow keyword attached to rules for
// connection-oriented protocols.
const EstablishedFlow = "flow:to_server, established;"

// Protocols that have no session state, so a flow keyword would never match.
var connectionless = map[string]struct{}{
	"udp":  {},
	"icmp": {},
}

// NormalizeProtocol returns the lower-cased protocol name used in rules.
func NormalizeProtocol(protocol string) string {
	return strings.ToLower(strings.TrimSpace(protocol))
}

// IsConnectionless reports whether protocol is in the connectionless set.
func IsConnectionless(protocol string) bool {
	_, ok := connectionless[NormalizeProtocol(protocol)]
	return ok
}

// FlowOption returns the flow keyword for protocol, or "" for connectionless ones.
func FlowOption(protocol string) string {
	if IsConnectionless(protocol) {
		return ""
	}
	return EstablishedFlow
}
