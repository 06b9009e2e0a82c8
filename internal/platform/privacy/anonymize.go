// Package privacy masks personal data before it reaches logs.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP keeps only the network part of an address: the /24 for IPv4
// ("192.168.1.47" -> "192.168.1.0") and the /48 for IPv6. It returns
// "unknown" for an empty value and "invalid" when ip does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// AnonymizeRemoteAddr is AnonymizeIP for a host:port pair such as
// http.Request.RemoteAddr. A bare address without a port is accepted too.
func AnonymizeRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return AnonymizeIP(host)
}
