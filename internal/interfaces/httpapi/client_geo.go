package httpapi

import (
	"net/http"
	"net/netip"
	"strings"
)

const unknownCountry = "ZZ"

var (
	clientIPHeaders      = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}
	clientCountryHeaders = []string{"Fly-Client-Country", "CF-IPCountry", "X-Vercel-IP-Country", "CloudFront-Viewer-Country"}
)

// requestOrigin is the caller address and country as reported by the edge
// proxy in front of the API.
type requestOrigin struct {
	IP      string
	Country string
}

func originOf(r *http.Request) requestOrigin {
	origin := requestOrigin{Country: unknownCountry}
	for _, header := range clientIPHeaders {
		if ip, ok := parseClientIP(r.Header.Get(header)); ok {
			origin.IP = ip
			break
		}
	}
	if origin.IP == "" {
		origin.IP, _ = parseClientIP(r.RemoteAddr)
	}
	for _, header := range clientCountryHeaders {
		if code, ok := parseCountry(r.Header.Get(header)); ok {
			origin.Country = code
			break
		}
	}
	return origin
}

// parseClientIP takes the first hop of a forwarded list, with or without port.
func parseClientIP(raw string) (string, bool) {
	value, _, _ := strings.Cut(raw, ",")
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if addrPort, err := netip.ParseAddrPort(value); err == nil {
		return addrPort.Addr().Unmap().String(), true
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

func parseCountry(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "", false
	}
	return code, true
}
