package entity

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// MaxURLLength bounds submitted article URLs.
const MaxURLLength = 2048

// blockedPrefixes are ranges a submitted URL may not resolve to, besides
// loopback, private, link-local, multicast and unspecified addresses.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"), // NAT64
}

func urlError(msg string) error {
	return &ValidationError{Field: "url", Message: msg}
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host. With
// denyPrivate set the host is resolved and must not reach a non-public
// address. Failed lookups pass; the fetch reports them.
func ValidateURL(ctx context.Context, rawURL string, denyPrivate bool) error {
	switch {
	case rawURL == "":
		return urlError("url is required")
	case len(rawURL) > MaxURLLength:
		return urlError(fmt.Sprintf("url must not exceed %d characters", MaxURLLength))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return urlError("invalid url: " + err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return urlError("url must use http or https scheme")
	}
	if u.Hostname() == "" {
		return urlError("url must have a valid host")
	}
	if !denyPrivate {
		return nil
	}

	addrs, err := LookupHost(ctx, u.Hostname())
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if IsPrivateAddr(addr) {
			return urlError("url cannot point to private network")
		}
	}
	return nil
}

// LookupHost resolves host to addresses. IP literals are returned as-is.
func LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

// IsPrivateAddr reports whether addr is not publicly routable. IPv4-mapped
// IPv6 addresses are judged by their IPv4 form.
func IsPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() {
		return true
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ValidateBiasRating checks that a rating lies within [MinBiasRating, MaxBiasRating].
func ValidateBiasRating(rating int) error {
	if rating < MinBiasRating || rating > MaxBiasRating {
		return &ValidationError{
			Field:   "bias_rating",
			Message: fmt.Sprintf("must be between %d and %d", MinBiasRating, MaxBiasRating),
		}
	}
	return nil
}
