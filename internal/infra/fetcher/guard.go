// Package fetcher downloads article pages and extracts their title and text.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"article-panel/internal/domain/entity"
)

// validateURL allows only http(s) URLs with a host. With denyPrivate set the
// host must resolve, and only to public addresses.
func validateURL(ctx context.Context, urlStr string, denyPrivate bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivate {
		return nil
	}

	addrs, err := entity.LookupHost(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: lookup %s: %v", ErrInvalidURL, host, err)
	}
	for _, addr := range addrs {
		if entity.IsPrivateAddr(addr) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, addr)
		}
	}
	return nil
}

// newDialer returns the dialer of the fetch transport. With denyPrivate set it
// refuses connections to non-public addresses, which also covers hosts whose
// DNS answer changed after validateURL.
func newDialer(denyPrivate bool) *net.Dialer {
	d := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if denyPrivate {
		d.Control = func(_, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return fmt.Errorf("%w: dial %s: %v", ErrInvalidURL, address, err)
			}
			if entity.IsPrivateAddr(ap.Addr()) {
				return fmt.Errorf("%w: dial %s", ErrPrivateIP, ap.Addr())
			}
			return nil
		}
	}
	return d
}
