// Package csp builds Content-Security-Policy header values and carries the
// per-request script nonce through a context.
package csp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Source expressions used by the policies in this package.
const (
	Self         = "'self'"
	None         = "'none'"
	UnsafeInline = "'unsafe-inline'"
)

// directiveOrder fixes the order of directives in the built header.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Policy is a fluent builder for a Content-Security-Policy.
// A Policy is not safe for concurrent use.
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

// Directive sets the sources of a directive, replacing earlier ones.
// Directives outside the known set are ignored by Build.
func (p *Policy) Directive(name string, sources ...string) *Policy {
	p.directives[name] = sources
	return p
}

func (p *Policy) DefaultSrc(sources ...string) *Policy { return p.Directive("default-src", sources...) }
func (p *Policy) ScriptSrc(sources ...string) *Policy  { return p.Directive("script-src", sources...) }
func (p *Policy) StyleSrc(sources ...string) *Policy   { return p.Directive("style-src", sources...) }
func (p *Policy) ImgSrc(sources ...string) *Policy     { return p.Directive("img-src", sources...) }
func (p *Policy) ConnectSrc(sources ...string) *Policy { return p.Directive("connect-src", sources...) }
func (p *Policy) FormAction(sources ...string) *Policy { return p.Directive("form-action", sources...) }
func (p *Policy) BaseURI(sources ...string) *Policy    { return p.Directive("base-uri", sources...) }
func (p *Policy) ObjectSrc(sources ...string) *Policy  { return p.Directive("object-src", sources...) }

func (p *Policy) FrameAncestors(sources ...string) *Policy {
	return p.Directive("frame-ancestors", sources...)
}

// ReportURI sets where browsers send violation reports.
func (p *Policy) ReportURI(uri string) *Policy { return p.Directive("report-uri", uri) }

// ReportOnly switches the policy between enforcing and report-only mode.
func (p *Policy) ReportOnly(enabled bool) *Policy {
	p.reportOnly = enabled
	return p
}

// Build returns the header value, or "" when no directive is set.
func (p *Policy) Build() string {
	parts := make([]string, 0, len(p.directives))
	for _, name := range directiveOrder {
		if sources := p.directives[name]; len(sources) > 0 {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy is sent under.
func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// PagePolicy is the policy of the server-rendered panel page. Scripts must
// carry the given nonce. Inline styles are allowed because the dialog is
// shown and hidden through its style attribute.
func PagePolicy(nonce string) *Policy {
	return NewPolicy().
		DefaultSrc(Self).
		ScriptSrc(NonceSource(nonce)).
		StyleSrc(Self, UnsafeInline).
		ImgSrc(Self, "data:").
		FrameAncestors(None).
		FormAction(Self).
		BaseURI(Self).
		ObjectSrc(None)
}

// StrictPolicy is the policy for JSON endpoints that render no content.
func StrictPolicy() *Policy {
	return NewPolicy().
		DefaultSrc(None).
		FrameAncestors(None).
		BaseURI(Self).
		FormAction(Self)
}

// NonceSource formats a nonce as a source expression.
func NonceSource(nonce string) string {
	return fmt.Sprintf("'nonce-%s'", nonce)
}

// NewNonce returns 16 random bytes, base64 encoded.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csp nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

type nonceKey struct{}

// WithNonce returns a context carrying nonce.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

// NonceFromContext returns the nonce stored by WithNonce, or "".
func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
