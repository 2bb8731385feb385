package panel

import (
	"html/template"
	"strings"
	"sync"
)

// Dialog display styles, mirroring the CSS display property of the dialog element.
const (
	DisplayVisible = "flex"
	DisplayHidden  = "none"
)

// Page is an in-memory UI surface implementing Dialog, ResultsContainer,
// Notifier and Browser. It is safe for concurrent use.
//
// Alerts and the pending external URL are one-shot: TakeFlash hands them to
// whoever renders the page and resets them.
type Page struct {
	mu            sync.Mutex
	dialogVisible bool
	blocks        []template.HTML
	alerts        []string
	externalURL   string
}

// PageState is a point-in-time copy of a Page.
type PageState struct {
	DialogVisible bool
	Blocks        []template.HTML
	Alerts        []string
	ExternalURL   string
}

// NewPage returns a page with the dialog hidden and an empty results container.
func NewPage() *Page {
	return &Page{}
}

// Show makes the dialog visible.
func (p *Page) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialogVisible = true
}

// Hide hides the dialog.
func (p *Page) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialogVisible = false
}

// Replace replaces all rendered blocks.
func (p *Page) Replace(blocks []template.HTML) {
	cp := make([]template.HTML, len(blocks))
	copy(cp, blocks)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocks = cp
}

// Clear empties the results container.
func (p *Page) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocks = nil
}

// Alert queues a message for the user.
func (p *Page) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
}

// Open records url to be opened in a new browsing context on the next render.
func (p *Page) Open(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.externalURL = url
}

// Snapshot returns the current state without consuming alerts.
func (p *Page) Snapshot() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// TakeFlash returns the current state and clears pending alerts and the
// pending external URL.
func (p *Page) TakeFlash() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.stateLocked()
	p.alerts = nil
	p.externalURL = ""
	return st
}

func (p *Page) stateLocked() PageState {
	st := PageState{
		DialogVisible: p.dialogVisible,
		ExternalURL:   p.externalURL,
	}
	if len(p.blocks) > 0 {
		st.Blocks = make([]template.HTML, len(p.blocks))
		copy(st.Blocks, p.blocks)
	}
	if len(p.alerts) > 0 {
		st.Alerts = make([]string, len(p.alerts))
		copy(st.Alerts, p.alerts)
	}
	return st
}

// DialogDisplay returns the display style for the dialog.
func (s PageState) DialogDisplay() string {
	if s.DialogVisible {
		return DisplayVisible
	}
	return DisplayHidden
}

// ResultsHTML joins the rendered blocks into the container's inner HTML.
func (s PageState) ResultsHTML() template.HTML {
	var sb strings.Builder
	for _, b := range s.Blocks {
		sb.WriteString(string(b))
	}
	// #nosec G203 -- concatenation of blocks produced by RenderBlock
	return template.HTML(sb.String())
}
