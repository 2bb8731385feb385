// Package panel serves the article panel as a server-rendered page. Every form
// on the page posts to an action handler that calls the panel controller and
// redirects back to the page, which is then rendered from the controller's
// Page state.
package panel

import "html/template"

// Element ids of the page.
const (
	IDDialog  = "url-dialog"
	IDURL     = "article-url"
	IDSearch  = "search-bar"
	IDResults = "article-results"
)

// elementIDs hands the ids to the template.
type elementIDs struct {
	Dialog, URL, Search, Results string
}

var pageIDs = elementIDs{Dialog: IDDialog, URL: IDURL, Search: IDSearch, Results: IDResults}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Article Panel</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.modal { position: fixed; inset: 0; align-items: center; justify-content: center; background: rgba(0,0,0,.4); }
.modal form { background: #fff; padding: 1.5rem; border-radius: 6px; }
.article { border-bottom: 1px solid #ddd; padding: .5rem 0; }
</style>
</head>
<body>
<h1>Article Panel</h1>
<nav>
<form method="post" action="/dialog/open"><button type="submit" id="open-dialog">Submit article URL</button></form>
<form method="post" action="/external"><button type="submit" id="open-external">Open analyzer</button></form>
</nav>

<div id="{{.IDs.Dialog}}" class="modal" style="display: {{.DialogDisplay}}">
<form method="post" action="/submit-url">
<label for="{{.IDs.URL}}">Article URL</label>
<input type="url" id="{{.IDs.URL}}" name="url" required>
<button type="submit">Submit</button>
<button type="submit" formaction="/dialog/close" formnovalidate>Close</button>
</form>
</div>

<form method="post" action="/search" id="search-form">
<input type="search" id="{{.IDs.Search}}" name="query" placeholder="Search articles">
<button type="submit">Search</button>
<button type="submit" formaction="/clear">Clear</button>
</form>

{{template "results" .}}

{{range .Alerts}}<dialog class="alert" open><p>{{.}}</p><form method="dialog"><button>OK</button></form></dialog>
{{end}}
{{- with .ExternalURL}}
<a id="external-link" href="{{.}}" target="_blank" rel="noopener">Open in a new window</a>
<script nonce="{{$.Nonce}}">window.open({{.}}, "_blank");</script>
{{- end}}
</body>
</html>
`))

var _ = template.Must(pageTemplate.New("results").Parse(
	`<div id="{{.IDs.Results}}">{{.ResultsHTML}}</div>`))
