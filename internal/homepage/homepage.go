// Package homepage implements a demo page showing how captured output is rewritten on the fly.
package homepage

import (
	"context"
	"html/template"
	"net/http"

	"github.com/advdv/bcapture"
	"github.com/cockroachdb/errors"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

// Paragraphs are the body of the demo page.
var Paragraphs = []string{
	"Hello!",
	"My email address is pinco.pallino@univaq.it or pinco.pallino@di.univaq.it, and NOT pincopallino@a.b.c.d.com.",
	"This text @.,.,. is not modified!.",
}

// Handle renders the demo page. Email filtering is on unless the request asks for filter=off.
func Handle(_ context.Context, w bcapture.ResponseWriter, r *http.Request) error {
	w.SetTransform(r.URL.Query().Get("filter") != "off")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := page.Execute(w, struct {
		Title      string
		Paragraphs []string
	}{"Example page", Paragraphs}); err != nil {
		return errors.Wrap(err, "render homepage")
	}

	return nil
}
