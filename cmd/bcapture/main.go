// Command bcapture serves the demo homepage and a directory (or S3 bucket) of static pages,
// obfuscating email addresses in everything it sends.
package main

import (
	"github.com/advdv/bcapture/app"
	"github.com/advdv/bcapture/internal/homepage"
)

func main() {
	app.New(func(m *app.Mux, src app.Source) {
		m.HandleFunc("GET /{$}", homepage.Handle, "homepage")
		m.HandleFunc("GET /", app.StaticHandler(src))
	}).Run()
}
