// Package app wires a bcapture server: configuration from the environment, structured logging,
// tracing, prometheus metrics and a static resource source, assembled with fx.
//
// A minimal server:
//
//	func main() {
//	    app.New(func(m *app.Mux, src app.Source) {
//	        m.HandleFunc("GET /", app.StaticHandler(src))
//	    }).Run()
//	}
//
// Every route registered on the [Mux] is processed by a [bcapture.Controller] configured from
// the BC_* environment variables (see [Environment]), so email addresses in text responses and
// in static pages are obfuscated before they reach the client. Handlers can get a
// trace-correlated logger with [Log].
package app
