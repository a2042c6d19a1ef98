// Package apptest provides test helpers for app based servers.
//
// It constructs the identical DI graph as [app.New] but uses [fxtest.App] which fails the
// test immediately on DI errors.
//
// Example:
//
//	apptest.SetEnv(t, 18081)
//	a := apptest.New(t, routing)
//	a.RequireStart()
//	t.Cleanup(a.RequireStop)
package apptest

import (
	"testing"

	"github.com/advdv/bcapture/app"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing apps.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [app.New].
func New(t testing.TB, routing any, opts ...app.Option) *App {
	return &App{App: fxtest.New(t, app.FxOptions(routing, opts...)...)}
}
