package apptest

import (
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bcapture"
)

// CallHandler processes req with handler through a default [bcapture.Controller] and returns
// the recorded response, as the client would have received it.
func CallHandler(handler bcapture.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctrl := bcapture.NewController(bcapture.ControllerConfig{})

	if err := ctrl.Process(req.Context(), bcapture.NewSink(rec, bcapture.UTF8), req, handler); err != nil {
		panic("apptest: handler returned error: " + err.Error())
	}

	return rec
}
