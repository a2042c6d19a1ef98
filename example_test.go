package bcapture_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bcapture"
	"github.com/cockroachdb/errors"
)

func Example() {
	mux := bcapture.NewServeMux()

	mux.HandleFunc("GET /people/{id}", func(_ context.Context, w bcapture.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		if id == "" {
			return bcapture.NewError(bcapture.CodeBadRequest, errors.New("missing id"))
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(map[string]string{
			"id":    id,
			"email": "pinco@univaq.it",
		})
	}, "get-person")

	// Generate URL by route name
	url, _ := mux.Reverse("get-person", "123")
	fmt.Println("URL:", url)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/people/42", nil)
	mux.ServeHTTP(rec, req)

	fmt.Println("Status:", rec.Code)
	fmt.Print("Body: ", rec.Body.String())
	fmt.Println("Length:", rec.Header().Get("Content-Length"))
	// Output:
	// URL: /people/123
	// Status: 200
	// Body: {"email":"pinco[AT]univaq[DOT]it","id":"42"}
	// Length: 45
}

func ExampleNewError() {
	mux := bcapture.NewServeMux()

	mux.HandleFunc("GET /protected", func(_ context.Context, w bcapture.ResponseWriter, r *http.Request) error {
		token := r.Header.Get("Authorization")
		if token == "" {
			return bcapture.NewError(bcapture.CodeUnauthorized, errors.New("missing token"))
		}
		if token != "Bearer secret" {
			return bcapture.NewError(bcapture.CodeForbidden, errors.New("invalid token"))
		}
		fmt.Fprint(w, "welcome")
		return nil
	})

	// Request without token
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	mux.ServeHTTP(rec, req)
	fmt.Println("No token:", rec.Code)

	// Request with invalid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	mux.ServeHTTP(rec, req)
	fmt.Println("Bad token:", rec.Code)

	// Request with valid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret")
	mux.ServeHTTP(rec, req)
	fmt.Println("Valid token:", rec.Code)
	// Output:
	// No token: 401
	// Bad token: 403
	// Valid token: 200
}

func ExampleServeMux_Use() {
	mux := bcapture.NewServeMux()

	mux.Use(func(next bcapture.Handler) bcapture.Handler {
		return bcapture.HandlerFunc(func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) error {
			w.Header().Set("X-Request-ID", "req-123")
			return next.ServeCapture(ctx, w, r)
		})
	})

	mux.HandleFunc("GET /ping", func(_ context.Context, w bcapture.ResponseWriter, _ *http.Request) error {
		fmt.Fprint(w, "pong")
		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	mux.ServeHTTP(rec, req)

	fmt.Println("Body:", rec.Body.String())
	fmt.Println("Request ID:", rec.Header().Get("X-Request-ID"))
	// Output:
	// Body: pong
	// Request ID: req-123
}

func ExampleResponseWriter_SetTransform() {
	mux := bcapture.NewServeMux()

	mux.HandleFunc("GET /contact", func(_ context.Context, w bcapture.ResponseWriter, r *http.Request) error {
		fmt.Fprint(w, "write to info@example.org")
		w.SetTransform(r.URL.Query().Get("filter") != "off")
		return nil
	})

	for _, target := range []string{"/contact", "/contact?filter=off"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		fmt.Println(rec.Body.String())
	}
	// Output:
	// write to info[AT]example[DOT]org
	// write to info@example.org
}

func ExampleResponseWriter_Binary() {
	mux := bcapture.NewServeMux()

	// binary output of static resources is captured and transformed when it holds text.
	mux.HandleFunc("GET /{file}", func(_ context.Context, w bcapture.ResponseWriter, _ *http.Request) error {
		bw, err := w.Binary()
		if err != nil {
			return err
		}

		_, err = bw.Write([]byte("<p>info@example.org</p>"))
		return err
	})

	for _, target := range []string{"/index.html", "/download.bin"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		fmt.Println(rec.Body.String())
	}
	// Output:
	// <p>info[AT]example[DOT]org</p>
	// <p>info@example.org</p>
}

func ExampleNewController() {
	cls, _ := bcapture.NewClassifier(`\.(html|txt)$`)
	ctrl := bcapture.NewController(bcapture.ControllerConfig{
		Classifier: cls,
		Pipeline: bcapture.Pipeline{
			bcapture.NewEmailObfuscator(" (at) ", " (dot) ").Rule(),
		},
	})

	mux := bcapture.NewServeMuxWith(ctrl, http.NewServeMux(), bcapture.NewReverser())
	mux.HandleFunc("GET /info", func(_ context.Context, w bcapture.ResponseWriter, _ *http.Request) error {
		fmt.Fprint(w, "me@example.com")
		return nil
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	fmt.Println(rec.Body.String())
	// Output:
	// me (at) example (dot) com
}

func ExampleServeMux_Reverse() {
	mux := bcapture.NewServeMux()

	mux.HandleFunc("GET /users/{id}", func(context.Context, bcapture.ResponseWriter, *http.Request) error {
		return nil
	}, "get-user")

	mux.HandleFunc("GET /users/{userId}/posts/{postId}", func(context.Context, bcapture.ResponseWriter, *http.Request) error {
		return nil
	}, "get-user-post")

	url1, _ := mux.Reverse("get-user", "42")
	url2, _ := mux.Reverse("get-user-post", "42", "101")

	fmt.Println(url1)
	fmt.Println(url2)
	// Output:
	// /users/42
	// /users/42/posts/101
}

func ExampleCodeOf() {
	err := bcapture.NewError(bcapture.CodeNotFound, errors.New("user not found"))
	fmt.Println("Code:", bcapture.CodeOf(err))

	// Wrapped errors preserve the code
	wrapped := fmt.Errorf("handler failed: %w", err)
	fmt.Println("Wrapped code:", bcapture.CodeOf(wrapped))

	plainErr := errors.New("something went wrong")
	fmt.Println("Plain error code:", bcapture.CodeOf(plainErr))

	fmt.Println("Buffer full code:", bcapture.CodeOf(errors.Wrap(bcapture.ErrBufferFull, "write")))
	// Output:
	// Code: 404
	// Wrapped code: 404
	// Plain error code: 0
	// Buffer full code: 507
}
