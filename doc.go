// Package bcapture captures HTTP responses so their text can be rewritten before it is sent.
//
// # Overview
//
// Handlers write into a [ResponseWriter] that sits between them and the real response. Text
// output is held in memory, transformed by a [Pipeline] (by default an [EmailObfuscator] that
// turns "pinco@univaq.it" into "pinco[AT]univaq[DOT]it") and released with a Content-Length
// that matches the bytes actually sent.
//
// A minimal example:
//
//	mux := bcapture.NewServeMux()
//	mux.HandleFunc("GET /contact", func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) error {
//	    fmt.Fprint(w, "write to info@example.org")
//	    return nil
//	})
//
// # Channels
//
// A response has two output channels and a handler may acquire only one of them:
//
//   - [ResponseWriter.Text] returns a [TextWriter] that encodes characters in the charset
//     declared by the Content-Type header (UTF-8 when none is declared). Write on the
//     ResponseWriter itself goes through this channel.
//   - [ResponseWriter.Binary] returns a plain io.Writer for raw bytes.
//
// Acquiring the other channel afterwards fails with [ErrChannelAlreadyOpen].
//
// # Static Resources
//
// A [Classifier] matches the request path against a pattern (`\.html$` by default). For static
// resources both channels are buffered, so pages served as bytes are transformed too, as long
// as their media type is textual. For anything else only text is buffered and binary output is
// streamed straight to the client. See [PolicyFor].
//
// # Turning Transformation Off
//
// Handlers call [ResponseWriter.SetTransform] with false to release their output as it was
// written. Standard library handlers use [DisableTransform].
//
// # Error Handling
//
// Handlers return errors instead of writing error responses. As long as nothing reached the
// client the captured output is discarded and an error response is rendered, using the code of
// an [*Error] created with [NewError] or 500 otherwise. A [Logger] is informed either way.
//
//	return bcapture.NewError(bcapture.CodeNotFound, fmt.Errorf("page %s not found", name))
//
// # Middleware and Named Routes
//
// [ServeMux.Use] registers [Middleware] that wraps every route registered after it. Routes can be
// named and reversed into URLs:
//
//	mux.HandleFunc("GET /users/{id}", getUser, "get-user")
//	url, err := mux.Reverse("get-user", "123") // "/users/123"
//
// # Lower Level Use
//
// [Controller.Process] runs a handler against a [Capture] in front of any [Sink] and releases
// the result. [ToStd] turns a handler into an http.Handler processed by a given controller.
package bcapture
