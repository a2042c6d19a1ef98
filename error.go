package bcapture

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrChannelAlreadyOpen is returned when a second output channel is acquired on a response.
	ErrChannelAlreadyOpen = errors.New("output channel already opened")

	// ErrNotBuffered is returned when finalizing a capture whose output was never buffered.
	ErrNotBuffered = errors.New("output was not buffered")

	// ErrEncoding is returned when text can not be encoded or decoded in the declared charset.
	ErrEncoding = errors.New("character encoding failed")

	// ErrAlreadyCommitted is returned when headers are mutated after the response was committed.
	ErrAlreadyCommitted = errors.New("response already committed")

	// ErrBufferFull is returned when a buffered write would exceed the configured limit.
	ErrBufferFull = errors.New("buffer is full")
)

// Code is an error code that mirrors the http status codes. Handlers can return an [*Error] with
// one of these codes to have the outer layer render a specific status.
type Code int

const (
	CodeUnknown             Code = 0
	CodeBadRequest          Code = http.StatusBadRequest           // RFC 9110, 15.5.1
	CodeUnauthorized        Code = http.StatusUnauthorized         // RFC 9110, 15.5.2
	CodeForbidden           Code = http.StatusForbidden            // RFC 9110, 15.5.4
	CodeNotFound            Code = http.StatusNotFound             // RFC 9110, 15.5.5
	CodeMethodNotAllowed    Code = http.StatusMethodNotAllowed     // RFC 9110, 15.5.6
	CodeRequestTimeout      Code = http.StatusRequestTimeout       // RFC 9110, 15.5.9
	CodeUnsupportedMedia    Code = http.StatusUnsupportedMediaType // RFC 9110, 15.5.16
	CodeInternalServerError Code = http.StatusInternalServerError  // RFC 9110, 15.6.1
	CodeBadGateway          Code = http.StatusBadGateway           // RFC 9110, 15.6.3
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable   // RFC 9110, 15.6.4
	CodeInsufficientStorage Code = http.StatusInsufficientStorage  // RFC 4918, 11.5
)

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise. A full buffer maps to [CodeInsufficientStorage].
func CodeOf(err error) Code {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Code()
	}

	if errors.Is(err, ErrBufferFull) {
		return CodeInsufficientStorage
	}

	return CodeUnknown
}
