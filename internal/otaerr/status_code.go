package otaerr

import (
	"errors"
	"net/http"
)

// HTTPStatusCodeError annotates err with the status code it should be
// answered with. A nil err stays nil.
func HTTPStatusCodeError(err error, httpStatusCode int) error {
	return HTTPStatusCodeErrorWithMessage(err, httpStatusCode, "")
}

// HTTPStatusCodeErrorWithMessage is like HTTPStatusCodeError but also sets
// the message shown to clients in place of err's own.
func HTTPStatusCodeErrorWithMessage(err error, httpStatusCode int, message string) error {
	if err == nil {
		return nil
	}

	if 600 <= httpStatusCode || httpStatusCode < 100 {
		httpStatusCode = http.StatusInternalServerError
	}

	return &httpStatusCodeError{
		err:            err,
		httpStatusCode: httpStatusCode,
		message:        message,
	}
}

type httpStatusCodeError struct {
	err            error
	httpStatusCode int
	message        string
}

func (e *httpStatusCodeError) Error() string {
	if e.err == nil {
		return ""
	}

	return e.err.Error()
}

func (e *httpStatusCodeError) Unwrap() error {
	return e.err
}

func HTTPStatusCode(err error) int {
	hscerr := &httpStatusCodeError{}
	if errors.As(err, &hscerr) {
		return hscerr.httpStatusCode
	}

	return http.StatusInternalServerError
}

// Message is what a client gets told about err. Errors that were never
// annotated are internal, so their text is withheld.
func Message(err error) string {
	hscerr := &httpStatusCodeError{}
	if errors.As(err, &hscerr) {
		if hscerr.message != "" {
			return hscerr.message
		}

		if hscerr.httpStatusCode < http.StatusInternalServerError {
			return hscerr.Error()
		}
	}

	return "Internal server error"
}
