package internal

import (
	"net/http"
	"strings"
)

// Method is one of the HTTP methods a route can register a handler for.
type Method uint8

// Supported methods, in the order they are advertised in preflight responses.
const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodOptions

	numMethods
)

var methodNames = [numMethods]string{
	MethodGet:     http.MethodGet,
	MethodPost:    http.MethodPost,
	MethodPut:     http.MethodPut,
	MethodPatch:   http.MethodPatch,
	MethodDelete:  http.MethodDelete,
	MethodOptions: http.MethodOptions,
}

// String returns the canonical upper-case method name.
func (m Method) String() string {
	if m >= numMethods {
		return "UNKNOWN"
	}
	return methodNames[m]
}

// ParseMethod maps a request method to a Method.
// Returns false for methods the router does not dispatch (HEAD, TRACE, ...).
func ParseMethod(s string) (Method, bool) {
	for m, name := range methodNames {
		if name == s {
			return Method(m), true
		}
	}
	return 0, false
}

// methodTable is a fixed-size handler table keyed by Method.
// A nil entry means the route does not handle that method.
type methodTable [numMethods]HandlerFunc

func (t *methodTable) lookup(m Method) HandlerFunc {
	if m >= numMethods {
		return nil
	}
	return t[m]
}

// allowed returns the comma-separated list of registered methods, always
// including OPTIONS.
func (t *methodTable) allowed() string {
	names := make([]string, 0, numMethods)
	for m := range numMethods {
		if t[m] != nil || m == MethodOptions {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, ", ")
}
