package internal

import (
	"fmt"
	"strings"
)

// HandlerFunc is the signature for business handlers.
// Returning an *HTTPError answers with its status and code; any other error
// is reported as a 500 METHOD_HANDLER_ERROR.
type HandlerFunc func(rc *RequestContext) (*Response, error)

// RouteResult tells the router whether a route claimed the request.
type RouteResult struct {
	response *Response
	matched  bool
}

// NotMatched is the result of a route that does not own the request.
var NotMatched = RouteResult{}

// Matched wraps the response of a route that owned the request.
func Matched(resp *Response) RouteResult {
	return RouteResult{response: resp, matched: true}
}

// Response returns the response and whether the route matched.
func (r RouteResult) Response() (*Response, bool) {
	return r.response, r.matched
}

// segment is one compiled path segment: either a literal or a placeholder.
type segment struct {
	value string
	param bool
}

// Pattern is a compiled absolute path pattern such as
// "/plans/{planId}/days/{dayId}".
type Pattern struct {
	raw      string
	segments []segment
}

// CompilePattern parses an absolute path pattern.
func CompilePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("route pattern %q: must be absolute", raw)
	}

	parts := splitPath(raw)
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		if part == "" {
			return Pattern{}, fmt.Errorf("route pattern %q: empty segment", raw)
		}
		if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			if strings.ContainsAny(part, "{}") {
				return Pattern{}, fmt.Errorf("route pattern %q: malformed placeholder %q", raw, part)
			}
			segs = append(segs, segment{value: part})
			continue
		}

		name := part[1 : len(part)-1]
		if name == "" || strings.ContainsAny(name, "{}") {
			return Pattern{}, fmt.Errorf("route pattern %q: malformed placeholder %q", raw, part)
		}
		if _, dup := seen[name]; dup {
			return Pattern{}, fmt.Errorf("route pattern %q: duplicate placeholder %q", raw, name)
		}
		seen[name] = struct{}{}
		segs = append(segs, segment{value: name, param: true})
	}

	return Pattern{raw: raw, segments: segs}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
// Route tables are static, so a bad pattern is a startup bug.
func MustCompilePattern(raw string) Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether path matches the pattern and returns the captured
// placeholder values. Segment counts must be equal; literals compare
// case-sensitively; placeholders match exactly one non-empty segment.
func (p Pattern) Match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range p.segments {
		part := parts[i]
		if !seg.param {
			if part != seg.value {
				return nil, false
			}
			continue
		}
		if part == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string, len(p.segments))
		}
		params[seg.value] = part
	}

	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// splitPath splits an absolute path into segments. A single trailing slash
// is ignored; "/" has zero segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// OwnershipRule gates a route on the principal owning the row identified by
// a path parameter.
type OwnershipRule struct {
	Table string
	Param string
	Field string
}

// DefaultOwnerField is the owner column used when a rule does not name one.
const DefaultOwnerField = "user_id"

// RouteOption configures a Route.
type RouteOption func(*Route)

// WithOwnership requires the principal to own the row of table whose id is
// the value of path parameter param, using the "user_id" column.
func WithOwnership(table, param string) RouteOption {
	return WithOwnershipField(table, param, DefaultOwnerField)
}

// WithOwnershipField is WithOwnership with a custom owner column.
func WithOwnershipField(table, param, field string) RouteOption {
	return func(r *Route) {
		if field == "" {
			field = DefaultOwnerField
		}
		r.ownership = append(r.ownership, OwnershipRule{Table: table, Param: param, Field: field})
	}
}

// Public disables authentication for the route.
func Public() RouteOption {
	return func(r *Route) {
		r.public = true
	}
}

// Route is a route module: one absolute path pattern and its per-method
// handlers.
//
// Example:
//
//	r := ironlog.NewRoute("/plans/{planId}", ironlog.WithOwnership("workout_plans", "planId"))
//	r.GET(h.getPlan)
//	r.PATCH(h.updatePlan)
type Route struct {
	pattern   Pattern
	ownership []OwnershipRule
	handlers  methodTable
	public    bool
}

// NewRoute creates a route module for pattern. It panics if the pattern is
// malformed.
func NewRoute(pattern string, opts ...RouteOption) *Route {
	r := &Route{pattern: MustCompilePattern(pattern)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pattern returns the compiled pattern.
func (r *Route) Pattern() Pattern {
	return r.pattern
}

// Handle registers h for method m, replacing any previous handler.
func (r *Route) Handle(m Method, h HandlerFunc) *Route {
	if m < numMethods {
		r.handlers[m] = h
	}
	return r
}

// GET registers a handler for GET requests.
func (r *Route) GET(h HandlerFunc) *Route { return r.Handle(MethodGet, h) }

// POST registers a handler for POST requests.
func (r *Route) POST(h HandlerFunc) *Route { return r.Handle(MethodPost, h) }

// PUT registers a handler for PUT requests.
func (r *Route) PUT(h HandlerFunc) *Route { return r.Handle(MethodPut, h) }

// PATCH registers a handler for PATCH requests.
func (r *Route) PATCH(h HandlerFunc) *Route { return r.Handle(MethodPatch, h) }

// DELETE registers a handler for DELETE requests.
func (r *Route) DELETE(h HandlerFunc) *Route { return r.Handle(MethodDelete, h) }

// OPTIONS overrides the generated preflight response for this route.
func (r *Route) OPTIONS(h HandlerFunc) *Route { return r.Handle(MethodOptions, h) }
