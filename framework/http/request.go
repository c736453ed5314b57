package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/km-arc/go-mvc/framework/http/validation"
)

// Request wraps *http.Request with the lookups handlers usually need.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON request body into v.
func (req *Request) Bind(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(req.raw.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(body, v)
}

// Validate binds the JSON body into v and checks its validate tags. A body
// that cannot be decoded is reported under "_".
//
//	var body struct {
//	    Name string `json:"name" validate:"required"`
//	}
//	if errs := req.Validate(&body); errs != nil {
//	    res.ValidationError(errs)
//	    return
//	}
func (req *Request) Validate(v any) *validation.Errors {
	if err := req.Bind(v); err != nil {
		return &validation.Errors{Bag: map[string][]string{"_": {err.Error()}}}
	}
	return validation.Struct(v)
}

// ── Parameters ───────────────────────────────────────────────────────────────

// Params returns all request parameters (query string and form body).
// Parse errors leave whatever could be parsed.
func (req *Request) Params() url.Values {
	_ = req.raw.ParseForm()
	return req.raw.Form
}

// Param returns every value of a request parameter joined with ",", or ""
// when the parameter is absent.
func (req *Request) Param(name string) string {
	return strings.Join(req.Params()[name], ",")
}

// LastParam returns the values of the parameter that sorts last by name,
// joined with ",". It returns "" when the request has no parameters.
func (req *Request) LastParam() string {
	params := req.Params()
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(params[names[len(names)-1]], ",")
}

// Input returns a single parameter value, or the fallback when it is empty.
func (req *Request) Input(key string, fallback ...string) string {
	_ = req.raw.ParseForm()
	v := req.raw.FormValue(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Has returns true if the key is present and non-empty.
func (req *Request) Has(key string) bool {
	return req.Input(key) != ""
}

// ── Request line & headers ───────────────────────────────────────────────────

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// IP returns the client address (respects the RealIP middleware).
func (req *Request) IP() string { return req.raw.RemoteAddr }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the request sends or expects JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}
