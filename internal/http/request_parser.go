package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quickspese/internal/core"
	"quickspese/internal/nlp"
)

// maxBodyBytes bounds command request bodies.
const maxBodyBytes = 8 << 10

// ErrBodyTooLarge is returned when a request body exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseFilters builds QueryFilters from the query string of GET /expenses.
// Problems are reported per parameter; the filters are only meaningful when
// the map is empty.
//
//	q         substring of description or category
//	category  exact category, case-insensitive
//	from, to  YYYY-MM-DD (whole days) or RFC 3339 timestamps
//	min, max  amounts such as 12, 12.50 or $12.50
func ParseFilters(query url.Values, loc *time.Location) (core.QueryFilters, map[string]string) {
	if loc == nil {
		loc = time.Local
	}
	var f core.QueryFilters
	problems := make(map[string]string)

	if v := sanitizeInput(query.Get("q")); v != "" {
		f.Text = &v
	}
	if v := strings.ToLower(sanitizeInput(query.Get("category"))); v != "" {
		f.Category = &v
	}

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if t, err := parseBound(v, loc, false); err != nil {
			problems["from"] = err.Error()
		} else {
			f.Start = &t
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if t, err := parseBound(v, loc, true); err != nil {
			problems["to"] = err.Error()
		} else {
			f.End = &t
		}
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		problems["to"] = "must not be before from"
	}

	if v := strings.TrimSpace(query.Get("min")); v != "" {
		if cents, err := parseAmount(v); err != nil {
			problems["min"] = err.Error()
		} else {
			f.MinCents = &cents
		}
	}
	if v := strings.TrimSpace(query.Get("max")); v != "" {
		if cents, err := parseAmount(v); err != nil {
			problems["max"] = err.Error()
		} else {
			f.MaxCents = &cents
		}
	}
	if f.MinCents != nil && f.MaxCents != nil && *f.MaxCents < *f.MinCents {
		problems["max"] = "must not be below min"
	}

	return f, problems
}

// parseBound reads a date or timestamp. Bare dates cover the whole day, so
// an upper bound lands on the last instant of that day.
func parseBound(v string, loc *time.Location, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD or RFC 3339, got %q", v)
	}
	if upper {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}

// queryAmount is the whole-value shape accepted for min and max.
var queryAmount = regexp.MustCompile(`^[\$€£]?\s*-?\d[\d,]*(?:\.\d+)?$`)

func parseAmount(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if !queryAmount.MatchString(v) {
		return 0, fmt.Errorf("not an amount: %q", v)
	}
	cents, ok := nlp.ParseAmountCents(v)
	if !ok {
		return 0, fmt.Errorf("not an amount: %q", v)
	}
	if cents < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return cents, nil
}

// CommandRequest is the body of POST /commands.
type CommandRequest struct {
	Text string `json:"text"`
}

// RequestBodyParser reads a JSON or form-encoded body once so fields can be
// looked up by name regardless of encoding.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ParseCommandRequest decodes the body of POST /commands.
func ParseCommandRequest(r *http.Request) (CommandRequest, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return CommandRequest{}, err
	}
	return CommandRequest{Text: p.Get("text")}, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
