package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	errNotANumber  = errors.New("must be a number or numeric string")
	errNotInteger  = errors.New("must be a whole number")
	errOutOfRange  = errors.New("is out of range")
	errNotABoolean = errors.New("must be a boolean")
	errNotAString  = errors.New("must be a string")
	errNotAUUID    = errors.New("must be a UUID")
)

// Loose records a raw JSON member so the mapper can coerce it after decoding.
// An absent member leaves Set false. Null and "" both count as Null.
type Loose struct {
	Set bool
	raw json.RawMessage
}

// UnmarshalJSON keeps the raw bytes; it never fails.
func (l *Loose) UnmarshalJSON(data []byte) error {
	l.Set = true
	l.raw = append(l.raw[:0], data...)
	return nil
}

// Null reports whether the member was sent as null or an empty string.
func (l Loose) Null() bool {
	if !l.Set {
		return false
	}
	trimmed := bytes.TrimSpace(l.raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	s, ok := l.text()
	return ok && strings.TrimSpace(s) == ""
}

// Present reports whether the member carries a usable value.
func (l Loose) Present() bool {
	return l.Set && !l.Null()
}

func (l Loose) text() (string, bool) {
	var s string
	if err := json.Unmarshal(l.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// scalar returns the member as text, unquoting JSON strings.
func (l Loose) scalar() string {
	if s, ok := l.text(); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(l.raw))
}

// Decimal accepts 12.5, "12.5" and " 12.50 ".
func (l Loose) Decimal() (*decimal.Decimal, error) {
	if !l.Present() {
		return nil, nil
	}
	value, err := decimal.NewFromString(l.scalar())
	if err != nil {
		return nil, errNotANumber
	}
	return &value, nil
}

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
)

// Int accepts 3, 3.0 and "3". Fractions and values outside the int4 columns
// are rejected.
func (l Loose) Int() (*int, error) {
	value, err := l.Decimal()
	if err != nil || value == nil {
		return nil, err
	}
	if !value.IsInteger() {
		return nil, errNotInteger
	}
	if value.LessThan(minInt32) || value.GreaterThan(maxInt32) {
		return nil, errOutOfRange
	}
	n := int(value.IntPart())
	return &n, nil
}

// Bool accepts JSON booleans and the strings true/false, 1/0, yes/no, on/off.
func (l Loose) Bool() (*bool, error) {
	if !l.Present() {
		return nil, nil
	}
	switch strings.ToLower(l.scalar()) {
	case "yes", "on":
		v := true
		return &v, nil
	case "no", "off":
		v := false
		return &v, nil
	}
	v, err := strconv.ParseBool(l.scalar())
	if err != nil {
		return nil, errNotABoolean
	}
	return &v, nil
}

// Text accepts JSON strings only and trims them.
func (l Loose) Text() (*string, error) {
	if !l.Present() {
		return nil, nil
	}
	s, ok := l.text()
	if !ok {
		return nil, errNotAString
	}
	s = strings.TrimSpace(s)
	return &s, nil
}

func (l Loose) UUID() (*uuid.UUID, error) {
	if !l.Present() {
		return nil, nil
	}
	id, err := uuid.Parse(l.scalar())
	if err != nil {
		return nil, errNotAUUID
	}
	return &id, nil
}

// fieldErrors collects per-member coercion failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field string, err error) {
	if err != nil {
		f[field] = err.Error()
	}
}

// ValidationError lists the members that could not be coerced.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
