// Package convert holds the named value converters applied to raw CSV fields
// before they are stored in a record.
//
// A Converter is a pure function from the raw (already trimmed) field text to
// a typed value. Empty input maps to nil for the typed converters, so a blank
// cell becomes SQL NULL. A non-empty value that does not parse yields a
// *Error; the loader logs it and stores nil for that column.
//
// Converters are stateless and may be shared freely. Adding a converter is an
// edit to the registry below.
package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the input layout accepted by Timestamp: minute precision,
// no zone designator.
const TimestampLayout = "2006-01-02 15:04"

// Converter turns a raw field into a value (nil, int64, time.Time or string).
type Converter func(raw string) (any, error)

// Bindings maps a target column name to the converter applied to it.
type Bindings map[string]Converter

// Error reports a non-empty value that a converter could not parse.
type Error struct {
	Converter string
	Value     string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("convert %s %q: %v", e.Converter, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Int parses a base-10 signed 32-bit integer. A leading + or - is allowed;
// anything else but digits fails. The result is an int64.
func Int(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, &Error{Converter: "int", Value: raw, Err: err}
	}
	return n, nil
}

// Timestamp parses raw with TimestampLayout in the process's local time zone.
func Timestamp(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(TimestampLayout, raw, time.Local)
	if err != nil {
		return nil, &Error{Converter: "timestamp", Value: raw, Err: err}
	}
	return t, nil
}

// TrimmedString removes every ASCII double quote and then trims the result
// with Trim. It never fails.
func TrimmedString(raw string) (any, error) {
	return Trim(strings.ReplaceAll(raw, `"`, "")), nil
}

// Trim strips leading and trailing ASCII control and space characters
// (U+0000 to U+0020). Unicode spaces such as U+3000 are kept.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}

var registry = map[string]Converter{
	"int":       Int,
	"timestamp": Timestamp,
	"string":    TrimmedString,
}

// Lookup returns the converter registered under name.
func Lookup(name string) (Converter, bool) {
	c, ok := registry[name]
	return c, ok
}

// Names returns the registered converter names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Bind resolves a column → converter-name map into Bindings. An unknown
// converter name is an error.
func Bind(byColumn map[string]string) (Bindings, error) {
	b := make(Bindings, len(byColumn))
	for col, name := range byColumn {
		c, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("convert: unknown converter %q for column %s (have %s)",
				name, col, strings.Join(Names(), ", "))
		}
		b[col] = c
	}
	return b, nil
}
