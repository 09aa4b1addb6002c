package convert

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    any
		wantErr bool
	}{
		{"", nil, false},
		{"0", int64(0), false},
		{"42", int64(42), false},
		{"+7", int64(7), false},
		{"-13", int64(-13), false},
		{"2147483647", int64(2147483647), false},
		{"2147483648", nil, true},
		{"1.5", nil, true},
		{"12a", nil, true},
		{" 1", nil, true},
		{"abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(strconv.Quote(tt.in), func(t *testing.T) {
			t.Parallel()

			got, err := Int(tt.in)
			if tt.wantErr {
				var ce *Error
				if !errors.As(err, &ce) {
					t.Fatalf("Int(%q) error = %v, want *Error", tt.in, err)
				}
				if ce.Converter != "int" || ce.Value != tt.in {
					t.Fatalf("Int(%q) error fields = %+v", tt.in, ce)
				}
				if got != nil {
					t.Fatalf("Int(%q) value = %#v on error, want nil", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Int(%q) unexpected error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Int(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	got, err := Timestamp("2024-06-07 09:00")
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	want := time.Date(2024, 6, 7, 9, 0, 0, 0, time.Local)
	ts, ok := got.(time.Time)
	if !ok || !ts.Equal(want) {
		t.Fatalf("Timestamp() = %#v, want %v", got, want)
	}
	if ts.Location() != time.Local {
		t.Fatalf("Timestamp() location = %v, want Local", ts.Location())
	}

	if v, err := Timestamp(""); v != nil || err != nil {
		t.Fatalf("Timestamp(\"\") = %#v, %v; want nil, nil", v, err)
	}

	for _, bad := range []string{"not-a-date", "2024-06-07", "2024/06/07 09:00", "2024-13-07 09:00"} {
		v, err := Timestamp(bad)
		if v != nil || err == nil {
			t.Fatalf("Timestamp(%q) = %#v, %v; want nil, error", bad, v, err)
		}
		if !strings.Contains(err.Error(), "timestamp") {
			t.Fatalf("Timestamp(%q) error %q does not name the converter", bad, err)
		}
	}
}

func TestTrimmedString(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":               `  `,
		"A01":            `"A01"`,
		"Main Hall":      `  Main "Hall"  `,
		"O'Hara School":  `O'Hara School`,
		"no quotes here": "no quotes here",
		"inner  spacing": "\tinner  spacing\n",
	}
	for want, in := range tests {
		got, err := TrimmedString(in)
		if err != nil {
			t.Fatalf("TrimmedString(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("TrimmedString(%q) = %#v, want %q", in, got, want)
		}
	}
}

func TestTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{" \t\r\nA01\x00\x1f", "A01"},
		{"\u3000\u8003\u573a\u00a0", "\u3000\u8003\u573a\u00a0"},
		{" \u3000Main Hall ", "\u3000Main Hall"},
		{"\u00a0", "\u00a0"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Trim(tt.in); got != tt.want {
			t.Fatalf("Trim(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got, _ := TrimmedString(tt.in); got != tt.want {
			t.Fatalf("TrimmedString(%q) = %#v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupAndBind(t *testing.T) {
	t.Parallel()

	if got := strings.Join(Names(), ","); got != "int,string,timestamp" {
		t.Fatalf("Names() = %q", got)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatalf("Lookup(nope) reported ok")
	}

	b, err := Bind(map[string]string{"kcno": "int", "exptime": "timestamp", "kdname": "string"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(b) != 3 {
		t.Fatalf("Bind() returned %d bindings, want 3", len(b))
	}
	if v, _ := b["kcno"]("5"); v != int64(5) {
		t.Fatalf("bound kcno converter gave %#v", v)
	}

	if _, err := Bind(map[string]string{"seat": "float"}); err == nil || !strings.Contains(err.Error(), `unknown converter "float"`) {
		t.Fatalf("Bind(unknown) error = %v", err)
	}
}
