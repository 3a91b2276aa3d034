package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

var (
	decimalPattern  = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	exponentPattern = regexp.MustCompile(`^(-?)([0-9]+)(?:\.([0-9]+))?[eE]([+-]?[0-9]+)$`)
)

// MaxNumberLength is the widest decimal text the numeric columns hold.
const MaxNumberLength = 32

// NumberText is a numeric request field that accepts a JSON number or a
// numeric string such as "1,000,000". Thousands separators are stripped.
// An empty string or null clears the field; a missing key leaves it unset.
type NumberText struct {
	text    string
	present bool
	null    bool
	invalid bool
	tooLong bool
}

// Num builds a set NumberText, mainly for tests.
func Num(s string) NumberText {
	var n NumberText
	n.parse(s)
	return n
}

func (n *NumberText) UnmarshalJSON(b []byte) error {
	*n = NumberText{present: true}
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		n.null = true
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.parse(s)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		// keep the literal digits; a float64 round trip would lose precision
		lit := string(b)
		if decimalPattern.MatchString(lit) {
			n.set(lit)
			return nil
		}
		expanded, ok := expandExponent(lit)
		if !ok {
			n.invalid = true
			return nil
		}
		n.set(expanded)
	default:
		// booleans, objects and arrays are reported per field by Text
		n.invalid = true
	}
	return nil
}

func (n *NumberText) parse(s string) {
	n.present = true
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		n.null = true
		return
	}
	if !decimalPattern.MatchString(s) {
		n.invalid = true
		return
	}
	n.set(s)
}

func (n *NumberText) set(s string) {
	if len(s) > MaxNumberLength {
		n.tooLong = true
		return
	}
	n.text = s
}

// expandExponent rewrites a literal such as 1.5e6 as plain decimal text
// without going through floating point.
func expandExponent(lit string) (string, bool) {
	m := exponentPattern.FindStringSubmatch(lit)
	if m == nil {
		return "", false
	}
	sign, intPart, frac := m[1], m[2], m[3]
	exp, err := strconv.Atoi(m[4])
	if err != nil || exp > MaxNumberLength || exp < -MaxNumberLength {
		return "", false
	}
	digits := intPart + frac
	point := len(intPart) + exp

	var whole, fraction string
	switch {
	case point <= 0:
		whole, fraction = "0", strings.Repeat("0", -point)+digits
	case point >= len(digits):
		whole = digits + strings.Repeat("0", point-len(digits))
	default:
		whole, fraction = digits[:point], digits[point:]
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	fraction = strings.TrimRight(fraction, "0")
	if fraction != "" {
		return sign + whole + "." + fraction, true
	}
	if whole == "0" {
		return "0", true
	}
	return sign + whole, true
}

// MarshalJSON renders the normalized value, or null when unset.
func (n NumberText) MarshalJSON() ([]byte, error) {
	if n.text == "" {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(n.text)), nil
}

// Cleared reports whether the key was sent as null or "".
func (n NumberText) Cleared() bool { return n.present && n.null }

// Text returns the normalized decimal text, nil when unset or cleared.
func (n NumberText) Text(field string) (*string, error) {
	if n.invalid {
		return nil, appErr.Invalid(field, field+" must be a number")
	}
	if n.tooLong {
		return nil, appErr.Invalid(field, fmt.Sprintf("%s must be at most %d characters", field, MaxNumberLength))
	}
	if !n.present || n.null {
		return nil, nil
	}
	s := n.text
	return &s, nil
}

// Int returns the value as a whole number, nil when unset or cleared.
func (n NumberText) Int(field string) (*int, error) {
	s, err := n.Text(field)
	if err != nil || s == nil {
		return nil, err
	}
	v, convErr := strconv.Atoi(*s)
	if convErr != nil {
		return nil, appErr.Invalid(field, field+" must be a whole number")
	}
	return &v, nil
}
