package hhr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Numbers in an HHR file come in every style printf can produce: "3", "-0.01",
// "3.4E+04", "2e-106", ".5". This is the one grammar accepted for all of them.
// strconv.ParseFloat alone is too lenient (it takes "Inf", "NaN" and hex).
var (
	floatGrammar = regexp.MustCompile(
		`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	intGrammar = regexp.MustCompile(`^[+-]?[0-9]+$`)
)

// absent reports whether tok is the placeholder a report prints in place of
// a value it does not have.
func absent(tok string) bool {
	return len(tok) == 0 || tok == "-"
}

// decodeFloat decodes a numeric field. If the field is absent, ok is false and
// err is nil; the caller picks the default.
func decodeFloat(tok string) (f float64, ok bool, err error) {
	tok = strings.TrimSpace(tok)
	if absent(tok) {
		return 0, false, nil
	}
	if !floatGrammar.MatchString(tok) {
		return 0, false, errorf(MalformedNumber, "'%s' is not a number.", tok)
	}
	f, err = strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false, errorf(MalformedNumber,
			"'%s' is out of range for a float64.", tok)
	}
	return f, true, nil
}

// decodeInt is decodeFloat for integer fields.
func decodeInt(tok string) (n int, ok bool, err error) {
	tok = strings.TrimSpace(tok)
	if absent(tok) {
		return 0, false, nil
	}
	if !intGrammar.MatchString(tok) {
		return 0, false, errorf(MalformedNumber, "'%s' is not an integer.", tok)
	}
	n, err = strconv.Atoi(tok)
	if err != nil {
		return 0, false, errorf(MalformedNumber,
			"'%s' is out of range for an int.", tok)
	}
	return n, true, nil
}

// readFloat is decodeFloat for fields that must be present.
func readFloat(tok, field string) (float64, error) {
	f, ok, err := decodeFloat(tok)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errorf(MalformedNumber, "Missing value for %s.", field)
	}
	return f, nil
}

// readInt is decodeInt for fields that must be present.
func readInt(tok, field string) (int, error) {
	n, ok, err := decodeInt(tok)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errorf(MalformedNumber, "Missing value for %s.", field)
	}
	return n, nil
}

// readRange reads a '{start}-{end}' coordinate range.
func readRange(tok, field string) (start, end int, err error) {
	pieces := strings.Split(tok, "-")
	if len(pieces) != 2 {
		return 0, 0, errorf(MalformedNumber,
			"'%s' is not a range of the form 'start-end' for %s.", tok, field)
	}
	if start, err = readInt(pieces[0], field); err != nil {
		return 0, 0, err
	}
	if end, err = readInt(pieces[1], field); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
