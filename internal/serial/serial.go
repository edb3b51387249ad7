// Package serial encodes and decodes inventory serial numbers of the form
// PTG-<PAINTING>-<VARIANT>-<LOCATION>-<####>.
//
// A serial is the natural key of an inventory record. The three tokens name
// the painting, variant and location the unit belongs to; the trailing
// four-digit sequence discriminates units that share the same triple.
package serial

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the literal first segment of every serial number.
const Prefix = "PTG"

// MaxSequence is the largest sequence a serial can carry.
const MaxSequence = 9999

const separator = "-"

// Components is a decoded serial number. Tokens are always uppercase.
type Components struct {
	Painting string
	Variant  string
	Location string
	Sequence int
}

// String returns the canonical encoding of c. It does not validate c; use
// Encode when the components come from untrusted input.
func (c Components) String() string {
	return fmt.Sprintf("%s-%s-%s-%s-%04d", Prefix, c.Painting, c.Variant, c.Location, c.Sequence)
}

// Prefix returns the serial prefix shared by every unit of the same
// painting, variant and location, including the trailing separator.
func (c Components) Prefix() string {
	return fmt.Sprintf("%s-%s-%s-%s-", Prefix, c.Painting, c.Variant, c.Location)
}

// FormatError reports a malformed serial number or serial component.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid serial %q: %s", e.Input, e.Reason)
}

// Encode builds a serial number from its components. Tokens must be
// non-empty uppercase ASCII alphanumerics and seq must lie in [0, 9999].
func Encode(painting, variant, location string, seq int) (string, error) {
	c := Components{Painting: painting, Variant: variant, Location: location, Sequence: seq}
	for _, tok := range []struct{ name, value string }{
		{"painting", painting},
		{"variant", variant},
		{"location", location},
	} {
		if tok.value == "" {
			return "", &FormatError{Input: c.String(), Reason: tok.name + " token is empty"}
		}
		if !isToken(tok.value, false) {
			return "", &FormatError{Input: c.String(), Reason: tok.name + " token must be uppercase alphanumeric"}
		}
	}
	if seq < 0 || seq > MaxSequence {
		return "", &FormatError{Input: c.String(), Reason: fmt.Sprintf("sequence %d out of range [0, %d]", seq, MaxSequence)}
	}
	return c.String(), nil
}

// Decode parses a serial number. Input is case-insensitive and may carry
// surrounding whitespace; returned tokens are uppercase.
func Decode(s string) (Components, error) {
	input := s
	s = strings.TrimSpace(s)
	parts := strings.Split(s, separator)
	if len(parts) != 5 {
		return Components{}, &FormatError{Input: input, Reason: fmt.Sprintf("expected 5 segments, got %d", len(parts))}
	}
	if !strings.EqualFold(parts[0], Prefix) {
		return Components{}, &FormatError{Input: input, Reason: "missing " + Prefix + " prefix"}
	}
	for i, name := range []string{"painting", "variant", "location"} {
		tok := parts[i+1]
		if tok == "" {
			return Components{}, &FormatError{Input: input, Reason: name + " token is empty"}
		}
		if !isToken(tok, true) {
			return Components{}, &FormatError{Input: input, Reason: name + " token must be alphanumeric"}
		}
	}
	seqPart := parts[4]
	if len(seqPart) != 4 || !allDigits(seqPart) {
		return Components{}, &FormatError{Input: input, Reason: "sequence must be exactly 4 digits"}
	}
	seq, _ := strconv.Atoi(seqPart)

	return Components{
		Painting: strings.ToUpper(parts[1]),
		Variant:  strings.ToUpper(parts[2]),
		Location: strings.ToUpper(parts[3]),
		Sequence: seq,
	}, nil
}

// Validate reports whether s decodes successfully.
func Validate(s string) bool {
	_, err := Decode(s)
	return err == nil
}

// Canonical decodes s and re-encodes it in canonical uppercase form.
func Canonical(s string) (string, error) {
	c, err := Decode(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Next returns c with the following sequence number.
func Next(c Components) (Components, error) {
	if c.Sequence >= MaxSequence {
		return Components{}, &FormatError{Input: c.String(), Reason: "sequence space exhausted"}
	}
	c.Sequence++
	return c, nil
}

// IsToken reports whether s is usable as a serial token.
func IsToken(s string) bool {
	return s != "" && isToken(s, false)
}

func isToken(s string, allowLower bool) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case allowLower && ch >= 'a' && ch <= 'z':
		default:
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
