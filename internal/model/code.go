package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DocumentKind is the registry document family.
type DocumentKind string

const (
	// KindMatricula is a modern consolidated title.
	KindMatricula DocumentKind = "M"
	// KindTranscricao is a legacy deed transcription.
	KindTranscricao DocumentKind = "T"
)

var ErrInvalidDocumentCode = errors.New("invalid document code, expected format is M<number> or T<number>")

var codePattern = regexp.MustCompile(`^\s*([MmTt])\s*[-. ]?\s*(\d+)\s*$`)

func (k DocumentKind) Valid() bool {
	return k == KindMatricula || k == KindTranscricao
}

func (k DocumentKind) Label() string {
	switch k {
	case KindMatricula:
		return "matrícula"
	case KindTranscricao:
		return "transcrição"
	default:
		return "unknown"
	}
}

// DocumentCode is the normalized identity of a document inside a registry office.
type DocumentCode struct {
	Kind   DocumentKind
	Number string
}

func NewCode(kind DocumentKind, number string) DocumentCode {
	return DocumentCode{Kind: kind, Number: number}
}

// ParseCode normalizes a single code such as "M123", "m 123" or "T-45".
func ParseCode(s string) (DocumentCode, error) {
	m := codePattern.FindStringSubmatch(s)
	if m == nil {
		return DocumentCode{}, fmt.Errorf("%w: %q", ErrInvalidDocumentCode, s)
	}

	return DocumentCode{Kind: DocumentKind(strings.ToUpper(m[1])), Number: m[2]}, nil
}

func (c DocumentCode) String() string {
	return string(c.Kind) + c.Number
}

func (c DocumentCode) IsZero() bool {
	return c.Kind == "" && c.Number == ""
}

// Less orders codes by kind, then numerically by number.
func (c DocumentCode) Less(o DocumentCode) bool {
	if c.Kind != o.Kind {
		return c.Kind < o.Kind
	}

	a, errA := strconv.ParseUint(c.Number, 10, 64)
	b, errB := strconv.ParseUint(o.Number, 10, 64)
	if errA == nil && errB == nil && a != b {
		return a < b
	}

	return c.Number < o.Number
}

func (c DocumentCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *DocumentCode) UnmarshalText(text []byte) error {
	code, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = code

	return nil
}
