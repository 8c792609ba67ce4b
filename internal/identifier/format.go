// Package identifier mints the human-readable primary keys used by roster
// entities: a fixed prefix followed by a zero-padded decimal counter, for
// example LD_00042.
//
// Format and Parse are pure. Generator hands out identifiers backed by a
// Store that owns the durable counters.
package identifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lettucedream/roster/internal/common"
)

// maxWidth is the number of decimal digits in math.MaxUint64.
const maxWidth = 20

// ID is a minted identifier. Once assigned to an entity it never changes.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether no identifier has been assigned.
func (id ID) IsZero() bool { return id == "" }

// Format renders prefix followed by n left-padded with zeros to width digits.
// A number wider than width is emitted in full, never truncated.
func Format(prefix string, n uint64, width int) string {
	digits := strconv.FormatUint(n, 10)
	if pad := width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return prefix + digits
}

// ParseError describes an identifier that does not belong to a sequence.
type ParseError struct {
	Identifier string
	Prefix     string
	Reason     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid identifier %q for prefix %q: %s", e.Identifier, e.Prefix, e.Reason)
}

func (e *ParseError) Unwrap() error { return common.ErrInvalidIdentifier }

// Parse strips prefix from id and returns the number behind it.
// It fails with *ParseError when the prefix does not match or the remainder
// is not a plain unsigned decimal that fits in 64 bits.
func Parse(id, prefix string) (uint64, error) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, &ParseError{Identifier: id, Prefix: prefix, Reason: "prefix mismatch"}
	}
	if rest == "" {
		return 0, &ParseError{Identifier: id, Prefix: prefix, Reason: "missing number"}
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, &ParseError{Identifier: id, Prefix: prefix, Reason: "number must contain only digits"}
		}
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, &ParseError{Identifier: id, Prefix: prefix, Reason: "number out of range"}
	}
	return n, nil
}
