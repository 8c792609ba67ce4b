package identifier

import (
	"fmt"
	"sort"

	"github.com/lettucedream/roster/internal/common"
)

// SequenceDefinition configures one named sequence. Prefix and Width are part
// of the identifiers already issued and must not change once the sequence is
// in use.
type SequenceDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Prefix      string `json:"prefix" yaml:"prefix"`
	IncrementBy uint64 `json:"increment_by" yaml:"increment_by"`
	Width       int    `json:"width" yaml:"width"`
}

// Validate checks the definition and returns an error wrapping
// common.ErrInvalidSequence.
func (d SequenceDefinition) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", common.ErrInvalidSequence)
	case d.Prefix == "":
		return fmt.Errorf("%w: sequence %q: prefix is required", common.ErrInvalidSequence, d.Name)
	case d.IncrementBy < 1:
		return fmt.Errorf("%w: sequence %q: increment_by must be positive", common.ErrInvalidSequence, d.Name)
	case d.Width < 1 || d.Width > maxWidth:
		return fmt.Errorf("%w: sequence %q: width must be between 1 and %d", common.ErrInvalidSequence, d.Name, maxWidth)
	}
	return nil
}

// Format renders n with this sequence's prefix and width.
func (d SequenceDefinition) Format(n uint64) ID {
	return ID(Format(d.Prefix, n, d.Width))
}

// Parse returns the number behind an identifier of this sequence.
func (d SequenceDefinition) Parse(id ID) (uint64, error) {
	return Parse(string(id), d.Prefix)
}

// Registry holds the configured sequences by name. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	defs map[string]SequenceDefinition
}

// NewRegistry validates defs and rejects duplicate names.
func NewRegistry(defs ...SequenceDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[string]SequenceDefinition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("%w: sequence %q defined twice", common.ErrInvalidSequence, d.Name)
		}
		r.defs[d.Name] = d
	}
	return r, nil
}

// Lookup returns the definition for name or common.ErrSequenceNotConfigured.
func (r *Registry) Lookup(name string) (SequenceDefinition, error) {
	d, ok := r.defs[name]
	if !ok {
		return SequenceDefinition{}, fmt.Errorf("%w: %q", common.ErrSequenceNotConfigured, name)
	}
	return d, nil
}

// Names lists the configured sequence names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
