package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRegistryPoisoned is returned by a Registry that already rejected a
// registration. Build a new registry for the next scrape.
var ErrRegistryPoisoned = errors.New("metrics registry is unusable after a failed registration")

// UnrecognizedUnitError reports a size suffix outside B, kB, MB, GB and TB.
type UnrecognizedUnitError struct {
	Unit string
}

func (e *UnrecognizedUnitError) Error() string {
	return fmt.Sprintf("unrecognized size unit %q", e.Unit)
}

// ParseError reports a stat field that could not be turned into a number.
// Container and Field are filled in once the failing record is known.
type ParseError struct {
	Container string
	Field     string
	Text      string
	Reason    string
	Err       error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse")
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	fmt.Fprintf(&b, " %q", e.Text)
	if e.Container != "" {
		fmt.Fprintf(&b, " of container %q", e.Container)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateNameError reports a second sample registered under a name that is
// already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate metric name %q", e.Name)
}
