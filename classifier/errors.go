package classifier

import (
	"fmt"
	"strings"
)

// DataLoadError reports a source table that cannot back a dataset.
// It is fatal at startup.
type DataLoadError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("load dataset")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required columns %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// MalformedTagError reports a classification string that does not follow the grammar.
type MalformedTagError struct {
	Record  string
	Input   string
	Segment string
}

func (e *MalformedTagError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("could not parse tags for record %s: malformed segment %q", e.Record, e.Segment)
	}
	return fmt.Sprintf("malformed tag segment %q in %q", e.Segment, e.Input)
}

// ValidationError reports recorder input that was refused.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
