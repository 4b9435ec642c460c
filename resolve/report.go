package resolve

import (
	"fmt"
	"strings"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/errors"
	"github.com/wippyai/wail/link"
)

// Unlinked is an import no component could satisfy.
type Unlinked struct {
	Component string
	Interface catalog.Interface
	// Candidates lists exporters when the import was ambiguous.
	Candidates []string
}

// Report is the outcome of one resolution pass. A report with errors is
// authoritative: the graph must not be emitted.
type Report struct {
	Errors     []*errors.Error
	Warnings   []string
	Discovered []*link.Constructor
	Unlinked   []Unlinked
	Valid      bool
}

func newReport() *Report {
	return &Report{Valid: true}
}

func (r *Report) addError(err *errors.Error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// ErrorsOfKind returns the errors of one kind, in discovery order.
func (r *Report) ErrorsOfKind(kind errors.Kind) []*errors.Error {
	var out []*errors.Error
	for _, e := range r.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Summary renders a one-line overview.
func (r *Report) Summary() string {
	var parts []string
	if n := len(r.Discovered); n > 0 {
		parts = append(parts, fmt.Sprintf("discovered %d implicit links", n))
	}
	if n := len(r.Unlinked); n > 0 {
		parts = append(parts, fmt.Sprintf("found %d unlinked interfaces", n))
	}
	if n := len(r.Warnings); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", n))
	}
	if n := len(r.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", n))
	}
	if len(parts) == 0 {
		return "all validations passed"
	}
	return strings.Join(parts, ", ")
}

// Err returns nil for a valid report and otherwise an error listing every
// problem found.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s:\n  %s", r.Summary(), strings.Join(msgs, "\n  "))
}
