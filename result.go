package linkml

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kaptinlin/go-i18n"
)

// Severity classifies an Issue as a hard failure or an advisory finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single per-slot/per-rule finding produced during validation. It
// never halts evaluation; issues accumulate into the enclosing report.
type Issue struct {
	Severity Severity       `json:"severity"`
	Path     string         `json:"path"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Class    string         `json:"class,omitempty"`
	Slot     string         `json:"slot,omitempty"`
	Params   map[string]any `json:"params,omitempty"`

	// docOrder is the value the evalContext's shared counter held when this
	// issue was raised, so StableSort can restore the order in which one
	// instance's validators raised their issues.
	docOrder int
}

// Error implements the error interface so an Issue can be returned/wrapped
// directly where a single failure needs to propagate as a Go error.
func (i *Issue) Error() string {
	return replace(i.Message, i.Params)
}

// Localize renders the issue's message through an i18n localizer keyed by Code.
func (i *Issue) Localize(localizer *i18n.Localizer) string {
	if localizer == nil {
		return i.Error()
	}
	return localizer.Get(i.Code, i18n.Vars(i.Params))
}

// ValidationReport is the output of Validate/ValidateBatch: overall validity
// plus the stable-ordered list of issues found along the way.
type ValidationReport struct {
	ReportID string   `json:"reportId"`
	Valid    bool     `json:"valid"`
	Issues   []*Issue `json:"issues,omitempty"`
}

// NewValidationReport starts a fresh, valid report with a newly generated
// ReportID.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		ReportID: uuid.NewString(),
		Valid:    true,
	}
}

// AddIssue appends an issue and flips Valid to false for error-severity
// findings. Warnings are recorded but do not invalidate the report.
func (r *ValidationReport) AddIssue(issue *Issue) *ValidationReport {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError || issue.Severity == "" {
		r.Valid = false
	}
	return r
}

// Merge appends another report's issues after this one's, in their existing
// order, and marks this report invalid if the other one is; it does not sort.
func (r *ValidationReport) Merge(other *ValidationReport) *ValidationReport {
	if other == nil {
		return r
	}
	r.Issues = append(r.Issues, other.Issues...)
	if !other.Valid {
		r.Valid = false
	}
	return r
}

// StableSort restores document order after concurrent evaluation merges
// issues from multiple workers, satisfying the "order stability" property
// (spec.md §8): for fixed input, Validate produces identical issue
// sequences across runs regardless of worker completion order.
func (r *ValidationReport) StableSort() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		return r.Issues[i].docOrder < r.Issues[j].docOrder
	})
}

// Errors returns only the error-severity issues.
func (r *ValidationReport) Errors() []*Issue {
	var out []*Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError || issue.Severity == "" {
			out = append(out, issue)
		}
	}
	return out
}

// Localize renders every issue's message through the given localizer,
// returning a path -> message map; pass nil for default English text.
func (r *ValidationReport) Localize(localizer *i18n.Localizer) map[string]string {
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = issue.Localize(localizer)
	}
	return out
}
