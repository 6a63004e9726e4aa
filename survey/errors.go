package survey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies a validation problem.
type Kind int

const (
	MalformedInput Kind = iota + 1
	MissingRequiredField
	InvalidFieldValue
	DuplicateIdentifier
	UnresolvedDependency
	CyclicDependency
	UnsupportedLanguage
	UnsupportedFactSheetType
)

var kindNames = map[Kind]string{
	MalformedInput:           "malformed_input",
	MissingRequiredField:     "missing_required_field",
	InvalidFieldValue:        "invalid_field_value",
	DuplicateIdentifier:      "duplicate_identifier",
	UnresolvedDependency:     "unresolved_dependency",
	CyclicDependency:         "cyclic_dependency",
	UnsupportedLanguage:      "unsupported_language",
	UnsupportedFactSheetType: "unsupported_fact_sheet_type",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Issue is a fatal validation problem. Path locates the offending value,
// e.g. "questionnaire.questions[2].settings.dependency.parentId".
type Issue struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`

	// Offset is the byte offset of a syntax error in the raw input.
	Offset int64 `json:"offset,omitempty"`

	// set for DuplicateIdentifier
	Scope string `json:"scope,omitempty"`
	ID    string `json:"id,omitempty"`

	// set for UnresolvedDependency and CyclicDependency
	QuestionID string `json:"question_id,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
}

func (i *Issue) Error() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Warning is a non-fatal finding, reported alongside the validation result.
type Warning struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Issues returns every *Issue carried by err, in the order they were found.
func Issues(err error) []*Issue {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		issues := make([]*Issue, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			issues = append(issues, Issues(e)...)
		}
		return issues
	}
	var issue *Issue
	if errors.As(err, &issue) {
		return []*Issue{issue}
	}
	return nil
}

// HasKind reports whether err carries an issue of the given kind.
func HasKind(err error, kind Kind) bool {
	for _, issue := range Issues(err) {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func formatIssues(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  * " + err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n%s", len(errs), strings.Join(lines, "\n"))
}

// issueList accumulates fatal issues and warnings of a validation stage.
type issueList struct {
	errs     *multierror.Error
	warnings []Warning
}

func (l *issueList) add(issue *Issue) {
	l.errs = multierror.Append(l.errs, issue)
	l.errs.ErrorFormat = formatIssues
}

func (l *issueList) fail(kind Kind, path, format string, args ...any) {
	l.add(&Issue{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *issueList) warn(path, format string, args ...any) {
	l.warnings = append(l.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *issueList) err() error {
	return l.errs.ErrorOrNil()
}

func field(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// Combine merges issues into a single error. Nil issues are skipped; the
// result is nil when none remain.
func Combine(issues ...*Issue) error {
	var list issueList
	for _, issue := range issues {
		if issue != nil {
			list.add(issue)
		}
	}
	return list.err()
}
