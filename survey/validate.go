// Package survey validates survey definitions before they are submitted to
// the Poll API.
//
// Validation is a staged pipeline: the raw text is parsed into a generic
// JSON tree, the tree is converted into the typed model in package model,
// then question id uniqueness and the conditional dependencies between
// questions are checked. Every stage records all the fatal issues it finds
// and the pipeline stops after the first stage that found any. Warnings
// are collected along the way and always returned.
package survey

import (
	"github.com/mbolis/poll-creator/model"
)

const DefaultMaxNestingDepth = 8

type options struct {
	maxNestingDepth int
	maxChainDepth   int
}

type Option func(*options)

// WithMaxNestingDepth bounds how deep children questions (and nested facet
// filters) may be nested. Values below 1 keep the default.
func WithMaxNestingDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxNestingDepth = depth
		}
	}
}

// WithMaxChainDepth bounds the length of dependency chains. Zero, the
// default, means unbounded.
func WithMaxChainDepth(depth int) Option {
	return func(o *options) {
		o.maxChainDepth = depth
	}
}

// Details summarizes a valid survey.
type Details struct {
	Title             string         `json:"title"`
	QuestionCount     int            `json:"question_count"`
	TotalQuestions    int            `json:"total_questions"`
	HasUserQuery      bool           `json:"has_user_query"`
	HasFactSheetQuery bool           `json:"has_fact_sheet_query"`
	QuestionTypes     map[string]int `json:"question_types"`
}

// Report is the outcome of a validation. Survey is nil unless the input is
// valid; Warnings are filled in either way.
type Report struct {
	Survey   *model.Survey `json:"survey,omitempty"`
	Details  *Details      `json:"details,omitempty"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

func (r *Report) Valid() bool {
	return r.Survey != nil
}

// Validate parses and validates a survey definition. The returned error,
// when not nil, carries one *Issue per problem; use Issues to list them.
// The report is never nil.
func Validate(raw []byte, opts ...Option) (*Report, error) {
	o := options{maxNestingDepth: DefaultMaxNestingDepth}
	for _, opt := range opts {
		opt(&o)
	}

	report := &Report{}
	tree, issue := parse(raw)
	if issue != nil {
		var list issueList
		list.add(issue)
		return report, list.err()
	}

	c := &converter{maxDepth: o.maxNestingDepth}
	s := c.survey(tree)
	report.Warnings = c.warnings
	if err := c.err(); err != nil {
		return report, err
	}

	entries := Flatten(s.Questionnaire.Questions)
	if err := checkUniqueness(entries); err != nil {
		return report, err
	}

	warnings, err := resolve(entries, ResolveOptions{MaxChainDepth: o.maxChainDepth})
	report.Warnings = append(report.Warnings, warnings...)
	if err != nil {
		return report, err
	}

	report.Survey = s
	report.Details = describe(s, entries)
	return report, nil
}

func describe(s *model.Survey, entries []Entry) *Details {
	d := &Details{
		Title:             s.Title,
		QuestionCount:     len(s.Questionnaire.Questions),
		TotalQuestions:    len(entries),
		HasUserQuery:      s.UserQuery != nil,
		HasFactSheetQuery: s.FactSheetQuery != nil,
		QuestionTypes:     make(map[string]int),
	}
	for _, e := range entries {
		d.QuestionTypes[string(e.Question.Type)]++
	}
	return d
}
