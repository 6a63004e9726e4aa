package model

// Survey is a survey definition as authored by the user, before the
// submission parameters (language, fact sheet type, due date) are attached.
type Survey struct {
	Title                           string                  `json:"title"`
	Questionnaire                   Questionnaire           `json:"questionnaire"`
	IntroductionText                string                  `json:"introductionText,omitempty"`
	IntroductionSubject             string                  `json:"introductionSubject,omitempty"`
	AdditionalFactSheetSubject      string                  `json:"additionalFactSheetSubject,omitempty"`
	AdditionalFactSheetText         string                  `json:"additionalFactSheetText,omitempty"`
	AdditionalFactSheetCheckEnabled *bool                   `json:"additionalFactSheetCheckEnabled,omitempty"`
	RepeatInterval                  *int64                  `json:"repeatInterval,omitempty"`
	TimeFrame                       *int64                  `json:"timeFrame,omitempty"`
	SendChangeNotifications         *bool                   `json:"sendChangeNotifications,omitempty"`
	AllowedPermissionStatus         AllowedPermissionStatus `json:"allowedPermissionStatus,omitempty"`
	DynamicScopeCheckEnabled        *bool                   `json:"dynamicScopeCheckEnabled,omitempty"`
	FactSheetQuery                  *FactSheetQuery         `json:"factSheetQuery,omitempty"`
	UserQuery                       *UserQuery              `json:"userQuery,omitempty"`
}

type Questionnaire struct {
	Questions []Question `json:"questions"`
}

type Question struct {
	ID               string            `json:"id"`
	Label            string            `json:"label"`
	Type             QuestionType      `json:"type"`
	DescriptiveText  string            `json:"descriptiveText,omitempty"`
	Element          string            `json:"element,omitempty"`
	Options          []QuestionOption  `json:"options,omitempty"`
	AnswerOptions    string            `json:"answerOptions,omitempty"`
	Children         []Question        `json:"children,omitempty"`
	PowerFeature     *bool             `json:"powerfeature,omitempty"`
	Disabled         *bool             `json:"disabled,omitempty"`
	FactSheetElement *FactSheetElement `json:"factSheetElement,omitempty"`
	Settings         *QuestionSettings `json:"settings,omitempty"`
}

// Dependency returns the question's conditional dependency, if any.
func (q *Question) Dependency() *Dependency {
	if q.Settings == nil {
		return nil
	}
	return q.Settings.Dependency
}

// OptionIDs lists the ids of the question's options in declaration order.
func (q *Question) OptionIDs() []string {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	return ids
}

type QuestionOption struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Comment string `json:"comment,omitempty"`
}

type QuestionSettings struct {
	IsMandatory   *bool             `json:"isMandatory,omitempty"`
	IsConditional *bool             `json:"isConditional,omitempty"`
	HideInResults *bool             `json:"hideInResults,omitempty"`
	Dependency    *Dependency       `json:"dependency,omitempty"`
	Metrics       map[string]string `json:"metrics,omitempty"`
	Version       *int64            `json:"version,omitempty"`
	FSSections    map[string]any    `json:"fsSections,omitempty"`
	Formula       string            `json:"formula,omitempty"`
}

// Dependency makes a question visible only when the answer to an earlier
// question matches Condition.
type Dependency struct {
	ParentID  string          `json:"parentId"`
	Condition map[string]bool `json:"condition"`
}

// FactSheetElement maps a question onto a field of the surveyed fact sheet.
type FactSheetElement struct {
	Type                   string            `json:"type,omitempty"`
	TagGroupID             string            `json:"tagGroupId,omitempty"`
	Subscription           map[string]any    `json:"subscription,omitempty"`
	FactSheetFieldName     string            `json:"factSheetFieldName,omitempty"`
	FactSheetFieldType     string            `json:"factSheetFieldType,omitempty"`
	TagGroupMode           string            `json:"tagGroupMode,omitempty"`
	FactSheetFieldViewType string            `json:"factSheetFieldViewType,omitempty"`
	Properties             []ElementProperty `json:"properties,omitempty"`
}

type ElementProperty struct {
	Name string `json:"name"`
}
