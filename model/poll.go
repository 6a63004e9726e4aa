package model

import "time"

// PollCreate is the request body of the Poll API "create poll" endpoint.
type PollCreate struct {
	Title                           string                  `json:"title"`
	Language                        string                  `json:"language"`
	FactSheetType                   string                  `json:"factSheetType"`
	Questionnaire                   Questionnaire           `json:"questionnaire"`
	DueDate                         *Date                   `json:"dueDate,omitempty"`
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

// Submission is one row of the local audit log of poll submissions.
type Submission struct {
	ID          int       `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	PollID      string    `json:"poll_id,omitempty"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Time        time.Time `json:"time"`
}

const (
	SubmissionCreated = "created"
	SubmissionFailed  = "failed"
)
