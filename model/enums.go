package model

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionSingleChoice   QuestionType = "singlechoice"
	QuestionMultipleChoice QuestionType = "multiplechoice"
	QuestionNumber         QuestionType = "number"
	QuestionDate           QuestionType = "date"
	QuestionFactSheet      QuestionType = "factsheet"
)

var QuestionTypes = []QuestionType{
	QuestionText,
	QuestionTextarea,
	QuestionSingleChoice,
	QuestionMultipleChoice,
	QuestionNumber,
	QuestionDate,
	QuestionFactSheet,
}

func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether questions of this type must declare options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

type SubscriptionType string

const (
	SubscriptionResponsible SubscriptionType = "RESPONSIBLE"
	SubscriptionAccountable SubscriptionType = "ACCOUNTABLE"
	SubscriptionObserver    SubscriptionType = "OBSERVER"
	SubscriptionAll         SubscriptionType = "ALL"
)

var SubscriptionTypes = []SubscriptionType{
	SubscriptionResponsible,
	SubscriptionAccountable,
	SubscriptionObserver,
	SubscriptionAll,
}

type AllowedPermissionStatus string

var AllowedPermissionStatuses = []AllowedPermissionStatus{
	"ACTIVE_ONLY",
	"ACTIVE_AND_INVITED",
	"ACTIVE_AND_INVITED_AND_CONTACTS",
}

type FacetFilterOperator string

var FacetFilterOperators = []FacetFilterOperator{"AND", "OR", "NOR"}

type DateFilterType string

var DateFilterTypes = []DateFilterType{
	"POINT",
	"RANGE",
	"TODAY",
	"END_OF_MONTH",
	"END_OF_YEAR",
	"RANGE_STARTS",
	"RANGE_ENDS",
}
