package model

// UserQuery selects the survey recipients by their subscription to the
// surveyed fact sheets.
type UserQuery struct {
	Roles []UserRole `json:"roles"`
}

type UserRole struct {
	SubscriptionType SubscriptionType  `json:"subscriptionType"`
	RoleDetails      []UserRoleDetails `json:"roleDetails,omitempty"`
}

type UserRoleDetails struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// FactSheetQuery selects the surveyed fact sheets, either through a filter
// or an explicit id list.
type FactSheetQuery struct {
	Filter *QueryFilter `json:"filter,omitempty"`
	IDs    []string     `json:"ids,omitempty"`
}

type QueryFilter struct {
	FSType             string        `json:"fsType,omitempty"`
	FacetFilter        []FacetFilter `json:"facetFilter,omitempty"`
	FullTextSearchTerm string        `json:"fullTextSearchTerm,omitempty"`
}

type FacetFilter struct {
	FacetKey           string              `json:"facetKey,omitempty"`
	Keys               []string            `json:"keys,omitempty"`
	Operator           FacetFilterOperator `json:"operator,omitempty"`
	DateFilter         *DateFilter         `json:"dateFilter,omitempty"`
	SubscriptionFilter *SubscriptionFilter `json:"subscriptionFilter,omitempty"`
	SubFilter          []FacetFilter       `json:"subFilter,omitempty"`
}

type DateFilter struct {
	From *Date          `json:"from,omitempty"`
	To   *Date          `json:"to,omitempty"`
	Type DateFilterType `json:"type"`
}

type SubscriptionFilter struct {
	Type   SubscriptionType `json:"type"`
	RoleID string           `json:"roleId,omitempty"`
}
