package model

// Clone returns a deep copy of the survey. Nothing reachable from the copy
// is shared with s.
func (s *Survey) Clone() *Survey {
	if s == nil {
		return nil
	}
	c := *s
	c.Questionnaire = Questionnaire{Questions: cloneQuestions(s.Questionnaire.Questions)}
	c.AdditionalFactSheetCheckEnabled = clonePtr(s.AdditionalFactSheetCheckEnabled)
	c.RepeatInterval = clonePtr(s.RepeatInterval)
	c.TimeFrame = clonePtr(s.TimeFrame)
	c.SendChangeNotifications = clonePtr(s.SendChangeNotifications)
	c.DynamicScopeCheckEnabled = clonePtr(s.DynamicScopeCheckEnabled)
	c.FactSheetQuery = s.FactSheetQuery.clone()
	c.UserQuery = s.UserQuery.clone()
	return &c
}

func cloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	for i := range questions {
		out[i] = questions[i].clone()
	}
	return out
}

func (q *Question) clone() Question {
	c := *q
	if q.Options != nil {
		c.Options = append([]QuestionOption(nil), q.Options...)
	}
	c.Children = cloneQuestions(q.Children)
	c.PowerFeature = clonePtr(q.PowerFeature)
	c.Disabled = clonePtr(q.Disabled)
	if q.FactSheetElement != nil {
		e := *q.FactSheetElement
		e.Subscription = cloneObject(q.FactSheetElement.Subscription)
		if e.Properties != nil {
			e.Properties = append([]ElementProperty(nil), e.Properties...)
		}
		c.FactSheetElement = &e
	}
	if q.Settings != nil {
		s := *q.Settings
		s.IsMandatory = clonePtr(s.IsMandatory)
		s.IsConditional = clonePtr(s.IsConditional)
		s.HideInResults = clonePtr(s.HideInResults)
		s.Version = clonePtr(s.Version)
		s.FSSections = cloneObject(s.FSSections)
		if s.Metrics != nil {
			metrics := make(map[string]string, len(s.Metrics))
			for k, v := range s.Metrics {
				metrics[k] = v
			}
			s.Metrics = metrics
		}
		if s.Dependency != nil {
			d := Dependency{ParentID: s.Dependency.ParentID}
			if s.Dependency.Condition != nil {
				d.Condition = make(map[string]bool, len(s.Dependency.Condition))
				for k, v := range s.Dependency.Condition {
					d.Condition[k] = v
				}
			}
			s.Dependency = &d
		}
		c.Settings = &s
	}
	return c
}

func (q *UserQuery) clone() *UserQuery {
	if q == nil {
		return nil
	}
	c := UserQuery{}
	if q.Roles != nil {
		c.Roles = make([]UserRole, len(q.Roles))
		for i, r := range q.Roles {
			c.Roles[i] = r
			if r.RoleDetails != nil {
				c.Roles[i].RoleDetails = append([]UserRoleDetails(nil), r.RoleDetails...)
			}
		}
	}
	return &c
}

func (q *FactSheetQuery) clone() *FactSheetQuery {
	if q == nil {
		return nil
	}
	c := FactSheetQuery{}
	if q.IDs != nil {
		c.IDs = append([]string(nil), q.IDs...)
	}
	if q.Filter != nil {
		f := *q.Filter
		f.FacetFilter = cloneFacetFilters(q.Filter.FacetFilter)
		c.Filter = &f
	}
	return &c
}

func cloneFacetFilters(filters []FacetFilter) []FacetFilter {
	if filters == nil {
		return nil
	}
	out := make([]FacetFilter, len(filters))
	for i, f := range filters {
		c := f
		if f.Keys != nil {
			c.Keys = append([]string(nil), f.Keys...)
		}
		if f.DateFilter != nil {
			d := *f.DateFilter
			d.From = clonePtr(d.From)
			d.To = clonePtr(d.To)
			c.DateFilter = &d
		}
		if f.SubscriptionFilter != nil {
			s := *f.SubscriptionFilter
			c.SubscriptionFilter = &s
		}
		c.SubFilter = cloneFacetFilters(f.SubFilter)
		out[i] = c
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneObject(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
