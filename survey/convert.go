package survey

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mbolis/poll-creator/model"
)

// converter turns the generic tree into the typed survey model, recording
// every structural problem it finds with its path.
type converter struct {
	issueList
	maxDepth int
}

func (c *converter) survey(root map[string]any) *model.Survey {
	s := &model.Survey{}
	c.unknownKeys(root, "", "title", "questionnaire", "introductionText", "introductionSubject",
		"additionalFactSheetSubject", "additionalFactSheetText", "additionalFactSheetCheckEnabled",
		"repeatInterval", "timeFrame", "sendChangeNotifications", "allowedPermissionStatus",
		"dynamicScopeCheckEnabled", "factSheetQuery", "userQuery")

	if title, ok := c.str(root, "title", "", true); ok {
		s.Title = strings.TrimSpace(title)
		if s.Title == "" {
			c.fail(InvalidFieldValue, "title", "title cannot be empty or whitespace only")
		}
	}

	if obj, ok := c.object(root, "questionnaire", "", true); ok {
		path := "questionnaire"
		c.unknownKeys(obj, path, "questions")
		if items, ok := c.array(obj, "questions", path, true); ok {
			if len(items) == 0 {
				c.warn(field(path, "questions"), "questionnaire has no questions")
			}
			s.Questionnaire.Questions = c.questions(items, field(path, "questions"), 1)
		}
	}

	s.IntroductionText, _ = c.str(root, "introductionText", "", false)
	s.IntroductionSubject, _ = c.str(root, "introductionSubject", "", false)
	s.AdditionalFactSheetSubject, _ = c.str(root, "additionalFactSheetSubject", "", false)
	s.AdditionalFactSheetText, _ = c.str(root, "additionalFactSheetText", "", false)
	s.AdditionalFactSheetCheckEnabled = c.boolean(root, "additionalFactSheetCheckEnabled", "")
	s.RepeatInterval = c.nonNegative(root, "repeatInterval", "")
	s.TimeFrame = c.nonNegative(root, "timeFrame", "")
	s.SendChangeNotifications = c.boolean(root, "sendChangeNotifications", "")
	s.DynamicScopeCheckEnabled = c.boolean(root, "dynamicScopeCheckEnabled", "")
	if status, ok := c.str(root, "allowedPermissionStatus", "", false); ok && status != "" {
		if oneOf(model.AllowedPermissionStatus(status), model.AllowedPermissionStatuses) {
			s.AllowedPermissionStatus = model.AllowedPermissionStatus(status)
		} else {
			c.fail(InvalidFieldValue, "allowedPermissionStatus", "unknown permission status %q", status)
		}
	}

	if obj, ok := c.object(root, "userQuery", "", false); ok {
		s.UserQuery = c.userQuery(obj, "userQuery")
	}
	if obj, ok := c.object(root, "factSheetQuery", "", false); ok {
		s.FactSheetQuery = c.factSheetQuery(obj, "factSheetQuery")
	}
	if s.UserQuery == nil && s.FactSheetQuery == nil {
		c.warn("", "neither userQuery nor factSheetQuery is set, the poll has no recipient selection")
	}

	return s
}

func (c *converter) questions(items []any, path string, depth int) []model.Question {
	questions := make([]model.Question, 0, len(items))
	for i, item := range items {
		qpath := index(path, i)
		obj, ok := c.asObject(item, qpath)
		if !ok {
			continue
		}
		questions = append(questions, c.question(obj, qpath, depth))
	}
	return questions
}

func (c *converter) question(obj map[string]any, path string, depth int) model.Question {
	q := model.Question{}
	c.unknownKeys(obj, path, "id", "label", "type", "descriptiveText", "element", "options",
		"answerOptions", "children", "powerfeature", "disabled", "factSheetElement", "settings")

	q.ID = c.identifier(obj, path)
	if label, ok := c.str(obj, "label", path, true); ok {
		q.Label = label
		if strings.TrimSpace(label) == "" {
			c.fail(InvalidFieldValue, field(path, "label"), "label cannot be empty")
		}
	}
	typeKnown := false
	if typ, ok := c.str(obj, "type", path, true); ok {
		q.Type = model.QuestionType(typ)
		typeKnown = q.Type.Valid()
		if !typeKnown {
			c.fail(InvalidFieldValue, field(path, "type"), "unknown question type %q, expected one of %s",
				typ, joinValues(model.QuestionTypes))
		}
	}
	q.DescriptiveText, _ = c.str(obj, "descriptiveText", path, false)
	q.Element, _ = c.str(obj, "element", path, false)
	q.AnswerOptions, _ = c.str(obj, "answerOptions", path, false)
	q.PowerFeature = c.boolean(obj, "powerfeature", path)
	q.Disabled = c.boolean(obj, "disabled", path)

	if items, ok := c.array(obj, "options", path, false); ok {
		q.Options = c.options(items, field(path, "options"))
	}
	if typeKnown {
		switch {
		case q.Type.IsChoice() && len(q.Options) == 0:
			c.add(&Issue{
				Kind:       InvalidFieldValue,
				Path:       field(path, "options"),
				QuestionID: q.ID,
				Message:    "question " + quoteID(q.ID) + " of type '" + string(q.Type) + "' must have at least one option",
			})
		case !q.Type.IsChoice() && len(q.Options) > 0:
			c.warn(field(path, "options"), "options have no effect on questions of type '%s'", q.Type)
		}
	}

	if items, ok := c.array(obj, "children", path, false); ok {
		if depth >= c.maxDepth {
			c.fail(InvalidFieldValue, field(path, "children"), "questions may be nested at most %d levels deep", c.maxDepth)
		} else {
			q.Children = c.questions(items, field(path, "children"), depth+1)
		}
	}
	if el, ok := c.object(obj, "factSheetElement", path, false); ok {
		q.FactSheetElement = c.factSheetElement(el, field(path, "factSheetElement"))
	}
	if settings, ok := c.object(obj, "settings", path, false); ok {
		q.Settings = c.settings(settings, field(path, "settings"))
	}
	return q
}

func (c *converter) identifier(obj map[string]any, path string) string {
	id, ok := c.str(obj, "id", path, true)
	if ok && strings.TrimSpace(id) == "" {
		c.fail(InvalidFieldValue, field(path, "id"), "id cannot be empty")
	}
	return id
}

func (c *converter) options(items []any, path string) []model.QuestionOption {
	options := make([]model.QuestionOption, 0, len(items))
	for i, item := range items {
		opath := index(path, i)
		obj, ok := c.asObject(item, opath)
		if !ok {
			continue
		}
		c.unknownKeys(obj, opath, "id", "label", "comment")
		o := model.QuestionOption{ID: c.identifier(obj, opath)}
		if label, ok := c.str(obj, "label", opath, true); ok {
			o.Label = label
			if strings.TrimSpace(label) == "" {
				c.fail(InvalidFieldValue, field(opath, "label"), "label cannot be empty")
			}
		}
		o.Comment, _ = c.str(obj, "comment", opath, false)
		options = append(options, o)
	}
	return options
}

func (c *converter) settings(obj map[string]any, path string) *model.QuestionSettings {
	c.unknownKeys(obj, path, "isMandatory", "isConditional", "hideInResults", "dependency",
		"metrics", "version", "fsSections", "formula")
	s := &model.QuestionSettings{
		IsMandatory:   c.boolean(obj, "isMandatory", path),
		IsConditional: c.boolean(obj, "isConditional", path),
		HideInResults: c.boolean(obj, "hideInResults", path),
		Version:       c.integer(obj, "version", path),
		FSSections:    c.freeform(obj, "fsSections", path),
	}
	s.Formula, _ = c.str(obj, "formula", path, false)

	if metrics, ok := c.object(obj, "metrics", path, false); ok {
		s.Metrics = make(map[string]string, len(metrics))
		for _, key := range sortedKeys(metrics) {
			if v, ok := c.str(metrics, key, field(path, "metrics"), true); ok {
				s.Metrics[key] = v
			}
		}
	}

	if dep, ok := c.object(obj, "dependency", path, false); ok {
		dpath := field(path, "dependency")
		c.unknownKeys(dep, dpath, "parentId", "condition")
		d := &model.Dependency{}
		if parent, ok := c.str(dep, "parentId", dpath, true); ok {
			d.ParentID = parent
			if strings.TrimSpace(parent) == "" {
				c.fail(InvalidFieldValue, field(dpath, "parentId"), "parentId cannot be empty")
			}
		}
		if cond, ok := c.object(dep, "condition", dpath, true); ok {
			d.Condition = make(map[string]bool, len(cond))
			for _, key := range sortedKeys(cond) {
				if v := c.boolean(cond, key, field(dpath, "condition")); v != nil {
					d.Condition[key] = *v
				}
			}
		}
		s.Dependency = d
	}
	return s
}

func (c *converter) factSheetElement(obj map[string]any, path string) *model.FactSheetElement {
	c.unknownKeys(obj, path, "type", "tagGroupId", "subscription", "factSheetFieldName",
		"factSheetFieldType", "tagGroupMode", "factSheetFieldViewType", "properties")
	el := &model.FactSheetElement{
		Subscription: c.freeform(obj, "subscription", path),
	}
	el.Type, _ = c.str(obj, "type", path, false)
	el.TagGroupID, _ = c.str(obj, "tagGroupId", path, false)
	el.FactSheetFieldName, _ = c.str(obj, "factSheetFieldName", path, false)
	el.FactSheetFieldType, _ = c.str(obj, "factSheetFieldType", path, false)
	el.TagGroupMode, _ = c.str(obj, "tagGroupMode", path, false)
	el.FactSheetFieldViewType, _ = c.str(obj, "factSheetFieldViewType", path, false)
	if items, ok := c.array(obj, "properties", path, false); ok {
		for i, item := range items {
			ppath := index(field(path, "properties"), i)
			if prop, ok := c.asObject(item, ppath); ok {
				name, _ := c.str(prop, "name", ppath, true)
				el.Properties = append(el.Properties, model.ElementProperty{Name: name})
			}
		}
	}
	return el
}

func (c *converter) userQuery(obj map[string]any, path string) *model.UserQuery {
	c.unknownKeys(obj, path, "roles")
	uq := &model.UserQuery{Roles: []model.UserRole{}}
	items, ok := c.array(obj, "roles", path, true)
	if !ok {
		return uq
	}
	if len(items) == 0 {
		c.warn(field(path, "roles"), "userQuery has no roles, no users will be selected")
	}
	for i, item := range items {
		rpath := index(field(path, "roles"), i)
		role, ok := c.asObject(item, rpath)
		if !ok {
			continue
		}
		c.unknownKeys(role, rpath, "subscriptionType", "roleDetails")
		r := model.UserRole{SubscriptionType: c.subscriptionType(role, "subscriptionType", rpath)}
		if details, ok := c.array(role, "roleDetails", rpath, false); ok {
			for j, d := range details {
				dpath := index(field(rpath, "roleDetails"), j)
				if detail, ok := c.asObject(d, dpath); ok {
					name, _ := c.str(detail, "name", dpath, true)
					id, _ := c.str(detail, "id", dpath, true)
					r.RoleDetails = append(r.RoleDetails, model.UserRoleDetails{Name: name, ID: id})
				}
			}
		}
		uq.Roles = append(uq.Roles, r)
	}
	return uq
}

func (c *converter) subscriptionType(obj map[string]any, key, path string) model.SubscriptionType {
	v, ok := c.str(obj, key, path, true)
	if !ok {
		return ""
	}
	st := model.SubscriptionType(v)
	if !oneOf(st, model.SubscriptionTypes) {
		c.fail(InvalidFieldValue, field(path, key), "unknown subscription type %q, expected one of %s",
			v, joinValues(model.SubscriptionTypes))
	}
	return st
}

func (c *converter) factSheetQuery(obj map[string]any, path string) *model.FactSheetQuery {
	c.unknownKeys(obj, path, "filter", "ids")
	fq := &model.FactSheetQuery{}
	if filter, ok := c.object(obj, "filter", path, false); ok {
		fpath := field(path, "filter")
		c.unknownKeys(filter, fpath, "fsType", "facetFilter", "fullTextSearchTerm")
		qf := &model.QueryFilter{}
		qf.FSType, _ = c.str(filter, "fsType", fpath, false)
		qf.FullTextSearchTerm, _ = c.str(filter, "fullTextSearchTerm", fpath, false)
		if items, ok := c.array(filter, "facetFilter", fpath, false); ok {
			qf.FacetFilter = c.facetFilters(items, field(fpath, "facetFilter"), 1)
		}
		fq.Filter = qf
	}
	if items, ok := c.array(obj, "ids", path, false); ok {
		fq.IDs = make([]string, 0, len(items))
		for i, item := range items {
			id, ok := item.(string)
			if !ok {
				c.fail(InvalidFieldValue, index(field(path, "ids"), i), "expected a string, got %s", typeName(item))
				continue
			}
			fq.IDs = append(fq.IDs, id)
		}
	}
	if fq.Filter == nil && len(fq.IDs) == 0 {
		c.fail(MissingRequiredField, path, "factSheetQuery requires either a filter or an ids list")
	}
	return fq
}

func (c *converter) facetFilters(items []any, path string, depth int) []model.FacetFilter {
	filters := make([]model.FacetFilter, 0, len(items))
	for i, item := range items {
		fpath := index(path, i)
		obj, ok := c.asObject(item, fpath)
		if !ok {
			continue
		}
		c.unknownKeys(obj, fpath, "facetKey", "keys", "operator", "dateFilter", "subscriptionFilter", "subFilter")
		f := model.FacetFilter{}
		f.FacetKey, _ = c.str(obj, "facetKey", fpath, false)
		if keys, ok := c.array(obj, "keys", fpath, false); ok {
			f.Keys = make([]string, 0, len(keys))
			for j, k := range keys {
				s, ok := k.(string)
				if !ok {
					c.fail(InvalidFieldValue, index(field(fpath, "keys"), j), "expected a string, got %s", typeName(k))
					continue
				}
				f.Keys = append(f.Keys, s)
			}
		}
		if op, ok := c.str(obj, "operator", fpath, false); ok && op != "" {
			f.Operator = model.FacetFilterOperator(op)
			if !oneOf(f.Operator, model.FacetFilterOperators) {
				c.fail(InvalidFieldValue, field(fpath, "operator"), "unknown operator %q, expected one of %s",
					op, joinValues(model.FacetFilterOperators))
			}
		}
		if df, ok := c.object(obj, "dateFilter", fpath, false); ok {
			f.DateFilter = c.dateFilter(df, field(fpath, "dateFilter"))
		}
		if sf, ok := c.object(obj, "subscriptionFilter", fpath, false); ok {
			spath := field(fpath, "subscriptionFilter")
			c.unknownKeys(sf, spath, "type", "roleId")
			filter := &model.SubscriptionFilter{Type: c.subscriptionType(sf, "type", spath)}
			filter.RoleID, _ = c.str(sf, "roleId", spath, false)
			f.SubscriptionFilter = filter
		}
		if sub, ok := c.array(obj, "subFilter", fpath, false); ok {
			if depth >= c.maxDepth {
				c.fail(InvalidFieldValue, field(fpath, "subFilter"), "filters may be nested at most %d levels deep", c.maxDepth)
			} else {
				f.SubFilter = c.facetFilters(sub, field(fpath, "subFilter"), depth+1)
			}
		}
		filters = append(filters, f)
	}
	return filters
}

func (c *converter) dateFilter(obj map[string]any, path string) *model.DateFilter {
	c.unknownKeys(obj, path, "from", "to", "type")
	df := &model.DateFilter{}
	if typ, ok := c.str(obj, "type", path, true); ok {
		df.Type = model.DateFilterType(typ)
		if !oneOf(df.Type, model.DateFilterTypes) {
			c.fail(InvalidFieldValue, field(path, "type"), "unknown date filter type %q, expected one of %s",
				typ, joinValues(model.DateFilterTypes))
		}
	}
	df.From = c.date(obj, "from", path)
	df.To = c.date(obj, "to", path)
	return df
}

func (c *converter) date(obj map[string]any, key, path string) *model.Date {
	s, ok := c.str(obj, key, path, false)
	if !ok || s == "" {
		return nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		c.fail(InvalidFieldValue, field(path, key), "%s", err)
		return nil
	}
	return &d
}

// lookup returns the value stored under key, treating an explicit null as absent.
func (c *converter) lookup(obj map[string]any, key, path string, required bool) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			c.fail(MissingRequiredField, field(path, key), "field is required")
		}
		return nil, false
	}
	return v, true
}

func (c *converter) str(obj map[string]any, key, path string, required bool) (string, bool) {
	v, ok := c.lookup(obj, key, path, required)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.fail(InvalidFieldValue, field(path, key), "expected a string, got %s", typeName(v))
		return "", false
	}
	return s, true
}

func (c *converter) boolean(obj map[string]any, key, path string) *bool {
	v, ok := c.lookup(obj, key, path, false)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		c.fail(InvalidFieldValue, field(path, key), "expected a boolean, got %s", typeName(v))
		return nil
	}
	return &b
}

func (c *converter) integer(obj map[string]any, key, path string) *int64 {
	v, ok := c.lookup(obj, key, path, false)
	if !ok {
		return nil
	}
	num, ok := v.(json.Number)
	if !ok {
		c.fail(InvalidFieldValue, field(path, key), "expected an integer, got %s", typeName(v))
		return nil
	}
	n, err := num.Int64()
	if err != nil {
		c.fail(InvalidFieldValue, field(path, key), "expected an integer, got %s", num)
		return nil
	}
	return &n
}

func (c *converter) nonNegative(obj map[string]any, key, path string) *int64 {
	n := c.integer(obj, key, path)
	if n != nil && *n < 0 {
		c.fail(InvalidFieldValue, field(path, key), "must not be negative")
		return nil
	}
	return n
}

func (c *converter) object(obj map[string]any, key, path string, required bool) (map[string]any, bool) {
	v, ok := c.lookup(obj, key, path, required)
	if !ok {
		return nil, false
	}
	return c.asObject(v, field(path, key))
}

func (c *converter) asObject(v any, path string) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.fail(InvalidFieldValue, path, "expected an object, got %s", typeName(v))
	}
	return m, ok
}

func (c *converter) array(obj map[string]any, key, path string, required bool) ([]any, bool) {
	v, ok := c.lookup(obj, key, path, required)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		c.fail(InvalidFieldValue, field(path, key), "expected an array, got %s", typeName(v))
	}
	return items, ok
}

// freeform keeps an opaque object as-is, for fields the Poll API defines
// but this service does not interpret.
func (c *converter) freeform(obj map[string]any, key, path string) map[string]any {
	m, ok := c.object(obj, key, path, false)
	if !ok {
		return nil
	}
	return m
}

func (c *converter) unknownKeys(obj map[string]any, path string, known ...string) {
	for _, key := range sortedKeys(obj) {
		if !contains(known, key) {
			c.warn(field(path, key), "unknown field is ignored")
		}
	}
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func oneOf[T ~string](v T, values []T) bool {
	for _, known := range values {
		if v == known {
			return true
		}
	}
	return false
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func quoteID(id string) string {
	return "'" + id + "'"
}
