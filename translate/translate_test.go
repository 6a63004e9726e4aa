package translate

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/poll-creator/model"
	"github.com/mbolis/poll-creator/survey"
)

const sample = `{
	"title": "Application review",
	"introductionText": "Please answer",
	"repeatInterval": 0,
	"questionnaire": {"questions": [
		{"id": "owner", "label": "Owner known?", "type": "singlechoice",
		 "options": [{"id": "yes", "label": "Yes"}, {"id": "no", "label": "No"}]},
		{"id": "name", "label": "Owner name", "type": "text",
		 "settings": {"isConditional": true, "dependency": {"parentId": "owner", "condition": {"yes": true}}},
		 "children": [{"id": "email", "label": "Owner e-mail", "type": "text"}]}
	]},
	"userQuery": {"roles": [{"subscriptionType": "RESPONSIBLE"}]}
}`

func validSurvey(t *testing.T) *model.Survey {
	t.Helper()
	report, err := survey.Validate([]byte(sample))
	require.NoError(t, err)
	return report.Survey
}

func TestTranslateCarriesFields(t *testing.T) {
	s := validSurvey(t)
	due, err := model.ParseDate("2026-12-31")
	require.NoError(t, err)

	poll, err := New(Config{}).Translate(s, Params{Language: "en", FactSheetType: "Application", DueDate: &due})
	require.NoError(t, err)

	assert.Equal(t, "Application review", poll.Title)
	assert.Equal(t, "en", poll.Language)
	assert.Equal(t, "Application", poll.FactSheetType)
	assert.Equal(t, "2026-12-31", poll.DueDate.String())
	assert.Equal(t, "Please answer", poll.IntroductionText)
	require.NotNil(t, poll.RepeatInterval)
	assert.Zero(t, *poll.RepeatInterval)
	assert.Equal(t, s.Questionnaire, poll.Questionnaire)
	assert.Equal(t, s.UserQuery, poll.UserQuery)
}

func TestTranslateOmitsAbsentOptionals(t *testing.T) {
	poll, err := New(Config{}).Translate(validSurvey(t), Params{Language: "en", FactSheetType: "Application"})
	require.NoError(t, err)

	raw, err := json.Marshal(poll)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.NotContains(t, body, "dueDate")
	assert.NotContains(t, body, "factSheetQuery")
	assert.NotContains(t, body, "timeFrame")
	assert.Contains(t, body, "repeatInterval")
	for key, v := range body {
		assert.NotNil(t, v, key)
	}
}

func TestTranslateDoesNotShareMemory(t *testing.T) {
	s := validSurvey(t)
	poll, err := New(Config{}).Translate(s, Params{Language: "en", FactSheetType: "Application"})
	require.NoError(t, err)

	poll.Questionnaire.Questions[0].Options[0].Label = "changed"
	poll.Questionnaire.Questions[1].Settings.Dependency.Condition["no"] = true
	poll.Questionnaire.Questions[1].Children[0].ID = "changed"
	poll.UserQuery.Roles[0].SubscriptionType = model.SubscriptionObserver

	assert.Equal(t, "Yes", s.Questionnaire.Questions[0].Options[0].Label)
	assert.Equal(t, map[string]bool{"yes": true}, s.Questionnaire.Questions[1].Settings.Dependency.Condition)
	assert.Equal(t, "email", s.Questionnaire.Questions[1].Children[0].ID)
	assert.Equal(t, model.SubscriptionResponsible, s.UserQuery.Roles[0].SubscriptionType)
}

func TestTranslateAllowLists(t *testing.T) {
	tr := New(Config{Languages: []string{"en", "de"}, FactSheetTypes: []string{"Application"}})
	s := validSurvey(t)

	_, err := tr.Translate(s, Params{Language: "de", FactSheetType: "Application"})
	require.NoError(t, err)

	_, err = tr.Translate(s, Params{Language: "xx", FactSheetType: "Application"})
	require.Error(t, err)
	assert.True(t, survey.HasKind(err, survey.UnsupportedLanguage))
	assert.False(t, survey.HasKind(err, survey.UnsupportedFactSheetType))

	_, err = tr.Translate(s, Params{Language: "xx", FactSheetType: "Project"})
	issues := survey.Issues(err)
	require.Len(t, issues, 2)
	assert.Equal(t, survey.UnsupportedLanguage, issues[0].Kind)
	assert.Equal(t, survey.UnsupportedFactSheetType, issues[1].Kind)
	assert.Equal(t, "factSheetType", issues[1].Path)
}

func TestTranslateRequiresLanguageAndType(t *testing.T) {
	_, err := New(Config{}).Translate(validSurvey(t), Params{})
	assert.True(t, survey.HasKind(err, survey.UnsupportedLanguage))
	assert.True(t, survey.HasKind(err, survey.UnsupportedFactSheetType))
}

func TestTranslateMapsIDsConsistently(t *testing.T) {
	s := validSurvey(t)
	poll, err := New(Config{MapIDsToUUID: true}).Translate(s, Params{Language: "en", FactSheetType: "Application"})
	require.NoError(t, err)

	owner := poll.Questionnaire.Questions[0]
	name := poll.Questionnaire.Questions[1]
	for _, id := range []string{owner.ID, owner.Options[0].ID, owner.Options[1].ID, name.ID, name.Children[0].ID} {
		_, err := uuid.FromString(id)
		assert.NoError(t, err, id)
	}

	assert.Equal(t, QuestionUUID("owner"), owner.ID)
	assert.Equal(t, owner.ID, name.Settings.Dependency.ParentID)
	assert.Equal(t, map[string]bool{owner.Options[0].ID: true}, name.Settings.Dependency.Condition)
	assert.NotEqual(t, owner.Options[0].ID, OptionUUID("name", "yes"))

	// mapped output is still a valid survey
	raw, err := json.Marshal(poll.Questionnaire)
	require.NoError(t, err)
	_, err = survey.Validate([]byte(`{"title": "t", "questionnaire": ` + string(raw) + `}`))
	assert.NoError(t, err)

	again, err := New(Config{MapIDsToUUID: true}).Translate(s, Params{Language: "en", FactSheetType: "Application"})
	require.NoError(t, err)
	assert.Equal(t, poll.Questionnaire, again.Questionnaire)
	assert.Equal(t, "owner", s.Questionnaire.Questions[0].ID)
}

func TestQuestionUUIDKeepsUUIDs(t *testing.T) {
	id := "0b9d4f0e-4f5a-4a8e-9f3c-2d7a1c3e5b6f"
	assert.Equal(t, id, QuestionUUID(id))
	assert.Equal(t, id, OptionUUID("q", id))
}
