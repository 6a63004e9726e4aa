package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/poll-creator/model"
)

func boolPtr(b bool) *bool { return &b }

func question(id string, typ model.QuestionType, parent string, options ...string) model.Question {
	q := model.Question{ID: id, Label: id, Type: typ}
	for _, o := range options {
		q.Options = append(q.Options, model.QuestionOption{ID: o, Label: o})
	}
	if parent != "" {
		cond := map[string]bool{}
		if len(options) == 0 {
			cond["yes"] = true
		}
		q.Settings = &model.QuestionSettings{
			IsConditional: boolPtr(true),
			Dependency:    &model.Dependency{ParentID: parent, Condition: cond},
		}
	}
	return q
}

func TestFlattenDocumentOrder(t *testing.T) {
	group := question("group", model.QuestionText, "")
	group.Children = []model.Question{
		question("child1", model.QuestionText, ""),
		question("child2", model.QuestionText, ""),
	}
	group.Children[0].Children = []model.Question{question("grandchild", model.QuestionText, "")}
	questions := []model.Question{group, question("last", model.QuestionText, "")}

	entries := Flatten(questions)
	var ids, paths []string
	for i, e := range entries {
		assert.Equal(t, i, e.Position)
		ids = append(ids, e.Question.ID)
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"group", "child1", "grandchild", "child2", "last"}, ids)
	assert.Equal(t, []string{
		"questionnaire.questions[0]",
		"questionnaire.questions[0].children[0]",
		"questionnaire.questions[0].children[0].children[0]",
		"questionnaire.questions[0].children[1]",
		"questionnaire.questions[1]",
	}, paths)
	assert.Equal(t, 3, entries[2].Depth)
}

func TestResolveChildMayDependOnAncestor(t *testing.T) {
	group := question("group", model.QuestionSingleChoice, "", "yes", "no")
	group.Children = []model.Question{question("detail", model.QuestionText, "group")}
	group.Children[0].Settings.Dependency.Condition = map[string]bool{"yes": true}

	warnings, err := Resolve([]model.Question{group}, ResolveOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestResolveParentMayNotDependOnChild(t *testing.T) {
	group := question("group", model.QuestionText, "detail")
	group.Children = []model.Question{question("detail", model.QuestionText, "")}

	_, err := Resolve([]model.Question{group}, ResolveOptions{})
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, UnresolvedDependency, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "declared after it")
}

func TestResolveMissingParent(t *testing.T) {
	_, err := Resolve([]model.Question{
		question("a", model.QuestionText, ""),
		question("b", model.QuestionText, "ghost"),
	}, ResolveOptions{})

	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, UnresolvedDependency, issues[0].Kind)
	assert.Equal(t, "questionnaire.questions[1].settings.dependency.parentId", issues[0].Path)
	assert.Contains(t, issues[0].Message, "'b'")
	assert.Contains(t, issues[0].Message, "'ghost'")
}

func TestResolveSelfDependency(t *testing.T) {
	_, err := Resolve([]model.Question{question("a", model.QuestionText, "a")}, ResolveOptions{})
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, CyclicDependency, issues[0].Kind)
	assert.Equal(t, "cyclic dependency: a -> a", issues[0].Message)
}

func TestResolveLongCycleReportedOnce(t *testing.T) {
	_, err := Resolve([]model.Question{
		question("root", model.QuestionText, ""),
		question("tail", model.QuestionText, "c"),
		question("a", model.QuestionText, "c"),
		question("b", model.QuestionText, "a"),
		question("c", model.QuestionText, "b"),
	}, ResolveOptions{})

	issues := Issues(err)
	require.Len(t, issues, 2)
	assert.Equal(t, CyclicDependency, issues[0].Kind)
	assert.Equal(t, "cyclic dependency: a -> c -> b -> a", issues[0].Message)
	// tail leads into the cycle but is not part of it
	assert.Equal(t, UnresolvedDependency, issues[1].Kind)
	assert.Equal(t, "tail", issues[1].QuestionID)
}

func TestResolveSoundGraphHasNoCycles(t *testing.T) {
	questions := []model.Question{
		question("a", model.QuestionSingleChoice, "", "yes", "no"),
		question("b", model.QuestionText, "a"),
		question("c", model.QuestionText, "b"),
		question("d", model.QuestionText, "a"),
	}
	questions[1].Settings.Dependency.Condition = map[string]bool{"yes": true}

	_, err := Resolve(questions, ResolveOptions{})
	require.NoError(t, err)

	entries := Flatten(questions)
	positions := map[string]int{}
	for _, e := range entries {
		positions[e.Question.ID] = e.Position
	}
	for _, e := range entries {
		if dep := e.Question.Dependency(); dep != nil {
			assert.Less(t, positions[dep.ParentID], e.Position)
		}
	}
}

func TestResolveChainDepth(t *testing.T) {
	questions := []model.Question{
		question("a", model.QuestionText, ""),
		question("b", model.QuestionText, "a"),
		question("c", model.QuestionText, "b"),
	}

	_, err := Resolve(questions, ResolveOptions{MaxChainDepth: 2})
	require.NoError(t, err)

	_, err = Resolve(questions, ResolveOptions{MaxChainDepth: 1})
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, InvalidFieldValue, issues[0].Kind)
	assert.Equal(t, "c", issues[0].QuestionID)
}

func TestResolveConditionWarnings(t *testing.T) {
	parent := question("pick", model.QuestionSingleChoice, "", "yes", "no")
	child := question("why", model.QuestionText, "pick")
	child.Settings.Dependency.Condition = map[string]bool{"maybe": true, "yes": true}
	empty := question("when", model.QuestionDate, "pick")
	empty.Settings.Dependency.Condition = map[string]bool{}
	free := question("free", model.QuestionText, "")
	free.Settings = &model.QuestionSettings{IsConditional: boolPtr(true)}
	unmarked := question("unmarked", model.QuestionText, "pick")
	unmarked.Settings.IsConditional = nil
	unmarked.Settings.Dependency.Condition = map[string]bool{"no": true}

	warnings, err := Resolve([]model.Question{parent, child, empty, free, unmarked}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Path: "questionnaire.questions[1].settings.dependency.condition.maybe", Message: "'maybe' is not an option of question 'pick'"},
		{Path: "questionnaire.questions[2].settings.dependency.condition", Message: "condition is empty, question 'when' will never be shown"},
		{Path: "questionnaire.questions[3].settings.isConditional", Message: "question 'free' is conditional but declares no dependency"},
		{Path: "questionnaire.questions[4].settings.isConditional", Message: "question 'unmarked' has a dependency but is not marked conditional"},
	}, warnings)
}

func TestResolveConditionOnNonChoiceParentIsNotChecked(t *testing.T) {
	warnings, err := Resolve([]model.Question{
		question("score", model.QuestionNumber, ""),
		question("explain", model.QuestionText, "score"),
	}, ResolveOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
