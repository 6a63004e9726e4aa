package translate

import (
	"github.com/gofrs/uuid"

	"github.com/mbolis/poll-creator/model"
)

// QuestionUUID is the id a question with the given id is mapped to. Ids
// that already are UUIDs are kept.
func QuestionUUID(id string) string {
	if _, err := uuid.FromString(id); err == nil {
		return id
	}
	return uuid.NewV5(Namespace, "question:"+id).String()
}

// OptionUUID is the id an option is mapped to. Option ids are only unique
// within their question, so the question id takes part in the name.
func OptionUUID(questionID, optionID string) string {
	if _, err := uuid.FromString(optionID); err == nil {
		return optionID
	}
	return uuid.NewV5(Namespace, "option:"+questionID+":"+optionID).String()
}

// mapIDs rewrites ids in place. Condition keys that name an option of the
// parent question follow that option; other keys are left alone.
func mapIDs(questions []model.Question) {
	options := map[string]map[string]bool{}
	walk(questions, func(q *model.Question) {
		ids := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			ids[o.ID] = true
		}
		options[q.ID] = ids
	})

	walk(questions, func(q *model.Question) {
		for i := range q.Options {
			q.Options[i].ID = OptionUUID(q.ID, q.Options[i].ID)
		}
		if dep := q.Dependency(); dep != nil {
			parentOptions := options[dep.ParentID]
			if dep.Condition != nil {
				condition := make(map[string]bool, len(dep.Condition))
				for key, v := range dep.Condition {
					if parentOptions[key] {
						key = OptionUUID(dep.ParentID, key)
					}
					condition[key] = v
				}
				dep.Condition = condition
			}
			dep.ParentID = QuestionUUID(dep.ParentID)
		}
		q.ID = QuestionUUID(q.ID)
	})
}

func walk(questions []model.Question, fn func(*model.Question)) {
	stack := make([]*model.Question, 0, len(questions))
	for i := len(questions) - 1; i >= 0; i-- {
		stack = append(stack, &questions[i])
	}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(q)
		for i := len(q.Children) - 1; i >= 0; i-- {
			stack = append(stack, &q.Children[i])
		}
	}
}
