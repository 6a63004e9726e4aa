package survey

import "github.com/mbolis/poll-creator/model"

const questionsPath = "questionnaire.questions"

// Entry is a question at its position in document order: depth-first,
// parent before children, siblings in listed order.
type Entry struct {
	Question *model.Question
	Path     string
	Position int
	Depth    int
}

// Flatten lists the question tree in document order. It walks the tree with
// an explicit stack, so arbitrarily deep input cannot exhaust the goroutine
// stack.
func Flatten(questions []model.Question) []Entry {
	type frame struct {
		siblings []model.Question
		path     string
		next     int
		depth    int
	}

	var entries []Entry
	stack := []frame{{siblings: questions, path: questionsPath, depth: 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.siblings) {
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.next
		top.next++

		q := &top.siblings[i]
		path := index(top.path, i)
		entries = append(entries, Entry{Question: q, Path: path, Position: len(entries), Depth: top.depth})
		if len(q.Children) > 0 {
			stack = append(stack, frame{siblings: q.Children, path: field(path, "children"), depth: top.depth + 1})
		}
	}
	return entries
}

// checkUniqueness reports duplicate question ids across the flattened tree
// and duplicate option ids within each question.
func checkUniqueness(entries []Entry) error {
	var list issueList
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		id := e.Question.ID
		if first, dup := seen[id]; dup {
			list.add(&Issue{
				Kind:    DuplicateIdentifier,
				Path:    field(e.Path, "id"),
				Scope:   "questionnaire",
				ID:      id,
				Message: "question id " + quoteID(id) + " is already used by " + first,
			})
		} else {
			seen[id] = e.Path
		}

		options := make(map[string]int, len(e.Question.Options))
		for j, o := range e.Question.Options {
			if first, dup := options[o.ID]; dup {
				list.add(&Issue{
					Kind:       DuplicateIdentifier,
					Path:       field(index(field(e.Path, "options"), j), "id"),
					Scope:      "question " + quoteID(id),
					ID:         o.ID,
					QuestionID: id,
					Message:    "option id " + quoteID(o.ID) + " is already used by " + index(field(e.Path, "options"), first),
				})
			} else {
				options[o.ID] = j
			}
		}
	}
	return list.err()
}
