package survey

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mbolis/poll-creator/model"
)

type ResolveOptions struct {
	// MaxChainDepth bounds the length of a dependency chain. Zero means unbounded.
	MaxChainDepth int
}

// Resolve checks the conditional dependencies of a question tree. Question
// ids must already be unique. Every dependency must point to a question
// declared strictly earlier in document order, and the dependency graph
// must be acyclic.
func Resolve(questions []model.Question, opts ResolveOptions) ([]Warning, error) {
	return resolve(Flatten(questions), opts)
}

func resolve(entries []Entry, opts ResolveOptions) ([]Warning, error) {
	var list issueList

	positions := make(map[string]int, len(entries))
	for _, e := range entries {
		if _, dup := positions[e.Question.ID]; !dup {
			positions[e.Question.ID] = e.Position
		}
	}

	// parent[i] is the position of the question i depends on, or -1.
	parent := make([]int, len(entries))
	for i, e := range entries {
		parent[i] = -1
		dep := e.Question.Dependency()
		if dep == nil {
			continue
		}
		if p, ok := positions[dep.ParentID]; ok {
			parent[i] = p
		}
	}

	inCycle := findCycles(entries, parent, &list)

	for i, e := range entries {
		q := e.Question
		dep := q.Dependency()
		conditional := q.Settings != nil && q.Settings.IsConditional != nil && *q.Settings.IsConditional
		if dep == nil {
			if conditional {
				list.warn(field(e.Path, "settings.isConditional"), "question %s is conditional but declares no dependency", quoteID(q.ID))
			}
			continue
		}
		if inCycle[i] {
			continue
		}

		path := field(e.Path, "settings.dependency.parentId")
		p := parent[i]
		switch {
		case p < 0:
			list.add(&Issue{
				Kind:       UnresolvedDependency,
				Path:       path,
				QuestionID: q.ID,
				ParentID:   dep.ParentID,
				Message:    fmt.Sprintf("question %s depends on %s, which does not exist", quoteID(q.ID), quoteID(dep.ParentID)),
			})
			continue
		case p >= i:
			list.add(&Issue{
				Kind:       UnresolvedDependency,
				Path:       path,
				QuestionID: q.ID,
				ParentID:   dep.ParentID,
				Message: fmt.Sprintf("question %s depends on %s, which is declared after it at %s",
					quoteID(q.ID), quoteID(dep.ParentID), entries[p].Path),
			})
			continue
		}

		if !conditional {
			list.warn(field(e.Path, "settings.isConditional"), "question %s has a dependency but is not marked conditional", quoteID(q.ID))
		}
		checkCondition(e, entries[p], &list)
	}

	if opts.MaxChainDepth > 0 && list.err() == nil {
		checkChainDepth(entries, parent, opts.MaxChainDepth, &list)
	}
	return list.warnings, list.err()
}

// findCycles follows the parent edges from every question. Each question has
// at most one parent, so every cycle is found by walking until a question
// seen on the current walk comes back.
func findCycles(entries []Entry, parent []int, list *issueList) []bool {
	const (
		unvisited = iota
		walking
		done
	)
	state := make([]int, len(entries))
	inCycle := make([]bool, len(entries))

	for start := range entries {
		var walk []int
		n := start
		for n >= 0 && state[n] == unvisited {
			state[n] = walking
			walk = append(walk, n)
			n = parent[n]
		}
		if n >= 0 && state[n] == walking {
			var cycle []int
			for k := len(walk) - 1; k >= 0; k-- {
				cycle = append(cycle, walk[k])
				if walk[k] == n {
					break
				}
			}
			reportCycle(entries, cycle, list)
			for _, c := range cycle {
				inCycle[c] = true
			}
		}
		for _, w := range walk {
			state[w] = done
		}
	}
	return inCycle
}

func reportCycle(entries []Entry, cycle []int, list *issueList) {
	sort.Ints(cycle)
	first := entries[cycle[0]].Question

	// follow the edges from the earliest question so the chain reads in
	// dependency order: a -> b means a depends on b.
	chain := []string{first.ID}
	byID := make(map[string]*model.Question, len(cycle))
	for _, c := range cycle {
		byID[entries[c].Question.ID] = entries[c].Question
	}
	next := first.Dependency().ParentID
	for len(chain) <= len(cycle) {
		chain = append(chain, next)
		q, ok := byID[next]
		if !ok || next == first.ID {
			break
		}
		next = q.Dependency().ParentID
	}

	list.add(&Issue{
		Kind:       CyclicDependency,
		Path:       field(entries[cycle[0]].Path, "settings.dependency.parentId"),
		QuestionID: first.ID,
		ParentID:   first.Dependency().ParentID,
		Message:    "cyclic dependency: " + strings.Join(chain, " -> "),
	})
}

// checkCondition is a soft consistency check: condition keys of a dependency
// on a choice question should name options of that question.
func checkCondition(e, parentEntry Entry, list *issueList) {
	dep := e.Question.Dependency()
	path := field(e.Path, "settings.dependency.condition")
	if len(dep.Condition) == 0 {
		list.warn(path, "condition is empty, question %s will never be shown", quoteID(e.Question.ID))
		return
	}
	parentQ := parentEntry.Question
	if !parentQ.Type.IsChoice() {
		return
	}
	keys := make([]string, 0, len(dep.Condition))
	for key := range dep.Condition {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	options := parentQ.OptionIDs()
	for _, key := range keys {
		if !contains(options, key) {
			list.warn(field(path, key), "%s is not an option of question %s", quoteID(key), quoteID(parentQ.ID))
		}
	}
}

func checkChainDepth(entries []Entry, parent []int, max int, list *issueList) {
	// parents always precede their dependents here, so one pass in
	// document order sees every parent's depth first.
	depth := make([]int, len(entries))
	for i, e := range entries {
		if parent[i] < 0 {
			continue
		}
		depth[i] = depth[parent[i]] + 1
		if depth[i] > max {
			list.add(&Issue{
				Kind:       InvalidFieldValue,
				Path:       field(e.Path, "settings.dependency"),
				QuestionID: e.Question.ID,
				ParentID:   e.Question.Dependency().ParentID,
				Message:    fmt.Sprintf("dependency chain of question %s is %d levels deep, at most %d allowed", quoteID(e.Question.ID), depth[i], max),
			})
		}
	}
}
