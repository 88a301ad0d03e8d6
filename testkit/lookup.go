package testkit

import (
	"strconv"

	"github.com/google/uuid"
)

// GroupNamePrefix prefixes the name of groups created for a message's expectations.
const GroupNamePrefix = "group-"

// GroupName returns the name used for the expectation group of a message.
func GroupName(messageID int) string {
	return GroupNamePrefix + strconv.Itoa(messageID)
}

// FindStep searches the whole tree depth-first and returns the first step
// with the given id.
func FindStep(id uuid.UUID, steps []Step) (Step, bool) {
	var found Step
	Walk(steps, func(s Step, _ int) bool {
		if s.StepID() == id {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits every step in pre-order together with its depth, 0 for root
// steps. It stops as soon as fn returns false and reports whether the walk
// ran to completion.
func Walk(steps []Step, fn func(step Step, depth int) bool) bool {
	return walk(steps, 0, fn)
}

func walk(steps []Step, depth int, fn func(Step, int) bool) bool {
	for _, s := range steps {
		if !fn(s, depth) {
			return false
		}
		if g, ok := s.(Group); ok {
			if !walk(g.Children, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// GroupForMessage returns the root-level expectation group recorded for the
// given message.
func GroupForMessage(steps []Step, messageID int) (Group, bool) {
	name := GroupName(messageID)
	for _, s := range steps {
		if g, ok := s.(Group); ok && g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// StepsForMessage returns the children of the expectation group recorded for
// the given message, or nil when there is none.
func StepsForMessage(steps []Step, messageID int) []Step {
	g, ok := GroupForMessage(steps, messageID)
	if !ok {
		return nil
	}
	return g.Children
}

// LastGroup returns the last root step if it is a group.
func LastGroup(steps []Step) (Group, bool) {
	if len(steps) == 0 {
		return Group{}, false
	}
	g, ok := steps[len(steps)-1].(Group)
	return g, ok
}
