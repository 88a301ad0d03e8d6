// Package testkit contains the recorded test scenario model: steps, the tree
// they form, and the plan that owns the root-level steps.
//
// All values are immutable in practice. Every structural operation returns a
// new value and never writes through a slice reachable from its input, so a
// Plan handed to another goroutine stays valid while recording continues.
package testkit

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// StepKind is the stable tag of a step variant. It is used as the JSON
// discriminator and as the template context type.
type StepKind string

// The step variants.
const (
	KindButtonClick        StepKind = "buttonClick"
	KindTextInput          StepKind = "textInput"
	KindExpectMessageText  StepKind = "expectMessageText"
	KindExpectMessageCount StepKind = "expectMessageCount"
	KindGroup              StepKind = "group"
)

// Step is one node of a recorded scenario. The set of implementations is
// closed: ButtonClick, TextInput, ExpectMessageText, ExpectMessageCount and
// Group.
type Step interface {
	StepID() uuid.UUID
	Kind() StepKind

	isStep()
}

// ButtonClick simulates tapping an inline button of a referenced message.
type ButtonClick struct {
	ID         uuid.UUID
	ButtonText string
	MessageID  int
}

// NewButtonClick returns a ButtonClick with a fresh id.
func NewButtonClick(buttonText string, messageID int) ButtonClick {
	return ButtonClick{ID: uuid.New(), ButtonText: buttonText, MessageID: messageID}
}

// StepID implements Step.
func (s ButtonClick) StepID() uuid.UUID { return s.ID }

// Kind implements Step.
func (ButtonClick) Kind() StepKind { return KindButtonClick }

func (ButtonClick) isStep() {}

// TextInput simulates sending a chat message.
type TextInput struct {
	ID   uuid.UUID
	Text string
}

// NewTextInput returns a TextInput with a fresh id.
func NewTextInput(text string) TextInput {
	return TextInput{ID: uuid.New(), Text: text}
}

// StepID implements Step.
func (s TextInput) StepID() uuid.UUID { return s.ID }

// Kind implements Step.
func (TextInput) Kind() StepKind { return KindTextInput }

func (TextInput) isStep() {}

// ExpectMessageText asserts on the text of the message at MessageID.
type ExpectMessageText struct {
	ID        uuid.UUID
	MessageID int
	Text      TextOperator
}

// NewExpectMessageText returns an ExpectMessageText with a fresh id.
func NewExpectMessageText(messageID int, text TextOperator) ExpectMessageText {
	return ExpectMessageText{ID: uuid.New(), MessageID: messageID, Text: text}
}

// StepID implements Step.
func (s ExpectMessageText) StepID() uuid.UUID { return s.ID }

// Kind implements Step.
func (ExpectMessageText) Kind() StepKind { return KindExpectMessageText }

func (ExpectMessageText) isStep() {}

// ExpectMessageCount asserts on the number of messages in the conversation.
type ExpectMessageCount struct {
	ID    uuid.UUID
	Count CountOperator
}

// NewExpectMessageCount returns an ExpectMessageCount with a fresh id.
func NewExpectMessageCount(count CountOperator) ExpectMessageCount {
	return ExpectMessageCount{ID: uuid.New(), Count: count}
}

// StepID implements Step.
func (s ExpectMessageCount) StepID() uuid.UUID { return s.ID }

// Kind implements Step.
func (ExpectMessageCount) Kind() StepKind { return KindExpectMessageCount }

func (ExpectMessageCount) isStep() {}

// Group bundles steps under the message they were recorded against. It is the
// only variant with children. An empty Name means the group is unnamed.
type Group struct {
	ID        uuid.UUID
	Name      string
	MessageID int
	Children  []Step
}

// NewGroup returns a Group with a fresh id owning a copy of children.
func NewGroup(name string, messageID int, children ...Step) Group {
	return Group{ID: uuid.New(), Name: name, MessageID: messageID, Children: slices.Clone(children)}
}

// StepID implements Step.
func (s Group) StepID() uuid.UUID { return s.ID }

// Kind implements Step.
func (Group) Kind() StepKind { return KindGroup }

func (Group) isStep() {}

// AddChild returns a copy of g with step appended to its children.
func (g Group) AddChild(step Step) Group {
	children := make([]Step, len(g.Children), len(g.Children)+1)
	copy(children, g.Children)
	g.Children = append(children, step)
	return g
}

// Equal reports whether both groups have the same fields and equal children.
func (g Group) Equal(other Group) bool {
	return g.ID == other.ID && g.Name == other.Name && g.MessageID == other.MessageID &&
		StepSlicesEqual(g.Children, other.Children)
}

// AddStep appends step to parent's own children. Only groups own children in
// this model, so for every other variant parent is returned as is and the
// second result is false.
func AddStep(parent, step Step) (Step, bool) {
	g, ok := parent.(Group)
	if !ok {
		return parent, false
	}
	return g.AddChild(step), true
}

// UpdateStep replaces the first node of root's subtree, in pre-order, whose id
// is id. The whole node is replaced, children included. When nothing matches
// root is returned unchanged and the second result is false.
func UpdateStep(root, step Step, id uuid.UUID) (Step, bool) {
	if root.StepID() == id {
		return step, true
	}
	g, ok := root.(Group)
	if !ok {
		return root, false
	}
	children, ok := updateInSlice(g.Children, step, id)
	if !ok {
		return root, false
	}
	g.Children = children
	return g, true
}

// updateInSlice returns a new slice where the first match in document order
// has been replaced. The input slice is never written to.
func updateInSlice(steps []Step, step Step, id uuid.UUID) ([]Step, bool) {
	for i, s := range steps {
		updated, ok := UpdateStep(s, step, id)
		if !ok {
			continue
		}
		out := slices.Clone(steps)
		out[i] = updated
		return out, true
	}
	return steps, false
}

// StepsEqual reports whether a and b are the same variant with equal fields,
// comparing group children recursively.
func StepsEqual(a, b Step) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case ButtonClick:
		b, ok := b.(ButtonClick)
		return ok && a == b
	case TextInput:
		b, ok := b.(TextInput)
		return ok && a == b
	case ExpectMessageText:
		b, ok := b.(ExpectMessageText)
		return ok && a == b
	case ExpectMessageCount:
		b, ok := b.(ExpectMessageCount)
		return ok && a == b
	case Group:
		b, ok := b.(Group)
		return ok && a.Equal(b)
	default:
		panic(fmt.Sprintf("testkit: unknown step type %T", a))
	}
}

// StepSlicesEqual reports whether both sequences hold equal steps in the same order.
func StepSlicesEqual(a, b []Step) bool {
	return slices.EqualFunc(a, b, StepsEqual)
}
