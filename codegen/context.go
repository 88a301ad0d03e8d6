package codegen

import (
	"fmt"

	"go.rxlab.dev/toolbox/testkit"
)

// ButtonClickContext is the template payload of a ButtonClick step.
type ButtonClickContext struct {
	ButtonText string
	MessageID  int
}

// TextInputContext is the template payload of a TextInput step.
type TextInputContext struct {
	Text string
}

// MessageExpectation is the template payload of an ExpectMessageText step.
// Comparison is one of equals, notEquals, contains and notContains.
type MessageExpectation struct {
	Comparison string
	Text       string
	MessageID  int
}

// CountExpectation is the template payload of an ExpectMessageCount step.
// Comparison is one of equals, notEquals, greaterThan and lessThan.
type CountExpectation struct {
	Comparison string
	Count      int
}

// GroupContext is the template payload of a Group step.
type GroupContext struct {
	Name      string
	MessageID int
}

// StepContext is a step flattened for templates: exactly one of the Is*
// flags is set, the matching payload is non-nil and the others are nil.
type StepContext struct {
	ID   string
	Type string

	IsButtonClick        bool
	IsTextInput          bool
	IsExpectMessageText  bool
	IsExpectMessageCount bool
	IsGroup              bool

	ButtonClick        *ButtonClickContext
	TextInput          *TextInputContext
	ExpectMessageText  *MessageExpectation
	ExpectMessageCount *CountExpectation
	Group              *GroupContext

	// Children holds the flattened children of a group, in order.
	Children []StepContext

	// Counter is the 1-based pre-order position of the step in its plan, or 0
	// for contexts built outside of FlattenPlan. Templates append it to local
	// identifiers so sibling assertions never collide.
	Counter int
}

// NewStepContext flattens step and its whole subtree.
func NewStepContext(step testkit.Step) StepContext {
	ctx := StepContext{
		ID:   step.StepID().String(),
		Type: string(step.Kind()),
	}

	switch s := step.(type) {
	case testkit.ButtonClick:
		ctx.IsButtonClick = true
		ctx.ButtonClick = &ButtonClickContext{ButtonText: s.ButtonText, MessageID: s.MessageID}
	case testkit.TextInput:
		ctx.IsTextInput = true
		ctx.TextInput = &TextInputContext{Text: s.Text}
	case testkit.ExpectMessageText:
		ctx.IsExpectMessageText = true
		ctx.ExpectMessageText = &MessageExpectation{
			Comparison: string(s.Text.Comparison),
			Text:       s.Text.Value,
			MessageID:  s.MessageID,
		}
	case testkit.ExpectMessageCount:
		ctx.IsExpectMessageCount = true
		ctx.ExpectMessageCount = &CountExpectation{
			Comparison: string(s.Count.Comparison),
			Count:      s.Count.Value,
		}
	case testkit.Group:
		ctx.IsGroup = true
		ctx.Group = &GroupContext{Name: s.Name, MessageID: s.MessageID}
		ctx.Children = make([]StepContext, 0, len(s.Children))
		for _, child := range s.Children {
			ctx.Children = append(ctx.Children, NewStepContext(child))
		}
	default:
		panic(fmt.Sprintf("codegen: unknown step type %T", step))
	}

	return ctx
}

// FlattenPlan flattens the root steps of plan and numbers every context,
// nested ones included, in pre-order starting from 1.
func FlattenPlan(plan testkit.Plan) []StepContext {
	steps := make([]StepContext, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		steps = append(steps, NewStepContext(s))
	}
	counter := 0
	numberContexts(steps, &counter)
	return steps
}

func numberContexts(steps []StepContext, counter *int) {
	for i := range steps {
		*counter++
		steps[i].Counter = *counter
		numberContexts(steps[i].Children, counter)
	}
}
