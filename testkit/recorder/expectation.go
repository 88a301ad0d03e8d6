package recorder

import (
	"fmt"

	"go.rxlab.dev/toolbox/testkit"
)

// Expectation is one assertion picked for a message while recording. The
// implementations are TextExpectation and CountExpectation.
type Expectation interface {
	// Step returns the plan step the expectation is recorded as.
	Step() testkit.Step

	isExpectation()
}

// TextExpectation asserts on the text of a message.
type TextExpectation struct {
	MessageID int
	Operator  testkit.TextOperator
}

// Step implements Expectation.
func (e TextExpectation) Step() testkit.Step {
	return testkit.NewExpectMessageText(e.MessageID, e.Operator)
}

func (TextExpectation) isExpectation() {}

// CountExpectation asserts on the number of messages in the chat.
type CountExpectation struct {
	Operator testkit.CountOperator
}

// Step implements Expectation.
func (e CountExpectation) Step() testkit.Step {
	return testkit.NewExpectMessageCount(e.Operator)
}

func (CountExpectation) isExpectation() {}

// expectationFromStep is the inverse of Expectation.Step. Steps that are not
// assertions have no expectation.
func expectationFromStep(step testkit.Step) (Expectation, bool) {
	switch s := step.(type) {
	case testkit.ExpectMessageText:
		return TextExpectation{MessageID: s.MessageID, Operator: s.Text}, true
	case testkit.ExpectMessageCount:
		return CountExpectation{Operator: s.Count}, true
	case testkit.ButtonClick, testkit.TextInput, testkit.Group:
		return nil, false
	default:
		panic(fmt.Sprintf("recorder: unknown step type %T", step))
	}
}

// expectationGroup wraps the expectations for messageID in a group named
// after the message.
func expectationGroup(messageID int, expectations []Expectation) testkit.Group {
	children := make([]testkit.Step, 0, len(expectations))
	for _, e := range expectations {
		children = append(children, e.Step())
	}
	return testkit.NewGroup(testkit.GroupName(messageID), messageID, children...)
}
