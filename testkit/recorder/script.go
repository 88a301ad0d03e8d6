package recorder

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"go.rxlab.dev/toolbox/testkit"
)

// Event types understood in a Script.
const (
	EventText              = "text"
	EventClick             = "click"
	EventMessages          = "messages"
	EventExpect            = "expect"
	EventRemoveExpectation = "removeExpectation"
	EventUndo              = "undo"
)

// Script is a recorded chat session stored as YAML:
//
//	name: Simple test
//	events:
//	  - type: text
//	    text: Hello world
//	  - type: click
//	    button: Plus
//	    message: 1
//	  - type: expect
//	    message: 1
//	    expectations:
//	      - text: {comparison: contains, value: Hello}
//	      - count: {comparison: equals, value: 1}
type Script struct {
	Name   string        `yaml:"name"`
	Events []ScriptEvent `yaml:"events"`
}

// ScriptEvent is one event of a Script. Which fields are used depends on
// Type.
type ScriptEvent struct {
	Type         string              `yaml:"type"`
	Text         string              `yaml:"text,omitempty"`
	Button       string              `yaml:"button,omitempty"`
	Message      int                 `yaml:"message,omitempty"`
	Count        int                 `yaml:"count,omitempty"`
	Expectations []ScriptExpectation `yaml:"expectations,omitempty"`
}

// ScriptExpectation holds exactly one of Text and Count. A text expectation
// without a message targets the message of its event. A count expectation
// without a value compares against the count of the last messages event.
type ScriptExpectation struct {
	Message *int           `yaml:"message,omitempty"`
	Text    *ScriptOperand `yaml:"text,omitempty"`
	Count   *ScriptOperand `yaml:"count,omitempty"`
}

// ScriptOperand is a comparison and its right hand side.
type ScriptOperand struct {
	Comparison string    `yaml:"comparison"`
	Value      yaml.Node `yaml:"value"`
}

// ParseScript decodes a YAML event script. Unknown fields are rejected.
func ParseScript(data []byte) (Script, error) {
	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return script, errors.New("event script is empty")
		}
		return script, fmt.Errorf("couldn't parse event script: %w", err)
	}
	return script, nil
}

// Replay starts a recording named after the script on session, feeds it every
// event and returns the recorded plan. Events that don't change the plan are
// not errors; malformed events are and stop the replay.
func (sc Script) Replay(session *Session) (testkit.Plan, error) {
	session.Start(sc.Name)
	for i, ev := range sc.Events {
		if err := ev.apply(session); err != nil {
			return session.Stop(), fmt.Errorf("event %d: %w", i, err)
		}
	}
	return session.Stop(), nil
}

func (ev ScriptEvent) apply(session *Session) error {
	switch ev.Type {
	case EventText:
		session.NotifyTextSent(ev.Text)
	case EventClick:
		if ev.Button == "" {
			return errors.New("click event without a button")
		}
		session.NotifyButtonClicked(ev.Button, ev.Message)
	case EventMessages:
		session.NotifyMessageCount(ev.Count)
	case EventExpect:
		expectations, err := ev.expectations(session.MessageCount())
		if err != nil {
			return err
		}
		session.NotifyExpectationAdded(ev.Message, expectations)
	case EventRemoveExpectation:
		session.RemoveExpectation()
	case EventUndo:
		session.Undo()
	case "":
		return errors.New("event doesn't have a type value")
	default:
		return fmt.Errorf("unknown event type '%s'", ev.Type)
	}
	return nil
}

func (ev ScriptEvent) expectations(messageCount int) ([]Expectation, error) {
	out := make([]Expectation, 0, len(ev.Expectations))
	for i, se := range ev.Expectations {
		e, err := se.expectation(ev.Message, messageCount)
		if err != nil {
			return nil, fmt.Errorf("expectation %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (se ScriptExpectation) expectation(messageID, messageCount int) (Expectation, error) {
	switch {
	case se.Text != nil && se.Count != nil:
		return nil, errors.New("only one of text and count can be set")
	case se.Text != nil:
		op := testkit.TextOperator{Comparison: testkit.TextComparison(se.Text.Comparison)}
		if !op.Comparison.Valid() {
			return nil, fmt.Errorf("unknown text comparison %q", se.Text.Comparison)
		}
		if err := se.Text.Value.Decode(&op.Value); err != nil {
			return nil, fmt.Errorf("invalid text value: %w", err)
		}
		if se.Message != nil {
			messageID = *se.Message
		}
		return TextExpectation{MessageID: messageID, Operator: op}, nil
	case se.Count != nil:
		op := testkit.CountOperator{Comparison: testkit.CountComparison(se.Count.Comparison)}
		if !op.Comparison.Valid() {
			return nil, fmt.Errorf("unknown count comparison %q", se.Count.Comparison)
		}
		if se.Count.Value.IsZero() {
			op.Value = messageCount
		} else if err := se.Count.Value.Decode(&op.Value); err != nil {
			return nil, fmt.Errorf("invalid count value: %w", err)
		}
		return CountExpectation{Operator: op}, nil
	default:
		return nil, errors.New("one of text and count must be set")
	}
}
