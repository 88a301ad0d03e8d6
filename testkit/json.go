package testkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type buttonClickJSON struct {
	Type       StepKind  `json:"type"`
	ID         uuid.UUID `json:"id"`
	ButtonText string    `json:"buttonText"`
	MessageID  int       `json:"messageId"`
}

type textInputJSON struct {
	Type StepKind  `json:"type"`
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type expectMessageTextJSON struct {
	Type      StepKind     `json:"type"`
	ID        uuid.UUID    `json:"id"`
	MessageID int          `json:"messageId"`
	Text      TextOperator `json:"textOperator"`
}

type expectMessageCountJSON struct {
	Type  StepKind      `json:"type"`
	ID    uuid.UUID     `json:"id"`
	Count CountOperator `json:"countOperator"`
}

type groupJSON struct {
	Type      StepKind  `json:"type"`
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	MessageID int       `json:"messageId"`
	Children  []Step    `json:"children"`
}

type groupRawJSON struct {
	Type      StepKind          `json:"type"`
	ID        uuid.UUID         `json:"id"`
	Name      *string           `json:"name,omitempty"`
	MessageID int               `json:"messageId"`
	Children  []json.RawMessage `json:"children"`
}

// MarshalJSON implements json.Marshaler.
func (s ButtonClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(buttonClickJSON{KindButtonClick, s.ID, s.ButtonText, s.MessageID})
}

// MarshalJSON implements json.Marshaler.
func (s TextInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(textInputJSON{KindTextInput, s.ID, s.Text})
}

// MarshalJSON implements json.Marshaler.
func (s ExpectMessageText) MarshalJSON() ([]byte, error) {
	return json.Marshal(expectMessageTextJSON{KindExpectMessageText, s.ID, s.MessageID, s.Text})
}

// MarshalJSON implements json.Marshaler.
func (s ExpectMessageCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(expectMessageCountJSON{KindExpectMessageCount, s.ID, s.Count})
}

// MarshalJSON implements json.Marshaler.
func (s Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{Type: KindGroup, ID: s.ID, MessageID: s.MessageID, Children: s.Children}
	if s.Name != "" {
		out.Name = &s.Name
	}
	if out.Children == nil {
		out.Children = []Step{}
	}
	return json.Marshal(out)
}

// protoStep only reads the discriminator; the raw bytes are decoded into the
// concrete variant in a second step.
type protoStep struct {
	kind    StepKind
	rawJSON json.RawMessage
}

func (ps *protoStep) UnmarshalJSON(b []byte) error {
	var tmp struct {
		Type StepKind `json:"type"`
	}
	err := json.Unmarshal(b, &tmp)
	*ps = protoStep{tmp.Type, b}
	return err
}

// UnmarshalStep decodes a single step object, picking the variant from its
// "type" property.
func UnmarshalStep(data []byte) (Step, error) {
	var ps protoStep
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, err
	}

	switch ps.kind {
	case KindButtonClick:
		var v buttonClickJSON
		if err := strictUnmarshal(ps.rawJSON, &v); err != nil {
			return nil, err
		}
		return ButtonClick{ID: v.ID, ButtonText: v.ButtonText, MessageID: v.MessageID}, nil
	case KindTextInput:
		var v textInputJSON
		if err := strictUnmarshal(ps.rawJSON, &v); err != nil {
			return nil, err
		}
		return TextInput{ID: v.ID, Text: v.Text}, nil
	case KindExpectMessageText:
		var v expectMessageTextJSON
		if err := strictUnmarshal(ps.rawJSON, &v); err != nil {
			return nil, err
		}
		return ExpectMessageText{ID: v.ID, MessageID: v.MessageID, Text: v.Text}, nil
	case KindExpectMessageCount:
		var v expectMessageCountJSON
		if err := strictUnmarshal(ps.rawJSON, &v); err != nil {
			return nil, err
		}
		return ExpectMessageCount{ID: v.ID, Count: v.Count}, nil
	case KindGroup:
		var v groupRawJSON
		if err := strictUnmarshal(ps.rawJSON, &v); err != nil {
			return nil, err
		}
		children, err := unmarshalSteps(v.Children)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", v.ID, err)
		}
		g := Group{ID: v.ID, MessageID: v.MessageID, Children: children}
		if v.Name != nil {
			g.Name = *v.Name
		}
		return g, nil
	case "":
		return nil, errors.New("step doesn't have a type value")
	default:
		return nil, fmt.Errorf("unknown step type '%s'", ps.kind)
	}
}

func unmarshalSteps(raw []json.RawMessage) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for i, r := range raw {
		s, err := UnmarshalStep(r)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

type planJSON struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Steps     []Step    `json:"steps"`
}

type planRawJSON struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	Steps     []json.RawMessage `json:"steps"`
}

// MarshalJSON implements json.Marshaler.
func (p Plan) MarshalJSON() ([]byte, error) {
	steps := p.Steps
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(planJSON{p.ID, p.Name, p.CreatedAt, steps})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var v planRawJSON
	if err := strictUnmarshal(data, &v); err != nil {
		return err
	}
	steps, err := unmarshalSteps(v.Steps)
	if err != nil {
		return err
	}
	*p = Plan{ID: v.ID, Name: v.Name, CreatedAt: v.CreatedAt, Steps: steps}
	return nil
}

// strictUnmarshal rejects unknown fields and trailing data.
func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after the JSON object")
	}
	return nil
}
