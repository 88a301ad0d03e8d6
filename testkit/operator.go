package testkit

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TextComparison is the comparison applied by a TextOperator.
type TextComparison string

// Text comparisons supported by ExpectMessageText steps.
const (
	TextEquals      TextComparison = "equals"
	TextNotEquals   TextComparison = "notEquals"
	TextContains    TextComparison = "contains"
	TextNotContains TextComparison = "notContains"
)

// Valid reports whether c is one of the known text comparisons.
func (c TextComparison) Valid() bool {
	switch c {
	case TextEquals, TextNotEquals, TextContains, TextNotContains:
		return true
	default:
		return false
	}
}

// TextOperator validates the text of a message, e.g. contains("Hello").
type TextOperator struct {
	Comparison TextComparison
	Value      string
}

// Equals returns a TextOperator matching the exact text.
func Equals(text string) TextOperator { return TextOperator{TextEquals, text} }

// NotEquals returns a TextOperator rejecting the exact text.
func NotEquals(text string) TextOperator { return TextOperator{TextNotEquals, text} }

// Contains returns a TextOperator matching messages containing text.
func Contains(text string) TextOperator { return TextOperator{TextContains, text} }

// NotContains returns a TextOperator rejecting messages containing text.
func NotContains(text string) TextOperator { return TextOperator{TextNotContains, text} }

func (o TextOperator) String() string {
	switch o.Comparison {
	case TextEquals:
		return o.Value
	case TextNotEquals:
		return "not equals to " + o.Value
	case TextContains:
		return "contains " + o.Value
	case TextNotContains:
		return "not contains " + o.Value
	default:
		return string(o.Comparison) + " " + o.Value
	}
}

type textOperatorJSON struct {
	Comparison TextComparison `json:"comparison"`
	Value      string         `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (o TextOperator) MarshalJSON() ([]byte, error) {
	if !o.Comparison.Valid() {
		return nil, fmt.Errorf("unknown text comparison %q", o.Comparison)
	}
	return json.Marshal(textOperatorJSON(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *TextOperator) UnmarshalJSON(data []byte) error {
	var tmp textOperatorJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	if !tmp.Comparison.Valid() {
		return fmt.Errorf("unknown text comparison %q", tmp.Comparison)
	}
	*o = TextOperator(tmp)
	return nil
}

// CountComparison is the comparison applied by a CountOperator.
type CountComparison string

// Count comparisons supported by ExpectMessageCount steps.
const (
	CountEquals      CountComparison = "equals"
	CountNotEquals   CountComparison = "notEquals"
	CountGreaterThan CountComparison = "greaterThan"
	CountLessThan    CountComparison = "lessThan"
)

// Valid reports whether c is one of the known count comparisons.
func (c CountComparison) Valid() bool {
	switch c {
	case CountEquals, CountNotEquals, CountGreaterThan, CountLessThan:
		return true
	default:
		return false
	}
}

// CountOperator validates the number of messages in the conversation.
type CountOperator struct {
	Comparison CountComparison
	Value      int
}

// CountIs returns a CountOperator matching exactly n messages.
func CountIs(n int) CountOperator { return CountOperator{CountEquals, n} }

// CountIsNot returns a CountOperator rejecting exactly n messages.
func CountIsNot(n int) CountOperator { return CountOperator{CountNotEquals, n} }

// CountAbove returns a CountOperator matching more than n messages.
func CountAbove(n int) CountOperator { return CountOperator{CountGreaterThan, n} }

// CountBelow returns a CountOperator matching less than n messages.
func CountBelow(n int) CountOperator { return CountOperator{CountLessThan, n} }

func (o CountOperator) String() string {
	v := strconv.Itoa(o.Value)
	switch o.Comparison {
	case CountEquals:
		return "=" + v
	case CountNotEquals:
		return "!=" + v
	case CountGreaterThan:
		return ">" + v
	case CountLessThan:
		return "<" + v
	default:
		return string(o.Comparison) + " " + v
	}
}

type countOperatorJSON struct {
	Comparison CountComparison `json:"comparison"`
	Value      int             `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (o CountOperator) MarshalJSON() ([]byte, error) {
	if !o.Comparison.Valid() {
		return nil, fmt.Errorf("unknown count comparison %q", o.Comparison)
	}
	return json.Marshal(countOperatorJSON(o))
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *CountOperator) UnmarshalJSON(data []byte) error {
	var tmp countOperatorJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	if !tmp.Comparison.Valid() {
		return fmt.Errorf("unknown count comparison %q", tmp.Comparison)
	}
	*o = CountOperator(tmp)
	return nil
}
