package testkit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DocumentPlansKey is the property holding the plans of a toolbox document.
const DocumentPlansKey = "testPlans"

// ErrPlanNotFound is returned when a document has no plan with the requested name.
var ErrPlanNotFound = errors.New("test plan not found")

// LoadPlan decodes a plan from data, which is either a single plan object or
// a toolbox document with a "testPlans" array. For documents the plan called
// name is selected, or the first one when name is empty.
func LoadPlan(data []byte, name string) (Plan, error) {
	if !gjson.ValidBytes(data) {
		return Plan{}, errors.New("invalid JSON")
	}

	plans := gjson.GetBytes(data, DocumentPlansKey)
	if !plans.Exists() {
		var p Plan
		if err := json.Unmarshal(data, &p); err != nil {
			return Plan{}, err
		}
		return p, nil
	}
	if !plans.IsArray() {
		return Plan{}, fmt.Errorf("'%s' should be an array", DocumentPlansKey)
	}

	var raw *gjson.Result
	plans.ForEach(func(_, v gjson.Result) bool {
		if name == "" || v.Get("name").String() == name {
			raw = &v
			return false
		}
		return true
	})
	if raw == nil {
		if name == "" {
			return Plan{}, fmt.Errorf("document has no test plans: %w", ErrPlanNotFound)
		}
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, name)
	}

	var p Plan
	if err := json.Unmarshal([]byte(raw.Raw), &p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// PlanNames lists the names of the plans in data, in document order. A
// single plan object yields its own name.
func PlanNames(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	plans := gjson.GetBytes(data, DocumentPlansKey)
	if !plans.Exists() {
		return []string{gjson.GetBytes(data, "name").String()}, nil
	}
	var names []string
	for _, v := range plans.Array() {
		names = append(names, v.Get("name").String())
	}
	return names, nil
}
