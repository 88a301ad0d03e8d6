// Package recorder turns the events of a live chat session into a test plan.
//
// A Session is fed by whatever drives the chat (a UI, a replayed event
// script) and owns the plan being recorded. It is safe for concurrent use;
// the Plan values it hands out are never modified by later events.
package recorder

import (
	"sync"

	"github.com/sirupsen/logrus"

	"go.rxlab.dev/toolbox/testkit"
)

// DefaultPlanName is the name of a plan started without one.
const DefaultPlanName = "New Test Plan"

// maxHistory bounds the number of plans kept for Undo.
const maxHistory = 100

// Session records one test plan.
type Session struct {
	logger logrus.FieldLogger

	mu           sync.Mutex
	plan         testkit.Plan
	history      []testkit.Plan
	recording    bool
	messageCount int
}

// NewSession returns an idle session holding an empty plan.
func NewSession(logger logrus.FieldLogger) *Session {
	return &Session{
		logger: logger.WithField("component", "recorder"),
		plan:   testkit.NewPlan(DefaultPlanName),
	}
}

// Start begins recording a new, empty plan. Any previous plan and its undo
// history are discarded.
func (s *Session) Start(name string) {
	if name == "" {
		name = DefaultPlanName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = testkit.NewPlan(name)
	s.history = nil
	s.recording = true
	s.logger.WithFields(logrus.Fields{"plan": name, "id": s.plan.ID}).Debug("Recording started")
}

// Stop ends recording and returns the recorded plan. The plan stays
// available from Plan until the next Start.
func (s *Session) Stop() testkit.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = false
	s.logger.WithField("steps", s.plan.Len()).Debug("Recording stopped")
	return s.plan
}

// IsRecording reports whether events are currently recorded.
func (s *Session) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Plan returns the current plan.
func (s *Session) Plan() testkit.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// MessageCount returns the last message count reported by NotifyMessageCount.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageCount
}

// NotifyTextSent records a text message sent to the chat.
func (s *Session) NotifyTextSent(text string) bool {
	return s.apply("text", func(p testkit.Plan) (testkit.Plan, bool) {
		return p.AddStep(testkit.NewTextInput(text)), true
	})
}

// NotifyButtonClicked records a click on a button of a message.
func (s *Session) NotifyButtonClicked(buttonText string, messageID int) bool {
	return s.apply("click", func(p testkit.Plan) (testkit.Plan, bool) {
		return p.AddStep(testkit.NewButtonClick(buttonText, messageID)), true
	})
}

// NotifyExpectationAdded records the expectations picked for a message as a
// group named after it. When the last recorded step already is a group it
// is replaced, so editing the expectations of the latest message doesn't
// stack groups. The replaced group keeps its id.
func (s *Session) NotifyExpectationAdded(messageID int, expectations []Expectation) bool {
	return s.apply("expectation", func(p testkit.Plan) (testkit.Plan, bool) {
		group := expectationGroup(messageID, expectations)
		last, ok := testkit.LastGroup(p.Steps)
		if !ok {
			return p.AddStep(group), true
		}
		group.ID = last.ID
		return p.UpdateStep(group, last.ID)
	})
}

// RemoveExpectation removes the last recorded step if it is an expectation
// group.
func (s *Session) RemoveExpectation() bool {
	return s.apply("remove expectation", func(p testkit.Plan) (testkit.Plan, bool) {
		last, ok := testkit.LastGroup(p.Steps)
		if !ok {
			return p, false
		}
		return p.DeleteStep(last.ID)
	})
}

// NotifyMessageCount reports the number of messages currently in the chat.
// It doesn't change the plan.
func (s *Session) NotifyMessageCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageCount = n
}

// CanEditExpectations reports whether the next NotifyExpectationAdded
// replaces a group instead of appending one.
func (s *Session) CanEditExpectations() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := testkit.LastGroup(s.plan.Steps)
	return ok
}

// Expectations returns the expectations of the last recorded group, in
// order. Children that are not assertions are skipped.
func (s *Session) Expectations() []Expectation {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := testkit.LastGroup(s.plan.Steps)
	if !ok {
		return nil
	}
	expectations := make([]Expectation, 0, len(last.Children))
	for _, child := range last.Children {
		if e, ok := expectationFromStep(child); ok {
			expectations = append(expectations, e)
		}
	}
	return expectations
}

// Undo reverts the last change made by an event. It reports false when
// there is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}
	s.plan = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.logger.WithField("steps", s.plan.Len()).Debug("Undo")
	return true
}

// apply runs fn against the current plan when recording. Changed plans
// replace the current one and the previous plan is pushed to the history.
func (s *Session) apply(event string, fn func(testkit.Plan) (testkit.Plan, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.WithField("event", event)
	if !s.recording {
		logger.Debug("Not recording, ignoring event")
		return false
	}

	next, changed := fn(s.plan)
	if !changed {
		logger.Debug("Event didn't change the plan")
		return false
	}

	if len(s.history) == maxHistory {
		s.history = append(s.history[:0:0], s.history[1:]...)
	}
	s.history = append(s.history, s.plan)
	s.plan = next
	logger.WithField("steps", next.Len()).Debug("Event recorded")
	return true
}
