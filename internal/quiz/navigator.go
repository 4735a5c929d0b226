package quiz

import (
	"errors"
	"strings"
)

// Step is the tagged step of the screening flow.
type Step string

const (
	StepQuiz     Step = "quiz"      // a question is being presented
	StepLeadForm Step = "lead_form" // all questions answered, awaiting profile
)

var (
	ErrQuizFinished   = errors.New("quiz already finished")
	ErrEmptySelection = errors.New("at least one option must be selected")
	ErrEmptyText      = errors.New("answer text must not be empty")
	ErrUnknownOption  = errors.New("answer is not one of the offered options")
)

// Submission is the event fed into the navigator. Exactly one of
// Value/Values is set, matching the current question's type.
type Submission struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// State is the live screening flow state. Transitions return a new
// State and never mutate the receiver, so any snapshot stays valid.
type State struct {
	Step      Step       `json:"step"`
	Questions []Question `json:"questions"`
	Index     int        `json:"index"`
	Responses []Response `json:"responses"`
}

// NewState starts a flow over an authored question sequence.
func NewState(questions []Question) State {
	return State{
		Step:      StepQuiz,
		Questions: questions,
		Index:     0,
	}
}

// Current returns the question being presented, if any.
func (s State) Current() (Question, bool) {
	if s.Step != StepQuiz || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Answer applies a submission to the current question and returns the
// next state: the response appended, follow-up questions injected
// immediately after the current position when a trigger value matches,
// and the position advanced (or the flow moved to the lead-form step).
//
// Injection never removes or reorders questions before the insertion
// point, so everything already presented keeps its order. Follow-up
// blocks are author-controlled and expected to be acyclic; there is no
// runtime cycle guard.
func Answer(s State, sub Submission) (State, error) {
	q, ok := s.Current()
	if !ok {
		return s, ErrQuizFinished
	}

	var resp Response
	switch q.Type {
	case TypeMulti:
		if len(sub.Values) == 0 {
			return s, ErrEmptySelection
		}
		for _, v := range sub.Values {
			if !q.HasOption(v) {
				return s, ErrUnknownOption
			}
		}
		resp = Response{QuestionID: q.ID, QuestionText: q.Text, Answers: sub.Values}
	case TypeText:
		text := strings.TrimSpace(sub.Value)
		if text == "" {
			return s, ErrEmptyText
		}
		resp = Response{QuestionID: q.ID, QuestionText: q.Text, Answer: text}
	default: // TypeSingle
		if !q.HasOption(sub.Value) {
			return s, ErrUnknownOption
		}
		resp = Response{QuestionID: q.ID, QuestionText: q.Text, Answer: sub.Value}
	}

	questions := s.Questions
	if q.Triggered(resp.Values()) {
		// Build the extended sequence as a fresh slice rather than
		// splicing in place.
		extended := make([]Question, 0, len(s.Questions)+len(q.FollowUp.Questions))
		extended = append(extended, s.Questions[:s.Index+1]...)
		extended = append(extended, q.FollowUp.Questions...)
		extended = append(extended, s.Questions[s.Index+1:]...)
		questions = extended
	}

	responses := make([]Response, len(s.Responses), len(s.Responses)+1)
	copy(responses, s.Responses)
	responses = append(responses, resp)

	next := State{
		Step:      StepQuiz,
		Questions: questions,
		Index:     s.Index + 1,
		Responses: responses,
	}
	if next.Index > len(questions)-1 {
		next.Step = StepLeadForm
	}
	return next, nil
}

// Progress reports the 1-based position and total for display.
func (s State) Progress() (answered, total int) {
	return len(s.Responses), len(s.Questions)
}
