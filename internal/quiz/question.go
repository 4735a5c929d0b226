package quiz

// QuestionType distinguishes how a question is answered.
type QuestionType string

const (
	TypeSingle QuestionType = "single" // one option, advances immediately
	TypeMulti  QuestionType = "multi"  // one or more options
	TypeText   QuestionType = "text"   // free text
)

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// FollowUp is a block of extra questions injected into the active
// sequence when the submitted answer matches one of the trigger values.
type FollowUp struct {
	TriggerValues []string   `json:"triggerValues"`
	Questions     []Question `json:"questions"`
}

type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Options     []Option     `json:"options,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	FollowUp    *FollowUp    `json:"followUp,omitempty"`
}

// Triggered reports whether any of the submitted values is in the
// question's trigger set. Questions without a follow-up never trigger.
func (q Question) Triggered(values []string) bool {
	if q.FollowUp == nil {
		return false
	}
	for _, v := range values {
		for _, t := range q.FollowUp.TriggerValues {
			if v == t {
				return true
			}
		}
	}
	return false
}

// HasOption reports whether value is one of the question's option values.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Response is one answered question. Answer is set for single/text
// questions, Answers for multi-select. Immutable once recorded.
type Response struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	Answer       string   `json:"answer,omitempty"`
	Answers      []string `json:"answers,omitempty"`
}

// Values returns the answer as a flat list regardless of question type.
func (r Response) Values() []string {
	if len(r.Answers) > 0 {
		return r.Answers
	}
	return []string{r.Answer}
}
