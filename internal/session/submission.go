package session

import "strings"

// SampleQuestions are offered on the chat screen as one-click queries.
var SampleQuestions = []string{
	"How to perform CPR?",
	"What to do in case of a fire?",
	"Where is the nearest hospital?",
	"How to handle a medical emergency?",
	"Emergency contact numbers in my area",
}

// Submission is what the user sent from the chat screen: typed text, a
// clicked sample question, or both.
type Submission struct {
	Text   string `form:"message" json:"message"`
	Sample string `form:"sample" json:"sample"`
}

// Query returns the text to answer. Typed text wins over the sample. ok is
// false when there is nothing to submit.
func (s Submission) Query() (query string, ok bool) {
	if q := strings.TrimSpace(s.Text); q != "" {
		return q, true
	}
	if q := strings.TrimSpace(s.Sample); q != "" {
		return q, true
	}
	return "", false
}
