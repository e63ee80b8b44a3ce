// Package quiz defines the multiple-choice quiz model and decodes model
// output into it.
package quiz

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// OptionCount is the number of options every quiz carries.
const OptionCount = 4

// Option is one answer choice.
type Option struct {
	// Content is the option text shown to the learner.
	Content string `json:"content"`

	// Reason explains why the option is correct or incorrect.
	Reason string `json:"reason"`

	IsCorrect bool `json:"isCorrect"`
}

// Quiz is a multiple-choice question with exactly four options, at least one
// of which is correct.
type Quiz struct {
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Collection is the result of a batch. Quizzes[i] came from slot i.
type Collection struct {
	Quizzes []Quiz `json:"quizzes"`
}

// Validate checks the quiz invariants on the typed value and returns every
// violation found.
func (q *Quiz) Validate() []error {
	var errs []error

	if len(q.Options) != OptionCount {
		errs = append(errs, fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options)))
	}
	if !lo.SomeBy(q.Options, func(o Option) bool { return o.IsCorrect }) {
		errs = append(errs, errors.New("no option is marked correct"))
	}

	return errs
}
