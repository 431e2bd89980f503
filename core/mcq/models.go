package mcq

import (
	"errors"
	"time"

	"github.com/unidash/unidash/core"
)

// Difficulties
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

var (
	// errors
	ErrNotFound = errors.New("question not found")

	errBlankAnswer = errors.New("the correct answer must reference a populated option")
)

// Question is one multiple-choice question of the bank.
// Answer indexes into Options and always references a populated option.
type Question struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Options     []string  `json:"options"`
	Answer      int       `json:"answer"`
	Subject     string    `json:"subject"`
	Difficulty  string    `json:"difficulty"`
	University  string    `json:"university,omitempty"`
	Year        int       `json:"year,omitempty"`
	Marks       int       `json:"marks"`
	Explanation string    `json:"explanation,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewQuestion contains information needed to add a Question to the bank.
type NewQuestion struct {
	Text        string   `json:"text" validate:"required"`
	Options     []string `json:"options" validate:"required,len=4,dive,required"`
	Answer      int      `json:"answer" validate:"min=0,max=3"`
	Subject     string   `json:"subject" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"required,difficulty"`
	University  string   `json:"university"`
	Year        int      `json:"year" validate:"omitempty,min=1900,max=2100"`
	Marks       int      `json:"marks" validate:"min=0"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
}

func (nq *NewQuestion) Validate() error {
	nq.Text = core.CleanString(nq.Text)
	nq.Subject = core.CleanString(nq.Subject)
	nq.University = core.CleanString(nq.University)
	for i := range nq.Options {
		nq.Options[i] = core.CleanString(nq.Options[i])
	}
	if nq.Marks == 0 {
		nq.Marks = 1
	}
	if err := core.Validate.Struct(nq); err != nil {
		return err
	}
	if nq.Answer < 0 || nq.Answer >= len(nq.Options) || nq.Options[nq.Answer] == "" {
		return core.NewValidationError(errBlankAnswer,
			core.FieldError{Field: "answer", Error: errBlankAnswer.Error()})
	}
	return nil
}

func init() {
	core.RegisterEnumValidation(core.Validate, core.Translator, "difficulty",
		DifficultyEasy, DifficultyMedium, DifficultyHard)
}
