package mcq

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/unidash/unidash/core"
)

// Quiz states
type State string

const (
	StateSetup     State = "setup"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

var (
	tickInterval = time.Second // mockable

	// errors
	ErrNoQuestions = errors.New("no questions match the selected criteria")

	// state and input errors report as validation failures upstream
	errNotSetup     = core.NewValidationError(errors.New("quiz already started"))
	errNotActive    = core.NewValidationError(errors.New("quiz is not active"))
	errNotPaused    = core.NewValidationError(errors.New("quiz is not paused"))
	errNotRunning   = core.NewValidationError(errors.New("quiz is not running"))
	errNotCompleted = core.NewValidationError(errors.New("quiz is not completed"))
	errBadOption    = core.NewValidationError(errors.New("selected option is out of range"))
	errBadQuestion  = core.NewValidationError(errors.New("question is not part of this quiz"))
	errBadDuration  = errors.New("a timed quiz needs a positive duration")
)

// Settings selects the question subset and the quiz mode.
type Settings struct {
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty" validate:"omitempty,difficulty"`
	Timed      bool   `json:"timed"`
	Duration   int    `json:"duration"` // seconds; required in timed mode
}

// Result is the score of a completed quiz.
type Result struct {
	Correct     int `json:"correct"`
	Total       int `json:"total"`
	Percentage  int `json:"percentage"`
	EarnedMarks int `json:"earned_marks"`
	TotalMarks  int `json:"total_marks"`
}

// Quiz is a single quiz run: setup → active ⇄ paused → completed → setup.
// In timed mode a one-second cadence decrements the remaining time while
// active and forces completion at zero; the ticker goroutine stops whenever
// the run leaves the active/paused states or Close is called, so no orphaned
// timer keeps mutating a discarded run.
type Quiz struct {
	mu        sync.Mutex
	state     State
	questions []Question
	current   int
	answers   map[string]int // question id -> selected option
	timed     bool
	remaining int
	stop      chan struct{}
}

func NewQuiz() *Quiz {
	return &Quiz{state: StateSetup, answers: make(map[string]int)}
}

// Start selects the ordered question subset from the bank and activates the run.
func (q *Quiz) Start(bank *Bank, s Settings) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateSetup {
		return errNotSetup
	}
	if err := core.Validate.Struct(s); err != nil {
		return err
	}
	if s.Timed && s.Duration <= 0 {
		return core.NewValidationError(errBadDuration,
			core.FieldError{Field: "duration", Error: errBadDuration.Error()})
	}

	questions := bank.List(Criteria{Subject: s.Subject, Difficulty: s.Difficulty})
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	q.questions = questions
	q.current = 0
	q.answers = make(map[string]int)
	q.timed = s.Timed
	q.state = StateActive
	if s.Timed {
		q.remaining = s.Duration
		q.stop = make(chan struct{})
		go q.countdown(q.stop)
	}
	return nil
}

func (q *Quiz) countdown(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			q.mu.Lock()
			switch q.state {
			case StateActive:
				q.remaining--
				if q.remaining <= 0 {
					// time is up: freeze at 0 and keep whatever answers exist
					q.remaining = 0
					q.state = StateCompleted
					q.stop = nil
					q.mu.Unlock()
					return
				}
			case StatePaused:
				// clock holds while paused
			default:
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
		}
	}
}

// stopTimer must be called with q.mu held.
func (q *Quiz) stopTimer() {
	if q.stop != nil {
		close(q.stop)
		q.stop = nil
	}
}

// Answer records the selected option for a question of the active run.
func (q *Quiz) Answer(questionID string, option int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateActive {
		return errNotActive
	}
	if option < 0 || option >= OptionCount {
		return errBadOption
	}
	for i, qu := range q.questions {
		if qu.ID == questionID {
			q.answers[questionID] = option
			if i == q.current && q.current < len(q.questions)-1 {
				q.current++
			}
			return nil
		}
	}
	return errBadQuestion
}

// SetCurrent moves the cursor; the run must be active.
func (q *Quiz) SetCurrent(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateActive {
		return errNotActive
	}
	if index < 0 || index >= len(q.questions) {
		return errBadQuestion
	}
	q.current = index
	return nil
}

func (q *Quiz) Pause() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateActive {
		return errNotActive
	}
	q.state = StatePaused
	return nil
}

func (q *Quiz) Resume() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StatePaused {
		return errNotPaused
	}
	q.state = StateActive
	return nil
}

// Finish completes the run, capturing the answers selected so far.
func (q *Quiz) Finish() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateActive && q.state != StatePaused {
		return errNotRunning
	}
	q.state = StateCompleted
	q.stopTimer()
	return nil
}

// Reset returns a completed run to setup so another quiz can start.
func (q *Quiz) Reset() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateCompleted {
		return errNotCompleted
	}
	q.state = StateSetup
	q.questions = nil
	q.answers = make(map[string]int)
	q.current = 0
	q.timed = false
	q.remaining = 0
	return nil
}

// Close tears the run down, cancelling any running timer.
func (q *Quiz) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopTimer()
}

// Result scores a completed run: a question counts correct iff the stored
// answer equals its correct-answer index; marks are summed separately.
func (q *Quiz) Result() (Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateCompleted {
		return Result{}, errNotCompleted
	}
	return q.result(), nil
}

// result must be called with q.mu held.
func (q *Quiz) result() Result {
	res := Result{Total: len(q.questions)}
	for _, qu := range q.questions {
		res.TotalMarks += qu.Marks
		if ans, ok := q.answers[qu.ID]; ok && ans == qu.Answer {
			res.Correct++
			res.EarnedMarks += qu.Marks
		}
	}
	if res.Total > 0 {
		res.Percentage = int(math.Round(float64(res.Correct) / float64(res.Total) * 100))
	}
	return res
}

// QuestionView is a Question stripped of its correct answer and explanation,
// safe to show mid-run.
type QuestionView struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Subject    string   `json:"subject"`
	Difficulty string   `json:"difficulty"`
	Marks      int      `json:"marks"`
}

// Snapshot is a JSON-friendly view of the run.
type Snapshot struct {
	State         State          `json:"state"`
	Current       int            `json:"current"`
	Total         int            `json:"total"`
	Answered      int            `json:"answered"`
	Timed         bool           `json:"timed"`
	TimeRemaining int            `json:"time_remaining"`
	Questions     []QuestionView `json:"questions,omitempty"`
	Result        *Result        `json:"result,omitempty"`
}

func (q *Quiz) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := Snapshot{
		State:         q.state,
		Current:       q.current,
		Total:         len(q.questions),
		Answered:      len(q.answers),
		Timed:         q.timed,
		TimeRemaining: q.remaining,
	}
	for _, qu := range q.questions {
		snap.Questions = append(snap.Questions, QuestionView{
			ID:         qu.ID,
			Text:       qu.Text,
			Options:    append([]string(nil), qu.Options...),
			Subject:    qu.Subject,
			Difficulty: qu.Difficulty,
			Marks:      qu.Marks,
		})
	}
	if q.state == StateCompleted {
		res := q.result()
		snap.Result = &res
	}
	return snap
}
