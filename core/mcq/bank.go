package mcq

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Criteria filters the bank; empty fields match everything.
type Criteria struct {
	Subject    string
	Difficulty string
}

func (cr Criteria) matches(q Question) bool {
	if cr.Subject != "" && q.Subject != cr.Subject {
		return false
	}
	if cr.Difficulty != "" && q.Difficulty != cr.Difficulty {
		return false
	}
	return true
}

// Bank is the in-memory question store. It is not persisted anywhere and
// resets on restart.
type Bank struct {
	mu    sync.RWMutex
	table map[string]*Question
}

func NewBank() *Bank {
	return &Bank{table: make(map[string]*Question)}
}

func (b *Bank) Add(nq NewQuestion) (Question, error) {
	if err := nq.Validate(); err != nil {
		return Question{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q := Question{
		ID:          uuid.New().String(),
		Text:        nq.Text,
		Options:     append([]string(nil), nq.Options...),
		Answer:      nq.Answer,
		Subject:     nq.Subject,
		Difficulty:  nq.Difficulty,
		University:  nq.University,
		Year:        nq.Year,
		Marks:       nq.Marks,
		Explanation: nq.Explanation,
		Tags:        append([]string(nil), nq.Tags...),
		CreatedAt:   time.Now().UTC(),
	}
	b.table[q.ID] = &q
	return q, nil
}

func (b *Bank) Get(id string) (Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if q, ok := b.table[id]; ok {
		return *q, nil
	}
	return Question{}, ErrNotFound
}

// List returns the questions matching cr, ordered by creation time then id
// so quiz runs see a stable ordering.
func (b *Bank) List(cr Criteria) []Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Question, 0, len(b.table))
	for _, q := range b.table {
		if cr.matches(*q) {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (b *Bank) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.table[id]; !ok {
		return ErrNotFound
	}
	delete(b.table, id)
	return nil
}

func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.table)
}

// Subjects returns the distinct subjects present in the bank, sorted.
func (b *Bank) Subjects() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, q := range b.table {
		seen[q.Subject] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
