package university

import (
	"context"
	"errors"
	"sync"

	"github.com/unidash/unidash/core"
)

// DraftStep is one stage of the creation workflow.
type DraftStep string

const (
	StepBasicInfo    DraftStep = "basic_info"
	StepPrograms     DraftStep = "programs"
	StepMeritFormula DraftStep = "merit_formula"
)

var (
	ErrDraftSubmitted = errors.New("draft already submitted")

	errStepNotReady  = core.NewValidationError(errors.New("complete the basic info step first"))
	errNoSuchProgram = core.NewValidationError(errors.New("no program at this position"))
)

// Draft accumulates a NewUniversity across the three creation steps:
// basic info, then local program-list editing, then the merit formula.
// Nothing is persisted until Submit issues the single create call.
type Draft struct {
	mu        sync.Mutex
	step      DraftStep
	record    NewUniversity
	submitted bool
}

func NewDraft() *Draft {
	return &Draft{step: StepBasicInfo}
}

// BasicInfo holds the first-step fields of the creation form.
type BasicInfo struct {
	Name      string `json:"name" validate:"required"`
	ShortName string `json:"short_name" validate:"required"`
	Sector    string `json:"sector" validate:"required,sector"`
	City      string `json:"city" validate:"required"`
}

func (d *Draft) SetBasicInfo(info BasicInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return ErrDraftSubmitted
	}

	info.Name = core.CleanString(info.Name)
	info.ShortName = core.CleanString(info.ShortName)
	info.City = core.CleanString(info.City)
	if err := core.Validate.Struct(info); err != nil {
		return err
	}
	d.record.Name = info.Name
	d.record.ShortName = info.ShortName
	d.record.Sector = info.Sector
	d.record.City = info.City
	if d.step == StepBasicInfo {
		d.step = StepPrograms
	}
	return nil
}

func (d *Draft) AddProgram(np NewProgram) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return ErrDraftSubmitted
	}
	if d.step == StepBasicInfo {
		return errStepNotReady
	}
	if err := np.Validate(); err != nil {
		return err
	}
	d.record.Programs = append(d.record.Programs, np)
	return nil
}

func (d *Draft) UpdateProgram(pos int, np NewProgram) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return ErrDraftSubmitted
	}
	if pos < 0 || pos >= len(d.record.Programs) {
		return errNoSuchProgram
	}
	if err := np.Validate(); err != nil {
		return err
	}
	d.record.Programs[pos] = np
	return nil
}

func (d *Draft) RemoveProgram(pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return ErrDraftSubmitted
	}
	if pos < 0 || pos >= len(d.record.Programs) {
		return errNoSuchProgram
	}
	d.record.Programs = append(d.record.Programs[:pos], d.record.Programs[pos+1:]...)
	return nil
}

func (d *Draft) SetMeritFormula(mf MeritFormula) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return ErrDraftSubmitted
	}
	if d.step == StepBasicInfo {
		return errStepNotReady
	}
	if err := mf.Validate(); err != nil {
		return err
	}
	d.record.MeritFormula = mf
	d.step = StepMeritFormula
	return nil
}

// Submit validates the whole draft and issues the single create call.
// The locally edited programs are part of the payload.
func (d *Draft) Submit(ctx context.Context, svc *Service) (University, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted {
		return University{}, ErrDraftSubmitted
	}

	created, err := svc.Create(ctx, d.record)
	if err != nil {
		return University{}, err
	}
	d.submitted = true
	return created, nil
}

// Record returns a copy of the draft's current payload.
func (d *Draft) Record() NewUniversity {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.record
	rec.Programs = append([]NewProgram(nil), d.record.Programs...)
	return rec
}

func (d *Draft) Step() DraftStep {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}
