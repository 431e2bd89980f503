package university

import (
	"time"

	"github.com/unidash/unidash/core"
)

// Sectors
const (
	SectorPublic    = "Public"
	SectorPrivate   = "Private"
	SectorCommunity = "Community"
)

// Degree levels
const (
	DegreeBachelors    = "Bachelors"
	DegreeMasters      = "Masters"
	DegreeMastersMPhil = "Masters (MPhil)"
	DegreePhD          = "PhD"
)

// Admission statuses
const (
	AdmissionOpen   = "Open"
	AdmissionClosed = "Closed"
)

// Page sizes the dashboard list view may request.
var PageSizes = []int{8, 16, 24, 32}

const DefaultPageSize = 8

func ValidPageSize(limit int) bool {
	for _, s := range PageSizes {
		if limit == s {
			return true
		}
	}
	return false
}

// Status is the dashboard vocabulary for a university's lifecycle state.
// The upstream API speaks "active"|"in_progress"|"deleted"; the two
// vocabularies differ only in active⇄confirmed and are translated at the
// repository boundary.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusDeleted    Status = "deleted"
)

const serverStatusActive = "active"

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusInProgress, StatusDeleted:
		return true
	}
	return false
}

// Server translates s to the upstream vocabulary.
func (s Status) Server() string {
	if s == StatusConfirmed {
		return serverStatusActive
	}
	return string(s)
}

// StatusFromServer translates an upstream status to the dashboard vocabulary.
// Unknown values normalize to StatusInProgress so they surface for review in
// the in-progress tab; the result is always one of the three Status values.
func StatusFromServer(s string) Status {
	switch s {
	case serverStatusActive, string(StatusConfirmed):
		return StatusConfirmed
	case string(StatusDeleted):
		return StatusDeleted
	default:
		return StatusInProgress
	}
}

// DegreeCounts summarizes how many programs a university offers per level.
type DegreeCounts struct {
	Bachelors int `json:"bachelors"`
	Masters   int `json:"masters"`
	PhD       int `json:"phd"`
}

func (dc DegreeCounts) Total() int {
	return dc.Bachelors + dc.Masters + dc.PhD
}

func (dc DegreeCounts) ForLevel(level string) int {
	switch level {
	case DegreeBachelors:
		return dc.Bachelors
	case DegreeMasters, DegreeMastersMPhil:
		return dc.Masters
	case DegreePhD:
		return dc.PhD
	}
	return 0
}

type University struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ShortName    string       `json:"short_name"`
	Sector       string       `json:"sector"`
	City         string       `json:"city"`
	Status       Status       `json:"status"`
	DegreeCounts DegreeCounts `json:"degree_counts"`
	Programs     []Program    `json:"programs,omitempty"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at"` // UTC
}

type Program struct {
	Name            string  `json:"name"`
	DegreeLevel     string  `json:"degree_level"`
	Deadline        string  `json:"deadline,omitempty"` // YYYY-MM-DD
	MeritThreshold  float64 `json:"merit_threshold"`    // prior-year closing merit, percent
	Fee             int     `json:"fee"`
	Duration        string  `json:"duration,omitempty"`
	AdmissionStatus string  `json:"admission_status"`
}

// MeritFormula holds the weight (percent) of each component in the aggregate
// used for admission; the weights must sum to 100.
type MeritFormula struct {
	MatricWeight int `json:"matric_weight" validate:"min=0,max=100"`
	InterWeight  int `json:"inter_weight" validate:"min=0,max=100"`
	TestWeight   int `json:"test_weight" validate:"min=0,max=100"`
}

func (mf MeritFormula) IsZero() bool {
	return mf.MatricWeight == 0 && mf.InterWeight == 0 && mf.TestWeight == 0
}

func (mf MeritFormula) Validate() error {
	if err := core.Validate.Struct(mf); err != nil {
		return err
	}
	if sum := mf.MatricWeight + mf.InterWeight + mf.TestWeight; sum != 100 {
		return core.NewValidationError(
			errWeightsSum,
			core.FieldError{Field: "test_weight", Error: errWeightsSum.Error()},
		)
	}
	return nil
}

// NewProgram contains information needed to attach a Program to a university.
type NewProgram struct {
	Name            string  `json:"name" validate:"required"`
	DegreeLevel     string  `json:"degree_level" validate:"required,degreelevel"`
	Deadline        string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	MeritThreshold  float64 `json:"merit_threshold" validate:"min=0,max=100"`
	Fee             int     `json:"fee" validate:"min=0"`
	Duration        string  `json:"duration"`
	AdmissionStatus string  `json:"admission_status" validate:"omitempty,admission"`
}

func (np *NewProgram) clean() {
	np.Name = core.CleanString(np.Name)
	np.Duration = core.CleanString(np.Duration)
	if np.AdmissionStatus == "" {
		np.AdmissionStatus = AdmissionOpen
	}
}

func (np *NewProgram) Validate() error {
	np.clean()
	return core.Validate.Struct(np)
}

func (np NewProgram) Program() Program {
	return Program{
		Name:            np.Name,
		DegreeLevel:     np.DegreeLevel,
		Deadline:        np.Deadline,
		MeritThreshold:  np.MeritThreshold,
		Fee:             np.Fee,
		Duration:        np.Duration,
		AdmissionStatus: np.AdmissionStatus,
	}
}

// NewUniversity contains information needed to create a new University.
// Programs edited in the creation workflow are part of the payload.
type NewUniversity struct {
	Name         string       `json:"name" validate:"required"`
	ShortName    string       `json:"short_name" validate:"required"`
	Sector       string       `json:"sector" validate:"required,sector"`
	City         string       `json:"city" validate:"required"`
	Status       Status       `json:"status" validate:"omitempty,unistatus"`
	Programs     []NewProgram `json:"programs" validate:"omitempty,dive"`
	MeritFormula MeritFormula `json:"merit_formula"`
}

func (nu *NewUniversity) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.ShortName = core.CleanString(nu.ShortName)
	nu.City = core.CleanString(nu.City)
	if nu.Status == "" {
		nu.Status = StatusInProgress
	}
	for i := range nu.Programs {
		nu.Programs[i].clean()
	}
	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	if !nu.MeritFormula.IsZero() {
		return nu.MeritFormula.Validate()
	}
	return nil
}

// UpdateUniversity defines what information may be provided to modify an
// existing University. Empty fields are left untouched upstream.
type UpdateUniversity struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Sector    string `json:"sector" validate:"omitempty,sector"`
	City      string `json:"city"`
	Status    Status `json:"status" validate:"omitempty,unistatus"`
}

func (uu *UpdateUniversity) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	uu.ShortName = core.CleanString(uu.ShortName)
	uu.City = core.CleanString(uu.City)
	return core.Validate.Struct(uu)
}

func (uu UpdateUniversity) IsZero() bool {
	return uu == UpdateUniversity{}
}

// ListQuery holds the paging parameters of a baseline list request.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Sector string
	Status Status
}

func (q *ListQuery) Clean() {
	if q.Page < 1 {
		q.Page = 1
	}
	if !ValidPageSize(q.Limit) {
		q.Limit = DefaultPageSize
	}
	q.Search = core.CleanString(q.Search)
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Page is the envelope a list request resolves to.
type Page struct {
	Data       []University `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// BulkResult summarizes a bulk upload.
type BulkResult struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
	Message string `json:"message,omitempty"`
}

func init() {
	core.RegisterEnumValidation(core.Validate, core.Translator, "sector",
		SectorPublic, SectorPrivate, SectorCommunity)
	core.RegisterEnumValidation(core.Validate, core.Translator, "degreelevel",
		DegreeBachelors, DegreeMasters, DegreeMastersMPhil, DegreePhD)
	core.RegisterEnumValidation(core.Validate, core.Translator, "admission",
		AdmissionOpen, AdmissionClosed)
	core.RegisterEnumValidation(core.Validate, core.Translator, "unistatus",
		string(StatusConfirmed), string(StatusInProgress), string(StatusDeleted))
}
