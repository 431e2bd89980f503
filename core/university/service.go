package university

import (
	"context"
	"errors"
	"io"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/unidash/unidash/core"
)

var (
	// errors
	ErrNotFound   = errors.New("university not found")
	ErrNameExists = errors.New("a university with this name already exists")

	errWeightsSum    = errors.New("merit formula weights must sum to 100")
	errBadFilterKey  = errors.New("unknown filter key")
	errLocalOnlyKey  = errors.New("filter key has no remote search")
	errBadStatus     = errors.New("unknown status")
	errBadTab        = errors.New("unknown tab")
	errBadPage       = errors.New("page must be 1 or greater")
	errBadLimit      = errors.New("unsupported page size")
	errBadExportFmt  = errors.New("export format must be csv or excel")
	errNothingToSend = errors.New("no universities selected")
)

// Export formats
const (
	ExportCSV   = "csv"
	ExportExcel = "excel"
)

type (
	// Repository is the catalog backing store. Two implementations exist:
	// the remote HTTP gateway and an in-memory mock, selected by
	// configuration at startup.
	Repository interface {
		// ListUniversities returns one page of the catalog.
		ListUniversities(ctx context.Context, query ListQuery) (Page, error)
		GetUniversity(ctx context.Context, id string) (University, error)
		CreateUniversity(ctx context.Context, nu NewUniversity) (University, error)
		UpdateUniversity(ctx context.Context, id string, uu UpdateUniversity) (University, error)
		DeleteUniversity(ctx context.Context, id string) error
		// SearchUniversitiesByField performs the dedicated single-field
		// search for one of the remote filter keys, bypassing pagination.
		SearchUniversitiesByField(ctx context.Context, key FilterKey, value string) ([]University, error)
		BulkUploadUniversities(ctx context.Context, filename string, file io.Reader) (BulkResult, error)
		ExportUniversities(ctx context.Context, format string) ([]byte, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, log: logger}
}

func (svc *Service) List(ctx context.Context, query ListQuery) (Page, error) {
	query.Clean()
	return svc.repo.ListUniversities(ctx, query)
}

func (svc *Service) Get(ctx context.Context, id string) (University, error) {
	return svc.repo.GetUniversity(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nu NewUniversity) (University, error) {
	if err := nu.Validate(); err != nil {
		return University{}, err
	}
	return svc.repo.CreateUniversity(ctx, nu)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUniversity) (University, error) {
	if err := uu.Validate(); err != nil {
		return University{}, err
	}
	return svc.repo.UpdateUniversity(ctx, id, uu)
}

func (svc *Service) SearchByField(ctx context.Context, key FilterKey, value string) ([]University, error) {
	if !key.Valid() {
		return nil, core.NewValidationError(errBadFilterKey,
			core.FieldError{Field: string(key), Error: errBadFilterKey.Error()})
	}
	if !key.Remote() {
		return nil, core.NewValidationError(errLocalOnlyKey,
			core.FieldError{Field: string(key), Error: errLocalOnlyKey.Error()})
	}
	return svc.repo.SearchUniversitiesByField(ctx, key, core.CleanString(value))
}

// Transition moves every given university to target, one update per id,
// issued concurrently. Partial failure is reported once, in aggregate; ids
// already updated are not rolled back.
func (svc *Service) Transition(ctx context.Context, ids []string, target Status) error {
	if !target.Valid() {
		return core.NewValidationError(errBadStatus,
			core.FieldError{Field: "status", Error: errBadStatus.Error()})
	}
	return svc.each(ids, "updating", func(id string) error {
		_, err := svc.repo.UpdateUniversity(ctx, id, UpdateUniversity{Status: target})
		return err
	})
}

// Remove permanently deletes every given university, one delete per id,
// issued concurrently, with the same aggregate failure semantics as Transition.
func (svc *Service) Remove(ctx context.Context, ids []string) error {
	return svc.each(ids, "deleting", func(id string) error {
		return svc.repo.DeleteUniversity(ctx, id)
	})
}

func (svc *Service) each(ids []string, verb string, op func(id string) error) error {
	if len(ids) == 0 {
		return errNothingToSend
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = op(id)
		}(i, id)
	}
	wg.Wait()

	var failed int
	var first error
	for _, err := range errs {
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
		}
	}
	if failed > 0 {
		return pkgerrors.Wrapf(first, "%s %d of %d universities failed", verb, failed, len(ids))
	}
	return nil
}

func (svc *Service) BulkUpload(ctx context.Context, filename string, file io.Reader) (BulkResult, error) {
	return svc.repo.BulkUploadUniversities(ctx, filename, file)
}

func (svc *Service) Export(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case ExportCSV, ExportExcel:
	default:
		return nil, core.NewValidationError(errBadExportFmt,
			core.FieldError{Field: "format", Error: errBadExportFmt.Error()})
	}
	return svc.repo.ExportUniversities(ctx, format)
}
