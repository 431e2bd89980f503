package remoterepos

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/unidash/unidash/core/university"
)

const universitiesPath = "/universities"

// searchPaths maps each remote filter key to its dedicated search route.
var searchPaths = map[university.FilterKey]string{
	university.FilterCity:            universitiesPath + "/search/by-city",
	university.FilterFieldOfStudy:    universitiesPath + "/search/by-field-of-study",
	university.FilterCourseType:      universitiesPath + "/search/by-course-type",
	university.FilterDegreeProgram:   universitiesPath + "/search/by-degree-program",
	university.FilterAdmissionStatus: universitiesPath + "/search/by-admission",
	university.FilterDuration:        universitiesPath + "/search/by-duration",
	university.FilterProgramName:     universitiesPath + "/search/by-program-name",
}

type universityRepository struct {
	c *Client
}

var _ university.Repository = (*universityRepository)(nil)

func NewUniversityRepository(c *Client) university.Repository {
	return &universityRepository{c: c}
}

// wire DTOs: the upstream speaks camelCase and the server status vocabulary;
// translation to the dashboard vocabulary happens here and nowhere else.

type programJSON struct {
	Name            string  `json:"name"`
	DegreeLevel     string  `json:"degreeLevel"`
	Deadline        string  `json:"deadline,omitempty"`
	MeritThreshold  float64 `json:"meritThreshold"`
	Fee             int     `json:"fee"`
	Duration        string  `json:"duration,omitempty"`
	AdmissionStatus string  `json:"admissionStatus"`
}

type degreeCountsJSON struct {
	Bachelors int `json:"bachelors"`
	Masters   int `json:"masters"`
	PhD       int `json:"phd"`
}

type universityJSON struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ShortName    string           `json:"shortName"`
	Sector       string           `json:"sector"`
	City         string           `json:"city"`
	Status       string           `json:"status"`
	DegreeCounts degreeCountsJSON `json:"degreeCounts"`
	Programs     []programJSON    `json:"programs,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (uj universityJSON) domain() university.University {
	u := university.University{
		ID:        uj.ID,
		Name:      uj.Name,
		ShortName: uj.ShortName,
		Sector:    uj.Sector,
		City:      uj.City,
		Status:    university.StatusFromServer(uj.Status),
		DegreeCounts: university.DegreeCounts{
			Bachelors: uj.DegreeCounts.Bachelors,
			Masters:   uj.DegreeCounts.Masters,
			PhD:       uj.DegreeCounts.PhD,
		},
		CreatedAt: uj.CreatedAt,
		UpdatedAt: uj.UpdatedAt,
	}
	for _, p := range uj.Programs {
		u.Programs = append(u.Programs, university.Program{
			Name:            p.Name,
			DegreeLevel:     p.DegreeLevel,
			Deadline:        p.Deadline,
			MeritThreshold:  p.MeritThreshold,
			Fee:             p.Fee,
			Duration:        p.Duration,
			AdmissionStatus: p.AdmissionStatus,
		})
	}
	return u
}

func domainList(data json.RawMessage) ([]university.University, error) {
	var list []universityJSON
	if len(data) > 0 {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, errors.Wrap(err, "decoding universities")
		}
	}
	out := make([]university.University, 0, len(list))
	for _, uj := range list {
		out = append(out, uj.domain())
	}
	return out, nil
}

func (repo *universityRepository) ListUniversities(ctx context.Context, query university.ListQuery) (university.Page, error) {
	q := make(url.Values)
	q.Set("page", strconv.Itoa(query.Page))
	q.Set("limit", strconv.Itoa(query.Limit))
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	if query.Sector != "" {
		q.Set("type", query.Sector)
	}
	if query.Status != "" {
		q.Set("status", query.Status.Server())
	}

	env, err := repo.c.do(ctx, http.MethodGet, universitiesPath, q, nil)
	if err != nil {
		return university.Page{}, err
	}
	data, err := domainList(env.Data)
	if err != nil {
		return university.Page{}, err
	}

	page := university.Page{Data: data}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		page.Pagination = university.Pagination{
			Total: len(data), Page: query.Page, Limit: query.Limit, TotalPages: 1,
		}
	}
	return page, nil
}

func (repo *universityRepository) GetUniversity(ctx context.Context, id string) (university.University, error) {
	env, err := repo.c.do(ctx, http.MethodGet, universitiesPath+"/"+id, nil, nil)
	if err != nil {
		if env.code == http.StatusNotFound {
			return university.University{}, university.ErrNotFound
		}
		return university.University{}, err
	}
	var uj universityJSON
	if err = json.Unmarshal(env.Data, &uj); err != nil {
		return university.University{}, errors.Wrap(err, "decoding university")
	}
	return uj.domain(), nil
}

func (repo *universityRepository) CreateUniversity(ctx context.Context, nu university.NewUniversity) (university.University, error) {
	payload := map[string]interface{}{
		"name":      nu.Name,
		"shortName": nu.ShortName,
		"sector":    nu.Sector,
		"city":      nu.City,
		"status":    nu.Status.Server(),
	}
	if len(nu.Programs) > 0 {
		programs := make([]programJSON, 0, len(nu.Programs))
		for _, np := range nu.Programs {
			programs = append(programs, programJSON{
				Name:            np.Name,
				DegreeLevel:     np.DegreeLevel,
				Deadline:        np.Deadline,
				MeritThreshold:  np.MeritThreshold,
				Fee:             np.Fee,
				Duration:        np.Duration,
				AdmissionStatus: np.AdmissionStatus,
			})
		}
		payload["programs"] = programs
	}
	if !nu.MeritFormula.IsZero() {
		payload["meritFormula"] = map[string]int{
			"matricWeight": nu.MeritFormula.MatricWeight,
			"interWeight":  nu.MeritFormula.InterWeight,
			"testWeight":   nu.MeritFormula.TestWeight,
		}
	}

	env, err := repo.c.do(ctx, http.MethodPost, universitiesPath, nil, payload)
	if err != nil {
		return university.University{}, err
	}
	var uj universityJSON
	if err = json.Unmarshal(env.Data, &uj); err != nil {
		return university.University{}, errors.Wrap(err, "decoding created university")
	}
	return uj.domain(), nil
}

func (repo *universityRepository) UpdateUniversity(ctx context.Context, id string, uu university.UpdateUniversity) (university.University, error) {
	patch := make(map[string]interface{})
	if uu.Name != "" {
		patch["name"] = uu.Name
	}
	if uu.ShortName != "" {
		patch["shortName"] = uu.ShortName
	}
	if uu.Sector != "" {
		patch["sector"] = uu.Sector
	}
	if uu.City != "" {
		patch["city"] = uu.City
	}
	if uu.Status != "" {
		patch["status"] = uu.Status.Server()
	}

	env, err := repo.c.do(ctx, http.MethodPut, universitiesPath+"/"+id, nil, patch)
	if err != nil {
		if env.code == http.StatusNotFound {
			return university.University{}, university.ErrNotFound
		}
		return university.University{}, err
	}
	var uj universityJSON
	if err = json.Unmarshal(env.Data, &uj); err != nil {
		return university.University{}, errors.Wrap(err, "decoding updated university")
	}
	return uj.domain(), nil
}

func (repo *universityRepository) DeleteUniversity(ctx context.Context, id string) error {
	env, err := repo.c.do(ctx, http.MethodDelete, universitiesPath+"/"+id, nil, nil)
	if err != nil {
		if env.code == http.StatusNotFound {
			return university.ErrNotFound
		}
		return err
	}
	return nil
}

func (repo *universityRepository) SearchUniversitiesByField(ctx context.Context, key university.FilterKey, value string) ([]university.University, error) {
	path, ok := searchPaths[key]
	if !ok {
		return nil, errors.Errorf("no remote search for filter %q", key)
	}
	q := make(url.Values)
	q.Set("q", value)

	env, err := repo.c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	return domainList(env.Data)
}

func (repo *universityRepository) BulkUploadUniversities(ctx context.Context, filename string, file io.Reader) (university.BulkResult, error) {
	env, err := repo.c.doMultipart(ctx, universitiesPath+"/bulk-upload", "file", filename, file)
	if err != nil {
		return university.BulkResult{}, err
	}
	var res university.BulkResult
	if len(env.Data) > 0 {
		if err = json.Unmarshal(env.Data, &res); err != nil {
			return university.BulkResult{}, errors.Wrap(err, "decoding bulk upload result")
		}
	}
	if res.Message == "" {
		res.Message = env.Message
	}
	return res, nil
}

func (repo *universityRepository) ExportUniversities(ctx context.Context, format string) ([]byte, error) {
	q := make(url.Values)
	q.Set("format", format)
	return repo.c.doRaw(ctx, universitiesPath+"/export", q)
}
