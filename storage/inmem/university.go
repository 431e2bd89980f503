package inmemdb

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/unidash/unidash/core/university"
)

type universityRepository struct {
	db *DB
}

var _ university.Repository = (*universityRepository)(nil)

func NewUniversityRepository(db *DB) university.Repository {
	return &universityRepository{db: db}
}

// query returns all rows sorted by name. Must be called with db.mu held.
func (repo *universityRepository) query() []university.University {
	out := make([]university.University, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (repo *universityRepository) ListUniversities(_ context.Context, query university.ListQuery) (university.Page, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	matched := make([]university.University, 0, len(repo.db.table))
	for _, u := range repo.query() {
		// same name-or-city clause the list view applies locally
		if query.Search != "" {
			s := strings.ToLower(query.Search)
			if !strings.Contains(strings.ToLower(u.Name), s) &&
				!strings.Contains(strings.ToLower(u.City), s) {
				continue
			}
		}
		if query.Sector != "" && !strings.EqualFold(u.Sector, query.Sector) {
			continue
		}
		if query.Status != "" && u.Status != query.Status {
			continue
		}
		matched = append(matched, u)
	}

	total := len(matched)
	totalPages := (total + query.Limit - 1) / query.Limit
	start := (query.Page - 1) * query.Limit
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}

	return university.Page{
		Data: matched[start:end],
		Pagination: university.Pagination{
			Total: total, Page: query.Page, Limit: query.Limit, TotalPages: totalPages,
		},
	}, nil
}

func (repo *universityRepository) GetUniversity(_ context.Context, id string) (university.University, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if u, ok := repo.db.table[id]; ok {
		return *u, nil
	}
	return university.University{}, university.ErrNotFound
}

func (repo *universityRepository) CreateUniversity(_ context.Context, nu university.NewUniversity) (university.University, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, u := range repo.db.table {
		if strings.EqualFold(u.Name, nu.Name) {
			return university.University{}, university.ErrNameExists
		}
	}

	now := time.Now().UTC()
	u := university.University{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		ShortName: nu.ShortName,
		Sector:    nu.Sector,
		City:      nu.City,
		Status:    nu.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, np := range nu.Programs {
		u.Programs = append(u.Programs, np.Program())
		switch np.DegreeLevel {
		case university.DegreeBachelors:
			u.DegreeCounts.Bachelors++
		case university.DegreeMasters, university.DegreeMastersMPhil:
			u.DegreeCounts.Masters++
		case university.DegreePhD:
			u.DegreeCounts.PhD++
		}
	}
	repo.db.table[u.ID] = &u
	return u, nil
}

func (repo *universityRepository) UpdateUniversity(_ context.Context, id string, uu university.UpdateUniversity) (university.University, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	u, ok := repo.db.table[id]
	if !ok {
		return university.University{}, university.ErrNotFound
	}
	if uu.Name != "" {
		u.Name = uu.Name
	}
	if uu.ShortName != "" {
		u.ShortName = uu.ShortName
	}
	if uu.Sector != "" {
		u.Sector = uu.Sector
	}
	if uu.City != "" {
		u.City = uu.City
	}
	if uu.Status != "" {
		u.Status = uu.Status
	}
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (repo *universityRepository) DeleteUniversity(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return university.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *universityRepository) SearchUniversitiesByField(_ context.Context, key university.FilterKey, value string) ([]university.University, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	value = strings.ToLower(value)
	match := func(u university.University) bool {
		switch key {
		case university.FilterCity:
			return strings.Contains(strings.ToLower(u.City), value)
		case university.FilterAdmissionStatus:
			for _, p := range u.Programs {
				if strings.EqualFold(p.AdmissionStatus, value) {
					return true
				}
			}
		case university.FilterDuration:
			for _, p := range u.Programs {
				if strings.Contains(strings.ToLower(p.Duration), value) {
					return true
				}
			}
		case university.FilterDegreeProgram:
			for _, p := range u.Programs {
				if strings.Contains(strings.ToLower(p.DegreeLevel), value) {
					return true
				}
			}
		case university.FilterFieldOfStudy, university.FilterCourseType, university.FilterProgramName:
			for _, p := range u.Programs {
				if strings.Contains(strings.ToLower(p.Name), value) {
					return true
				}
			}
		}
		return false
	}

	var out []university.University
	for _, u := range repo.query() {
		if match(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

// BulkUploadUniversities ingests rows of the CSV import template, creating
// new universities and updating existing ones matched by name.
func (repo *universityRepository) BulkUploadUniversities(_ context.Context, filename string, file io.Reader) (university.BulkResult, error) {
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return university.BulkResult{}, errors.Wrapf(err, "parsing %s", filename)
	}
	if len(rows) < 2 {
		return university.BulkResult{Message: "no data rows"}, nil
	}

	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	byName := make(map[string]*university.University, len(repo.db.table))
	for _, u := range repo.db.table {
		byName[strings.ToLower(u.Name)] = u
	}

	var res university.BulkResult
	now := time.Now().UTC()
	for _, row := range rows[1:] { // skip header
		if len(row) < 5 {
			res.Failed++
			continue
		}
		name, short, sector, city := strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), strings.TrimSpace(row[2]), strings.TrimSpace(row[3])
		status := university.StatusFromServer(strings.TrimSpace(row[4]))
		if name == "" || short == "" || city == "" {
			res.Failed++
			continue
		}

		var counts university.DegreeCounts
		if len(row) >= 8 {
			counts.Bachelors, _ = strconv.Atoi(strings.TrimSpace(row[5]))
			counts.Masters, _ = strconv.Atoi(strings.TrimSpace(row[6]))
			counts.PhD, _ = strconv.Atoi(strings.TrimSpace(row[7]))
		}

		if u, ok := byName[strings.ToLower(name)]; ok {
			u.ShortName = short
			u.Sector = sector
			u.City = city
			u.Status = status
			u.DegreeCounts = counts
			u.UpdatedAt = now
			res.Updated++
			continue
		}

		u := &university.University{
			ID:           uuid.New().String(),
			Name:         name,
			ShortName:    short,
			Sector:       sector,
			City:         city,
			Status:       status,
			DegreeCounts: counts,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		repo.db.table[u.ID] = u
		byName[strings.ToLower(name)] = u
		res.Created++
	}
	res.Message = fmt.Sprintf("%d created, %d updated, %d failed", res.Created, res.Updated, res.Failed)
	return res, nil
}

// ExportUniversities renders the catalog in the import-template layout.
// The "excel" format is the same CSV payload; only the download name differs.
func (repo *universityRepository) ExportUniversities(_ context.Context, format string) ([]byte, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"name", "short_name", "sector", "city", "status", "bachelors_programs", "masters_programs", "phd_programs"})
	for _, u := range repo.query() {
		_ = w.Write([]string{
			u.Name, u.ShortName, u.Sector, u.City, u.Status.Server(),
			strconv.Itoa(u.DegreeCounts.Bachelors),
			strconv.Itoa(u.DegreeCounts.Masters),
			strconv.Itoa(u.DegreeCounts.PhD),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrapf(err, "exporting %s", format)
	}
	return []byte(buf.String()), nil
}
