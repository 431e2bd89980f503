package university

import (
	"strconv"
	"strings"

	"github.com/unidash/unidash/core"
)

// FilterKey names one entry of the dashboard filter panel.
// An empty value means "no constraint".
type FilterKey string

const (
	// local-only keys, applied as a pure predicate over the loaded rows
	FilterDegree       FilterKey = "degree"
	FilterSector       FilterKey = "sector"
	FilterProgramCount FilterKey = "program_count"

	// remote keys, each backed by a dedicated single-field search upstream
	FilterCity            FilterKey = "city"
	FilterFieldOfStudy    FilterKey = "field_of_study"
	FilterCourseType      FilterKey = "course_type"
	FilterDegreeProgram   FilterKey = "degree_program"
	FilterAdmissionStatus FilterKey = "admission_status"
	FilterDuration        FilterKey = "duration"
	FilterProgramName     FilterKey = "program_name"
)

var remoteFilterKeys = map[FilterKey]struct{}{
	FilterCity:            {},
	FilterFieldOfStudy:    {},
	FilterCourseType:      {},
	FilterDegreeProgram:   {},
	FilterAdmissionStatus: {},
	FilterDuration:        {},
	FilterProgramName:     {},
}

func (k FilterKey) Remote() bool {
	_, ok := remoteFilterKeys[k]
	return ok
}

func (k FilterKey) Valid() bool {
	if k.Remote() {
		return true
	}
	switch k {
	case FilterDegree, FilterSector, FilterProgramCount:
		return true
	}
	return false
}

// FilterSet maps filter keys to their current values.
type FilterSet map[FilterKey]string

// Merge applies patch on top of fs; empty values clear the entry.
func (fs FilterSet) Merge(patch FilterSet) {
	for k, v := range patch {
		v = core.CleanString(v)
		if v == "" {
			delete(fs, k)
			continue
		}
		fs[k] = v
	}
}

func (fs FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// Match reports whether u passes every constraint of the list view: the
// free-text search term matches its name or city case-insensitively, every
// non-empty local filter is satisfied and its status equals the active tab's
// target. A pure function of its inputs.
func Match(u University, search string, filters FilterSet, status Status) bool {
	if search != "" {
		s := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(u.Name), s) &&
			!strings.Contains(strings.ToLower(u.City), s) {
			return false
		}
	}
	if degree := filters[FilterDegree]; degree != "" && u.DegreeCounts.ForLevel(degree) == 0 {
		return false
	}
	if sector := filters[FilterSector]; sector != "" && !strings.EqualFold(u.Sector, sector) {
		return false
	}
	if rng := filters[FilterProgramCount]; rng != "" && !inProgramCountRange(u.DegreeCounts.Total(), rng) {
		return false
	}
	return u.Status == status
}

// inProgramCountRange accepts ranges of the form "1-5", "6-10" or "10+".
func inProgramCountRange(count int, rng string) bool {
	rng = strings.TrimSpace(rng)
	if strings.HasSuffix(rng, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(rng, "+"))
		if err != nil {
			return false
		}
		return count >= min
	}
	parts := strings.SplitN(rng, "-", 2)
	if len(parts) != 2 {
		return false
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	max, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return false
	}
	return count >= min && count <= max
}
