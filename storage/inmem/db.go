package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unidash/unidash/core/university"
)

// DB is the in-memory mock store, selected by configuration when the
// upstream API is not wanted (dev, tests). Never substituted mid-session.
type DB struct {
	mu    sync.RWMutex
	table map[string]*university.University
}

func Open() *DB {
	return &DB{table: make(map[string]*university.University)}
}

// OpenSeeded opens the store pre-filled with the mock catalog.
func OpenSeeded() *DB {
	db := Open()
	db.seed()
	return db
}

func (db *DB) seed() {
	now := time.Now().UTC()
	seed := []university.University{
		{
			Name: "National University of Sciences and Technology", ShortName: "NUST",
			Sector: university.SectorPublic, City: "Islamabad", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 45, Masters: 60, PhD: 25},
			Programs: []university.Program{
				{Name: "BS Computer Science", DegreeLevel: university.DegreeBachelors, Deadline: "2026-07-15",
					MeritThreshold: 86.5, Fee: 190000, Duration: "4 years", AdmissionStatus: university.AdmissionOpen},
				{Name: "BE Electrical Engineering", DegreeLevel: university.DegreeBachelors, Deadline: "2026-07-15",
					MeritThreshold: 84.2, Fee: 185000, Duration: "4 years", AdmissionStatus: university.AdmissionOpen},
				{Name: "MS Data Science", DegreeLevel: university.DegreeMasters, Deadline: "2026-08-01",
					MeritThreshold: 78, Fee: 210000, Duration: "2 years", AdmissionStatus: university.AdmissionClosed},
			},
		},
		{
			Name: "Lahore University of Management Sciences", ShortName: "LUMS",
			Sector: university.SectorPrivate, City: "Lahore", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 25, Masters: 15, PhD: 8},
			Programs: []university.Program{
				{Name: "BSc Economics", DegreeLevel: university.DegreeBachelors, Deadline: "2026-06-30",
					MeritThreshold: 88, Fee: 450000, Duration: "4 years", AdmissionStatus: university.AdmissionOpen},
			},
		},
		{
			Name: "University of Engineering and Technology", ShortName: "UET Lahore",
			Sector: university.SectorPublic, City: "Lahore", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 38, Masters: 42, PhD: 18},
		},
		{
			Name: "FAST National University of Computer and Emerging Sciences", ShortName: "FAST-NUCES",
			Sector: university.SectorPrivate, City: "Karachi", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 12, Masters: 10, PhD: 5},
			Programs: []university.Program{
				{Name: "BS Software Engineering", DegreeLevel: university.DegreeBachelors, Deadline: "2026-07-10",
					MeritThreshold: 80.5, Fee: 160000, Duration: "4 years", AdmissionStatus: university.AdmissionOpen},
			},
		},
		{
			Name: "COMSATS University Islamabad", ShortName: "COMSATS",
			Sector: university.SectorPublic, City: "Islamabad", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 30, Masters: 35, PhD: 15},
		},
		{
			Name: "Quaid-i-Azam University", ShortName: "QAU",
			Sector: university.SectorPublic, City: "Islamabad", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 20, Masters: 45, PhD: 30},
		},
		{
			Name: "Institute of Business Administration", ShortName: "IBA Karachi",
			Sector: university.SectorPublic, City: "Karachi", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 10, Masters: 12, PhD: 3},
		},
		{
			Name: "Aga Khan University", ShortName: "AKU",
			Sector: university.SectorPrivate, City: "Karachi", Status: university.StatusConfirmed,
			DegreeCounts: university.DegreeCounts{Bachelors: 6, Masters: 14, PhD: 7},
		},
		{
			Name: "Ghulam Ishaq Khan Institute", ShortName: "GIKI",
			Sector: university.SectorPrivate, City: "Topi", Status: university.StatusInProgress,
			DegreeCounts: university.DegreeCounts{Bachelors: 9, Masters: 11, PhD: 6},
		},
		{
			Name: "Bahria University", ShortName: "BU",
			Sector: university.SectorPublic, City: "Islamabad", Status: university.StatusInProgress,
			DegreeCounts: university.DegreeCounts{Bachelors: 22, Masters: 18, PhD: 4},
		},
		{
			Name: "Iqra University", ShortName: "IU",
			Sector: university.SectorPrivate, City: "Karachi", Status: university.StatusInProgress,
			DegreeCounts: university.DegreeCounts{Bachelors: 14, Masters: 9, PhD: 2},
		},
		{
			Name: "Virtual University of Pakistan", ShortName: "VU",
			Sector: university.SectorCommunity, City: "Lahore", Status: university.StatusDeleted,
			DegreeCounts: university.DegreeCounts{Bachelors: 16, Masters: 8, PhD: 0},
		},
	}

	for i := range seed {
		u := seed[i]
		u.ID = uuid.New().String()
		u.CreatedAt = now
		u.UpdatedAt = now
		db.table[u.ID] = &u
	}
}
