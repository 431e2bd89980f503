package remoterepos

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type staticAuthn struct{ token string }

func (a staticAuthn) Login(context.Context, string, string) (session.Auth, error) {
	return session.Auth{AccessToken: a.token}, nil
}

func testRepo(t *testing.T, handler http.Handler) (university.Repository, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.Upstream.BaseURL = srv.URL
	conf.Upstream.Timeout = 5 * time.Second
	conf.Auth.Email = "admin@unidash.local"
	conf.Auth.Password = "admin123"

	sess := session.NewSession(staticAuthn{token: "test-token"}, conf, nopLogger{})
	return NewUniversityRepository(NewClient(conf, sess, nopLogger{})), srv
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func TestUniversityRepository_ListUniversities(t *testing.T) {
	var gotReq *http.Request
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "u1", "name": "NUST", "shortName": "NUST", "sector": "Public",
					"city": "Islamabad", "status": "active",
					"degreeCounts": map[string]int{"bachelors": 45, "masters": 60, "phd": 25}},
				{"id": "u2", "name": "GIKI", "sector": "Private", "city": "Topi", "status": "pending_review"},
			},
			"pagination": map[string]int{"total": 42, "page": 2, "limit": 8, "total_pages": 6},
		})
	}))

	page, err := repo.ListUniversities(context.Background(),
		university.ListQuery{Page: 2, Limit: 8, Search: "uni", Status: university.StatusConfirmed})
	if err != nil {
		t.Fatalf("ListUniversities() unexpected error = %v", err)
	}

	if gotReq.URL.Path != "/universities" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	q := gotReq.URL.Query()
	if q.Get("page") != "2" || q.Get("limit") != "8" || q.Get("search") != "uni" {
		t.Errorf("query = %v", q)
	}
	// the dashboard status vocabulary is translated on the way out
	if q.Get("status") != "active" {
		t.Errorf("status = %q, want \"active\"", q.Get("status"))
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}

	if page.Pagination.Total != 42 {
		t.Errorf("Total = %d, want 42", page.Pagination.Total)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(page.Data))
	}
	// and translated on the way in, unknown values normalizing to in_progress
	if page.Data[0].Status != university.StatusConfirmed {
		t.Errorf("Data[0].Status = %v, want %v", page.Data[0].Status, university.StatusConfirmed)
	}
	if page.Data[1].Status != university.StatusInProgress {
		t.Errorf("Data[1].Status = %v, want %v", page.Data[1].Status, university.StatusInProgress)
	}
	if page.Data[0].DegreeCounts.Total() != 130 {
		t.Errorf("DegreeCounts.Total() = %d, want 130", page.Data[0].DegreeCounts.Total())
	}
}

func TestUniversityRepository_GetUniversity(t *testing.T) {
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/u1") {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"id": "u1", "name": "NUST", "status": "active"},
			})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	}))

	uni, err := repo.GetUniversity(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUniversity() unexpected error = %v", err)
	}
	if uni.Status != university.StatusConfirmed {
		t.Errorf("Status = %v, want %v", uni.Status, university.StatusConfirmed)
	}

	if _, err := repo.GetUniversity(context.Background(), "nope"); err != university.ErrNotFound {
		t.Errorf("GetUniversity(nope) error = %v, want %v", err, university.ErrNotFound)
	}
}

func TestUniversityRepository_EnvelopeFailures(t *testing.T) {
	t.Run("success false", func(t *testing.T) {
		repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "quota exceeded"})
		}))
		_, err := repo.ListUniversities(context.Background(), university.ListQuery{Page: 1, Limit: 8})
		if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
			t.Errorf("error = %v, want the server message", err)
		}
	})

	t.Run("non-2xx without message", func(t *testing.T) {
		repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		_, err := repo.ListUniversities(context.Background(), university.ListQuery{Page: 1, Limit: 8})
		if err == nil || !strings.Contains(err.Error(), "Bad Gateway") {
			t.Errorf("error = %v, want the status text", err)
		}
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>boom</html>"))
		}))
		_, err := repo.ListUniversities(context.Background(), university.ListQuery{Page: 1, Limit: 8})
		if err == nil {
			t.Error("expected an error")
		}
	})
}

func TestUniversityRepository_CreateUniversity(t *testing.T) {
	var gotBody map[string]interface{}
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": "u9", "name": "Test University", "status": "in_progress"},
		})
	}))

	nu := university.NewUniversity{
		Name:      "Test University",
		ShortName: "TU",
		Sector:    university.SectorPublic,
		City:      "Quetta",
		Status:    university.StatusInProgress,
		Programs: []university.NewProgram{
			{Name: "BS CS", DegreeLevel: university.DegreeBachelors, AdmissionStatus: university.AdmissionOpen},
		},
		MeritFormula: university.MeritFormula{MatricWeight: 10, InterWeight: 40, TestWeight: 50},
	}
	created, err := repo.CreateUniversity(context.Background(), nu)
	if err != nil {
		t.Fatalf("CreateUniversity() unexpected error = %v", err)
	}
	if created.ID != "u9" {
		t.Errorf("ID = %q, want u9", created.ID)
	}

	if gotBody["shortName"] != "TU" {
		t.Errorf("shortName = %v", gotBody["shortName"])
	}
	if gotBody["status"] != "in_progress" {
		t.Errorf("status = %v", gotBody["status"])
	}
	programs, ok := gotBody["programs"].([]interface{})
	if !ok || len(programs) != 1 {
		t.Fatalf("programs = %v, want 1 entry", gotBody["programs"])
	}
	mf, ok := gotBody["meritFormula"].(map[string]interface{})
	if !ok || mf["testWeight"] != float64(50) {
		t.Errorf("meritFormula = %v", gotBody["meritFormula"])
	}
}

func TestUniversityRepository_UpdateUniversity(t *testing.T) {
	var gotBody map[string]interface{}
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": "u1", "status": "active"},
		})
	}))

	updated, err := repo.UpdateUniversity(context.Background(), "u1",
		university.UpdateUniversity{Status: university.StatusConfirmed})
	if err != nil {
		t.Fatalf("UpdateUniversity() unexpected error = %v", err)
	}
	if updated.Status != university.StatusConfirmed {
		t.Errorf("Status = %v, want %v", updated.Status, university.StatusConfirmed)
	}

	// only the provided fields go out, in the server vocabulary
	if gotBody["status"] != "active" {
		t.Errorf("status = %v, want \"active\"", gotBody["status"])
	}
	if _, ok := gotBody["name"]; ok {
		t.Errorf("unexpected name in patch: %v", gotBody)
	}
}

func TestUniversityRepository_SearchUniversitiesByField(t *testing.T) {
	var gotReq *http.Request
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []map[string]interface{}{{"id": "u1", "city": "Multan", "status": "active"}},
		})
	}))

	unis, err := repo.SearchUniversitiesByField(context.Background(), university.FilterCity, "Multan")
	if err != nil {
		t.Fatalf("SearchUniversitiesByField() unexpected error = %v", err)
	}
	if gotReq.URL.Path != "/universities/search/by-city" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	if gotReq.URL.Query().Get("q") != "Multan" {
		t.Errorf("q = %q", gotReq.URL.Query().Get("q"))
	}
	if len(unis) != 1 || unis[0].Status != university.StatusConfirmed {
		t.Errorf("unis = %+v", unis)
	}

	if _, err := repo.SearchUniversitiesByField(context.Background(), university.FilterSector, "Public"); err == nil {
		t.Error("expected an error for a key without a remote search")
	}
}

func TestUniversityRepository_BulkUploadUniversities(t *testing.T) {
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "bad form"})
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "no file"})
			return
		}
		defer file.Close()
		if hdr.Filename != "unis.csv" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "bad filename"})
			return
		}
		content, _ := io.ReadAll(file)
		if !strings.HasPrefix(string(content), "name,") {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "bad content"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "2 created, 0 updated, 0 failed",
			"data":    map[string]int{"created": 2, "updated": 0, "failed": 0},
		})
	}))

	res, err := repo.BulkUploadUniversities(context.Background(), "unis.csv",
		strings.NewReader(university.CSVTemplate))
	if err != nil {
		t.Fatalf("BulkUploadUniversities() unexpected error = %v", err)
	}
	if res.Created != 2 {
		t.Errorf("Created = %d, want 2", res.Created)
	}
	if res.Message == "" {
		t.Error("expected a summary message")
	}
}

func TestUniversityRepository_ExportUniversities(t *testing.T) {
	repo, _ := testRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "bad format"})
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("name,city\nNUST,Islamabad\n"))
	}))

	data, err := repo.ExportUniversities(context.Background(), university.ExportCSV)
	if err != nil {
		t.Fatalf("ExportUniversities() unexpected error = %v", err)
	}
	if !strings.HasPrefix(string(data), "name,city") {
		t.Errorf("data = %q", data)
	}
}
