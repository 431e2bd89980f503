package university

import (
	"context"
	"strings"
	"testing"
)

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("empty selection", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, nopLogger{})
		if err := svc.Transition(ctx, nil, StatusConfirmed); err != errNothingToSend {
			t.Errorf("Transition() error = %v, want %v", err, errNothingToSend)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, nopLogger{})
		if err := svc.Transition(ctx, []string{"u1"}, "archived"); err == nil {
			t.Error("Transition() expected an error")
		}
	})

	t.Run("all succeed", func(t *testing.T) {
		repo := &fakeRepository{unis: seedUnis(3, StatusInProgress)}
		svc := NewService(repo, nopLogger{})
		if err := svc.Transition(ctx, []string{"u1", "u2", "u3"}, StatusConfirmed); err != nil {
			t.Fatalf("Transition() unexpected error = %v", err)
		}
		for _, u := range repo.unis {
			if u.Status != StatusConfirmed {
				t.Errorf("%s status = %v, want %v", u.ID, u.Status, StatusConfirmed)
			}
		}
	})

	t.Run("partial failure aggregates", func(t *testing.T) {
		repo := &fakeRepository{
			unis:       seedUnis(4, StatusInProgress),
			updateErrs: map[string]error{"u2": errUpstreamDown, "u4": errUpstreamDown},
		}
		svc := NewService(repo, nopLogger{})
		err := svc.Transition(ctx, []string{"u1", "u2", "u3", "u4"}, StatusConfirmed)
		if err == nil {
			t.Fatal("Transition() expected an error")
		}
		if !strings.Contains(err.Error(), "updating 2 of 4 universities failed") {
			t.Errorf("error = %q, want aggregate count", err)
		}
	})
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed", func(t *testing.T) {
		repo := &fakeRepository{unis: seedUnis(2, StatusDeleted)}
		svc := NewService(repo, nopLogger{})
		if err := svc.Remove(ctx, []string{"u1", "u2"}); err != nil {
			t.Fatalf("Remove() unexpected error = %v", err)
		}
		if len(repo.unis) != 0 {
			t.Errorf("unis = %v, want empty", repo.unis)
		}
	})

	t.Run("partial failure aggregates", func(t *testing.T) {
		repo := &fakeRepository{
			unis:       seedUnis(3, StatusDeleted),
			deleteErrs: map[string]error{"u3": errUpstreamDown},
		}
		svc := NewService(repo, nopLogger{})
		err := svc.Remove(ctx, []string{"u1", "u2", "u3"})
		if err == nil {
			t.Fatal("Remove() expected an error")
		}
		if !strings.Contains(err.Error(), "deleting 1 of 3 universities failed") {
			t.Errorf("error = %q, want aggregate count", err)
		}
		// the successful deletes are not rolled back
		if len(repo.deleted) != 2 {
			t.Errorf("deleted = %v, want 2 rows", repo.deleted)
		}
	})
}

func TestService_SearchByField(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepository{}, nopLogger{})

	if _, err := svc.SearchByField(ctx, "lol", "x"); err == nil {
		t.Error("SearchByField() expected an error for an unknown key")
	}
	if _, err := svc.SearchByField(ctx, FilterSector, "Public"); err == nil {
		t.Error("SearchByField() expected an error for a local-only key")
	}
	if _, err := svc.SearchByField(ctx, FilterCity, "Lahore"); err != nil {
		t.Errorf("SearchByField() unexpected error = %v", err)
	}
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepository{}, nopLogger{})

	if _, err := svc.Export(ctx, "pdf"); err == nil {
		t.Error("Export() expected an error for an unknown format")
	}
	if _, err := svc.Export(ctx, ExportCSV); err != nil {
		t.Errorf("Export() unexpected error = %v", err)
	}
	if _, err := svc.Export(ctx, ExportExcel); err != nil {
		t.Errorf("Export() unexpected error = %v", err)
	}
}
