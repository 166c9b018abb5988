package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	models "doctrack/internal/domain/models/tracking"
)

func seedAged(t *testing.T, repo *fakeDocRepo, id string, status models.Status, age time.Duration) {
	t.Helper()
	stamp := time.Now().Add(-age)
	mustCreate(t, repo, &models.Document{
		ID:            id,
		QRCode:        id,
		Title:         "Hồ sơ " + id,
		CurrentStatus: status,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	})
}

func TestSweep_FlagsStaleDocuments(t *testing.T) {
	repo := newFakeDocRepo()
	recalc := NewBottleneckRecalculator(repo, 24*time.Hour, time.Minute, testLogger())

	seedAged(t, repo, "stale-processing", models.StatusProcessing, 25*time.Hour)
	seedAged(t, repo, "fresh-processing", models.StatusProcessing, time.Hour)
	seedAged(t, repo, "stale-transit", models.StatusTransitHCM, 48*time.Hour)

	summary, err := recalc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if summary.Evaluated != 3 {
		t.Errorf("evaluated = %d, want 3", summary.Evaluated)
	}
	if summary.Flagged != 2 {
		t.Errorf("flagged = %d, want 2", summary.Flagged)
	}

	for id, want := range map[string]bool{
		"stale-processing": true,
		"fresh-processing": false,
		"stale-transit":    true,
	} {
		doc, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID %s: %v", id, err)
		}
		if doc.IsBottleneck != want {
			t.Errorf("%s: is_bottleneck = %v, want %v", id, doc.IsBottleneck, want)
		}
	}
}

func TestSweep_SkipsTerminalStatuses(t *testing.T) {
	repo := newFakeDocRepo()
	recalc := NewBottleneckRecalculator(repo, 24*time.Hour, time.Minute, testLogger())

	seedAged(t, repo, "old-completed", models.StatusCompleted, 30*24*time.Hour)
	seedAged(t, repo, "old-returned", models.StatusReturned, 30*24*time.Hour)

	summary, err := recalc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if summary.Evaluated != 0 {
		t.Errorf("evaluated = %d, terminal documents should be skipped", summary.Evaluated)
	}
	for _, id := range []string{"old-completed", "old-returned"} {
		doc, _ := repo.GetByID(context.Background(), id)
		if doc.IsBottleneck {
			t.Errorf("%s flagged despite terminal status", id)
		}
	}
}

func TestSweep_ClearsRecoveredFlag(t *testing.T) {
	repo := newFakeDocRepo()
	recalc := NewBottleneckRecalculator(repo, 24*time.Hour, time.Minute, testLogger())

	// Previously flagged, then its status moved an hour ago.
	stamp := time.Now().Add(-time.Hour)
	mustCreate(t, repo, &models.Document{
		ID:            "recovered",
		QRCode:        "recovered",
		Title:         "Hồ sơ đã luân chuyển",
		CurrentStatus: models.StatusProcessing,
		IsBottleneck:  true,
		CreatedAt:     stamp.Add(-48 * time.Hour),
		UpdatedAt:     stamp,
	})

	if _, err := recalc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	doc, _ := repo.GetByID(context.Background(), "recovered")
	if doc.IsBottleneck {
		t.Error("flag not cleared after the document moved again")
	}
}

func TestSweep_StoreError(t *testing.T) {
	repo := newFakeDocRepo()
	repo.sweepErr = errors.New("connection reset")
	recalc := NewBottleneckRecalculator(repo, 24*time.Hour, time.Minute, testLogger())

	if _, err := recalc.Sweep(context.Background()); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestThreshold(t *testing.T) {
	recalc := NewBottleneckRecalculator(newFakeDocRepo(), 36*time.Hour, time.Minute, testLogger())
	if got := recalc.Threshold(); got != 36*time.Hour {
		t.Errorf("Threshold() = %v, want 36h", got)
	}
}
