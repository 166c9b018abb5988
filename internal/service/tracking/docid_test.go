package tracking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
)

var idPattern = regexp.MustCompile(`^[A-Z]+-[A-Z]+-\d{4}-\d{3}$`)

func TestIDGenerator_Format(t *testing.T) {
	repo := newFakeDocRepo()
	gen := NewIDGenerator(repo)
	gen.now = func() time.Time { return time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC) }
	gen.seq = func() int { return 42 }

	id, err := gen.Generate(context.Background(), "KTO", "QTTX")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if id != "KTO-QTTX-0826-042" {
		t.Errorf("id = %q, want KTO-QTTX-0826-042", id)
	}
	if !idPattern.MatchString(id) {
		t.Errorf("id %q does not match the expected shape", id)
	}
}

func TestIDGenerator_RetriesOnCollision(t *testing.T) {
	repo := newFakeDocRepo()
	gen := NewIDGenerator(repo)
	gen.now = func() time.Time { return time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC) }

	// First candidate collides with an existing document, second is free.
	seqs := []int{7, 8}
	gen.seq = func() int {
		n := seqs[0]
		seqs = seqs[1:]
		return n
	}
	if err := repo.Create(context.Background(), &models.Document{
		ID:            "KTO-QTTX-0826-007",
		QRCode:        "KTO-QTTX-0826-007",
		Title:         "Hồ sơ đã tồn tại",
		CurrentStatus: models.StatusSending,
	}); err != nil {
		t.Fatalf("seed colliding document: %v", err)
	}

	id, err := gen.Generate(context.Background(), "KTO", "QTTX")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if id != "KTO-QTTX-0826-008" {
		t.Errorf("id = %q, want the retried candidate KTO-QTTX-0826-008", id)
	}
}

func TestIDGenerator_ExhaustsAttempts(t *testing.T) {
	repo := newFakeDocRepo()
	gen := NewIDGenerator(repo)
	gen.now = func() time.Time { return time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC) }
	gen.seq = func() int { return 7 }

	if err := repo.Create(context.Background(), &models.Document{
		ID:            "KTO-QTTX-0826-007",
		QRCode:        "KTO-QTTX-0826-007",
		Title:         "Hồ sơ đã tồn tại",
		CurrentStatus: models.StatusSending,
	}); err != nil {
		t.Fatalf("seed colliding document: %v", err)
	}

	_, err := gen.Generate(context.Background(), "KTO", "QTTX")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want conflict after exhausting attempts", err)
	}
}

func TestIDGenerator_StoreError(t *testing.T) {
	repo := newFakeDocRepo()
	repo.existsErr = errors.New("connection reset")
	gen := NewIDGenerator(repo)

	_, err := gen.Generate(context.Background(), "KTO", "QTTX")
	if err == nil {
		t.Fatal("expected existence-check error to surface")
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Errorf("store error misreported as conflict: %v", err)
	}
}
