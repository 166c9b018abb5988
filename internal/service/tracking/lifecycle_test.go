package tracking

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seedDocument(t *testing.T, repo *fakeDocRepo, id string, status models.Status) *models.Document {
	t.Helper()
	now := time.Now().Add(-time.Hour)
	doc := &models.Document{
		ID:            id,
		QRCode:        id,
		Title:         "Quyết toán thuế Q2",
		Department:    "KTO",
		Category:      "QTTX",
		CurrentStatus: status,
		CurrentHolder: "Văn phòng Đà Nẵng",
		CreatedAt:     now,
		UpdatedAt:     now,
		History: []models.LogEntry{
			{
				ID:        uuid.NewString(),
				Action:    "Document created",
				Location:  "Văn phòng Đà Nẵng",
				User:      "Nguyễn Văn A",
				Type:      models.EntryInfo,
				Timestamp: now,
			},
		},
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func TestApplyAction_Receive(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-001", models.StatusSending)

	doc, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-001", &models.ActionRequest{
		Kind:     models.ActionReceive,
		Location: "Phòng Kế toán HCM",
		User:     "Trần Thị B",
	})
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}

	if doc.CurrentStatus != models.StatusProcessing {
		t.Errorf("status = %s, want %s", doc.CurrentStatus, models.StatusProcessing)
	}
	if doc.CurrentHolder != "Phòng Kế toán HCM" {
		t.Errorf("holder = %q, want receiving party", doc.CurrentHolder)
	}
	if len(doc.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(doc.History))
	}
	if doc.History[0].Type != models.EntryIn {
		t.Errorf("entry type = %s, want %s", doc.History[0].Type, models.EntryIn)
	}
	if doc.History[0].User != "Trần Thị B" {
		t.Errorf("entry user = %q, want actor", doc.History[0].User)
	}
}

func TestApplyAction_ReturnWithoutNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
	}{
		{name: "empty notes", notes: ""},
		{name: "blank notes", notes: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDocRepo()
			engine := NewLifecycleEngine(repo, testLogger())
			seedDocument(t, repo, "KTO-QTTX-0826-002", models.StatusProcessing)

			_, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-002", &models.ActionRequest{
				Kind:     models.ActionReturn,
				Location: "Phòng Kế toán",
				User:     "Trần Thị B",
				Notes:    tt.notes,
			})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("error = %v, want validation error", err)
			}

			// No mutation: call rejected before any store write
			doc, getErr := repo.GetByID(context.Background(), "KTO-QTTX-0826-002")
			if getErr != nil {
				t.Fatalf("GetByID: %v", getErr)
			}
			if doc.CurrentStatus != models.StatusProcessing {
				t.Errorf("status mutated to %s on rejected return", doc.CurrentStatus)
			}
			if len(doc.History) != 1 {
				t.Errorf("history length = %d, want 1 (no new row)", len(doc.History))
			}
			if repo.applyCalls != 0 {
				t.Errorf("store update attempted %d times on rejected return", repo.applyCalls)
			}
		})
	}
}

func TestApplyAction_ReturnRecordsReason(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-003", models.StatusProcessing)

	doc, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-003", &models.ActionRequest{
		Kind:     models.ActionReturn,
		Location: "Phòng Kế toán",
		User:     "Trần Thị B",
		Notes:    "  Thiếu chữ ký trưởng phòng  ",
	})
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}

	if doc.CurrentStatus != models.StatusReturned {
		t.Errorf("status = %s, want %s", doc.CurrentStatus, models.StatusReturned)
	}
	entry := doc.History[0]
	if entry.Type != models.EntryError {
		t.Errorf("entry type = %s, want %s", entry.Type, models.EntryError)
	}
	if entry.Notes != "Thiếu chữ ký trưởng phòng" {
		t.Errorf("entry notes = %q, want trimmed reason", entry.Notes)
	}
}

func TestApplyAction_SequentialActions(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-004", models.StatusSending)

	steps := []struct {
		req        models.ActionRequest
		wantStatus models.Status
	}{
		{models.ActionRequest{Kind: models.ActionReceive, Location: "HCM", User: "B"}, models.StatusProcessing},
		{models.ActionRequest{Kind: models.ActionTransfer, Location: "Đà Nẵng", User: "C"}, models.StatusTransitDaNang},
		{models.ActionRequest{Kind: models.ActionReturn, Location: "Đà Nẵng", User: "C", Notes: "Sai biểu mẫu"}, models.StatusReturned},
	}

	var doc *models.Document
	var err error
	for i, step := range steps {
		doc, err = engine.ApplyAction(context.Background(), "KTO-QTTX-0826-004", &step.req)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if doc.CurrentStatus != step.wantStatus {
			t.Fatalf("step %d status = %s, want %s", i, doc.CurrentStatus, step.wantStatus)
		}
	}

	// Creation entry plus three actions
	if len(doc.History) != 4 {
		t.Errorf("history length = %d, want 4", len(doc.History))
	}

	// Newest-first ordering
	for i := 0; i < len(doc.History)-1; i++ {
		if doc.History[i].Timestamp.Before(doc.History[i+1].Timestamp) {
			t.Errorf("history[%d] older than history[%d]", i, i+1)
		}
	}
	if doc.History[0].Action != "Returned to sender" {
		t.Errorf("newest entry = %q, want the last applied action", doc.History[0].Action)
	}
}

func TestApplyAction_PermissiveTransitions(t *testing.T) {
	// No transition-table enforcement: any kind applies from any state,
	// including terminal ones.
	tests := []struct {
		name  string
		from  models.Status
		kind  models.ActionKind
		notes string
		want  models.Status
	}{
		{name: "return from sending", from: models.StatusSending, kind: models.ActionReturn, notes: "Gửi nhầm phòng", want: models.StatusReturned},
		{name: "receive from completed", from: models.StatusCompleted, kind: models.ActionReceive, want: models.StatusProcessing},
		{name: "transfer from returned", from: models.StatusReturned, kind: models.ActionTransfer, want: models.StatusTransitDaNang},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDocRepo()
			engine := NewLifecycleEngine(repo, testLogger())
			seedDocument(t, repo, "KTO-QTTX-0826-005", tt.from)

			doc, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-005", &models.ActionRequest{
				Kind:     tt.kind,
				Location: "Điểm chạm",
				User:     "B",
				Notes:    tt.notes,
			})
			if err != nil {
				t.Fatalf("ApplyAction failed: %v", err)
			}
			if doc.CurrentStatus != tt.want {
				t.Errorf("status = %s, want %s", doc.CurrentStatus, tt.want)
			}
		})
	}
}

func TestApplyAction_UnknownDocument(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())

	_, err := engine.ApplyAction(context.Background(), "missing-id", &models.ActionRequest{
		Kind:     models.ActionReceive,
		Location: "HCM",
		User:     "B",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestApplyAction_UnknownKind(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-006", models.StatusSending)

	_, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-006", &models.ActionRequest{
		Kind:     "archive",
		Location: "HCM",
		User:     "B",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestApplyAction_StoreFailureLeavesDocumentUnchanged(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-007", models.StatusSending)

	repo.applyErr = errors.New("connection reset")

	_, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-007", &models.ActionRequest{
		Kind:     models.ActionReceive,
		Location: "HCM",
		User:     "B",
	})
	if err == nil {
		t.Fatal("expected store error to surface")
	}

	// The failed transaction rolled back: status and history both keep
	// their pre-call values, never one without the other.
	doc, getErr := repo.GetByID(context.Background(), "KTO-QTTX-0826-007")
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	if doc.CurrentStatus != models.StatusSending {
		t.Errorf("status = %s after failed update, want %s", doc.CurrentStatus, models.StatusSending)
	}
	if len(doc.History) != 1 {
		t.Errorf("history length = %d after failed update, want 1", len(doc.History))
	}
}

func TestApplyAction_UpdateDateOverride(t *testing.T) {
	repo := newFakeDocRepo()
	engine := NewLifecycleEngine(repo, testLogger())
	seedDocument(t, repo, "KTO-QTTX-0826-008", models.StatusSending)

	backfill := time.Now().Add(-30 * time.Minute).Truncate(time.Second)
	doc, err := engine.ApplyAction(context.Background(), "KTO-QTTX-0826-008", &models.ActionRequest{
		Kind:       models.ActionReceive,
		Location:   "HCM",
		User:       "B",
		UpdateDate: backfill,
	})
	if err != nil {
		t.Fatalf("ApplyAction failed: %v", err)
	}

	if !doc.History[0].Timestamp.Equal(backfill) {
		t.Errorf("entry timestamp = %v, want backfilled %v", doc.History[0].Timestamp, backfill)
	}
	if !doc.UpdatedAt.Equal(backfill) {
		t.Errorf("updated_at = %v, want backfilled %v", doc.UpdatedAt, backfill)
	}
}
