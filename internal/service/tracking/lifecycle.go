package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
	trackingRepo "doctrack/internal/domain/repositories/tracking"
	trackingSvc "doctrack/internal/domain/services/tracking"
)

// actionEffect is the fixed outcome of one action kind: the target
// status, the history label and the entry type.
type actionEffect struct {
	status models.Status
	label  string
	typ    models.EntryType
}

var actionEffects = map[models.ActionKind]actionEffect{
	models.ActionReceive:  {models.StatusProcessing, "Document received", models.EntryIn},
	models.ActionTransfer: {models.StatusTransitDaNang, "In transit", models.EntryIn},
	models.ActionReturn:   {models.StatusReturned, "Returned to sender", models.EntryError},
}

// TransitionAllowed reports whether a document may move from one status
// to another. The current policy is deliberately permissive: any action
// may be applied from any state, including terminal ones (a completed
// dossier can still be received back into processing). A stricter
// forward-only policy can be swapped in here without touching the
// engine.
func TransitionAllowed(from, to models.Status) bool {
	_ = from
	_ = to
	return true
}

// lifecycleEngine is the sole writer of current_status and history.
type lifecycleEngine struct {
	docRepo trackingRepo.DocumentRepository
	logger  *slog.Logger
}

// NewLifecycleEngine creates the status-transition engine.
func NewLifecycleEngine(docRepo trackingRepo.DocumentRepository, logger *slog.Logger) trackingSvc.LifecycleEngine {
	return &lifecycleEngine{
		docRepo: docRepo,
		logger:  logger,
	}
}

// ApplyAction validates the action, builds the history entry and applies
// status + history as one atomic store operation. Nothing is written
// when validation fails.
func (e *lifecycleEngine) ApplyAction(ctx context.Context, documentID string, req *models.ActionRequest) (*models.Document, error) {
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown action kind %q", domain.ErrValidation, req.Kind)
	}

	notes := strings.TrimSpace(req.Notes)
	if req.Kind == models.ActionReturn && notes == "" {
		return nil, &domain.ValidationError{Message: "a return reason is required"}
	}

	doc, err := e.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	effect := actionEffects[req.Kind]
	if !TransitionAllowed(doc.CurrentStatus, effect.status) {
		return nil, fmt.Errorf("%w: transition %s -> %s is not allowed",
			domain.ErrValidation, doc.CurrentStatus, effect.status)
	}

	when := req.UpdateDate
	if when.IsZero() {
		when = time.Now()
	}

	update := &trackingRepo.StatusUpdate{
		NewStatus: effect.status,
		NewHolder: req.Location,
		Entry: models.LogEntry{
			ID:        uuid.NewString(),
			Action:    effect.label,
			Location:  req.Location,
			User:      req.User,
			Type:      effect.typ,
			Notes:     notes,
			Timestamp: when,
		},
	}

	updated, err := e.docRepo.ApplyStatusUpdate(ctx, documentID, update)
	if err != nil {
		return nil, err
	}

	e.logger.Info("action applied",
		"document_id", documentID,
		"kind", req.Kind,
		"status", updated.CurrentStatus,
		"actor", req.User,
	)
	return updated, nil
}
