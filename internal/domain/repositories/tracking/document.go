package tracking

import (
	"context"
	"time"

	models "doctrack/internal/domain/models/tracking"
)

// StatusUpdate carries one validated transition for ApplyStatusUpdate.
// The repository applies the status change and the history append as a
// single atomic unit; a partial application is never observable.
type StatusUpdate struct {
	NewStatus Status
	NewHolder string
	Entry     models.LogEntry
}

// Status aliases the model type so callers reading this package see the
// repository contract in one place.
type Status = models.Status

// SweepSummary reports one bottleneck recalculation run.
type SweepSummary struct {
	Evaluated int `json:"evaluated"`
	Flagged   int `json:"flagged"`
}

// DocumentRepository is the persistence contract for tracked documents
// and their append-only history ledger.
type DocumentRepository interface {
	// Create persists a new document together with its initial history
	// entries in one transaction. Returns a ConflictError when the
	// QR code / id already exists.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID fetches one document with its history, newest-first.
	// Returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// ExistsByQRCode reports whether a document already carries the
	// given QR token. Used by the identifier generator before commit.
	ExistsByQRCode(ctx context.Context, qrCode string) (bool, error)

	// ApplyStatusUpdate locks the document row, updates status, holder
	// and updated_at, and appends the history entry, all in one
	// transaction. Returns the refreshed document with full history.
	ApplyStatusUpdate(ctx context.Context, id string, update *StatusUpdate) (*models.Document, error)

	// Search filters and paginates documents, attaching history
	// (newest-first) to every returned item.
	Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResults, error)

	// UpdateBottleneckFlags recomputes is_bottleneck for every
	// non-terminal document against the staleness threshold. The flag
	// can flip both ways; terminal documents are left untouched.
	UpdateBottleneckFlags(ctx context.Context, threshold time.Duration) (*SweepSummary, error)
}
