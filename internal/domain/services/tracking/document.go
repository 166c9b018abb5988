package tracking

import (
	"context"
	"time"

	models "doctrack/internal/domain/models/tracking"
	repos "doctrack/internal/domain/repositories/tracking"
)

// CreateDocumentRequest is the office-form creation payload.
type CreateDocumentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department"`
	Category    string `json:"category"`
	Notes       string `json:"notes,omitempty"`
	// User is the creating actor; defaults to the authenticated actor
	// or a generic sender label when absent.
	User string `json:"user,omitempty"`
}

// RegisterScanRequest enters a scanned QR token into tracking.
type RegisterScanRequest struct {
	Code     string `json:"code"`
	Location string `json:"location,omitempty"`
	User     string `json:"user,omitempty"`
}

// ScanResult reports whether the scanned code matched an existing
// document or created a stub for an unknown one.
type ScanResult struct {
	Created  bool             `json:"created"`
	Document *models.Document `json:"document"`
}

// DocumentService is the application surface for document tracking.
type DocumentService interface {
	// CreateDocument allocates an identifier, persists the document
	// with its creation history entry, and returns it with history.
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument fetches one document with history, newest-first.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// Search filters and paginates documents for external consumers.
	Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResults, error)

	// RegisterScan resolves a scanned code to a document, creating a
	// stub when the code is unknown.
	RegisterScan(ctx context.Context, req *RegisterScanRequest) (*ScanResult, error)
}

// LifecycleEngine is the sole authority for changing a document's
// current status and appending history.
type LifecycleEngine interface {
	ApplyAction(ctx context.Context, documentID string, req *models.ActionRequest) (*models.Document, error)
}

// BottleneckRecalculator flags documents stale beyond a threshold. It
// is the only component permitted to mutate is_bottleneck.
type BottleneckRecalculator interface {
	Sweep(ctx context.Context) (*repos.SweepSummary, error)
	Threshold() time.Duration
}
