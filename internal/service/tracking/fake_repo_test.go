package tracking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
	trackingRepo "doctrack/internal/domain/repositories/tracking"
)

// fakeDocRepo is an in-memory DocumentRepository for service tests.
// Injectable errors simulate store failures; a failed ApplyStatusUpdate
// leaves the stored document untouched, mirroring the transactional
// rollback of the real repository.
type fakeDocRepo struct {
	docs map[string]*models.Document

	createErr error
	existsErr error
	applyErr  error
	sweepErr  error

	applyCalls int
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*models.Document)}
}

func (f *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.docs[doc.ID]; ok {
		return &domain.ConflictError{
			Message:    fmt.Sprintf("document with QR code '%s' already exists", doc.QRCode),
			ResourceID: doc.ID,
		}
	}
	f.docs[doc.ID] = copyDoc(doc)
	return nil
}

func (f *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return copyDoc(doc), nil
}

func (f *fakeDocRepo) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, doc := range f.docs {
		if doc.QRCode == qrCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDocRepo) ApplyStatusUpdate(ctx context.Context, id string, update *trackingRepo.StatusUpdate) (*models.Document, error) {
	f.applyCalls++
	if f.applyErr != nil {
		return nil, f.applyErr
	}

	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	doc.CurrentStatus = update.NewStatus
	doc.CurrentHolder = update.NewHolder
	doc.UpdatedAt = update.Entry.Timestamp
	doc.History = append([]models.LogEntry{update.Entry}, doc.History...)

	return copyDoc(doc), nil
}

func (f *fakeDocRepo) Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResults, error) {
	filters.ApplyDefaults()
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var matched []models.Document
	for _, doc := range f.docs {
		if filters.Status != "" && doc.CurrentStatus != filters.Status {
			continue
		}
		if filters.Department != "" && doc.Department != filters.Department {
			continue
		}
		if filters.Category != "" && doc.Category != filters.Category {
			continue
		}
		if filters.Query != "" && !matchesQuery(doc, filters.Query) {
			continue
		}
		matched = append(matched, *copyDoc(doc))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filters.Offset()
	if start > total {
		start = total
	}
	end := start + filters.PageSize
	if end > total {
		end = total
	}

	return models.NewSearchResults(matched[start:end], total, filters), nil
}

func (f *fakeDocRepo) UpdateBottleneckFlags(ctx context.Context, threshold time.Duration) (*trackingRepo.SweepSummary, error) {
	if f.sweepErr != nil {
		return nil, f.sweepErr
	}

	summary := &trackingRepo.SweepSummary{}
	for _, doc := range f.docs {
		if doc.CurrentStatus.IsTerminal() {
			continue
		}
		doc.IsBottleneck = time.Since(doc.UpdatedAt) > threshold
		summary.Evaluated++
		if doc.IsBottleneck {
			summary.Flagged++
		}
	}
	return summary, nil
}

func matchesQuery(doc *models.Document, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(doc.Title), q) ||
		strings.Contains(strings.ToLower(doc.Description), q)
}

func copyDoc(doc *models.Document) *models.Document {
	dup := *doc
	dup.History = append([]models.LogEntry(nil), doc.History...)
	return &dup
}
