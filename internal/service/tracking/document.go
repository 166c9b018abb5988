package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"doctrack/internal/catalog"
	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
	trackingRepo "doctrack/internal/domain/repositories/tracking"
	trackingSvc "doctrack/internal/domain/services/tracking"
)

// defaultSenderName labels creation history entries when the caller
// supplied no actor.
const defaultSenderName = "Người gửi hồ sơ"

// documentService implements the DocumentService interface
type documentService struct {
	docRepo trackingRepo.DocumentRepository
	idGen   *IDGenerator
	catalog *catalog.Registry
	logger  *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo trackingRepo.DocumentRepository,
	idGen *IDGenerator,
	catalogRegistry *catalog.Registry,
	logger *slog.Logger,
) trackingSvc.DocumentService {
	return &documentService{
		docRepo: docRepo,
		idGen:   idGen,
		catalog: catalogRegistry,
		logger:  logger,
	}
}

// CreateDocument creates a document from the office form: allocate an
// identifier, bind the QR token, and persist the record together with
// its creation history entry.
func (s *documentService) CreateDocument(ctx context.Context, req *trackingSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	id, err := s.idGen.Generate(ctx, req.Department, req.Category)
	if err != nil {
		return nil, err
	}

	holder := strings.TrimSpace(req.User)
	if holder == "" {
		holder = defaultSenderName
	}

	now := time.Now()
	doc := &models.Document{
		ID:            id,
		QRCode:        id,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Department:    req.Department,
		Category:      req.Category,
		CurrentStatus: models.StatusSending,
		CurrentHolder: holder,
		CreatedAt:     now,
		UpdatedAt:     now,
		History: []models.LogEntry{
			{
				ID:        uuid.NewString(),
				Action:    "Document created",
				Location:  holder,
				User:      holder,
				Type:      models.EntryInfo,
				Notes:     strings.TrimSpace(req.Notes),
				Timestamp: now,
			},
		},
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"department", doc.Department,
		"category", doc.Category,
	)
	return doc, nil
}

// GetDocument fetches one document with history.
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// Search delegates filtering and pagination to the store. Reads never
// touch the lifecycle engine.
func (s *documentService) Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResults, error) {
	return s.docRepo.Search(ctx, filters)
}

// RegisterScan resolves a scanned QR token. Unknown codes create a stub
// document so paper discovered in the field enters tracking immediately.
func (s *documentService) RegisterScan(ctx context.Context, req *trackingSvc.RegisterScanRequest) (*trackingSvc.ScanResult, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: scan code is required", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, code)
	if err == nil {
		return &trackingSvc.ScanResult{Created: false, Document: doc}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	actor := strings.TrimSpace(req.User)
	if actor == "" {
		actor = defaultSenderName
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = "Scan point"
	}

	now := time.Now()
	stub := &models.Document{
		ID:            code,
		QRCode:        code,
		Title:         "Unscheduled document",
		CurrentStatus: models.StatusSending,
		CurrentHolder: actor,
		CreatedAt:     now,
		UpdatedAt:     now,
		History: []models.LogEntry{
			{
				ID:        uuid.NewString(),
				Action:    "Unknown code scanned",
				Location:  location,
				User:      actor,
				Type:      models.EntryIn,
				Timestamp: now,
			},
		},
	}

	if err := s.docRepo.Create(ctx, stub); err != nil {
		// Lost the race against another scanner registering the same
		// code: return the winner's document.
		if errors.Is(err, domain.ErrConflict) {
			existing, getErr := s.docRepo.GetByID(ctx, code)
			if getErr != nil {
				return nil, getErr
			}
			return &trackingSvc.ScanResult{Created: false, Document: existing}, nil
		}
		return nil, err
	}

	s.logger.Info("unknown code registered", "id", code, "location", location)
	return &trackingSvc.ScanResult{Created: true, Document: stub}, nil
}

func (s *documentService) validateCreateRequest(req *trackingSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
			validation.Length(3, 200).Error("title must be 3-200 characters"),
		),
		validation.Field(&req.Department,
			validation.Required.Error("department is required"),
			validation.By(s.knownDepartment),
		),
		validation.Field(&req.Category,
			validation.Required.Error("category is required"),
			validation.By(s.knownCategory),
		),
	)
}

func (s *documentService) knownDepartment(value interface{}) error {
	id, _ := value.(string)
	if !s.catalog.HasDepartment(id) {
		return fmt.Errorf("unknown department code %q", id)
	}
	return nil
}

func (s *documentService) knownCategory(value interface{}) error {
	id, _ := value.(string)
	if !s.catalog.HasCategory(id) {
		return fmt.Errorf("unknown category code %q", id)
	}
	return nil
}
