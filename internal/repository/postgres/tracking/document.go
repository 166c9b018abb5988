package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"doctrack/internal/domain"
	models "doctrack/internal/domain/models/tracking"
	"doctrack/internal/domain/repositories"
	trackingRepo "doctrack/internal/domain/repositories/tracking"
	"doctrack/internal/repository/postgres"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// Multi-statement operations (create, status update) run inside a single
// transaction so a status change without its history row is never
// observable.
type PostgresDocumentRepository struct {
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) trackingRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:      config.Pool,
		tables:    config.Tables,
		txManager: postgres.NewTransactionManager(config.Pool),
		logger:    config.Logger,
	}
}

// Create persists a document and its initial history entries atomically.
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, qr_code, title, description, department_id, category_id,
			                current_status, current_holder_name, is_bottleneck, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $10)
		`, r.tables.Documents)

		executor := postgres.GetExecutor(txCtx, r.pool)
		_, err := executor.Exec(txCtx, query,
			doc.ID,
			doc.QRCode,
			doc.Title,
			doc.Description,
			doc.Department,
			doc.Category,
			doc.CurrentStatus,
			doc.CurrentHolder,
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err != nil {
			if postgres.IsPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:    fmt.Sprintf("document with QR code '%s' already exists", doc.QRCode),
					ResourceID: doc.ID,
				}
			}
			return fmt.Errorf("insert document: %w", err)
		}

		for _, entry := range doc.History {
			if err := r.insertHistory(txCtx, doc.ID, &entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("document created",
		"document_id", doc.ID,
		"qr_code", doc.QRCode,
		"status", doc.CurrentStatus,
	)
	return nil
}

// GetByID retrieves a document with its history, newest-first.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, qr_code, title, description, department_id, category_id,
		       current_status, current_holder_name, is_bottleneck, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.QRCode,
		&doc.Title,
		&doc.Description,
		&doc.Department,
		&doc.Category,
		&doc.CurrentStatus,
		&doc.CurrentHolder,
		&doc.IsBottleneck,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	history, err := r.historyFor(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.History = history

	return &doc, nil
}

// ExistsByQRCode reports whether a document already carries the QR token.
func (r *PostgresDocumentRepository) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE qr_code = $1)`, r.tables.Documents)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, qrCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("check qr code: %w", err)
	}

	return exists, nil
}

// ApplyStatusUpdate updates the document row and appends the history
// entry in one transaction. The row is locked for the duration of the
// read-modify-write so concurrent actions on the same document serialize
// instead of silently overwriting each other.
func (r *PostgresDocumentRepository) ApplyStatusUpdate(ctx context.Context, id string, update *trackingRepo.StatusUpdate) (*models.Document, error) {
	var doc models.Document

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		lockQuery := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Documents)
		var lockedID string
		if err := executor.QueryRow(txCtx, lockQuery, id).Scan(&lockedID); err != nil {
			if postgres.IsPgNoRowsError(err) {
				return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
			}
			return fmt.Errorf("lock document: %w", err)
		}

		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET current_status = $1, current_holder_name = $2, updated_at = $3
			WHERE id = $4
			RETURNING id, qr_code, title, description, department_id, category_id,
			          current_status, current_holder_name, is_bottleneck, created_at, updated_at
		`, r.tables.Documents)

		err := executor.QueryRow(txCtx, updateQuery,
			update.NewStatus,
			update.NewHolder,
			update.Entry.Timestamp,
			id,
		).Scan(
			&doc.ID,
			&doc.QRCode,
			&doc.Title,
			&doc.Description,
			&doc.Department,
			&doc.Category,
			&doc.CurrentStatus,
			&doc.CurrentHolder,
			&doc.IsBottleneck,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update document status: %w", err)
		}

		if err := r.insertHistory(txCtx, id, &update.Entry); err != nil {
			return err
		}

		history, err := r.historyFor(txCtx, id)
		if err != nil {
			return err
		}
		doc.History = history

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("document status updated",
		"document_id", id,
		"status", doc.CurrentStatus,
		"action", update.Entry.Action,
	)
	return &doc, nil
}

// Search filters and paginates documents, attaching history to each item.
func (r *PostgresDocumentRepository) Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResults, error) {
	filters.ApplyDefaults()
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	whereClause := "WHERE 1=1"
	var args []interface{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		whereClause += fmt.Sprintf(" AND current_status = $%d", len(args))
	}
	if filters.Department != "" {
		args = append(args, filters.Department)
		whereClause += fmt.Sprintf(" AND department_id = $%d", len(args))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		whereClause += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filters.Query != "" {
		args = append(args, "%"+filters.Query+"%")
		whereClause += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Documents, whereClause)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT id, qr_code, title, description, department_id, category_id,
		       current_status, current_holder_name, is_bottleneck, created_at, updated_at
		FROM %s %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, r.tables.Documents, whereClause, len(args)+1, len(args)+2)
	args = append(args, filters.PageSize, filters.Offset())

	rows, err := executor.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	var ids []string
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.QRCode,
			&doc.Title,
			&doc.Description,
			&doc.Department,
			&doc.Category,
			&doc.CurrentStatus,
			&doc.CurrentHolder,
			&doc.IsBottleneck,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.History = []models.LogEntry{}
		documents = append(documents, doc)
		ids = append(ids, doc.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if documents == nil {
		documents = []models.Document{}
	}

	if len(ids) > 0 {
		historyByDoc, err := r.historyForAll(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range documents {
			if entries, ok := historyByDoc[documents[i].ID]; ok {
				documents[i].History = entries
			}
		}
	}

	return models.NewSearchResults(documents, total, filters), nil
}

// UpdateBottleneckFlags recomputes is_bottleneck for every non-terminal
// document in a single statement. Terminal documents keep their flag.
func (r *PostgresDocumentRepository) UpdateBottleneckFlags(ctx context.Context, threshold time.Duration) (*trackingRepo.SweepSummary, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_bottleneck = (EXTRACT(EPOCH FROM (NOW() - updated_at)) / 3600 > $1)
		WHERE current_status NOT IN ($2, $3)
		RETURNING is_bottleneck
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, threshold.Hours(), models.StatusCompleted, models.StatusReturned)
	if err != nil {
		return nil, fmt.Errorf("update bottleneck flags: %w", err)
	}
	defer rows.Close()

	summary := &trackingRepo.SweepSummary{}
	for rows.Next() {
		var flagged bool
		if err := rows.Scan(&flagged); err != nil {
			return nil, fmt.Errorf("scan bottleneck flag: %w", err)
		}
		summary.Evaluated++
		if flagged {
			summary.Flagged++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bottleneck flags: %w", err)
	}

	return summary, nil
}

// insertHistory appends one ledger entry. Entries are never updated or
// deleted after this point.
func (r *PostgresDocumentRepository) insertHistory(ctx context.Context, documentID string, entry *models.LogEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, action, location, actor_name, action_type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		entry.ID,
		documentID,
		entry.Action,
		entry.Location,
		entry.User,
		entry.Type,
		entry.Notes,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	return nil
}

// historyFor fetches one document's history, newest-first.
func (r *PostgresDocumentRepository) historyFor(ctx context.Context, documentID string) ([]models.LogEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, action, location, actor_name, action_type, notes, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at DESC
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var history []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Location,
			&entry.User,
			&entry.Type,
			&entry.Notes,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	if history == nil {
		history = []models.LogEntry{}
	}

	return history, nil
}

// historyForAll fetches history for a batch of documents, grouped by
// document id and newest-first within each group.
func (r *PostgresDocumentRepository) historyForAll(ctx context.Context, documentIDs []string) (map[string][]models.LogEntry, error) {
	query := fmt.Sprintf(`
		SELECT document_id, id, action, location, actor_name, action_type, notes, created_at
		FROM %s
		WHERE document_id = ANY($1)
		ORDER BY created_at DESC
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("get history batch: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.LogEntry)
	for rows.Next() {
		var docID string
		var entry models.LogEntry
		err := rows.Scan(
			&docID,
			&entry.ID,
			&entry.Action,
			&entry.Location,
			&entry.User,
			&entry.Type,
			&entry.Notes,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		grouped[docID] = append(grouped[docID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history batch: %w", err)
	}

	return grouped, nil
}
