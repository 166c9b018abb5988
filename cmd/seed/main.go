package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"doctrack/internal/config"
	models "doctrack/internal/domain/models/tracking"
	"doctrack/internal/repository/postgres"
	postgresTracking "doctrack/internal/repository/postgres/tracking"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: never drop tables in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring schema...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresTracking.NewDocumentRepository(repoConfig)

	log.Println("Seeding demo documents...")
	for i, doc := range demoDocuments() {
		if err := docRepo.Create(ctx, doc); err != nil {
			log.Printf("Failed to create document %q: %v", doc.ID, err)
			continue
		}
		log.Printf("Created %d: %s (%s)", i+1, doc.ID, doc.CurrentStatus)
	}

	log.Println("Seeding complete")
}

// demoDocuments builds a spread of statuses and ages so the bottleneck
// sweep and list filters have something to show immediately. Documents
// are inserted with their status directly; only live traffic goes
// through the lifecycle engine.
func demoDocuments() []*models.Document {
	now := time.Now()

	type seedSpec struct {
		dept, cat string
		title     string
		status    models.Status
		holder    string
		age       time.Duration
		trail     []models.LogEntry
	}

	specs := []seedSpec{
		{
			dept: "KTO", cat: "QTTX", title: "Quyết toán thuế Q2/2026",
			status: models.StatusProcessing, holder: "Phòng Kế toán HCM", age: 30 * time.Hour,
			trail: []models.LogEntry{
				{Action: "Document received", Location: "Phòng Kế toán HCM", User: "Trần Thị B", Type: models.EntryIn},
				{Action: "Document created", Location: "Văn phòng Đà Nẵng", User: "Nguyễn Văn A", Type: models.EntryInfo},
			},
		},
		{
			dept: "NNS", cat: "HDLD", title: "Hợp đồng lao động nhân viên mới",
			status: models.StatusSending, holder: "Người gửi hồ sơ", age: 2 * time.Hour,
			trail: []models.LogEntry{
				{Action: "Document created", Location: "Phòng Nhân sự", User: "Lê Văn C", Type: models.EntryInfo},
			},
		},
		{
			dept: "KDZ", cat: "HDDV", title: "Hợp đồng dịch vụ vận chuyển",
			status: models.StatusTransitDaNang, holder: "Chành xe Đà Nẵng", age: 8 * time.Hour,
			trail: []models.LogEntry{
				{Action: "In transit", Location: "Chành xe Đà Nẵng", User: "Phạm Văn D", Type: models.EntryIn},
				{Action: "Document created", Location: "Phòng Kinh doanh", User: "Phạm Văn D", Type: models.EntryInfo},
			},
		},
		{
			dept: "HCH", cat: "YCMU", title: "Yêu cầu mua sắm văn phòng phẩm",
			status: models.StatusCompleted, holder: "Phòng Hành chính", age: 72 * time.Hour,
			trail: []models.LogEntry{
				{Action: "Processing completed", Location: "Phòng Hành chính", User: "Hoàng Thị E", Type: models.EntryInfo},
				{Action: "Document received", Location: "Phòng Hành chính", User: "Hoàng Thị E", Type: models.EntryIn},
				{Action: "Document created", Location: "Văn phòng HCM", User: "Võ Văn F", Type: models.EntryInfo},
			},
		},
		{
			dept: "TKT", cat: "TTRH", title: "Tạm ứng chi phí thiết kế",
			status: models.StatusReturned, holder: "Phòng Thiết kế", age: 48 * time.Hour,
			trail: []models.LogEntry{
				{Action: "Returned to sender", Location: "Phòng Kế toán", User: "Trần Thị B", Type: models.EntryError, Notes: "Thiếu chữ ký trưởng phòng"},
				{Action: "Document created", Location: "Phòng Thiết kế", User: "Đặng Văn G", Type: models.EntryInfo},
			},
		},
	}

	docs := make([]*models.Document, 0, len(specs))
	for i, s := range specs {
		created := now.Add(-s.age - 24*time.Hour)
		updated := now.Add(-s.age)
		id := fmt.Sprintf("%s-%s-%02d%02d-%03d", s.dept, s.cat, int(created.Month()), created.Year()%100, 100+i)

		history := make([]models.LogEntry, len(s.trail))
		for j, e := range s.trail {
			e.ID = uuid.NewString()
			// Newest-first trail: space entries an hour apart
			e.Timestamp = updated.Add(-time.Duration(j) * time.Hour)
			history[j] = e
		}

		docs = append(docs, &models.Document{
			ID:            id,
			QRCode:        id,
			Title:         s.title,
			Department:    s.dept,
			Category:      s.cat,
			CurrentStatus: s.status,
			CurrentHolder: s.holder,
			CreatedAt:     created,
			UpdatedAt:     updated,
			History:       history,
		})
	}
	return docs
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// History first (FK to documents)
	for _, table := range []string{tables.History, tables.Documents} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
