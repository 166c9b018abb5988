package tracking

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"doctrack/internal/domain"
	trackingRepo "doctrack/internal/domain/repositories/tracking"
)

// maxIDAttempts bounds the collision-retry loop. A random 3-digit suffix
// gives only 999 slots per department/category/month, so collisions are
// expected under volume; the existence check before commit keeps them
// harmless.
const maxIDAttempts = 5

// IDGenerator produces human-readable document identifiers of the form
// {department}-{category}-{MMYY}-{seq}. The id doubles as the QR token.
type IDGenerator struct {
	docRepo trackingRepo.DocumentRepository
	now     func() time.Time
	seq     func() int
}

// NewIDGenerator creates a generator backed by the document store's
// existence check.
func NewIDGenerator(docRepo trackingRepo.DocumentRepository) *IDGenerator {
	return &IDGenerator{
		docRepo: docRepo,
		now:     time.Now,
		seq:     func() int { return rand.Intn(999) + 1 },
	}
}

// Generate returns a collision-checked identifier, retrying the random
// sequence up to maxIDAttempts before failing with a retryable error.
func (g *IDGenerator) Generate(ctx context.Context, department, category string) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := g.candidate(department, category)

		exists, err := g.docRepo.ExistsByQRCode(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check id candidate: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("could not allocate unique document id after %d attempts: %w",
		maxIDAttempts, domain.ErrConflict)
}

func (g *IDGenerator) candidate(department, category string) string {
	now := g.now()
	return fmt.Sprintf("%s-%s-%02d%02d-%03d",
		department, category, int(now.Month()), now.Year()%100, g.seq())
}
