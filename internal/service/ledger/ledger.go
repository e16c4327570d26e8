package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/domain/models"
	"github.com/ymgn/stockkeeper/internal/repository/mongodb"
)

// ErrStockNotFound indicates the requested id has no record.
var ErrStockNotFound = errors.New("stock not found")

// ErrCountOverflow indicates an increment would push the count past
// models.MaxCount. The stored count is left untouched.
var ErrCountOverflow = errors.New("stock count is too high")

// ErrUpdateConflict indicates concurrent writers kept invalidating the read
// snapshot until the retry budget ran out.
var ErrUpdateConflict = errors.New("stock update conflict")

// ErrNegativeDelta indicates a mutation was called with a negative amount.
var ErrNegativeDelta = errors.New("delta must be non-negative")

// casRetries bounds how many times a mutation re-reads after losing a write race.
const casRetries = 5

// Ledger is the operation surface consumed by the dispatcher and messaging
// layers.
//
// The bounds policy is asymmetric on purpose: Increment rejects counts above
// MaxCount with ErrCountOverflow, while Decrement clamps at zero and never
// errors on underflow.
type Ledger interface {
	Add(ctx context.Context, group, detail string, price int64) (models.Stock, error)
	Remove(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Stock, error)
	List(ctx context.Context) ([]models.Stock, error)
	Increment(ctx context.Context, id string, delta int64) (models.Stock, error)
	Decrement(ctx context.Context, id string, delta int64) (models.Stock, error)
}

// Service implements Ledger over a document store.
type Service struct {
	store  mongodb.Store
	logger *zap.Logger
}

// NewService constructs the ledger core.
func NewService(store mongodb.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// DeriveID maps (group, detail) to the record's document key: a name-based
// UUID over the DNS namespace. Deterministic, so re-adding the same pair
// always addresses the same document — (group, detail) is a dedup key by
// construction and two distinct records can never share that text.
func DeriveID(group, detail string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(group+detail)).String()
}

// Add creates a record with count zero and returns it. An existing record
// under the same derived id is overwritten wholesale, count included.
func (s *Service) Add(ctx context.Context, group, detail string, price int64) (models.Stock, error) {
	id := DeriveID(group, detail)
	doc := models.StockDocument{
		Group:  group,
		Detail: detail,
		Count:  0,
		Price:  price,
		Rev:    1,
	}

	if err := s.store.Set(ctx, id, doc); err != nil {
		return models.Stock{}, err
	}

	s.logger.Debug("stock added", zap.String("id", id), zap.String("group", group), zap.String("detail", detail))
	return doc.Stock(id), nil
}

// Remove deletes a record unconditionally. Removing an absent id is not an
// error; removal is idempotent.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, id string) (models.Stock, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return models.Stock{}, err
	}
	return doc.Stock(id), nil
}

// List fetches every record. Results come back in id order so repeated calls
// are deterministic; display ordering is the caller's job.
func (s *Service) List(ctx context.Context) ([]models.Stock, error) {
	docs, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stocks := make([]models.Stock, 0, len(docs))
	for id, doc := range docs {
		if err := doc.Validate(); err != nil {
			s.logger.Warn("skipping corrupt stock document", zap.String("id", id), zap.Error(err))
			continue
		}
		stocks = append(stocks, doc.Stock(id))
	}

	sort.SliceStable(stocks, func(i, j int) bool { return stocks[i].ID < stocks[j].ID })
	return stocks, nil
}

// Increment raises the count by delta and returns the updated record. Fails
// with ErrCountOverflow when the result would exceed MaxCount; nothing is
// written in that case.
func (s *Service) Increment(ctx context.Context, id string, delta int64) (models.Stock, error) {
	if delta < 0 {
		return models.Stock{}, ErrNegativeDelta
	}
	return s.mutate(ctx, id, func(count int64) (int64, error) {
		if delta > models.MaxCount-count {
			return 0, ErrCountOverflow
		}
		return count + delta, nil
	})
}

// Decrement lowers the count by delta and returns the updated record. A
// result below zero is clamped to zero, never rejected.
func (s *Service) Decrement(ctx context.Context, id string, delta int64) (models.Stock, error) {
	if delta < 0 {
		return models.Stock{}, ErrNegativeDelta
	}
	return s.mutate(ctx, id, func(count int64) (int64, error) {
		next := count - delta
		if next < 0 {
			next = 0
		}
		return next, nil
	})
}

// mutate runs a read-compute-conditional-write cycle. Losing the write race
// re-reads and recomputes, so concurrent mutations on the same record never
// drop an update.
func (s *Service) mutate(ctx context.Context, id string, compute func(count int64) (int64, error)) (models.Stock, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		doc, err := s.load(ctx, id)
		if err != nil {
			return models.Stock{}, err
		}

		next, err := compute(doc.Count)
		if err != nil {
			return models.Stock{}, err
		}

		updated := doc
		updated.Count = next
		updated.Rev = doc.Rev + 1

		err = s.store.CompareAndSet(ctx, id, updated, doc.Rev)
		if errors.Is(err, mongodb.ErrRevMismatch) {
			s.logger.Debug("stock write conflict, retrying", zap.String("id", id), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return models.Stock{}, err
		}
		return updated.Stock(id), nil
	}

	return models.Stock{}, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

func (s *Service) load(ctx context.Context, id string) (models.StockDocument, error) {
	doc, err := s.store.Get(ctx, id)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.StockDocument{}, fmt.Errorf("%w: %s", ErrStockNotFound, id)
	}
	if err != nil {
		return models.StockDocument{}, err
	}
	if err := doc.Validate(); err != nil {
		return models.StockDocument{}, fmt.Errorf("stock %s: %w", id, err)
	}
	return doc, nil
}
