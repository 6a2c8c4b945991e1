package store

import (
	"context"
	"fmt"
	"sync"

	"electricity-price/internal/models"
	"electricity-price/internal/query"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Opener creates the connection pool on first use.
type Opener func() (*gorm.DB, error)

// PriceStore reads electricity_prices. The pool is opened lazily; a failed
// open is not cached, so the next fetch tries again.
type PriceStore struct {
	open   Opener
	logger *zap.Logger

	mu sync.Mutex
	db *gorm.DB
}

func NewPriceStore(open Opener, logger *zap.Logger) *PriceStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceStore{open: open, logger: logger}
}

func (s *PriceStore) conn() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	s.logger.Debug("Creating database connection pool")
	db, err := s.open()
	if err != nil {
		return nil, unavailable(err)
	}
	s.db = db
	return db, nil
}

// Fetch runs one AND-combined equality lookup in natural storage order.
func (s *PriceStore) Fetch(ctx context.Context, preds query.PredicateSet) ([]models.ElectricityPrice, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	q := db.WithContext(ctx).Model(&models.ElectricityPrice{})
	for _, p := range preds {
		q = q.Where(clause.Eq{Column: clause.Column{Name: string(p.Field)}, Value: p.Value})
	}

	var rows []models.ElectricityPrice
	if err := q.Find(&rows).Error; err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch electricity prices: %w", ctx.Err())
		}
		s.logger.Error("Electricity price query failed", zap.Error(err), zap.Any("predicates", preds))
		return nil, classify(err)
	}

	s.logger.Debug("Fetched electricity prices", zap.Any("predicates", preds), zap.Int("rows", len(rows)))
	return rows, nil
}

// Close releases the pool if one was opened.
func (s *PriceStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}
