package notification

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"petmemorial/internal/pkg/logger"
)

// ProviderStrategy resolves the user account that operates a provider.
// ok is false when the strategy has no answer; the next one is tried.
type ProviderStrategy interface {
	Name() string
	Resolve(ctx context.Context, providerID int64) (userID int64, ok bool, err error)
}

// queryStrategy answers with the first user_id returned by a single-argument query.
type queryStrategy struct {
	name  string
	table string
	query string
	db    *gorm.DB
}

func (s *queryStrategy) Name() string { return s.name }

func (s *queryStrategy) Resolve(ctx context.Context, providerID int64) (int64, bool, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(s.table) {
		return 0, false, nil
	}
	var ids []int64
	if err := db.Raw(s.query, providerID).Scan(&ids).Error; err != nil {
		return 0, false, err
	}
	if len(ids) == 0 || ids[0] <= 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// DefaultProviderStrategies covers the table layouts deployments have used for
// providers, newest first.
func DefaultProviderStrategies(db *gorm.DB) []ProviderStrategy {
	return []ProviderStrategy{
		&queryStrategy{
			name:  "service_providers",
			table: "service_providers",
			query: `SELECT user_id FROM service_providers WHERE provider_id = ? AND user_id IS NOT NULL LIMIT 1`,
			db:    db,
		},
		&queryStrategy{
			name:  "business_profiles",
			table: "business_profiles",
			query: `SELECT user_id FROM business_profiles WHERE id = ? AND user_id IS NOT NULL LIMIT 1`,
			db:    db,
		},
		&queryStrategy{
			name:  "business_users",
			table: "users",
			query: `SELECT user_id FROM users WHERE user_id = ? AND role = 'business' LIMIT 1`,
			db:    db,
		},
	}
}

// ProviderResolver tries its strategies in order and stops at the first answer.
type ProviderResolver struct {
	strategies []ProviderStrategy
	log        *zap.Logger
}

func NewProviderResolver(log *zap.Logger, strategies ...ProviderStrategy) *ProviderResolver {
	return &ProviderResolver{strategies: strategies, log: logger.OrNop(log)}
}

// Resolve returns ErrProviderNotResolved when every strategy comes up empty.
// A failing strategy is logged and skipped.
func (r *ProviderResolver) Resolve(ctx context.Context, providerID int64) (int64, error) {
	for _, s := range r.strategies {
		userID, ok, err := s.Resolve(ctx, providerID)
		if err != nil {
			r.log.Warn("provider lookup strategy failed",
				zap.String("strategy", s.Name()),
				zap.Int64("provider_id", providerID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			return userID, nil
		}
	}
	return 0, ErrProviderNotResolved
}
