package booking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Reader loads booking context by id.
type Reader interface {
	GetContext(ctx context.Context, bookingID int64) (*Context, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const contextQuery = `
SELECT
	b.id AS id,
	b.user_id AS user_id,
	b.provider_id AS provider_id,
	COALESCE(b.pet_name, '') AS pet_name,
	COALESCE(sp.name, 'Cremation Service') AS service_name,
	COALESCE(pr.name, 'your service provider') AS provider_name,
	b.booking_date AS booking_date,
	b.booking_time AS booking_time,
	COALESCE(b.total_amount, sp.price, 0) AS total_amount
FROM service_bookings b
LEFT JOIN service_packages sp ON sp.package_id = b.package_id
LEFT JOIN service_providers pr ON pr.provider_id = b.provider_id
WHERE b.id = ?
LIMIT 1`

func (r *Repository) GetContext(ctx context.Context, bookingID int64) (*Context, error) {
	var rows []Context
	if err := r.db.WithContext(ctx).Raw(contextQuery, bookingID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if len(rows) == 0 {
		return nil, ErrBookingNotFound
	}
	return &rows[0], nil
}

// IsNotFound reports whether err means the booking does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound)
}
