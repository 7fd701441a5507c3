package repository

import (
	"context"
	"database/sql"

	"busline/internal/database"
	"busline/internal/models"
)

type PromoRepository struct {
	db *database.DB
}

func NewPromoRepository(db *database.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo := &models.PromoCode{}
	query := `
		SELECT id, code, discount_type, discount_value, max_discount, min_amount, usage_limit,
		       used_count, schedule_id, valid_from, valid_until, is_active, created_at
		FROM promo_codes
		WHERE UPPER(code) = UPPER($1)`

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&promo.ID,
		&promo.Code,
		&promo.DiscountType,
		&promo.DiscountValue,
		&promo.MaxDiscount,
		&promo.MinAmount,
		&promo.UsageLimit,
		&promo.UsedCount,
		&promo.ScheduleID,
		&promo.ValidFrom,
		&promo.ValidUntil,
		&promo.IsActive,
		&promo.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return promo, err
}

func (r *PromoRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes (code, discount_type, discount_value, max_discount, min_amount,
		                         usage_limit, schedule_id, valid_from, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, used_count, created_at`

	return r.db.QueryRowContext(ctx, query,
		promo.Code,
		promo.DiscountType,
		promo.DiscountValue,
		promo.MaxDiscount,
		promo.MinAmount,
		promo.UsageLimit,
		promo.ScheduleID,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.IsActive,
	).Scan(&promo.ID, &promo.UsedCount, &promo.CreatedAt)
}

// IncrementUsage bumps used_count; it reports false when the limit was already reached.
func (r *PromoRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE promo_codes
		SET used_count = used_count + 1
		WHERE UPPER(code) = UPPER($1)
		  AND (usage_limit IS NULL OR used_count < usage_limit)`

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
