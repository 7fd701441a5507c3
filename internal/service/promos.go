package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/models"
)

type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) error
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

// PromoService validates and redeems promo codes.
type PromoService struct {
	promos PromoStore
	now    func() time.Time
}

func NewPromoService(promos PromoStore) *PromoService {
	return &PromoService{promos: promos, now: time.Now}
}

// Validate computes the discount of code for amount on trip tripID.
// Rejections are returned as the promo sentinel errors.
func (s *PromoService) Validate(ctx context.Context, code, tripID string, amount float64) (*models.PromoResult, error) {
	result, err := s.validate(ctx, strings.TrimSpace(code), tripID, amount)
	switch {
	case err == nil:
		metrics.PromoValidationsTotal.WithLabelValues("applied").Inc()
	case apperrors.IsPromoRejection(err):
		metrics.PromoValidationsTotal.WithLabelValues("rejected").Inc()
	default:
		metrics.PromoValidationsTotal.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *PromoService) validate(ctx context.Context, code, tripID string, amount float64) (*models.PromoResult, error) {
	if code == "" {
		return nil, apperrors.ErrPromoNotFound
	}

	promo, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if promo == nil {
		return nil, apperrors.ErrPromoNotFound
	}

	if !promo.IsActive {
		return nil, apperrors.ErrPromoInactive
	}

	now := s.now().UTC()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, apperrors.ErrPromoExpired
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, apperrors.ErrPromoExpired
	}

	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return nil, apperrors.ErrPromoExhausted
	}
	if amount < promo.MinAmount {
		return nil, apperrors.ErrPromoMinAmount
	}
	if promo.ScheduleID != nil && *promo.ScheduleID != tripID {
		return nil, apperrors.ErrPromoNotApplicable
	}

	discount := CalculateDiscount(promo, amount)
	return &models.PromoResult{
		DiscountAmount: discount,
		FinalAmount:    roundMoney(amount - discount),
	}, nil
}

// CalculateDiscount applies the percentage (with optional cap) or fixed
// discount of promo, never exceeding amount.
func CalculateDiscount(promo *models.PromoCode, amount float64) float64 {
	var discount float64
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discount = amount * promo.DiscountValue / 100.0
		if promo.MaxDiscount != nil && discount > *promo.MaxDiscount {
			discount = *promo.MaxDiscount
		}
	default:
		discount = promo.DiscountValue
	}

	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return roundMoney(discount)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecordUsage counts one redemption of code.
func (s *PromoService) RecordUsage(ctx context.Context, code string) error {
	ok, err := s.promos.IncrementUsage(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to record promo usage: %w", err)
	}
	if !ok {
		logger.WithContext(ctx).Warn("Promo usage limit reached while recording usage", "promo_code", code)
		return apperrors.ErrPromoExhausted
	}
	return nil
}

// Create stores a new promo code. Codes are kept upper-case.
func (s *PromoService) Create(ctx context.Context, req *models.CreatePromoRequest) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("code is empty: %w", apperrors.ErrInvalidInput)
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage above 100: %w", apperrors.ErrInvalidInput)
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return nil, fmt.Errorf("valid_until precedes valid_from: %w", apperrors.ErrInvalidInput)
	}

	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinAmount:     req.MinAmount,
		UsageLimit:    req.UsageLimit,
		ScheduleID:    req.ScheduleID,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      req.IsActive == nil || req.IsActive.Bool(),
	}

	if err := s.promos.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	logger.WithContext(ctx).Info("Promo code created", "promo_code", promo.Code, "promo_id", promo.ID)
	return promo, nil
}
