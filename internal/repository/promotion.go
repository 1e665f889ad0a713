package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

const (
	findPromotionByCodeSQL = `SELECT p.id, p.store_id, p.name, p.description, p.promo_type,
		p.discount_value, p.minimum_purchase, p.maximum_discount,
		p.buy_quantity, p.get_quantity, p.get_discount_type, p.get_discount_value,
		p.schedule, p.active_time_start, p.active_time_end, p.active_days, p.specific_dates,
		p.start_date, p.end_date,
		p.usage_limit, p.usage_count, p.customer_usage_limit,
		p.applicable_products, p.applicable_categories, p.is_active,
		(SELECT COALESCE(array_agg(code), '{}') FROM discount_codes
			WHERE promotion_id = p.id AND active = TRUE) AS codes
		FROM promotions p
		JOIN discount_codes c ON c.promotion_id = p.id
		WHERE UPPER(c.code) = UPPER($1) AND c.active = TRUE AND p.is_active = TRUE`

	// The usage_count guard makes the increment and the limit check one
	// atomic statement; concurrent redemptions race on the row lock, not on
	// a stale read.
	consumeGlobalUsageSQL = `UPDATE promotions SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)`

	consumeCustomerUsageSQL = `INSERT INTO promotion_usage (promotion_id, customer_id, uses)
		VALUES ($1, $2, 1)
		ON CONFLICT (promotion_id, customer_id)
		DO UPDATE SET uses = promotion_usage.uses + 1
		WHERE promotion_usage.uses < $3`

	insertPromotionSQL = `INSERT INTO promotions (id, store_id, name, description, promo_type,
		discount_value, minimum_purchase, maximum_discount,
		buy_quantity, get_quantity, get_discount_type, get_discount_value,
		schedule, active_time_start, active_time_end, active_days, specific_dates,
		start_date, end_date, usage_limit, usage_count, customer_usage_limit,
		applicable_products, applicable_categories, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	insertDiscountCodeSQL = `INSERT INTO discount_codes (code, promotion_id, active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (code) DO UPDATE SET promotion_id = $2, active = TRUE`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode resolves an active promotion by one of its discount codes
// (case-insensitive). Returns promotion.ErrCodeNotFound when no active code
// on an active promotion matches.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, findPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrCodeNotFound
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &p, nil
}

// ConsumeUsage increments the global usage counter and, when applicable, the
// per-customer counter. Both updates are conditional: zero affected rows
// means the corresponding limit is exhausted. The updates join the
// transaction carried by ctx when one is present (order placement runs
// redemption and order insert under one commit), and open their own
// otherwise.
func (r *PromotionRepository) ConsumeUsage(ctx context.Context, p *promotion.Promotion, customerID string) error {
	if tx, ok := txFrom(ctx); ok {
		return consumeUsage(ctx, tx, p, customerID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning usage transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := consumeUsage(ctx, tx, p, customerID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing usage transaction: %w", err)
	}
	return nil
}

func consumeUsage(ctx context.Context, db dbtx, p *promotion.Promotion, customerID string) error {
	tag, err := db.Exec(ctx, consumeGlobalUsageSQL, p.ID)
	if err != nil {
		return fmt.Errorf("consuming usage for promotion %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrUsageLimitReached
	}

	if customerID != "" && p.CustomerUsageLimit > 0 {
		tag, err = db.Exec(ctx, consumeCustomerUsageSQL, p.ID, customerID, p.CustomerUsageLimit)
		if err != nil {
			return fmt.Errorf("consuming customer usage for promotion %q: %w", p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return promotion.ErrCustomerLimitReached
		}
	}
	return nil
}

// Create persists a promotion definition and its discount codes. A missing ID
// is assigned here; timestamps come from the database defaults.
func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning create transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	days := make([]int32, len(p.ActiveDays))
	for i, d := range p.ActiveDays {
		days[i] = int32(d)
	}

	_, err = tx.Exec(ctx, insertPromotionSQL,
		p.ID, p.StoreID, p.Name, p.Description, string(p.Type),
		p.DiscountValue, p.MinimumPurchase, p.MaximumDiscount,
		int32(p.BuyQuantity), int32(p.GetQuantity), string(p.GetDiscountType), p.GetDiscountValue,
		string(p.Schedule), p.ActiveTimeStart, p.ActiveTimeEnd, days, p.SpecificDates,
		p.StartDate, p.EndDate,
		int32(p.UsageLimit), int32(p.UsageCount), int32(p.CustomerUsageLimit),
		p.ApplicableProducts, p.ApplicableCategories, p.Active,
	)
	if err != nil {
		return fmt.Errorf("inserting promotion %q: %w", p.ID, err)
	}

	for _, code := range p.Codes {
		if _, err := tx.Exec(ctx, insertDiscountCodeSQL, code, p.ID); err != nil {
			return fmt.Errorf("inserting discount code %q: %w", code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing create transaction: %w", err)
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p               promotion.Promotion
		promoType       string
		getDiscountType string
		schedule        string
		days            []int32
		buyQty          int32
		getQty          int32
		usageLimit      int32
		usageCount      int32
		customerLimit   int32
		startDate       time.Time
		endDate         time.Time
	)
	err := row.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Description, &promoType,
		&p.DiscountValue, &p.MinimumPurchase, &p.MaximumDiscount,
		&buyQty, &getQty, &getDiscountType, &p.GetDiscountValue,
		&schedule, &p.ActiveTimeStart, &p.ActiveTimeEnd, &days, &p.SpecificDates,
		&startDate, &endDate,
		&usageLimit, &usageCount, &customerLimit,
		&p.ApplicableProducts, &p.ApplicableCategories, &p.Active,
		&p.Codes,
	)

	p.Type = promotion.Type(promoType)
	p.GetDiscountType = promotion.RewardType(getDiscountType)
	p.Schedule = promotion.Schedule(schedule)
	p.BuyQuantity = int(buyQty)
	p.GetQuantity = int(getQty)
	p.UsageLimit = int(usageLimit)
	p.UsageCount = int(usageCount)
	p.CustomerUsageLimit = int(customerLimit)
	p.StartDate = startDate
	p.EndDate = endDate

	p.ActiveDays = make([]time.Weekday, len(days))
	for i, d := range days {
		p.ActiveDays[i] = time.Weekday(d)
	}

	return p, err
}
