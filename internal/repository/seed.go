package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/retailcore/promotion-service/internal/domain/auth"
	"github.com/retailcore/promotion-service/internal/domain/product"
)

const (
	upsertProductSQL = `INSERT INTO products (id, store_id, name, price, category_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			store_id = EXCLUDED.store_id,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			name = EXCLUDED.name,
			scopes = EXCLUDED.scopes,
			active = EXCLUDED.active`
)

// Upsert inserts or updates a catalog product. Used by seeding tools, not by
// the serving path.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL, p.ID, p.StoreID, p.Name, p.Price, p.CategoryID)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts or updates an API key record.
func (r *APIKeyRepository) Upsert(ctx context.Context, info auth.APIKeyInfo, active bool) error {
	_, err := r.pool.Exec(ctx, upsertAPIKeySQL, info.ID, info.KeyHash, info.Name, info.Scopes, active)
	if err != nil {
		return fmt.Errorf("upserting api key %q: %w", info.ID, err)
	}
	return nil
}

// BindCodes attaches a batch of discount codes to an existing promotion.
// Codes that already exist are re-pointed at the given promotion and
// re-activated. Batched to keep bulk imports to one round trip per chunk.
func (r *PromotionRepository) BindCodes(ctx context.Context, promotionID string, codes []string) error {
	batch := &pgx.Batch{}
	for _, code := range codes {
		batch.Queue(insertDiscountCodeSQL, code, promotionID)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range codes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("binding codes to promotion %q: %w", promotionID, err)
		}
	}
	return nil
}
