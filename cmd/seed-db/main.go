// Command seed-db loads the product catalog, a set of demo promotions, and a
// default API key into the database. Intended for local development and demo
// environments.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/retailcore/promotion-service/internal/domain/auth"
	"github.com/retailcore/promotion-service/internal/domain/product"
	"github.com/retailcore/promotion-service/internal/domain/promotion"
	"github.com/retailcore/promotion-service/internal/repository"
)

type productJSON struct {
	ID         string          `json:"id"`
	StoreID    string          `json:"storeId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID string          `json:"categoryId"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or POS_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or POS_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("POS_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or POS_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("POS_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPromotions(ctx, repository.NewPromotionRepository(pool)); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	if err := seedAPIKey(ctx, repository.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		err := repo.Upsert(ctx, product.Product{
			ID:         p.ID,
			StoreID:    p.StoreID,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.CategoryID,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

// seedPromotions creates a demo promotion of each type via the template
// builders. IDs are fixed so re-running the seed fails fast on duplicates
// rather than stacking copies.
func seedPromotions(ctx context.Context, repo *repository.PromotionRepository) error {
	slog.Info("seeding demo promotions")

	const storeID = "store-demo"

	promos := []promotion.Promotion{
		promotion.PercentageDiscount(storeID, "Welcome 10", "10% off your first order",
			decimal.NewFromInt(10), []string{"WELCOME10"}, promotion.Options{
				MinimumPurchase:    decimal.NewFromInt(20),
				MaximumDiscount:    decimal.NewFromInt(50),
				CustomerUsageLimit: 1,
			}),
		promotion.BuyXGetYPromotion(storeID, "Coffee BOGO", "Buy 2 coffees, get 1 free",
			2, 1, promotion.RewardFree, []string{"COFFEEBOGO"}, promotion.Options{
				ApplicableCategories: []string{"coffee"},
			}),
		promotion.HappyHourPromotion(storeID, "Happy Hour", "18% off between 5pm and 7pm",
			decimal.NewFromInt(18), "17:00:00", "19:00:00", []string{"HAPPYHOUR"}, promotion.Options{}),
		promotion.WeekendSpecial(storeID, "Weekend Special", "15% off all weekend",
			decimal.NewFromInt(15), []string{"WEEKEND15"}, promotion.Options{
				MaximumDiscount: decimal.NewFromInt(30),
			}),
	}
	ids := []string{"promo-welcome10", "promo-coffee-bogo", "promo-happy-hour", "promo-weekend"}

	for i, p := range promos {
		p.ID = ids[i]
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "validate promotion %s", p.ID)
		}
		if err := repo.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "create promotion %s", p.ID)
		}

		slog.Info("created promotion",
			slog.String("id", p.ID),
			slog.String("name", p.Name),
			slog.String("type", string(p.Type)),
		)
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *repository.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	info := auth.APIKeyInfo{
		ID:      "default",
		KeyHash: keyHash,
		Name:    "Default test key",
		Scopes:  []string{"create_order", "create_promotion"},
	}
	if err := repo.Upsert(ctx, info, true); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))

	return nil
}
