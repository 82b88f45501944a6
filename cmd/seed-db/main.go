// Command seed-db loads the product catalog, a demo delivery slot and API
// keys into the database. It is idempotent: rows are upserted by id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/api"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/repository"
)

type productJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit"`
	Image struct {
		Thumbnail string `json:"thumbnail"`
		Full      string `json:"full"`
	} `json:"image"`
	StoreName string `json:"storeName"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		userKey      string
		adminKey     string
		pepper       string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&userKey, "user-key", "", "customer API key to seed (or MF_SEED_USER_KEY env)")
	flag.StringVar(&adminKey, "admin-key", "", "admin API key to seed (or MF_SEED_ADMIN_KEY env)")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or MF_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if userKey == "" {
		userKey = os.Getenv("MF_SEED_USER_KEY")
	}
	if adminKey == "" {
		adminKey = os.Getenv("MF_SEED_ADMIN_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("MF_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, userKey, adminKey, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, userKey, adminKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrapf(err, "read %s", productsFile)
	}
	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products")
	}

	const upsertProduct = `INSERT INTO products (id, name, price, unit, image_thumbnail, image_full, store_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, unit = EXCLUDED.unit,
			image_thumbnail = EXCLUDED.image_thumbnail, image_full = EXCLUDED.image_full,
			store_name = EXCLUDED.store_name`

	productIDs := make([]string, len(products))
	for i, p := range products {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		productIDs[i] = p.ID
		_, err := pool.Exec(ctx, upsertProduct,
			p.ID, p.Name, p.Price, p.Unit, p.Image.Thumbnail, p.Image.Full, p.StoreName,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}
	}
	slog.Info("products seeded", slog.Int("count", len(products)))

	if err := seedSlot(ctx, pool, productIDs); err != nil {
		return errors.Wrap(err, "seed slot")
	}

	if err := seedKey(ctx, pool, userKey, pepper, false, "seed customer"); err != nil {
		return err
	}
	if err := seedKey(ctx, pool, adminKey, pepper, true, "seed admin"); err != nil {
		return err
	}
	return nil
}

// seedSlot creates one slot for tomorrow offering the whole catalog, frozen
// six hours before delivery.
func seedSlot(ctx context.Context, pool *pgxpool.Pool, productIDs []string) error {
	deliveryAt := time.Now().AddDate(0, 0, 1).Truncate(time.Hour)
	freezeAt := deliveryAt.Add(-6 * time.Hour)
	slotID := uuid.New().String()

	const insertSlot = `INSERT INTO delivery_slots (id, delivery_at, freeze_at, active)
		VALUES ($1, $2, $3, TRUE)`
	if _, err := pool.Exec(ctx, insertSlot, slotID, deliveryAt, freezeAt); err != nil {
		return errors.Wrap(err, "insert slot")
	}

	const insertSlotProduct = `INSERT INTO slot_products (slot_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, pid := range productIDs {
		if _, err := pool.Exec(ctx, insertSlotProduct, slotID, pid); err != nil {
			return errors.Wrapf(err, "offer product %s", pid)
		}
	}

	slog.Info("slot seeded",
		slog.String("id", slotID),
		slog.Time("deliveryAt", deliveryAt),
		slog.Time("freezeAt", freezeAt),
	)
	return nil
}

func seedKey(ctx context.Context, pool *pgxpool.Pool, key, pepper string, admin bool, label string) error {
	if key == "" {
		slog.Info("skipping api key", slog.String("label", label))
		return nil
	}

	const upsertKey = `INSERT INTO api_keys (key_hash, user_id, is_admin, label)
		VALUES ($1, $2, $3, $4) ON CONFLICT (key_hash) DO NOTHING`
	hash := api.HashKey([]byte(pepper), key)
	if _, err := pool.Exec(ctx, upsertKey, hash, uuid.New().String(), admin, label); err != nil {
		return errors.Wrapf(err, "seed api key %q", label)
	}

	slog.Info("api key seeded", slog.String("label", label), slog.Bool("admin", admin))
	return nil
}
