package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// MirrorRepository handles data access for the locally mirrored catalog.
// The mirror is written by the sync job and webhook events and read by the
// product detail endpoint.
type MirrorRepository struct {
	db *sqlx.DB
}

// NewMirrorRepository creates a new MirrorRepository.
func NewMirrorRepository(db *sqlx.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// productRow maps the products table. Attribute and category JSON is stored
// denormalized; variations live in their own table.
type productRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Name          string         `db:"name"`
	Kind          string         `db:"kind"`
	Price         string         `db:"price"`
	OnSale        bool           `db:"on_sale"`
	AverageRating float64        `db:"average_rating"`
	Image         string         `db:"image"`
	StockStatus   string         `db:"stock_status"`
	StockQuantity sql.NullInt64  `db:"stock_quantity"`
	Categories    types.JSONText `db:"categories"`
	Attributes    types.JSONText `db:"attributes"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// UpsertProduct writes a product and replaces its variations atomically.
func (r *MirrorRepository) UpsertProduct(ctx context.Context, p *models.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	attributes, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	const upsertProduct = `
        INSERT INTO products (id, slug, name, kind, price, on_sale, average_rating, image, stock_status, stock_quantity, categories, attributes, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
        ON CONFLICT (id) DO UPDATE SET
            slug = EXCLUDED.slug,
            name = EXCLUDED.name,
            kind = EXCLUDED.kind,
            price = EXCLUDED.price,
            on_sale = EXCLUDED.on_sale,
            average_rating = EXCLUDED.average_rating,
            image = EXCLUDED.image,
            stock_status = EXCLUDED.stock_status,
            stock_quantity = EXCLUDED.stock_quantity,
            categories = EXCLUDED.categories,
            attributes = EXCLUDED.attributes,
            updated_at = NOW()`

	if _, err := tx.ExecContext(ctx, upsertProduct,
		p.ID, p.Slug, p.Name, string(p.Kind), p.Price, p.OnSale, p.AverageRating,
		p.Image, string(p.StockStatus), nullableInt(p.StockQuantity), categories, attributes,
	); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}

	// Variations are owned by the product: replace wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM variations WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear variations: %w", err)
	}
	const insertVariation = `
        INSERT INTO variations (id, product_id, name, stock_status, stock_quantity, attributes)
        VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range p.Variations {
		v := &p.Variations[i]
		attrs, err := json.Marshal(v.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal variation attributes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertVariation,
			v.ID, p.ID, v.Name, string(v.StockStatus), nullableInt(v.StockQuantity), attrs,
		); err != nil {
			return fmt.Errorf("failed to insert variation %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteProduct removes a mirrored product. Variations cascade.
func (r *MirrorRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

// GetBySlug returns a mirrored product with its variations, or
// utils.ErrProductNotFound when the slug is unknown.
func (r *MirrorRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE slug = $1 LIMIT 1`, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", utils.ErrProductNotFound, slug)
		}
		return nil, err
	}
	return r.hydrate(ctx, &row)
}

// GetByID returns a mirrored product by identifier.
func (r *MirrorRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", utils.ErrProductNotFound, id)
		}
		return nil, err
	}
	return r.hydrate(ctx, &row)
}

// Prune deletes mirrored products whose ids are not in keep and returns the
// number removed. Used by the full sweep to drop products deleted upstream.
func (r *MirrorRepository) Prune(ctx context.Context, keep []string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE NOT (id = ANY($1))`, pq.Array(keep))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// hydrate converts a row and loads its variations.
func (r *MirrorRepository) hydrate(ctx context.Context, row *productRow) (*models.Product, error) {
	p := &models.Product{
		ID:            row.ID,
		UpdatedAt:     row.UpdatedAt,
		Slug:          row.Slug,
		Name:          row.Name,
		Kind:          models.ProductKind(row.Kind),
		Price:         row.Price,
		OnSale:        row.OnSale,
		AverageRating: row.AverageRating,
		Image:         row.Image,
		StockStatus:   models.StockStatus(row.StockStatus),
	}
	if row.StockQuantity.Valid {
		qty := int(row.StockQuantity.Int64)
		p.StockQuantity = &qty
	}
	if len(row.Categories) > 0 {
		if err := json.Unmarshal(row.Categories, &p.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
		}
	}
	if len(row.Attributes) > 0 {
		if err := json.Unmarshal(row.Attributes, &p.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}

	type variationRow struct {
		ID            string         `db:"id"`
		ProductID     string         `db:"product_id"`
		Name          string         `db:"name"`
		StockStatus   string         `db:"stock_status"`
		StockQuantity sql.NullInt64  `db:"stock_quantity"`
		Attributes    types.JSONText `db:"attributes"`
	}
	var rows []variationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM variations WHERE product_id = $1 ORDER BY id`, p.ID); err != nil {
		return nil, err
	}
	for _, vr := range rows {
		v := models.Variation{
			ID:          vr.ID,
			ProductID:   vr.ProductID,
			Name:        vr.Name,
			StockStatus: models.StockStatus(vr.StockStatus),
		}
		if vr.StockQuantity.Valid {
			qty := int(vr.StockQuantity.Int64)
			v.StockQuantity = &qty
		}
		if len(vr.Attributes) > 0 {
			if err := json.Unmarshal(vr.Attributes, &v.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variation attributes: %w", err)
			}
		}
		p.Variations = append(p.Variations, v)
	}
	return p, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
