package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kala/internal/database"
	"kala/internal/domain/product"

	"github.com/google/uuid"
)

// SampleProductsSeeder fills the products tab of one owner with the demo
// listings. Ids derive from the owner and title, so reruns are no-ops.
type SampleProductsSeeder struct {
	Owner uuid.UUID
	Now   func() time.Time
}

func (SampleProductsSeeder) Name() string { return "sample_products" }

func (s SampleProductsSeeder) Run(ctx context.Context, db database.DB) error {
	if s.Owner == uuid.Nil {
		return fmt.Errorf("sample products need an owner")
	}
	if err := EnsureTableColumns(ctx, db, "products",
		"id", "owner_id", "title", "price", "category", "images", "status", "views", "likes", "created_at",
	); err != nil {
		return err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, p := range SampleProducts(s.Owner, now()) {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO products (id, owner_id, title, description, price, category, tags, images, status, views, likes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (id) DO NOTHING`,
			p.ID, p.OwnerID, p.Title, p.Description, p.Price, p.Category, p.Tags, images,
			string(p.Status), p.Views, p.Likes, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SampleProducts returns the demo listings for owner, newest first.
func SampleProducts(owner uuid.UUID, now time.Time) []product.Product {
	items := []struct {
		title    string
		price    string
		category string
		status   product.Status
		views    int
		likes    int
	}{
		{"Handwoven Scarf", "$45", "textiles", product.StatusPublished, 124, 23},
		{"Ceramic Bowl Set", "$89", "pottery", product.StatusDraft, 0, 0},
		{"Leather Wallet", "$67", "other", product.StatusPublished, 89, 15},
	}

	out := make([]product.Product, 0, len(items))
	for i, it := range items {
		at := now.UTC().Add(-time.Duration(i) * time.Hour)
		out = append(out, product.Product{
			ID:        uuid.NewSHA1(owner, []byte(it.title)),
			OwnerID:   owner,
			Title:     it.title,
			Price:     it.price,
			Category:  it.category,
			Images:    []string{},
			Status:    it.status,
			Views:     it.views,
			Likes:     it.likes,
			CreatedAt: at,
			UpdatedAt: at,
		})
	}
	return out
}
