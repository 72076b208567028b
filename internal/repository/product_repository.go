package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"kala/internal/database"
	"kala/internal/domain/product"

	"github.com/google/uuid"
)

const productColumns = `id, owner_id, title, description, price, category, tags, images, status, views, likes, created_at, updated_at`

type PostgresProductRepository struct {
	db database.DB
}

func NewPostgresProductRepository(db database.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) Create(ctx context.Context, p product.Product) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Price, p.Category, p.Tags, images,
		string(p.Status), p.Views, p.Likes, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	n, err := r.db.Exec(ctx,
		`UPDATE products
		 SET title = $3, description = $4, price = $5, category = $6, tags = $7,
		     images = $8, status = $9, updated_at = $10
		 WHERE id = $1 AND owner_id = $2`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Price, p.Category, p.Tags,
		images, string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *PostgresProductRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (product.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	p, err := scanProduct(row)
	if err != nil {
		if database.IsNoRows(err) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

func (r *PostgresProductRepository) List(ctx context.Context, ownerID uuid.UUID, f product.Filter) ([]product.Product, error) {
	if f == "" {
		f = product.FilterAll
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE owner_id = $1 AND ($2::text = 'all' OR status = $2)
		 ORDER BY created_at DESC`,
		ownerID, string(f),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanProduct(row database.Row) (product.Product, error) {
	var (
		p      product.Product
		images []byte
		status string
	)
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Tags,
		&images, &status, &p.Views, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return product.Product{}, err
	}
	p.Status = product.Status(status)
	p.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return product.Product{}, fmt.Errorf("decode product images: %w", err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func encodeImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode product images: %w", err)
	}
	return b, nil
}

// MemoryProductRepository keeps products in process, newest first on List.
type MemoryProductRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]product.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{items: make(map[uuid.UUID]product.Product)}
}

func (r *MemoryProductRepository) Create(_ context.Context, p product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return fmt.Errorf("product %s already exists", p.ID)
	}
	p.Images = slices.Clone(p.Images)
	r.items[p.ID] = p
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return product.ErrNotFound
	}
	p.Images = slices.Clone(p.Images)
	p.CreatedAt = cur.CreatedAt
	r.items[p.ID] = p
	return nil
}

func (r *MemoryProductRepository) Get(_ context.Context, ownerID, id uuid.UUID) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return product.Product{}, product.ErrNotFound
	}
	p.Images = slices.Clone(p.Images)
	return p, nil
}

func (r *MemoryProductRepository) List(_ context.Context, ownerID uuid.UUID, f product.Filter) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]product.Product, 0)
	for _, p := range r.items {
		if p.OwnerID == ownerID && f.Match(p) {
			p.Images = slices.Clone(p.Images)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var (
	_ product.Repository = (*PostgresProductRepository)(nil)
	_ product.Repository = (*MemoryProductRepository)(nil)
)
