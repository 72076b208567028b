package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"kala/internal/database"
	"kala/internal/domain/profile"

	"github.com/google/uuid"
)

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Save(ctx context.Context, p profile.Profile) error {
	data, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	var lang *string
	if p.Data.PreferredLanguage != nil {
		lang = &p.Data.PreferredLanguage.Code
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO artisan_profiles (session_id, full_name, language_code, craft_category, data, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id) DO UPDATE SET
		   full_name = EXCLUDED.full_name,
		   language_code = EXCLUDED.language_code,
		   craft_category = EXCLUDED.craft_category,
		   data = EXCLUDED.data,
		   completed_at = EXCLUDED.completed_at`,
		p.SessionID, p.Data.FullName, lang, p.Data.CraftCategory, data, p.CompletedAt,
	)
	return err
}

func (r *PostgresProfileRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (profile.Profile, error) {
	var (
		p    profile.Profile
		data []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT session_id, data, completed_at
		 FROM artisan_profiles
		 WHERE session_id = $1`,
		sessionID,
	).Scan(&p.SessionID, &data, &p.CompletedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	if err := json.Unmarshal(data, &p.Data); err != nil {
		return profile.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p.CompletedAt = p.CompletedAt.UTC()
	return p, nil
}

// MemoryProfileRepository keeps committed profiles in process.
type MemoryProfileRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]profile.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{items: make(map[uuid.UUID]profile.Profile)}
}

func (r *MemoryProfileRepository) Save(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Data = p.Data.Clone()
	r.items[p.SessionID] = p
	return nil
}

func (r *MemoryProfileRepository) GetBySession(_ context.Context, sessionID uuid.UUID) (profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[sessionID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	p.Data = p.Data.Clone()
	return p, nil
}

var (
	_ profile.Repository = (*PostgresProfileRepository)(nil)
	_ profile.Repository = (*MemoryProfileRepository)(nil)
)
