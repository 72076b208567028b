package seeder

import (
	"context"
	"errors"
	"testing"
	"time"

	"kala/internal/database"
	"kala/internal/domain/product"
	pg "kala/internal/infrastructure/persistence/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "owner_id", "title", "description", "price", "category", "tags", "images", "status", "views", "likes", "created_at", "updated_at"}

func newMock(t *testing.T) (*pg.SQLDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return pg.NewSQLDB(db), mock
}

func expectColumns(mock sqlmock.Sqlmock, table string, cols ...string) {
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).WithArgs(table).WillReturnRows(rows)
}

func TestSampleProducts(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := SampleProducts(owner, now)
	require.Len(t, items, 3)
	assert.Equal(t, "Handwoven Scarf", items[0].Title)
	assert.Equal(t, now, items[0].CreatedAt)
	assert.True(t, items[1].CreatedAt.Before(items[0].CreatedAt))

	again := SampleProducts(owner, now.Add(time.Hour))
	assert.Equal(t, items[2].ID, again[2].ID)
	assert.NotEqual(t, items[2].ID, SampleProducts(uuid.New(), now)[2].ID)

	var published int
	for _, p := range items {
		assert.Equal(t, owner, p.OwnerID)
		_, err := p.Publish(now)
		assert.NoError(t, err)
		if product.FilterPublished.Match(p) {
			published++
		}
	}
	assert.Equal(t, 2, published)
}

func TestSampleProductsSeeder_Run(t *testing.T) {
	db, mock := newMock(t)
	owner := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	expectColumns(mock, "products", productCols...)
	mock.ExpectBegin()
	for range 3 {
		mock.ExpectExec(`INSERT INTO products .* ON CONFLICT \(id\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	r := Runner{Seeders: []Seeder{SampleProductsSeeder{Owner: owner, Now: func() time.Time { return now }}}}
	require.NoError(t, r.Run(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleProductsSeeder_SchemaMismatch(t *testing.T) {
	db, mock := newMock(t)
	expectColumns(mock, "products", "id", "title")

	err := Runner{Seeders: []Seeder{SampleProductsSeeder{Owner: uuid.New()}}}.Run(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed sample_products")
	assert.Contains(t, err.Error(), "missing column products.owner_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleProductsSeeder_InsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	expectColumns(mock, "products", productCols...)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := SampleProductsSeeder{Owner: uuid.New()}.Run(context.Background(), db)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Guards(t *testing.T) {
	assert.ErrorIs(t, Runner{}.Run(context.Background(), nil), database.ErrNilDB)

	db, _ := newMock(t)
	assert.Error(t, SampleProductsSeeder{}.Run(context.Background(), db))
}
