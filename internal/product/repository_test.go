package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productID = "5b0f8d3c-6f4e-4c43-9f55-0c2a3c1f1a11"

var productCols = []string{"id", "name", "description", "price", "count_in_stock", "images", "weight", "created_at"}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(productID, "Chechia", "", "19.90", 5, "{a.jpg,b.jpg}", 0.2, time.Now()))

		p, err := repo.GetByID(ctx, productID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, decimal.RequireFromString("19.90").Equal(p.Price))
		assert.Equal(t, 5, p.CountInStock)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows(productCols))

		p, err := repo.GetByID(ctx, productID)
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("MalformedID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		p, err := repo.GetByID(ctx, "not-a-uuid")
		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products`).WillReturnError(errors.New("db error"))

		_, err = repo.GetByID(ctx, productID)
		assert.Error(t, err)
	})
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("WithFilters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE name ILIKE \$1 AND count_in_stock > 0`).
			WithArgs("%tapis%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`(?s)SELECT .* FROM products WHERE name ILIKE \$1 AND count_in_stock > 0 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("%tapis%", int32(10), int32(10)).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(productID, "Tapis", "", "120.000", 2, "{}", 3.5, time.Now()))

		items, total, err := repo.List(ctx, ListOptions{Search: " tapis ", InStock: true, Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Tapis", items[0].Name)
		assert.Empty(t, items[0].Images)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CountError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db error"))

		_, _, err = repo.List(ctx, ListOptions{Page: 1, Limit: 20})
		assert.Error(t, err)
	})
}
