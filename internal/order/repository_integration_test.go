//go:build integration

package order

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"boutique-be/internal/address"
	"boutique-be/internal/apperr"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *sql.DB {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "boutique",
				"POSTGRES_PASSWORD": "boutique",
				"POSTGRES_DB":       "boutique",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=boutique password=boutique dbname=boutique sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))

	schema, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)
	up, _, _ := strings.Cut(string(schema), "-- +migrate Down")
	_, err = db.ExecContext(ctx, up)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *sql.DB) uint {
	var id uint
	err := db.QueryRow(
		`INSERT INTO users (name, email, password) VALUES ('Amira', $1, 'x') RETURNING id`,
		uuid.NewString()+"@example.com",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, db *sql.DB, stock int) string {
	var id string
	err := db.QueryRow(
		`INSERT INTO products (name, price, count_in_stock) VALUES ('Savon', 12.5, $1) RETURNING id`, stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, db *sql.DB, productID string) int {
	var n int
	require.NoError(t, db.QueryRow(`SELECT count_in_stock FROM products WHERE id = $1`, productID).Scan(&n))
	return n
}

func newTestOrder(userID uint, productID string, qty int) *Order {
	price := decimal.RequireFromString("12.5")
	return &Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Items: []OrderItem{
			{ProductID: productID, Name: "Savon", Quantity: qty, Price: price},
		},
		ShippingAddress: address.ShippingAddress{Street: "1 rue de Carthage", City: "Tunis", Country: "TN"},
		PaymentMethod:   "paymee",
		Total:           price.Mul(decimal.NewFromInt(int64(qty))),
		Status:          StatusPending,
	}
}

func TestRepository_Integration(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("CreateDebitsStock", func(t *testing.T) {
		userID := seedUser(t, db)
		productID := seedProduct(t, db, 5)

		o := newTestOrder(userID, productID, 3)
		require.NoError(t, repo.CreateOrder(ctx, o))
		assert.Equal(t, 2, stockOf(t, db, productID))

		got, err := repo.GetOrderByID(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 3, got.Items[0].Quantity)
		assert.True(t, got.Total.Equal(decimal.RequireFromString("37.5")))
	})

	t.Run("InsufficientStockLeavesNothing", func(t *testing.T) {
		userID := seedUser(t, db)
		productID := seedProduct(t, db, 1)

		o := newTestOrder(userID, productID, 2)
		err := repo.CreateOrder(ctx, o)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
		assert.Equal(t, 1, stockOf(t, db, productID))

		got, err := repo.GetOrderByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ConcurrentCheckoutsNeverOversell", func(t *testing.T) {
		userID := seedUser(t, db)
		productID := seedProduct(t, db, 3)

		var wg sync.WaitGroup
		errs := make(chan error, 6)
		for range 6 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.CreateOrder(ctx, newTestOrder(userID, productID, 1))
			}()
		}
		wg.Wait()
		close(errs)

		var ok int
		for err := range errs {
			if err == nil {
				ok++
			}
		}
		assert.Equal(t, 3, ok)
		assert.Equal(t, 0, stockOf(t, db, productID))
	})

	t.Run("CancelRecreditsStock", func(t *testing.T) {
		userID := seedUser(t, db)
		productID := seedProduct(t, db, 4)

		o := newTestOrder(userID, productID, 4)
		require.NoError(t, repo.CreateOrder(ctx, o))
		require.Equal(t, 0, stockOf(t, db, productID))

		applied, err := repo.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled, true)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 4, stockOf(t, db, productID))

		applied, err = repo.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled, true)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 4, stockOf(t, db, productID))
	})

	t.Run("MarkPaidOnce", func(t *testing.T) {
		userID := seedUser(t, db)
		productID := seedProduct(t, db, 2)

		o := newTestOrder(userID, productID, 1)
		require.NoError(t, repo.CreateOrder(ctx, o))

		result := PaymentResult{Provider: "paymee", TransactionID: "5340", Token: "tok-1", Status: "paid"}
		applied, err := repo.MarkPaid(ctx, o.ID, result)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = repo.MarkPaid(ctx, o.ID, result)
		require.NoError(t, err)
		assert.False(t, applied)

		got, err := repo.GetOrderByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		assert.Equal(t, StatusConfirmed, got.Status)
		require.NotNil(t, got.PaymentResult)
		assert.Equal(t, "5340", got.PaymentResult.TransactionID)
	})
}
