// Package dbtest opens isolated in-memory databases carrying the full schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
)

// Open returns a fresh sqlite database migrated with every model.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ovenly_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Client wraps Open in a db.Client for services that need WithTx.
func Client(t testing.TB) *db.Client {
	t.Helper()
	return db.NewFromConn(Open(t))
}

// Fixtures seeds vendors, products and addresses.
type Fixtures struct {
	DB *gorm.DB
	t  testing.TB
}

func NewFixtures(t testing.TB, conn *gorm.DB) *Fixtures {
	return &Fixtures{DB: conn, t: t}
}

func (f *Fixtures) Bakery(ownerID uuid.UUID) models.Bakery {
	f.t.Helper()
	b := models.Bakery{OwnerID: ownerID, NameEN: "Crumb", NameAR: "كرمب"}
	require.NoError(f.t, f.DB.WithContext(context.Background()).Create(&b).Error)
	return b
}

func (f *Fixtures) Restaurant(ownerID uuid.UUID) models.Restaurant {
	f.t.Helper()
	r := models.Restaurant{OwnerID: ownerID, NameEN: "Saffron", NameAR: "زعفران"}
	require.NoError(f.t, f.DB.Create(&r).Error)
	return r
}

// Product creates an available product; stock nil means untracked.
func (f *Fixtures) Product(mutate func(p *models.Product)) models.Product {
	f.t.Helper()
	p := models.Product{NameEN: "Croissant", NameAR: "كرواسون", IsAvailable: true}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(f.t, f.DB.Create(&p).Error)
	return p
}

func (f *Fixtures) Address(userID uuid.UUID) models.Address {
	f.t.Helper()
	a := models.Address{UserID: userID, Line1: "1 Main St", City: "Riyadh", Country: "SA"}
	require.NoError(f.t, f.DB.Create(&a).Error)
	return a
}

// Stock reloads a product's stock column.
func (f *Fixtures) Stock(productID uuid.UUID) *int {
	f.t.Helper()
	var p models.Product
	require.NoError(f.t, f.DB.First(&p, "id = ?", productID).Error)
	return p.StockQuantity
}

func IntPtr(v int) *int {
	return &v
}
