package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

func setupCoefficientsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS category_coefficients (
  id TEXT PRIMARY KEY,
  family TEXT NOT NULL,
  subfamily TEXT,
  coefficient NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	// same shape as the production index: one family default per family
	index := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_category_coefficients_family_subfamily
  ON category_coefficients (family, COALESCE(subfamily, ''));`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(index).Error)
	return db
}

func newCoefficient(t *testing.T, db *gorm.DB, family string, subfamily *string, value string) *models.CategoryCoefficient {
	t.Helper()

	row := &models.CategoryCoefficient{
		ID:          uuid.New(),
		Family:      family,
		Subfamily:   subfamily,
		Coefficient: decimal.RequireFromString(value),
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func strPtr(s string) *string {
	return &s
}

func TestCoefficientRepositoryResolve_precedence(t *testing.T) {
	db := setupCoefficientsTestDB(t)
	repo := NewCoefficientRepository(db)

	newCoefficient(t, db, "paper", nil, "2.0")
	newCoefficient(t, db, "paper", strPtr("notebooks"), "2.5")

	got, err := repo.Resolve(context.Background(), "paper", strPtr("notebooks"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("2.5")))
}

func TestCoefficientRepositoryResolve_familyDefault(t *testing.T) {
	db := setupCoefficientsTestDB(t)
	repo := NewCoefficientRepository(db)

	newCoefficient(t, db, "paper", nil, "2.0")

	got, err := repo.Resolve(context.Background(), "paper", strPtr("envelopes"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("2.0")))
}

func TestCoefficientRepositoryResolve_cleanMiss(t *testing.T) {
	db := setupCoefficientsTestDB(t)
	repo := NewCoefficientRepository(db)

	newCoefficient(t, db, "paper", nil, "2.0")

	got, err := repo.Resolve(context.Background(), "writing", strPtr("pens"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCoefficientRepositoryUpsert_replacesExisting(t *testing.T) {
	db := setupCoefficientsTestDB(t)
	repo := NewCoefficientRepository(db)

	first := &models.CategoryCoefficient{
		ID:          uuid.New(),
		Family:      "paper",
		Subfamily:   strPtr("notebooks"),
		Coefficient: decimal.RequireFromString("2.5"),
	}
	_, err := repo.Upsert(context.Background(), first)
	require.NoError(t, err)

	second := &models.CategoryCoefficient{
		ID:          uuid.New(),
		Family:      "paper",
		Subfamily:   strPtr("notebooks"),
		Coefficient: decimal.RequireFromString("3.0"),
	}
	saved, err := repo.Upsert(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, saved.ID)

	var count int64
	require.NoError(t, db.Model(&models.CategoryCoefficient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.Resolve(context.Background(), "paper", strPtr("notebooks"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("3.0")))
}

func TestCoefficientRepositoryUpsert_familyDefaultDoesNotDuplicate(t *testing.T) {
	db := setupCoefficientsTestDB(t)
	repo := NewCoefficientRepository(db)

	for _, value := range []string{"2.0", "2.2"} {
		row := &models.CategoryCoefficient{
			ID:          uuid.New(),
			Family:      "paper",
			Coefficient: decimal.RequireFromString(value),
		}
		_, err := repo.Upsert(context.Background(), row)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.CategoryCoefficient{}).
		Where("family = ? AND subfamily IS NULL", "paper").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.Resolve(context.Background(), "paper", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("2.2")))
}
