package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ws/internal/barcode"
)

const (
	byBarcodeOrSKU = `SELECT \* FROM "products" WHERE \(shop_id = \$1 AND \(barcode = \$2 OR LOWER\(sku\) = LOWER\(\$3\)\)\)`
	byIDPrefix     = `SELECT \* FROM "products" WHERE \(shop_id = \$1 AND REPLACE\(CAST\(id AS TEXT\), '-', ''\) LIKE \$2\)`
)

func TestProductRepo_FindByCodeFallsBackToDerivedCode(t *testing.T) {
	db, mock := newMockDB(t)
	shopID := uuid.New()
	id := uuid.MustParse("0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d")
	code := barcode.Derive(id)
	require.Equal(t, "PRD0A1B2C3D4E", code)

	mock.ExpectQuery(byBarcodeOrSKU).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(byIDPrefix).
		WithArgs(sqlmock.AnyArg(), "0a1b2c3d4e%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "name"}).AddRow(id.String(), shopID.String(), "Soap"))

	// Scanners may deliver the code in lower case.
	p, err := NewProductRepo(db).FindByCode(context.Background(), shopID, "prd0a1b2c3d4e")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Soap", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_FindByCodeSkipsFallbackForPlainCodes(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(byBarcodeOrSKU).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewProductRepo(db).FindByCode(context.Background(), uuid.New(), "8901234567890")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
