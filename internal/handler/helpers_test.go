package handler

import (
	"strconv"
	"testing"

	"go-carwash-pullout/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func assertStock(t *testing.T, db *gorm.DB, supplyID uint, want string) {
	t.Helper()
	got := testutil.StockOf(t, db, supplyID)
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "supply %d stock = %s, want %s", supplyID, got, want)
}
