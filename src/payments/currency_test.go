package payments

import (
	"context"
	"database/sql"
	"huletfish/src/config"
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock, sqlDB
}

func TestConvertSameCurrency(t *testing.T) {
	c := NewConverter(StaticRates(config.DefaultExchangeRates()))
	conv := c.Convert(250, "ETB", "etb")
	assert.Equal(t, 250.0, conv.Amount)
	assert.Equal(t, 1.0, conv.Rate)
	assert.True(t, conv.Resolved)
}

func TestConvertDirectRate(t *testing.T) {
	c := NewConverter(StaticRates(config.DefaultExchangeRates()))
	conv := c.Convert(100, "USD", "ETB")
	assert.Equal(t, 5650.0, conv.Amount)
	assert.Equal(t, 56.5, conv.Rate)
	assert.True(t, conv.Resolved)
}

func TestConvertThroughUSD(t *testing.T) {
	c := NewConverter(StaticRates(config.DefaultExchangeRates()))

	conv := c.Convert(1000, "ETB", "EUR")
	assert.True(t, conv.Resolved)
	assert.InDelta(t, 0.0161, conv.Rate, 1e-9)
	assert.Equal(t, 16.1, conv.Amount)

	conv = c.Convert(100, "EUR", "ETB")
	assert.True(t, conv.Resolved)
	assert.Equal(t, 6102.0, conv.Amount)
}

// The table is not symmetric, so a round trip drifts slightly below the start.
func TestConvertRoundTripDrift(t *testing.T) {
	c := NewConverter(StaticRates(config.DefaultExchangeRates()))
	etb := c.Convert(100, "USD", "ETB")
	back := c.Convert(etb.Amount, "ETB", "USD")
	assert.Equal(t, 98.88, back.Amount)
	assert.InDelta(t, 100, back.Amount, 1.5)
}

func TestConvertUnknownPairFailsOpen(t *testing.T) {
	c := NewConverter(StaticRates(config.DefaultExchangeRates()))
	conv := c.Convert(100, "USD", "XYZ")
	assert.Equal(t, 100.0, conv.Amount)
	assert.Equal(t, 1.0, conv.Rate)
	assert.False(t, conv.Resolved)
}

func TestSettingsRatesRefresh(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB()
	defer sqlDB.Close()

	rows := sqlmock.NewRows([]string{"id", "setting_key", "setting_value", "group"}).
		AddRow("6f1c2a52-9a43-4c53-9d55-0d5f2b0f8e11", "exchange_rates", []byte(`{"usd_etb":120.5,"bad":"x"}`), "payments")
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(rows)

	rates := NewSettingsRates(gormDB, config.DefaultExchangeRates())
	assert.Equal(t, 56.5, rates.Rates()["USD_ETB"])

	require.NoError(t, rates.Refresh(context.Background()))
	assert.Equal(t, 120.5, rates.Rates()["USD_ETB"])
	assert.Equal(t, 0.0175, rates.Rates()["ETB_USD"])
	assert.NotContains(t, rates.Rates(), "BAD")

	conv := NewConverter(rates).Convert(10, "USD", "ETB")
	assert.Equal(t, 1205.0, conv.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRatesMissingRow(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB()
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "setting_key", "setting_value", "group"}))

	rates := NewSettingsRates(gormDB, config.DefaultExchangeRates())
	err := rates.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 56.5, rates.Rates()["USD_ETB"])
}
