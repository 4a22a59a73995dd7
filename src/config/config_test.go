package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadExchangeRatesOverride(t *testing.T) {
	t.Setenv("EXCHANGE_RATES", `{"usd_etb": 120.5, "EUR_ETB": 130}`)
	rates := LoadExchangeRates()
	assert.Equal(t, 120.5, rates["USD_ETB"])
	assert.Equal(t, 130.0, rates["EUR_ETB"])
	assert.Equal(t, 0.92, rates["USD_EUR"])
}

func TestLoadExchangeRatesSkipsNonPositive(t *testing.T) {
	t.Setenv("EXCHANGE_RATES", `{"USD_ETB": 0, "ETB_USD": -1, "EUR_USD": 1.1}`)
	rates := LoadExchangeRates()
	assert.Equal(t, 56.5, rates["USD_ETB"])
	assert.Equal(t, 0.0175, rates["ETB_USD"])
	assert.Equal(t, 1.1, rates["EUR_USD"])
}

func TestLoadExchangeRatesInvalidJSON(t *testing.T) {
	t.Setenv("EXCHANGE_RATES", `not json`)
	assert.Equal(t, DefaultExchangeRates(), LoadExchangeRates())
}
