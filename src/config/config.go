package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// const dsn = "host=localhost user=postgres password=password dbname=huletdb port=5432 sslmode=disable TimeZone=Africa/Addis_Ababa"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

const DEFAULT_CHAPA_BASE_URL = "https://api.chapa.co/v1"

type PaymentsConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	ChapaSecretKey      string
	ChapaWebhookSecret  string
	ChapaBaseURL        string
	FrontendURL         string
	BackendURL          string
}

func LoadPaymentsConfig() PaymentsConfig {
	cfg := PaymentsConfig{
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ChapaSecretKey:      os.Getenv("CHAPA_SECRET_KEY"),
		ChapaWebhookSecret:  os.Getenv("CHAPA_WEBHOOK_SECRET"),
		ChapaBaseURL:        os.Getenv("CHAPA_BASE_URL"),
		FrontendURL:         strings.TrimSuffix(os.Getenv("FRONTEND_URL"), "/"),
		BackendURL:          strings.TrimSuffix(os.Getenv("BACKEND_URL"), "/"),
	}
	if cfg.ChapaBaseURL == "" {
		cfg.ChapaBaseURL = DEFAULT_CHAPA_BASE_URL
	}
	cfg.ChapaBaseURL = strings.TrimSuffix(cfg.ChapaBaseURL, "/")
	return cfg
}

// ChapaCallbackURL is where Chapa posts the server-side payment notification.
func (c PaymentsConfig) ChapaCallbackURL() string {
	return fmt.Sprintf("%s/api/v1/payments/webhook/chapa", c.BackendURL)
}

func (c PaymentsConfig) DefaultReturnURL() string {
	return fmt.Sprintf("%s/payment/success", c.FrontendURL)
}

// DefaultExchangeRates keys are FROM_TO. Pairs without a direct entry resolve through USD.
func DefaultExchangeRates() map[string]float64 {
	return map[string]float64{
		"USD_ETB": 56.5,
		"ETB_USD": 0.0175,
		"EUR_USD": 1.08,
		"USD_EUR": 0.92,
	}
}

// LoadExchangeRates applies the EXCHANGE_RATES JSON override on top of the defaults.
func LoadExchangeRates() map[string]float64 {
	rates := DefaultExchangeRates()
	raw := os.Getenv("EXCHANGE_RATES")
	if raw == "" {
		return rates
	}
	var override map[string]float64
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		log.Printf("[config] Ignoring invalid EXCHANGE_RATES: %s\n", err.Error())
		return rates
	}
	for k, v := range override {
		if v <= 0 {
			log.Printf("[config] Skipping invalid EXCHANGE_RATES entry %s: %v\n", k, v)
			continue
		}
		rates[strings.ToUpper(k)] = v
	}
	return rates
}
