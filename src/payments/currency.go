package payments

import (
	"context"
	"errors"
	"fmt"
	"huletfish/src/models"
	"log"
	"maps"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const pivotCurrency = "USD"

// RateProvider hands out the current exchange-rate table keyed FROM_TO.
type RateProvider interface {
	Rates() map[string]float64
}

type StaticRates map[string]float64

func (r StaticRates) Rates() map[string]float64 {
	return r
}

// SettingsRates serves the table stored in the settings row and falls back to
// a static table until the first successful Refresh.
type SettingsRates struct {
	db       *gorm.DB
	mu       sync.RWMutex
	rates    map[string]float64
	fallback map[string]float64
}

func NewSettingsRates(db *gorm.DB, fallback map[string]float64) *SettingsRates {
	return &SettingsRates{db: db, fallback: fallback}
}

func (s *SettingsRates) Rates() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rates == nil {
		return s.fallback
	}
	return s.rates
}

func (s *SettingsRates) Refresh(ctx context.Context) error {
	var setting models.Setting
	if err := s.db.
		WithContext(ctx).
		Model(&models.Setting{}).
		Where(&models.Setting{Group: models.SETTINGS_GROUP_PAYMENTS, SettingKey: models.SETTING_EXCHANGE_RATES}).
		First(&setting).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("exchange rates setting: %w", ErrNotFound)
		}
		return err
	}
	raw, ok := setting.SettingValue.Inner.(map[string]any)
	if !ok {
		return errors.New("exchange rates setting is not an object")
	}
	rates := make(map[string]float64, len(raw))
	maps.Copy(rates, s.fallback)
	for pair, v := range raw {
		rate, ok := v.(float64)
		if !ok || rate <= 0 {
			log.Printf("[rates] Skipping invalid rate for %s: %v\n", pair, v)
			continue
		}
		rates[strings.ToUpper(pair)] = rate
	}
	s.mu.Lock()
	s.rates = rates
	s.mu.Unlock()
	return nil
}

type Conversion struct {
	Amount float64
	Rate   float64
	// Resolved is false when no rate path existed and Amount is the input unchanged.
	Resolved bool
}

type Converter struct {
	rates RateProvider
}

func NewConverter(rates RateProvider) *Converter {
	return &Converter{rates: rates}
}

func (c *Converter) Convert(amount float64, from, to string) Conversion {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return Conversion{Amount: amount, Rate: 1, Resolved: true}
	}
	rate, ok := c.rate(from, to)
	if !ok {
		log.Printf("[currency] No exchange rate for %s_%s, using unconverted amount %.2f\n", from, to, amount)
		return Conversion{Amount: amount, Rate: 1}
	}
	converted := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2)
	return Conversion{Amount: converted.InexactFloat64(), Rate: rate, Resolved: true}
}

func (c *Converter) rate(from, to string) (float64, bool) {
	table := c.rates.Rates()
	if r, ok := table[from+"_"+to]; ok {
		return r, true
	}
	toPivot, ok := table[from+"_"+pivotCurrency]
	if from == pivotCurrency {
		toPivot, ok = 1, true
	}
	if !ok {
		return 0, false
	}
	fromPivot, ok := table[pivotCurrency+"_"+to]
	if to == pivotCurrency {
		fromPivot, ok = 1, true
	}
	if !ok {
		return 0, false
	}
	return decimal.NewFromFloat(toPivot).Mul(decimal.NewFromFloat(fromPivot)).InexactFloat64(), true
}
