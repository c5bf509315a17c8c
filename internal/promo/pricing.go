package promo

import (
	"fmt"
	"math"
	"strings"

	"promodraft/internal/config"
)

type Rounding string

const (
	RoundHalfUp   Rounding = "half_up"
	RoundHalfEven Rounding = "half_even"
	RoundFloor    Rounding = "floor"
)

type Pricing struct {
	DiscountPct float64
	Rounding    Rounding
}

func DefaultPricing() Pricing {
	return Pricing{DiscountPct: 5, Rounding: RoundHalfUp}
}

func PricingFromConfig(cfg config.Config) (Pricing, error) {
	p := Pricing{DiscountPct: cfg.PromoDiscountPct, Rounding: Rounding(strings.ToLower(strings.TrimSpace(cfg.PromoRounding)))}
	if p.Rounding == "" {
		p.Rounding = RoundHalfUp
	}
	switch p.Rounding {
	case RoundHalfUp, RoundHalfEven, RoundFloor:
	default:
		return Pricing{}, fmt.Errorf("unsupported PROMO_ROUNDING: %s", cfg.PromoRounding)
	}
	if p.DiscountPct < 0 || p.DiscountPct >= 100 {
		return Pricing{}, fmt.Errorf("PROMO_DISCOUNT_PCT must be in [0,100): %v", p.DiscountPct)
	}
	return p, nil
}

// PromoPrice applies the discount to a whole-unit price.
func (p Pricing) PromoPrice(price int64) int64 {
	v := float64(price) * (100 - p.DiscountPct) / 100
	switch p.Rounding {
	case RoundHalfEven:
		return int64(math.RoundToEven(v))
	case RoundFloor:
		return int64(math.Floor(v))
	default:
		return int64(math.Round(v))
	}
}
