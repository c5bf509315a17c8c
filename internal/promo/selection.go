package promo

import (
	"errors"
	"math/rand/v2"

	"promodraft/internal"
)

var ErrEmptyCatalog = errors.New("catalog is empty")

// Pick chooses one item uniformly at random. rnd may be nil.
func Pick(items []internal.CatalogItem, pricing Pricing, rnd *rand.Rand) (internal.Selection, error) {
	if len(items) == 0 {
		return internal.Selection{}, ErrEmptyCatalog
	}
	var i int
	if rnd != nil {
		i = rnd.IntN(len(items))
	} else {
		i = rand.IntN(len(items))
	}
	return Select(items[i], pricing), nil
}

func Select(item internal.CatalogItem, pricing Pricing) internal.Selection {
	return internal.Selection{
		Item:        item,
		PromoPrice:  pricing.PromoPrice(item.Price),
		DiscountPct: pricing.DiscountPct,
	}
}
