package promo

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promodraft/internal"
	"promodraft/internal/config"
)

func TestPromoPriceDefault(t *testing.T) {
	p := DefaultPricing()
	cases := map[int64]int64{
		25:   24, // 23.75
		1000: 950,
		1235: 1173, // 1173.25
		10:   10,   // 9.5 rounds half up
		0:    0,
	}
	for price, want := range cases {
		assert.Equal(t, want, p.PromoPrice(price), "price=%d", price)
	}
}

func TestPromoPriceRoundingModes(t *testing.T) {
	assert.Equal(t, int64(10), Pricing{DiscountPct: 5, Rounding: RoundHalfUp}.PromoPrice(10))
	assert.Equal(t, int64(10), Pricing{DiscountPct: 5, Rounding: RoundHalfEven}.PromoPrice(10))
	assert.Equal(t, int64(28), Pricing{DiscountPct: 5, Rounding: RoundHalfEven}.PromoPrice(30))
	assert.Equal(t, int64(9), Pricing{DiscountPct: 5, Rounding: RoundFloor}.PromoPrice(10))
	assert.Equal(t, int64(80), Pricing{DiscountPct: 20}.PromoPrice(100))
}

func TestPricingFromConfig(t *testing.T) {
	p, err := PricingFromConfig(config.Config{PromoDiscountPct: 10, PromoRounding: "FLOOR"})
	require.NoError(t, err)
	assert.Equal(t, Pricing{DiscountPct: 10, Rounding: RoundFloor}, p)

	p, err = PricingFromConfig(config.Config{PromoDiscountPct: 5})
	require.NoError(t, err)
	assert.Equal(t, RoundHalfUp, p.Rounding)

	_, err = PricingFromConfig(config.Config{PromoDiscountPct: 5, PromoRounding: "bankers"})
	assert.Error(t, err)
	_, err = PricingFromConfig(config.Config{PromoDiscountPct: 100})
	assert.Error(t, err)
}

func TestPickEmpty(t *testing.T) {
	_, err := Pick(nil, DefaultPricing(), nil)
	assert.True(t, errors.Is(err, ErrEmptyCatalog))
}

func TestPickUniformCoverage(t *testing.T) {
	items := []internal.CatalogItem{{Name: "A", Price: 10}, {Name: "B", Price: 20}, {Name: "C", Price: 40}}
	rnd := rand.New(rand.NewPCG(1, 2))
	seen := map[string]int{}
	for i := 0; i < 3000; i++ {
		sel, err := Pick(items, DefaultPricing(), rnd)
		require.NoError(t, err)
		seen[sel.Item.Name]++
		assert.Equal(t, DefaultPricing().PromoPrice(sel.Item.Price), sel.PromoPrice)
	}
	for _, it := range items {
		assert.InDelta(t, 1000, seen[it.Name], 150, it.Name)
	}
}

func TestProfileBuild(t *testing.T) {
	sel := Select(internal.CatalogItem{Name: "Blender 1000W", Price: 100}, DefaultPricing())
	prompt, err := DefaultProfile().Build(sel, "1000W motor, stainless steel jar")
	require.NoError(t, err)
	assert.Contains(t, prompt.System, "Technodel Lebanon")
	assert.Contains(t, prompt.System, "Lebanese Ammiya")
	assert.Contains(t, prompt.User, "Product: Blender 1000W")
	assert.Contains(t, prompt.User, "Old Price: $100 | New Price: $95")
	assert.Contains(t, prompt.User, "stainless steel jar")
}

func TestProfileBuildWithoutSpecs(t *testing.T) {
	sel := Select(internal.CatalogItem{Name: "Fan", Price: 30}, DefaultPricing())
	prompt, err := DefaultProfile().Build(sel, "  ")
	require.NoError(t, err)
	assert.Contains(t, prompt.User, NoSpecsText)

	_, err = DefaultProfile().Build(internal.Selection{}, "x")
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	base := DefaultProfile()
	p, err := LoadProfile(base, "")
	require.NoError(t, err)
	assert.Equal(t, base, p)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: Gadget Hub\ncurrency: \"LBP \"\nuser: |\n  Item {{.Name}} now {{.Currency}}{{.NewPrice}} ({{.Discount}}% off)\n"), 0o644))
	p, err = LoadProfile(base, path)
	require.NoError(t, err)
	assert.Equal(t, "Gadget Hub", p.Store)
	assert.Equal(t, base.System, p.System)

	prompt, err := p.Build(Select(internal.CatalogItem{Name: "Fan", Price: 40}, DefaultPricing()), "")
	require.NoError(t, err)
	assert.Equal(t, "Item Fan now LBP 38 (5% off)\n", prompt.User)
	assert.Contains(t, prompt.System, "Gadget Hub")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("user: [unclosed"), 0o644))
	_, err = LoadProfile(base, bad)
	assert.Error(t, err)

	tmpl := filepath.Join(t.TempDir(), "tmpl.yaml")
	require.NoError(t, os.WriteFile(tmpl, []byte("user: \"{{.Missing}}\"\n"), 0o644))
	p, err = LoadProfile(base, tmpl)
	require.NoError(t, err)
	_, err = p.Build(Select(internal.CatalogItem{Name: "Fan", Price: 40}, DefaultPricing()), "")
	assert.Error(t, err)
}
