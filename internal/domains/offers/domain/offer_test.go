package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseOfferRef(t *testing.T) {
	id := uuid.New()

	ref, err := ParseOfferRef("base:" + id.String())
	require.NoError(t, err)
	assert.Equal(t, BaseRef(id), ref)
	assert.Equal(t, "base:"+id.String(), ref.String())

	ref, err = ParseOfferRef(" VARIANT:" + id.String())
	require.NoError(t, err)
	assert.Equal(t, OfferKindVariant, ref.Kind)

	for _, raw := range []string{"", id.String(), "sku:" + id.String(), "base:not-a-uuid", "base:" + uuid.Nil.String()} {
		_, err := ParseOfferRef(raw)
		assert.ErrorIs(t, err, ErrInvalidOfferRef, raw)
	}
}

func TestOfferRef_TextRoundTrip(t *testing.T) {
	ref := VariantRef(uuid.New())
	text, err := ref.MarshalText()
	require.NoError(t, err)

	var decoded OfferRef
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, ref, decoded)
}

func TestTerms_RefreshDerivesInStock(t *testing.T) {
	cases := []struct {
		name   string
		active bool
		qty    int
		want   bool
	}{
		{"active with stock", true, 3, true},
		{"active without stock", true, 0, false},
		{"inactive with stock", false, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			terms := Terms{IsActive: tc.active, AvailableQty: tc.qty, InStock: !tc.want}
			terms.Refresh()
			assert.Equal(t, tc.want, terms.InStock)
		})
	}
}

func TestNewTerms(t *testing.T) {
	_, err := NewTerms(OfferFields{AvailableQty: ptr(2)}, "USD")
	require.ErrorIs(t, err, ErrPriceRequired)

	_, err = NewTerms(OfferFields{Price: ptr(decimal.NewFromInt(-1))}, "USD")
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewTerms(OfferFields{Price: ptr(decimal.NewFromInt(1)), AvailableQty: ptr(-1)}, "USD")
	require.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = NewTerms(OfferFields{Price: ptr(decimal.NewFromInt(1)), LeadDays: ptr(-2)}, "USD")
	require.ErrorIs(t, err, ErrNegativeLeadDays)

	_, err = NewTerms(OfferFields{Price: ptr(decimal.NewFromInt(1)), Currency: ptr("ZZZ")}, "USD")
	require.ErrorIs(t, err, ErrInvalidCurrency)

	terms, err := NewTerms(OfferFields{Price: ptr(decimal.RequireFromString("10.005")), Currency: ptr("eur"), AvailableQty: ptr(4)}, "USD")
	require.NoError(t, err)
	assert.Equal(t, "EUR", terms.Currency)
	assert.True(t, terms.IsActive)
	assert.True(t, terms.InStock)
	assert.True(t, decimal.RequireFromString("10.01").Equal(terms.Price))
}

func TestOfferFields_ApplyTo(t *testing.T) {
	terms := Terms{Price: decimal.NewFromInt(5), Currency: "USD", AvailableQty: 2, LeadDays: ptr(3), IsActive: true}
	terms.Refresh()

	OfferFields{AvailableQty: ptr(0)}.ApplyTo(&terms)
	assert.False(t, terms.InStock)
	assert.Equal(t, 3, *terms.LeadDays)

	OfferFields{ClearLeadDays: true, AvailableQty: ptr(7)}.ApplyTo(&terms)
	assert.Nil(t, terms.LeadDays)
	assert.True(t, terms.InStock)
	assert.True(t, OfferFields{}.IsEmpty())
}

func TestOfferBecomesPurchasable(t *testing.T) {
	price := decimal.NewFromInt(1000)
	assert.True(t, OfferBecomesPurchasable(true, true, 1, price))
	assert.False(t, OfferBecomesPurchasable(false, true, 1, price))
	assert.False(t, OfferBecomesPurchasable(true, false, 1, price))
	assert.False(t, OfferBecomesPurchasable(true, true, 0, price))
	assert.False(t, OfferBecomesPurchasable(true, true, 1, decimal.Zero))
}

func TestConversionCarriesTerms(t *testing.T) {
	productID := uuid.New()
	variant := &Variant{ID: uuid.New(), ProductID: productID}
	terms, err := NewTerms(OfferFields{Price: ptr(decimal.NewFromInt(1000)), AvailableQty: ptr(5), LeadDays: ptr(2)}, "USD")
	require.NoError(t, err)
	base, err := NewBaseOffer(uuid.New(), productID, terms)
	require.NoError(t, err)

	asVariant, err := base.ToVariant(variant)
	require.NoError(t, err)
	assert.Equal(t, productID, asVariant.ProductID)
	assert.Nil(t, asVariant.BaseOfferID)

	back, err := asVariant.ToBase()
	require.NoError(t, err)
	assert.True(t, base.Price.Equal(back.Price))
	assert.Equal(t, base.AvailableQty, back.AvailableQty)
	assert.Equal(t, base.IsActive, back.IsActive)
	assert.Equal(t, *base.LeadDays, *back.LeadDays)

	_, err = base.ToVariant(&Variant{ID: uuid.New(), ProductID: uuid.New()})
	assert.ErrorIs(t, err, ErrConversionCrossProduct)
}

func TestVariantOffer_LinkBase(t *testing.T) {
	offer := &VariantOffer{}
	base := &BaseOffer{ID: uuid.New()}
	assert.True(t, offer.LinkBase(base))
	assert.False(t, offer.LinkBase(base))
	assert.True(t, offer.LinkBase(nil))
	assert.False(t, offer.LinkBase(nil))
}
