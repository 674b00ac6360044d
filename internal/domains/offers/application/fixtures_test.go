package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

type fixture struct {
	store    *offermemory.Store
	svc      *Service
	p1       uuid.UUID
	p2       uuid.UUID
	v1       uuid.UUID
	v2       uuid.UUID
	v3       uuid.UUID
	ready    uuid.UUID
	unready  uuid.UUID
	stranger uuid.UUID
}

// newFixture seeds P1 with variants V1, V2 and P2 with V3, plus one
// payout-ready supplier, one with payouts disabled and one without a profile.
func newFixture(t *testing.T, mode domain.PricingMode, opts ...offermemory.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:    offermemory.NewStore(opts...),
		p1:       uuid.New(),
		p2:       uuid.New(),
		v1:       uuid.New(),
		v2:       uuid.New(),
		v3:       uuid.New(),
		ready:    uuid.New(),
		unready:  uuid.New(),
		stranger: uuid.New(),
	}
	f.store.PutProduct(domain.Product{ID: f.p1, PricingMode: mode})
	f.store.PutProduct(domain.Product{ID: f.p2, PricingMode: mode})
	f.store.PutVariant(domain.Variant{ID: f.v1, ProductID: f.p1, Options: map[string]string{"size": "S"}})
	f.store.PutVariant(domain.Variant{ID: f.v2, ProductID: f.p1, Options: map[string]string{"size": "M"}})
	f.store.PutVariant(domain.Variant{ID: f.v3, ProductID: f.p2, Options: map[string]string{"size": "L"}})
	f.store.PutSupplier(readyProfile(f.ready))
	unready := readyProfile(f.unready)
	unready.IsPayoutEnabled = false
	f.store.PutSupplier(unready)
	f.svc = NewService(f.store)
	return f
}

func readyProfile(id uuid.UUID) domain.PayoutProfile {
	return domain.PayoutProfile{
		SupplierID:             id,
		IsPayoutEnabled:        true,
		BankCode:               "044",
		AccountNumber:          "0123456789",
		AccountName:            "Acme Supplies",
		BankCountry:            "NG",
		BankVerificationStatus: domain.BankVerificationVerified,
	}
}

func actor(id uuid.UUID) types.SupplierContext {
	return types.SupplierContext{SupplierID: id}
}

func terms(price string, qty int) domain.OfferFields {
	p := decimal.RequireFromString(price)
	return domain.OfferFields{Price: &p, AvailableQty: &qty}
}

func ptr[T any](v T) *T { return &v }

// snapshot lists every product of the fixture so a rejected operation can be
// checked for leaving all rows, links and stock caches untouched.
func (f *fixture) snapshot(t *testing.T) []*types.ProductOffers {
	t.Helper()
	var out []*types.ProductOffers
	for _, id := range []uuid.UUID{f.p1, f.p2} {
		listing, err := f.svc.ListProductOffers(context.Background(), id)
		require.NoError(t, err)
		out = append(out, listing)
	}
	return out
}
