package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

type offersTestContext struct {
	store     *offermemory.Store
	svc       *Service
	products  map[string]uuid.UUID
	variants  map[string]uuid.UUID
	suppliers map[string]uuid.UUID
	err       error
}

func (c *offersTestContext) reset() {
	c.store = offermemory.NewStore()
	c.svc = NewService(c.store)
	c.products = map[string]uuid.UUID{}
	c.variants = map[string]uuid.UUID{}
	c.suppliers = map[string]uuid.UUID{}
	c.err = nil
}

func (c *offersTestContext) aManualPricedProductWithVariants(product, first, second string) error {
	c.addProduct(product)
	c.addVariant(product, first)
	c.addVariant(product, second)
	return nil
}

func (c *offersTestContext) aManualPricedProductWithVariant(product, variant string) error {
	c.addProduct(product)
	c.addVariant(product, variant)
	return nil
}

func (c *offersTestContext) addProduct(name string) {
	id := uuid.New()
	c.products[name] = id
	c.store.PutProduct(domain.Product{ID: id, PricingMode: domain.PricingModeManual})
}

func (c *offersTestContext) addVariant(product, name string) {
	id := uuid.New()
	c.variants[name] = id
	c.store.PutVariant(domain.Variant{ID: id, ProductID: c.products[product]})
}

func (c *offersTestContext) aPayoutReadySupplier(name string) error {
	id := uuid.New()
	c.suppliers[name] = id
	c.store.PutSupplier(readyProfile(id))
	return nil
}

func (c *offersTestContext) supplierHasPayoutsDisabled(name string) error {
	profile := readyProfile(c.suppliers[name])
	profile.IsPayoutEnabled = false
	c.store.PutSupplier(profile)
	return nil
}

func (c *offersTestContext) supplierUpsertsBaseOffer(supplier, product string, price, qty int) error {
	_, c.err = c.svc.UpsertBaseOffer(context.Background(), types.UpsertBaseOfferInput{
		Actor:     actor(c.suppliers[supplier]),
		ProductID: c.products[product],
		Fields:    fieldsFor(price, qty),
	})
	return nil
}

func (c *offersTestContext) supplierUpsertsVariantOffer(supplier, variant, product string, price, qty int) error {
	expected := c.products[product]
	_, c.err = c.svc.UpsertVariantOffer(context.Background(), types.UpsertVariantOfferInput{
		Actor:             actor(c.suppliers[supplier]),
		VariantID:         c.variants[variant],
		ExpectedProductID: &expected,
		Fields:            fieldsFor(price, qty),
	})
	return nil
}

func (c *offersTestContext) supplierDeletesBaseOffer(supplier, product string) error {
	base, err := c.baseOffer(supplier, product)
	if err != nil {
		return err
	}
	_, c.err = c.svc.DeleteOffer(context.Background(), types.DeleteOfferInput{
		Actor: actor(c.suppliers[supplier]),
		Ref:   base.Ref(),
	})
	return nil
}

func (c *offersTestContext) anOrderItemReferencesBaseOffer(supplier, product string) error {
	base, err := c.baseOffer(supplier, product)
	if err != nil {
		return err
	}
	c.store.AddOrderItem(offermemory.OrderItem{ProductID: base.ProductID, BaseOfferID: &base.ID})
	return nil
}

func (c *offersTestContext) productStockIsRecomputed(product string) error {
	_, c.err = c.svc.RecomputeProductStock(context.Background(), c.products[product])
	return c.err
}

func (c *offersTestContext) theOperationSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *offersTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected operation to fail but it succeeded")
	}
	if got := KindOf(c.err); string(got) != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *offersTestContext) theErrorMentions(substring string) error {
	if c.err == nil || !strings.Contains(c.err.Error(), substring) {
		return fmt.Errorf("expected error containing %q, got %v", substring, c.err)
	}
	return nil
}

func (c *offersTestContext) productHasBaseOffers(product string, want int) error {
	listing, err := c.svc.ListProductOffers(context.Background(), c.products[product])
	if err != nil {
		return err
	}
	if len(listing.BaseOffers) != want {
		return fmt.Errorf("expected %d base offers, got %d", want, len(listing.BaseOffers))
	}
	return nil
}

func (c *offersTestContext) productHasUnitsAvailable(product string, want int) error {
	listing, err := c.svc.ListProductOffers(context.Background(), c.products[product])
	if err != nil {
		return err
	}
	if listing.Product.AvailableQty != want {
		return fmt.Errorf("expected %d units, got %d", want, listing.Product.AvailableQty)
	}
	if listing.Product.InStock != (want > 0) {
		return fmt.Errorf("inStock %t does not match %d units", listing.Product.InStock, want)
	}
	return nil
}

func (c *offersTestContext) everyVariantOfferHasNoBaseOffer(product string) error {
	listing, err := c.svc.ListProductOffers(context.Background(), c.products[product])
	if err != nil {
		return err
	}
	if len(listing.VariantOffers) == 0 {
		return errors.New("expected variant offers")
	}
	for _, offer := range listing.VariantOffers {
		if offer.BaseOfferID != nil {
			return fmt.Errorf("variant offer %s still links base offer %s", offer.ID, *offer.BaseOfferID)
		}
	}
	return nil
}

func (c *offersTestContext) baseOffer(supplier, product string) (*domain.BaseOffer, error) {
	listing, err := c.svc.ListProductOffers(context.Background(), c.products[product])
	if err != nil {
		return nil, err
	}
	for _, offer := range listing.BaseOffers {
		if offer.SupplierID == c.suppliers[supplier] {
			return offer, nil
		}
	}
	return nil, fmt.Errorf("supplier %s has no base offer on %s", supplier, product)
}

func fieldsFor(price, qty int) domain.OfferFields {
	p := decimal.NewFromInt(int64(price))
	return domain.OfferFields{Price: &p, AvailableQty: &qty}
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &offersTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a manual-priced product "([^"]*)" with variants "([^"]*)" and "([^"]*)"$`, tc.aManualPricedProductWithVariants)
	ctx.Step(`^a manual-priced product "([^"]*)" with variant "([^"]*)"$`, tc.aManualPricedProductWithVariant)
	ctx.Step(`^a payout-ready supplier "([^"]*)"$`, tc.aPayoutReadySupplier)
	ctx.Step(`^supplier "([^"]*)" has payouts disabled$`, tc.supplierHasPayoutsDisabled)
	ctx.Step(`^an order item references the base offer of supplier "([^"]*)" on "([^"]*)"$`, tc.anOrderItemReferencesBaseOffer)

	// When steps
	ctx.Step(`^supplier "([^"]*)" upserts a base offer on "([^"]*)" with price (\d+) and quantity (\d+)$`, tc.supplierUpsertsBaseOffer)
	ctx.Step(`^supplier "([^"]*)" upserts a variant offer on "([^"]*)" of "([^"]*)" with price (\d+) and quantity (\d+)$`, tc.supplierUpsertsVariantOffer)
	ctx.Step(`^supplier "([^"]*)" deletes their base offer on "([^"]*)"$`, tc.supplierDeletesBaseOffer)
	ctx.Step(`^product "([^"]*)" stock is recomputed$`, tc.productStockIsRecomputed)

	// Then steps
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the error mentions "([^"]*)"$`, tc.theErrorMentions)
	ctx.Step(`^product "([^"]*)" has (\d+) base offers$`, tc.productHasBaseOffers)
	ctx.Step(`^product "([^"]*)" has (\d+) units available$`, tc.productHasUnitsAvailable)
	ctx.Step(`^every variant offer on "([^"]*)" has no base offer$`, tc.everyVariantOfferHasNoBaseOffer)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
