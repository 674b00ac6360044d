package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
	catalogactivities "github.com/Apurer/supplier-offers/internal/platform/temporal/activities/catalog"
)

type drifted struct {
	service ports.Service
}

// newDriftedCatalog seeds two products, one of which has a variant offer
// that lost its link to the supplier's base offer.
func newDriftedCatalog(t *testing.T) drifted {
	t.Helper()
	store := offermemory.NewStore()
	supplierID := uuid.New()
	p1, p2, v1 := uuid.New(), uuid.New(), uuid.New()
	store.PutProduct(domain.Product{ID: p1, PricingMode: domain.PricingModeManual})
	store.PutProduct(domain.Product{ID: p2, PricingMode: domain.PricingModeManual})
	store.PutVariant(domain.Variant{ID: v1, ProductID: p1, Options: map[string]string{"size": "S"}})
	store.PutSupplier(domain.PayoutProfile{
		SupplierID:             supplierID,
		IsPayoutEnabled:        true,
		BankCode:               "044",
		AccountNumber:          "0123456789",
		AccountName:            "Acme Supplies",
		BankCountry:            "NG",
		BankVerificationStatus: domain.BankVerificationVerified,
	})
	svc := offersapp.NewService(store)
	ctx := context.Background()
	actor := offerstypes.SupplierContext{SupplierID: supplierID}
	price := decimal.RequireFromString("10")
	qty := 3

	_, err := svc.UpsertBaseOffer(ctx, offerstypes.UpsertBaseOfferInput{
		Actor:     actor,
		ProductID: p1,
		Fields:    domain.OfferFields{Price: &price, AvailableQty: &qty},
	})
	require.NoError(t, err)
	_, err = svc.UpsertVariantOffer(ctx, offerstypes.UpsertVariantOfferInput{
		Actor:     actor,
		VariantID: v1,
		Fields:    domain.OfferFields{Price: &price, AvailableQty: &qty},
	})
	require.NoError(t, err)
	require.NoError(t, store.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		offer, err := tx.Offers().FindVariant(ctx, supplierID, v1)
		if err != nil {
			return err
		}
		offer.BaseOfferID = nil
		_, err = tx.Offers().UpdateVariant(ctx, offer)
		return err
	}))
	return drifted{service: svc}
}

func newTestEnv(t *testing.T, service ports.Service) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := catalogactivities.NewActivities(service)
	env.RegisterWorkflowWithOptions(CatalogRepairWorkflow, workflow.RegisterOptions{Name: CatalogRepairWorkflowName})
	env.RegisterActivityWithOptions(acts.ListProductPage, activity.RegisterOptions{Name: catalogactivities.ListProductPageActivityName})
	env.RegisterActivityWithOptions(acts.RepairProductPage, activity.RegisterOptions{Name: catalogactivities.RepairProductPageActivityName})
	return env
}

func TestCatalogRepairWorkflow_RepairsEveryProduct(t *testing.T) {
	catalog := newDriftedCatalog(t)
	env := newTestEnv(t, catalog.service)

	env.ExecuteWorkflow(CatalogRepairWorkflowName, CatalogRepairWorkflowInput{
		Command: offerstypes.RepairCatalogInput{BatchSize: 10},
		TraceID: "trace-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var summary offerstypes.CatalogRepairSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Equal(t, 2, summary.ProductsExamined)
	assert.Equal(t, 1, summary.ProductsChanged)
	assert.Equal(t, 1, summary.OffersFixed)
	assert.Empty(t, summary.Failed)
}

func TestCatalogRepairWorkflow_ContinuesAsNewWithCursor(t *testing.T) {
	catalog := newDriftedCatalog(t)
	env := newTestEnv(t, catalog.service)

	env.ExecuteWorkflow(CatalogRepairWorkflowName, CatalogRepairWorkflowInput{
		Command:     offerstypes.RepairCatalogInput{BatchSize: 1},
		PagesPerRun: 1,
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var continued *workflow.ContinueAsNewError
	require.True(t, errors.As(err, &continued), "expected continue-as-new, got %v", err)
	assert.Equal(t, CatalogRepairWorkflowName, continued.WorkflowType.Name)
}

func TestCatalogRepairWorkflow_EmptyCatalogCompletes(t *testing.T) {
	env := newTestEnv(t, offersapp.NewService(offermemory.NewStore()))

	env.ExecuteWorkflow(CatalogRepairWorkflowName, CatalogRepairWorkflowInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var summary offerstypes.CatalogRepairSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Zero(t, summary.ProductsExamined)
}
