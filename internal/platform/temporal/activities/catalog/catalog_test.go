package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	offermemory "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/memory"
	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

func newActivityEnv(t *testing.T) (*testsuite.TestActivityEnvironment, *Activities, []uuid.UUID) {
	t.Helper()
	store := offermemory.NewStore()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		store.PutProduct(domain.Product{ID: id, PricingMode: domain.PricingModeManual})
	}
	acts := NewActivities(offersapp.NewService(store))

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivityWithOptions(acts.RepairProductPage, activity.RegisterOptions{Name: RepairProductPageActivityName})
	return env, acts, ids
}

func runRepairPage(t *testing.T, env *testsuite.TestActivityEnvironment, ids []uuid.UUID) offerstypes.CatalogRepairSummary {
	t.Helper()
	val, err := env.ExecuteActivity(RepairProductPageActivityName, RepairPageInput{ProductIDs: ids})
	require.NoError(t, err)
	var summary offerstypes.CatalogRepairSummary
	require.NoError(t, val.Get(&summary))
	return summary
}

func TestRepairProductPage_ResumesFromHeartbeat(t *testing.T) {
	env, _, ids := newActivityEnv(t)
	env.SetHeartbeatDetails(repairHeartbeat{Done: 2, Summary: offerstypes.CatalogRepairSummary{ProductsExamined: 10}})

	summary := runRepairPage(t, env, ids)
	assert.Equal(t, 11, summary.ProductsExamined)
}

func TestRepairProductPage_UnreadableHeartbeatRestartsPage(t *testing.T) {
	env, _, ids := newActivityEnv(t)
	env.SetHeartbeatDetails("not a heartbeat")

	summary := runRepairPage(t, env, ids)
	assert.Equal(t, len(ids), summary.ProductsExamined)
	assert.Empty(t, summary.Failed)
}

func TestRepairProductPage_OutOfRangeHeartbeatRestartsPage(t *testing.T) {
	env, _, ids := newActivityEnv(t)
	env.SetHeartbeatDetails(repairHeartbeat{Done: 7, Summary: offerstypes.CatalogRepairSummary{ProductsExamined: 7}})

	summary := runRepairPage(t, env, ids)
	assert.Equal(t, len(ids), summary.ProductsExamined)
}

func TestListProductPage_ReturnsKeysetPage(t *testing.T) {
	env, acts, _ := newActivityEnv(t)
	env.RegisterActivityWithOptions(acts.ListProductPage, activity.RegisterOptions{Name: ListProductPageActivityName})

	val, err := env.ExecuteActivity(ListProductPageActivityName, offerstypes.ProductPageInput{Limit: 2})
	require.NoError(t, err)
	var page offerstypes.ProductPage
	require.NoError(t, val.Get(&page))
	assert.Len(t, page.ProductIDs, 2)
	assert.False(t, page.Done)
}
