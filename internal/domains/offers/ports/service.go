package ports

import (
	"context"

	"github.com/google/uuid"

	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
)

// Service exposes the offer use cases to transports, workflows and decorators.
type Service interface {
	UpsertBaseOffer(ctx context.Context, input types.UpsertBaseOfferInput) (*types.OfferMutationResult, error)
	UpsertVariantOffer(ctx context.Context, input types.UpsertVariantOfferInput) (*types.OfferMutationResult, error)
	PatchOffer(ctx context.Context, input types.PatchOfferInput) (*types.OfferMutationResult, error)
	ConvertOffer(ctx context.Context, input types.ConvertOfferInput) (*types.OfferMutationResult, error)
	DeleteOffer(ctx context.Context, input types.DeleteOfferInput) (*types.DeleteOfferResult, error)
	DeleteProductOffers(ctx context.Context, input types.DeleteProductOffersInput) (*types.DeleteProductOffersResult, error)
	RepairProductOffers(ctx context.Context, input types.RepairProductInput) (*types.RepairReport, error)
	RecomputeProductStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error)

	GetOffer(ctx context.Context, ref domain.OfferRef) (*types.OfferView, error)
	ListProductOffers(ctx context.Context, productID uuid.UUID) (*types.ProductOffers, error)
	PayoutStatus(ctx context.Context, supplierID uuid.UUID) (*types.PayoutStatus, error)
	ListProductIDs(ctx context.Context, input types.ProductPageInput) (*types.ProductPage, error)
}

// RepairOrchestrator runs a catalog-wide repair sweep, durably or inline.
type RepairOrchestrator interface {
	RepairCatalog(ctx context.Context, input types.RepairCatalogInput) (*types.CatalogRepairSummary, error)
}
