package offerserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	offerhttpmapper "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/http/mapper"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	offersports "github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// Headers set by the upstream auth layer.
const (
	HeaderSupplierID         = "X-Supplier-ID"
	HeaderAdminImpersonating = "X-Admin-Impersonating"
)

// OfferAPI wires HTTP transport with the offers bounded context service and repair workflows.
type OfferAPI struct {
	service offersports.Service
	repairs offersports.RepairOrchestrator
}

// NewOfferAPI creates an OfferAPI backed by the provided service.
func NewOfferAPI(service offersports.Service, repairs offersports.RepairOrchestrator) OfferAPI {
	return OfferAPI{service: service, repairs: repairs}
}

// Put /v1/supplier/products/:productId/offer
// Create or update the caller's offer for a whole product
func (api *OfferAPI) UpsertBaseOffer(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	productID, ok := bindUUIDParam(c, "productId")
	if !ok {
		return
	}
	var payload offerhttpmapper.OfferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	input, err := offerhttpmapper.ToUpsertBaseInput(actor, productID, payload)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	result, err := api.service.UpsertBaseOffer(c.Request.Context(), input)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromMutation(result))
}

// Put /v1/supplier/variants/:variantId/offer
// Create or update the caller's offer for one variant
func (api *OfferAPI) UpsertVariantOffer(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	variantID, ok := bindUUIDParam(c, "variantId")
	if !ok {
		return
	}
	var payload offerhttpmapper.OfferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	input, err := offerhttpmapper.ToUpsertVariantInput(actor, variantID, payload)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	result, err := api.service.UpsertVariantOffer(c.Request.Context(), input)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromMutation(result))
}

// Get /v1/offers/:offerRef
// Find an offer by its tagged reference
func (api *OfferAPI) GetOffer(c *gin.Context) {
	ref, ok := parseOfferRef(c)
	if !ok {
		return
	}
	view, err := api.service.GetOffer(c.Request.Context(), ref)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromOfferView(*view))
}

// Patch /v1/offers/:offerRef
// Update selected terms of an existing offer
func (api *OfferAPI) PatchOffer(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	ref, ok := parseOfferRef(c)
	if !ok {
		return
	}
	var payload offerhttpmapper.OfferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	input, err := offerhttpmapper.ToPatchInput(actor, ref, payload)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	result, err := api.service.PatchOffer(c.Request.Context(), input)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromMutation(result))
}

// Delete /v1/offers/:offerRef
// Deletes an offer and detaches variant offers linked to it
func (api *OfferAPI) DeleteOffer(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	ref, ok := parseOfferRef(c)
	if !ok {
		return
	}
	result, err := api.service.DeleteOffer(c.Request.Context(), offerstypes.DeleteOfferInput{Actor: actor, Ref: ref})
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromDeletion(result))
}

// Post /v1/offers/:offerRef/convert
// Converts a base offer into a variant offer or back
func (api *OfferAPI) ConvertOffer(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	ref, ok := parseOfferRef(c)
	if !ok {
		return
	}
	var payload offerhttpmapper.ConvertPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			responder.BadRequest(c, err.Error())
			return
		}
	}
	input, err := offerhttpmapper.ToConvertInput(actor, ref, payload)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	result, err := api.service.ConvertOffer(c.Request.Context(), input)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromMutation(result))
}

// Get /v1/products/:productId/offers
// Returns the product caches with every base and variant offer
func (api *OfferAPI) ListProductOffers(c *gin.Context) {
	productID, ok := bindUUIDParam(c, "productId")
	if !ok {
		return
	}
	result, err := api.service.ListProductOffers(c.Request.Context(), productID)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromProductOffers(result))
}

// Delete /v1/products/:productId/offers
// Deletes every offer of a product
func (api *OfferAPI) DeleteProductOffers(c *gin.Context) {
	actor, ok := supplierContext(c)
	if !ok {
		return
	}
	productID, ok := bindUUIDParam(c, "productId")
	if !ok {
		return
	}
	result, err := api.service.DeleteProductOffers(c.Request.Context(), offerstypes.DeleteProductOffersInput{Actor: actor, ProductID: productID})
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromProductDeletion(result))
}

// Post /v1/products/:productId/offers/repair
// Fixes denormalized product ids and base links for a product
func (api *OfferAPI) RepairProductOffers(c *gin.Context) {
	productID, ok := bindUUIDParam(c, "productId")
	if !ok {
		return
	}
	result, err := api.service.RepairProductOffers(c.Request.Context(), offerstypes.RepairProductInput{ProductID: productID})
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromRepairReport(result))
}

// Post /v1/products/:productId/stock/recompute
// Recomputes the product availability and auto price caches
func (api *OfferAPI) RecomputeProductStock(c *gin.Context) {
	productID, ok := bindUUIDParam(c, "productId")
	if !ok {
		return
	}
	result, err := api.service.RecomputeProductStock(c.Request.Context(), productID)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromProductStock(*result))
}

// Get /v1/suppliers/:supplierId/payout-readiness
// Reports whether a supplier may publish purchasable offers
func (api *OfferAPI) GetPayoutReadiness(c *gin.Context) {
	supplierID, ok := bindUUIDParam(c, "supplierId")
	if !ok {
		return
	}
	result, err := api.service.PayoutStatus(c.Request.Context(), supplierID)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromPayoutStatus(result))
}

// Post /v1/catalog/repair
// Runs the repair over every product, durably when workflows are enabled
func (api *OfferAPI) RepairCatalog(c *gin.Context) {
	var payload offerhttpmapper.RepairCatalogPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			responder.BadRequest(c, err.Error())
			return
		}
	}
	input, err := offerhttpmapper.ToRepairCatalogInput(payload)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	if api.repairs == nil {
		c.String(http.StatusNotImplemented, "501 not implemented")
		return
	}
	result, err := api.repairs.RepairCatalog(c.Request.Context(), input)
	if err != nil {
		respondOfferServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerhttpmapper.FromCatalogRepairSummary(result))
}

// supplierContext reads the caller identity forwarded by the auth layer.
func supplierContext(c *gin.Context) (offerstypes.SupplierContext, bool) {
	raw := strings.TrimSpace(c.GetHeader(HeaderSupplierID))
	if raw == "" {
		responder.BadRequest(c, HeaderSupplierID+" header is required")
		return offerstypes.SupplierContext{}, false
	}
	supplierID, err := uuid.Parse(raw)
	if err != nil || supplierID == uuid.Nil {
		responder.BadRequest(c, HeaderSupplierID+" header must be a UUID")
		return offerstypes.SupplierContext{}, false
	}
	impersonating, _ := strconv.ParseBool(strings.TrimSpace(c.GetHeader(HeaderAdminImpersonating)))
	return offerstypes.SupplierContext{SupplierID: supplierID, IsAdminImpersonating: impersonating}, true
}

func bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		responder.ValidationFailed(c, map[string]string{name: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseOfferRef(c *gin.Context) (domain.OfferRef, bool) {
	ref, err := domain.ParseOfferRef(c.Param("offerRef"))
	if err != nil {
		responder.ValidationFailed(c, map[string]string{"offerRef": err.Error()})
		return domain.OfferRef{}, false
	}
	return ref, true
}
