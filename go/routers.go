package offerserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the offer routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Routes for the OfferAPI part of the API
	OfferAPI OfferAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"UpsertBaseOffer",
			http.MethodPut,
			"/v1/supplier/products/:productId/offer",
			handleFunctions.OfferAPI.UpsertBaseOffer,
		},
		{
			"UpsertVariantOffer",
			http.MethodPut,
			"/v1/supplier/variants/:variantId/offer",
			handleFunctions.OfferAPI.UpsertVariantOffer,
		},
		{
			"GetOffer",
			http.MethodGet,
			"/v1/offers/:offerRef",
			handleFunctions.OfferAPI.GetOffer,
		},
		{
			"PatchOffer",
			http.MethodPatch,
			"/v1/offers/:offerRef",
			handleFunctions.OfferAPI.PatchOffer,
		},
		{
			"DeleteOffer",
			http.MethodDelete,
			"/v1/offers/:offerRef",
			handleFunctions.OfferAPI.DeleteOffer,
		},
		{
			"ConvertOffer",
			http.MethodPost,
			"/v1/offers/:offerRef/convert",
			handleFunctions.OfferAPI.ConvertOffer,
		},
		{
			"ListProductOffers",
			http.MethodGet,
			"/v1/products/:productId/offers",
			handleFunctions.OfferAPI.ListProductOffers,
		},
		{
			"DeleteProductOffers",
			http.MethodDelete,
			"/v1/products/:productId/offers",
			handleFunctions.OfferAPI.DeleteProductOffers,
		},
		{
			"RepairProductOffers",
			http.MethodPost,
			"/v1/products/:productId/offers/repair",
			handleFunctions.OfferAPI.RepairProductOffers,
		},
		{
			"RecomputeProductStock",
			http.MethodPost,
			"/v1/products/:productId/stock/recompute",
			handleFunctions.OfferAPI.RecomputeProductStock,
		},
		{
			"GetPayoutReadiness",
			http.MethodGet,
			"/v1/suppliers/:supplierId/payout-readiness",
			handleFunctions.OfferAPI.GetPayoutReadiness,
		},
		{
			"RepairCatalog",
			http.MethodPost,
			"/v1/catalog/repair",
			handleFunctions.OfferAPI.RepairCatalog,
		},
	}
}
