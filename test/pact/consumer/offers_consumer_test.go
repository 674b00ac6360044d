//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/supplier-offers/test/pact"
)

const uuidPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

type offerPayload struct {
	Ref          string `json:"ref"`
	Kind         string `json:"kind"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	AvailableQty int    `json:"availableQty"`
	InStock      bool   `json:"inStock"`
}

type stockPayload struct {
	ProductID    string `json:"productId"`
	AvailableQty int    `json:"availableQty"`
	InStock      bool   `json:"inStock"`
}

type mutationPayload struct {
	Offer offerPayload `json:"offer"`
	Stock stockPayload `json:"stock"`
}

type productOffersPayload struct {
	Product    stockPayload   `json:"product"`
	BaseOffers []offerPayload `json:"baseOffers"`
}

type problemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Code       string         `json:"code"`
	Extensions map[string]any `json:"extensions"`
}

type apiError struct {
	status int
	code   string
	detail string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.code, e.detail, e.status)
}

func TestSupplierPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	offerMatcher := matchers.Map{
		"ref":          matchers.Term("base:"+pacttest.MissingBaseOfferID.String(), "^base:"+uuidPattern+"$"),
		"kind":         matchers.S("base"),
		"supplierId":   matchers.S(pacttest.ReadySupplierID.String()),
		"productId":    matchers.S(pacttest.ProductID.String()),
		"price":        matchers.Like("19.99"),
		"currency":     matchers.S("USD"),
		"availableQty": matchers.Like(5),
		"isActive":     matchers.Like(true),
		"inStock":      matchers.Like(true),
	}
	stockMatcher := matchers.Map{
		"productId":    matchers.S(pacttest.ProductID.String()),
		"availableQty": matchers.Like(5),
		"inStock":      matchers.Like(true),
	}
	offerPath := fmt.Sprintf("/v1/supplier/products/%s/offer", pacttest.ProductID)

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a ready supplier upserting a base offer with form-encoded values").
		WithRequest("PUT", offerPath, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-Supplier-ID", matchers.S(pacttest.ReadySupplierID.String()))
			b.JSONBody(pacttest.ExampleOfferPayload())
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"offer": matchers.Like(offerMatcher), "stock": matchers.Like(stockMatcher)})
		})

	pact.AddInteraction().
		Given(pacttest.StatePayoutIncomplete).
		UponReceiving("a supplier without payout setup offering stock").
		WithRequest("PUT", offerPath, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-Supplier-ID", matchers.S(pacttest.UnreadySupplierID.String()))
			b.JSONBody(pacttest.ExampleOfferPayload())
		}).
		WillRespondWith(http.StatusUnprocessableEntity, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/payout-not-ready"),
				"status": matchers.Like(http.StatusUnprocessableEntity),
				"code":   matchers.S("payout_not_ready"),
				"extensions": matchers.Like(matchers.Map{
					"missing":     matchers.ArrayMinLike("bankVerificationStatus", 1),
					"remediation": matchers.Like("complete payout setup"),
				}),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateBaseOfferExists).
		UponReceiving("a request to list the offers of a product").
		WithRequest("GET", fmt.Sprintf("/v1/products/%s/offers", pacttest.ProductID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"product":    matchers.Like(stockMatcher),
				"baseOffers": matchers.ArrayMinLike(offerMatcher, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request for a missing offer").
		WithRequest("GET", "/v1/offers/base:"+pacttest.MissingBaseOfferID.String()).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
				"code":   matchers.S("not_found"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOfferClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.UpsertBaseOffer(ctx, pacttest.ReadySupplierID, pacttest.ProductID, pacttest.ExampleOfferPayload())
		if err != nil {
			return fmt.Errorf("upsert base offer: %w", err)
		}
		if created.Offer.Kind != "base" || created.Offer.Currency != "USD" {
			return fmt.Errorf("unexpected offer %+v", created.Offer)
		}

		_, err = client.UpsertBaseOffer(ctx, pacttest.UnreadySupplierID, pacttest.ProductID, pacttest.ExampleOfferPayload())
		if apiErr, ok := err.(apiError); !ok || apiErr.code != "payout_not_ready" {
			return fmt.Errorf("expected payout_not_ready, got %v", err)
		}

		listed, err := client.ListProductOffers(ctx, pacttest.ProductID)
		if err != nil {
			return fmt.Errorf("list product offers: %w", err)
		}
		if len(listed.BaseOffers) == 0 {
			return fmt.Errorf("expected at least one base offer")
		}

		if err := client.get(ctx, "/v1/offers/base:"+pacttest.MissingBaseOfferID.String(), nil); err == nil {
			return fmt.Errorf("expected 404 for missing offer")
		} else if apiErr, ok := err.(apiError); ok && apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.status)
		}
		return nil
	})
	require.NoError(t, err)
}

type offerClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOfferClient(config pactconsumer.MockServerConfig) *offerClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &offerClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *offerClient) UpsertBaseOffer(ctx context.Context, supplierID, productID uuid.UUID, body map[string]any) (*mutationPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/v1/supplier/products/%s/offer", c.baseURL, productID), bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Supplier-ID", supplierID.String())
	var payload mutationPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *offerClient) ListProductOffers(ctx context.Context, productID uuid.UUID) (*productOffersPayload, error) {
	var payload productOffersPayload
	if err := c.get(ctx, fmt.Sprintf("/v1/products/%s/offers", productID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *offerClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *offerClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, code: problem.Code, detail: problem.Detail}
}
