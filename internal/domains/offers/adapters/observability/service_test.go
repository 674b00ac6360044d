package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/supplier-offers/internal/domains/offers/application"
	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

// stubService answers every call with the configured error, or an empty result.
type stubService struct {
	ports.Service
	err error
}

func (s stubService) UpsertBaseOffer(_ context.Context, input types.UpsertBaseOfferInput) (*types.OfferMutationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	offer := &domain.BaseOffer{ID: uuid.New(), SupplierID: input.Actor.SupplierID, ProductID: input.ProductID}
	return &types.OfferMutationResult{Offer: types.BaseView(offer), Stock: domain.ProductStock{ProductID: input.ProductID}}, nil
}

func (s stubService) RecomputeProductStock(_ context.Context, productID uuid.UUID) (*domain.ProductStock, error) {
	return nil, s.err
}

func newTestService(inner ports.Service) (ports.Service, *tracetest.SpanRecorder, *bytes.Buffer) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(inner, WithLogger(logger), WithTracer(provider.Tracer("test"))), recorder, buf
}

func logLevels(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	levels := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		levels[entry["msg"].(string)] = entry["level"].(string)
	}
	return levels
}

func TestService_PayoutRejectionLogsWarn(t *testing.T) {
	supplier := uuid.New()
	cause := fmt.Errorf("%w: %w", application.ErrPayoutNotReady, &domain.PayoutNotReadyError{SupplierID: supplier, Missing: []string{"bankCode"}})
	svc, recorder, buf := newTestService(stubService{err: cause})

	_, err := svc.UpsertBaseOffer(context.Background(), types.UpsertBaseOfferInput{
		Actor:     types.SupplierContext{SupplierID: supplier, IsAdminImpersonating: true},
		ProductID: uuid.New(),
	})
	require.ErrorIs(t, err, application.ErrPayoutNotReady)

	require.Equal(t, "WARN", logLevels(t, buf)["failed to upsert base offer"])
	require.Contains(t, buf.String(), `"admin.impersonating":true`)
	require.Contains(t, buf.String(), `"error.kind":"payout_not_ready"`)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "OfferService.UpsertBaseOffer", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestService_InternalFailureLogsError(t *testing.T) {
	svc, _, buf := newTestService(stubService{err: errors.New("connection reset")})

	_, err := svc.RecomputeProductStock(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, application.KindInternal, application.KindOf(err))
	require.Equal(t, "ERROR", logLevels(t, buf)["failed to recompute product stock"])
}

func TestService_SuccessPassesThrough(t *testing.T) {
	svc, recorder, buf := newTestService(stubService{})
	productID := uuid.New()

	result, err := svc.UpsertBaseOffer(context.Background(), types.UpsertBaseOfferInput{
		Actor:     types.SupplierContext{SupplierID: uuid.New()},
		ProductID: productID,
	})
	require.NoError(t, err)
	require.Equal(t, productID, result.Offer.ProductID())
	require.Equal(t, "INFO", logLevels(t, buf)["offer written"])
	require.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}
