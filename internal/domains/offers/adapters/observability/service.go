package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/supplier-offers/internal/domains/offers/application"
	types "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	"github.com/Apurer/supplier-offers/internal/domains/offers/ports"
)

const tracerName = "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/observability/service"

// Service decorates the offers application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// UpsertBaseOffer creates or updates the caller's product-level offer.
func (s *Service) UpsertBaseOffer(ctx context.Context, input types.UpsertBaseOfferInput) (*types.OfferMutationResult, error) {
	const op = "UpsertBaseOffer"
	attrs := append(actorAttrs(input.Actor), slog.String("product.id", input.ProductID.String()))
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "upserting base offer", attrs...)
	result, err := s.inner.UpsertBaseOffer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to upsert base offer", attrs...)
	}
	s.recordMutation(ctx, span, op, result)
	return result, nil
}

// UpsertVariantOffer creates or updates the caller's offer for one variant.
func (s *Service) UpsertVariantOffer(ctx context.Context, input types.UpsertVariantOfferInput) (*types.OfferMutationResult, error) {
	const op = "UpsertVariantOffer"
	attrs := append(actorAttrs(input.Actor), slog.String("variant.id", input.VariantID.String()))
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "upserting variant offer", attrs...)
	result, err := s.inner.UpsertVariantOffer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to upsert variant offer", attrs...)
	}
	s.recordMutation(ctx, span, op, result)
	return result, nil
}

func (s *Service) PatchOffer(ctx context.Context, input types.PatchOfferInput) (*types.OfferMutationResult, error) {
	const op = "PatchOffer"
	attrs := append(actorAttrs(input.Actor), slog.String("offer.ref", input.Ref.String()))
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "patching offer", attrs...)
	result, err := s.inner.PatchOffer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to patch offer", attrs...)
	}
	s.recordMutation(ctx, span, op, result)
	return result, nil
}

// ConvertOffer flips an offer between base and variant kind.
func (s *Service) ConvertOffer(ctx context.Context, input types.ConvertOfferInput) (*types.OfferMutationResult, error) {
	const op = "ConvertOffer"
	attrs := append(actorAttrs(input.Actor), slog.String("offer.ref", input.Ref.String()))
	if input.TargetVariantID != nil {
		attrs = append(attrs, slog.String("variant.id", input.TargetVariantID.String()))
	}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "converting offer", attrs...)
	result, err := s.inner.ConvertOffer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to convert offer", attrs...)
	}
	s.recordMutation(ctx, span, op, result)
	return result, nil
}

func (s *Service) DeleteOffer(ctx context.Context, input types.DeleteOfferInput) (*types.DeleteOfferResult, error) {
	const op = "DeleteOffer"
	attrs := append(actorAttrs(input.Actor), slog.String("offer.ref", input.Ref.String()))
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "deleting offer", attrs...)
	result, err := s.inner.DeleteOffer(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to delete offer", attrs...)
	}
	s.metrics.recordMutation(ctx, op, input.Ref.Kind)
	s.logInfo(ctx, "offer deleted", append(attrs, stockAttrs(result.Stock)...)...)
	return result, nil
}

// DeleteProductOffers removes every offer of a product in one transaction.
func (s *Service) DeleteProductOffers(ctx context.Context, input types.DeleteProductOffersInput) (*types.DeleteProductOffersResult, error) {
	const op = "DeleteProductOffers"
	attrs := append(actorAttrs(input.Actor), slog.String("product.id", input.ProductID.String()))
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	s.logInfo(ctx, "deleting product offers", attrs...)
	result, err := s.inner.DeleteProductOffers(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to delete product offers", attrs...)
	}
	span.SetAttributes(
		attribute.Int("offers.base.deleted", result.BaseOffersDeleted),
		attribute.Int("offers.variant.deleted", result.VariantOffersDeleted),
	)
	s.metrics.recordMutation(ctx, op, "")
	s.logInfo(ctx, "product offers deleted", append(attrs,
		slog.Int("base_deleted", result.BaseOffersDeleted),
		slog.Int("variant_deleted", result.VariantOffersDeleted),
	)...)
	return result, nil
}

func (s *Service) RepairProductOffers(ctx context.Context, input types.RepairProductInput) (*types.RepairReport, error) {
	const op = "RepairProductOffers"
	attrs := []slog.Attr{slog.String("product.id", input.ProductID.String())}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.RepairProductOffers(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to repair product offers", attrs...)
	}
	span.SetAttributes(
		attribute.Int("offers.examined", result.Examined),
		attribute.Int("offers.product_ids_fixed", result.ProductIDsFixed),
		attribute.Int("offers.base_links_fixed", result.BaseLinksFixed),
	)
	if result.Changed() {
		s.metrics.recordRepaired(ctx, int64(result.ProductIDsFixed+result.BaseLinksFixed))
		s.logInfo(ctx, "product offers repaired", append(attrs,
			slog.Int("product_ids_fixed", result.ProductIDsFixed),
			slog.Int("base_links_fixed", result.BaseLinksFixed),
		)...)
	}
	return result, nil
}

func (s *Service) RecomputeProductStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error) {
	const op = "RecomputeProductStock"
	attrs := []slog.Attr{slog.String("product.id", productID.String())}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.RecomputeProductStock(ctx, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to recompute product stock", attrs...)
	}
	span.SetAttributes(attribute.Int("product.available_qty", result.AvailableQty))
	s.logInfo(ctx, "product stock recomputed", append(attrs, stockAttrs(*result)...)...)
	return result, nil
}

func (s *Service) GetOffer(ctx context.Context, ref domain.OfferRef) (*types.OfferView, error) {
	const op = "GetOffer"
	attrs := []slog.Attr{slog.String("offer.ref", ref.String())}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.GetOffer(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to load offer", attrs...)
	}
	return result, nil
}

// ListProductOffers loads the product cache together with all of its offers.
func (s *Service) ListProductOffers(ctx context.Context, productID uuid.UUID) (*types.ProductOffers, error) {
	const op = "ListProductOffers"
	attrs := []slog.Attr{slog.String("product.id", productID.String())}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.ListProductOffers(ctx, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to list product offers", attrs...)
	}
	span.SetAttributes(
		attribute.Int("offers.base.count", len(result.BaseOffers)),
		attribute.Int("offers.variant.count", len(result.VariantOffers)),
	)
	return result, nil
}

func (s *Service) PayoutStatus(ctx context.Context, supplierID uuid.UUID) (*types.PayoutStatus, error) {
	const op = "PayoutStatus"
	attrs := []slog.Attr{slog.String("supplier.id", supplierID.String())}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.PayoutStatus(ctx, supplierID)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to load payout status", attrs...)
	}
	span.SetAttributes(attribute.Bool("supplier.payout_ready", result.Ready))
	return result, nil
}

func (s *Service) ListProductIDs(ctx context.Context, input types.ProductPageInput) (*types.ProductPage, error) {
	const op = "ListProductIDs"
	attrs := []slog.Attr{slog.String("page.after", input.After.String()), slog.Int("page.limit", input.Limit)}
	ctx, span := s.startSpan(ctx, op, attrs...)
	defer span.End()

	result, err := s.inner.ListProductIDs(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, op, err, "failed to list product ids", attrs...)
	}
	span.SetAttributes(attribute.Int("page.count", len(result.ProductIDs)), attribute.Bool("page.done", result.Done))
	return result, nil
}

func (s *Service) recordMutation(ctx context.Context, span trace.Span, op string, result *types.OfferMutationResult) {
	if result == nil {
		return
	}
	ref := result.Offer.Ref()
	span.SetAttributes(
		attribute.String("offer.ref", ref.String()),
		attribute.Bool("offer.in_stock", result.Offer.Terms().InStock),
		attribute.Int("product.available_qty", result.Stock.AvailableQty),
	)
	s.metrics.recordMutation(ctx, op, ref.Kind)
	s.logInfo(ctx, "offer written", append([]slog.Attr{
		slog.String("operation", op),
		slog.String("offer.ref", ref.String()),
		slog.Bool("offer.in_stock", result.Offer.Terms().InStock),
	}, stockAttrs(result.Stock)...)...)
}

func actorAttrs(actor types.SupplierContext) []slog.Attr {
	return []slog.Attr{
		slog.String("supplier.id", actor.SupplierID.String()),
		slog.Bool("admin.impersonating", actor.IsAdminImpersonating),
	}
}

func stockAttrs(stock domain.ProductStock) []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("product.available_qty", stock.AvailableQty),
		slog.Bool("product.in_stock", stock.InStock),
	}
	if stock.AutoPrice != nil {
		attrs = append(attrs, slog.String("product.auto_price", stock.AutoPrice.String()))
	}
	return attrs
}

func (s *Service) startSpan(ctx context.Context, op string, attrs ...slog.Attr) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, "OfferService."+op, trace.WithAttributes(spanAttrs(attrs)...))
}

func spanAttrs(attrs []slog.Attr) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch a.Value.Kind() {
		case slog.KindBool:
			out = append(out, attribute.Bool(a.Key, a.Value.Bool()))
		case slog.KindInt64:
			out = append(out, attribute.Int64(a.Key, a.Value.Int64()))
		default:
			out = append(out, attribute.String(a.Key, a.Value.String()))
		}
	}
	return out
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError records err on the span and logs it. Internal failures log at
// ERROR; caller mistakes and business rejections log at WARN.
func (s *Service) handleError(ctx context.Context, span trace.Span, op string, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	kind := application.KindOf(err)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(kind)))
	}
	s.metrics.recordFailure(ctx, op, kind)
	var notReady *domain.PayoutNotReadyError
	if errors.As(err, &notReady) {
		s.metrics.recordPayoutRejection(ctx)
		attrs = append(attrs, slog.Any("payout.missing", notReady.Missing))
	}
	if s.logger == nil {
		return err
	}
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("error.kind", string(kind)))
	level := slog.LevelWarn
	if kind == application.KindInternal {
		level = slog.LevelError
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	mutations        metric.Int64Counter
	failures         metric.Int64Counter
	payoutRejections metric.Int64Counter
	offersRepaired   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("offers.service.mutations", metric.WithDescription("Number of committed offer mutations"))
	failures, _ := m.Int64Counter("offers.service.failures", metric.WithDescription("Number of failed offer operations"))
	payoutRejections, _ := m.Int64Counter("offers.service.payout_rejections", metric.WithDescription("Number of writes rejected by the payout gate"))
	offersRepaired, _ := m.Int64Counter("offers.service.repaired", metric.WithDescription("Number of offer rows rewritten by repair"))
	return serviceMetrics{
		mutations:        mutations,
		failures:         failures,
		payoutRejections: payoutRejections,
		offersRepaired:   offersRepaired,
	}
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string, kind domain.OfferKind) {
	addCounter(ctx, m.mutations, 1, attribute.String("operation", op), attribute.String("kind", string(kind)))
}

func (m serviceMetrics) recordFailure(ctx context.Context, op string, kind application.Kind) {
	addCounter(ctx, m.failures, 1, attribute.String("operation", op), attribute.String("error.kind", string(kind)))
}

func (m serviceMetrics) recordPayoutRejection(ctx context.Context) {
	addCounter(ctx, m.payoutRejections, 1)
}

func (m serviceMetrics) recordRepaired(ctx context.Context, n int64) {
	addCounter(ctx, m.offersRepaired, n)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
