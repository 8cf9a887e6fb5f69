package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
	return s
}

func (s *Service) ListOrders(ctx context.Context, filter types.ListFilter) ([]*domain.Order, error) {
	attrs := filterAttrs(filter)
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(attrs...))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	s.logInfo(ctx, "orders listed", slog.Int("orders.count", len(result)), slog.Bool("filter.set", !filter.IsZero()))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) CreateOrder(ctx context.Context, input types.NewOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.Int64("order.product_id", input.ProductID), attribute.Int64("order.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int64("order.product_id", input.ProductID), slog.Int64("order.quantity", input.Quantity))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("order.product_id", input.ProductID))
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *Service) PatchOrder(ctx context.Context, id int64, input types.EditOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PatchOrder",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.String("order.status", input.Status)))
	defer span.End()

	s.logInfo(ctx, "patching order", slog.Int64("order.id", id), slog.String("status", input.Status))
	result, err := s.inner.PatchOrder(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to patch order", slog.Int64("order.id", id))
	}
	s.metrics.recordStatusChanged(ctx, result.Status)
	s.logInfo(ctx, "order patched", slog.Int64("order.id", id), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) ApproveOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, "OrderService.ApproveOrder", id, s.inner.ApproveOrder)
}

func (s *Service) DeliverOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, "OrderService.DeliverOrder", id, s.inner.DeliverOrder)
}

func (s *Service) transition(ctx context.Context, name string, id int64, next func(context.Context, int64) (*domain.Order, error)) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := next(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change order status", slog.Int64("order.id", id))
	}
	s.metrics.recordStatusChanged(ctx, result.Status)
	s.logInfo(ctx, "order status changed", slog.Int64("order.id", id), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id))
	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	return nil
}

func (s *Service) ExportOrders(ctx context.Context, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.ExportOrders")
	defer span.End()

	if err := s.inner.ExportOrders(ctx, w); err != nil {
		return s.handleError(ctx, span, err, "failed to export orders")
	}
	s.metrics.recordExported(ctx)
	s.logInfo(ctx, "orders exported")
	return nil
}

func (s *Service) ParseImport(ctx context.Context, r io.Reader) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ParseImport")
	defer span.End()

	orders, err := s.inner.ParseImport(ctx, r)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to parse order import")
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CommitImport", trace.WithAttributes(attribute.Int("orders.count", len(orders))))
	defer span.End()

	result, err := s.inner.CommitImport(ctx, orders)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to commit order import", slog.Int("orders.count", len(orders)))
	}
	s.metrics.recordImported(ctx, result.Imported)
	s.logInfo(ctx, "order import committed", slog.String("import.batch_id", result.BatchID), slog.Int("orders.count", result.Imported))
	return result, nil
}

func (s *Service) ImportOrders(ctx context.Context, r io.Reader) (*types.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ImportOrders")
	defer span.End()

	s.logInfo(ctx, "importing orders")
	result, err := s.inner.ImportOrders(ctx, r)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to import orders")
	}
	span.SetAttributes(attribute.String("import.batch_id", result.BatchID), attribute.Int("orders.count", result.Imported))
	s.metrics.recordImported(ctx, result.Imported)
	s.logInfo(ctx, "orders imported", slog.String("import.batch_id", result.BatchID), slog.Int("orders.count", result.Imported))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func filterAttrs(filter types.ListFilter) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.From != nil {
		attrs = append(attrs, attribute.String("filter.from", filter.From.Format(time.RFC3339)))
	}
	if filter.To != nil {
		attrs = append(attrs, attribute.String("filter.to", filter.To.Format(time.RFC3339)))
	}
	return attrs
}

type serviceMetrics struct {
	created       metric.Int64Counter
	statusChanged metric.Int64Counter
	deleted       metric.Int64Counter
	imported      metric.Int64Counter
	exported      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	statusChanged, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of order status changes"))
	deleted, _ := m.Int64Counter("orders.service.deleted", metric.WithDescription("Number of order deletions"))
	imported, _ := m.Int64Counter("orders.service.imported", metric.WithDescription("Number of orders committed from CSV imports"))
	exported, _ := m.Int64Counter("orders.service.exported", metric.WithDescription("Number of CSV exports"))
	return serviceMetrics{created: created, statusChanged: statusChanged, deleted: deleted, imported: imported, exported: exported}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	if m.statusChanged != nil {
		m.statusChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.deleted != nil {
		m.deleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordImported(ctx context.Context, n int) {
	if m.imported != nil {
		m.imported.Add(ctx, int64(n))
	}
}

func (m serviceMetrics) recordExported(ctx context.Context) {
	if m.exported != nil {
		m.exported.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
