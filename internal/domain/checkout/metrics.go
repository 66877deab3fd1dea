package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

// Metrics holds the checkout counters.
type Metrics struct {
	created   metric.Int64Counter
	paid      metric.Int64Counter
	cancelled metric.Int64Counter
	revenue   metric.Float64Counter
}

// NewMetrics registers the checkout instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}

	var (
		m   Metrics
		err error
	)
	if m.created, err = meter.Int64Counter("pos.tickets.created",
		metric.WithDescription("Tickets generated from carts"),
	); err != nil {
		return nil, errors.Wrap(err, "tickets created counter")
	}
	if m.paid, err = meter.Int64Counter("pos.tickets.paid",
		metric.WithDescription("Tickets paid"),
	); err != nil {
		return nil, errors.Wrap(err, "tickets paid counter")
	}
	if m.cancelled, err = meter.Int64Counter("pos.tickets.cancelled",
		metric.WithDescription("Tickets cancelled"),
	); err != nil {
		return nil, errors.Wrap(err, "tickets cancelled counter")
	}
	if m.revenue, err = meter.Float64Counter("pos.revenue",
		metric.WithDescription("Revenue from paid tickets"),
	); err != nil {
		return nil, errors.Wrap(err, "revenue counter")
	}
	return &m, nil
}

func (m *Metrics) ticketCreated(ctx context.Context) {
	m.created.Add(ctx, 1)
}

func (m *Metrics) ticketPaid(ctx context.Context, method ticket.PaymentMethod, total decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("payment.method", string(method)))
	m.paid.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, total.InexactFloat64(), attrs)
}

func (m *Metrics) ticketCancelled(ctx context.Context) {
	m.cancelled.Add(ctx, 1)
}
