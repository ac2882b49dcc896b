package service

import (
	"context"
	"fmt"

	"github.com/grlib/chan-mcp/internal/domain"
	"github.com/grlib/chan-mcp/internal/kline"
	"github.com/grlib/chan-mcp/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// BarFetcher is the provider adapter: one session-scoped fetch per call.
type BarFetcher interface {
	FetchKData(ctx context.Context, req domain.BarRequest) (*provider.KDataResult, error)
}

// SignalExtractor evaluates curated signals over a bar sequence.
type SignalExtractor interface {
	Extract(bars []domain.Bar, names []string) (domain.SignalSet, error)
}

// MarketService validates requests, fetches raw rows, normalizes them, and
// optionally runs signal extraction. Stateless: every call computes fresh.
type MarketService struct {
	tracer      trace.Tracer
	fetcher     BarFetcher
	extractor   SignalExtractor
	signalNames []string
}

func NewMarketService(tracer trace.Tracer, fetcher BarFetcher, extractor SignalExtractor, signalNames []string) *MarketService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &MarketService{
		tracer:      tracer,
		fetcher:     fetcher,
		extractor:   extractor,
		signalNames: append([]string(nil), signalNames...),
	}
}

// SignalNames returns the configured curated signal list.
func (s *MarketService) SignalNames() []string {
	return append([]string(nil), s.signalNames...)
}

// GetBars returns the canonical bar sequence for one request. Validation
// failures short-circuit before any network cost.
func (s *MarketService) GetBars(ctx context.Context, req domain.BarRequest) ([]domain.Bar, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-bars")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("symbol", req.Symbol),
		attribute.String("freq", string(req.Freq)),
	)

	if s.fetcher == nil {
		return nil, fmt.Errorf("bar provider unavailable")
	}
	raw, err := s.fetcher.FetchKData(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	bars, err := kline.Normalize(raw, req.Freq, req.Symbol)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bars", len(bars)))
	return bars, nil
}

// ChanSignals fetches bars for the request and evaluates the curated signal
// subset over them.
func (s *MarketService) ChanSignals(ctx context.Context, req domain.BarRequest) (domain.SignalSet, int, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.chan-signals")
	defer span.End()

	bars, err := s.GetBars(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	if s.extractor == nil {
		return nil, 0, fmt.Errorf("signal extractor unavailable")
	}

	set, err := s.extractor.Extract(bars, s.signalNames)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return set, len(bars), nil
}
