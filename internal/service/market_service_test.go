package service

import (
	"context"
	"errors"
	"testing"

	"github.com/grlib/chan-mcp/internal/domain"
	"github.com/grlib/chan-mcp/internal/provider"
)

type stubFetcher struct {
	calls  int
	result *provider.KDataResult
	err    error
}

func (s *stubFetcher) FetchKData(ctx context.Context, req domain.BarRequest) (*provider.KDataResult, error) {
	s.calls++
	return s.result, s.err
}

type stubExtractor struct {
	lastNames []string
	lastBars  []domain.Bar
	set       domain.SignalSet
	err       error
}

func (s *stubExtractor) Extract(bars []domain.Bar, names []string) (domain.SignalSet, error) {
	s.lastBars = bars
	s.lastNames = names
	return s.set, s.err
}

func dailyRows() *provider.KDataResult {
	return &provider.KDataResult{
		Fields: []string{"date", "code", "open", "high", "low", "close", "volume", "amount"},
		Rows: []provider.RawRow{
			{"2023-01-03", "sh.600000", "7.19", "7.34", "7.17", "7.32", "31549587", "229432638.54"},
			{"2023-01-04", "sh.600000", "7.32", "7.39", "7.27", "7.35", "26120757", "191448309.01"},
		},
	}
}

func TestGetBarsValidatesBeforeFetching(t *testing.T) {
	fetcher := &stubFetcher{result: dailyRows()}
	svc := NewMarketService(nil, fetcher, &stubExtractor{}, nil)

	_, err := svc.GetBars(context.Background(), domain.BarRequest{Symbol: "sh.600000", Freq: "xx"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("provider must not be called on validation failure, got %d calls", fetcher.calls)
	}
}

func TestGetBarsNormalizesFetchedRows(t *testing.T) {
	fetcher := &stubFetcher{result: dailyRows()}
	svc := NewMarketService(nil, fetcher, &stubExtractor{}, nil)

	bars, err := svc.GetBars(context.Background(), domain.BarRequest{Symbol: "SH_600000", StartDate: "2023-01-03", EndDate: "2023-01-10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Dt.Before(bars[1].Dt) {
		t.Fatal("expected strictly increasing dt")
	}
	if bars[0].Symbol != "sh.600000" {
		t.Fatalf("expected normalized symbol, got %s", bars[0].Symbol)
	}
}

func TestGetBarsIsIdempotent(t *testing.T) {
	fetcher := &stubFetcher{result: dailyRows()}
	svc := NewMarketService(nil, fetcher, &stubExtractor{}, nil)
	req := domain.BarRequest{Symbol: "sh.600000", StartDate: "2023-01-03", EndDate: "2023-01-10"}

	first, err := svc.GetBars(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetBars(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical outputs, got %d and %d bars", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bar %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGetBarsPropagatesProviderError(t *testing.T) {
	fetcher := &stubFetcher{err: &domain.ProviderError{Op: "login", Msg: "auth failure"}}
	svc := NewMarketService(nil, fetcher, &stubExtractor{}, nil)

	_, err := svc.GetBars(context.Background(), domain.BarRequest{Symbol: "sh.600000"})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGetBarsPropagatesNormalizationError(t *testing.T) {
	bad := dailyRows()
	bad.Rows[1][2] = "oops"
	fetcher := &stubFetcher{result: bad}
	svc := NewMarketService(nil, fetcher, &stubExtractor{}, nil)

	_, err := svc.GetBars(context.Background(), domain.BarRequest{Symbol: "sh.600000"})
	var nerr *domain.NormalizationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestChanSignalsFlow(t *testing.T) {
	fetcher := &stubFetcher{result: dailyRows()}
	extractor := &stubExtractor{set: domain.SignalSet{"rsi_state": "neutral"}}
	svc := NewMarketService(nil, fetcher, extractor, []string{"rsi_state"})

	set, count, err := svc.ChanSignals(context.Background(), domain.BarRequest{Symbol: "sh.600000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected bar count 2, got %d", count)
	}
	if set["rsi_state"] != "neutral" {
		t.Fatalf("unexpected signal set: %+v", set)
	}
	if len(extractor.lastNames) != 1 || extractor.lastNames[0] != "rsi_state" {
		t.Fatalf("expected configured signal list forwarded, got %+v", extractor.lastNames)
	}
	if len(extractor.lastBars) != 2 {
		t.Fatalf("expected normalized bars forwarded, got %d", len(extractor.lastBars))
	}
}

func TestChanSignalsPropagatesExtractionError(t *testing.T) {
	fetcher := &stubFetcher{result: dailyRows()}
	extractor := &stubExtractor{err: &domain.SignalComputationError{Signal: "macd_cross", Reason: "requires at least 36 bars, got 2"}}
	svc := NewMarketService(nil, fetcher, extractor, nil)

	_, _, err := svc.ChanSignals(context.Background(), domain.BarRequest{Symbol: "sh.600000"})
	var serr *domain.SignalComputationError
	if !errors.As(err, &serr) || serr.Signal != "macd_cross" {
		t.Fatalf("expected SignalComputationError naming macd_cross, got %v", err)
	}
}
