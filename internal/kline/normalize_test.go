package kline

import (
	"errors"
	"testing"
	"time"

	"github.com/grlib/chan-mcp/internal/domain"
	"github.com/grlib/chan-mcp/internal/provider"
)

func dailyResult(rows ...provider.RawRow) *provider.KDataResult {
	return &provider.KDataResult{
		Fields: []string{"date", "code", "open", "high", "low", "close", "volume", "amount"},
		Rows:   rows,
	}
}

func TestNormalizeDaily(t *testing.T) {
	result := dailyResult(
		provider.RawRow{"2023-01-04", "sh.600000", "7.32", "7.39", "7.27", "7.35", "26120757", "191448309.01"},
		provider.RawRow{"2023-01-03", "sh.600000", "7.19", "7.34", "7.17", "7.32", "31549587", "229432638.54"},
	)

	bars, err := Normalize(result, domain.FreqD, "sh.600000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Dt.Before(bars[1].Dt) {
		t.Fatalf("expected chronological order, got %v then %v", bars[0].Dt, bars[1].Dt)
	}
	first := bars[0]
	if first.Dt != time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected dt: %v", first.Dt)
	}
	if first.Open != 7.19 || first.High != 7.34 || first.Low != 7.17 || first.Close != 7.32 {
		t.Fatalf("unexpected OHLC: %+v", first)
	}
	if first.Vol != 31549587 || first.Amount != 229432638.54 {
		t.Fatalf("unexpected vol/amount: %+v", first)
	}
	if first.Symbol != "sh.600000" || first.Code != "sh.600000" {
		t.Fatalf("unexpected symbol/code: %+v", first)
	}
}

func TestNormalizeMinuteBars(t *testing.T) {
	result := &provider.KDataResult{
		Fields: []string{"date", "time", "code", "open", "high", "low", "close", "volume", "amount"},
		Rows: []provider.RawRow{
			{"2023-01-03", "20230103093500000", "sh.600000", "7.19", "7.21", "7.18", "7.20", "120000", "863000"},
			{"2023-01-03", "20230103094000000", "sh.600000", "7.20", "7.23", "7.19", "7.22", "98000", "707000"},
		},
	}

	bars, err := Normalize(result, domain.Freq5m, "sh.600000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	want := time.Date(2023, 1, 3, 9, 35, 0, 0, time.UTC)
	if !bars[0].Dt.Equal(want) {
		t.Fatalf("expected dt %v, got %v", want, bars[0].Dt)
	}
}

func TestNormalizeEmptyBatch(t *testing.T) {
	bars, err := Normalize(dailyResult(), domain.FreqD, "sh.600000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected empty bar sequence, got %d", len(bars))
	}

	bars, err = Normalize(nil, domain.FreqD, "sh.600000")
	if err != nil || len(bars) != 0 {
		t.Fatalf("nil result should normalize to empty: %v %d", err, len(bars))
	}
}

func TestNormalizeMalformedNumberFailsBatch(t *testing.T) {
	result := dailyResult(
		provider.RawRow{"2023-01-03", "sh.600000", "7.19", "7.34", "7.17", "7.32", "31549587", "229432638.54"},
		provider.RawRow{"2023-01-04", "sh.600000", "n/a", "7.39", "7.27", "7.35", "26120757", "191448309.01"},
	)

	_, err := Normalize(result, domain.FreqD, "sh.600000")
	if err == nil {
		t.Fatal("expected error for malformed open field")
	}
	var nerr *domain.NormalizationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NormalizationError, got %T", err)
	}
	if nerr.Field != "open" {
		t.Fatalf("expected failing field open, got %s", nerr.Field)
	}
}

func TestNormalizeDuplicateTimestampFailsBatch(t *testing.T) {
	result := dailyResult(
		provider.RawRow{"2023-01-03", "sh.600000", "7.19", "7.34", "7.17", "7.32", "31549587", "1"},
		provider.RawRow{"2023-01-03", "sh.600000", "7.32", "7.39", "7.27", "7.35", "26120757", "1"},
	)

	_, err := Normalize(result, domain.FreqD, "sh.600000")
	var nerr *domain.NormalizationError
	if !errors.As(err, &nerr) || nerr.Field != "dt" {
		t.Fatalf("expected duplicate-timestamp NormalizationError, got %v", err)
	}
}

func TestNormalizeRowWidthMismatch(t *testing.T) {
	result := dailyResult(provider.RawRow{"2023-01-03", "sh.600000", "7.19"})
	if _, err := Normalize(result, domain.FreqD, "sh.600000"); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	result := &provider.KDataResult{
		Fields: []string{"date", "open", "high", "low", "close"},
		Rows:   []provider.RawRow{{"2023-01-03", "1", "1", "1", "1"}},
	}
	if _, err := Normalize(result, domain.FreqD, "sh.600000"); err == nil {
		t.Fatal("expected error for missing volume field")
	}
}

func TestNormalizeTimeDateDisagreement(t *testing.T) {
	result := &provider.KDataResult{
		Fields: []string{"date", "time", "open", "high", "low", "close", "volume"},
		Rows: []provider.RawRow{
			{"2023-01-04", "20230103093500000", "7.19", "7.21", "7.18", "7.20", "120000"},
		},
	}
	var nerr *domain.NormalizationError
	if _, err := Normalize(result, domain.Freq5m, "sh.600000"); !errors.As(err, &nerr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}
