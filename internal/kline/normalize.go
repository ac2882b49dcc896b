// Package kline turns raw provider rows into canonical bars. Everything here
// is pure: no I/O, deterministic for a given input.
package kline

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/grlib/chan-mcp/internal/domain"
	"github.com/grlib/chan-mcp/internal/provider"
)

const (
	dateLayout   = "2006-01-02"
	minuteLayout = "20060102150405"
)

// Normalize maps a raw k-data batch onto canonical bars. A single malformed
// row fails the whole batch: partial bar sequences are worse than no data.
func Normalize(result *provider.KDataResult, freq domain.Freq, symbol string) ([]domain.Bar, error) {
	if result == nil || len(result.Rows) == 0 {
		return []domain.Bar{}, nil
	}

	idx := make(map[string]int, len(result.Fields))
	for i, f := range result.Fields {
		idx[f] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[required]; !ok {
			return nil, &domain.NormalizationError{Row: 0, Field: required, Reason: "field missing from provider response"}
		}
	}
	if freq.Intraday() {
		if _, ok := idx["time"]; !ok {
			return nil, &domain.NormalizationError{Row: 0, Field: "time", Reason: "field missing from provider response"}
		}
	}

	bars := make([]domain.Bar, 0, len(result.Rows))
	for i, row := range result.Rows {
		if len(row) != len(result.Fields) {
			return nil, &domain.NormalizationError{Row: i, Reason: fmt.Sprintf("expected %d fields, got %d", len(result.Fields), len(row))}
		}

		dt, err := rowTimestamp(row, idx, freq, i)
		if err != nil {
			return nil, err
		}

		bar := domain.Bar{Symbol: symbol, Dt: dt}
		if j, ok := idx["code"]; ok {
			bar.Code = row[j]
		}
		if bar.Open, err = parseField(row, idx, "open", i); err != nil {
			return nil, err
		}
		if bar.High, err = parseField(row, idx, "high", i); err != nil {
			return nil, err
		}
		if bar.Low, err = parseField(row, idx, "low", i); err != nil {
			return nil, err
		}
		if bar.Close, err = parseField(row, idx, "close", i); err != nil {
			return nil, err
		}
		if bar.Vol, err = parseField(row, idx, "volume", i); err != nil {
			return nil, err
		}
		if _, ok := idx["amount"]; ok {
			if bar.Amount, err = parseField(row, idx, "amount", i); err != nil {
				return nil, err
			}
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(a, b int) bool { return bars[a].Dt.Before(bars[b].Dt) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Dt.Equal(bars[i-1].Dt) {
			return nil, &domain.NormalizationError{Row: i, Field: "dt", Reason: fmt.Sprintf("duplicate timestamp %s", bars[i].Dt.Format(time.RFC3339))}
		}
	}
	return bars, nil
}

func rowTimestamp(row provider.RawRow, idx map[string]int, freq domain.Freq, rowNum int) (time.Time, error) {
	date := row[idx["date"]]
	if !freq.Intraday() {
		dt, err := time.Parse(dateLayout, date)
		if err != nil {
			return time.Time{}, &domain.NormalizationError{Row: rowNum, Field: "date", Reason: fmt.Sprintf("cannot parse %q", date)}
		}
		return dt.UTC(), nil
	}

	// Minute rows carry time as YYYYMMDDHHMMSSmmm; the date field is kept as
	// a cross-check against truncated values.
	raw := row[idx["time"]]
	if len(raw) < len(minuteLayout) {
		return time.Time{}, &domain.NormalizationError{Row: rowNum, Field: "time", Reason: fmt.Sprintf("cannot parse %q", raw)}
	}
	dt, err := time.Parse(minuteLayout, raw[:len(minuteLayout)])
	if err != nil {
		return time.Time{}, &domain.NormalizationError{Row: rowNum, Field: "time", Reason: fmt.Sprintf("cannot parse %q", raw)}
	}
	if date != "" && dt.Format(dateLayout) != date {
		return time.Time{}, &domain.NormalizationError{Row: rowNum, Field: "time", Reason: fmt.Sprintf("time %q disagrees with date %q", raw, date)}
	}
	return dt.UTC(), nil
}

func parseField(row provider.RawRow, idx map[string]int, field string, rowNum int) (float64, error) {
	raw := row[idx[field]]
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.NormalizationError{Row: rowNum, Field: field, Reason: fmt.Sprintf("cannot parse %q as number", raw)}
	}
	return v, nil
}
