// Package signal shapes canonical bars into the input go-talib expects,
// invokes a curated subset of its functions, and flattens the outputs into a
// name → value mapping. Adding a signal means adding one table entry.
package signal

import (
	"fmt"
	"math"

	"github.com/grlib/chan-mcp/internal/domain"

	talib "github.com/markcheno/go-talib"
)

const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	emaPeriod        = 20
	bollPeriod       = 20
	bollStdDevs      = 2.0
	barPowerThresh   = 0.8
)

const (
	SignalMACDCross    = "macd_cross"
	SignalRSIState     = "rsi_state"
	SignalEMATrend     = "ema_trend"
	SignalBarPower     = "bar_power"
	SignalBollPosition = "boll_position"
)

type series struct {
	opens  []float64
	highs  []float64
	lows   []float64
	closes []float64
}

// Spec couples a signal name with the minimum bar window its computation
// needs and the talib-backed evaluation itself.
type Spec struct {
	Name    string
	MinBars int
	compute func(s series) string
}

// registry is the curated signal table, in presentation order.
var registry = []Spec{
	{
		Name:    SignalMACDCross,
		MinBars: macdSlowPeriod + macdSignalPeriod + 1,
		compute: func(s series) string {
			_, _, hist := talib.Macd(s.closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
			prev, curr := hist[len(hist)-2], hist[len(hist)-1]
			switch {
			case prev <= 0 && curr > 0:
				return "bullish_cross"
			case prev >= 0 && curr < 0:
				return "bearish_cross"
			}
			return "none"
		},
	},
	{
		Name:    SignalRSIState,
		MinBars: rsiPeriod + 1,
		compute: func(s series) string {
			rsi := talib.Rsi(s.closes, rsiPeriod)
			switch v := rsi[len(rsi)-1]; {
			case v >= 70:
				return "overbought"
			case v <= 30:
				return "oversold"
			}
			return "neutral"
		},
	},
	{
		Name:    SignalEMATrend,
		MinBars: emaPeriod + 1,
		compute: func(s series) string {
			ema := talib.Ema(s.closes, emaPeriod)
			last := s.closes[len(s.closes)-1]
			ref := ema[len(ema)-1]
			switch {
			case last > ref:
				return "above"
			case last < ref:
				return "below"
			}
			return "flat"
		},
	},
	{
		Name:    SignalBarPower,
		MinBars: 1,
		compute: func(s series) string {
			n := len(s.closes) - 1
			body := math.Abs(s.closes[n] - s.opens[n])
			rng := s.highs[n] - s.lows[n]
			if rng <= 0 || body/rng < barPowerThresh {
				return "neutral"
			}
			if s.closes[n] > s.opens[n] {
				return "strong_up"
			}
			return "strong_down"
		},
	},
	{
		Name:    SignalBollPosition,
		MinBars: bollPeriod + 1,
		compute: func(s series) string {
			upper, _, lower := talib.BBands(s.closes, bollPeriod, bollStdDevs, bollStdDevs, talib.SMA)
			last := s.closes[len(s.closes)-1]
			switch {
			case last > upper[len(upper)-1]:
				return "above_upper"
			case last < lower[len(lower)-1]:
				return "below_lower"
			}
			return "inside"
		},
	},
}

// Names returns the full curated signal list in table order.
func Names() []string {
	out := make([]string, len(registry))
	for i, spec := range registry {
		out[i] = spec.Name
	}
	return out
}

// Lookup finds a signal spec by name.
func Lookup(name string) (Spec, bool) {
	for _, spec := range registry {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract evaluates the named signals over bars. Any signal that cannot be
// computed fails the whole call; callers never see a partial mapping.
func (e *Extractor) Extract(bars []domain.Bar, names []string) (domain.SignalSet, error) {
	if len(names) == 0 {
		names = Names()
	}

	s := series{
		opens:  make([]float64, len(bars)),
		highs:  make([]float64, len(bars)),
		lows:   make([]float64, len(bars)),
		closes: make([]float64, len(bars)),
	}
	for i, b := range bars {
		s.opens[i] = b.Open
		s.highs[i] = b.High
		s.lows[i] = b.Low
		s.closes[i] = b.Close
	}

	out := make(domain.SignalSet, len(names))
	for _, name := range names {
		spec, ok := Lookup(name)
		if !ok {
			return nil, &domain.SignalComputationError{Signal: name, Reason: "unknown signal"}
		}
		if len(bars) < spec.MinBars {
			return nil, &domain.SignalComputationError{
				Signal: name,
				Reason: fmt.Sprintf("requires at least %d bars, got %d", spec.MinBars, len(bars)),
			}
		}
		out[spec.Name] = spec.compute(s)
	}
	return out, nil
}
