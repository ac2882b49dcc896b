package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Freq is the sampling period of a bar sequence.
type Freq string

const (
	Freq5m  Freq = "5m"
	Freq15m Freq = "15m"
	Freq30m Freq = "30m"
	Freq60m Freq = "60m"
	FreqD   Freq = "d"
	FreqW   Freq = "w"
	FreqM   Freq = "m"
)

var SupportedFreqs = []Freq{Freq5m, Freq15m, Freq30m, Freq60m, FreqD, FreqW, FreqM}

// providerCodes maps each freq to the code the BaoStock gateway expects.
var providerCodes = map[Freq]string{
	Freq5m:  "5",
	Freq15m: "15",
	Freq30m: "30",
	Freq60m: "60",
	FreqD:   "d",
	FreqW:   "w",
	FreqM:   "m",
}

var freqAliases = map[string]Freq{
	"day":   FreqD,
	"daily": FreqD,
	"week":  FreqW,
	"month": FreqM,
	"5":     Freq5m,
	"15":    Freq15m,
	"30":    Freq30m,
	"60":    Freq60m,
}

// ParseFreq normalizes a freq string, accepting the canonical codes plus a
// few common aliases.
func ParseFreq(raw string) (Freq, error) {
	f := strings.ToLower(strings.TrimSpace(raw))
	if f == "" {
		return FreqD, nil
	}
	if _, ok := providerCodes[Freq(f)]; ok {
		return Freq(f), nil
	}
	if alias, ok := freqAliases[f]; ok {
		return alias, nil
	}
	return "", &ValidationError{Field: "freq", Reason: fmt.Sprintf("unsupported freq: %s", raw)}
}

// ProviderCode returns the gateway frequency code for f.
func (f Freq) ProviderCode() string {
	return providerCodes[f]
}

// Intraday reports whether bars of this freq carry an intra-day time
// component in addition to the trading date.
func (f Freq) Intraday() bool {
	switch f {
	case Freq5m, Freq15m, Freq30m, Freq60m:
		return true
	}
	return false
}

// AdjustFlag selects the price adjustment mode of the gateway:
// 3 none, 1 backward-adjusted, 2 forward-adjusted.
type AdjustFlag string

const (
	AdjustBackward AdjustFlag = "1"
	AdjustForward  AdjustFlag = "2"
	AdjustNone     AdjustFlag = "3"
)

func ParseAdjustFlag(raw string) (AdjustFlag, error) {
	a := strings.TrimSpace(raw)
	switch AdjustFlag(a) {
	case "":
		return AdjustNone, nil
	case AdjustBackward, AdjustForward, AdjustNone:
		return AdjustFlag(a), nil
	}
	return "", &ValidationError{Field: "adjust_flag", Reason: fmt.Sprintf("adjust_flag must be 1, 2 or 3, got %q", raw)}
}

var symbolPattern = regexp.MustCompile(`^(sh|sz|bj)\.\d{6}$`)

// NormalizeSymbol lowercases and canonicalizes an exchange-prefixed code,
// accepting sh_600000 / sh-600000 spellings for sh.600000.
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", ".", "-", ".").Replace(s)
	if s == "" {
		return "", &ValidationError{Field: "symbol", Reason: "symbol is required"}
	}
	if !symbolPattern.MatchString(s) {
		return "", &ValidationError{Field: "symbol", Reason: fmt.Sprintf("symbol must look like sh.600000, got %q", raw)}
	}
	return s, nil
}

const dateLayout = "2006-01-02"

// Bar is one period's OHLCV summary in canonical form.
type Bar struct {
	Symbol string    `json:"symbol"`
	Code   string    `json:"code,omitempty"`
	Dt     time.Time `json:"dt"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Vol    float64   `json:"vol"`
	Amount float64   `json:"amount"`
}

// SignalSet maps signal name to the value produced for it.
type SignalSet map[string]string

// BarRequest identifies one bar query. Empty dates are passed through to the
// gateway, which applies its own defaults.
type BarRequest struct {
	Symbol    string
	StartDate string
	EndDate   string
	Freq      Freq
	Adjust    AdjustFlag
}

// Validate checks the request without touching the network.
func (r *BarRequest) Validate() error {
	symbol, err := NormalizeSymbol(r.Symbol)
	if err != nil {
		return err
	}
	r.Symbol = symbol

	if r.Freq == "" {
		r.Freq = FreqD
	}
	if _, ok := providerCodes[r.Freq]; !ok {
		return &ValidationError{Field: "freq", Reason: fmt.Sprintf("unsupported freq: %s", r.Freq)}
	}
	if r.Adjust == "" {
		r.Adjust = AdjustNone
	}
	if _, err := ParseAdjustFlag(string(r.Adjust)); err != nil {
		return err
	}

	var start, end time.Time
	if r.StartDate != "" {
		start, err = time.Parse(dateLayout, r.StartDate)
		if err != nil {
			return &ValidationError{Field: "start_date", Reason: fmt.Sprintf("start_date must be YYYY-MM-DD, got %q", r.StartDate)}
		}
	}
	if r.EndDate != "" {
		end, err = time.Parse(dateLayout, r.EndDate)
		if err != nil {
			return &ValidationError{Field: "end_date", Reason: fmt.Sprintf("end_date must be YYYY-MM-DD, got %q", r.EndDate)}
		}
	}
	if r.StartDate != "" && r.EndDate != "" && start.After(end) {
		return &ValidationError{Field: "start_date", Reason: "start_date must not be after end_date"}
	}
	return nil
}
