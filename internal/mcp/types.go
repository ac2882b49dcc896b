package mcp

import (
	"github.com/grlib/chan-mcp/internal/domain"
)

type getBarsInput struct {
	Symbol     string `json:"symbol" jsonschema:"exchange-prefixed code (e.g. sh.600000, sz.000001)"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD; empty uses the gateway default range"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"YYYY-MM-DD; empty uses the gateway default range"`
	Freq       string `json:"freq,omitempty" jsonschema:"bar frequency: 5m, 15m, 30m, 60m, d, w, m (default d)"`
	AdjustFlag string `json:"adjust_flag,omitempty" jsonschema:"price adjustment: 3 none (default), 1 backward, 2 forward"`
}

type getBarsOutput struct {
	Symbol    string       `json:"symbol"`
	Freq      string       `json:"freq"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Count     int          `json:"count"`
	Bars      []domain.Bar `json:"bars"`
}

type chanSignalsInput struct {
	Symbol     string `json:"symbol" jsonschema:"exchange-prefixed code (e.g. sh.600000, sz.000001)"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD; empty uses the gateway default range"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"YYYY-MM-DD; empty uses the gateway default range"`
	Freq       string `json:"freq,omitempty" jsonschema:"bar frequency: 5m, 15m, 30m, 60m, d, w, m (default d)"`
	AdjustFlag string `json:"adjust_flag,omitempty" jsonschema:"price adjustment: 3 none (default), 1 backward, 2 forward"`
}

type chanSignalsOutput struct {
	Symbol  string           `json:"symbol"`
	Freq    string           `json:"freq"`
	Count   int              `json:"count"`
	Signals domain.SignalSet `json:"signals"`
}

// buildBarRequest validates and normalizes tool input into a BarRequest.
// Returned errors are ValidationErrors: nothing has touched the network yet.
func buildBarRequest(symbol, startDate, endDate, freq, adjustFlag string) (domain.BarRequest, error) {
	f, err := domain.ParseFreq(freq)
	if err != nil {
		return domain.BarRequest{}, err
	}
	adjust, err := domain.ParseAdjustFlag(adjustFlag)
	if err != nil {
		return domain.BarRequest{}, err
	}

	req := domain.BarRequest{
		Symbol:    symbol,
		StartDate: startDate,
		EndDate:   endDate,
		Freq:      f,
		Adjust:    adjust,
	}
	if err := req.Validate(); err != nil {
		return domain.BarRequest{}, err
	}
	return req, nil
}
