package mcp

import (
	"context"

	"github.com/grlib/chan-mcp/internal/domain"
)

// BarReader exposes the bar-fetch operation.
type BarReader interface {
	GetBars(ctx context.Context, req domain.BarRequest) ([]domain.Bar, error)
}

// SignalReader exposes curated signal extraction over fetched bars.
type SignalReader interface {
	ChanSignals(ctx context.Context, req domain.BarRequest) (domain.SignalSet, int, error)
	SignalNames() []string
}
