package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, bars BarReader, signals SignalReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_bars",
		Description: "Fetch historical K-line bars for an A-share symbol over a date range",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getBarsInput) (*mcp.CallToolResult, getBarsOutput, error) {
		if bars == nil {
			return nil, getBarsOutput{}, fmt.Errorf("bar service unavailable")
		}
		req, err := buildBarRequest(in.Symbol, in.StartDate, in.EndDate, in.Freq, in.AdjustFlag)
		if err != nil {
			return nil, getBarsOutput{}, err
		}
		result, err := bars.GetBars(ctx, req)
		if err != nil {
			return nil, getBarsOutput{}, err
		}
		return nil, getBarsOutput{
			Symbol:    req.Symbol,
			Freq:      string(req.Freq),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Count:     len(result),
			Bars:      result,
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chan_signals",
		Description: "Compute the curated Chan-theory signal subset over fetched K-line bars",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chanSignalsInput) (*mcp.CallToolResult, chanSignalsOutput, error) {
		if signals == nil {
			return nil, chanSignalsOutput{}, fmt.Errorf("signal service unavailable")
		}
		req, err := buildBarRequest(in.Symbol, in.StartDate, in.EndDate, in.Freq, in.AdjustFlag)
		if err != nil {
			return nil, chanSignalsOutput{}, err
		}
		set, count, err := signals.ChanSignals(ctx, req)
		if err != nil {
			return nil, chanSignalsOutput{}, err
		}
		return nil, chanSignalsOutput{
			Symbol:  req.Symbol,
			Freq:    string(req.Freq),
			Count:   count,
			Signals: set,
		}, nil
	})
}
