package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/grlib/chan-mcp/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, bars BarReader, signals SignalReader) {
	server.AddResource(&mcp.Resource{
		URI:         "market://supported-freqs",
		Name:        "supported-freqs",
		Description: "Bar frequencies supported by the service",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedFreqs)
	})

	server.AddResource(&mcp.Resource{
		URI:         "market://supported-signals",
		Name:        "supported-signals",
		Description: "Curated signal names the chan_signals tool evaluates",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		return jsonResource(req.Params.URI, signals.SignalNames())
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "bars://{symbol}/{freq}{?start,end}",
		Name:        "bars-by-symbol-freq",
		Description: "K-line bars for a symbol and freq; optional start/end query params (YYYY-MM-DD)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if bars == nil {
			return nil, fmt.Errorf("bar service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "bars" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		freq := strings.Trim(strings.TrimSpace(parsed.Path), "/")
		barReq, err := buildBarRequest(
			parsed.Host,
			strings.TrimSpace(parsed.Query().Get("start")),
			strings.TrimSpace(parsed.Query().Get("end")),
			freq,
			"",
		)
		if err != nil {
			return nil, err
		}

		result, err := bars.GetBars(ctx, barReq)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, getBarsOutput{
			Symbol:    barReq.Symbol,
			Freq:      string(barReq.Freq),
			StartDate: barReq.StartDate,
			EndDate:   barReq.EndDate,
			Count:     len(result),
			Bars:      result,
		})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
