package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/grlib/chan-mcp/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubBarService struct {
	bars     []domain.Bar
	err      error
	calls    int
	lastReq  domain.BarRequest
	signals  domain.SignalSet
	sigErr   error
	sigCalls int
	names    []string
}

func (s *stubBarService) GetBars(ctx context.Context, req domain.BarRequest) ([]domain.Bar, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Bar(nil), s.bars...), nil
}

func (s *stubBarService) ChanSignals(ctx context.Context, req domain.BarRequest) (domain.SignalSet, int, error) {
	s.sigCalls++
	s.lastReq = req
	if s.sigErr != nil {
		return nil, 0, s.sigErr
	}
	return s.signals, len(s.bars), nil
}

func (s *stubBarService) SignalNames() []string {
	if s.names != nil {
		return append([]string(nil), s.names...)
	}
	return []string{"macd_cross", "rsi_state"}
}

func testBars() []domain.Bar {
	base := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, 0, 5)
	for i := 0; i < 5; i++ {
		bars = append(bars, domain.Bar{
			Symbol: "sh.600000",
			Code:   "sh.600000",
			Dt:     base.AddDate(0, 0, i),
			Open:   7.2, High: 7.4, Low: 7.1, Close: 7.3,
			Vol: 1000000, Amount: 7300000,
		})
	}
	return bars
}

func testServer() (*sdkmcp.Server, *stubBarService) {
	svc := &stubBarService{
		bars:    testBars(),
		signals: domain.SignalSet{"macd_cross": "none", "rsi_state": "neutral"},
	}
	srv := NewServer(nil, svc, svc, ServerConfig{RequestTimeout: time.Second})
	return srv, svc
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}

func decodeToolJSON(result *sdkmcp.CallToolResult, out any) error {
	if result.StructuredContent == nil {
		return nil
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
