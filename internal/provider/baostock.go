package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/grlib/chan-mcp/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultTimeout = 15 * time.Second

// RawRow is one provider row: positional string fields matching the field
// list returned alongside the batch.
type RawRow []string

// KDataResult is the raw tabular answer of one k-data query.
type KDataResult struct {
	Fields []string
	Rows   []RawRow
}

// Field lists mirror what the gateway supports per frequency class.
var (
	minuteFields = []string{"date", "time", "code", "open", "high", "low", "close", "volume", "amount", "adjustflag"}
	dailyFields  = []string{"date", "code", "open", "high", "low", "close", "preclose", "volume", "amount", "adjustflag", "turn", "tradestatus", "pctChg", "isST"}
	weekFields   = []string{"date", "code", "open", "high", "low", "close", "volume", "amount", "adjustflag", "turn", "pctChg"}
)

// QueryFields returns the gateway field list for a freq.
func QueryFields(freq domain.Freq) []string {
	switch {
	case freq.Intraday():
		return minuteFields
	case freq == domain.FreqW || freq == domain.FreqM:
		return weekFields
	default:
		return dailyFields
	}
}

// BaostockClient talks to a BaoStock-compatible HTTP gateway. Every fetch
// opens its own session, so one client can serve concurrent calls.
type BaostockClient struct {
	baseURL string
	client  *http.Client
	tracer  trace.Tracer
}

func NewBaostockClient(baseURL string, timeout time.Duration, tracer trace.Tracer) *BaostockClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:18080"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &BaostockClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tracer:  tracer,
	}
}

type gatewayResponse struct {
	ErrorCode string     `json:"error_code"`
	ErrorMsg  string     `json:"error_msg"`
	Token     string     `json:"token,omitempty"`
	Fields    []string   `json:"fields,omitempty"`
	Data      [][]string `json:"data,omitempty"`
}

// Login opens a gateway session and returns its token.
func (c *BaostockClient) Login(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, "/api/v1/login", map[string]string{})
	if err != nil {
		return "", &domain.ProviderError{Op: "login", Err: err}
	}
	if resp.ErrorCode != "0" {
		return "", &domain.ProviderError{Op: "login", Msg: resp.ErrorMsg}
	}
	return resp.Token, nil
}

// Logout closes a session. Best effort: a failed logout only logs.
func (c *BaostockClient) Logout(ctx context.Context, token string) {
	resp, err := c.post(ctx, "/api/v1/logout", map[string]string{"token": token})
	if err != nil {
		log.Printf("baostock logout failed: %v", err)
		return
	}
	if resp.ErrorCode != "0" {
		log.Printf("baostock logout rejected: %s", resp.ErrorMsg)
	}
}

// QueryHistoryKData runs one k-data query inside an existing session.
func (c *BaostockClient) QueryHistoryKData(ctx context.Context, token string, req domain.BarRequest) (*KDataResult, error) {
	fields := QueryFields(req.Freq)
	payload := map[string]any{
		"token":      token,
		"code":       req.Symbol,
		"fields":     joinFields(fields),
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"frequency":  req.Freq.ProviderCode(),
		"adjustflag": string(req.Adjust),
	}

	resp, err := c.post(ctx, "/api/v1/query_history_k_data_plus", payload)
	if err != nil {
		return nil, &domain.ProviderError{Op: "query_history_k_data_plus", Err: err}
	}
	if resp.ErrorCode != "0" {
		return nil, &domain.ProviderError{Op: "query_history_k_data_plus", Msg: resp.ErrorMsg}
	}

	result := &KDataResult{Fields: resp.Fields, Rows: make([]RawRow, 0, len(resp.Data))}
	if len(result.Fields) == 0 {
		result.Fields = fields
	}
	for _, row := range resp.Data {
		result.Rows = append(result.Rows, RawRow(row))
	}
	return result, nil
}

// FetchKData performs one complete fetch: login, query, logout.
func (c *BaostockClient) FetchKData(ctx context.Context, req domain.BarRequest) (*KDataResult, error) {
	ctx, span := c.tracer.Start(ctx, "baostock.fetch-k-data")
	span.SetAttributes(
		attribute.String("symbol", req.Symbol),
		attribute.String("freq", string(req.Freq)),
	)
	defer span.End()

	token, err := c.Login(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer c.Logout(ctx, token)

	result, err := c.QueryHistoryKData(ctx, token, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(result.Rows)))
	return result, nil
}

func (c *BaostockClient) post(ctx context.Context, path string, payload any) (*gatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
	}

	var resp gatewayResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &resp, nil
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}
