package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/grlib/chan-mcp/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// BarService is the slice of the market service the REST surface needs.
type BarService interface {
	GetBars(ctx context.Context, req domain.BarRequest) ([]domain.Bar, error)
	ChanSignals(ctx context.Context, req domain.BarRequest) (domain.SignalSet, int, error)
	SignalNames() []string
}

type Handler struct {
	tracer trace.Tracer
	market BarService
}

func New(tracer trace.Tracer, market BarService) *Handler {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Handler{tracer: tracer, market: market}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/bars/:symbol", h.GetBars)
	r.GET("/api/signals/:symbol", h.GetSignals)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps the error kinds onto HTTP statuses: caller mistakes are
// 400s, upstream data problems are 502s, and an uncomputable signal is 422.
func statusFor(err error) int {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return http.StatusBadGateway
	}
	var nerr *domain.NormalizationError
	if errors.As(err, &nerr) {
		return http.StatusBadGateway
	}
	var serr *domain.SignalComputationError
	if errors.As(err, &serr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
