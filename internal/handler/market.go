package handler

import (
	"net/http"

	"github.com/grlib/chan-mcp/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

func barRequestFromQuery(c *gin.Context) (domain.BarRequest, error) {
	freq, err := domain.ParseFreq(c.Query("freq"))
	if err != nil {
		return domain.BarRequest{}, err
	}
	adjust, err := domain.ParseAdjustFlag(c.Query("adjust"))
	if err != nil {
		return domain.BarRequest{}, err
	}

	req := domain.BarRequest{
		Symbol:    c.Param("symbol"),
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
		Freq:      freq,
		Adjust:    adjust,
	}
	if err := req.Validate(); err != nil {
		return domain.BarRequest{}, err
	}
	return req, nil
}

func (h *Handler) GetBars(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-bars")
	defer span.End()

	req, err := barRequestFromQuery(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("symbol", req.Symbol),
		attribute.String("freq", string(req.Freq)),
	)

	bars, err := h.market.GetBars(ctx, req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     req.Symbol,
		"freq":       string(req.Freq),
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"count":      len(bars),
		"bars":       bars,
	})
}

func (h *Handler) GetSignals(c *gin.Context) {
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	req, err := barRequestFromQuery(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("symbol", req.Symbol),
		attribute.String("freq", string(req.Freq)),
	)

	set, count, err := h.market.ChanSignals(ctx, req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":  req.Symbol,
		"freq":    string(req.Freq),
		"count":   count,
		"signals": set,
	})
}
