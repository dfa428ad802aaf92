package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/njchilds90/gonewton"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves the API routes.
type Handlers struct {
	calc    *gonewton.Calculator
	metrics *Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHandlers wires the API handlers. metrics may be nil.
func NewHandlers(calc *gonewton.Calculator, metrics *Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{
		calc:    calc,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// bindError answers a body that could not be decoded.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
}

// Calculate handles POST /api/calculate.
//
// 200 carries the converged response, 400 a bad request and 422 a method
// failure with its status.
func (h *Handlers) Calculate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "newton.calculate")
	defer span.End()

	var req gonewton.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.count("invalid_input")
		span.SetStatus(codes.Error, "bad request body")
		bindError(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("newton.function", req.Function),
		attribute.String("newton.x0", req.X0.Raw),
		attribute.String("newton.epsilon", req.Epsilon.Raw),
	)

	resp, err := h.calc.Calculate(req)
	var (
		inputErr *gonewton.InputError
		failure  *gonewton.Failure
	)
	switch {
	case err == nil:
		h.count(gonewton.StatusConverged.String())
		if h.metrics != nil {
			h.metrics.Iterations.Observe(float64(resp.Iterations))
		}
		span.SetAttributes(
			attribute.Int("newton.iterations", resp.Iterations),
			attribute.Float64("newton.solution", float64(resp.Solution)),
		)
		c.JSON(http.StatusOK, resp)

	case errors.As(err, &inputErr):
		h.count("invalid_input")
		span.SetStatus(codes.Error, err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": inputErr.Field})

	case errors.As(err, &failure):
		h.count(failure.Status().String())
		span.SetAttributes(attribute.String("newton.status", failure.Status().String()))
		span.SetStatus(codes.Error, failure.Reason)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": failure.Reason, "status": failure.Status().String()})

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
		h.logger.ErrorContext(ctx, "calculate failed", "error", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handlers) count(outcome string) {
	if h.metrics != nil {
		h.metrics.CalculationsTotal.WithLabelValues(outcome).Inc()
	}
}

// Tool handles POST /api/tool. Tool failures are reported in the body with
// status 200, only undecodable requests get 400.
func (h *Handlers) Tool(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "newton.tool")
	defer span.End()

	var req gonewton.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	span.SetAttributes(attribute.String("newton.tool", req.Tool))
	resp := h.calc.HandleToolCall(req)
	if resp.Error != "" {
		span.SetStatus(codes.Error, resp.Error)
	}
	c.JSON(http.StatusOK, resp)
}

// ToolSchema handles GET /api/tool/schema.
func (h *Handlers) ToolSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(gonewton.ToolSpec()))
}

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
