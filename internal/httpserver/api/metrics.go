package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/timeutil"
)

// parseDays reads the optional ?days query parameter and enforces the
// window bounds at the boundary, so services never see an invalid window.
func parseDays(raw string) (int, error) {
	if raw == "" {
		return timeutil.DefaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, timeutil.ErrInvalidDays
	}
	if days < 1 || days > timeutil.MaxWindowDays {
		return 0, timeutil.ErrInvalidDays
	}
	return days, nil
}

// seriesResponse is the envelope every time-series and distribution
// report is served in: the points live under a "data" key.
type seriesResponse[T any] struct {
	Data []T `json:"data"`
}

func newSeriesResponse[T any](points []T) seriesResponse[T] {
	if points == nil {
		points = []T{}
	}
	return seriesResponse[T]{Data: points}
}

func (h *handler) metricsSummary(c *fiber.Ctx) error {
	return h.serveReport(c, "summary", func(days int) (any, error) {
		return h.container.Metrics.Summary(c.UserContext(), currentUser(c).ID, days)
	})
}

func (h *handler) metricsTokenUsage(c *fiber.Ctx) error {
	return h.serveReport(c, "token-usage", func(days int) (any, error) {
		points, err := h.container.Metrics.TokenUsage(c.UserContext(), currentUser(c).ID, days)
		if err != nil {
			return nil, err
		}
		return newSeriesResponse(points), nil
	})
}

func (h *handler) metricsLatency(c *fiber.Ctx) error {
	return h.serveReport(c, "latency", func(days int) (any, error) {
		buckets, err := h.container.Metrics.Latency(c.UserContext(), currentUser(c).ID, days)
		if err != nil {
			return nil, err
		}
		return newSeriesResponse(buckets), nil
	})
}

func (h *handler) metricsErrorRate(c *fiber.Ctx) error {
	return h.serveReport(c, "error-rate", func(days int) (any, error) {
		points, err := h.container.Metrics.ErrorRate(c.UserContext(), currentUser(c).ID, days)
		if err != nil {
			return nil, err
		}
		return newSeriesResponse(points), nil
	})
}

func (h *handler) metricsCost(c *fiber.Ctx) error {
	return h.serveReport(c, "cost", func(days int) (any, error) {
		return h.container.Metrics.Cost(c.UserContext(), currentUser(c).ID, days)
	})
}

// serveReport runs one aggregation behind the Redis response cache. The
// cache is consulted only while the enable_caching flag is on, and cache
// failures always fall through to a fresh aggregation.
func (h *handler) serveReport(c *fiber.Ctx, report string, load func(days int) (any, error)) error {
	days, err := parseDays(c.Query("days"))
	if err != nil {
		return httputil.WriteError(c, fiber.StatusUnprocessableEntity,
			"days must be an integer between 1 and 365")
	}

	ctx := c.UserContext()
	userID := currentUser(c).ID

	cachingEnabled := false
	if settings, err := h.container.Settings.Get(ctx); err == nil {
		cachingEnabled = settings.EnableCaching
	}

	if cachingEnabled {
		if data, ok := h.container.MetricsCache.Get(ctx, userID, report, days); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(data)
		}
	}

	result, err := load(days)
	if err != nil {
		if errors.Is(err, timeutil.ErrInvalidDays) {
			return httputil.WriteError(c, fiber.StatusUnprocessableEntity,
				"days must be an integer between 1 and 365")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, "metrics aggregation failed")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "metrics aggregation failed")
	}

	if cachingEnabled {
		h.container.MetricsCache.Set(ctx, userID, report, days, data)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}
