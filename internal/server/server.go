// Package server exposes the pricing engine over HTTP.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

const dateLayout = "2006-01-02"

// Handler serves pricing requests.
type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

// NewRouter returns a gin engine with recovery and all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	sys := router.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	}

	api := router.Group("/api/v1")
	{
		api.GET("/price", h.PriceQuery)
		api.POST("/price", h.PriceJSON)
	}
}

// PriceQuery prices the option described by query parameters.
func (h *Handler) PriceQuery(c *gin.Context) {
	req, err := requestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.run(c, req)
}

// PriceJSON prices the option described by a JSON engine.Request body.
func (h *Handler) PriceJSON(c *gin.Context) {
	var req engine.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.run(c, req)
}

func (h *Handler) run(c *gin.Context, req engine.Request) {
	res, err := h.eng.Run(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Errorf("price request failed: %v", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	// encoding/json rejects NaN and Inf after the status line is written
	if !res.Finite() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("price overflowed for these inputs: call=%g put=%g", res.Call, res.Put),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, data.ErrNoSpot):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func requestFromQuery(c *gin.Context) (engine.Request, error) {
	req := engine.Request{Underlying: c.Query("underlying")}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"spot", &req.Spot},
		{"strike", &req.Strike},
		{"years", &req.Years},
		{"vol", &req.Vol},
	}
	for _, f := range floats {
		v, err := queryFloat(c, f.name)
		if err != nil {
			return req, err
		}
		*f.dst = v
	}

	if s, ok := c.GetQuery("rate"); ok {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return req, fmt.Errorf("invalid rate %q", s)
		}
		req.Rate = &rate
	}

	var err error
	if req.Expiry, err = queryDate(c, "expiry"); err != nil {
		return req, err
	}
	if req.AsOf, err = queryDate(c, "as_of"); err != nil {
		return req, err
	}
	return req, nil
}

func queryFloat(c *gin.Context, name string) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	s := c.Query(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", name, s)
	}
	return t, nil
}
