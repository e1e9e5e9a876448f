package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/recorder"
	"BRVMSentinel/internal/strategy"
)

const (
	defaultIndicatorLimit = 100
	defaultHistoryLimit   = 30
	maxLimit              = 1000
)

// validSymbol normalizes the :symbol parameter and rejects malformed tickers.
func validSymbol() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := collector.NormalizeSymbol(c.Param("symbol"))
		if !collector.ValidSymbol(symbol) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
			return
		}
		c.Set("symbol", symbol)
		c.Next()
	}
}

func parseLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, false
	}
	return n, true
}

// writeError maps pipeline errors to status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, strategy.ErrDataUnavailable), errors.Is(err, collector.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": strategy.ErrDataUnavailable.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "data source unavailable"})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"source": s.collector.Fetcher.Name(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.collector.Cache != nil {
		body["cached_symbols"] = s.collector.Cache.Len()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleIndicators(c *gin.Context) {
	symbol := c.GetString("symbol")
	limit, ok := parseLimit(c, defaultIndicatorLimit)
	if !ok {
		return
	}
	frames, err := s.collector.Indicators(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(frames) > limit {
		frames = frames[len(frames)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "count": len(frames), "indicators": frames})
}

func (s *Server) handleSignals(c *gin.Context) {
	symbol := c.GetString("symbol")
	a, err := s.collector.Analyze(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":    a.Symbol,
		"as_of":     a.AsOf,
		"latest":    a.Latest,
		"technical": a.Technical,
		"signals":   a.Signals,
	})
}

func (s *Server) handleRecommendation(c *gin.Context) {
	a, err := s.collector.Analyze(c.Request.Context(), c.GetString("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleHistory(c *gin.Context) {
	symbol := c.GetString("symbol")
	limit, ok := parseLimit(c, defaultHistoryLimit)
	if !ok {
		return
	}
	records, err := s.recorder.History(symbol, limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("read history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	if records == nil {
		records = []recorder.RecommendationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "count": len(records), "history": records})
}

func (s *Server) handleInvalidate(c *gin.Context) {
	symbol := c.GetString("symbol")
	removed := s.collector.Invalidate(symbol)
	log.Info().Str("symbol", symbol).Bool("removed", removed).Msg("cache invalidated")
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "invalidated": removed})
}
