package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lcastelli/streampulse/internal/errors"
	"github.com/lcastelli/streampulse/internal/models"
	"github.com/lcastelli/streampulse/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.store.DB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func (s *Server) listChannels(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(c, "offset", 0)

	filter := store.ChannelFilter{
		Source:   c.Query("source"),
		Country:  c.Query("country"),
		Category: c.Query("category"),
		Status:   models.ChannelStatus(c.Query("status")),
		MinScore: queryInt(c, "min_score", 0),
		Limit:    limit,
		Offset:   offset,
	}

	channels, total, err := s.store.ListChannels(filter)
	if err != nil {
		s.serverError(c, err)
		return
	}

	data := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		data = append(data, toChannelResponse(ch))
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		TotalPages: totalPages,
	})
}

func (s *Server) getChannel(c *gin.Context) {
	channel, err := s.store.GetChannel(c.Param("id"))
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Message: err.Error()})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChannelResponse(*channel))
}

func (s *Server) listChannelResults(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetChannel(id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Message: err.Error()})
			return
		}
		s.serverError(c, err)
		return
	}

	limit := queryInt(c, "limit", defaultPageSize)
	results, err := s.store.ResultsForChannel(id, limit)
	if err != nil {
		s.serverError(c, err)
		return
	}

	data := make([]TestResultResponse, 0, len(results))
	for _, r := range results {
		data = append(data, toTestResultResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"channel_id": id,
		"results":    data,
	})
}

func (s *Server) getChannelMetrics(c *gin.Context) {
	metrics, err := s.store.GetMetrics(c.Param("id"))
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Message: err.Error()})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMetricsResponse(*metrics))
}

func (s *Server) listSourceUpdates(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)

	updates, err := s.store.ListSourceUpdates(c.Query("source"), limit)
	if err != nil {
		s.serverError(c, err)
		return
	}

	data := make([]SourceUpdateResponse, 0, len(updates))
	for _, u := range updates {
		data = append(data, toSourceUpdateResponse(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"updates": data,
	})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.store.Stats()
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal server error",
		Message: "an unexpected error occurred",
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
