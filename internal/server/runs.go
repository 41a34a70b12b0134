package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet/internal/engine"
	"github.com/kode4food/banquet/pkg/api"
)

var ErrStartRun = errors.New("failed to start run")

func (s *Server) listRuns(c *gin.Context) {
	runs := s.engine.ListRuns()
	c.JSON(http.StatusOK, api.RunsListResponse{
		Runs:  runs,
		Count: len(runs),
	})
}

func (s *Server) startRun(c *gin.Context) {
	var req api.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	timeout := time.Duration(req.Timeout) * time.Millisecond
	id, err := s.engine.StartRun(req.Guests, timeout)
	if err == nil {
		c.JSON(http.StatusCreated, api.RunStartedResponse{
			RunID:  id,
			Status: api.RunActive,
		})
		return
	}

	switch {
	case errors.Is(err, engine.ErrNoGuests):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
	case errors.Is(err, engine.ErrEngineStopped):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusServiceUnavailable,
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrStartRun, err),
			Status: http.StatusInternalServerError,
		})
	}
}

func (s *Server) getRun(c *gin.Context) {
	id := api.RunID(c.Param("runID"))

	st, err := s.engine.GetRunState(id)
	if err == nil {
		c.JSON(http.StatusOK, st)
		return
	}

	if errors.Is(err, engine.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusInternalServerError,
	})
}
