package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/pkg/api"
	"github.com/kode4food/banquet/pkg/log"
)

// invokeTool dispatches a capability request to the locally bound
// capabilities. Capability-level failures travel in-band as an
// unsuccessful result so remote engines can surface the message
func (s *Server) invokeTool(c *gin.Context) {
	name := api.Capability(c.Param("name"))

	var req api.CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	cl, err := s.bindings.Resolve(name)
	if err != nil {
		if errors.Is(err, client.ErrNotBound) {
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
		return
	}

	out, err := cl.Invoke(c.Request.Context(), req.Arguments, req.Metadata)
	if err != nil {
		slog.Error("Capability failed",
			log.Capability(name),
			log.Error(err))
		c.JSON(http.StatusOK, api.NewResult().WithError(err))
		return
	}
	c.JSON(http.StatusOK, api.NewResult().WithOutputs(out))
}
