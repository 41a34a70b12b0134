package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet"
	"github.com/kode4food/banquet/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service:    banquet.Name,
		Version:    banquet.Version,
		Status:     "healthy",
		ActiveRuns: s.engine.ActiveRuns(),
	})
}
