package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet/pkg/api"
)

func (s *Server) listSteps(c *gin.Context) {
	steps := s.engine.Steps()
	c.JSON(http.StatusOK, api.StepsListResponse{
		Steps: steps,
		Count: len(steps),
	})
}
