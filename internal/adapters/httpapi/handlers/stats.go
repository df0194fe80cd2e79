package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shorty/internal/adapters/httpapi/dto"
)

func (h *Handler) LinkStats(c *gin.Context) {
	code := c.Param("code")

	link, err := h.svc.Stats(c.Request.Context(), code)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, dto.StatsFromDomain(link))
}
