package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Redirect(c *gin.Context) {
	code := c.Param("code")

	target, err := h.svc.Resolve(c.Request.Context(), code)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.Redirect(http.StatusFound, target)
}
