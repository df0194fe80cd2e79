package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shorty/internal/adapters/httpapi/dto"
	"shorty/internal/adapters/httpapi/problems"
	"shorty/internal/app/links"
)

type CreateLinkRequest struct {
	TargetURL  string `json:"target_url" validate:"required" example:"https://example.com"`
	Code       string `json:"code" validate:"omitempty,min=4,max=32,alphanum" example:"mycode"`
	TTLSeconds int64  `json:"ttl_seconds" validate:"omitempty,gte=1" example:"3600"`
	OwnerToken string `json:"owner_token" validate:"omitempty,max=128"`
}

type UpdateLinkRequest struct {
	TargetURL string `json:"target_url" validate:"required" example:"https://example.com/updated"`
}

func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest

	if err := bindJSONStrict(c, &req); err != nil {
		badJSON(c)

		return
	}

	req.TargetURL = strings.TrimSpace(req.TargetURL)
	req.Code = strings.TrimSpace(req.Code)

	if errs, ok := validateStruct(req); ok {
		writeValidationErrors(c, errs)

		return
	}

	link, err := h.svc.Create(c.Request.Context(), links.CreateParams{
		TargetURL:  req.TargetURL,
		Code:       req.Code,
		TTL:        time.Duration(req.TTLSeconds) * time.Second,
		OwnerToken: req.OwnerToken,
	})
	if err != nil {
		h.fail(c, err)

		return
	}

	c.Header("Location", fmt.Sprintf("/api/links/%s", link.Code))
	c.JSON(http.StatusCreated, dto.FromDomain(link, h.baseURL))
}

func (h *Handler) DeleteLink(c *gin.Context) {
	code := c.Param("code")

	token := ownerToken(c)
	if strings.TrimSpace(token) == "" {
		writeMissingOwnerToken(c)

		return
	}

	if err := h.svc.Delete(c.Request.Context(), code, token); err != nil {
		h.fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateLink(c *gin.Context) {
	code := c.Param("code")

	token := ownerToken(c)
	if strings.TrimSpace(token) == "" {
		writeMissingOwnerToken(c)

		return
	}

	var req UpdateLinkRequest

	if err := bindJSONStrict(c, &req); err != nil {
		badJSON(c)

		return
	}

	req.TargetURL = strings.TrimSpace(req.TargetURL)

	if errs, ok := validateStruct(req); ok {
		writeValidationErrors(c, errs)

		return
	}

	link, err := h.svc.Update(c.Request.Context(), code, token, req.TargetURL)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, dto.FromDomain(link, h.baseURL))
}

func (h *Handler) ListLinks(c *gin.Context) {
	token := ownerToken(c)
	if strings.TrimSpace(token) == "" {
		writeMissingOwnerToken(c)

		return
	}

	items, err := h.svc.ListByOwner(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err)

		return
	}

	resp := make([]dto.LinkResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, dto.FromDomain(it, h.baseURL))
	}

	c.JSON(http.StatusOK, resp)
}

func writeMissingOwnerToken(c *gin.Context) {
	problems.WriteProblem(c, problems.Problem{
		Type:   problems.ProblemTypeValidation,
		Title:  problems.TitleValidation,
		Status: http.StatusBadRequest,
		Detail: problems.DetailMissingOwnerToken,
	})
}
