package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shorty/internal/adapters/httpapi/problems"
	"shorty/internal/app/links"
	"shorty/internal/domain"
)

// OwnerTokenHeader carries the opaque deletion/update token. It is not an
// authentication scheme.
const OwnerTokenHeader = "X-Owner-Token"

type Handler struct {
	svc     links.UseCase
	baseURL string
}

func New(svc links.UseCase, baseURL string) *Handler {
	return &Handler{svc: svc, baseURL: baseURL}
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errs, ok := validationErrorsFromDomain(err); ok {
		writeValidationErrors(c, errs)

		return
	}

	problems.WriteProblem(c, problemFromError(err))
}

func (h *Handler) NotFound(c *gin.Context) {
	problems.WriteProblem(c, problems.Problem{
		Type:   problems.ProblemTypeNotFound,
		Title:  problems.TitleNotFound,
		Status: http.StatusNotFound,
		Detail: problems.DetailNotFound,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte("pong"))
}

func validationErrorsFromDomain(err error) (map[string]string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return map[string]string{"target_url": problems.DetailInvalidURL}, true
	case errors.Is(err, domain.ErrInvalidCode):
		return map[string]string{"code": problems.DetailInvalidCode}, true
	default:
		return nil, false
	}
}

func ownerToken(c *gin.Context) string {
	return c.GetHeader(OwnerTokenHeader)
}
