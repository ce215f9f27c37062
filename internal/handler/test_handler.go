package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantprep/examgate/internal/backend"
	"github.com/quantprep/examgate/internal/response"
)

// TestHandler proxies read-only test details for the pre-attempt page
// (name, duration, marks, free flag) without opening a session.
type TestHandler struct {
	client *backend.Client
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(client *backend.Client) *TestHandler {
	return &TestHandler{client: client}
}

// Get godoc
// GET /api/v1/tests/:id
func (h *TestHandler) Get(c *gin.Context) {
	test, err := h.client.FetchTest(c.Request.Context(), c.GetHeader("Authorization"), c.Param("id"))
	if err != nil {
		if errors.Is(err, backend.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrBackendUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}
