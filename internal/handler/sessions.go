package handler

import (
	"net/http"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/apierror"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionsHandler struct {
	coordinator service.OrderCoordinator
}

func NewSessionsHandler(coordinator service.OrderCoordinator) *SessionsHandler {
	return &SessionsHandler{coordinator: coordinator}
}

// ClaimSession godoc
// @Summary      Claim a table session
// @Description  Opens a session on the table for the client token, or confirms the existing one when the token matches. A different token gets a conflict.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body body dto.ClaimSessionRequest true "Table and client token"
// @Success      200  {object} dto.SessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sessions/claim [post]
func (h *SessionsHandler) ClaimSession(c *gin.Context) {
	var req dto.ClaimSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.coordinator.VerifyOrClaimSession(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CloseSession godoc
// @Summary      Close a table session
// @Description  Closes the session and frees the table. Closing an already closed session is a no-op.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session UUID"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sessions/{id}/close [post]
func (h *SessionsHandler) CloseSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	if err := h.coordinator.CloseSession(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
