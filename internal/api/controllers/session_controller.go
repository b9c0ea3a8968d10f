package controllers

import (
	"net/http"
	"strconv"

	"compass/internal/models/request_models"
	"compass/internal/services"
	"compass/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionController struct {
	sessionService services.SessionServiceInterface
}

func NewSessionController(sessionService services.SessionServiceInterface) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

func currentAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token subject")
		return uuid.Nil, false
	}
	return id, true
}

// CreateSession godoc
// @Summary Start a new planning session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body request_models.CreateSessionRequest true "Session payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions [post]
func (s *SessionController) CreateSession(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req request_models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := s.sessionService.CreateSession(c.Request.Context(), accountId, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, session, "Session created successfully")
}

// ListSessions godoc
// @Summary List the account's planning sessions
// @Tags Sessions
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions [get]
func (s *SessionController) ListSessions(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	sessions, err := s.sessionService.ListSessions(c.Request.Context(), accountId, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sessions, "Sessions fetched successfully")
}

// GetSession godoc
// @Summary Get one session with its transcript and itinerary
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id} [get]
func (s *SessionController) GetSession(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	detail, err := s.sessionService.GetSessionDetail(c.Request.Context(), accountId, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, detail, "Session fetched successfully")
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (s *SessionController) DeleteSession(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	if err := s.sessionService.DeleteSession(c.Request.Context(), accountId, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Session deleted successfully")
}

// PublishItinerary godoc
// @Summary Publish or unpublish the session's itinerary to the community page
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param public query bool false "Publish (true) or unpublish (false)"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id}/publish [post]
func (s *SessionController) PublishItinerary(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	public := c.DefaultQuery("public", "true") == "true"

	if err := s.sessionService.PublishItinerary(c.Request.Context(), accountId, c.Param("id"), public); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Itinerary visibility updated")
}
