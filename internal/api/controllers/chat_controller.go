package controllers

import (
	"net/http"

	"compass/internal/models/request_models"
	"compass/internal/services"
	"compass/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService services.ChatServiceInterface
}

func NewChatController(chatService services.ChatServiceInterface) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// SendMessage godoc
// @Summary Send one chat message and get the applied action back
// @Description Runs one conversational turn: the assistant replies with a structured action that is applied to the session's itinerary before responding.
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.ChatRequest true "Chat message payload"
// @Success 200 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id}/chat [post]
func (ch *ChatController) SendMessage(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req request_models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	turn, err := ch.chatService.HandleTurn(c.Request.Context(), accountId, c.Param("id"), req.Message)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, turn, "Turn completed")
}

// ConfirmItem godoc
// @Summary Confirm a suggested itinerary item
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id}/items/{itemId}/confirm [post]
func (ch *ChatController) ConfirmItem(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	doc, err := ch.chatService.ConfirmItem(c.Request.Context(), accountId, c.Param("id"), c.Param("itemId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, doc, "Item confirmed")
}

// RemoveItem godoc
// @Summary Remove an item that was marked pending removal
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/{id}/items/{itemId} [delete]
func (ch *ChatController) RemoveItem(c *gin.Context) {
	accountId, ok := currentAccountID(c)
	if !ok {
		return
	}

	doc, err := ch.chatService.CompleteRemoval(c.Request.Context(), accountId, c.Param("id"), c.Param("itemId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, doc, "Item removed")
}
