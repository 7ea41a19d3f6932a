package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarchat/internal/app"
	"scholarchat/internal/transport/http/response"
)

type FeedbackHandler struct {
	feedbackService *app.FeedbackService
}

type CreateFeedbackRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

func NewFeedbackHandler(feedbackService *app.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	feedback, balance, err := h.feedbackService.Create(c.Request.Context(), app.CreateFeedbackInput{
		PaperID:    paperID,
		ReviewerID: userID,
		Content:    req.Content,
		Rating:     req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrPaperNotFound):
			response.Error(c, http.StatusNotFound, response.CodePaperNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create feedback failed")
		}
		return
	}

	response.OK(c, gin.H{"feedback": feedback, "hasher_points": balance})
}

func (h *FeedbackHandler) List(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	feedback, err := h.feedbackService.List(paperID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list feedback failed")
		return
	}
	response.OK(c, feedback)
}
