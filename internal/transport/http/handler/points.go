package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scholarchat/internal/app"
	"scholarchat/internal/transport/http/response"
)

type PointsHandler struct {
	pointsService *app.PointsService
}

type CreditRequest struct {
	UserID  uint    `json:"user_id" binding:"required,gt=0"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Purpose string  `json:"purpose" binding:"max=255"`
}

func NewPointsHandler(pointsService *app.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

func (h *PointsHandler) Balance(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	balance, err := h.pointsService.Balance(userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get balance failed")
		}
		return
	}
	response.OK(c, gin.H{"hasher_points": balance})
}

func (h *PointsHandler) Transactions(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transactions, err := h.pointsService.Transactions(userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list transactions failed")
		return
	}
	response.OK(c, transactions)
}

// Credit is admin-only; the router guards it with a role check.
func (h *PointsHandler) Credit(c *gin.Context) {
	var req CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	balance, err := h.pointsService.Credit(c.Request.Context(), req.UserID, req.Amount, req.Purpose)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "credit failed")
		}
		return
	}
	response.OK(c, gin.H{"user_id": req.UserID, "hasher_points": balance})
}
