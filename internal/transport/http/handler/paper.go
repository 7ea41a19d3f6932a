package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarchat/internal/app"
	"scholarchat/internal/transport/http/response"
)

type PaperHandler struct {
	paperService *app.PaperService
}

func NewPaperHandler(paperService *app.PaperService) *PaperHandler {
	return &PaperHandler{paperService: paperService}
}

// Upload accepts a multipart form: the PDF under "file" plus the metadata
// fields.
func (h *PaperHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unreadable file")
		return
	}
	defer file.Close()

	var authorIDs []uint
	for _, raw := range strings.Split(c.PostForm("author_ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid author ids")
			return
		}
		authorIDs = append(authorIDs, uint(id))
	}

	paper, err := h.paperService.Upload(app.UploadPaperInput{
		UploaderID: userID,
		Title:      c.PostForm("title"),
		Abstract:   c.PostForm("abstract"),
		Keywords:   c.PostForm("keywords"),
		Journal:    c.PostForm("journal"),
		AuthorIDs:  authorIDs,
		FileName:   fileHeader.Filename,
		FileSize:   fileHeader.Size,
		File:       file,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "only researchers may upload papers")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, paper)
}

func (h *PaperHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	result, err := h.paperService.List(page, perPage)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list papers failed")
		return
	}
	response.OK(c, result)
}

func (h *PaperHandler) Get(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := h.paperService.Get(paperID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPaperNotFound):
			response.Error(c, http.StatusNotFound, response.CodePaperNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get paper failed")
		}
		return
	}
	response.OK(c, paper)
}

func (h *PaperHandler) Download(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := h.paperService.Download(c.Request.Context(), userID, paperID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPaperNotFound):
			response.Error(c, http.StatusNotFound, response.CodePaperNotFound, err.Error())
		case errors.Is(err, app.ErrInsufficientPoints):
			response.Error(c, http.StatusPaymentRequired, response.CodeInsufficientPoints, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "download failed")
		}
		return
	}

	c.FileAttachment(paper.FilePath, paper.FileName)
}

func paperIDParam(c *gin.Context) (uint, bool) {
	paperID64, err := strconv.ParseUint(c.Param("paper_id"), 10, 64)
	if err != nil || paperID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid paper id")
		return 0, false
	}
	return uint(paperID64), true
}
