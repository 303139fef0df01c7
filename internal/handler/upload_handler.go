package handler

import (
	"net/http"

	"backoffice/internal/apperr"
	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService service.UploadService
}

func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// RegisterRoutes mounts the upload endpoint. Any authenticated user may upload; the files are
// only reachable through records that reference their URLs.
func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/uploads/:type", h.Upload)
}

// Upload stores one or more files and returns their public URLs
// @Summary      Upload files
// @Description  Accepts multipart field "files" (repeatable) or "file". Images are resized and re-encoded.
// @Tags         uploads
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        type   path      string  true   "Upload category, e.g. avatars or complaints"
// @Param        files  formData  file    true   "Files"
// @Success      201    {object}  response.Response{data=[]model.Attachment}
// @Failure      400    {object}  response.Response
// @Router       /api/uploads/{type} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, apperr.Validation("Expected a multipart/form-data body"))
		return
	}
	files := append(form.File["files"], form.File["file"]...)

	attachments, err := h.uploadService.Save(c.Request.Context(), middleware.UserID(c), c.Param("type"), files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attachments))
}
