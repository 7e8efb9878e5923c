package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"storeit/models"
	"storeit/services"
	"storeit/utils"
)

// FileOperator is the tracked file API the controller drives.
type FileOperator interface {
	services.FileOperations
	LogFileAccess(ctx context.Context, fileID, fileName string, action models.Action)
}

type FileController struct {
	files FileOperator
}

func NewFileController(files FileOperator) *FileController {
	return &FileController{files: files}
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

type updateUsersRequest struct {
	Emails []string `json:"emails"`
}

type fileAccessRequest struct {
	FileName string `json:"file_name"`
	Action   string `json:"action" binding:"required"`
}

func (fc *FileController) UploadFiles(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", nil)
		return
	}

	headers := form.File["files[]"]
	if len(headers) == 0 {
		utils.BadRequestResponse(c, "No files provided", nil)
		return
	}

	uploaded := make([]models.File, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to read file "+header.Filename, nil)
			return
		}

		result, err := fc.files.UploadFile(c.Request.Context(), user, services.FileUpload{
			Name:    header.Filename,
			Size:    header.Size,
			Content: file,
		})
		file.Close()
		if err != nil {
			respondFileError(c, err, "Failed to upload "+header.Filename)
			return
		}
		uploaded = append(uploaded, *result)
	}

	utils.CreatedResponse(c, "Files uploaded successfully", uploaded)
}

// GetFiles lists and searches the caller's files.
func (fc *FileController) GetFiles(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	query := services.FileQuery{
		Search: c.Query("search"),
		Types:  utils.SplitList(c.Query("types")),
		Sort:   c.Query("sort"),
		Limit:  utils.ParseLimit(c.Query("limit"), 0),
	}

	list, err := fc.files.GetFiles(c.Request.Context(), user, query)
	if err != nil {
		respondFileError(c, err, "Failed to get files")
		return
	}

	utils.SuccessResponse(c, "Files retrieved", list)
}

func (fc *FileController) RenameFile(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := fc.files.RenameFile(c.Request.Context(), user, c.Param("id"), req.Name)
	if err != nil {
		respondFileError(c, err, "Failed to rename file")
		return
	}

	utils.SuccessResponse(c, "File renamed successfully", result)
}

func (fc *FileController) UpdateFileUsers(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req updateUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	file, err := fc.files.UpdateFileUsers(c.Request.Context(), user, c.Param("id"), req.Emails)
	if err != nil {
		respondFileError(c, err, "Failed to update file users")
		return
	}

	utils.SuccessResponse(c, "File shared successfully", file)
}

func (fc *FileController) DeleteFile(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := fc.files.DeleteFile(c.Request.Context(), user, c.Param("id")); err != nil {
		respondFileError(c, err, "Failed to delete file")
		return
	}

	utils.SuccessResponse(c, "File deleted successfully", nil)
}

func (fc *FileController) DownloadFile(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	url, err := fc.files.GetDownloadURL(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondFileError(c, err, "Failed to generate download URL")
		return
	}

	utils.SuccessResponse(c, "Download URL generated", url)
}

func (fc *FileController) PreviewFile(c *gin.Context) {
	user, ok := utils.SessionUserFromContext(c.Request.Context())
	if !ok {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	url, err := fc.files.GetPreviewURL(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondFileError(c, err, "Failed to generate preview URL")
		return
	}

	utils.SuccessResponse(c, "Preview URL generated", url)
}

// RecordAccess logs a download or view the client performed directly.
func (fc *FileController) RecordAccess(c *gin.Context) {
	var req fileAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	action := models.Action(req.Action)
	if action != models.ActionDownload && action != models.ActionView {
		utils.BadRequestResponse(c, "Invalid action", fmt.Sprintf("unsupported action %q", req.Action))
		return
	}

	fc.files.LogFileAccess(c.Request.Context(), c.Param("id"), req.FileName, action)
	utils.SuccessResponse(c, "Access recorded", nil)
}

func respondFileError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		utils.NotFoundResponse(c, "File not found")
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "Insufficient permissions")
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.InsufficientStorageResponse(c, "Upload would exceed storage limit")
	case errors.Is(err, utils.ErrFileTooLarge):
		utils.PayloadTooLargeResponse(c, "File exceeds the maximum upload size")
	case errors.Is(err, services.ErrInvalidFile):
		utils.BadRequestResponse(c, "Invalid file", err.Error())
	default:
		utils.InternalServerErrorResponse(c, fallback, nil)
	}
}
