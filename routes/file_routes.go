package routes

import (
	"github.com/gin-gonic/gin"

	"storeit/controllers"
	"storeit/middleware"
)

func RegisterFileRoutes(rg *gin.RouterGroup, auth AuthConfig, fileController *controllers.FileController) {
	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(auth.JWTSecret, auth.Issuer))
	{
		files.POST("", fileController.UploadFiles) // multipart files[]
		files.GET("", fileController.GetFiles)     // ?search=&types=&sort=&limit=
		files.DELETE("/:id", fileController.DeleteFile)
		files.PATCH("/:id/rename", fileController.RenameFile)
		files.PUT("/:id/users", fileController.UpdateFileUsers)

		// File access URLs
		files.GET("/:id/download", fileController.DownloadFile)
		files.GET("/:id/preview", fileController.PreviewFile)
		files.POST("/:id/access", fileController.RecordAccess)
	}
}
