package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/services"
)

func ListMedia(c *gin.Context) {
	files, err := services.ListMediaFiles(c.Query("collection"))
	if err != nil {
		respondError(c, err, "Failed to list media")
		return
	}
	c.JSON(http.StatusOK, files)
}

func UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	info, err := services.SaveMediaFile(file, c.PostForm("collection"))
	if err != nil {
		respondError(c, err, "Failed to save file")
		return
	}
	c.JSON(http.StatusOK, info)
}

func DeleteMedia(c *gin.Context) {
	var req struct {
		RepoPath string `json:"repo_path"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := services.DeleteMediaFile(req.RepoPath); err != nil {
		respondError(c, err, "Failed to delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func ServeMediaRaw(c *gin.Context) {
	targetPath := c.Query("path")
	if targetPath == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	fullPath := services.SafeJoin(config.RepoPath, "", targetPath)
	if fullPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(fullPath)
}
