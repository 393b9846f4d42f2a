package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/services"
)

const defaultExcerptLength = 200

func HandleBuild(c *gin.Context) {
	log, err := services.BuildSite(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": log})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": log})
}

func HandleSync(c *gin.Context) {
	log, err := services.SyncRepo(c.Request.Context(), accessToken(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": log})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": log})
}

func HandlePublish(c *gin.Context) {
	log, err := services.PublishRepo(c.Request.Context(), accessToken(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": log})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": log})
}

func ListContent(c *gin.Context) {
	items, err := services.ContentStore{}.List()
	if err != nil {
		respondError(c, err, "Failed to fetch content")
		return
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	c.JSON(http.StatusOK, items)
}

// GetDocument returns one variant file, e.g. ?path=posts/hello.da.md.
func GetDocument(c *gin.Context) {
	doc, err := services.ReadDocument(c.Query("path"))
	if err != nil {
		respondError(c, err, "File not found")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func SaveDocument(c *gin.Context) {
	var doc models.Document
	if err := c.BindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := services.WriteDocument(&doc); err != nil {
		respondError(c, err, "Save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// CreateContent runs `hugo new` for a path, or creates the missing variant
// of an item when a culture is given.
func CreateContent(c *gin.Context) {
	var req struct {
		Path    string `json:"path"`
		Culture string `json:"culture"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.Path == "" || strings.Contains(req.Path, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path"})
		return
	}

	ctx := c.Request.Context()
	var (
		log string
		err error
	)
	if req.Culture != "" {
		var item *models.ContentItem
		item, err = services.ContentStore{}.Item(req.Path)
		if err != nil {
			respondError(c, err, "Unknown item")
			return
		}
		log, err = services.CreateVariant(ctx, item, req.Culture)
	} else {
		log, err = services.CreateContent(ctx, req.Path)
	}
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, os.ErrExist) {
			c.JSON(http.StatusConflict, gin.H{"error": log})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Hugo new failed", "log": log})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "created", "log": log})
}

// GetExcerpt returns a sanitized, truncated preview of a variant's body.
// ?words= truncates by words instead of characters.
func GetExcerpt(c *gin.Context) {
	doc, err := services.ReadDocument(c.Query("path"))
	if err != nil {
		respondError(c, err, "File not found")
		return
	}
	body := doc.Body
	if doc.FrontMatter == nil {
		body = doc.Content
	}

	if w := c.Query("words"); w != "" {
		words, err := strconv.Atoi(w)
		if err != nil || words < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid words"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"excerpt": helpers.TruncateByWords(helpers.StripHTML(helpers.Sanitize(body)), words)})
		return
	}

	length := defaultExcerptLength
	if l := c.Query("length"); l != "" {
		length, err = strconv.Atoi(l)
		if err != nil || length < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid length"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"excerpt": helpers.Excerpt(body, length)})
}

func GetDiff(c *gin.Context) {
	var doc models.Document
	if err := c.BindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	fullPath := services.SafeJoin(config.RepoPath, "content", doc.Path)
	if fullPath == "" || doc.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path"})
		return
	}

	currentContent, err := os.ReadFile(fullPath)
	if err != nil {
		currentContent = []byte("")
	}
	if len(currentContent) > 0 {
		fm, body, format, err := services.ParseFrontMatter(currentContent)
		if err == nil {
			if normalized, err := services.ConstructFileContent(fm, body, format); err == nil {
				currentContent = normalized
			}
		}
	}

	var newContent []byte
	if doc.FrontMatter != nil {
		newContent, err = services.ConstructFileContent(doc.FrontMatter, doc.Body, doc.Format)
		if err != nil {
			respondError(c, err, "Construction failed")
			return
		}
	} else {
		newContent = []byte(doc.Content)
	}

	f1, err := writeTemp("diff_old_*", currentContent)
	if err != nil {
		respondError(c, err, "Diff failed")
		return
	}
	defer os.Remove(f1)
	f2, err := writeTemp("diff_new_*", newContent)
	if err != nil {
		respondError(c, err, "Diff failed")
		return
	}
	defer os.Remove(f2)

	relPath := filepath.Join("content", doc.Path)
	diffStr, diffType := services.Diff(c.Request.Context(), f1, f2, relPath)
	c.JSON(http.StatusOK, gin.H{"diff": diffStr, "type": diffType})
}

func writeTemp(pattern string, content []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func GetConfig(c *gin.Context) {
	cfg, err := services.GetConfig()
	if err != nil {
		respondError(c, err, "Failed to parse config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetLanguages returns the configured languages.
func GetLanguages(c *gin.Context) {
	cfg, err := services.GetCMSConfig()
	if err != nil {
		respondError(c, err, "Failed to parse config")
		return
	}
	c.JSON(http.StatusOK, cfg.Languages)
}
