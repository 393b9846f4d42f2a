package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/services"
	"umbraco-cms/pkg/udi"
)

// GetEntity resolves ?id= given as an int, a GUID or a UDI. Document ids
// return the content item; media-file UDIs return the file.
func GetEntity(c *gin.Context) {
	id := c.Query("id")
	store := services.ContentStore{}

	var (
		item *models.ContentItem
		err  error
	)
	if n, ok := helpers.ConvertIDToInt(id); ok {
		item, err = store.ItemByID(n)
	} else if g, ok := helpers.ConvertIDToGUID(id); ok {
		item, err = store.ItemByKey(g)
	} else if u, ok := helpers.ConvertIDToUdi(id); ok {
		if u.EntityType() == udi.MediaFile {
			media, err := services.MediaByUdi(u)
			if err != nil {
				respondError(c, err, "Media not found")
				return
			}
			c.JSON(http.StatusOK, gin.H{"type": udi.MediaFile, "media": media})
			return
		}
		item, err = store.ItemByUdi(u)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognised id"})
		return
	}

	if err != nil {
		respondError(c, err, "Entity not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": udi.Document, "content": item})
}
