package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/services"
)

// Surface controller routes carried in the ufprt form field.
const (
	SurfaceController = "ContentSurface"
	UnscheduleAction  = "Unschedule"
	ufprtField        = "ufprt"
)

// SurfaceHandler dispatches posted forms by their encrypted route string,
// so the target of a form cannot be tampered with in the browser.
type SurfaceHandler struct {
	MachineKey   []byte
	Store        services.ContentStore
	Localization *services.Localization
}

func (h *SurfaceHandler) Post(c *gin.Context) {
	rv, err := helpers.DecryptRouteString(h.MachineKey, c.PostForm(ufprtField))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route string"})
		return
	}

	switch {
	case rv.Controller == SurfaceController && rv.Action == UnscheduleAction:
		h.unschedule(c, rv)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown route " + rv.Controller + "/" + rv.Action})
	}
}

// unschedule drops both dates of the variant file named in the route values.
func (h *SurfaceHandler) unschedule(c *gin.Context, rv helpers.RouteValues) {
	ctx := c.Request.Context()
	path := rv.Values["path"]
	item, err := h.Store.Item(path)
	if err != nil {
		respondError(c, err, "Content not found")
		return
	}
	for _, v := range item.Variants {
		if v.Path != path {
			continue
		}
		v.ReleaseDate, v.RemoveDate = nil, nil
		if err := h.Store.SaveSchedule(ctx, v); err != nil {
			respondError(c, err, "Failed to unschedule")
			return
		}
		logger.WithContext(ctx).Info("unscheduled", "path", path)
		c.JSON(http.StatusOK, gin.H{
			"status":  "unscheduled",
			"message": h.Localization.Localize(ctx, "speechBubbles_unscheduled", v.Language.Name),
		})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
}
