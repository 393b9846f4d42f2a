package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/schedule"
	"umbraco-cms/pkg/services"
)

var errVariantNotFound = errors.New("variant not found")

// ScheduleHandler serves the scheduled publishing form. Forms live in
// Forms between requests and are addressed by the id Open returns.
type ScheduleHandler struct {
	Forms        *schedule.Registry
	Localization *services.Localization
	Users        services.UserService
	Store        services.ContentStore
	Dates        *services.DateHelper
	MachineKey   []byte
}

type variantRequest struct {
	Variant  string `json:"variant" binding:"required"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	Schedule bool   `json:"schedule"`
}

func (h *ScheduleHandler) deps() schedule.Deps {
	return schedule.Deps{
		Localizer: h.Localization,
		Users:     h.Users,
		Store:     h.Store,
		Dates:     h.Dates,
	}
}

// Open builds a form for ?path= with ?culture= as the active variant.
func (h *ScheduleHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := h.Store.Item(c.Query("path"))
	if err != nil {
		respondError(c, err, "Content not found")
		return
	}

	culture := c.Query("culture")
	if culture == "" {
		if cfg, err := services.GetCMSConfig(); err == nil {
			if def, ok := cfg.DefaultLanguage(); ok {
				culture = def.Culture
			}
		}
	}

	variants := make([]*models.Variant, len(item.Variants))
	for i := range item.Variants {
		v := item.Variants[i]
		v.Active = models.SameCulture(v.Language.Culture, culture)
		variants[i] = &v
	}

	form, err := schedule.NewForm(ctx, &schedule.Model{Path: item.Path, Variants: variants}, h.deps())
	if err != nil {
		respondError(c, err, "Failed to open schedule")
		return
	}
	id := h.Forms.Open(currentLogin(c), form)

	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"form":       form,
		"unschedule": h.unscheduleTokens(c, variants),
	})
}

// unscheduleTokens returns, per composite id, a ufprt value that posts
// back to the surface controller to drop a saved schedule.
func (h *ScheduleHandler) unscheduleTokens(c *gin.Context, variants []*models.Variant) map[string]string {
	tokens := make(map[string]string)
	for _, v := range variants {
		if v.State == models.StateNotCreated || (v.ReleaseDate == nil && v.RemoveDate == nil) {
			continue
		}
		token, err := helpers.CreateEncryptedRouteString(h.MachineKey, SurfaceController, UnscheduleAction, "",
			map[string]interface{}{"path": v.Path})
		if err != nil {
			logger.WithContext(c.Request.Context()).Debug("no unschedule token", "path", v.Path, "error", err)
			return nil
		}
		tokens[v.CompositeID] = token
	}
	return tokens
}

// update applies fn to the variant named in the request and returns the form.
func (h *ScheduleHandler) update(c *gin.Context, fn func(*schedule.Form, *models.Variant, variantRequest) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
		return
	}
	var req variantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	var body []byte
	err = h.Forms.With(id, currentLogin(c), func(f *schedule.Form) error {
		v := f.Variant(req.Variant)
		if v == nil {
			return errVariantNotFound
		}
		if err := fn(f, v, req); err != nil {
			return err
		}
		body, err = json.Marshal(f)
		return err
	})

	switch {
	case err == nil:
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	case errors.Is(err, schedule.ErrFormNotFound), errors.Is(err, errVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *ScheduleHandler) SetDate(c *gin.Context) {
	h.update(c, func(f *schedule.Form, v *models.Variant, req variantRequest) error {
		return f.DatePickerChange(v, req.Date, req.Kind)
	})
}

func (h *ScheduleHandler) ClearDate(c *gin.Context) {
	h.update(c, func(f *schedule.Form, v *models.Variant, req variantRequest) error {
		switch req.Kind {
		case schedule.KindPublish:
			f.ClearPublishDate(v)
		case schedule.KindUnpublish:
			f.ClearUnpublishDate(v)
		default:
			return schedule.ErrUnknownDateKind
		}
		return nil
	})
}

func (h *ScheduleHandler) Select(c *gin.Context) {
	h.update(c, func(f *schedule.Form, v *models.Variant, req variantRequest) error {
		v.Schedule = req.Schedule
		f.ChangeSelection(v)
		return nil
	})
}

// Submit saves the selected schedules and closes the form.
func (h *ScheduleHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
		return
	}
	login := currentLogin(c)

	var saved int
	err = h.Forms.With(id, login, func(f *schedule.Form) error {
		saved, err = f.Submit(ctx)
		return err
	})

	var (
		mandatory *schedule.MandatoryError
		dateRange *schedule.DateRangeError
		saveErr   *schedule.SaveError
	)
	switch {
	case err == nil:
		_ = h.Forms.Close(id, login)
		c.JSON(http.StatusOK, gin.H{
			"status":  "scheduled",
			"saved":   saved,
			"message": h.Localization.Localize(ctx, "speechBubbles_scheduleSaved", strconv.Itoa(saved)),
		})
	case errors.Is(err, schedule.ErrFormNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &mandatory):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Localization.Localize(ctx,
			"content_mandatoryLanguageMissing", mandatory.Variant.Language.Name)})
	case errors.As(err, &dateRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Localization.Localize(ctx,
			"content_scheduleDatesInvalid", dateRange.Variant.Language.Name)})
	case errors.Is(err, schedule.ErrCannotSchedule):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Localization.Localize(ctx, "content_scheduleNothingSelected")})
	case errors.As(err, &saveErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to save schedule",
			"saved":  saveErr.SavedPaths(),
			"failed": saveErr.Failed.Path,
		})
	default:
		respondError(c, err, "Failed to save schedule")
	}
}

func (h *ScheduleHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err == nil {
		err = h.Forms.Close(id, currentLogin(c))
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
