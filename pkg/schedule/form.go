package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/services"
)

const (
	KindPublish   = "publish"
	KindUnpublish = "unpublish"

	titleKey = "general_scheduledPublishing"
)

var (
	ErrCannotSchedule  = errors.New("nothing can be scheduled")
	ErrInvalidDates    = errors.New("remove date must be after release date")
	ErrUnknownDateKind = errors.New("unknown date kind")
)

// MandatoryError names the mandatory variant that blocks scheduling.
type MandatoryError struct {
	Variant *models.Variant
}

func (e *MandatoryError) Error() string {
	return fmt.Sprintf("mandatory language %s must be scheduled", e.Variant.Language.Culture)
}

func (e *MandatoryError) Unwrap() error { return ErrCannotSchedule }

// DateRangeError names the variant whose remove date is not after its release date.
type DateRangeError struct {
	Variant *models.Variant
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Variant.Language.Culture, ErrInvalidDates)
}

func (e *DateRangeError) Unwrap() error { return ErrInvalidDates }

// SaveError reports a store failure part way through a submit. The
// variants in Saved were already written.
type SaveError struct {
	Saved  []*models.Variant
	Failed *models.Variant
	Err    error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving schedule of %s (%d saved before): %v", e.Failed.Path, len(e.Saved), e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// SavedPaths lists the files written before the failure.
func (e *SaveError) SavedPaths() []string {
	paths := make([]string, len(e.Saved))
	for i, v := range e.Saved {
		paths[i] = v.Path
	}
	return paths
}

type Localizer interface {
	Localize(ctx context.Context, key string, tokens ...string) string
}

type UserProvider interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

type Store interface {
	SaveSchedule(ctx context.Context, v models.Variant) error
}

// Deps are the collaborators a form needs.
type Deps struct {
	Localizer Localizer
	Users     UserProvider
	Store     Store
	Dates     *services.DateHelper
}

// Model is the state shared with the editor.
type Model struct {
	Path                string            `json:"path"`
	Title               string            `json:"title"`
	Variants            []*models.Variant `json:"variants"`
	DisableSubmitButton bool              `json:"disableSubmitButton"`
}

type DatePickerIcons struct {
	Time string `json:"time"`
	Date string `json:"date"`
	Up   string `json:"up"`
	Down string `json:"down"`
}

type DatePickerConfig struct {
	PickDate   bool            `json:"pickDate"`
	PickTime   bool            `json:"pickTime"`
	UseSeconds bool            `json:"useSeconds"`
	Format     string          `json:"format"`
	Icons      DatePickerIcons `json:"icons"`
}

func defaultDatePickerConfig() DatePickerConfig {
	return DatePickerConfig{
		PickDate: true,
		PickTime: true,
		Format:   services.PickerFormat,
		Icons: DatePickerIcons{
			Time: "icon-time",
			Date: "icon-calendar",
			Up:   "icon-chevron-up",
			Down: "icon-chevron-down",
		},
	}
}

// Form stages release and remove dates for the variants of one item.
// A Form is not safe for concurrent use; Registry serializes access.
type Form struct {
	Model               *Model           `json:"model"`
	HasPristineVariants bool             `json:"hasPristineVariants"`
	CurrentUser         *models.User     `json:"currentUser"`
	DatePickerConfig    DatePickerConfig `json:"datePickerConfig"`

	deps Deps
}

func NewForm(ctx context.Context, model *Model, deps Deps) (*Form, error) {
	if deps.Dates == nil {
		deps.Dates = services.NewDateHelper(nil)
	}
	f := &Form{Model: model, DatePickerConfig: defaultDatePickerConfig(), deps: deps}

	if model.Title == "" && deps.Localizer != nil {
		model.Title = deps.Localizer.Localize(ctx, titleKey)
	}

	for _, v := range model.Variants {
		v.CompositeID = v.Language.Culture + "_" + v.Segment
		v.HTMLID = "_content_variant_" + v.CompositeID
		if !f.HasPristineVariants {
			f.HasPristineVariants = PristineVariantFilter(v)
		}
	}

	if len(model.Variants) > 0 {
		sort.SliceStable(model.Variants, func(i, j int) bool {
			return model.Variants[i].Active && !model.Variants[j].Active
		})
		if active := model.Variants[0]; active.Active {
			active.Schedule = true
			active.Save = true
		}
	}

	user, err := deps.Users.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("schedule form: %w", err)
	}
	f.CurrentUser = user
	for _, v := range model.Variants {
		if v.ReleaseDate != nil || v.RemoveDate != nil {
			f.formatDatesToLocal(v)
		}
	}
	return f, nil
}

// Variant finds a variant by composite id.
func (f *Form) Variant(compositeID string) *models.Variant {
	for _, v := range f.Model.Variants {
		if v.CompositeID == compositeID {
			return v
		}
	}
	return nil
}

// DatePickerChange stores a date picked in the user's zone, given in the
// picker format, as server time. An empty date is ignored.
func (f *Form) DatePickerChange(v *models.Variant, date, kind string) error {
	switch kind {
	case KindPublish:
		return f.setDate(v, date, &v.ReleaseDate)
	case KindUnpublish:
		return f.setDate(v, date, &v.RemoveDate)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDateKind, kind)
	}
}

func (f *Form) setDate(v *models.Variant, date string, dst **time.Time) error {
	if date == "" {
		return nil
	}
	local, err := f.deps.Dates.ParseLocalDate(date, services.PickerFormat, f.CurrentUser.Location())
	if err != nil {
		return err
	}
	server := f.deps.Dates.ConvertToServerTime(local)
	*dst = &server
	f.formatDatesToLocal(v)
	return nil
}

func (f *Form) ClearPublishDate(v *models.Variant) {
	if v != nil && v.ReleaseDate != nil {
		v.ReleaseDate = nil
		v.ReleaseDateFormatted = ""
	}
}

func (f *Form) ClearUnpublishDate(v *models.Variant) {
	if v != nil && v.RemoveDate != nil {
		v.RemoveDate = nil
		v.RemoveDateFormatted = ""
	}
}

func (f *Form) formatDatesToLocal(v *models.Variant) {
	loc := f.CurrentUser.Location()
	if v.ReleaseDate != nil {
		v.ReleaseDateFormatted = f.deps.Dates.GetLocalDate(*v.ReleaseDate, loc, services.PickerFormat)
	}
	if v.RemoveDate != nil {
		v.RemoveDateFormatted = f.deps.Dates.GetLocalDate(*v.RemoveDate, loc, services.PickerFormat)
	}
}

// DirtyVariantFilter reports whether v shows up as schedulable: it is the
// active one, has unsaved edits, or is not plainly published.
func DirtyVariantFilter(v *models.Variant) bool {
	return v.Active || v.IsDirty ||
		v.State == models.StateDraft ||
		v.State == models.StatePublishedPendingChanges ||
		v.State == models.StateNotCreated
}

func PristineVariantFilter(v *models.Variant) bool {
	return !DirtyVariantFilter(v)
}

// ChangeSelection is called after the user toggles v.Schedule.
func (f *Form) ChangeSelection(v *models.Variant) {
	f.Model.DisableSubmitButton = !f.CanSchedule()
	v.Save = v.Schedule
}

// CanSchedule reports whether at least one variant is selected and no
// unpublished mandatory variant is left out.
func (f *Form) CanSchedule() bool {
	return f.check() == nil
}

func (f *Form) check() error {
	selected := 0
	for _, v := range f.Model.Variants {
		unpublished := v.State == models.StateNotCreated || v.State == models.StateDraft
		if v.Language.IsMandatory && unpublished && (!DirtyVariantFilter(v) || !v.Schedule) {
			return &MandatoryError{Variant: v}
		}
		if v.Schedule {
			selected++
		}
	}
	if selected == 0 {
		return ErrCannotSchedule
	}
	return nil
}

// Close resets every selection.
func (f *Form) Close() {
	for _, v := range f.Model.Variants {
		v.Schedule = false
		v.Save = false
	}
}

// Submit persists the dates of every variant marked for saving and
// returns how many were written.
func (f *Form) Submit(ctx context.Context) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	var toSave []*models.Variant
	for _, v := range f.Model.Variants {
		if !v.Save {
			continue
		}
		if v.ReleaseDate != nil && v.RemoveDate != nil && !v.RemoveDate.After(*v.ReleaseDate) {
			return 0, &DateRangeError{Variant: v}
		}
		toSave = append(toSave, v)
	}

	log := logger.WithContext(ctx)
	for i, v := range toSave {
		if err := f.deps.Store.SaveSchedule(ctx, *v); err != nil {
			saveErr := &SaveError{Saved: toSave[:i], Failed: v, Err: err}
			log.Error("schedule partially saved", "path", f.Model.Path, "failed", v.Path, "saved", saveErr.SavedPaths(), "error", err)
			return i, saveErr
		}
		log.Debug("schedule saved", "variant", v.Path,
			"release", f.serverTime(v.ReleaseDate), "remove", f.serverTime(v.RemoveDate))
	}
	log.Info("schedule submitted", "path", f.Model.Path, "variants", len(toSave))
	return len(toSave), nil
}

func (f *Form) serverTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return f.deps.Dates.ConvertToServerStringTime(*t)
}
