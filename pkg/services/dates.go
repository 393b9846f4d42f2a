package services

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ServerTimeLayout is how schedule dates travel in server time.
	ServerTimeLayout = "2006-01-02 15:04:05"
	// PickerFormat is the format of the date picker, in moment tokens.
	PickerFormat = "YYYY-MM-DD HH:mm"
)

// DateHelper converts between the user's local time and server time.
type DateHelper struct {
	Server *time.Location
}

func NewDateHelper(server *time.Location) *DateHelper {
	if server == nil {
		server = time.UTC
	}
	return &DateHelper{Server: server}
}

func (h *DateHelper) ConvertToServerTime(local time.Time) time.Time {
	return local.In(h.Server)
}

func (h *DateHelper) ConvertToServerStringTime(local time.Time) string {
	return h.ConvertToServerTime(local).Format(ServerTimeLayout)
}

func (h *DateHelper) ParseServerTime(s string) (time.Time, error) {
	return time.ParseInLocation(ServerTimeLayout, s, h.Server)
}

// ParseLocalDate parses a value typed by a user in loc using a moment-style format.
func (h *DateHelper) ParseLocalDate(s, format string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MomentLayout(format), strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q as %s: %w", s, format, err)
	}
	return t, nil
}

// GetLocalDate renders a server time in the user's zone.
func (h *DateHelper) GetLocalDate(t time.Time, loc *time.Location, format string) string {
	return t.In(loc).Format(MomentLayout(format))
}

var momentTokens = []struct{ moment, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "-07:00"},
}

// MomentLayout translates moment.js format tokens into a Go time layout.
func MomentLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range momentTokens {
			if strings.HasPrefix(format[i:], tok.moment) {
				b.WriteString(tok.layout)
				i += len(tok.moment)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
