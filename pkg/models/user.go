package models

import (
	"time"
	_ "time/tzdata"
)

// User is the signed-in back office user.
type User struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Locale   string `json:"locale"`
	TimeZone string `json:"timeZone"`
}

// Location resolves the user's time zone, defaulting to UTC.
func (u *User) Location() *time.Location {
	if u == nil || u.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
