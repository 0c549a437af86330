package models

import "time"

// SiteSetting is a key/value pair shown on the public site.
type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
