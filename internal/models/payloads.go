package models

import "github.com/google/uuid"

// Payload is the typed data a proposal or direct change carries. The set of
// implementations is closed; each variant belongs to one entity family.
type Payload interface {
	payload()
}

// RobotData is the field set for robot changes.
type RobotData struct {
	Year        int    `json:"year" validate:"required,min=1992,max=2100"`
	Name        string `json:"name" validate:"required,max=100"`
	Game        string `json:"game" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,weburl"`
}

// SponsorData is the field set for sponsor changes.
type SponsorData struct {
	Name         string `json:"name" validate:"required,max=200"`
	Tier         string `json:"tier,omitempty" validate:"max=50"`
	WebsiteURL   string `json:"website_url,omitempty" validate:"omitempty,weburl"`
	LogoURL      string `json:"logo_url,omitempty" validate:"omitempty,weburl"`
	DisplayOrder int    `json:"display_order,omitempty" validate:"min=0"`
}

// ResourceCategoryData is the field set for resource category changes.
type ResourceCategoryData struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	DisplayOrder int    `json:"display_order,omitempty" validate:"min=0"`
}

// ResourceData is the field set for resource changes.
type ResourceData struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	URL         string    `json:"url" validate:"required,weburl"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
}

// SubteamData is the field set for subteam changes.
type SubteamData struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description,omitempty" validate:"max=5000"`
	DisplayOrder int    `json:"display_order,omitempty" validate:"min=0"`
}

// PageData is the field set for page changes.
type PageData struct {
	Title     string `json:"title" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"required,max=100,slug"`
	Content   string `json:"content,omitempty" validate:"max=100000"`
	Published bool   `json:"published,omitempty"`
}

// SlideshowImageData is the field set for slideshow image changes.
type SlideshowImageData struct {
	ImageURL     string `json:"image_url" validate:"required,weburl"`
	Caption      string `json:"caption,omitempty" validate:"max=500"`
	DisplayOrder int    `json:"display_order,omitempty" validate:"min=0"`
}

// DeleteData is carried by deletion changes; a deletion has no new data.
type DeleteData struct{}

func (*RobotData) payload()            {}
func (*SponsorData) payload()          {}
func (*ResourceCategoryData) payload() {}
func (*ResourceData) payload()         {}
func (*SubteamData) payload()          {}
func (*PageData) payload()             {}
func (*SlideshowImageData) payload()   {}
func (*DeleteData) payload()           {}
