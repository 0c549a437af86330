package models

import "github.com/google/uuid"

// Robot is a competition robot shown on the team site.
type Robot struct {
	Record
	Year        int    `json:"year"`
	Name        string `json:"name"`
	Game        string `json:"game"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Sponsor is a team sponsor.
type Sponsor struct {
	Record
	Name         string `json:"name"`
	Tier         string `json:"tier"`
	WebsiteURL   string `json:"website_url"`
	LogoURL      string `json:"logo_url"`
	DisplayOrder int    `json:"display_order"`
}

// ResourceCategory groups resources.
type ResourceCategory struct {
	Record
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// Resource is a link to team documentation or training material.
type Resource struct {
	Record
	CategoryID  uuid.UUID `json:"category_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
}

// Subteam is a functional group within the team.
type Subteam struct {
	Record
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// Page is a free-form content page addressed by slug.
type Page struct {
	Record
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content"` // markdown
	Published bool   `json:"published"`
}

// SlideshowImage is one image in the landing page slideshow.
type SlideshowImage struct {
	Record
	ImageURL     string `json:"image_url"`
	Caption      string `json:"caption"`
	DisplayOrder int    `json:"display_order"`
}
