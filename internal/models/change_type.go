package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ChangeType tags the kind of mutation a proposal carries.
type ChangeType string

const (
	ChangeSlideshowImage         ChangeType = "slideshow_image"
	ChangeSlideshowImageDelete   ChangeType = "slideshow_image_delete"
	ChangeRobot                  ChangeType = "robot"
	ChangeRobotDelete            ChangeType = "robot_delete"
	ChangeSponsor                ChangeType = "sponsor"
	ChangeSponsorDelete          ChangeType = "sponsor_delete"
	ChangeResource               ChangeType = "resource"
	ChangeResourceDelete         ChangeType = "resource_delete"
	ChangeResourceCategory       ChangeType = "resource_category"
	ChangeResourceCategoryDelete ChangeType = "resource_category_delete"
	ChangeSubteamCreate          ChangeType = "subteam_create"
	ChangeSubteamUpdate          ChangeType = "subteam_update"
	ChangeSubteamDelete          ChangeType = "subteam_delete"
	ChangePage                   ChangeType = "page"
	ChangePageDelete             ChangeType = "page_delete"
)

// Table names of the entity collections proposals can target.
const (
	TableSlideshowImages    = "slideshow_images"
	TableRobots             = "robots"
	TableSponsors           = "sponsors"
	TableResources          = "resources"
	TableResourceCategories = "resource_categories"
	TableSubteams           = "subteams"
	TablePages              = "pages"
)

// Operation is how a change type treats its target.
type Operation int

const (
	// OpUpsert updates the target when one is given, otherwise creates.
	OpUpsert Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

type changeInfo struct {
	table  string
	entity string
	op     Operation
	// newPayload returns a fresh pointer to the variant's data struct.
	newPayload func() Payload
}

var changeTypes = map[ChangeType]changeInfo{
	ChangeSlideshowImage:         {TableSlideshowImages, "slideshow image", OpUpsert, func() Payload { return &SlideshowImageData{} }},
	ChangeSlideshowImageDelete:   {TableSlideshowImages, "slideshow image", OpDelete, func() Payload { return &DeleteData{} }},
	ChangeRobot:                  {TableRobots, "robot", OpUpsert, func() Payload { return &RobotData{} }},
	ChangeRobotDelete:            {TableRobots, "robot", OpDelete, func() Payload { return &DeleteData{} }},
	ChangeSponsor:                {TableSponsors, "sponsor", OpUpsert, func() Payload { return &SponsorData{} }},
	ChangeSponsorDelete:          {TableSponsors, "sponsor", OpDelete, func() Payload { return &DeleteData{} }},
	ChangeResource:               {TableResources, "resource", OpUpsert, func() Payload { return &ResourceData{} }},
	ChangeResourceDelete:         {TableResources, "resource", OpDelete, func() Payload { return &DeleteData{} }},
	ChangeResourceCategory:       {TableResourceCategories, "resource category", OpUpsert, func() Payload { return &ResourceCategoryData{} }},
	ChangeResourceCategoryDelete: {TableResourceCategories, "resource category", OpDelete, func() Payload { return &DeleteData{} }},
	ChangeSubteamCreate:          {TableSubteams, "subteam", OpCreate, func() Payload { return &SubteamData{} }},
	ChangeSubteamUpdate:          {TableSubteams, "subteam", OpUpdate, func() Payload { return &SubteamData{} }},
	ChangeSubteamDelete:          {TableSubteams, "subteam", OpDelete, func() Payload { return &DeleteData{} }},
	ChangePage:                   {TablePages, "page", OpUpsert, func() Payload { return &PageData{} }},
	ChangePageDelete:             {TablePages, "page", OpDelete, func() Payload { return &DeleteData{} }},
}

// ChangeTypes returns every known change type in a stable order.
func ChangeTypes() []ChangeType {
	types := make([]ChangeType, 0, len(changeTypes))
	for t := range changeTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	_, ok := changeTypes[t]
	return ok
}

// Table returns the entity collection the change type targets.
func (t ChangeType) Table() string {
	return changeTypes[t].table
}

// Entity returns a human-readable entity name, e.g. "resource category".
func (t ChangeType) Entity() string {
	return changeTypes[t].entity
}

// Operation returns how the change type treats its target.
func (t ChangeType) Operation() Operation {
	return changeTypes[t].op
}

// IsDelete reports whether the change type removes its target.
func (t ChangeType) IsDelete() bool {
	return t.Valid() && changeTypes[t].op == OpDelete
}

// DecodePayload decodes raw proposed data into the variant for t.
// Deletions carry no data, so their raw payload is ignored.
func DecodePayload(t ChangeType, raw json.RawMessage) (Payload, error) {
	info, ok := changeTypes[t]
	if !ok {
		return nil, fmt.Errorf("unknown change type %q", t)
	}
	p := info.newPayload()
	if info.op == OpDelete {
		return p, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}
