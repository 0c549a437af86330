package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestChangeType_Table(t *testing.T) {
	tests := []struct {
		changeType ChangeType
		table      string
	}{
		{ChangeSlideshowImage, TableSlideshowImages},
		{ChangeSlideshowImageDelete, TableSlideshowImages},
		{ChangeRobot, TableRobots},
		{ChangeRobotDelete, TableRobots},
		{ChangeSponsor, TableSponsors},
		{ChangeSponsorDelete, TableSponsors},
		{ChangeResource, TableResources},
		{ChangeResourceDelete, TableResources},
		{ChangeResourceCategory, TableResourceCategories},
		{ChangeResourceCategoryDelete, TableResourceCategories},
		{ChangeSubteamCreate, TableSubteams},
		{ChangeSubteamUpdate, TableSubteams},
		{ChangeSubteamDelete, TableSubteams},
		{ChangePage, TablePages},
		{ChangePageDelete, TablePages},
	}

	if len(tests) != len(ChangeTypes()) {
		t.Fatalf("table covers %d change types, want %d", len(tests), len(ChangeTypes()))
	}
	for _, tt := range tests {
		t.Run(string(tt.changeType), func(t *testing.T) {
			if got := tt.changeType.Table(); got != tt.table {
				t.Errorf("Table() = %q, want %q", got, tt.table)
			}
		})
	}
}

func TestChangeType_Valid(t *testing.T) {
	if ChangeType("robot_create").Valid() {
		t.Error("robot_create should not be a valid change type")
	}
	if !ChangeRobotDelete.IsDelete() {
		t.Error("robot_delete should be a delete")
	}
	if ChangeSubteamUpdate.IsDelete() {
		t.Error("subteam_update should not be a delete")
	}
}

func TestDecodePayload(t *testing.T) {
	catID := uuid.New()
	raw := json.RawMessage(`{"category_id":"` + catID.String() + `","title":"CAD guide","url":"https://example.com/cad"}`)

	p, err := DecodePayload(ChangeResource, raw)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	data, ok := p.(*ResourceData)
	if !ok {
		t.Fatalf("DecodePayload() = %T, want *ResourceData", p)
	}
	if data.CategoryID != catID || data.Title != "CAD guide" {
		t.Errorf("DecodePayload() = %+v", data)
	}

	// Deletions ignore whatever data was sent.
	p, err = DecodePayload(ChangeRobotDelete, json.RawMessage(`{"junk":true}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if _, ok := p.(*DeleteData); !ok {
		t.Errorf("DecodePayload() = %T, want *DeleteData", p)
	}

	if _, err := DecodePayload(ChangeRobot, json.RawMessage(`{"year":"soon"}`)); err == nil {
		t.Error("expected error for mistyped year")
	}
	if _, err := DecodePayload("bogus", nil); err == nil {
		t.Error("expected error for unknown change type")
	}
}
