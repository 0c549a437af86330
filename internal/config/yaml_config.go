package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"teamhub/internal/models"
)

// YAMLConfig represents the structure of the config.yaml file.
// Structured settings that are awkward to express as env vars live here.
type YAMLConfig struct {
	Outreach OutreachConfig   `yaml:"outreach"`
	Users    []SeedUserConfig `yaml:"users"`
}

// OutreachConfig overrides the base points per participation role.
type OutreachConfig struct {
	Points map[string]int `yaml:"points"` // role -> base points
}

// SeedUserConfig defines a user created at startup if missing.
type SeedUserConfig struct {
	ID                string `yaml:"id"`
	Email             string `yaml:"email"`
	Name              string `yaml:"name"`
	Role              string `yaml:"role"`
	MaintenanceAccess bool   `yaml:"maintenance_access"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadYAMLFile(path)
}

// LoadYAMLFile parses and validates the YAML config at path.
func LoadYAMLFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for role, pts := range cfg.Outreach.Points {
		if !models.ValidOutreachRole(role) {
			return nil, fmt.Errorf("outreach.points: unknown role %q", role)
		}
		if pts < 0 {
			return nil, fmt.Errorf("outreach.points.%s: must not be negative", role)
		}
	}
	for i := range cfg.Users {
		u := &cfg.Users[i]
		if u.Role == "" {
			u.Role = models.RoleStudent
		}
		if !models.ValidRole(u.Role) {
			return nil, fmt.Errorf("users[%d]: unknown role %q", i, u.Role)
		}
		if _, err := uuid.Parse(u.ID); err != nil {
			return nil, fmt.Errorf("users[%d]: invalid id %q", i, u.ID)
		}
	}

	return &cfg, nil
}

// OutreachPoints returns the configured base points, or nil when none are set.
func (c *YAMLConfig) OutreachPoints() map[string]int {
	if c == nil {
		return nil
	}
	return c.Outreach.Points
}

// SeedUsers converts the configured users into models.
func (c *YAMLConfig) SeedUsers() []models.User {
	if c == nil {
		return nil
	}
	out := make([]models.User, 0, len(c.Users))
	for _, u := range c.Users {
		out = append(out, models.User{
			Record:            models.Record{ID: uuid.MustParse(u.ID)},
			Email:             u.Email,
			Name:              u.Name,
			Role:              u.Role,
			MaintenanceAccess: u.MaintenanceAccess,
		})
	}
	return out
}
