// Package config holds the static configuration of Mission Control.
//
// The stage enumerations and the rater panel live here rather than in
// the engines that use them: the stages and meals packages receive them
// at construction time, so a different family or a different board
// layout only needs a different config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load. They override the config file.
const (
	EnvHome       = "MISSION_CONTROL_HOME"
	EnvConfigFile = "MISSION_CONTROL_CONFIG"
	EnvAddr       = "MISSION_CONTROL_ADDR"
	EnvLogMode    = "MISSION_CONTROL_LOG"
	EnvAPIKey     = "API_KEY"
)

// DefaultAPIKey matches the development key the dashboard shipped with.
const DefaultAPIKey = "dev-key"

// Board describes one staged-entity type: its stage enumeration, its
// optional attributes and how many items a listing returns.
type Board struct {
	// Stages is the fixed, ordered enumeration of stages.
	Stages []string `yaml:"stages"`
	// ActiveStage is the stage the dashboard counts as "in progress".
	ActiveStage string `yaml:"active_stage,omitempty"`
	// ListLimit caps List results. Zero means no cap.
	ListLimit int `yaml:"list_limit,omitempty"`
	// StageListLimit caps ListByStage results. Zero means no cap.
	StageListLimit int `yaml:"stage_list_limit,omitempty"`
	// Attributes maps each optional attribute to its allowed values.
	// An empty list accepts any text.
	Attributes map[string][]string `yaml:"attributes,omitempty"`
	// Required lists attributes that must be supplied on create.
	Required []string `yaml:"required,omitempty"`
}

// Meals configures the rating panel and the ranking.
type Meals struct {
	Raters             []string `yaml:"raters"`
	TopRatedLimit      int      `yaml:"top_rated_limit"`
	RecentRatingsLimit int      `yaml:"recent_ratings_limit"`
}

// Config is the complete application configuration.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	HTTPAddr string `yaml:"http_addr"`
	APIKey   string `yaml:"api_key"`
	LogMode  string `yaml:"log_mode"`

	Tasks         Board    `yaml:"tasks"`
	Content       Board    `yaml:"content"`
	AgentStatuses []string `yaml:"agent_statuses"`
	Meals         Meals    `yaml:"meals"`
	// NoteSearchLimit bounds memory search results.
	NoteSearchLimit int `yaml:"note_search_limit"`
}

// DefaultConfig returns the configuration the dashboard runs with when
// no file or environment overrides are present.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".mission-control"),
		HTTPAddr: ":8080",
		APIKey:   DefaultAPIKey,
		LogMode:  "dev",
		Tasks: Board{
			Stages:      []string{"backlog", "todo", "in_progress", "done"},
			ActiveStage: "in_progress",
			Attributes: map[string][]string{
				"description": nil,
				"assignee":    {"me", "assistant"},
			},
			Required: []string{"assignee"},
		},
		Content: Board{
			Stages:         []string{"idea", "script", "thumbnail", "filming", "published"},
			ListLimit:      100,
			StageListLimit: 50,
			Attributes: map[string][]string{
				"script":        nil,
				"thumbnail_url": nil,
			},
		},
		AgentStatuses: []string{"active", "idle"},
		Meals: Meals{
			Raters:             []string{"Roman", "Harlan", "Pam", "Brian"},
			TopRatedLimit:      5,
			RecentRatingsLimit: 10,
		},
		NoteSearchLimit: 20,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (or $MISSION_CONTROL_CONFIG when path is empty) and environment
// overrides, in that order. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(data); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvHome)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogMode)); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays a YAML document on c. yaml.v3 merges mappings into
// existing maps, so board attribute maps are cleared first and the
// defaults restored only when the document leaves them out.
func (c *Config) decode(data []byte) error {
	tasksAttrs, contentAttrs := c.Tasks.Attributes, c.Content.Attributes
	c.Tasks.Attributes, c.Content.Attributes = nil, nil
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	if c.Tasks.Attributes == nil {
		c.Tasks.Attributes = tasksAttrs
	}
	if c.Content.Attributes == nil {
		c.Content.Attributes = contentAttrs
	}
	return nil
}

// Validate reports the first structural problem in the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	if c.APIKey == "" {
		return errors.New("config: api_key is required")
	}
	if err := c.Tasks.validate("tasks"); err != nil {
		return err
	}
	if err := c.Content.validate("content"); err != nil {
		return err
	}
	if err := uniqueNonEmpty("agent_statuses", c.AgentStatuses); err != nil {
		return err
	}
	if err := uniqueNonEmpty("meals.raters", c.Meals.Raters); err != nil {
		return err
	}
	if c.Meals.TopRatedLimit <= 0 {
		return fmt.Errorf("config: meals.top_rated_limit must be positive, got %d", c.Meals.TopRatedLimit)
	}
	return nil
}

func (b Board) validate(name string) error {
	if err := uniqueNonEmpty(name+".stages", b.Stages); err != nil {
		return err
	}
	if b.ActiveStage != "" && !contains(b.Stages, b.ActiveStage) {
		return fmt.Errorf("config: %s.active_stage %q is not one of its stages", name, b.ActiveStage)
	}
	if b.ListLimit < 0 || b.StageListLimit < 0 {
		return fmt.Errorf("config: %s list limits must not be negative", name)
	}
	for _, attr := range b.Required {
		if _, ok := b.Attributes[attr]; !ok {
			return fmt.Errorf("config: %s requires undeclared attribute %q", name, attr)
		}
	}
	return nil
}

func uniqueNonEmpty(field string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("config: %s must not be empty", field)
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("config: %s contains an empty value", field)
		}
		if seen[v] {
			return fmt.Errorf("config: %s contains %q twice", field, v)
		}
		seen[v] = true
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
