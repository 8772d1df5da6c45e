// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config holds the adapter credentials and conversation parameters.
// ClientID, ClientSecret, and AccountID are required; everything else
// is optional. CampaignID and EngagementID must be supplied as a pair
// or not at all — a lone half never reaches the wire.
type Config struct {
	// ClientID identifies the API application.
	ClientID string `json:"client_id" yaml:"client_id"`

	// ClientSecret authenticates the API application.
	ClientSecret string `json:"client_secret" yaml:"client_secret"`

	// AccountID is the vendor account (brand) identifier.
	AccountID string `json:"account_id" yaml:"account_id"`

	// SkillID is a read-only routing hint surfaced to assertions; the
	// adapter never enforces it.
	SkillID string `json:"skill_id,omitempty" yaml:"skill_id,omitempty"`

	// CampaignID and EngagementID select a routing campaign. Both or
	// neither.
	CampaignID   string `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	EngagementID string `json:"engagement_id,omitempty" yaml:"engagement_id,omitempty"`

	// ExtConsumerID is the external consumer identity the conversation
	// runs on behalf of. Generated when absent.
	ExtConsumerID string `json:"ext_consumer_id,omitempty" yaml:"ext_consumer_id,omitempty"`

	// UserProfile fields are merged over an empty default profile and
	// set at conversation open.
	UserProfile map[string]any `json:"user_profile,omitempty" yaml:"user_profile,omitempty"`

	// Features toggles the client capabilities announced per send.
	Features Features `json:"features,omitempty" yaml:"features,omitempty"`
}

// Features are the client capabilities announced to the platform.
type Features struct {
	AutoMessages bool `json:"auto_messages,omitempty" yaml:"auto_messages,omitempty"`
	QuickReplies bool `json:"quick_replies,omitempty" yaml:"quick_replies,omitempty"`
	RichContent  bool `json:"rich_content,omitempty" yaml:"rich_content,omitempty"`
	MultiDialog  bool `json:"multi_dialog,omitempty" yaml:"multi_dialog,omitempty"`
}

// Validate checks required fields and the campaign/engagement pairing.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("harness: client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("harness: client_secret is required")
	}
	if c.AccountID == "" {
		return fmt.Errorf("harness: account_id is required")
	}
	if (c.CampaignID == "") != (c.EngagementID == "") {
		return fmt.Errorf("harness: campaign_id and engagement_id must be supplied together")
	}
	return nil
}

// ApplyDefaults fills generated fields: a fresh external consumer
// identity when none was configured.
func (c *Config) ApplyDefaults() {
	if c.ExtConsumerID == "" {
		c.ExtConsumerID = uuid.NewString()
	}
}

// LoadConfig reads a Config from path. The format follows the file
// extension: .json/.jsonc files may contain // comments, /* blocks */,
// and trailing commas; .yaml/.yml files are plain YAML. The loaded
// config is validated and defaulted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: reading config: %w", err)
	}

	var config Config
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
			return nil, fmt.Errorf("harness: parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("harness: parsing config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("harness: unsupported config extension %q (want .json, .jsonc, .yaml, or .yml)", extension)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	return &config, nil
}
