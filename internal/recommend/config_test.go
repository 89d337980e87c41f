// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero min interactions", func(c *Config) { c.Collaborative.MinInteractions = 0 }, true},
		{"one factor", func(c *Config) { c.Collaborative.Factors = 1 }, true},
		{"zero min courses", func(c *Config) { c.Content.MinCourses = 0 }, true},
		{"engagement above 100", func(c *Config) { c.Content.EngagementThreshold = 101 }, true},
		{"negative hybrid weight", func(c *Config) { c.Hybrid.CollaborativeWeight = -0.1 }, true},
		{"zero hybrid weights", func(c *Config) {
			c.Hybrid.CollaborativeWeight = 0
			c.Hybrid.ContentWeight = 0
		}, true},
		{"risk threshold above 1", func(c *Config) { c.Risk.Threshold = 1.5 }, true},
		{"zero enrollment scan", func(c *Config) { c.Risk.MaxEnrollmentScan = 0 }, true},
		{"negative module weight", func(c *Config) { c.Modules.PopularityWeight = -1 }, true},
		{"zero max candidates", func(c *Config) { c.Modules.MaxCandidates = 0 }, true},
		{"zero peer count", func(c *Config) { c.Modules.PeerCount = 0 }, true},
		{"zero popularity cap", func(c *Config) { c.Modules.PopularityCap = 0 }, true},
		{"zero max modules", func(c *Config) { c.Sequence.MaxModules = 0 }, true},
		{"zero model age", func(c *Config) { c.MaxModelAge = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
