// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package config loads layered service configuration: built-in defaults,
// an optional YAML file and environment variable overrides, in rising
// precedence.
package config
