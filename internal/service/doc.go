// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package service wraps the long-running parts of Pathwise as
// suture-supervised services: the periodic model refresher and the HTTP
// server. Each wrapper translates its component's lifecycle into suture's
// context-aware Serve contract so crashes restart in isolation.
package service
