// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for askme.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.askme/config.toml
//   - ~/.askme/config.json
//   - Built-in defaults
//
// Environment overrides (applied last):
//   - ASKME_SERVER_URL: overrides server.url
//   - ASKME_TIMEOUT_SECONDS: overrides server.timeout_seconds
//   - ASKME_THEME: overrides ui.theme
package config
