// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package util provides small shared helpers for the recipechat application:
// atomic file writes, Unicode-aware string truncation, and numeric formatting.
package util
