// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package model contains the conversation data structures and the per-turn
// streaming message lifecycle.
package model
