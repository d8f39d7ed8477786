// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package api provides the HTTP client for the Recipe RAG backend.
//
// The backend exposes a streaming query call, a statistics call, and a
// health call, and is otherwise opaque. This package
// owns the wire protocol: the SSE frame decoder that turns byte buffers into
// StreamEvents, the error taxonomy used for retry decisions, and the bounded
// retry controller.
package api
