// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package store provides the bounded, durable conversation store.
//
// The store exclusively owns the sealed message sequence. Persistence is
// best-effort behind a pluggable Backend port: an in-memory backend for
// tests, a file backend with atomic writes, and a SQLite backend. Whatever
// the backend does, in-memory state stays authoritative for the session.
package store
