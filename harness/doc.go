// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

// Package harness defines the contract between a conversation adapter
// and the generic test harness that drives it.
//
// The harness speaks one normalized model: [Message], with optional
// [Button], [Media], and [Card] attachments. Adapters translate between
// this model and a vendor protocol behind the [Adapter] interface. The
// transport loop — issuing HTTP calls, receiving inbound payloads, and
// routing each payload to the adapter instance it belongs to — lives
// outside this module; adapters expose Matches so the loop can do the
// routing without protocol knowledge.
//
// [Config] carries the adapter credentials and feature flags. It loads
// from JSONC (the harness's native commented-JSON capability files) or
// YAML via [LoadConfig].
package harness
