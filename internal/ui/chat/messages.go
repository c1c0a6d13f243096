// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/offline"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// responseMsg settles the pending submission.
type responseMsg struct {
	answer string
	err    error
}

// UnexpectedErrorMsg reports a failure nothing else handled, such as a panic
// inside the network command.
type UnexpectedErrorMsg struct {
	Cause any
}

// =============================================================================
// EXTERNAL EVENTS
// =============================================================================

// ConnectivityMsg reports a change of backend reachability.
type ConnectivityMsg struct {
	Status offline.Status
}

// ConfigReloadedMsg delivers a configuration that changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// ACTION RESULTS
// =============================================================================

// exportDoneMsg reports the outcome of a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// copyDoneMsg reports the outcome of a clipboard copy.
type copyDoneMsg struct {
	err error
}

// noticeExpiredMsg hides the status notice with the given sequence number.
type noticeExpiredMsg struct {
	seq int
}
