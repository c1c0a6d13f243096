// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline watches whether the chat backend is reachable.
//
// The Monitor probes the backend host at an interval and reports only
// transitions between Online and Offline. It is a passive notice: nothing is
// queued or retried while offline.
//
// # Key Types
//
//   - Monitor: periodic prober with transition callbacks
//   - Prober: one reachability check (DialProber dials TCP)
//   - Status: StatusUnknown, StatusOnline, StatusOffline
//
// # Usage
//
//	prober, err := offline.NewDialProber(cfg.Client.BaseURL, 3*time.Second)
//	mon := offline.NewMonitor(prober, 10*time.Second, func(s offline.Status) {
//		events <- s
//	})
//	mon.Start(ctx)
//	defer mon.Stop()
package offline
