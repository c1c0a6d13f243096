// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docchat terminal UI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - assistant messages, typing indicator
  - Cyan - key hints, input focus
  - Emerald - backend online
  - Amber - confirmation prompts, busy state
  - Rose - errors and connection loss

Status text is always paired with an ASCII shape cue (StatusIndicators) so it
reads without color.

# Theme System (theme.go)

	theme := styles.NewTheme()
	glamourStyle := theme.GlamourStyle() // "dark", "light" or "notty"

# Usage Example

	statusStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	s := spinner.New(spinner.WithSpinner(styles.DotsSpinner.Bubble()))
*/
package styles
