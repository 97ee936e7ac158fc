package tui

// Color constants for tally TUI theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (field labels, user input, titles)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, accent elements, active borders
	ColorAccentBright = "#A78BFA" // Hover, highlights, current step
	ColorHighlight    = "#EAE6FF" // Peak of the selection glint

	// State Colors
	ColorError   = "#EF4444" // Validation errors
	ColorSuccess = "#22C55E" // Success, done tasks
	ColorWarning = "#F59E0B" // Warnings, paused tasks, reminder
)

// statusColor returns the color used for a task status.
func statusColor(status string) string {
	switch status {
	case "active":
		return ColorAccentBright
	case "paused":
		return ColorWarning
	case "done":
		return ColorSuccess
	default:
		return ColorSecondaryText
	}
}
