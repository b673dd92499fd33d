package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/dupes/internal/config"
)

// Catppuccin Mocha palette. Mutable so [theme] in the config file can
// override it.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorTeal   = lipgloss.Color("#94e2d5")
	ColorMauve  = lipgloss.Color("#cba6f7")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorDim    = lipgloss.Color("#3a4055")
	ColorBright = lipgloss.Color("#cdd6f4")
)

var (
	styleHeader         lipgloss.Style
	styleHeaderLabel    lipgloss.Style
	styleDivider        lipgloss.Style
	styleIconDone       lipgloss.Style
	styleIconFailed     lipgloss.Style
	styleIconActive     lipgloss.Style
	styleIconPending    lipgloss.Style
	styleFilePath       lipgloss.Style
	styleFileDir        lipgloss.Style
	styleHash           lipgloss.Style
	styleSize           lipgloss.Style
	styleWasted         lipgloss.Style
	styleKeybindKey     lipgloss.Style
	styleKeybindLabel   lipgloss.Style
	styleBigNumber      lipgloss.Style
	styleSparkline      lipgloss.Style
	styleRate           lipgloss.Style
	styleProgressFilled lipgloss.Style
	styleStatus         lipgloss.Style
	styleSavePrompt     lipgloss.Style
	styleSaveInput      lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles reconstructs all lipgloss styles from the current color vars.
func rebuildStyles() {
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	styleHeaderLabel = lipgloss.NewStyle().Bold(true).Foreground(ColorMauve)
	styleDivider = lipgloss.NewStyle().Foreground(ColorDim)
	styleIconDone = lipgloss.NewStyle().Foreground(ColorGreen)
	styleIconFailed = lipgloss.NewStyle().Foreground(ColorRed)
	styleIconActive = lipgloss.NewStyle().Foreground(ColorBlue)
	styleIconPending = lipgloss.NewStyle().Foreground(ColorDim)
	styleFilePath = lipgloss.NewStyle().Foreground(ColorBright)
	styleFileDir = lipgloss.NewStyle().Foreground(ColorMuted)
	styleHash = lipgloss.NewStyle().Foreground(ColorMauve)
	styleSize = lipgloss.NewStyle().Foreground(ColorMuted)
	styleWasted = lipgloss.NewStyle().Foreground(ColorYellow)
	styleKeybindKey = lipgloss.NewStyle().Foreground(ColorMauve).Bold(true)
	styleKeybindLabel = lipgloss.NewStyle().Foreground(ColorMuted)
	styleBigNumber = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	styleSparkline = lipgloss.NewStyle().Foreground(ColorBlue)
	styleRate = lipgloss.NewStyle().Foreground(ColorTeal)
	styleProgressFilled = lipgloss.NewStyle().Foreground(ColorGreen)
	styleStatus = lipgloss.NewStyle().Foreground(ColorYellow).Italic(true)
	styleSavePrompt = lipgloss.NewStyle().Foreground(ColorMuted)
	styleSaveInput = lipgloss.NewStyle().Foreground(ColorBright)
}

// ApplyTheme overrides colors from the config file and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	override := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = lipgloss.Color(*v)
		}
	}
	override(&ColorGreen, tc.Green)
	override(&ColorBlue, tc.Blue)
	override(&ColorYellow, tc.Yellow)
	override(&ColorRed, tc.Red)
	override(&ColorTeal, tc.Teal)
	override(&ColorMauve, tc.Mauve)
	override(&ColorMuted, tc.Muted)
	override(&ColorDim, tc.Dim)
	override(&ColorBright, tc.Bright)
	rebuildStyles()
}
