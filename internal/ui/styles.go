package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PlayingStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	ScrubBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

// Video surface styles.
var (
	IndicatorStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	IndicatorShowingStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	RingBrightStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	RingFaintStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	PanelBorderStyle = lipgloss.NewStyle().
				Foreground(ColorCyan)

	PanelHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite)

	PanelBodyStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	SeekFilledStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	SeekEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SeekHeadStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)
)
