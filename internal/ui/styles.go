package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette. Adaptive colors keep boxes readable on light terminals.
var (
	PrimaryColor = lipgloss.AdaptiveColor{Light: "#005B8F", Dark: "#2FA4E7"} // borders, titles
	SuccessColor = lipgloss.AdaptiveColor{Light: "#1E7B34", Dark: "#4CC26A"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2665E"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#9A5B00", Dark: "#F5A623"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
	TextColor    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F0F0F0"}
	AccentColor  = lipgloss.AdaptiveColor{Light: "#6A3FB5", Dark: "#B48EF0"} // command names in the monitor
)

const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100 // boxes never grow wider
)

var (
	// HeaderTitleStyle is for the command title (e.g., "NODES")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command line (e.g., "klfctl nodes")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningTitleStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)

	// TableHeaderStyle is for column titles of node and scene tables
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// EventTimeStyle, EventTopicStyle and EventCommandStyle format monitor lines
	EventTimeStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	EventTopicStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Width(11)

	EventCommandStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _ := GetTerminalSize()
	return width
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	return clampWidth(width), height
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// RenderHorizontalDivider creates a horizontal line of the specified width
func RenderHorizontalDivider(width int, char string) string {
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat(char, width))
}
