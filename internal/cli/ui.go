package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treerings/pkg/pipeline"
)

// Terminal colors, ANSI 256. Bark and leaf tones to match the default
// circle palette.
var (
	colorLeaf  = lipgloss.Color("107") // success, new groups
	colorMoss  = lipgloss.Color("65")  // titles, selection
	colorAmber = lipgloss.Color("179") // warnings
	colorRust  = lipgloss.Color("131") // errors
	colorSky   = lipgloss.Color("74")  // links, commands
	colorBone  = lipgloss.Color("254") // values
	colorBark  = lipgloss.Color("244") // secondary text
	colorAsh   = lipgloss.Color("240") // muted text, borders
)

// Exported styles, shared by the commands and the timeline viewer.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorMoss)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorMoss)
	StyleLink      = lipgloss.NewStyle().Foreground(colorSky).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorAsh)
	StyleValue     = lipgloss.NewStyle().Foreground(colorBone)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorLeaf)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorLeaf)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRust)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorBark)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorMoss)
	styleKey         = lipgloss.NewStyle().Foreground(colorBark).Width(10)
	styleCommand     = lipgloss.NewStyle().Foreground(colorSky)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printFrameStats summarizes a pipeline run on one line, e.g.
// "12 frames · 3410 circles · 2 empty skipped · 10 cached".
func printFrameStats(st pipeline.Stats) {
	fmt.Println("  " + frameStatsLine(st))
}

func frameStatsLine(st pipeline.Stats) string {
	parts := []string{StyleDim.Render(fmt.Sprintf("%d frames", st.Frames))}
	if st.Nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d circles", st.Nodes)))
	}
	if st.Skipped > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d empty skipped", st.Skipped)))
	}
	switch {
	case st.Frames > 0 && st.FrameHits == st.Frames:
		parts = append(parts, StyleSuccess.Render("all cached"))
	case st.FrameHits > 0:
		parts = append(parts, StyleSuccess.Render(fmt.Sprintf("%d cached", st.FrameHits)))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
