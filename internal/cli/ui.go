package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsterling/ownerchart/pkg/ownership"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// Entity colors, matching the diagram class colors so the list and the
// diagram read as the same legend. Unknown types get the neutral gray used
// for list markers only; the diagram leaves them unclassed.
var (
	colorUKCompany    = lipgloss.Color("#3B82F6")
	colorNonUKCompany = lipgloss.Color("#EF4444")
	colorIndividual   = lipgloss.Color("#10B981")
	colorUnknownType  = lipgloss.Color("#6B7280")
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleNodeError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconDot     = "●"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// entityMarker renders the colored type marker for a node.
func entityMarker(t ownership.EntityType) string {
	var c lipgloss.Color
	switch t.Normalize() {
	case ownership.TypeUKCompany:
		c = colorUKCompany
	case ownership.TypeNonUKCompany:
		c = colorNonUKCompany
	case ownership.TypeIndividual:
		c = colorIndividual
	default:
		c = colorUnknownType
	}
	return lipgloss.NewStyle().Foreground(c).Render(iconDot)
}

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints resolution statistics on a single line.
func printStats(totalNodes int, processingTime string, errorCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d entities", totalNodes),
		processingTime,
	}
	if errorCount > 0 {
		parts = append(parts, styleNodeError.Render(fmt.Sprintf("%d errors", errorCount)))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// =============================================================================
// Outline Display
// =============================================================================

// formatRow renders one outline row: indented marker, name, metadata.
func formatRow(r ownership.Row) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.Depth))
	b.WriteString(entityMarker(r.Type))
	b.WriteString(" ")
	b.WriteString(StyleValue.Render(r.Name))

	var meta []string
	if r.CompanyNumber != "" {
		meta = append(meta, r.CompanyNumber)
	}
	if r.CountryOfResidence != "" {
		meta = append(meta, r.CountryOfResidence)
	}
	if len(r.NatureOfControl) > 0 {
		meta = append(meta, strings.Join(r.NatureOfControl, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(" " + StyleDim.Render(strings.Join(meta, " · ")))
	}
	if r.Error != "" {
		b.WriteString(" " + styleNodeError.Render("("+r.Error+")"))
	}
	return b.String()
}

// printOutline prints the flattened ownership tree.
func printOutline(rows []ownership.Row) {
	for _, r := range rows {
		fmt.Println(formatRow(r))
	}
}
