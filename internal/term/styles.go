package term

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// HeadingStyle is used for item and column headings.
	HeadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")). // Light purple
			Bold(true)

	// LabelStyle is used for field names.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")) // Light blue

	// ValueStyle is used for field values and card notes.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// DimStyle is used for secondary details such as dates and counts.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray

	// ClosedStyle is used for closed projects.
	ClosedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red
)
