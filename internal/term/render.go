// Package term renders projects and items as plain terminal output for
// the non-interactive CLI commands.
package term

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/h0rv/gpx/internal/domain"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// minWidth keeps wrapping sane on very narrow terminals.
const minWidth = 20

// Renderer writes styled text to an output.
type Renderer struct {
	w     io.Writer
	width int
}

// NewRenderer creates a Renderer wrapping text at width columns.
func NewRenderer(w io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	return &Renderer{w: w, width: width}
}

// Projects writes one line per project: status, number, title and creation date.
func (r *Renderer) Projects(login string, projects []domain.Project, total int) error {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Projects of %s", login)))
	b.WriteString("\n")

	for _, p := range projects {
		date := p.FormattedDate()
		number := fmt.Sprintf("#%d", p.Number)

		// status + space + number + space + title + two spaces + date
		avail := r.width - 2 - len(number) - 1 - 2 - len(date)
		title := truncate(p.Title, avail)

		style := ValueStyle
		if p.Closed {
			style = ClosedStyle
		}
		b.WriteString(p.StatusEmoji())
		b.WriteString(" ")
		b.WriteString(HeadingStyle.Render(number))
		b.WriteString(" ")
		b.WriteString(style.Render(title))
		b.WriteString("  ")
		b.WriteString(DimStyle.Render(date))
		b.WriteString("\n")
	}

	if total > len(projects) {
		b.WriteString(DimStyle.Render(fmt.Sprintf("showing %d of %d projects", len(projects), total)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// ProjectDetails writes a project's title, its description and every item
// with its field values. Values of unmodeled kinds are skipped.
func (r *Renderer) ProjectDetails(d domain.ProjectDetails) error {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(wordwrap.String(d.Title, r.width)))
	b.WriteString("\n")
	if d.ShortDescription != nil && *d.ShortDescription != "" {
		b.WriteString(ValueStyle.Render(wordwrap.String(*d.ShortDescription, r.width)))
		b.WriteString("\n\n")
	}

	if len(d.Items) == 0 {
		b.WriteString(DimStyle.Render("No items"))
		b.WriteString("\n")
	}

	for _, item := range d.Items {
		r.writeItem(&b, item)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Item writes a single item.
func (r *Renderer) Item(item domain.Item) error {
	var b strings.Builder
	r.writeItem(&b, item)
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) writeItem(b *strings.Builder, item domain.Item) {
	title := item.Title()
	if title == "" {
		title = item.ID
	}
	b.WriteString(HeadingStyle.Render(truncate(title, r.width)))
	b.WriteString("\n")

	for _, v := range item.FieldValues {
		if v.Kind() == domain.FieldKindEmpty || v.FieldName() == "Title" {
			continue
		}
		label := v.FieldName() + ": "
		value := wordwrap.String(v.Display(), r.width-len(label)-2)
		value = strings.ReplaceAll(value, "\n", "\n  "+strings.Repeat(" ", len(label)))
		b.WriteString("  ")
		b.WriteString(LabelStyle.Render(label))
		b.WriteString(ValueStyle.Render(value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Columns writes classic project columns with their card notes.
func (r *Renderer) Columns(columns []domain.Column) error {
	var b strings.Builder

	for _, col := range columns {
		b.WriteString(HeadingStyle.Render(col.Name))
		b.WriteString(" ")
		b.WriteString(DimStyle.Render(fmt.Sprintf("(%d)", len(col.Cards))))
		b.WriteString("\n")
		for _, card := range col.Cards {
			note := wordwrap.String(card.Note, r.width-4)
			note = strings.ReplaceAll(note, "\n", "\n    ")
			b.WriteString("  - ")
			b.WriteString(ValueStyle.Render(note))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// truncate shortens s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max < 1 {
		max = 1
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
