package term

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/h0rv/gpx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjects(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)

	err := r.Projects("octocat", []domain.Project{
		{Number: 1, Title: "Archive", Closed: true, CreatedAt: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Number: 2, Title: "Bugs", CreatedAt: time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
	}, 5)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Projects of octocat")
	assert.Contains(t, out, domain.StatusEmojiClosed)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Archive")
	assert.Contains(t, out, "2023-06-30")
	assert.Contains(t, out, "showing 2 of 5 projects")
	assert.Less(t, strings.Index(out, "Archive"), strings.Index(out, "Bugs"))
}

func TestProjects_AllShown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)

	require.NoError(t, r.Projects("octocat", []domain.Project{{Number: 1, Title: "Only"}}, 1))
	assert.NotContains(t, buf.String(), "showing")
}

func TestProjects_LongTitleTruncated(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 40)

	longTitle := "This is a very long title that should be truncated to fit the terminal width"
	require.NoError(t, r.Projects("octocat", []domain.Project{{Number: 999, Title: longTitle}}, 1))

	out := buf.String()
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "#999")
	assert.NotContains(t, out, longTitle)
}

func TestProjectDetails(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)
	desc := "Everything for the May release"

	err := r.ProjectDetails(domain.ProjectDetails{
		ID:               "PVT_7",
		Title:            "Sprint 👍",
		ShortDescription: &desc,
		Items: []domain.Item{
			{
				ID: "PVTI_1",
				FieldValues: []domain.FieldValue{
					domain.TextValue{Text: "Ship it", Field: domain.FieldCommon{Name: "Title"}},
					domain.SingleSelectValue{Name: "In Progress", Field: domain.FieldCommon{Name: "Status"}},
					domain.DateValue{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Field: domain.FieldCommon{Name: "Due"}},
					domain.EmptyValue{},
				},
			},
			{ID: "PVTI_2"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Sprint 👍")
	assert.Contains(t, out, desc)
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "Status: In Progress")
	assert.Contains(t, out, "Due: 2024-05-01")
	assert.NotContains(t, out, "Title: Ship it", "the title is the heading")
	assert.Contains(t, out, "PVTI_2", "untitled items fall back to their id")
}

func TestProjectDetails_NoItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, 80).ProjectDetails(domain.ProjectDetails{Title: "Empty"}))
	assert.Contains(t, buf.String(), "No items")
}

func TestItem_WrapsLongValues(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 30)

	body := "one two three four five six seven eight nine ten eleven twelve"
	require.NoError(t, r.Item(domain.Item{
		ID: "PVTI_1",
		FieldValues: []domain.FieldValue{
			domain.TextValue{Text: body, Field: domain.FieldCommon{Name: "Body"}},
		},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Greater(t, len(lines), 3)
	assert.Contains(t, buf.String(), "twelve")
}

func TestColumns(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)

	require.NoError(t, r.Columns([]domain.Column{
		{ID: 1, Name: "To do", Cards: []domain.Card{{ID: 11, Note: "Write tests"}, {ID: 12, Note: "Ship 🚀"}}},
		{ID: 3, Name: "Done"},
	}))

	out := buf.String()
	assert.Contains(t, out, "To do (2)")
	assert.Contains(t, out, "- Write tests")
	assert.Contains(t, out, "- Ship 🚀")
	assert.Contains(t, out, "Done (0)")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"🚀🚀🚀🚀", 3, "🚀🚀…"},
		{"abc", 0, "…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.max), tt.in)
	}
}

func TestNewRenderer_Width(t *testing.T) {
	assert.Equal(t, DefaultWidth, NewRenderer(nil, 0).width)
	assert.Equal(t, minWidth, NewRenderer(nil, 5).width)
}
