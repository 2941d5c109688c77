// Package view derives render-ready models from decoded GitHub data.
// Projection never mutates its input.
package view

import (
	"context"
	"sort"

	"github.com/h0rv/gpx/internal/domain"
)

// Substituter rewrites display text, e.g. :code: tokens into emoji.
type Substituter interface {
	Replace(ctx context.Context, text string) string
}

// Projector shapes decoded models for the templates and the CLI.
type Projector struct {
	sub Substituter
}

// New creates a Projector. A nil sub leaves text unchanged.
func New(sub Substituter) *Projector {
	return &Projector{sub: sub}
}

// ProjectList returns the collection's projects ordered by number.
// Projects sharing a number keep their upstream order. An empty result is
// not an error; callers decide what "no projects" means.
func (p *Projector) ProjectList(c domain.ProjectCollection) []domain.Project {
	projects := make([]domain.Project, len(c.Nodes))
	copy(projects, c.Nodes)
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Number < projects[j].Number
	})
	return projects
}

// ItemEditor substitutes the project's title, its short description and
// the text of every item's text and single-select values.
func (p *Projector) ItemEditor(ctx context.Context, d domain.ProjectDetails) domain.ProjectDetails {
	out := domain.ProjectDetails{
		ID:    d.ID,
		Title: p.replace(ctx, d.Title),
		Items: make([]domain.Item, len(d.Items)),
	}
	if d.ShortDescription != nil {
		desc := p.replace(ctx, *d.ShortDescription)
		out.ShortDescription = &desc
	}
	for i, item := range d.Items {
		out.Items[i] = p.NewItem(ctx, item)
	}
	return out
}

// NewItem applies the item editor's substitution to a single item.
func (p *Projector) NewItem(ctx context.Context, item domain.Item) domain.Item {
	out := domain.Item{
		ID:          item.ID,
		FieldValues: make([]domain.FieldValue, len(item.FieldValues)),
	}
	for i, v := range item.FieldValues {
		switch v := v.(type) {
		case domain.TextValue:
			v.Text = p.replace(ctx, v.Text)
			out.FieldValues[i] = v
		case domain.SingleSelectValue:
			v.Name = p.replace(ctx, v.Name)
			out.FieldValues[i] = v
		default:
			out.FieldValues[i] = v
		}
	}
	return out
}

// Columns substitutes the notes of classic project cards.
func (p *Projector) Columns(ctx context.Context, columns []domain.Column) []domain.Column {
	out := make([]domain.Column, len(columns))
	for i, col := range columns {
		cards := make([]domain.Card, len(col.Cards))
		for j, card := range col.Cards {
			cards[j] = domain.Card{ID: card.ID, Note: p.replace(ctx, card.Note)}
		}
		out[i] = domain.Column{ID: col.ID, Name: col.Name, Cards: cards}
	}
	return out
}

func (p *Projector) replace(ctx context.Context, s string) string {
	if p.sub == nil {
		return s
	}
	return p.sub.Replace(ctx, s)
}
