package ui

import (
	"fmt"
	"strings"

	"github.com/nzaccagnino/folio/internal/i18n"
	"github.com/nzaccagnino/folio/internal/model"
)

// field is one form input of a collection page. Fields with options are
// enums cycled with ←/→; the others are free text.
type field[T any] struct {
	label   string
	hint    string
	options []string
	get     func(T) string
	set     func(T, string) T
}

func (f field[T]) enum() bool {
	return len(f.options) > 0
}

// cycle returns the option delta steps away from the current value.
func (f field[T]) cycle(current string, delta int) string {
	if !f.enum() {
		return current
	}
	i := 0
	for j, o := range f.options {
		if o == current {
			i = j
			break
		}
	}
	n := len(f.options)
	return f.options[((i+delta)%n+n)%n]
}

func noteFields(t i18n.Messages) []field[model.Note] {
	return []field[model.Note]{
		{
			label: t.FieldTitle, hint: t.Optional,
			get: func(n model.Note) string { return n.Title },
			set: func(n model.Note, v string) model.Note { n.Title = v; return n },
		},
		{
			label: t.FieldContent,
			get:   func(n model.Note) string { return n.Content },
			set:   func(n model.Note, v string) model.Note { n.Content = v; return n },
		},
		{
			label: t.FieldTag, options: model.NotePolicy.FilterValues,
			get: func(n model.Note) string { return string(n.Tag) },
			set: func(n model.Note, v string) model.Note { n.Tag = model.NoteTag(v); return n },
		},
	}
}

func noteRow(n model.Note) string {
	label := model.NotePolicy.Label(n)
	return fmt.Sprintf("[%s] %s  %s", n.Tag, label, n.CreatedAt.Local().Format("02/01/2006"))
}

func projectFields(t i18n.Messages) []field[model.Project] {
	return []field[model.Project]{
		{
			label: t.FieldName,
			get:   func(p model.Project) string { return p.Name },
			set:   func(p model.Project, v string) model.Project { p.Name = v; return p },
		},
		{
			label: t.FieldDescription,
			get:   func(p model.Project) string { return p.Description },
			set:   func(p model.Project, v string) model.Project { p.Description = v; return p },
		},
		{
			label: t.FieldStatus, options: model.ProjectPolicy.FilterValues,
			get: func(p model.Project) string { return string(p.Status) },
			set: func(p model.Project, v string) model.Project { p.Status = model.ProjectStatus(v); return p },
		},
		{
			label: t.FieldTech, hint: t.FieldTechHint,
			get: func(p model.Project) string { return p.Tech },
			set: func(p model.Project, v string) model.Project { p.Tech = v; return p },
		},
		{
			label: t.FieldURL,
			get:   func(p model.Project) string { return p.URL },
			set:   func(p model.Project, v string) model.Project { p.URL = v; return p },
		},
		{
			label: t.FieldEmoji,
			get:   func(p model.Project) string { return p.Emoji },
			set:   func(p model.Project, v string) model.Project { p.Emoji = v; return p },
		},
	}
}

func projectRow(p model.Project) string {
	line := fmt.Sprintf("%s %s  (%s)", p.Emoji, p.Name, p.Status)
	if tags := p.TechTags(); len(tags) > 0 {
		line += "  " + strings.Join(tags, " · ")
	}
	return line
}

func serviceFields(t i18n.Messages) []field[model.HomelabService] {
	return []field[model.HomelabService]{
		{
			label: t.FieldName,
			get:   func(s model.HomelabService) string { return s.Name },
			set:   func(s model.HomelabService, v string) model.HomelabService { s.Name = v; return s },
		},
		{
			label: t.FieldURL,
			get:   func(s model.HomelabService) string { return s.URL },
			set:   func(s model.HomelabService, v string) model.HomelabService { s.URL = v; return s },
		},
		{
			label: t.FieldDescription,
			get:   func(s model.HomelabService) string { return s.Description },
			set:   func(s model.HomelabService, v string) model.HomelabService { s.Description = v; return s },
		},
		{
			label: t.FieldCategory, options: model.HomelabPolicy.FilterValues,
			get: func(s model.HomelabService) string { return string(s.Category) },
			set: func(s model.HomelabService, v string) model.HomelabService {
				s.Category = model.ServiceCategory(v)
				return s
			},
		},
		{
			label: t.FieldEmoji,
			get:   func(s model.HomelabService) string { return s.Emoji },
			set:   func(s model.HomelabService, v string) model.HomelabService { s.Emoji = v; return s },
		},
	}
}

func serviceRow(s model.HomelabService) string {
	line := fmt.Sprintf("%s %s  [%s]", s.Emoji, s.Name, s.Category)
	if s.URL != "" {
		line += "  " + s.URL
	}
	return line
}

func gearFields(t i18n.Messages) []field[model.GearItem] {
	return []field[model.GearItem]{
		{
			label: t.FieldName,
			get:   func(g model.GearItem) string { return g.Name },
			set:   func(g model.GearItem, v string) model.GearItem { g.Name = v; return g },
		},
		{
			label: t.FieldBrand,
			get:   func(g model.GearItem) string { return g.Brand },
			set:   func(g model.GearItem, v string) model.GearItem { g.Brand = v; return g },
		},
		{
			label: t.FieldCategory, options: model.GearPolicy.FilterValues,
			get: func(g model.GearItem) string { return string(g.Category) },
			set: func(g model.GearItem, v string) model.GearItem { g.Category = model.GearCategory(v); return g },
		},
		{
			label: t.FieldStatus, options: strs(model.GearStatuses),
			get: func(g model.GearItem) string { return string(g.Status) },
			set: func(g model.GearItem, v string) model.GearItem { g.Status = model.GearStatus(v); return g },
		},
		{
			label: t.FieldNotes,
			get:   func(g model.GearItem) string { return g.Notes },
			set:   func(g model.GearItem, v string) model.GearItem { g.Notes = v; return g },
		},
	}
}

func gearRow(g model.GearItem) string {
	line := fmt.Sprintf("%s %s", g.Category.Emoji(), g.Name)
	if g.Brand != "" {
		line += " · " + g.Brand
	}
	return line + fmt.Sprintf("  (%s)", g.Status)
}

func strs[E ~string](set []E) []string {
	out := make([]string, len(set))
	for i, e := range set {
		out[i] = string(e)
	}
	return out
}
