package model

import (
	"strings"
	"time"
)

// Policy describes how one entity kind behaves inside a generic collection
// view: its table, default form values, required field, filter key and the
// fields covered by free-text search.
type Policy[T Entity] struct {
	Table string

	// Empty returns the default form values for a new record.
	Empty func() T
	// Required returns the value of the field that must be non-blank.
	Required func(T) string
	// Fields returns the writable part of a record (no id, no created_at).
	Fields func(T) T

	// FilterKey returns the enum value matched by the filter bar.
	FilterKey    func(T) string
	FilterValues []string

	// Search returns the fields matched by the search box; nil disables search.
	Search func(T) []string

	// Label is the short display name of a record (used in prompts).
	Label func(T) string
}

// HasRequired reports whether the required field is non-blank after trimming.
func (p Policy[T]) HasRequired(v T) bool {
	return !blank(p.Required(v))
}

func (p Policy[T]) Searchable() bool {
	return p.Search != nil
}

var NotePolicy = Policy[Note]{
	Table:    TableNotes,
	Empty:    func() Note { return Note{Tag: TagDivers} },
	Required: func(n Note) string { return n.Content },
	Fields: func(n Note) Note {
		n.ID, n.CreatedAt = "", time.Time{}
		return n
	},
	FilterKey:    func(n Note) string { return string(n.Tag) },
	FilterValues: strs(NoteTags),
	Search:       func(n Note) []string { return []string{n.Title, n.Content} },
	Label: func(n Note) string {
		if n.Title != "" {
			return n.Title
		}
		return firstLine(n.Content)
	},
}

var ProjectPolicy = Policy[Project]{
	Table:    TableProjects,
	Empty:    func() Project { return Project{Status: StatusInProgress, Emoji: "🚀"} },
	Required: func(p Project) string { return p.Name },
	Fields: func(p Project) Project {
		p.ID, p.CreatedAt = "", time.Time{}
		return p
	},
	FilterKey:    func(p Project) string { return string(p.Status) },
	FilterValues: strs(ProjectStatuses),
	Search:       func(p Project) []string { return []string{p.Name, p.Description} },
	Label:        func(p Project) string { return p.Name },
}

var HomelabPolicy = Policy[HomelabService]{
	Table:    TableHomelabServices,
	Empty:    func() HomelabService { return HomelabService{Category: ServiceOther, Emoji: "⚙️"} },
	Required: func(s HomelabService) string { return s.Name },
	Fields: func(s HomelabService) HomelabService {
		s.ID, s.CreatedAt = "", time.Time{}
		return s
	},
	FilterKey:    func(s HomelabService) string { return string(s.Category) },
	FilterValues: strs(ServiceCategories),
	Search:       func(s HomelabService) []string { return []string{s.Name, s.Description} },
	Label:        func(s HomelabService) string { return s.Name },
}

var GearPolicy = Policy[GearItem]{
	Table:    TableTrailGear,
	Empty:    func() GearItem { return GearItem{Category: GearOther, Status: GearActive} },
	Required: func(g GearItem) string { return g.Name },
	Fields: func(g GearItem) GearItem {
		g.ID, g.CreatedAt = "", time.Time{}
		return g
	},
	FilterKey:    func(g GearItem) string { return string(g.Category) },
	FilterValues: strs(GearCategories),
	Search:       func(g GearItem) []string { return []string{g.Name, g.Brand} },
	Label:        func(g GearItem) string { return g.Name },
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
