package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Table names, shared by the server routes and the client gateway.
const (
	TableNotes           = "notes"
	TableProjects        = "projects"
	TableHomelabServices = "homelab_services"
	TableTrailGear       = "trail_gear"
)

// All bypasses the enum filter of a collection view.
const All = "Tous"

var (
	ErrRequired    = errors.New("required field is empty")
	ErrInvalidEnum = errors.New("value not allowed")
)

// Entity is a persisted collection record.
type Entity interface {
	GetID() string
	GetCreatedAt() time.Time
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type Note struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       NoteTag   `json:"tag"`
}

func (n Note) GetID() string           { return n.ID }
func (n Note) GetCreatedAt() time.Time { return n.CreatedAt }

func (n Note) Validate() error {
	if blank(n.Content) {
		return fmt.Errorf("%w: content", ErrRequired)
	}
	if !n.Tag.Valid() {
		return fmt.Errorf("%w: tag %q", ErrInvalidEnum, n.Tag)
	}
	return nil
}

type Project struct {
	ID          string        `json:"id,omitempty"`
	CreatedAt   time.Time     `json:"created_at,omitzero"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Tech        string        `json:"tech"`
	URL         string        `json:"url"`
	Emoji       string        `json:"emoji"`
}

func (p Project) GetID() string           { return p.ID }
func (p Project) GetCreatedAt() time.Time { return p.CreatedAt }

func (p Project) Validate() error {
	if blank(p.Name) {
		return fmt.Errorf("%w: name", ErrRequired)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEnum, p.Status)
	}
	return nil
}

// TechTags splits the comma-separated tech list.
func (p Project) TechTags() []string {
	return ParseTech(p.Tech)
}

type HomelabService struct {
	ID          string          `json:"id,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
	Name        string          `json:"name"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Category    ServiceCategory `json:"category"`
	Emoji       string          `json:"emoji"`
}

func (s HomelabService) GetID() string           { return s.ID }
func (s HomelabService) GetCreatedAt() time.Time { return s.CreatedAt }

func (s HomelabService) Validate() error {
	if blank(s.Name) {
		return fmt.Errorf("%w: name", ErrRequired)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidEnum, s.Category)
	}
	return nil
}

type GearItem struct {
	ID        string       `json:"id,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitzero"`
	Name      string       `json:"name"`
	Brand     string       `json:"brand"`
	Category  GearCategory `json:"category"`
	Status    GearStatus   `json:"status"`
	Notes     string       `json:"notes"`
}

func (g GearItem) GetID() string           { return g.ID }
func (g GearItem) GetCreatedAt() time.Time { return g.CreatedAt }

func (g GearItem) Validate() error {
	if blank(g.Name) {
		return fmt.Errorf("%w: name", ErrRequired)
	}
	if !g.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidEnum, g.Category)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEnum, g.Status)
	}
	return nil
}

// ParseTech splits a comma-separated list, trimming blanks.
func ParseTech(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
