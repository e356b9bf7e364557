package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDefaults(t *testing.T) {
	assert.Equal(t, TagDivers, NotePolicy.Empty().Tag)
	assert.Equal(t, StatusInProgress, ProjectPolicy.Empty().Status)
	assert.Equal(t, "🚀", ProjectPolicy.Empty().Emoji)
	assert.Equal(t, ServiceOther, HomelabPolicy.Empty().Category)
	assert.Equal(t, "⚙️", HomelabPolicy.Empty().Emoji)

	g := GearPolicy.Empty()
	assert.Equal(t, GearOther, g.Category)
	assert.Equal(t, GearActive, g.Status)
	assert.Empty(t, g.Name)
	assert.Empty(t, g.Brand)
}

func TestHasRequired(t *testing.T) {
	assert.False(t, NotePolicy.HasRequired(Note{Content: "   "}))
	assert.True(t, NotePolicy.HasRequired(Note{Content: " x "}))
	assert.False(t, ProjectPolicy.HasRequired(Project{Description: "only a description"}))
	assert.True(t, GearPolicy.HasRequired(GearItem{Name: "Speedgoat 5"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{ Validate() error }
		wantErr error
	}{
		{"note ok", Note{Content: "Hello", Tag: TagTech}, nil},
		{"note blank content", Note{Title: "t", Content: " ", Tag: TagTech}, ErrRequired},
		{"note unknown tag", Note{Content: "x", Tag: "Cuisine"}, ErrInvalidEnum},
		{"project ok", Project{Name: "Site", Status: StatusIdea}, nil},
		{"project empty status", Project{Name: "Site"}, ErrInvalidEnum},
		{"service ok", HomelabService{Name: "Proxmox", Category: ServiceVirtualisation}, nil},
		{"service blank name", HomelabService{Category: ServiceOther}, ErrRequired},
		{"gear ok", GearItem{Name: "Flask", Category: GearHydration, Status: GearBackup}, nil},
		{"gear bad status", GearItem{Name: "Flask", Category: GearHydration, Status: "Perdu"}, ErrInvalidEnum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTech(t *testing.T) {
	assert.Equal(t, []string{"Next.js", "Supabase", "Tailwind"}, ParseTech("Next.js, Supabase,, Tailwind ,"))
	assert.Nil(t, ParseTech("  "))
	assert.Equal(t, []string{"Go"}, Project{Tech: "Go"}.TechTags())
}

func TestFieldsStripsMetadata(t *testing.T) {
	n := Note{ID: "abc", CreatedAt: time.Now(), Content: "Hello", Tag: TagTech}

	data, err := json.Marshal(NotePolicy.Fields(n))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"","content":"Hello","tag":"Tech"}`, string(data))
}

func TestNoteLabel(t *testing.T) {
	assert.Equal(t, "Titre", NotePolicy.Label(Note{Title: "Titre", Content: "corps"}))
	assert.Equal(t, "première ligne", NotePolicy.Label(Note{Content: "première ligne\nsuite"}))
}

func TestGearCategoryEmoji(t *testing.T) {
	assert.Equal(t, "👟", GearShoes.Emoji())
	assert.Equal(t, "📦", GearOther.Emoji())
	assert.Equal(t, "📦", GearCategory("inconnu").Emoji())
}
