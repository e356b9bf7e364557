package model

type NoteTag string

const (
	TagReflexion NoteTag = "Réflexion"
	TagTech      NoteTag = "Tech"
	TagTrail     NoteTag = "Trail"
	TagBusiness  NoteTag = "Business"
	TagLecture   NoteTag = "Lecture"
	TagDivers    NoteTag = "Divers"
)

var NoteTags = []NoteTag{TagReflexion, TagTech, TagTrail, TagBusiness, TagLecture, TagDivers}

func (t NoteTag) Valid() bool { return contains(NoteTags, t) }

type ProjectStatus string

const (
	StatusInProgress ProjectStatus = "En cours"
	StatusDone       ProjectStatus = "Terminé"
	StatusPaused     ProjectStatus = "En pause"
	StatusIdea       ProjectStatus = "Idée"
)

var ProjectStatuses = []ProjectStatus{StatusInProgress, StatusDone, StatusPaused, StatusIdea}

func (s ProjectStatus) Valid() bool { return contains(ProjectStatuses, s) }

type ServiceCategory string

const (
	ServiceVirtualisation ServiceCategory = "Virtualisation"
	ServiceContainers     ServiceCategory = "Containers"
	ServiceNetwork        ServiceCategory = "Réseau"
	ServiceSecurity       ServiceCategory = "Sécurité"
	ServiceProductivity   ServiceCategory = "Productivité"
	ServiceMonitoring     ServiceCategory = "Monitoring"
	ServiceOther          ServiceCategory = "Autre"
)

var ServiceCategories = []ServiceCategory{
	ServiceVirtualisation, ServiceContainers, ServiceNetwork, ServiceSecurity,
	ServiceProductivity, ServiceMonitoring, ServiceOther,
}

func (c ServiceCategory) Valid() bool { return contains(ServiceCategories, c) }

type GearCategory string

const (
	GearShoes       GearCategory = "Chaussures"
	GearClothing    GearCategory = "Vêtements"
	GearAccessories GearCategory = "Accessoires"
	GearElectronics GearCategory = "Électronique"
	GearHydration   GearCategory = "Hydratation"
	GearOther       GearCategory = "Autre"
)

var GearCategories = []GearCategory{GearShoes, GearClothing, GearAccessories, GearElectronics, GearHydration, GearOther}

func (c GearCategory) Valid() bool { return contains(GearCategories, c) }

// Emoji is the icon shown next to a gear item of this category.
func (c GearCategory) Emoji() string {
	switch c {
	case GearShoes:
		return "👟"
	case GearClothing:
		return "👕"
	case GearAccessories:
		return "🕶️"
	case GearElectronics:
		return "⌚"
	case GearHydration:
		return "🧴"
	}
	return "📦"
}

type GearStatus string

const (
	GearActive  GearStatus = "Actif"
	GearBackup  GearStatus = "Backup"
	GearReplace GearStatus = "À remplacer"
)

var GearStatuses = []GearStatus{GearActive, GearBackup, GearReplace}

func (s GearStatus) Valid() bool { return contains(GearStatuses, s) }

func contains[E ~string](set []E, v E) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

func strs[E ~string](set []E) []string {
	out := make([]string, len(set))
	for i, e := range set {
		out[i] = string(e)
	}
	return out
}
