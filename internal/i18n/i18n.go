package i18n

import (
	"fmt"
	"strings"
)

type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

var currentLang = French

// Collection holds the strings of one collection page.
type Collection struct {
	Title       string
	Subtitle    string
	New         string
	Edit        string
	LoadError   string
	Created     string
	Updated     string
	Deleted     string
	Confirm     string
	Empty       string
	EmptyFilter string // may contain %s for the filter value
	EmptySearch string // %s: query
}

// EmptyState builds the "nothing to show" line for the current criteria.
func (c Collection) EmptyState(filter, all, search string) string {
	msg := c.Empty
	if filter != "" && filter != all {
		msg += format(c.EmptyFilter, filter)
	}
	if search != "" {
		msg += format(c.EmptySearch, search)
	}
	return msg
}

func format(pattern, arg string) string {
	if !strings.Contains(pattern, "%s") {
		return pattern
	}
	return fmt.Sprintf(pattern, arg)
}

type Messages struct {
	// General
	Loading  string
	Confirm  string
	Cancel   string
	Yes      string
	No       string
	Save     string
	Saving   string
	Search   string
	Filter   string
	Optional string

	// Auth
	SignIn             string
	SigningIn          string
	SignInAction       string
	SignOut            string
	SignedInAs         string
	ReadOnly           string
	Email              string
	Password           string
	InvalidCredentials string
	SignInFailed       string
	SignedOut          string

	// Form errors
	AddError    string
	UpdateError string
	DeleteError string
	Required    string // %s: field label

	// Fields
	FieldTitle       string
	FieldContent     string
	FieldTag         string
	FieldName        string
	FieldDescription string
	FieldStatus      string
	FieldTech        string
	FieldTechHint    string
	FieldURL         string
	FieldEmoji       string
	FieldCategory    string
	FieldBrand       string
	FieldNotes       string

	// Collections
	Notes    Collection
	Projects Collection
	Services Collection
	Gear     Collection

	// Static pages
	StaticPlaceholder string
	HomeIntro         string

	// Keys descriptions (short)
	KeyUp        string
	KeyDown      string
	KeyOpen      string
	KeyMoveUp    string
	KeyMoveDown  string
	KeyNew       string
	KeyEdit      string
	KeyDelete    string
	KeyFilter    string
	KeySearch    string
	KeyNextField string
	KeyCycle     string
	KeySave      string
	KeyEscape    string
	KeyLogin     string
	KeyLogout    string
	KeyDismiss   string
	KeyBack      string
	KeyQuit      string
	KeyHelp      string
}

var translations = map[Language]Messages{
	French: {
		Loading:  "Chargement…",
		Confirm:  "Confirmer",
		Cancel:   "Annuler",
		Yes:      "Oui",
		No:       "Non",
		Save:     "Enregistrer",
		Saving:   "Enregistrement…",
		Search:   "Rechercher…",
		Filter:   "Filtre",
		Optional: "(optionnel)",

		SignIn:             "Connexion",
		SigningIn:          "Connexion…",
		SignInAction:       "Se connecter",
		SignOut:            "Déconnexion",
		SignedInAs:         "Connecté : %s",
		ReadOnly:           "Lecture seule",
		Email:              "Email",
		Password:           "Mot de passe",
		InvalidCredentials: "Identifiants invalides.",
		SignInFailed:       "Connexion impossible. Réessaie plus tard.",
		SignedOut:          "Déconnecté",

		AddError:    "Erreur lors de l'ajout.",
		UpdateError: "Erreur lors de la modification.",
		DeleteError: "Erreur lors de la suppression.",
		Required:    "Le champ « %s » est requis.",

		FieldTitle:       "Titre",
		FieldContent:     "Contenu *",
		FieldTag:         "Catégorie",
		FieldName:        "Nom *",
		FieldDescription: "Description",
		FieldStatus:      "Statut",
		FieldTech:        "Stack",
		FieldTechHint:    "(séparées par des virgules)",
		FieldURL:         "URL",
		FieldEmoji:       "Emoji",
		FieldCategory:    "Catégorie",
		FieldBrand:       "Marque",
		FieldNotes:       "Notes",

		Notes: Collection{
			Title:       "Notes",
			Subtitle:    "Réflexions courtes, pensées en vrac",
			New:         "Nouvelle note",
			Edit:        "Modifier la note",
			LoadError:   "Impossible de charger les notes.",
			Created:     "Note publiée",
			Updated:     "Note modifiée",
			Deleted:     "Note supprimée",
			Confirm:     "Supprimer cette note ?",
			Empty:       "Aucune note",
			EmptyFilter: " dans cette catégorie",
			EmptySearch: " pour « %s »",
		},
		Projects: Collection{
			Title:       "Projets",
			Subtitle:    "Ce sur quoi je travaille",
			New:         "Nouveau projet",
			Edit:        "Modifier le projet",
			LoadError:   "Impossible de charger les projets.",
			Created:     "Projet ajouté",
			Updated:     "Projet modifié",
			Deleted:     "Projet supprimé",
			Confirm:     "Supprimer ce projet ?",
			Empty:       "Aucun projet",
			EmptyFilter: " avec le statut « %s »",
			EmptySearch: " pour « %s »",
		},
		Services: Collection{
			Title:       "Homelab",
			Subtitle:    "Les services qui tournent à la maison",
			New:         "Ajouter un service",
			Edit:        "Modifier le service",
			LoadError:   "Impossible de charger les services.",
			Created:     "Service ajouté",
			Updated:     "Service modifié",
			Deleted:     "Service supprimé",
			Confirm:     "Supprimer ce service ?",
			Empty:       "Aucun service",
			EmptyFilter: " dans la catégorie « %s »",
			EmptySearch: " pour « %s »",
		},
		Gear: Collection{
			Title:       "Trail & Outdoor",
			Subtitle:    "Gestion de mon équipement trail",
			New:         "Ajouter un équipement",
			Edit:        "Modifier l'équipement",
			LoadError:   "Impossible de charger l'inventaire.",
			Created:     "Équipement ajouté",
			Updated:     "Équipement modifié",
			Deleted:     "Équipement supprimé",
			Confirm:     "Supprimer cet équipement ?",
			Empty:       "Aucun équipement",
			EmptyFilter: " dans la catégorie « %s »",
			EmptySearch: " pour « %s »",
		},

		StaticPlaceholder: "Cette page est disponible sur la version web du site.",
		HomeIntro:         "Bienvenue. Choisis une section dans le menu.",

		KeyUp:        "haut",
		KeyDown:      "bas",
		KeyOpen:      "ouvrir",
		KeyMoveUp:    "monter",
		KeyMoveDown:  "descendre",
		KeyNew:       "nouveau",
		KeyEdit:      "modifier",
		KeyDelete:    "supprimer",
		KeyFilter:    "filtre",
		KeySearch:    "rechercher",
		KeyNextField: "champ suivant",
		KeyCycle:     "changer",
		KeySave:      "enregistrer",
		KeyEscape:    "annuler",
		KeyLogin:     "connexion",
		KeyLogout:    "déconnexion",
		KeyDismiss:   "fermer la notification",
		KeyBack:      "menu",
		KeyQuit:      "quitter",
		KeyHelp:      "aide",
	},
	English: {
		Loading:  "Loading…",
		Confirm:  "Confirm",
		Cancel:   "Cancel",
		Yes:      "Yes",
		No:       "No",
		Save:     "Save",
		Saving:   "Saving…",
		Search:   "Search…",
		Filter:   "Filter",
		Optional: "(optional)",

		SignIn:             "Sign in",
		SigningIn:          "Signing in…",
		SignInAction:       "Sign in",
		SignOut:            "Sign out",
		SignedInAs:         "Signed in: %s",
		ReadOnly:           "Read only",
		Email:              "Email",
		Password:           "Password",
		InvalidCredentials: "Invalid credentials.",
		SignInFailed:       "Could not sign in. Try again later.",
		SignedOut:          "Signed out",

		AddError:    "Could not add.",
		UpdateError: "Could not save changes.",
		DeleteError: "Could not delete.",
		Required:    "The “%s” field is required.",

		FieldTitle:       "Title",
		FieldContent:     "Content *",
		FieldTag:         "Category",
		FieldName:        "Name *",
		FieldDescription: "Description",
		FieldStatus:      "Status",
		FieldTech:        "Stack",
		FieldTechHint:    "(comma separated)",
		FieldURL:         "URL",
		FieldEmoji:       "Emoji",
		FieldCategory:    "Category",
		FieldBrand:       "Brand",
		FieldNotes:       "Notes",

		Notes: Collection{
			Title:       "Notes",
			Subtitle:    "Short thoughts",
			New:         "New note",
			Edit:        "Edit note",
			LoadError:   "Could not load notes.",
			Created:     "Note published",
			Updated:     "Note updated",
			Deleted:     "Note deleted",
			Confirm:     "Delete this note?",
			Empty:       "No notes",
			EmptyFilter: " in this category",
			EmptySearch: " for “%s”",
		},
		Projects: Collection{
			Title:       "Projects",
			Subtitle:    "What I am working on",
			New:         "New project",
			Edit:        "Edit project",
			LoadError:   "Could not load projects.",
			Created:     "Project added",
			Updated:     "Project updated",
			Deleted:     "Project deleted",
			Confirm:     "Delete this project?",
			Empty:       "No projects",
			EmptyFilter: " with status “%s”",
			EmptySearch: " for “%s”",
		},
		Services: Collection{
			Title:       "Homelab",
			Subtitle:    "Services running at home",
			New:         "Add a service",
			Edit:        "Edit service",
			LoadError:   "Could not load services.",
			Created:     "Service added",
			Updated:     "Service updated",
			Deleted:     "Service deleted",
			Confirm:     "Delete this service?",
			Empty:       "No services",
			EmptyFilter: " in category “%s”",
			EmptySearch: " for “%s”",
		},
		Gear: Collection{
			Title:       "Trail & Outdoor",
			Subtitle:    "My trail gear",
			New:         "Add gear",
			Edit:        "Edit gear",
			LoadError:   "Could not load the inventory.",
			Created:     "Gear added",
			Updated:     "Gear updated",
			Deleted:     "Gear deleted",
			Confirm:     "Delete this item?",
			Empty:       "No gear",
			EmptyFilter: " in category “%s”",
			EmptySearch: " for “%s”",
		},

		StaticPlaceholder: "This page is available on the web version of the site.",
		HomeIntro:         "Welcome. Pick a section from the menu.",

		KeyUp:        "up",
		KeyDown:      "down",
		KeyOpen:      "open",
		KeyMoveUp:    "move up",
		KeyMoveDown:  "move down",
		KeyNew:       "new",
		KeyEdit:      "edit",
		KeyDelete:    "delete",
		KeyFilter:    "filter",
		KeySearch:    "search",
		KeyNextField: "next field",
		KeyCycle:     "change",
		KeySave:      "save",
		KeyEscape:    "cancel",
		KeyLogin:     "sign in",
		KeyLogout:    "sign out",
		KeyDismiss:   "dismiss notification",
		KeyBack:      "menu",
		KeyQuit:      "quit",
		KeyHelp:      "help",
	},
}

func SetLanguage(lang Language) {
	if _, ok := translations[lang]; ok {
		currentLang = lang
	}
}

func GetLanguage() Language {
	return currentLang
}

func T() Messages {
	return translations[currentLang]
}
