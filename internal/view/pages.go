package view

import (
	"redesperanza/web/internal/models"
	"redesperanza/web/internal/wizard"
)

const (
	LoginModeLogin    = "login"
	LoginModeRegister = "register"

	AdminTabOverview = "overview"
	AdminTabCases    = "cases"
	AdminTabClues    = "clues"
)

type LoginPage struct {
	Base
	Mode  string
	Name  string
	Email string
	Phone string
}

type HomePage struct {
	Base
	Cases   []models.Case
	MapView bool
}

type CasePage struct {
	Base
	Case        models.Case
	Clues       []models.Clue
	CanAddClue  bool
	CanApprove  bool
	CanResolve  bool
	ClueMessage string
}

type ReportPage struct {
	Base
	Draft wizard.Draft
}

type ProfilePage struct {
	Base
	Cases    []models.Case
	Total    int
	Active   int
	Resolved int
	// Clues is nil when the backend summary could not be loaded.
	Clues *models.UserClueStats
}

type AdminPage struct {
	Base
	Tab          string
	Cases        []models.Case
	Clues        []models.Clue
	Stats        models.Statistics
	PendingCases []models.Case
	Users        int
	UsersLoaded  bool
}

type ErrorPage struct {
	Base
	Message string
}

// AdminTab normalises the ?tab= query value.
func AdminTab(raw string) string {
	switch raw {
	case AdminTabCases, AdminTabClues:
		return raw
	}
	return AdminTabOverview
}
