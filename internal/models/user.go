package models

import "time"

// User is the backend's user record as cached by the web session.
type User struct {
	ID           string    `json:"id_usuario"`
	Name         string    `json:"nombre"`
	Email        string    `json:"correo"`
	Phone        string    `json:"telefono"`
	IsAdmin      bool      `json:"es_administrador"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

// UserPatch carries the fields a caller wants to overwrite; nil fields are kept.
type UserPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	IsAdmin *bool
}

func (u User) Merge(p UserPatch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	return u
}

type RegisterInput struct {
	Name     string `json:"nombre"`
	Email    string `json:"correo"`
	Password string `json:"password"`
	Phone    string `json:"telefono"`
}

// UserStats is the backend's per-user summary of reported cases and contributed clues.
type UserStats struct {
	Cases UserCaseStats `json:"casos"`
	Clues UserClueStats `json:"pistas"`
}

type UserCaseStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pendientes"`
	Active   int `json:"activos"`
	Resolved int `json:"resueltos"`
	Rejected int `json:"rechazados"`
}

type UserClueStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pendientes"`
	Verified int `json:"verificadas"`
	Rejected int `json:"rechazadas"`
}

// ProfilePatch copies the editable profile fields of fresh. Admin rights stay
// with the session that granted them.
func ProfilePatch(fresh User) UserPatch {
	return UserPatch{Name: &fresh.Name, Email: &fresh.Email, Phone: &fresh.Phone}
}
