package models

import "time"

type ClueStatus string

const (
	ClueStatusPending   ClueStatus = "PENDIENTE_REVISION"
	ClueStatusVerified  ClueStatus = "VERIFICADA"
	ClueStatusDiscarded ClueStatus = "DESCARTADA"
)

// CanTransition only allows moderating clues that are still pending.
func (s ClueStatus) CanTransition(next ClueStatus) bool {
	return s == ClueStatusPending && (next == ClueStatusVerified || next == ClueStatusDiscarded)
}

func (s ClueStatus) Label() string {
	switch s {
	case ClueStatusPending:
		return "Pendiente"
	case ClueStatusVerified:
		return "Verificada"
	case ClueStatusDiscarded:
		return "Descartada"
	}
	return string(s)
}

type Clue struct {
	ID        string     `json:"id_pista"`
	CaseID    string     `json:"id_caso"`
	Message   string     `json:"mensaje"`
	PhotoURL  *string    `json:"url_foto_pista"`
	Status    ClueStatus `json:"estado_pista"`
	CreatedAt time.Time  `json:"fecha_creacion"`
}

type ClueInput struct {
	CaseID   string  `json:"id_caso"`
	Message  string  `json:"mensaje"`
	PhotoURL *string `json:"url_foto_pista"`
}

func CountClues(clues []Clue, status ClueStatus) int {
	n := 0
	for _, c := range clues {
		if c.Status == status {
			n++
		}
	}
	return n
}
