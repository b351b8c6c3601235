package models

type Statistics struct {
	TotalCases    int `json:"total_casos"`
	ActiveCases   int `json:"casos_activos"`
	ResolvedCases int `json:"casos_resueltos"`
	PendingCases  int `json:"casos_pendientes"`
	TotalClues    int `json:"total_pistas"`
	PendingClues  int `json:"pistas_pendientes"`
}

func ComputeStatistics(cases []Case, clues []Clue) Statistics {
	return Statistics{
		TotalCases:    len(cases),
		ActiveCases:   CountCases(cases, CaseStatusActive),
		ResolvedCases: CountCases(cases, CaseStatusResolved),
		PendingCases:  CountCases(cases, CaseStatusPending),
		TotalClues:    len(clues),
		PendingClues:  CountClues(clues, ClueStatusPending),
	}
}
