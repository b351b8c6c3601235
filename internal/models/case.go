package models

import "time"

type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "PENDIENTE_REVISION"
	CaseStatusActive   CaseStatus = "ACTIVO"
	CaseStatusResolved CaseStatus = "RESUELTO"
	CaseStatusRejected CaseStatus = "RECHAZADO"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusPending:  {CaseStatusActive, CaseStatusRejected},
	CaseStatusActive:   {CaseStatusResolved},
	CaseStatusResolved: {},
	CaseStatusRejected: {},
}

// CanTransition reports whether an administrator may move a case from s to next.
func (s CaseStatus) CanTransition(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CaseStatus) Label() string {
	switch s {
	case CaseStatusPending:
		return "Pendiente"
	case CaseStatusActive:
		return "Activo"
	case CaseStatusResolved:
		return "Resuelto"
	case CaseStatusRejected:
		return "Rechazado"
	}
	return string(s)
}

type Case struct {
	ID                  string     `json:"id_caso"`
	ReporterID          string     `json:"id_usuario_reportero"`
	MissingName         string     `json:"nombre_desaparecido"`
	MissingAge          int        `json:"edad_desaparecido"`
	MissingSex          string     `json:"sexo_desaparecido"`
	PhysicalDescription string     `json:"descripcion_fisica"`
	ClothingDescription string     `json:"descripcion_ropa"`
	FactsDescription    string     `json:"descripcion_hechos"`
	MissingSince        time.Time  `json:"fecha_desaparicion"`
	Latitude            float64    `json:"ubicacion_latitud"`
	Longitude           float64    `json:"ubicacion_longitud"`
	Address             string     `json:"direccion_texto"`
	ContactName         string     `json:"nombre_contacto"`
	ContactPhone        string     `json:"telefono_contacto"`
	ContactEmail        string     `json:"correo_contacto"`
	Relationship        string     `json:"parentesco"`
	PhotoURL1           *string    `json:"url_foto_1"`
	PhotoURL2           *string    `json:"url_foto_2"`
	PhotoURL3           *string    `json:"url_foto_3"`
	Status              CaseStatus `json:"estado_caso"`
	CreatedAt           time.Time  `json:"fecha_creacion"`
}

func (c Case) Photos() []string {
	return collectPhotos(c.PhotoURL1, c.PhotoURL2, c.PhotoURL3)
}

// CaseInput is the payload of POST /cases. MissingSince keeps the
// "<date>T<time>:00Z" form the backend expects.
type CaseInput struct {
	ReporterID          string  `json:"id_usuario_reportero"`
	MissingName         string  `json:"nombre_desaparecido"`
	MissingAge          int     `json:"edad_desaparecido"`
	MissingSex          string  `json:"sexo_desaparecido"`
	PhysicalDescription string  `json:"descripcion_fisica"`
	ClothingDescription string  `json:"descripcion_ropa"`
	FactsDescription    string  `json:"descripcion_hechos"`
	MissingSince        string  `json:"fecha_desaparicion"`
	Latitude            float64 `json:"ubicacion_latitud"`
	Longitude           float64 `json:"ubicacion_longitud"`
	Address             string  `json:"direccion_texto"`
	ContactName         string  `json:"nombre_contacto"`
	ContactPhone        string  `json:"telefono_contacto"`
	ContactEmail        string  `json:"correo_contacto"`
	Relationship        string  `json:"parentesco"`
	PhotoURL1           *string `json:"url_foto_1"`
	PhotoURL2           *string `json:"url_foto_2"`
	PhotoURL3           *string `json:"url_foto_3"`
}

func (c CaseInput) Photos() []string {
	return collectPhotos(c.PhotoURL1, c.PhotoURL2, c.PhotoURL3)
}

func collectPhotos(urls ...*string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != nil && *u != "" {
			out = append(out, *u)
		}
	}
	return out
}

func CountCases(cases []Case, status CaseStatus) int {
	n := 0
	for _, c := range cases {
		if c.Status == status {
			n++
		}
	}
	return n
}

func FilterCases(cases []Case, status CaseStatus) []Case {
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}
