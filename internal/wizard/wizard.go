// Package wizard drives the four-step missing-child report form.
package wizard

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"redesperanza/web/internal/models"
)

const (
	FirstStep = 1
	LastStep  = 4

	DefaultSex       = "MASCULINO"
	DefaultLatitude  = 4.6097
	DefaultLongitude = -74.0817

	minAge = 0
	maxAge = 18
)

var ErrIncomplete = errors.New("Por favor completa todos los campos obligatorios")

var StepLabels = [LastStep]string{"Datos", "Ubicación", "Descripción", "Confirmar"}

// Draft mirrors the report form. Values stay strings until Build so a
// half-filled form round-trips unchanged.
type Draft struct {
	Step int `json:"step"`

	MissingName  string `json:"nombre_desaparecido"`
	MissingAge   string `json:"edad_desaparecido"`
	MissingSex   string `json:"sexo_desaparecido"`
	Relationship string `json:"parentesco"`
	ContactName  string `json:"nombre_contacto"`
	ContactPhone string `json:"telefono_contacto"`
	ContactEmail string `json:"correo_contacto"`

	Date      string  `json:"fecha_desaparicion"`
	Time      string  `json:"hora_desaparicion"`
	Address   string  `json:"direccion_texto"`
	Latitude  float64 `json:"ubicacion_latitud"`
	Longitude float64 `json:"ubicacion_longitud"`

	PhysicalDescription string `json:"descripcion_fisica"`
	ClothingDescription string `json:"descripcion_ropa"`
	FactsDescription    string `json:"descripcion_hechos"`
	PhotoURL1           string `json:"url_foto_1"`
	PhotoURL2           string `json:"url_foto_2"`
	PhotoURL3           string `json:"url_foto_3"`
}

func NewDraft() Draft {
	return Draft{
		Step:       FirstStep,
		MissingSex: DefaultSex,
		Latitude:   DefaultLatitude,
		Longitude:  DefaultLongitude,
	}
}

// Apply copies the submitted fields into the draft. Fields absent from form
// keep their value. An age outside 0-18 is ignored.
func (d *Draft) Apply(form url.Values) {
	text := map[string]*string{
		"nombre_desaparecido": &d.MissingName,
		"sexo_desaparecido":   &d.MissingSex,
		"parentesco":          &d.Relationship,
		"nombre_contacto":     &d.ContactName,
		"telefono_contacto":   &d.ContactPhone,
		"correo_contacto":     &d.ContactEmail,
		"fecha_desaparicion":  &d.Date,
		"hora_desaparicion":   &d.Time,
		"direccion_texto":     &d.Address,
		"descripcion_fisica":  &d.PhysicalDescription,
		"descripcion_ropa":    &d.ClothingDescription,
		"descripcion_hechos":  &d.FactsDescription,
		"url_foto_1":          &d.PhotoURL1,
		"url_foto_2":          &d.PhotoURL2,
		"url_foto_3":          &d.PhotoURL3,
	}
	for name, field := range text {
		if values, ok := form[name]; ok && len(values) > 0 {
			*field = strings.TrimSpace(values[0])
		}
	}

	if values, ok := form["edad_desaparecido"]; ok && len(values) > 0 {
		if age, ok := acceptAge(strings.TrimSpace(values[0])); ok {
			d.MissingAge = age
		}
	}

	if lat, ok := parseCoordinate(form, "ubicacion_latitud", 90); ok {
		d.Latitude = lat
	}
	if lon, ok := parseCoordinate(form, "ubicacion_longitud", 180); ok {
		d.Longitude = lon
	}
}

func acceptAge(value string) (string, bool) {
	if value == "" {
		return "", true
	}
	age, err := strconv.Atoi(value)
	if err != nil || age < minAge || age > maxAge {
		return "", false
	}
	return strconv.Itoa(age), true
}

func parseCoordinate(form url.Values, name string, limit float64) (float64, bool) {
	raw := strings.TrimSpace(form.Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// Validate checks that the required fields of step are filled.
func (d Draft) Validate(step int) error {
	var required []string
	switch step {
	case 1:
		required = []string{d.MissingName, d.MissingAge, d.Relationship, d.ContactName, d.ContactPhone, d.ContactEmail}
	case 2:
		required = []string{d.Date, d.Time, d.Address}
	case 3:
		required = []string{d.PhysicalDescription, d.ClothingDescription, d.FactsDescription}
	}
	for _, v := range required {
		if v == "" {
			return ErrIncomplete
		}
	}
	return nil
}

// Next validates the current step and moves forward. The step is unchanged on error.
func (d *Draft) Next() error {
	if err := d.Validate(d.Step); err != nil {
		return err
	}
	d.Step = min(d.Step+1, LastStep)
	return nil
}

func (d *Draft) Prev() {
	d.Step = max(d.Step-1, FirstStep)
}

// Build turns a complete draft into the backend payload.
func (d Draft) Build(reporterID string) (models.CaseInput, error) {
	for step := FirstStep; step < LastStep; step++ {
		if err := d.Validate(step); err != nil {
			return models.CaseInput{}, err
		}
	}

	age, err := strconv.Atoi(d.MissingAge)
	if err != nil {
		return models.CaseInput{}, fmt.Errorf("parse age: %w", err)
	}

	return models.CaseInput{
		ReporterID:          reporterID,
		MissingName:         d.MissingName,
		MissingAge:          age,
		MissingSex:          d.MissingSex,
		PhysicalDescription: d.PhysicalDescription,
		ClothingDescription: d.ClothingDescription,
		FactsDescription:    d.FactsDescription,
		MissingSince:        d.Date + "T" + d.Time + ":00Z",
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		Address:             d.Address,
		ContactName:         d.ContactName,
		ContactPhone:        d.ContactPhone,
		ContactEmail:        d.ContactEmail,
		Relationship:        d.Relationship,
		PhotoURL1:           optional(d.PhotoURL1),
		PhotoURL2:           optional(d.PhotoURL2),
		PhotoURL3:           optional(d.PhotoURL3),
	}, nil
}

func (d Draft) Photos() []string {
	out := make([]string, 0, 3)
	for _, u := range []string{d.PhotoURL1, d.PhotoURL2, d.PhotoURL3} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
