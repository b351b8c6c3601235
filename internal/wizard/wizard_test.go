package wizard

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/session"
)

func completeDraft() Draft {
	d := NewDraft()
	d.Apply(url.Values{
		"nombre_desaparecido": {"María García"},
		"edad_desaparecido":   {"12"},
		"parentesco":          {"Madre"},
		"nombre_contacto":     {"Laura García"},
		"telefono_contacto":   {"3001234567"},
		"correo_contacto":     {"laura@example.com"},
		"fecha_desaparicion":  {"2024-05-01"},
		"hora_desaparicion":   {"14:30"},
		"direccion_texto":     {"Calle 10 # 5-20, Bogotá"},
		"descripcion_fisica":  {"Cabello negro"},
		"descripcion_ropa":    {"Uniforme escolar"},
		"descripcion_hechos":  {"Salió del colegio"},
	})
	return d
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, FirstStep, d.Step)
	assert.Equal(t, "MASCULINO", d.MissingSex)
	assert.Equal(t, 4.6097, d.Latitude)
	assert.Equal(t, -74.0817, d.Longitude)
}

func TestApplyAgeFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"in range", "7", "7"},
		{"upper bound", "18", "18"},
		{"lower bound", "0", "0"},
		{"too old keeps previous", "19", "10"},
		{"negative keeps previous", "-1", "10"},
		{"not a number keeps previous", "diez", "10"},
		{"cleared", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			d.MissingAge = "10"
			d.Apply(url.Values{"edad_desaparecido": {tt.input}})
			assert.Equal(t, tt.want, d.MissingAge)
		})
	}
}

func TestApplyKeepsAbsentFields(t *testing.T) {
	d := NewDraft()
	d.MissingName = "Pedro"
	d.Apply(url.Values{"parentesco": {" Padre "}, "ubicacion_latitud": {"abc"}})

	assert.Equal(t, "Pedro", d.MissingName)
	assert.Equal(t, "Padre", d.Relationship)
	assert.Equal(t, DefaultLatitude, d.Latitude)
}

func TestApplyIgnoresInvalidCoordinates(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf"} {
		d := NewDraft()
		d.Apply(url.Values{"ubicacion_latitud": {raw}, "ubicacion_longitud": {raw}})

		assert.Equal(t, DefaultLatitude, d.Latitude, raw)
		assert.Equal(t, DefaultLongitude, d.Longitude, raw)
	}
}

func TestNextValidatesCurrentStep(t *testing.T) {
	d := NewDraft()
	d.MissingName = "María"

	err := d.Next()
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, "Por favor completa todos los campos obligatorios", err.Error())
	assert.Equal(t, 1, d.Step)

	d = completeDraft()
	for want := 2; want <= LastStep; want++ {
		require.NoError(t, d.Next())
		assert.Equal(t, want, d.Step)
	}
	require.NoError(t, d.Next())
	assert.Equal(t, LastStep, d.Step)
}

func TestStepTwoRequiresTime(t *testing.T) {
	d := completeDraft()
	d.Time = ""
	require.NoError(t, d.Next())
	assert.ErrorIs(t, d.Next(), ErrIncomplete)
	assert.Equal(t, 2, d.Step)
}

func TestPrevStopsAtFirstStep(t *testing.T) {
	d := completeDraft()
	d.Step = 2
	d.Prev()
	assert.Equal(t, 1, d.Step)
	d.Prev()
	assert.Equal(t, 1, d.Step)
}

func TestBuild(t *testing.T) {
	d := completeDraft()
	d.PhotoURL1 = "https://cdn.example/cases/1.jpg"

	input, err := d.Build("u-1")
	require.NoError(t, err)

	assert.Equal(t, "u-1", input.ReporterID)
	assert.Equal(t, 12, input.MissingAge)
	assert.Equal(t, "2024-05-01T14:30:00Z", input.MissingSince)
	assert.Equal(t, "MASCULINO", input.MissingSex)
	require.NotNil(t, input.PhotoURL1)
	assert.Equal(t, "https://cdn.example/cases/1.jpg", *input.PhotoURL1)
	assert.Nil(t, input.PhotoURL2)
	assert.Nil(t, input.PhotoURL3)
}

func TestBuildRejectsIncompleteDraft(t *testing.T) {
	d := completeDraft()
	d.FactsDescription = ""
	_, err := d.Build("u-1")
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(session.NewMemoryStore(), time.Hour)

	d, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, NewDraft(), d)

	saved := completeDraft()
	saved.Step = 3
	require.NoError(t, store.Save(ctx, "sid-1", saved))

	loaded, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	other, err := store.Load(ctx, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, NewDraft(), other)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	cleared, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, NewDraft(), cleared)
}

func TestDraftStoreIgnoresCorruptPayload(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "draft:sid", []byte("{not json"), 0))

	d, err := NewDraftStore(mem, time.Hour).Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, NewDraft(), d)
}
