// Package flyer renders a printable "missing person" poster for a case.
package flyer

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"redesperanza/web/internal/models"
)

var bogota = time.FixedZone("COT", -5*60*60)

func Render(c models.Case) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Se busca: "+c.MissingName, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFillColor(200, 30, 45)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 40)
	pdf.CellFormat(0, 24, "SE BUSCA", "", 1, "C", true, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 11, tr(c.MissingName), "", "C", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s años - %s", strconv.Itoa(c.MissingAge), sexLabel(c.MissingSex))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title, body string) {
		if body == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(title), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(body), "", "L", false)
		pdf.Ln(3)
	}

	section("Desaparecido desde", formatDate(c.MissingSince))
	section("Lugar", c.Address)
	section("Descripción física", c.PhysicalDescription)
	section("Vestimenta", c.ClothingDescription)
	section("Hechos", c.FactsDescription)

	pdf.Ln(4)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, tr("Si tienes información, comunícate con:"), "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	contact := c.ContactName
	if c.Relationship != "" {
		contact += " (" + c.Relationship + ")"
	}
	pdf.CellFormat(0, 7, tr(contact), "", 1, "L", true, 0, "")
	pdf.CellFormat(0, 7, tr("Teléfono: "+c.ContactPhone), "", 1, "L", true, 0, "")
	if c.ContactEmail != "" {
		pdf.CellFormat(0, 7, tr("Correo: "+c.ContactEmail), "", 1, "L", true, 0, "")
	}

	pdf.SetY(-24)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, tr("Red Esperanza - caso "+c.ID), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render flyer: %w", err)
	}
	return buf.Bytes(), nil
}

func sexLabel(sex string) string {
	switch sex {
	case "MASCULINO":
		return "Masculino"
	case "FEMENINO":
		return "Femenino"
	}
	return "Otro"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(bogota).Format("02/01/2006 15:04")
}
