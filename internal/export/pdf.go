// Package export renders trips as PDF and XLSX documents.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/timeline"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 6.0
)

// document wraps fpdf with a UTF-8 to cp1252 translator for the core fonts.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) heading(text string, size float64) {
	d.pdf.SetFont(fontFamily, "B", size)
	d.pdf.MultiCell(0, size/2+2, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

func (d *document) text(style string, size float64, text string) {
	d.pdf.SetFont(fontFamily, style, size)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func tripPeriod(trip models.Trip) string {
	if trip.StartDate == nil {
		return ""
	}
	if trip.EndDate == nil {
		return trip.StartDate.Format("02/01/2006")
	}
	return trip.StartDate.Format("02/01/2006") + " - " + trip.EndDate.Format("02/01/2006")
}

// ItineraryPDF prints the trip day by day.
func ItineraryPDF(trip models.Trip, days []timeline.Day, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	d := newDocument(trip.Title)
	d.heading(trip.Title, 18)
	if p := tripPeriod(trip); p != "" {
		d.text("", 11, p)
		d.pdf.Ln(4)
	}
	if len(days) == 0 {
		d.text("I", 11, "Nenhum item no roteiro.")
	}

	for _, day := range days {
		date, err := time.Parse(timeline.DateLayout, day.Date)
		label := day.Date
		if err == nil {
			label = date.Format("02/01/2006")
		}
		d.heading(label, 13)
		for _, it := range day.Items {
			line := fmt.Sprintf("%s  %s (%s)", it.StartDatetime.In(loc).Format("15:04"), it.Name, it.ItemType)
			d.text("B", 11, line)
			if addr := it.Address(); addr != "" {
				d.text("", 10, addr)
			}
			if it.HasWeather() && it.WeatherTemp != nil {
				d.text("", 10, fmt.Sprintf("%s °C, %s", *it.WeatherTemp, *it.WeatherCondition))
			}
			if it.Notes != "" {
				d.text("I", 10, it.Notes)
			}
			d.pdf.Ln(2)
		}
		d.pdf.Ln(3)
	}
	return d.bytes()
}

// ChecklistPDF prints the checklist grouped by category.
func ChecklistPDF(trip models.Trip, items []models.ChecklistItem) ([]byte, error) {
	d := newDocument("Checklist - " + trip.Title)
	d.heading("Checklist: "+trip.Title, 18)

	groups := make(map[string][]models.ChecklistItem)
	for _, it := range items {
		groups[it.Category] = append(groups[it.Category], it)
	}
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	if len(categories) == 0 {
		d.text("I", 11, "Checklist vazio.")
	}
	for _, c := range categories {
		d.heading(c, 13)
		for _, it := range groups[c] {
			mark := "[  ]"
			if it.IsChecked {
				mark = "[x]"
			}
			d.text("", 11, mark+" "+it.Item)
		}
		d.pdf.Ln(3)
	}
	return d.bytes()
}
