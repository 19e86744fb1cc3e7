package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RosterEntry is one volunteer line in an event roster document.
type RosterEntry struct {
	PositionName  string
	VolunteerName string
	Email         string
	Phone         string
	StartTime     time.Time
	EndTime       time.Time
	Arrived       bool
}

// Roster is a renderable event roster.
type Roster struct {
	EventName string
	Entries   []RosterEntry
}

var rosterHeaders = []string{"Position", "Volunteer", "Email", "Phone", "Start", "End", "Arrived"}

func (r Roster) records() [][]string {
	records := make([][]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		arrived := "no"
		if entry.Arrived {
			arrived = "yes"
		}
		records = append(records, []string{
			entry.PositionName,
			entry.VolunteerName,
			entry.Email,
			entry.Phone,
			entry.StartTime.Format("2006-01-02 15:04"),
			entry.EndTime.Format("2006-01-02 15:04"),
			arrived,
		})
	}
	return records
}

// RenderCSV produces CSV encoded bytes for the roster.
func (r Roster) RenderCSV() ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(rosterHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, record := range r.records() {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF produces a tabular PDF roster document.
func (r Roster) RenderPDF() ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := r.EventName
	if title == "" {
		title = "Event Roster"
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	widths := []float64{50, 50, 55, 35, 35, 35, 17}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range rosterHeaders {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, record := range r.records() {
		for i, value := range record {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
