package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

// rosterColumns maps accepted spreadsheet header spellings onto canonical
// field names. Unknown columns are ignored rather than rejected; optional
// fields may be missing entirely.
var rosterColumns = map[string]string{
	"volunteer_name": "volunteer_name",
	"volunteer":      "volunteer_name",
	"name":           "volunteer_name",
	"email":          "email",
	"e-mail":         "email",
	"phone":          "phone",
	"phone_number":   "phone",
	"start_time":     "start_time",
	"shift_start":    "start_time",
	"start":          "start_time",
	"end_time":       "end_time",
	"shift_end":      "end_time",
	"end":            "end_time",
}

var rosterTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ImportRowError reports a rejected roster row.
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarises a roster import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Rejected int              `json:"rejected"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportService ingests spreadsheet roster exports for a position. Rows go
// through named-column mapping and validated coercions at this boundary;
// well-formed rows are stored best-effort while bad ones are reported per
// line.
type ImportService struct {
	signups   signupRepository
	positions positionRepository
	logger    *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(signups signupRepository, positions positionRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{signups: signups, positions: positions, logger: logger}
}

// ImportCSV parses a roster CSV and stores the valid rows as signups for
// the given position.
func (s *ImportService) ImportCSV(ctx context.Context, positionID string, r io.Reader) (*ImportResult, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "position id is required")
	}
	if _, err := s.positions.FindByID(ctx, positionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable CSV")
	}
	columns, err := mapRosterHeader(header)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	result := &ImportResult{}
	var rows []models.Signup
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Rejected++
			result.Errors = append(result.Errors, ImportRowError{Line: line, Message: "malformed CSV row"})
			continue
		}
		signup, rowErr := coerceRosterRow(positionID, columns, record)
		if rowErr != "" {
			result.Rejected++
			result.Errors = append(result.Errors, ImportRowError{Line: line, Message: rowErr})
			continue
		}
		rows = append(rows, signup)
	}

	if len(rows) > 0 {
		if _, err := s.signups.BulkInsert(ctx, rows); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store roster")
		}
	}
	result.Imported = len(rows)
	s.logger.Info("roster imported",
		zap.String("position_id", positionID),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", result.Rejected))
	return result, nil
}

func mapRosterHeader(header []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := rosterColumns[key]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = i
			}
		}
	}
	for _, required := range []string{"volunteer_name", "start_time", "end_time"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columns, nil
}

func coerceRosterRow(positionID string, columns map[string]int, record []string) (models.Signup, string) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := field("volunteer_name")
	if name == "" {
		return models.Signup{}, "volunteer name is required"
	}
	start, ok := parseRosterTime(field("start_time"))
	if !ok {
		return models.Signup{}, "invalid start time"
	}
	end, ok := parseRosterTime(field("end_time"))
	if !ok {
		return models.Signup{}, "invalid end time"
	}
	if !end.After(start) {
		return models.Signup{}, "end time must be after start time"
	}

	signup := models.Signup{
		PositionID:    positionID,
		VolunteerName: name,
		StartTime:     start,
		EndTime:       end,
	}
	if email := field("email"); email != "" {
		if !strings.Contains(email, "@") {
			return models.Signup{}, "invalid email"
		}
		signup.Email = &email
	}
	if phone := field("phone"); phone != "" {
		signup.Phone = &phone
	}
	return signup, ""
}

func parseRosterTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range rosterTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
