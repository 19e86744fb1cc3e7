package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/dto"
	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/export"
	"github.com/crewcall/crewcall-api/pkg/storage"
)

type rosterReader interface {
	RosterByEvent(ctx context.Context, eventID string) ([]models.RosterRow, error)
}

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// ExportService generates roster documents for an event and serves them via
// HMAC signed download URLs.
type ExportService struct {
	signups rosterReader
	events  eventFinder
	storage *storage.ExportStore
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(signups rosterReader, events eventFinder, store *storage.ExportStore, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{signups: signups, events: events, storage: store, signer: signer, logger: logger}
}

// GenerateRoster renders the event roster in the requested format, stores
// it, and returns a signed download ticket.
func (s *ExportService) GenerateRoster(ctx context.Context, eventID, format string) (*dto.ExportTicket, error) {
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	rows, err := s.signups.RosterByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	roster := export.Roster{EventName: event.Name, Entries: make([]export.RosterEntry, 0, len(rows))}
	for _, row := range rows {
		entry := export.RosterEntry{
			PositionName:  row.PositionName,
			VolunteerName: row.VolunteerName,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			Arrived:       row.Arrived,
		}
		if row.Email != nil {
			entry.Email = *row.Email
		}
		if row.Phone != nil {
			entry.Phone = *row.Phone
		}
		roster.Entries = append(roster.Entries, entry)
	}

	var data []byte
	if format == "csv" {
		data, err = roster.RenderCSV()
	} else {
		data, err = roster.RenderPDF()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	filename := fmt.Sprintf("rosters/%s-%d.%s", eventID, time.Now().UTC().Unix(), format)
	if _, err := s.storage.Save(filename, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store roster")
	}

	token, expiresAt, err := s.signer.Generate(filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	s.logger.Info("roster exported", zap.String("event_id", eventID), zap.String("file", filename))
	return &dto.ExportTicket{
		FileName:  filename,
		URL:       fmt.Sprintf("/exports/download?token=%s", token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// ResolveDownload validates a signed token and returns the stored file path.
func (s *ExportService) ResolveDownload(token string) (string, error) {
	relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return s.storage.Path(relPath), nil
}
