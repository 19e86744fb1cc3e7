package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crewcall/crewcall-api/internal/models"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the provided filter.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.OrganizerID != "" {
		where = append(where, fmt.Sprintf("organizer_id = $%d", len(args)+1))
		args = append(args, filter.OrganizerID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"name":       "name",
		"date":       "date",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, organizer_id, name, date, time, location, created_at, updated_at
FROM events WHERE %s
ORDER BY %s %s
LIMIT %d OFFSET %d`, whereClause, sortColumn, order, size, offset)

	var rows []models.Event
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return rows, total, nil
}

// FindByID returns a single event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT id, organizer_id, name, date, time, location, created_at, updated_at
FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	now := time.Now().UTC()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = now
	event.UpdatedAt = now
	query := `INSERT INTO events (id, organizer_id, name, date, time, location, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, organizer_id, name, date, time, location, created_at, updated_at`
	var stored models.Event
	if err := r.db.GetContext(ctx, &stored, query, event.ID, event.OrganizerID, event.Name, event.Date, event.Time, event.Location, event.CreatedAt, event.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &stored, nil
}

// Update applies organizer edits to an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE events SET name = $2, date = $3, time = $4, location = $5, updated_at = $6
WHERE id = $1
RETURNING id, organizer_id, name, date, time, location, created_at, updated_at`
	var stored models.Event
	if err := r.db.GetContext(ctx, &stored, query, event.ID, event.Name, event.Date, event.Time, event.Location, event.UpdatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes an event and cascades to its positions and signups.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete event: no row with id %s", id)
	}
	return nil
}
