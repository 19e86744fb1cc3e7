package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

type importSignupRepoStub struct {
	inserted []models.Signup
}

func (s *importSignupRepoStub) List(ctx context.Context, filter models.SignupFilter) ([]models.Signup, int, error) {
	return nil, 0, nil
}

func (s *importSignupRepoStub) Create(ctx context.Context, signup *models.Signup) (*models.Signup, error) {
	return signup, nil
}

func (s *importSignupRepoStub) BulkInsert(ctx context.Context, signups []models.Signup) ([]models.Signup, error) {
	s.inserted = append(s.inserted, signups...)
	return signups, nil
}

func (s *importSignupRepoStub) Delete(ctx context.Context, id string) error { return nil }

type importPositionRepoStub struct {
	findErr error
}

func (s importPositionRepoStub) List(ctx context.Context, filter models.PositionFilter) ([]models.Position, int, error) {
	return nil, 0, nil
}

func (s importPositionRepoStub) FindByID(ctx context.Context, id string) (*models.Position, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return &models.Position{ID: id, Name: "Water Station"}, nil
}

func (s importPositionRepoStub) Create(ctx context.Context, position *models.Position) (*models.Position, error) {
	return position, nil
}

func (s importPositionRepoStub) Update(ctx context.Context, position *models.Position) (*models.Position, error) {
	return position, nil
}

func (s importPositionRepoStub) Delete(ctx context.Context, id string) error { return nil }

func TestImportCSVHappyPath(t *testing.T) {
	signups := &importSignupRepoStub{}
	svc := NewImportService(signups, importPositionRepoStub{}, zap.NewNop())

	csvBody := strings.Join([]string{
		"volunteer_name,email,phone,start_time,end_time",
		"Alice,alice@example.com,555-0101,2026-06-06 08:00,2026-06-06 12:00",
		"Bob,,, 2026-06-06 08:00,2026-06-06 10:00",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), "pos-1", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Rejected)
	require.Len(t, signups.inserted, 2)
	assert.Equal(t, "Alice", signups.inserted[0].VolunteerName)
	require.NotNil(t, signups.inserted[0].Email)
	assert.Equal(t, "alice@example.com", *signups.inserted[0].Email)
	assert.Nil(t, signups.inserted[1].Email)
	assert.Equal(t, "pos-1", signups.inserted[1].PositionID)
}

func TestImportCSVHeaderAliases(t *testing.T) {
	signups := &importSignupRepoStub{}
	svc := NewImportService(signups, importPositionRepoStub{}, zap.NewNop())

	csvBody := strings.Join([]string{
		"Name,E-Mail,Phone_Number,Shift_Start,Shift_End",
		"Carla,carla@example.com,555-0102,2026-06-06T08:00,2026-06-06T16:00",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), "pos-1", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, signups.inserted, 1)
	assert.Equal(t, "Carla", signups.inserted[0].VolunteerName)
}

func TestImportCSVRejectsBadRowsPerLine(t *testing.T) {
	signups := &importSignupRepoStub{}
	svc := NewImportService(signups, importPositionRepoStub{}, zap.NewNop())

	csvBody := strings.Join([]string{
		"volunteer_name,email,start_time,end_time",
		",alice@example.com,2026-06-06 08:00,2026-06-06 12:00",
		"Bob,not-an-email,2026-06-06 08:00,2026-06-06 12:00",
		"Carla,carla@example.com,not-a-time,2026-06-06 12:00",
		"Dave,dave@example.com,2026-06-06 12:00,2026-06-06 08:00",
		"Erin,erin@example.com,2026-06-06 08:00,2026-06-06 12:00",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), "pos-1", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 4, result.Rejected)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Equal(t, "volunteer name is required", result.Errors[0].Message)
	assert.Equal(t, "invalid email", result.Errors[1].Message)
	assert.Equal(t, "invalid start time", result.Errors[2].Message)
	assert.Equal(t, "end time must be after start time", result.Errors[3].Message)
	require.Len(t, signups.inserted, 1)
	assert.Equal(t, "Erin", signups.inserted[0].VolunteerName)
}

func TestImportCSVMissingRequiredColumn(t *testing.T) {
	svc := NewImportService(&importSignupRepoStub{}, importPositionRepoStub{}, zap.NewNop())

	csvBody := "volunteer_name,start_time\nAlice,2026-06-06 08:00\n"

	_, err := svc.ImportCSV(context.Background(), "pos-1", strings.NewReader(csvBody))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "end_time")
}

func TestImportCSVUnknownPosition(t *testing.T) {
	svc := NewImportService(&importSignupRepoStub{}, importPositionRepoStub{findErr: sql.ErrNoRows}, zap.NewNop())

	_, err := svc.ImportCSV(context.Background(), "pos-missing", strings.NewReader("volunteer_name,start_time,end_time\n"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
