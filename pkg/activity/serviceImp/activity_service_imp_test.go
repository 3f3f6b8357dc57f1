package serviceImp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"agrisentry/database"
	"agrisentry/entities"
	"agrisentry/pkg/activity/repository"
	"agrisentry/pkg/activity/repositoryImp"
	"agrisentry/pkg/activity/service"
)

func newSvc(t *testing.T) *activitySvc {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	s := NewActivityService(repositoryImp.New(db)).(*activitySvc)
	s.now = func() time.Time { return time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC) }
	return s
}

func ptr[T any](v T) *T { return &v }

func TestCreateValidates(t *testing.T) {
	s := newSvc(t)
	tests := []struct {
		name  string
		in    entities.Activity
		field string
	}{
		{"no user", entities.Activity{Type: "sowing", Description: "x"}, "user_id"},
		{"bad type", entities.Activity{UserID: "u", Type: "dancing", Description: "x"}, "type"},
		{"blank description", entities.Activity{UserID: "u", Type: "sowing", Description: "  "}, "description"},
		{"negative quantity", entities.Activity{UserID: "u", Type: "sowing", Description: "x", QuantityValue: ptr(-1.0)}, "quantity_value"},
		{"rating", entities.Activity{UserID: "u", Type: "sowing", Description: "x", FeedbackRating: ptr(6)}, "feedback_rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := s.Create(&in)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateNormalisesAndDefaultsDate(t *testing.T) {
	s := newSvc(t)
	out, err := s.Create(&entities.Activity{UserID: "u", Type: " Irrigation ", Description: " 2h drip "})
	require.NoError(t, err)
	assert.NotZero(t, out.ActivityID)
	assert.Equal(t, entities.ActivityIrrigation, out.Type)
	assert.Equal(t, "2h drip", out.Description)
	assert.Equal(t, s.now(), out.ActivityDate)
}

func TestUpdatePartial(t *testing.T) {
	s := newSvc(t)
	a, err := s.Create(&entities.Activity{UserID: "u", Type: "fertilization", Description: "urea", QuantityValue: ptr(20.0), QuantityUnit: "kg"})
	require.NoError(t, err)

	out, err := s.UpdatePartial(a.ActivityID, "u", service.ActivityPatch{FeedbackRating: ptr(4), Description: ptr("urea top dress")})
	require.NoError(t, err)
	assert.Equal(t, "urea top dress", out.Description)
	assert.Equal(t, 4, *out.FeedbackRating)
	assert.Equal(t, 20.0, *out.QuantityValue)
	assert.Equal(t, "kg", out.QuantityUnit)

	_, err = s.UpdatePartial(a.ActivityID, "u", service.ActivityPatch{FeedbackRating: ptr(0)})
	var ve *service.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = s.UpdatePartial(a.ActivityID, "other", service.ActivityPatch{})
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	s := newSvc(t)
	_, err := s.Create(&entities.Activity{UserID: "u", FieldID: "wheat-a", Type: "irrigation", Description: "drip", QuantityValue: ptr(12.5), QuantityUnit: "mm", FeedbackRating: ptr(5)})
	require.NoError(t, err)
	_, err = s.Create(&entities.Activity{UserID: "someone", Type: "harvest", Description: "not mine"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportXLSX("u", repository.Filter{}, &buf))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()
	assert.Equal(t, []string{"Activities"}, x.GetSheetList())

	rows, err := x.GetRows("Activities")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Type", "Field", "Description", "Quantity", "Unit", "Rating"}, rows[0])
	assert.Equal(t, []string{"2024-07-10", "irrigation", "wheat-a", "drip", "12.5", "mm", "5"}, rows[1])
}
