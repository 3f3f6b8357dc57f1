package serviceImp

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"agrisentry/entities"
	"agrisentry/pkg/activity/repository"
	"agrisentry/pkg/activity/service"
)

const sheetName = "Activities"

type activitySvc struct {
	r   repository.ActivityRepository
	now func() time.Time
}

func NewActivityService(r repository.ActivityRepository) service.ActivityService {
	return &activitySvc{r: r, now: time.Now}
}

func validate(a *entities.Activity) error {
	if a.UserID == "" {
		return &service.ValidationError{Field: "user_id", Reason: "required"}
	}
	if !slices.Contains(entities.ActivityTypes, a.Type) {
		return &service.ValidationError{Field: "type", Reason: "must be one of " + strings.Join(entities.ActivityTypes, ", ")}
	}
	if strings.TrimSpace(a.Description) == "" {
		return &service.ValidationError{Field: "description", Reason: "required"}
	}
	if a.QuantityValue != nil && *a.QuantityValue < 0 {
		return &service.ValidationError{Field: "quantity_value", Reason: "must not be negative"}
	}
	if a.FeedbackRating != nil && (*a.FeedbackRating < 1 || *a.FeedbackRating > 5) {
		return &service.ValidationError{Field: "feedback_rating", Reason: "must be within 1-5"}
	}
	return nil
}

func (s *activitySvc) Create(a *entities.Activity) (*entities.Activity, error) {
	a.Type = strings.ToLower(strings.TrimSpace(a.Type))
	a.Description = strings.TrimSpace(a.Description)
	if a.ActivityDate.IsZero() {
		a.ActivityDate = s.now()
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	if err := s.r.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *activitySvc) List(uid string, f repository.Filter) ([]entities.Activity, error) {
	return s.r.ListByUser(uid, f)
}

func (s *activitySvc) UpdatePartial(id uint, uid string, p service.ActivityPatch) (*entities.Activity, error) {
	cur, err := s.r.FindByID(id, uid)
	if err != nil {
		return nil, err
	}
	if p.FieldID != nil {
		cur.FieldID = *p.FieldID
	}
	if p.Type != nil {
		cur.Type = strings.ToLower(strings.TrimSpace(*p.Type))
	}
	if p.Description != nil {
		cur.Description = strings.TrimSpace(*p.Description)
	}
	if p.QuantityValue != nil {
		cur.QuantityValue = p.QuantityValue
	}
	if p.QuantityUnit != nil {
		cur.QuantityUnit = *p.QuantityUnit
	}
	if p.ActivityDate != nil {
		cur.ActivityDate = *p.ActivityDate
	}
	if p.FeedbackRating != nil {
		cur.FeedbackRating = p.FeedbackRating
	}
	if err := validate(cur); err != nil {
		return nil, err
	}
	return cur, s.r.Update(cur)
}

func (s *activitySvc) Delete(id uint, uid string) error { return s.r.Delete(id, uid) }

func (s *activitySvc) Recent(uid string, n int) ([]entities.Activity, error) {
	return s.r.Recent(uid, n)
}

// ExportXLSX writes the user's activities, newest first, as a workbook with a
// single "Activities" sheet.
func (s *activitySvc) ExportXLSX(uid string, f repository.Filter, w io.Writer) error {
	list, err := s.r.ListByUser(uid, f)
	if err != nil {
		return err
	}

	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := []interface{}{"Date", "Type", "Field", "Description", "Quantity", "Unit", "Rating"}
	if err := x.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := x.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}

	for i, a := range list {
		row := []interface{}{a.ActivityDate.Format("2006-01-02"), a.Type, a.FieldID, a.Description, nil, a.QuantityUnit, nil}
		if a.QuantityValue != nil {
			row[4] = *a.QuantityValue
		}
		if a.FeedbackRating != nil {
			row[6] = *a.FeedbackRating
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := x.SetColWidth(sheetName, "D", "D", 48); err != nil {
		return err
	}

	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
