package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"agrisentry/pkg/simulation"
)

// Crop status values.
const (
	StatusExcellent      = "excellent"
	StatusHealthy        = "healthy"
	StatusNeedsAttention = "needs-attention"
)

// Irrigation urgency values.
const (
	IrrigateImmediately = "IMMEDIATE"
	IrrigateToday       = "Today"
	IrrigateSoon        = "2-3 Days"
)

type RulesEngine interface {
	Assess(fieldID string, s simulation.FieldState) Assessment
	Thresholds(crop string) Thresholds
	Crops() []string
}

// Thresholds are soil-moisture percentages except ECMax (dS/m).
type Thresholds struct {
	Optimal        float64 `json:"optimal"`
	ImmediateBelow float64 `json:"immediate_below"`
	TodayBelow     float64 `json:"today_below"`
	ExcellentAbove float64 `json:"excellent_above"`
	HealthyAbove   float64 `json:"healthy_above"`
	ECMax          float64 `json:"ec_max"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Optimal:        70,
		ImmediateBelow: 30,
		TodayBelow:     50,
		ExcellentAbove: 80,
		HealthyAbove:   40,
		ECMax:          4.0,
	}
}

type Assessment struct {
	FieldID         string  `json:"field_id"`
	Crop            string  `json:"crop"`
	Status          string  `json:"status"`
	Irrigation      string  `json:"irrigation"`
	HealthScore     float64 `json:"health_score"`
	SalinityWarning bool    `json:"salinity_warning"`
}

type rules struct {
	def   Thresholds
	crops map[string]Thresholds
}

// Default returns the built-in rules with no per-crop overrides.
func Default() RulesEngine {
	return &rules{def: DefaultThresholds(), crops: map[string]Thresholds{}}
}

// LoadFromFiles layers per-crop thresholds from a CSV and then an XLSX file
// over the defaults. Either path may be empty.
func LoadFromFiles(csvPath, xlsxPath string) (RulesEngine, error) {
	r := &rules{def: DefaultThresholds(), crops: map[string]Thresholds{}}
	if csvPath != "" {
		if err := r.loadCSV(csvPath); err != nil {
			return nil, fmt.Errorf("crop rules %s: %w", csvPath, err)
		}
	}
	if xlsxPath != "" {
		if err := r.loadXLSX(xlsxPath); err != nil {
			return nil, fmt.Errorf("crop rules %s: %w", xlsxPath, err)
		}
	}
	return r, nil
}

// CropOf derives the crop from a field id: "wheat-a" is wheat.
func CropOf(fieldID string) string {
	crop, _, _ := strings.Cut(fieldID, "-")
	return strings.ToLower(strings.TrimSpace(crop))
}

func (r *rules) Thresholds(crop string) Thresholds {
	if t, ok := r.crops[strings.ToLower(crop)]; ok {
		return t
	}
	return r.def
}

func (r *rules) Crops() []string {
	out := make([]string, 0, len(r.crops))
	for c := range r.crops {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *rules) Assess(fieldID string, s simulation.FieldState) Assessment {
	crop := CropOf(fieldID)
	t := r.Thresholds(crop)
	m := s.SoilMoisture

	a := Assessment{
		FieldID:         fieldID,
		Crop:            crop,
		HealthScore:     math.Max(0, math.Min(100, 100-math.Abs(m-t.Optimal))),
		SalinityWarning: s.EC > t.ECMax,
	}
	switch {
	case m > t.ExcellentAbove:
		a.Status = StatusExcellent
	case m > t.HealthyAbove:
		a.Status = StatusHealthy
	default:
		a.Status = StatusNeedsAttention
	}
	switch {
	case m < t.ImmediateBelow:
		a.Irrigation = IrrigateImmediately
	case m < t.TodayBelow:
		a.Irrigation = IrrigateToday
	default:
		a.Irrigation = IrrigateSoon
	}
	return a
}

func (r *rules) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return err
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		rows = append(rows, rec)
	}
	return r.apply(head, rows)
}

func (r *rules) loadXLSX(path string) error {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("workbook has no sheets")
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.apply(rows[0], rows[1:])
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// apply reads one crop per row. Blank or unparsable cells keep the value the
// crop already had.
func (r *rules) apply(head []string, rows [][]string) error {
	hmap := map[string]int{}
	for i, h := range head {
		hmap[norm(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[norm(k)]; ok {
				return idx
			}
		}
		return -1
	}

	cCrop := findAny("crop", "crop_type", "cropname")
	if cCrop == -1 {
		return fmt.Errorf("missing crop column. Found headers: %v", head)
	}
	cols := []struct {
		idx int
		set func(*Thresholds, float64)
	}{
		{findAny("optimal", "optimal_moisture", "ideal"), func(t *Thresholds, v float64) { t.Optimal = v }},
		{findAny("immediate_below", "immediate"), func(t *Thresholds, v float64) { t.ImmediateBelow = v }},
		{findAny("today_below", "today"), func(t *Thresholds, v float64) { t.TodayBelow = v }},
		{findAny("excellent_above", "excellent"), func(t *Thresholds, v float64) { t.ExcellentAbove = v }},
		{findAny("healthy_above", "healthy"), func(t *Thresholds, v float64) { t.HealthyAbove = v }},
		{findAny("ec_max", "max_ec", "salinity"), func(t *Thresholds, v float64) { t.ECMax = v }},
	}

	for _, rec := range rows {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		crop := strings.ToLower(get(cCrop))
		if crop == "" {
			continue
		}
		t := r.Thresholds(crop)
		for _, c := range cols {
			if v, err := strconv.ParseFloat(get(c.idx), 64); err == nil {
				c.set(&t, v)
			}
		}
		r.crops[crop] = t
	}
	return nil
}
