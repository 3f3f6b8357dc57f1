package serviceImp

import (
	"math"

	"agrisentry/pkg/climate"
	"agrisentry/pkg/field/service"
	"agrisentry/pkg/simulation"
)

type fieldSvc struct {
	eng   service.Engine
	rules climate.RulesEngine
}

func NewFieldService(eng service.Engine, rules climate.RulesEngine) service.FieldService {
	if rules == nil {
		rules = climate.Default()
	}
	return &fieldSvc{eng: eng, rules: rules}
}

// List reads one snapshot so every field comes from the same tick.
func (s *fieldSvc) List() []service.FieldView {
	snap := s.eng.Snapshot()
	out := make([]service.FieldView, 0, len(snap.Fields))
	for _, id := range s.eng.FieldIDs() {
		if st, ok := snap.Fields[id]; ok {
			out = append(out, s.view(st))
		}
	}
	return out
}

func (s *fieldSvc) Get(id string) (*service.FieldView, error) {
	st, err := s.eng.FieldState(id)
	if err != nil {
		return nil, err
	}
	v := s.view(st)
	return &v, nil
}

func (s *fieldSvc) History() []service.FieldView {
	h := s.eng.History()
	out := make([]service.FieldView, len(h))
	for i, st := range h {
		out[i] = s.view(st)
	}
	return out
}

func (s *fieldSvc) Clock() service.ClockView {
	snap := s.eng.Snapshot()
	return service.ClockView{
		SimulatedTime:  snap.SimulatedTime,
		Tick:           snap.Tick,
		Running:        s.eng.Running(),
		ReferenceField: s.eng.ReferenceField(),
		Model:          modelOf(s.eng.Physics()),
	}
}

func modelOf(p simulation.Physics) service.ModelView {
	return service.ModelView{
		BaseTemp:          p.BaseTemp,
		TempAmplitude:     p.TempAmplitude,
		BaseHumidity:      p.BaseHumidity,
		HumidityAmplitude: p.HumidityAmplitude,
		PeakHour:          math.Mod(p.PhaseShiftHours+6, 24),
		HeatThreshold:     p.HeatThreshold,
	}
}

func (s *fieldSvc) view(st simulation.FieldState) service.FieldView {
	return service.FieldView{
		FieldID:      st.FieldID,
		Timestamp:    st.Timestamp,
		SoilMoisture: round1(st.SoilMoisture),
		Temperature:  round1(st.Temperature),
		Humidity:     round1(st.Humidity),
		EC:           round1(st.EC),
		Assessment:   s.rules.Assess(st.FieldID, st),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
