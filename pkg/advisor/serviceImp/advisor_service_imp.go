package serviceImp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrisentry/entities"
	"agrisentry/pkg/advisor/repository"
	"agrisentry/pkg/advisor/service"
	"agrisentry/pkg/ai"
	"agrisentry/pkg/climate"
)

const (
	recentActivities = 5
	kbNotes          = 3
	kbNoteRunes      = 600
	maxTurns         = 20
)

const systemPreamble = `You are an expert agricultural advisor for smallholder farms.
Give concise, practical steps on irrigation, fertilization, pest and disease control and weather-based decisions.
Use the live field readings below; say so when the data is not enough to decide.`

const diagnosePrompt = `Identify any crop disease, pest damage or nutrient deficiency visible in this photo.
Reply with: likely problem, confidence, and 2-3 treatment steps a farmer can take today.`

type Deps struct {
	Engine     service.Engine
	Rules      climate.RulesEngine
	AI         ai.Client
	Chats      repository.ChatRepository
	Activities service.ActivitySource // optional
	KB         service.KBSearcher     // optional
	Location   string
	Log        *zap.Logger
}

type advisorSvc struct{ d Deps }

func NewAdvisorService(d Deps) service.AdvisorService {
	if d.Rules == nil {
		d.Rules = climate.Default()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &advisorSvc{d}
}

func (s *advisorSvc) Chat(ctx context.Context, uid, sessionID string, msgs []ai.Message) (*service.Reply, error) {
	history := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		content := strings.TrimSpace(m.Content)
		if content == "" || (role != entities.RoleUser && role != entities.RoleAssistant) {
			continue
		}
		history = append(history, ai.Message{Role: role, Content: content})
	}
	if len(history) == 0 || history[len(history)-1].Role != entities.RoleUser {
		return nil, service.ErrEmptyConversation
	}
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return nil, service.ErrInvalidSession
	}

	question := history[len(history)-1].Content
	system := systemPreamble + "\n\nCurrent farm context:\n" + s.Context(ctx, uid, question)

	answer, err := s.d.AI.Chat(ctx, system, history)
	if err != nil {
		s.d.Log.Warn("advisor chat failed", zap.String("backend", s.d.AI.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}

	if err := s.d.Chats.Append(
		&entities.ChatMessage{SessionID: sessionID, UserID: uid, Role: entities.RoleUser, Content: question},
		&entities.ChatMessage{SessionID: sessionID, UserID: uid, Role: entities.RoleAssistant, Content: answer},
	); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}
	return &service.Reply{SessionID: sessionID, Message: answer}, nil
}

func (s *advisorSvc) Diagnose(ctx context.Context, image []byte, mimeType, note string) (string, error) {
	switch {
	case len(image) == 0:
		return "", service.ErrEmptyImage
	case len(image) > service.MaxImageBytes:
		return "", service.ErrImageTooLarge
	}
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = ai.DetectImageMIMEType(image)
	}
	prompt := diagnosePrompt
	if note = strings.TrimSpace(note); note != "" {
		prompt += "\nFarmer's note: " + note
	}

	out, err := s.d.AI.Diagnose(ctx, prompt, image, mimeType)
	if err != nil {
		s.d.Log.Warn("advisor diagnose failed", zap.String("backend", s.d.AI.Name()), zap.Error(err))
		return "", fmt.Errorf("%w: %w", service.ErrUpstream, err)
	}
	return out, nil
}

func (s *advisorSvc) Transcript(uid, sessionID string) ([]entities.ChatMessage, error) {
	return s.d.Chats.Session(uid, sessionID)
}

func (s *advisorSvc) Context(ctx context.Context, uid, query string) string {
	var b strings.Builder
	snap := s.d.Engine.Snapshot()
	fmt.Fprintf(&b, "Simulated time: %s (tick %d)\n", snap.SimulatedTime.Format("2006-01-02 15:04"), snap.Tick)
	if s.d.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", s.d.Location)
	}

	ref := s.d.Engine.ReferenceField()
	if st, ok := snap.Fields[ref]; ok {
		fmt.Fprintf(&b, "Weather station (%s): temperature %.1f°C, humidity %.0f%%\n", ref, st.Temperature, st.Humidity)
	}

	b.WriteString("Fields:\n")
	for _, id := range s.d.Engine.FieldIDs() {
		st, ok := snap.Fields[id]
		if !ok {
			continue
		}
		a := s.d.Rules.Assess(id, st)
		fmt.Fprintf(&b, "- %s (%s): soil moisture %.1f%%, ec %.2f dS/m, status %s, irrigate %s",
			id, a.Crop, st.SoilMoisture, st.EC, a.Status, a.Irrigation)
		if a.SalinityWarning {
			b.WriteString(", salinity warning")
		}
		b.WriteByte('\n')
	}

	if s.d.Activities != nil && uid != "" {
		acts, err := s.d.Activities.Recent(uid, recentActivities)
		if err != nil {
			s.d.Log.Warn("advisor recent activities", zap.Error(err))
		} else if len(acts) > 0 {
			b.WriteString("Recent activities:\n")
			for _, a := range acts {
				b.WriteString("- " + activityLine(a) + "\n")
			}
		}
	}

	if s.d.KB != nil && strings.TrimSpace(query) != "" {
		hits, err := s.d.KB.Search(ctx, query, kbNotes)
		if err != nil {
			s.d.Log.Warn("advisor kb search", zap.Error(err))
		} else if len(hits) > 0 {
			b.WriteString("Knowledge base notes:\n")
			for _, h := range hits {
				fmt.Fprintf(&b, "[%s] %s\n", h.DocTitle, truncate(h.Text, kbNoteRunes))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func activityLine(a entities.Activity) string {
	line := a.ActivityDate.Format("2006-01-02") + " " + a.Type
	if a.FieldID != "" {
		line += " on " + a.FieldID
	}
	line += ": " + a.Description
	if a.QuantityValue != nil {
		line += " (" + strings.TrimSpace(fmt.Sprintf("%g %s", *a.QuantityValue, a.QuantityUnit)) + ")"
	}
	return line
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
