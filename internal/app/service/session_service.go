package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
)

var ErrSessionNotFound = errors.New("configuration session not found")

// SessionNotifier pushes session state changes to connected clients.
type SessionNotifier interface {
	NotifySession(sessionID string, event string, payload interface{})
}

// OpenSessionInput carries everything needed to start a configuration.
type OpenSessionInput struct {
	LeadID              uint
	TemplateID          uint
	CurrencyID          uint
	CompanyID           uint
	UOMID               uint
	Quantity            float64
	PreselectedValueIDs []uint
	CustomValues        map[uint]string
	Edit                bool
}

// SessionService owns the live configuration sessions. Each session is
// guarded by its own mutex so edits on one session never block another;
// the engine itself is single-threaded per session.
type SessionService interface {
	Open(ctx context.Context, input OpenSessionInput) (*configurator.Session, error)
	Get(sessionID string) (*configurator.Session, error)
	SelectValue(ctx context.Context, sessionID string, templateID, lineID, valueID uint) (*configurator.Session, error)
	SetCustomValue(sessionID string, templateID, valueID uint, text string) (*configurator.Session, error)
	SetQuantity(ctx context.Context, sessionID string, templateID uint, quantity float64) (*configurator.Session, error)
	Attach(ctx context.Context, sessionID string, templateID uint) (*configurator.Session, error)
	Detach(sessionID string, templateID uint) (*configurator.Session, error)
	SetFileUpload(sessionID string, templateID, lineID uint, payload *configurator.FilePayload) (*configurator.Session, error)
	SetConditionalFileUpload(sessionID string, templateID, lineID uint, payload *configurator.FilePayload) (*configurator.Session, error)
	SetM2OValue(ctx context.Context, sessionID string, templateID, lineID uint, resID *uint) (*configurator.Session, error)
	Validate(sessionID string) (configurator.ValidationResult, error)
	Submit(ctx context.Context, sessionID string) (*configurator.SubmissionPayload, error)
	Discard(sessionID string) error
	SweepExpired(ttl time.Duration) int
}

type sessionEntry struct {
	mu      sync.Mutex
	session *configurator.Session
}

type sessionService struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	backend  configurator.Collaborator
	notifier SessionNotifier
}

func NewSessionService(backend configurator.Collaborator, notifier SessionNotifier) SessionService {
	return &sessionService{
		sessions: make(map[string]*sessionEntry),
		backend:  backend,
		notifier: notifier,
	}
}

func (s *sessionService) Open(ctx context.Context, input OpenSessionInput) (*configurator.Session, error) {
	session, err := configurator.Open(ctx, s.backend, configurator.OpenOptions{
		SessionID:           uuid.New().String(),
		LeadID:              input.LeadID,
		TemplateID:          input.TemplateID,
		CurrencyID:          input.CurrencyID,
		CompanyID:           input.CompanyID,
		UOMID:               input.UOMID,
		Quantity:            input.Quantity,
		PreselectedValueIDs: input.PreselectedValueIDs,
		CustomValues:        input.CustomValues,
		Edit:                input.Edit,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	logger.Info("Configuration session opened", map[string]interface{}{
		"session_id":  session.ID,
		"lead_id":     input.LeadID,
		"template_id": input.TemplateID,
	})
	return session, nil
}

func (s *sessionService) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// withSession runs fn with the session's lock held and notifies clients
// after a successful mutation.
func (s *sessionService) withSession(sessionID, event string, fn func(*configurator.Session) error) (*configurator.Session, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.session); err != nil {
		return nil, err
	}
	if s.notifier != nil && event != "" {
		s.notifier.NotifySession(sessionID, event, entry.session)
	}
	return entry.session, nil
}

func (s *sessionService) Get(sessionID string) (*configurator.Session, error) {
	return s.withSession(sessionID, "", func(*configurator.Session) error { return nil })
}

func (s *sessionService) SelectValue(ctx context.Context, sessionID string, templateID, lineID, valueID uint) (*configurator.Session, error) {
	return s.withSession(sessionID, "value_selected", func(session *configurator.Session) error {
		product := session.Graph.Find(templateID)
		if product == nil {
			return configurator.ErrProductNotFound
		}
		line := product.LineByID(lineID)
		if line == nil {
			return configurator.ErrProductNotFound
		}
		multi := line.Attribute.DisplayType.MultiAllowed()
		return session.SelectValue(ctx, templateID, lineID, valueID, multi)
	})
}

func (s *sessionService) SetCustomValue(sessionID string, templateID, valueID uint, text string) (*configurator.Session, error) {
	return s.withSession(sessionID, "custom_value_set", func(session *configurator.Session) error {
		session.SetCustomValue(templateID, valueID, text)
		return nil
	})
}

func (s *sessionService) SetQuantity(ctx context.Context, sessionID string, templateID uint, quantity float64) (*configurator.Session, error) {
	return s.withSession(sessionID, "quantity_changed", func(session *configurator.Session) error {
		return session.SetQuantity(ctx, templateID, quantity)
	})
}

func (s *sessionService) Attach(ctx context.Context, sessionID string, templateID uint) (*configurator.Session, error) {
	return s.withSession(sessionID, "product_attached", func(session *configurator.Session) error {
		return session.Attach(ctx, templateID)
	})
}

func (s *sessionService) Detach(sessionID string, templateID uint) (*configurator.Session, error) {
	return s.withSession(sessionID, "product_detached", func(session *configurator.Session) error {
		return session.Detach(templateID)
	})
}

func (s *sessionService) SetFileUpload(sessionID string, templateID, lineID uint, payload *configurator.FilePayload) (*configurator.Session, error) {
	return s.withSession(sessionID, "file_uploaded", func(session *configurator.Session) error {
		session.SetFileUpload(templateID, lineID, payload)
		return nil
	})
}

func (s *sessionService) SetConditionalFileUpload(sessionID string, templateID, lineID uint, payload *configurator.FilePayload) (*configurator.Session, error) {
	return s.withSession(sessionID, "file_uploaded", func(session *configurator.Session) error {
		session.SetConditionalFileUpload(templateID, lineID, payload)
		return nil
	})
}

func (s *sessionService) SetM2OValue(ctx context.Context, sessionID string, templateID, lineID uint, resID *uint) (*configurator.Session, error) {
	return s.withSession(sessionID, "reference_selected", func(session *configurator.Session) error {
		return session.SetM2OValue(ctx, templateID, lineID, resID)
	})
}

func (s *sessionService) Validate(sessionID string) (configurator.ValidationResult, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return configurator.ValidationResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Validate(), nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID string) (*configurator.SubmissionPayload, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	payload, err := entry.session.Submit(ctx)
	entry.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifySession(sessionID, "session_saved", entry.session)
	}
	s.remove(sessionID)
	return payload, nil
}

func (s *sessionService) Discard(sessionID string) error {
	entry, err := s.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	entry.session.Discard()
	entry.mu.Unlock()

	if s.notifier != nil {
		s.notifier.NotifySession(sessionID, "session_discarded", entry.session)
	}
	s.remove(sessionID)
	return nil
}

func (s *sessionService) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// SweepExpired discards sessions idle longer than ttl and returns how many
// were removed.
func (s *sessionService) SweepExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	var expired []string
	for id, entry := range s.sessions {
		entry.mu.Lock()
		if entry.session.TouchedAt.Before(cutoff) {
			entry.session.Discard()
			expired = append(expired, id)
		}
		entry.mu.Unlock()
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.remove(id)
	}

	if len(expired) > 0 {
		logger.Info("Expired configuration sessions discarded", map[string]interface{}{
			"count": len(expired),
		})
	}
	return len(expired)
}
