package scheduler

import (
	"time"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/service"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SessionSweeper discards configuration sessions that have been idle
// longer than the configured TTL.
type SessionSweeper struct {
	cron           *cron.Cron
	sessionService service.SessionService
	ttl            time.Duration
	interval       string
}

func NewSessionSweeper(sessionService service.SessionService, ttl time.Duration, interval string) *SessionSweeper {
	return &SessionSweeper{
		cron:           cron.New(),
		sessionService: sessionService,
		ttl:            ttl,
		interval:       interval,
	}
}

// Start schedules the sweep.
func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.interval, func() {
		removed := s.sessionService.SweepExpired(s.ttl)
		if removed > 0 {
			logger.Info("Session sweep completed", map[string]interface{}{
				"removed": removed,
				"ttl":     s.ttl.String(),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to schedule session sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"interval": s.interval,
		"ttl":      s.ttl.String(),
	})
	return nil
}

// Stop halts the scheduler.
func (s *SessionSweeper) Stop() {
	s.cron.Stop()
	logger.Info("Session sweeper stopped", nil)
}
