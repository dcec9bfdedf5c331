package main

import (
	"context"
	"fmt"

	"github.com/ahrav/go-cipherscore/infrastructure/events"
	"github.com/ahrav/go-cipherscore/infrastructure/fhe"
	"github.com/ahrav/go-cipherscore/infrastructure/middleware"
	"github.com/ahrav/go-cipherscore/infrastructure/storage"
	"github.com/ahrav/go-cipherscore/internal/domain"
	"github.com/ahrav/go-cipherscore/internal/engine"
	"github.com/ahrav/go-cipherscore/internal/ports"
)

// session wires a complete in-process deployment: engine, runtime,
// stores, audit log, and the middleware chain (tracing around metrics
// around substrate serialization).
type session struct {
	svc     ports.RatingService
	runtime fhe.Runtime
	audit   *events.MemoryLog
	cfg     SessionConfig
}

// newSession builds the deployment from config and installs the
// initial policy.
func newSession(ctx context.Context, cfg SessionConfig) (*session, error) {
	rt, err := fhe.New(cfg.Runtime)
	if err != nil {
		return nil, err
	}

	store := storage.NewMemoryStore()
	audit := events.NewMemoryLog()

	eng, err := engine.New(engine.Deps{
		Runtime:    rt,
		Aggregates: store,
		Policies:   store,
		Events:     audit,
		Owner:      cfg.Owner,
	})
	if err != nil {
		return nil, err
	}

	var svc ports.RatingService = middleware.NewSerialized(eng)
	svc = middleware.NewInstrumented(svc, middleware.NewPrometheusMetrics(nil))
	svc = middleware.NewTraced(svc)

	s := &session{svc: svc, runtime: rt, audit: audit, cfg: cfg}
	if err := s.installPolicy(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// installPolicy encrypts and installs the configured thresholds.
func (s *session) installPolicy(ctx context.Context) error {
	enc := s.runtime.Encryptor()
	bronze, err := enc.EncryptWide(s.cfg.Thresholds.Bronze)
	if err != nil {
		return fmt.Errorf("encrypt bronze threshold: %w", err)
	}
	silver, err := enc.EncryptWide(s.cfg.Thresholds.Silver)
	if err != nil {
		return fmt.Errorf("encrypt silver threshold: %w", err)
	}
	gold, err := enc.EncryptWide(s.cfg.Thresholds.Gold)
	if err != nil {
		return fmt.Errorf("encrypt gold threshold: %w", err)
	}
	return s.svc.SetPolicy(ctx, s.cfg.Owner, bronze, silver, gold)
}

// submit encrypts and submits one score for a target.
func (s *session) submit(ctx context.Context, target domain.TargetID, score uint64) error {
	in, err := s.runtime.Encryptor().EncryptWide(score)
	if err != nil {
		return fmt.Errorf("encrypt score: %w", err)
	}
	return s.svc.Submit(ctx, target, in)
}
