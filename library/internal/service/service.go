package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/policy"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/keylock"
	"github.com/Astemirdum/library-circulation/pkg/validate"
)

// Publisher receives events after their transaction committed.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.EventCirculation) error
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	locker    *keylock.Locker
	publisher Publisher
	validator *validate.CustomValidator
	cfg       config.Circulation
	now       func() time.Time
}

type Option func(s *Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo repository.Repository, cfg config.Circulation, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		locker:    keylock.New(cfg.LockTimeout),
		validator: validate.NewCustomValidator(),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bookKey(id string) string    { return "book:" + id }
func userKey(id string) string    { return "user:" + id }
func requestKey(id string) string { return "request:" + id }

func newID() string { return uuid.NewString() }

// withLock runs fn holding keys. Keys must be passed book first, then user.
func (s *Service) withLock(ctx context.Context, keys []string, fn func() error) error {
	unlock, err := s.locker.LockAll(ctx, keys...)
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			return errors.Wrap(errs.ErrBusy, keys[0])
		}
		return err
	}
	defer unlock()
	return fn()
}

func (s *Service) publish(ctx context.Context, events ...kafka.EventCirculation) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Error("publish events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *Service) logResult(op string, err error, fields ...zap.Field) {
	if err == nil {
		s.log.Info(op, fields...)
		return
	}
	kind := errs.Kind(err)
	fields = append(fields, zap.String("kind", kind), zap.Error(err))
	if kind == "internal" {
		s.log.Error(op, fields...)
		return
	}
	s.log.Warn(op, fields...)
}

func authorize(actor model.Actor, op policy.Operation) error {
	if actor.UserID == "" || !policy.Authorize(actor.Role, op) {
		return errors.Wrapf(errs.ErrForbidden, "%s as %q", op, actor.Role)
	}
	return nil
}

func authorizeOwned(actor model.Actor, ownerID string, own, other policy.Operation) error {
	if actor.UserID == "" || !policy.AuthorizeOwned(actor, ownerID, own, other) {
		return errors.Wrapf(errs.ErrForbidden, "%s as %q", own, actor.Role)
	}
	return nil
}

// canSee reports whether actor may read records owned by ownerID.
func canSee(actor model.Actor, ownerID string) bool {
	return (actor.UserID != "" && actor.UserID == ownerID) || policy.Authorize(actor.Role, policy.ViewAll)
}

func (s *Service) validate(v any) error {
	if err := s.validator.Validate(v); err != nil {
		if fields := validate.Fields(err); fields != nil {
			return errs.NewValidationError(fields)
		}
		return err
	}
	return nil
}

func (s *Service) period(days, def int) (time.Duration, error) {
	if days == 0 {
		days = def
	}
	if days < 0 || days > s.cfg.MaxPeriodDays {
		return 0, errs.NewValidationError(map[string]string{"days": "out of range"})
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
