package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/policy"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

// ReserveBook appends userID to the queue of an ON_LOAN book.
// An empty userID reserves for the actor.
func (s *Service) ReserveBook(ctx context.Context, actor model.Actor, bookID, userID string) (r model.Reservation, err error) {
	if userID == "" {
		userID = actor.UserID
	}
	defer func() {
		s.logResult("ReserveBook", err,
			zap.String("actor", actor.UserID), zap.String("bookId", bookID), zap.String("userId", userID),
			zap.Int("position", r.QueuePosition))
	}()
	if err = authorizeOwned(actor, userID, policy.Reserve, policy.ReserveForOther); err != nil {
		return model.Reservation{}, err
	}

	err = s.withLock(ctx, []string{bookKey(bookID), userKey(userID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now := s.now()
			book, err := tx.LockBook(ctx, bookID)
			if err != nil {
				return err
			}
			if book.Status == model.BookAvailable {
				return errs.ErrBookAvailable
			}
			if book.CurrentBorrower != nil && *book.CurrentBorrower == userID {
				return errs.ErrAlreadyBorrowing
			}
			if _, err := tx.ActiveReservation(ctx, bookID, userID); err == nil {
				return errs.ErrDuplicateReservation
			} else if !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			if s.cfg.MaxActiveReservations > 0 {
				n, err := tx.CountActiveReservations(ctx, userID)
				if err != nil {
					return err
				}
				if n >= s.cfg.MaxActiveReservations {
					return errs.ErrReservationLimit
				}
			}
			queue, err := tx.Queue(ctx, bookID)
			if err != nil {
				return err
			}
			position := 1
			if n := len(queue); n > 0 {
				position = queue[n-1].QueuePosition + 1
			}
			r = model.Reservation{
				ID:            newID(),
				BookID:        bookID,
				UserID:        userID,
				QueuePosition: position,
				ReservedAt:    now,
				Status:        model.ReservationWaiting,
				UpdatedAt:     now,
			}
			return tx.CreateReservation(ctx, r)
		})
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, reservationEvent(kafka.EventReservationCreated, actor, r, r.ReservedAt))
	return r, nil
}

// CancelReservation cancels a reservation at any position and closes the gap it leaves.
func (s *Service) CancelReservation(ctx context.Context, actor model.Actor, id string) (r model.Reservation, err error) {
	defer func() {
		s.logResult("CancelReservation", err, zap.String("actor", actor.UserID), zap.String("reservationId", id))
	}()
	r, err = s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if err = authorizeOwned(actor, r.UserID, policy.CancelOwn, policy.CancelAny); err != nil {
		return model.Reservation{}, err
	}

	err = s.withLock(ctx, []string{bookKey(r.BookID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			if _, err := tx.LockBook(ctx, r.BookID); err != nil {
				return err
			}
			now := s.now()
			var err error
			if r, err = tx.GetReservation(ctx, id); err != nil {
				return err
			}
			if r.Status.Terminal() {
				return errs.ErrAlreadyTerminal
			}
			waiting := r.Status == model.ReservationWaiting
			r.Status = model.ReservationCancelled
			r.QueuePosition = 0
			r.UpdatedAt = now
			if err := tx.UpdateReservation(ctx, r); err != nil {
				return err
			}
			if !waiting {
				return nil
			}
			return s.renumberQueue(ctx, tx, r.BookID, now)
		})
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(ctx, reservationEvent(kafka.EventReservationCanceled, actor, r, r.UpdatedAt))
	return r, nil
}

// promoteNext marks the head of the queue READY and moves everyone else up.
// It returns nil when nobody is waiting.
func (s *Service) promoteNext(ctx context.Context, tx repository.Store, bookID string, now time.Time) (*model.Reservation, error) {
	queue, err := tx.Queue(ctx, bookID)
	if err != nil || len(queue) == 0 {
		return nil, err
	}
	head := queue[0]
	head.Status = model.ReservationReady
	head.QueuePosition = 0
	head.UpdatedAt = now
	if err := tx.UpdateReservation(ctx, head); err != nil {
		return nil, err
	}
	if err := s.renumberQueue(ctx, tx, bookID, now); err != nil {
		return nil, err
	}
	return &head, nil
}

// renumberQueue closes the gap left by a reservation that left the queue:
// everyone behind it moves up by one, so positions stay 1..n.
func (s *Service) renumberQueue(ctx context.Context, tx repository.Store, bookID string, now time.Time) error {
	queue, err := tx.Queue(ctx, bookID)
	if err != nil {
		return err
	}
	for i, q := range queue {
		want := i + 1
		if q.QueuePosition == want {
			continue
		}
		q.QueuePosition = want
		q.UpdatedAt = now
		if err := tx.UpdateReservation(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetReservation(ctx context.Context, actor model.Actor, id string) (model.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !canSee(actor, r.UserID) {
		return model.Reservation{}, errs.ErrForbidden
	}
	return r, nil
}

// ListReservations lists reservations matching f. Callers without ViewAll only see their own.
func (s *Service) ListReservations(ctx context.Context, actor model.Actor, f model.ReservationFilter) ([]model.Reservation, error) {
	if !policy.Authorize(actor.Role, policy.ViewAll) {
		if f.UserID != "" && f.UserID != actor.UserID {
			return nil, errs.ErrForbidden
		}
		f.UserID = actor.UserID
	}
	return s.repo.ListReservations(ctx, f)
}

func reservationEvent(t kafka.EventType, actor model.Actor, r model.Reservation, at time.Time) kafka.EventCirculation {
	return kafka.EventCirculation{
		Type:          t,
		Timestamp:     at,
		ActorID:       actor.UserID,
		UserID:        r.UserID,
		BookID:        r.BookID,
		ReservationID: r.ID,
		Status:        string(r.Status),
	}
}
