package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/policy"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

// SubmitPurchaseRequest files a PENDING request on behalf of the actor.
func (s *Service) SubmitPurchaseRequest(ctx context.Context, actor model.Actor, d model.PurchaseDescriptor) (pr model.PurchaseRequest, err error) {
	defer func() {
		s.logResult("SubmitPurchaseRequest", err, zap.String("actor", actor.UserID), zap.String("requestId", pr.ID))
	}()
	if err = authorize(actor, policy.SubmitRequest); err != nil {
		return model.PurchaseRequest{}, err
	}
	if d.Priority == 0 {
		d.Priority = model.PriorityLow
	}
	if err = s.validate(d); err != nil {
		return model.PurchaseRequest{}, err
	}

	err = s.withLock(ctx, []string{userKey(actor.UserID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now := s.now()
			dup, err := tx.HasActiveRequest(ctx, actor.UserID, d.Title, d.Author)
			if err != nil {
				return err
			}
			if dup {
				return errs.ErrDuplicateRequest
			}
			if s.cfg.MaxActiveRequests > 0 {
				n, err := tx.CountActiveRequests(ctx, actor.UserID)
				if err != nil {
					return err
				}
				if n >= s.cfg.MaxActiveRequests {
					return errs.ErrRequestLimit
				}
			}
			pr = model.PurchaseRequest{
				ID:          newID(),
				RequesterID: actor.UserID,
				Descriptor:  d,
				Status:      model.PurchasePending,
				CreatedAt:   now,
				History: []model.HistoryEntry{{
					ActorID: actor.UserID,
					Action:  model.ActionSubmit,
					To:      model.PurchasePending,
					At:      now,
				}},
			}
			return tx.CreatePurchaseRequest(ctx, pr)
		})
	})
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	s.publish(ctx, purchaseEvent(actor, pr, pr.CreatedAt))
	return pr, nil
}

// DecidePurchaseRequest approves or rejects a PENDING request.
func (s *Service) DecidePurchaseRequest(ctx context.Context, actor model.Actor, id string, approve bool, comment string) (model.PurchaseRequest, error) {
	action := model.ActionReject
	if approve {
		action = model.ActionApprove
	}
	return s.transition(ctx, actor, id, policy.Decide, action, comment)
}

func (s *Service) MarkOrdered(ctx context.Context, actor model.Actor, id, comment string) (model.PurchaseRequest, error) {
	return s.transition(ctx, actor, id, policy.MarkOrdered, model.ActionOrder, comment)
}

// MarkReceived records receipt and admits the book to the catalog in one step, so a
// successful call ends in COMPLETED. If admission fails the request is left RECEIVED
// and the returned error wraps errs.ErrAdmission; AdmitToLibrary retries it.
func (s *Service) MarkReceived(ctx context.Context, actor model.Actor, id, comment string) (pr model.PurchaseRequest, err error) {
	defer func() {
		s.logResult("MarkReceived", err, zap.String("actor", actor.UserID), zap.String("requestId", id),
			zap.String("status", string(pr.Status)))
	}()
	if err = authorize(actor, policy.MarkReceived); err != nil {
		return model.PurchaseRequest{}, err
	}

	var (
		book   model.Book
		now    time.Time
		failed error
	)
	err = s.withLock(ctx, []string{requestKey(id)}, func() error {
		err := s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			cur, err := tx.GetPurchaseRequest(ctx, id)
			if err != nil {
				return err
			}
			if cur, err = s.apply(ctx, tx, cur, actor, model.ActionReceive, comment, now); err != nil {
				return err
			}
			if pr, book, err = s.admit(ctx, tx, cur, actor, comment, now); err != nil {
				failed = err
			}
			return err
		})
		if err == nil || failed == nil {
			return err
		}

		// admission failed and rolled the receipt back with it: keep the receipt alone
		err = s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			cur, err := tx.GetPurchaseRequest(ctx, id)
			if err != nil {
				return err
			}
			pr, err = s.apply(ctx, tx, cur, actor, model.ActionReceive, comment, now)
			return err
		})
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %w", errs.ErrAdmission, failed)
	})

	switch {
	case err == nil:
		s.publish(ctx,
			purchaseEvent(actor, pr, now),
			kafka.EventCirculation{Type: kafka.EventBookAdmitted, Timestamp: now, ActorID: actor.UserID,
				BookID: book.ID, RequestID: pr.ID, Status: string(book.Status)})
		return pr, nil
	case errors.Is(err, errs.ErrAdmission):
		s.publish(ctx, purchaseEvent(actor, pr, now))
		return pr, err
	default:
		return model.PurchaseRequest{}, err
	}
}

// AdmitToLibrary retries catalog admission for a request stuck in RECEIVED.
func (s *Service) AdmitToLibrary(ctx context.Context, actor model.Actor, id, comment string) (pr model.PurchaseRequest, err error) {
	defer func() {
		s.logResult("AdmitToLibrary", err, zap.String("actor", actor.UserID), zap.String("requestId", id))
	}()
	if err = authorize(actor, policy.AdmitToLibrary); err != nil {
		return model.PurchaseRequest{}, err
	}

	var (
		book model.Book
		now  time.Time
	)
	err = s.withLock(ctx, []string{requestKey(id)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			cur, err := tx.GetPurchaseRequest(ctx, id)
			if err != nil {
				return err
			}
			pr, book, err = s.admit(ctx, tx, cur, actor, comment, now)
			if err != nil && !errors.Is(err, errs.ErrInvalidTransition) {
				return fmt.Errorf("%w: %w", errs.ErrAdmission, err)
			}
			return err
		})
	})
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	s.publish(ctx,
		purchaseEvent(actor, pr, now),
		kafka.EventCirculation{Type: kafka.EventBookAdmitted, Timestamp: now, ActorID: actor.UserID,
			BookID: book.ID, RequestID: pr.ID, Status: string(book.Status)})
	return pr, nil
}

// admit creates the catalog record for a RECEIVED request and completes it.
func (s *Service) admit(ctx context.Context, tx repository.Store, pr model.PurchaseRequest, actor model.Actor, comment string, now time.Time) (model.PurchaseRequest, model.Book, error) {
	if pr.Status != model.PurchaseReceived {
		return pr, model.Book{}, errors.Wrapf(errs.ErrInvalidTransition, "%s from %s", model.ActionAdmit, pr.Status)
	}
	book, err := s.admitBook(ctx, tx, pr.Descriptor.BookDescriptor())
	if err != nil {
		return pr, model.Book{}, err
	}
	pr.BookID = &book.ID
	pr, err = s.apply(ctx, tx, pr, actor, model.ActionAdmit, comment, now)
	return pr, book, err
}

func (s *Service) transition(ctx context.Context, actor model.Actor, id string, op policy.Operation, action model.PurchaseAction, comment string) (pr model.PurchaseRequest, err error) {
	defer func() {
		s.logResult("PurchaseTransition", err, zap.String("actor", actor.UserID), zap.String("requestId", id),
			zap.String("action", string(action)), zap.String("status", string(pr.Status)))
	}()
	if err = authorize(actor, op); err != nil {
		return model.PurchaseRequest{}, err
	}
	var now time.Time
	err = s.withLock(ctx, []string{requestKey(id)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			cur, err := tx.GetPurchaseRequest(ctx, id)
			if err != nil {
				return err
			}
			pr, err = s.apply(ctx, tx, cur, actor, action, comment, now)
			return err
		})
	})
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	s.publish(ctx, purchaseEvent(actor, pr, now))
	return pr, nil
}

// apply moves pr along the transition table and appends the history entry.
func (s *Service) apply(ctx context.Context, tx repository.Store, pr model.PurchaseRequest, actor model.Actor, action model.PurchaseAction, comment string, now time.Time) (model.PurchaseRequest, error) {
	next, ok := model.NextPurchaseStatus(pr.Status, action)
	if !ok {
		return pr, errors.Wrapf(errs.ErrInvalidTransition, "%s from %s", action, pr.Status)
	}
	at := now
	if n := len(pr.History); n > 0 && at.Before(pr.History[n-1].At) {
		at = pr.History[n-1].At
	}
	entry := model.HistoryEntry{
		ActorID: actor.UserID,
		Action:  action,
		From:    pr.Status,
		To:      next,
		Comment: comment,
		At:      at,
	}
	pr.Status = next
	if action == model.ActionApprove || action == model.ActionReject {
		decidedBy := actor.UserID
		pr.DecidedBy = &decidedBy
		pr.DecidedAt = &at
	}
	if err := tx.UpdatePurchaseRequest(ctx, pr); err != nil {
		return pr, err
	}
	if err := tx.AppendHistory(ctx, pr.ID, entry); err != nil {
		return pr, err
	}
	pr.History = append(pr.History, entry)
	return pr, nil
}

func (s *Service) GetPurchaseRequest(ctx context.Context, actor model.Actor, id string) (model.PurchaseRequest, error) {
	pr, err := s.repo.GetPurchaseRequest(ctx, id)
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	if !canSee(actor, pr.RequesterID) {
		return model.PurchaseRequest{}, errs.ErrForbidden
	}
	return pr, nil
}

// ListPurchaseRequests lists requests matching f. Callers without ViewAll only see their own.
func (s *Service) ListPurchaseRequests(ctx context.Context, actor model.Actor, f model.PurchaseFilter) ([]model.PurchaseRequest, error) {
	if !policy.Authorize(actor.Role, policy.ViewAll) {
		if f.RequesterID != "" && f.RequesterID != actor.UserID {
			return nil, errs.ErrForbidden
		}
		f.RequesterID = actor.UserID
	}
	return s.repo.ListPurchaseRequests(ctx, f)
}

func purchaseEvent(actor model.Actor, pr model.PurchaseRequest, at time.Time) kafka.EventCirculation {
	e := kafka.EventCirculation{
		Type:      kafka.EventPurchaseTransition,
		Timestamp: at,
		ActorID:   actor.UserID,
		UserID:    pr.RequesterID,
		RequestID: pr.ID,
		Status:    string(pr.Status),
	}
	if pr.BookID != nil {
		e.BookID = *pr.BookID
	}
	return e
}
