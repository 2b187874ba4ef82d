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

// BorrowBook lends an AVAILABLE book to userID for days (0 means the default period).
// An empty userID borrows for the actor.
func (s *Service) BorrowBook(ctx context.Context, actor model.Actor, bookID, userID string, days int) (view model.LoanView, err error) {
	if userID == "" {
		userID = actor.UserID
	}
	defer func() {
		s.logResult("BorrowBook", err,
			zap.String("actor", actor.UserID), zap.String("bookId", bookID), zap.String("userId", userID))
	}()
	if err = authorizeOwned(actor, userID, policy.Borrow, policy.BorrowForOther); err != nil {
		return model.LoanView{}, err
	}
	period, err := s.period(days, s.cfg.LoanPeriodDays)
	if err != nil {
		return model.LoanView{}, err
	}

	var (
		loan model.Loan
		now  time.Time
	)
	err = s.withLock(ctx, []string{bookKey(bookID), userKey(userID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			book, err := tx.LockBook(ctx, bookID)
			if err != nil {
				return err
			}
			if book.Status == model.BookOnLoan {
				if book.CurrentBorrower != nil && *book.CurrentBorrower == userID {
					return errs.ErrAlreadyBorrowing
				}
				return errs.ErrBookUnavailable
			}
			if err := s.checkBorrower(ctx, tx, userID, now); err != nil {
				return err
			}
			loan, err = s.openLoan(ctx, tx, book, userID, now, period)
			return err
		})
	})
	if err != nil {
		return model.LoanView{}, err
	}
	s.publish(ctx, loanEvent(kafka.EventLoanOpened, actor, loan, now))
	return model.NewLoanView(loan, now), nil
}

func (s *Service) checkBorrower(ctx context.Context, tx repository.Store, userID string, now time.Time) error {
	if s.cfg.BlockBorrowWhenOverdue {
		overdue, err := tx.HasOverdueLoan(ctx, userID, now)
		if err != nil {
			return err
		}
		if overdue {
			return errs.ErrHasOverdue
		}
	}
	if s.cfg.MaxActiveLoans > 0 {
		n, err := tx.CountActiveLoans(ctx, userID)
		if err != nil {
			return err
		}
		if n >= s.cfg.MaxActiveLoans {
			return errs.ErrLoanLimit
		}
	}
	return nil
}

// openLoan creates the loan and hands the book to userID.
func (s *Service) openLoan(ctx context.Context, tx repository.Store, book model.Book, userID string, now time.Time, period time.Duration) (model.Loan, error) {
	if _, err := s.setBorrower(ctx, tx, book, &userID); err != nil {
		return model.Loan{}, err
	}
	loan := model.Loan{
		ID:       newID(),
		BookID:   book.ID,
		UserID:   userID,
		LoanDate: now,
		DueDate:  now.Add(period),
	}
	if err := tx.CreateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

// ReturnBook closes the loan and, when the book has a queue, lends it to the
// head of the queue in the same transaction.
func (s *Service) ReturnBook(ctx context.Context, actor model.Actor, loanID string) (res model.ReturnResult, err error) {
	defer func() {
		s.logResult("ReturnBook", err, zap.String("actor", actor.UserID), zap.String("loanId", loanID))
	}()
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.ReturnResult{}, err
	}
	if err = authorizeOwned(actor, loan.UserID, policy.ReturnOwn, policy.ReturnAny); err != nil {
		return model.ReturnResult{}, err
	}

	var (
		now      time.Time
		promoted *model.Reservation
		next     *model.Loan
	)
	err = s.withLock(ctx, []string{bookKey(loan.BookID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			now = s.now()
			promoted, next = nil, nil
			var err error
			if loan, err = tx.GetLoan(ctx, loanID); err != nil {
				return err
			}
			if !loan.Active() {
				return errs.ErrAlreadyReturned
			}
			book, err := tx.LockBook(ctx, loan.BookID)
			if err != nil {
				return err
			}
			returnedAt := now
			loan.ReturnedAt = &returnedAt
			if err := tx.UpdateLoan(ctx, loan); err != nil {
				return err
			}
			if book, err = s.setBorrower(ctx, tx, book, nil); err != nil {
				return err
			}

			r, err := s.promoteNext(ctx, tx, book.ID, now)
			if err != nil || r == nil {
				return err
			}
			l, err := s.openLoan(ctx, tx, book, r.UserID, now, time.Duration(s.cfg.LoanPeriodDays)*24*time.Hour)
			if err != nil {
				return errors.Wrap(err, "open loan for promoted reservation")
			}
			r.Status = model.ReservationCompleted
			r.UpdatedAt = now
			if err := tx.UpdateReservation(ctx, *r); err != nil {
				return err
			}
			promoted, next = r, &l
			return nil
		})
	})
	if err != nil {
		return model.ReturnResult{}, err
	}

	res = model.ReturnResult{Loan: model.NewLoanView(loan, now)}
	events := []kafka.EventCirculation{loanEvent(kafka.EventLoanReturned, actor, loan, now)}
	if promoted != nil {
		nextView := model.NewLoanView(*next, now)
		res.Promoted, res.PromotedLoan = promoted, &nextView
		events = append(events,
			reservationEvent(kafka.EventReservationPromoted, actor, *promoted, now),
			loanEvent(kafka.EventLoanOpened, actor, *next, now))
	}
	s.publish(ctx, events...)
	return res, nil
}

// ExtendLoan moves the due date forward by days (0 means the default extension).
func (s *Service) ExtendLoan(ctx context.Context, actor model.Actor, loanID string, days int) (view model.LoanView, err error) {
	defer func() {
		s.logResult("ExtendLoan", err, zap.String("actor", actor.UserID), zap.String("loanId", loanID))
	}()
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.LoanView{}, err
	}
	if err = authorizeOwned(actor, loan.UserID, policy.ExtendOwn, policy.ExtendAny); err != nil {
		return model.LoanView{}, err
	}
	period, err := s.period(days, s.cfg.ExtensionDays)
	if err != nil {
		return model.LoanView{}, err
	}

	var now time.Time
	err = s.withLock(ctx, []string{bookKey(loan.BookID)}, func() error {
		return s.repo.InTx(ctx, func(tx repository.Store) error {
			if _, err := tx.LockBook(ctx, loan.BookID); err != nil {
				return err
			}
			now = s.now()
			var err error
			if loan, err = tx.GetLoan(ctx, loanID); err != nil {
				return err
			}
			if !loan.Active() {
				return errs.ErrAlreadyReturned
			}
			if now.After(loan.DueDate.Add(s.cfg.ExtendGrace)) {
				return errs.ErrLoanOverdue
			}
			if s.cfg.MaxExtensions > 0 && loan.ExtensionCount >= s.cfg.MaxExtensions {
				return errs.ErrExtensionLimit
			}
			if s.cfg.ExtendBlockedByQueue {
				queue, err := tx.Queue(ctx, loan.BookID)
				if err != nil {
					return err
				}
				if len(queue) > 0 {
					return errs.ErrQueueWaiting
				}
			}
			loan.DueDate = loan.DueDate.Add(period)
			loan.ExtensionCount++
			return tx.UpdateLoan(ctx, loan)
		})
	})
	if err != nil {
		return model.LoanView{}, err
	}
	s.publish(ctx, loanEvent(kafka.EventLoanExtended, actor, loan, now))
	return model.NewLoanView(loan, now), nil
}

func (s *Service) GetLoan(ctx context.Context, actor model.Actor, loanID string) (model.LoanView, error) {
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.LoanView{}, err
	}
	if !canSee(actor, loan.UserID) {
		return model.LoanView{}, errs.ErrForbidden
	}
	return model.NewLoanView(loan, s.now()), nil
}

// ListLoans lists loans matching f. Callers without ViewAll only see their own.
func (s *Service) ListLoans(ctx context.Context, actor model.Actor, f model.LoanFilter) ([]model.LoanView, error) {
	if !policy.Authorize(actor.Role, policy.ViewAll) {
		if f.UserID != "" && f.UserID != actor.UserID {
			return nil, errs.ErrForbidden
		}
		f.UserID = actor.UserID
	}
	now := s.now()
	loans, err := s.repo.ListLoans(ctx, f, now)
	if err != nil {
		return nil, err
	}
	views := make([]model.LoanView, 0, len(loans))
	for _, l := range loans {
		views = append(views, model.NewLoanView(l, now))
	}
	return views, nil
}

func (s *Service) ListOverdue(ctx context.Context, actor model.Actor) ([]model.LoanView, error) {
	if err := authorize(actor, policy.ListOverdue); err != nil {
		return nil, err
	}
	return s.ListLoans(ctx, actor, model.LoanFilter{OverdueOnly: true})
}

func loanEvent(t kafka.EventType, actor model.Actor, l model.Loan, at time.Time) kafka.EventCirculation {
	return kafka.EventCirculation{
		Type:      t,
		Timestamp: at,
		ActorID:   actor.UserID,
		UserID:    l.UserID,
		BookID:    l.BookID,
		LoanID:    l.ID,
	}
}
