package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/policy"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	if page < 0 || size < 0 {
		return model.ListBooks{}, errs.NewValidationError(map[string]string{"page": "negative paging"})
	}
	return s.repo.ListBooks(ctx, page, size)
}

// Queue returns the WAITING reservations of a book in promotion order.
// Callers without ViewAll see only their own user id, other entries are redacted.
func (s *Service) Queue(ctx context.Context, actor model.Actor, bookID string) ([]model.Reservation, error) {
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	queue, err := s.repo.Queue(ctx, bookID)
	if err != nil {
		return nil, err
	}
	for i := range queue {
		if !canSee(actor, queue[i].UserID) {
			queue[i].UserID = ""
		}
	}
	return queue, nil
}

// ImportBook adds a book to the catalog outside the purchase workflow.
func (s *Service) ImportBook(ctx context.Context, actor model.Actor, d model.BookDescriptor) (book model.Book, err error) {
	defer func() {
		s.logResult("ImportBook", err, zap.String("actor", actor.UserID), zap.String("bookId", book.ID))
	}()
	if err = authorize(actor, policy.ImportBook); err != nil {
		return model.Book{}, err
	}
	if err = s.validate(d); err != nil {
		return model.Book{}, err
	}
	err = s.repo.InTx(ctx, func(tx repository.Store) error {
		book, err = s.admitBook(ctx, tx, d)
		return err
	})
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, kafka.EventCirculation{
		Type:      kafka.EventBookAdmitted,
		Timestamp: book.CreatedAt,
		ActorID:   actor.UserID,
		BookID:    book.ID,
		Status:    string(book.Status),
	})
	return book, nil
}

// admitBook creates an AVAILABLE book record.
func (s *Service) admitBook(ctx context.Context, tx repository.Store, d model.BookDescriptor) (model.Book, error) {
	book := model.Book{
		ID:          newID(),
		Title:       d.Title,
		Author:      d.Author,
		ISBN:        d.ISBN,
		Publisher:   d.Publisher,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Status:      model.BookAvailable,
		CreatedAt:   s.now(),
	}
	if err := tx.CreateBook(ctx, book); err != nil {
		return model.Book{}, errors.Wrap(err, "create book")
	}
	return book, nil
}

// setBorrower is the only writer of a book's circulation status. Handing an
// ON_LOAN book to a new borrower is a conflict.
func (s *Service) setBorrower(ctx context.Context, tx repository.Store, book model.Book, userID *string) (model.Book, error) {
	if userID != nil && book.Status == model.BookOnLoan {
		return book, errors.Wrapf(errs.ErrConflict, "book %s already on loan", book.ID)
	}
	if userID == nil {
		book.Status = model.BookAvailable
		book.CurrentBorrower = nil
	} else {
		borrower := *userID
		book.Status = model.BookOnLoan
		book.CurrentBorrower = &borrower
	}
	if err := tx.UpdateBook(ctx, book); err != nil {
		return book, err
	}
	return book, nil
}
