package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
)

var _ repository.Repository = (*repository.MemoryRepository)(nil)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *repository.MemoryRepository {
	t.Helper()
	return repository.NewMemoryRepository(zap.NewExample().Named("test"))
}

func TestMemoryRepository_InTxRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateBook(ctx, model.Book{ID: "b1", Title: "Dune", Status: model.BookAvailable}))

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx repository.Store) error {
		borrower := "u1"
		require.NoError(t, tx.UpdateBook(ctx, model.Book{ID: "b1", Status: model.BookOnLoan, CurrentBorrower: &borrower}))
		require.NoError(t, tx.CreateLoan(ctx, model.Loan{ID: "l1", BookID: "b1", UserID: "u1", LoanDate: now, DueDate: now}))

		b, err := tx.GetBook(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, model.BookOnLoan, b.Status)
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := repo.GetBook(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, model.BookAvailable, b.Status)
	require.Nil(t, b.CurrentBorrower)
	_, err = repo.GetLoan(ctx, "l1")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryRepository_InTxCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	err := repo.InTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateBook(ctx, model.Book{ID: "b1", Title: "Dune", Status: model.BookAvailable}); err != nil {
			return err
		}
		return tx.CreateLoan(ctx, model.Loan{ID: "l1", BookID: "b1", UserID: "u1", LoanDate: now, DueDate: now.Add(time.Hour)})
	})
	require.NoError(t, err)

	l, err := repo.ActiveLoan(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "l1", l.ID)
}

func TestMemoryRepository_OneActiveLoanPerBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateLoan(ctx, model.Loan{ID: "l1", BookID: "b1", UserID: "u1", DueDate: now}))
	err := repo.CreateLoan(ctx, model.Loan{ID: "l2", BookID: "b1", UserID: "u2", DueDate: now})
	require.ErrorIs(t, err, errs.ErrConflict)

	returned := now
	require.NoError(t, repo.UpdateLoan(ctx, model.Loan{ID: "l1", DueDate: now, ReturnedAt: &returned}))
	require.NoError(t, repo.CreateLoan(ctx, model.Loan{ID: "l2", BookID: "b1", UserID: "u2", DueDate: now}))
}

func TestMemoryRepository_DuplicateISBN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateBook(ctx, model.Book{ID: "b1", ISBN: "978-0441013593"}))
	require.ErrorIs(t, repo.CreateBook(ctx, model.Book{ID: "b2", ISBN: "978-0441013593"}), errs.ErrConflict)
	require.NoError(t, repo.CreateBook(ctx, model.Book{ID: "b3"}))
	require.NoError(t, repo.CreateBook(ctx, model.Book{ID: "b4"}))
}

func TestMemoryRepository_Queue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	for i, u := range []string{"u3", "u1", "u2"} {
		pos := []int{3, 1, 2}[i]
		require.NoError(t, repo.CreateReservation(ctx, model.Reservation{
			ID: "r-" + u, BookID: "b1", UserID: u, QueuePosition: pos, Status: model.ReservationWaiting,
		}))
	}
	require.NoError(t, repo.CreateReservation(ctx, model.Reservation{
		ID: "r-old", BookID: "b1", UserID: "u9", Status: model.ReservationCancelled,
	}))

	q, err := repo.Queue(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, q, 3)
	require.Equal(t, []string{"u1", "u2", "u3"}, []string{q[0].UserID, q[1].UserID, q[2].UserID})

	err = repo.CreateReservation(ctx, model.Reservation{ID: "dup", BookID: "b1", UserID: "u1", Status: model.ReservationWaiting})
	require.ErrorIs(t, err, errs.ErrConflict)

	n, err := repo.CountActiveReservations(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMemoryRepository_HistoryIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	pr := model.PurchaseRequest{
		ID:          "p1",
		RequesterID: "u1",
		Descriptor:  model.PurchaseDescriptor{Title: "SICP", Author: "Abelson"},
		Status:      model.PurchasePending,
		History:     []model.HistoryEntry{{ActorID: "u1", Action: model.ActionSubmit, To: model.PurchasePending, At: now}},
	}
	require.NoError(t, repo.CreatePurchaseRequest(ctx, pr))

	got, err := repo.GetPurchaseRequest(ctx, "p1")
	require.NoError(t, err)
	got.History[0].Comment = "mutated"
	got.History = append(got.History, model.HistoryEntry{ActorID: "x"})

	require.NoError(t, repo.AppendHistory(ctx, "p1", model.HistoryEntry{ActorID: "a1", Action: model.ActionApprove, At: now}))

	stored, err := repo.GetPurchaseRequest(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, stored.History, 2)
	require.Empty(t, stored.History[0].Comment)
	require.Equal(t, "a1", stored.History[1].ActorID)

	ok, err := repo.HasActiveRequest(ctx, "u1", "sicp", "ABELSON")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryRepository_ListBooksPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateBook(ctx, model.Book{ID: id}))
	}

	page, err := repo.ListBooks(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalElements)
	require.Len(t, page.Items, 1)
	require.Equal(t, "c", page.Items[0].ID)

	all, err := repo.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
}
