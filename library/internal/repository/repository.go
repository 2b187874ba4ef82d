package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

// Store is the set of reads and writes available both on the repository and
// inside a transaction started with InTx.
type Store interface {
	GetBook(ctx context.Context, id string) (model.Book, error)
	// LockBook reads the book and holds its row until the transaction ends.
	LockBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, b model.Book) error
	UpdateBook(ctx context.Context, b model.Book) error
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)

	GetLoan(ctx context.Context, id string) (model.Loan, error)
	// ActiveLoan returns errs.ErrNotFound when the book has no unreturned loan.
	ActiveLoan(ctx context.Context, bookID string) (model.Loan, error)
	CreateLoan(ctx context.Context, l model.Loan) error
	UpdateLoan(ctx context.Context, l model.Loan) error
	ListLoans(ctx context.Context, f model.LoanFilter, now time.Time) ([]model.Loan, error)
	CountActiveLoans(ctx context.Context, userID string) (int, error)
	HasOverdueLoan(ctx context.Context, userID string, now time.Time) (bool, error)

	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	CreateReservation(ctx context.Context, r model.Reservation) error
	UpdateReservation(ctx context.Context, r model.Reservation) error
	// Queue returns the WAITING reservations of a book ordered by queue position.
	Queue(ctx context.Context, bookID string) ([]model.Reservation, error)
	// ActiveReservation returns the user's WAITING or READY reservation for the book.
	ActiveReservation(ctx context.Context, bookID, userID string) (model.Reservation, error)
	ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	CountActiveReservations(ctx context.Context, userID string) (int, error)

	GetPurchaseRequest(ctx context.Context, id string) (model.PurchaseRequest, error)
	CreatePurchaseRequest(ctx context.Context, pr model.PurchaseRequest) error
	// UpdatePurchaseRequest stores status, decision and admitted book. History is append-only
	// and written with AppendHistory.
	UpdatePurchaseRequest(ctx context.Context, pr model.PurchaseRequest) error
	AppendHistory(ctx context.Context, requestID string, e model.HistoryEntry) error
	ListPurchaseRequests(ctx context.Context, f model.PurchaseFilter) ([]model.PurchaseRequest, error)
	CountActiveRequests(ctx context.Context, requesterID string) (int, error)
	HasActiveRequest(ctx context.Context, requesterID, title, author string) (bool, error)
}

type Repository interface {
	Store
	// InTx runs fn in a single transaction. It commits when fn returns nil and
	// rolls back otherwise; nothing fn wrote is visible before commit.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
