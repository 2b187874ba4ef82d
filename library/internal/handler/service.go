package handler

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	GetBook(ctx context.Context, id string) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	ImportBook(ctx context.Context, actor model.Actor, d model.BookDescriptor) (model.Book, error)
	Queue(ctx context.Context, actor model.Actor, bookID string) ([]model.Reservation, error)

	BorrowBook(ctx context.Context, actor model.Actor, bookID, userID string, days int) (model.LoanView, error)
	ReturnBook(ctx context.Context, actor model.Actor, loanID string) (model.ReturnResult, error)
	ExtendLoan(ctx context.Context, actor model.Actor, loanID string, days int) (model.LoanView, error)
	GetLoan(ctx context.Context, actor model.Actor, loanID string) (model.LoanView, error)
	ListLoans(ctx context.Context, actor model.Actor, f model.LoanFilter) ([]model.LoanView, error)
	ListOverdue(ctx context.Context, actor model.Actor) ([]model.LoanView, error)

	ReserveBook(ctx context.Context, actor model.Actor, bookID, userID string) (model.Reservation, error)
	CancelReservation(ctx context.Context, actor model.Actor, id string) (model.Reservation, error)
	GetReservation(ctx context.Context, actor model.Actor, id string) (model.Reservation, error)
	ListReservations(ctx context.Context, actor model.Actor, f model.ReservationFilter) ([]model.Reservation, error)

	SubmitPurchaseRequest(ctx context.Context, actor model.Actor, d model.PurchaseDescriptor) (model.PurchaseRequest, error)
	DecidePurchaseRequest(ctx context.Context, actor model.Actor, id string, approve bool, comment string) (model.PurchaseRequest, error)
	MarkOrdered(ctx context.Context, actor model.Actor, id, comment string) (model.PurchaseRequest, error)
	MarkReceived(ctx context.Context, actor model.Actor, id, comment string) (model.PurchaseRequest, error)
	AdmitToLibrary(ctx context.Context, actor model.Actor, id, comment string) (model.PurchaseRequest, error)
	GetPurchaseRequest(ctx context.Context, actor model.Actor, id string) (model.PurchaseRequest, error)
	ListPurchaseRequests(ctx context.Context, actor model.Actor, f model.PurchaseFilter) ([]model.PurchaseRequest, error)
}

var _ LibraryService = (*service.Service)(nil)
