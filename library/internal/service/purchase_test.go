package service_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

var sicp = model.PurchaseDescriptor{
	Title:     "Structure and Interpretation of Computer Programs",
	Author:    "Abelson, Sussman",
	ISBN:      "978-0262510875",
	Price:     "54.99",
	VendorURL: "https://www.amazon.com/dp/0262510871",
	Reason:    "course material",
}

func (f *fixture) submit(t *testing.T, actor model.Actor, d model.PurchaseDescriptor) model.PurchaseRequest {
	t.Helper()
	pr, err := f.svc.SubmitPurchaseRequest(context.Background(), actor, d)
	require.NoError(t, err)
	return pr
}

func TestService_PurchaseRequest_HappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	pr := f.submit(t, u1, sicp)
	require.Equal(t, model.PurchasePending, pr.Status)
	require.Equal(t, "u1", pr.RequesterID)
	require.Equal(t, model.PriorityLow, pr.Descriptor.Priority)
	require.Len(t, pr.History, 1)

	f.clock.Advance(time.Hour)
	pr, err := f.svc.DecidePurchaseRequest(ctx, approver, pr.ID, true, "worth it")
	require.NoError(t, err)
	require.Equal(t, model.PurchaseApproved, pr.Status)
	require.Equal(t, "a1", *pr.DecidedBy)
	require.Equal(t, f.clock.Now(), *pr.DecidedAt)

	f.clock.Advance(time.Hour)
	pr, err = f.svc.MarkOrdered(ctx, approver, pr.ID, "ordered from vendor")
	require.NoError(t, err)
	require.Equal(t, model.PurchaseOrdered, pr.Status)

	f.clock.Advance(24 * time.Hour)
	f.pub.Reset()
	pr, err = f.svc.MarkReceived(ctx, admin, pr.ID, "arrived")
	require.NoError(t, err)
	require.Equal(t, model.PurchaseCompleted, pr.Status)
	require.NotNil(t, pr.BookID)
	require.Equal(t, []kafka.EventType{kafka.EventPurchaseTransition, kafka.EventBookAdmitted}, f.pub.Types())

	book, err := f.svc.GetBook(ctx, *pr.BookID)
	require.NoError(t, err)
	require.Equal(t, model.BookAvailable, book.Status)
	require.Equal(t, sicp.Title, book.Title)
	require.Equal(t, sicp.ISBN, book.ISBN)

	stored, err := f.svc.GetPurchaseRequest(ctx, u1, pr.ID)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseCompleted, stored.Status)

	actions := make([]model.PurchaseAction, 0, len(stored.History))
	for i, h := range stored.History {
		actions = append(actions, h.Action)
		if i > 0 {
			require.False(t, h.At.Before(stored.History[i-1].At))
			require.Equal(t, stored.History[i-1].To, h.From)
		}
	}
	require.Equal(t, []model.PurchaseAction{
		model.ActionSubmit, model.ActionApprove, model.ActionOrder, model.ActionReceive, model.ActionAdmit,
	}, actions)
}

func TestService_PurchaseRequest_DoubleDecision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	pr := f.submit(t, u1, sicp)

	_, err := f.svc.DecidePurchaseRequest(ctx, approver, pr.ID, true, "")
	require.NoError(t, err)
	_, err = f.svc.DecidePurchaseRequest(ctx, approver, pr.ID, false, "changed my mind")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	stored, err := f.svc.GetPurchaseRequest(ctx, approver, pr.ID)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseApproved, stored.Status)
	require.Len(t, stored.History, 2)
}

func TestService_PurchaseRequest_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	pr := f.submit(t, u1, sicp)

	pr, err := f.svc.DecidePurchaseRequest(ctx, admin, pr.ID, false, "out of budget")
	require.NoError(t, err)
	require.Equal(t, model.PurchaseRejected, pr.Status)
	require.Equal(t, "out of budget", pr.History[len(pr.History)-1].Comment)

	_, err = f.svc.MarkOrdered(ctx, admin, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	// a rejected request no longer blocks a new one for the same title
	f.submit(t, u1, sicp)
}

func TestService_PurchaseRequest_OutOfOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	pr := f.submit(t, u1, sicp)

	_, err := f.svc.MarkReceived(ctx, admin, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	_, err = f.svc.MarkOrdered(ctx, approver, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	_, err = f.svc.AdmitToLibrary(ctx, admin, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	stored, err := f.svc.GetPurchaseRequest(ctx, u1, pr.ID)
	require.NoError(t, err)
	require.Equal(t, model.PurchasePending, stored.Status)
	require.Len(t, stored.History, 1)

	list, err := f.svc.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	require.Zero(t, list.TotalElements)
}

func TestService_PurchaseRequest_Authorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	pr := f.submit(t, u1, sicp)

	_, err := f.svc.DecidePurchaseRequest(ctx, u1, pr.ID, true, "")
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.DecidePurchaseRequest(ctx, approver, pr.ID, true, "")
	require.NoError(t, err)
	_, err = f.svc.MarkOrdered(ctx, u2, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.MarkOrdered(ctx, approver, pr.ID, "")
	require.NoError(t, err)
	_, err = f.svc.MarkReceived(ctx, approver, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.GetPurchaseRequest(ctx, u2, pr.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.ListPurchaseRequests(ctx, u2, model.PurchaseFilter{RequesterID: "u1"})
	require.ErrorIs(t, err, errs.ErrForbidden)
	own, err := f.svc.ListPurchaseRequests(ctx, u2, model.PurchaseFilter{})
	require.NoError(t, err)
	require.Empty(t, own)
	ordered, err := f.svc.ListPurchaseRequests(ctx, approver, model.PurchaseFilter{Status: model.PurchaseOrdered})
	require.NoError(t, err)
	require.Len(t, ordered, 1)
}

func TestService_SubmitPurchaseRequest_Rules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, func(cfg *config.Circulation) { cfg.MaxActiveRequests = 2 })

	_, err := f.svc.SubmitPurchaseRequest(ctx, u1, model.PurchaseDescriptor{
		Author:    "nobody",
		Price:     strings.Repeat("9", 33),
		VendorURL: strings.Repeat("x", 1001),
		Priority:  7,
	})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "Title")
	require.Contains(t, verr.Fields, "Price")
	require.Contains(t, verr.Fields, "VendorURL")
	require.Contains(t, verr.Fields, "Priority")

	f.submit(t, u1, sicp)
	dup := sicp
	dup.Title = "structure and interpretation of computer programs"
	_, err = f.svc.SubmitPurchaseRequest(ctx, u1, dup)
	require.ErrorIs(t, err, errs.ErrDuplicateRequest)

	// another user may ask for the same book
	f.submit(t, u2, sicp)

	f.submit(t, u1, model.PurchaseDescriptor{Title: "TAOCP", Author: "Knuth", Priority: model.PriorityHigh})
	_, err = f.svc.SubmitPurchaseRequest(ctx, u1, model.PurchaseDescriptor{Title: "Dragon Book", Author: "Aho"})
	require.ErrorIs(t, err, errs.ErrRequestLimit)
}

func TestService_SubmitPurchaseRequest_VendorMetadataVerbatim(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := model.PurchaseDescriptor{
		Title:     "Kafka on the Shore",
		Author:    "Haruki Murakami",
		Price:     "¥1,500",
		VendorURL: "amzn.to/3xYz",
	}
	pr := f.submit(t, u1, d)
	require.Equal(t, "¥1,500", pr.Descriptor.Price)
	require.Equal(t, "amzn.to/3xYz", pr.Descriptor.VendorURL)

	got, err := f.svc.GetPurchaseRequest(context.Background(), u1, pr.ID)
	require.NoError(t, err)
	require.Equal(t, pr.Descriptor, got.Descriptor)
}

func TestService_DecidePurchaseRequest_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	pr := f.submit(t, u1, sicp)

	var (
		ok      atomic.Int32
		invalid atomic.Int32
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 10; i++ {
		approve := i%2 == 0
		g.Go(func() error {
			_, err := f.svc.DecidePurchaseRequest(gctx, approver, pr.ID, approve, "")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, errs.ErrInvalidTransition):
				invalid.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), ok.Load())
	require.Equal(t, int32(9), invalid.Load())

	stored, err := f.svc.GetPurchaseRequest(ctx, u1, pr.ID)
	require.NoError(t, err)
	require.Len(t, stored.History, 2)
}

// flakyRepo fails the first n catalog inserts.
type flakyRepo struct {
	repository.Repository
	failures atomic.Int32
}

func (r *flakyRepo) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return r.Repository.InTx(ctx, func(tx repository.Store) error {
		return fn(&flakyStore{Store: tx, repo: r})
	})
}

type flakyStore struct {
	repository.Store
	repo *flakyRepo
}

func (s *flakyStore) CreateBook(ctx context.Context, b model.Book) error {
	if s.repo.failures.Add(-1) >= 0 {
		return errors.New("catalog unavailable")
	}
	return s.Store.CreateBook(ctx, b)
}

func TestService_MarkReceived_AdmissionRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &flakyRepo{Repository: repository.NewMemoryRepository(zap.NewNop())}
	f := newFixtureWithRepo(t, repo)

	pr := f.submit(t, u1, sicp)
	_, err := f.svc.DecidePurchaseRequest(ctx, approver, pr.ID, true, "")
	require.NoError(t, err)
	_, err = f.svc.MarkOrdered(ctx, approver, pr.ID, "")
	require.NoError(t, err)

	repo.failures.Store(2)
	received, err := f.svc.MarkReceived(ctx, admin, pr.ID, "arrived")
	require.ErrorIs(t, err, errs.ErrAdmission)
	require.Equal(t, "admission_failed", errs.Kind(err))
	require.Equal(t, model.PurchaseReceived, received.Status)

	stored, err := f.svc.GetPurchaseRequest(ctx, admin, pr.ID)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseReceived, stored.Status)
	require.Nil(t, stored.BookID)
	require.Equal(t, model.ActionReceive, stored.History[len(stored.History)-1].Action)

	// receipt is not repeated
	_, err = f.svc.MarkReceived(ctx, admin, pr.ID, "")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = f.svc.AdmitToLibrary(ctx, admin, pr.ID, "retry")
	require.ErrorIs(t, err, errs.ErrAdmission)
	_, err = f.svc.AdmitToLibrary(ctx, approver, pr.ID, "retry")
	require.ErrorIs(t, err, errs.ErrForbidden)

	done, err := f.svc.AdmitToLibrary(ctx, admin, pr.ID, "retry")
	require.NoError(t, err)
	require.Equal(t, model.PurchaseCompleted, done.Status)
	require.NotNil(t, done.BookID)

	list, err := f.svc.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.TotalElements)

	_, err = f.svc.AdmitToLibrary(ctx, admin, pr.ID, "again")
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}
