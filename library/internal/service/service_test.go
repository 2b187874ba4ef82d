package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

var (
	u1       = model.Actor{UserID: "u1", Role: model.RoleUser}
	u2       = model.Actor{UserID: "u2", Role: model.RoleUser}
	u3       = model.Actor{UserID: "u3", Role: model.RoleUser}
	approver = model.Actor{UserID: "a1", Role: model.RoleApprover}
	admin    = model.Actor{UserID: "root", Role: model.RoleAdmin}

	day = 24 * time.Hour
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []kafka.EventCirculation
}

func (r *recorder) Publish(_ context.Context, events ...kafka.EventCirculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) Types() []kafka.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]kafka.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	svc   *service.Service
	repo  repository.Repository
	clock *clock
	pub   *recorder
}

func newFixture(t *testing.T, opts ...func(cfg *config.Circulation)) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, repository.NewMemoryRepository(zap.NewNop()), opts...)
}

func newFixtureWithRepo(t *testing.T, repo repository.Repository, opts ...func(cfg *config.Circulation)) *fixture {
	t.Helper()
	cfg := config.DefaultCirculation()
	for _, opt := range opts {
		opt(&cfg)
	}
	f := &fixture{
		repo:  repo,
		clock: &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		pub:   &recorder{},
	}
	f.svc = service.NewService(repo, cfg, zap.NewExample().Named("test"),
		service.WithClock(f.clock.Now),
		service.WithPublisher(f.pub))
	return f
}

func (f *fixture) book(t *testing.T, title string) model.Book {
	t.Helper()
	b, err := f.svc.ImportBook(context.Background(), admin, model.BookDescriptor{Title: title, Author: "Author of " + title})
	require.NoError(t, err)
	return b
}

func (f *fixture) borrow(t *testing.T, actor model.Actor, bookID string) model.LoanView {
	t.Helper()
	l, err := f.svc.BorrowBook(context.Background(), actor, bookID, "", 0)
	require.NoError(t, err)
	return l
}

func (f *fixture) reserve(t *testing.T, actor model.Actor, bookID string) model.Reservation {
	t.Helper()
	r, err := f.svc.ReserveBook(context.Background(), actor, bookID, "")
	require.NoError(t, err)
	return r
}

// requireQueue checks that the WAITING reservations are exactly users, at positions 1..n.
func (f *fixture) requireQueue(t *testing.T, bookID string, users ...string) {
	t.Helper()
	queue, err := f.svc.Queue(context.Background(), admin, bookID)
	require.NoError(t, err)
	got := make([]string, 0, len(queue))
	for i, r := range queue {
		require.Equal(t, i+1, r.QueuePosition, "position of %s", r.UserID)
		require.Equal(t, model.ReservationWaiting, r.Status)
		got = append(got, r.UserID)
	}
	require.Equal(t, append([]string{}, users...), got)
}

func TestService_ImportBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.svc.ImportBook(ctx, admin, model.BookDescriptor{Title: "Dune", Author: "Herbert", ISBN: "978-0441013593"})
	require.NoError(t, err)
	require.Equal(t, model.BookAvailable, b.Status)
	require.Nil(t, b.CurrentBorrower)
	require.Equal(t, f.clock.Now(), b.CreatedAt)

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, b, got)

	_, err = f.svc.ImportBook(ctx, u1, model.BookDescriptor{Title: "Dune", Author: "Herbert"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.ImportBook(ctx, admin, model.BookDescriptor{Author: "Herbert"})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "Title")

	_, err = f.svc.ImportBook(ctx, admin, model.BookDescriptor{Title: "Dune Messiah", Author: "Herbert", ISBN: "978-0441013593"})
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = f.svc.GetBook(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)

	list, err := f.svc.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.TotalElements)
	require.Equal(t, []kafka.EventType{kafka.EventBookAdmitted}, f.pub.Types())
}

func TestService_Queue_UnknownBook(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.svc.Queue(context.Background(), u1, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestService_Queue_RedactsOthers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "Dune")
	f.borrow(t, u1, b.ID)
	f.reserve(t, u2, b.ID)
	f.reserve(t, u3, b.ID)

	queue, err := f.svc.Queue(ctx, u3, b.ID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, "", queue[0].UserID)
	require.Equal(t, 1, queue[0].QueuePosition)
	require.Equal(t, "u3", queue[1].UserID)
	require.Equal(t, 2, queue[1].QueuePosition)

	queue, err = f.svc.Queue(ctx, approver, b.ID)
	require.NoError(t, err)
	require.Equal(t, "u2", queue[0].UserID)
	require.Equal(t, "u3", queue[1].UserID)
}

func TestService_ActorRequired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "Dune")

	_, err := f.svc.BorrowBook(ctx, model.Actor{Role: model.RoleAdmin}, b.ID, "u1", 0)
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.BorrowBook(ctx, model.Actor{UserID: "u1", Role: "GUEST"}, b.ID, "", 0)
	require.ErrorIs(t, err, errs.ErrForbidden)
}
