package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
)

type memState struct {
	seq          int64
	order        map[string]int64
	books        map[string]model.Book
	loans        map[string]model.Loan
	reservations map[string]model.Reservation
	requests     map[string]model.PurchaseRequest
}

func newMemState() *memState {
	return &memState{
		order:        map[string]int64{},
		books:        map[string]model.Book{},
		loans:        map[string]model.Loan{},
		reservations: map[string]model.Reservation{},
		requests:     map[string]model.PurchaseRequest{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// clone copies every map. Entities are values; the only shared backing
// arrays are request histories, which are copied on every read and write.
func (s *memState) clone() *memState {
	return &memState{
		seq:          s.seq,
		order:        cloneMap(s.order),
		books:        cloneMap(s.books),
		loans:        cloneMap(s.loans),
		reservations: cloneMap(s.reservations),
		requests:     cloneMap(s.requests),
	}
}

func (s *memState) insert(id string) {
	s.seq++
	s.order[id] = s.seq
}

func sortByInsertion[T any](s *memState, items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		return s.order[id(items[i])] < s.order[id(items[j])]
	})
}

func nop() {}

// MemoryRepository keeps everything in process memory. A transaction works on a
// private copy of the state and swaps it in on commit, so transactions are
// serializable and a failed one leaves no trace.
type MemoryRepository struct {
	*memStore
	mu   sync.RWMutex
	txMu sync.Mutex
	log  *zap.Logger
}

func NewMemoryRepository(log *zap.Logger) *MemoryRepository {
	r := &MemoryRepository{log: log.Named("repo")}
	r.memStore = &memStore{
		state: newMemState(),
		rlock: func() func() {
			r.mu.RLock()
			return r.mu.RUnlock
		},
		lock: func() func() {
			r.txMu.Lock()
			r.mu.Lock()
			return func() {
				r.mu.Unlock()
				r.txMu.Unlock()
			}
		},
	}
	return r
}

func (r *MemoryRepository) InTx(ctx context.Context, fn func(tx Store) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	draft := r.state.clone()
	r.mu.RUnlock()

	if err := fn(&memStore{state: draft, rlock: noLock, lock: noLock}); err != nil {
		return err
	}

	r.mu.Lock()
	*r.state = *draft
	r.mu.Unlock()
	r.log.Debug("tx committed", zap.Int64("seq", draft.seq))
	return nil
}

func noLock() func() { return nop }

type memStore struct {
	state *memState
	rlock func() func()
	lock  func() func()
}

func (s *memStore) GetBook(_ context.Context, id string) (model.Book, error) {
	defer s.rlock()()
	b, ok := s.state.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return b, nil
}

func (s *memStore) LockBook(ctx context.Context, id string) (model.Book, error) {
	return s.GetBook(ctx, id)
}

func (s *memStore) CreateBook(_ context.Context, b model.Book) error {
	defer s.lock()()
	if _, ok := s.state.books[b.ID]; ok {
		return errs.ErrConflict
	}
	if b.ISBN != "" {
		for _, other := range s.state.books {
			if other.ISBN == b.ISBN {
				return errs.ErrConflict
			}
		}
	}
	s.state.books[b.ID] = b
	s.state.insert(b.ID)
	return nil
}

func (s *memStore) UpdateBook(_ context.Context, b model.Book) error {
	defer s.lock()()
	cur, ok := s.state.books[b.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Status = b.Status
	cur.CurrentBorrower = b.CurrentBorrower
	s.state.books[b.ID] = cur
	return nil
}

func (s *memStore) ListBooks(_ context.Context, page, size int) (model.ListBooks, error) {
	defer s.rlock()()
	books := make([]model.Book, 0, len(s.state.books))
	for _, b := range s.state.books {
		books = append(books, b)
	}
	sortByInsertion(s.state, books, func(b model.Book) string { return b.ID })
	total := len(books)
	if page != 0 && size != 0 {
		from := (page - 1) * size
		if from > total {
			from = total
		}
		to := from + size
		if to > total {
			to = total
		}
		books = books[from:to]
	}
	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (s *memStore) GetLoan(_ context.Context, id string) (model.Loan, error) {
	defer s.rlock()()
	l, ok := s.state.loans[id]
	if !ok {
		return model.Loan{}, errs.ErrNotFound
	}
	return l, nil
}

func (s *memStore) ActiveLoan(_ context.Context, bookID string) (model.Loan, error) {
	defer s.rlock()()
	for _, l := range s.state.loans {
		if l.BookID == bookID && l.Active() {
			return l, nil
		}
	}
	return model.Loan{}, errs.ErrNotFound
}

func (s *memStore) CreateLoan(_ context.Context, l model.Loan) error {
	defer s.lock()()
	if _, ok := s.state.loans[l.ID]; ok {
		return errs.ErrConflict
	}
	if l.Active() {
		for _, other := range s.state.loans {
			if other.BookID == l.BookID && other.Active() {
				return errs.ErrConflict
			}
		}
	}
	s.state.loans[l.ID] = l
	s.state.insert(l.ID)
	return nil
}

func (s *memStore) UpdateLoan(_ context.Context, l model.Loan) error {
	defer s.lock()()
	cur, ok := s.state.loans[l.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.DueDate = l.DueDate
	cur.ReturnedAt = l.ReturnedAt
	cur.ExtensionCount = l.ExtensionCount
	s.state.loans[l.ID] = cur
	return nil
}

func (s *memStore) ListLoans(_ context.Context, f model.LoanFilter, now time.Time) ([]model.Loan, error) {
	defer s.rlock()()
	loans := make([]model.Loan, 0)
	for _, l := range s.state.loans {
		switch {
		case f.UserID != "" && l.UserID != f.UserID,
			f.BookID != "" && l.BookID != f.BookID,
			f.ActiveOnly && !l.Active(),
			f.OverdueOnly && !l.IsOverdue(now):
			continue
		}
		loans = append(loans, l)
	}
	sortByInsertion(s.state, loans, func(l model.Loan) string { return l.ID })
	return loans, nil
}

func (s *memStore) CountActiveLoans(_ context.Context, userID string) (int, error) {
	defer s.rlock()()
	n := 0
	for _, l := range s.state.loans {
		if l.UserID == userID && l.Active() {
			n++
		}
	}
	return n, nil
}

func (s *memStore) HasOverdueLoan(_ context.Context, userID string, now time.Time) (bool, error) {
	defer s.rlock()()
	for _, l := range s.state.loans {
		if l.UserID == userID && l.IsOverdue(now) {
			return true, nil
		}
	}
	return false, nil
}

func activeReservation(r model.Reservation) bool {
	return r.Status == model.ReservationWaiting || r.Status == model.ReservationReady
}

func (s *memStore) GetReservation(_ context.Context, id string) (model.Reservation, error) {
	defer s.rlock()()
	r, ok := s.state.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	return r, nil
}

func (s *memStore) CreateReservation(_ context.Context, r model.Reservation) error {
	defer s.lock()()
	if _, ok := s.state.reservations[r.ID]; ok {
		return errs.ErrConflict
	}
	if activeReservation(r) {
		for _, other := range s.state.reservations {
			if other.BookID == r.BookID && other.UserID == r.UserID && activeReservation(other) {
				return errs.ErrConflict
			}
		}
	}
	s.state.reservations[r.ID] = r
	s.state.insert(r.ID)
	return nil
}

func (s *memStore) UpdateReservation(_ context.Context, r model.Reservation) error {
	defer s.lock()()
	cur, ok := s.state.reservations[r.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.QueuePosition = r.QueuePosition
	cur.Status = r.Status
	cur.UpdatedAt = r.UpdatedAt
	s.state.reservations[r.ID] = cur
	return nil
}

func (s *memStore) Queue(_ context.Context, bookID string) ([]model.Reservation, error) {
	defer s.rlock()()
	queue := make([]model.Reservation, 0)
	for _, r := range s.state.reservations {
		if r.BookID == bookID && r.Status == model.ReservationWaiting {
			queue = append(queue, r)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i].QueuePosition < queue[j].QueuePosition })
	return queue, nil
}

func (s *memStore) ActiveReservation(_ context.Context, bookID, userID string) (model.Reservation, error) {
	defer s.rlock()()
	for _, r := range s.state.reservations {
		if r.BookID == bookID && r.UserID == userID && activeReservation(r) {
			return r, nil
		}
	}
	return model.Reservation{}, errs.ErrNotFound
}

func (s *memStore) ListReservations(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	defer s.rlock()()
	res := make([]model.Reservation, 0)
	for _, r := range s.state.reservations {
		switch {
		case f.UserID != "" && r.UserID != f.UserID,
			f.BookID != "" && r.BookID != f.BookID,
			f.ActiveOnly && !activeReservation(r):
			continue
		}
		res = append(res, r)
	}
	sortByInsertion(s.state, res, func(r model.Reservation) string { return r.ID })
	return res, nil
}

func (s *memStore) CountActiveReservations(_ context.Context, userID string) (int, error) {
	defer s.rlock()()
	n := 0
	for _, r := range s.state.reservations {
		if r.UserID == userID && activeReservation(r) {
			n++
		}
	}
	return n, nil
}

func copyRequest(pr model.PurchaseRequest) model.PurchaseRequest {
	pr.History = append([]model.HistoryEntry(nil), pr.History...)
	return pr
}

func (s *memStore) GetPurchaseRequest(_ context.Context, id string) (model.PurchaseRequest, error) {
	defer s.rlock()()
	pr, ok := s.state.requests[id]
	if !ok {
		return model.PurchaseRequest{}, errs.ErrNotFound
	}
	return copyRequest(pr), nil
}

func (s *memStore) CreatePurchaseRequest(_ context.Context, pr model.PurchaseRequest) error {
	defer s.lock()()
	if _, ok := s.state.requests[pr.ID]; ok {
		return errs.ErrConflict
	}
	s.state.requests[pr.ID] = copyRequest(pr)
	s.state.insert(pr.ID)
	return nil
}

func (s *memStore) UpdatePurchaseRequest(_ context.Context, pr model.PurchaseRequest) error {
	defer s.lock()()
	cur, ok := s.state.requests[pr.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Status = pr.Status
	cur.DecidedBy = pr.DecidedBy
	cur.DecidedAt = pr.DecidedAt
	cur.BookID = pr.BookID
	s.state.requests[pr.ID] = cur
	return nil
}

func (s *memStore) AppendHistory(_ context.Context, requestID string, e model.HistoryEntry) error {
	defer s.lock()()
	cur, ok := s.state.requests[requestID]
	if !ok {
		return errs.ErrNotFound
	}
	cur = copyRequest(cur)
	cur.History = append(cur.History, e)
	s.state.requests[requestID] = cur
	return nil
}

func (s *memStore) ListPurchaseRequests(_ context.Context, f model.PurchaseFilter) ([]model.PurchaseRequest, error) {
	defer s.rlock()()
	res := make([]model.PurchaseRequest, 0)
	for _, pr := range s.state.requests {
		if f.RequesterID != "" && pr.RequesterID != f.RequesterID {
			continue
		}
		if f.Status != "" && pr.Status != f.Status {
			continue
		}
		res = append(res, copyRequest(pr))
	}
	sortByInsertion(s.state, res, func(pr model.PurchaseRequest) string { return pr.ID })
	return res, nil
}

func (s *memStore) CountActiveRequests(_ context.Context, requesterID string) (int, error) {
	defer s.rlock()()
	n := 0
	for _, pr := range s.state.requests {
		if pr.RequesterID == requesterID && pr.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (s *memStore) HasActiveRequest(_ context.Context, requesterID, title, author string) (bool, error) {
	defer s.rlock()()
	for _, pr := range s.state.requests {
		if pr.RequesterID == requesterID && pr.Status.Active() &&
			strings.EqualFold(pr.Descriptor.Title, title) &&
			strings.EqualFold(pr.Descriptor.Author, author) {
			return true, nil
		}
	}
	return false, nil
}
