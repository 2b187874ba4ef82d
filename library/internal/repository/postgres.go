package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
)

const (
	booksTableName            = `books`
	loansTableName            = `loans`
	reservationsTableName     = `reservations`
	purchaseRequestsTableName = `purchase_requests`
	historyTableName          = `purchase_request_history`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	bookColumns        = []string{"id", "title", "author", "isbn", "publisher", "description", "image_url", "status", "current_borrower", "created_at"}
	loanColumns        = []string{"id", "book_id", "user_id", "loan_date", "due_date", "returned_at", "extension_count"}
	reservationColumns = []string{"id", "book_id", "user_id", "queue_position", "reserved_at", "status", "updated_at"}
	purchaseColumns    = []string{"id", "requester_id", "title", "author", "isbn", "publisher", "price", "vendor_url", "image_url", "reason", "priority", "status", "created_at", "decided_by", "decided_at", "book_id"}
	historyColumns     = []string{"request_id", "actor_id", "action", "from_status", "to_status", "comment", "at"}
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	*pgStore
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewRepository returns the postgres store. A positive lockTimeout bounds every
// row lock wait inside InTx, after which the operation fails with errs.ErrBusy.
func NewRepository(db *pgxpool.Pool, log *zap.Logger, lockTimeout time.Duration) (*repository, error) {
	log = log.Named("repo")
	return &repository{
		pgStore:     &pgStore{q: db, log: log},
		db:          db,
		lockTimeout: lockTimeout,
	}, nil
}

func (r *repository) InTx(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if r.lockTimeout > 0 {
			if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, lockTimeoutSetting(r.lockTimeout)); err != nil {
				return errors.Wrap(err, "set lock_timeout")
			}
		}
		return fn(&pgStore{q: tx, log: r.log})
	})
}

func lockTimeoutSetting(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

type pgStore struct {
	q   querier
	log *zap.Logger
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Wrap(errs.ErrConflict, pgErr.ConstraintName)
		case pgerrcode.InvalidTextRepresentation:
			// malformed uuid in a lookup
			return errs.ErrNotFound
		case pgerrcode.ForeignKeyViolation:
			return errors.Wrap(errs.ErrNotFound, pgErr.ConstraintName)
		case pgerrcode.LockNotAvailable:
			return errors.Wrap(errs.ErrBusy, "row lock")
		case pgerrcode.StringDataRightTruncationDataException:
			return errs.NewValidationError(map[string]string{pgErr.ColumnName: "too long"})
		}
	}
	return err
}

func affected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func collectOne[T any](ctx context.Context, q querier, b sq.SelectBuilder) (T, error) {
	var zero T
	query, args, err := b.ToSql()
	if err != nil {
		return zero, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return zero, mapErr(err)
	}
	defer rows.Close()
	v, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, mapErr(err)
	}
	return v, nil
}

func collectAll[T any](ctx context.Context, q querier, b sq.SelectBuilder) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", mapErr(err))
	}
	return items, nil
}

func count(ctx context.Context, q querier, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (s *pgStore) GetBook(ctx context.Context, id string) (model.Book, error) {
	return collectOne[model.Book](ctx, s.q,
		qb.Select(bookColumns...).From(booksTableName).Where(sq.Eq{"id": id}))
}

func (s *pgStore) LockBook(ctx context.Context, id string) (model.Book, error) {
	return collectOne[model.Book](ctx, s.q,
		qb.Select(bookColumns...).From(booksTableName).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (s *pgStore) CreateBook(ctx context.Context, b model.Book) error {
	q := `
insert into books (id, title, author, isbn, publisher, description, image_url, status, current_borrower, created_at)
values (@id, @title, @author, @isbn, @publisher, @description, @image_url, @status, @current_borrower, @created_at)`
	args := pgx.NamedArgs{
		"id":               b.ID,
		"title":            b.Title,
		"author":           b.Author,
		"isbn":             b.ISBN,
		"publisher":        b.Publisher,
		"description":      b.Description,
		"image_url":        b.ImageURL,
		"status":           b.Status,
		"current_borrower": b.CurrentBorrower,
		"created_at":       b.CreatedAt,
	}
	_, err := s.q.Exec(ctx, q, args)
	return mapErr(err)
}

func (s *pgStore) UpdateBook(ctx context.Context, b model.Book) error {
	q := `
update books
    set status = @status, current_borrower = @current_borrower
where id = @id`
	args := pgx.NamedArgs{
		"id":               b.ID,
		"status":           b.Status,
		"current_borrower": b.CurrentBorrower,
	}
	tag, err := s.q.Exec(ctx, q, args)
	if err != nil {
		return mapErr(err)
	}
	return affected(tag)
}

func (s *pgStore) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	total, err := count(ctx, s.q, qb.Select("count(*)").From(booksTableName))
	if err != nil {
		return model.ListBooks{}, err
	}
	q := qb.Select(bookColumns...).From(booksTableName).OrderBy("created_at", "id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	books, err := collectAll[model.Book](ctx, s.q, q)
	if err != nil {
		return model.ListBooks{}, err
	}
	s.log.Debug("ListBooks", zap.Int("page", page), zap.Int("size", size), zap.Int("total", total))
	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (s *pgStore) GetLoan(ctx context.Context, id string) (model.Loan, error) {
	return collectOne[model.Loan](ctx, s.q,
		qb.Select(loanColumns...).From(loansTableName).Where(sq.Eq{"id": id}))
}

func (s *pgStore) ActiveLoan(ctx context.Context, bookID string) (model.Loan, error) {
	return collectOne[model.Loan](ctx, s.q,
		qb.Select(loanColumns...).From(loansTableName).
			Where(sq.Eq{"book_id": bookID, "returned_at": nil}))
}

func (s *pgStore) CreateLoan(ctx context.Context, l model.Loan) error {
	q := `
insert into loans (id, book_id, user_id, loan_date, due_date, returned_at, extension_count)
values (@id, @book_id, @user_id, @loan_date, @due_date, @returned_at, @extension_count)`
	args := pgx.NamedArgs{
		"id":              l.ID,
		"book_id":         l.BookID,
		"user_id":         l.UserID,
		"loan_date":       l.LoanDate,
		"due_date":        l.DueDate,
		"returned_at":     l.ReturnedAt,
		"extension_count": l.ExtensionCount,
	}
	_, err := s.q.Exec(ctx, q, args)
	return mapErr(err)
}

func (s *pgStore) UpdateLoan(ctx context.Context, l model.Loan) error {
	q := `
update loans
    set due_date = @due_date, returned_at = @returned_at, extension_count = @extension_count
where id = @id`
	args := pgx.NamedArgs{
		"id":              l.ID,
		"due_date":        l.DueDate,
		"returned_at":     l.ReturnedAt,
		"extension_count": l.ExtensionCount,
	}
	tag, err := s.q.Exec(ctx, q, args)
	if err != nil {
		return mapErr(err)
	}
	return affected(tag)
}

func (s *pgStore) ListLoans(ctx context.Context, f model.LoanFilter, now time.Time) ([]model.Loan, error) {
	q := qb.Select(loanColumns...).From(loansTableName).OrderBy("loan_date", "id")
	if f.UserID != "" {
		q = q.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.BookID != "" {
		q = q.Where(sq.Eq{"book_id": f.BookID})
	}
	if f.ActiveOnly || f.OverdueOnly {
		q = q.Where(sq.Eq{"returned_at": nil})
	}
	if f.OverdueOnly {
		q = q.Where(sq.Lt{"due_date": now})
	}
	return collectAll[model.Loan](ctx, s.q, q)
}

func (s *pgStore) CountActiveLoans(ctx context.Context, userID string) (int, error) {
	return count(ctx, s.q, qb.Select("count(*)").From(loansTableName).
		Where(sq.Eq{"user_id": userID, "returned_at": nil}))
}

func (s *pgStore) HasOverdueLoan(ctx context.Context, userID string, now time.Time) (bool, error) {
	n, err := count(ctx, s.q, qb.Select("count(*)").From(loansTableName).
		Where(sq.Eq{"user_id": userID, "returned_at": nil}).
		Where(sq.Lt{"due_date": now}))
	return n > 0, err
}

func (s *pgStore) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	return collectOne[model.Reservation](ctx, s.q,
		qb.Select(reservationColumns...).From(reservationsTableName).Where(sq.Eq{"id": id}))
}

func (s *pgStore) CreateReservation(ctx context.Context, r model.Reservation) error {
	q := `
insert into reservations (id, book_id, user_id, queue_position, reserved_at, status, updated_at)
values (@id, @book_id, @user_id, @queue_position, @reserved_at, @status, @updated_at)`
	args := pgx.NamedArgs{
		"id":             r.ID,
		"book_id":        r.BookID,
		"user_id":        r.UserID,
		"queue_position": r.QueuePosition,
		"reserved_at":    r.ReservedAt,
		"status":         r.Status,
		"updated_at":     r.UpdatedAt,
	}
	_, err := s.q.Exec(ctx, q, args)
	return mapErr(err)
}

func (s *pgStore) UpdateReservation(ctx context.Context, r model.Reservation) error {
	q := `
update reservations
    set queue_position = @queue_position, status = @status, updated_at = @updated_at
where id = @id`
	args := pgx.NamedArgs{
		"id":             r.ID,
		"queue_position": r.QueuePosition,
		"status":         r.Status,
		"updated_at":     r.UpdatedAt,
	}
	tag, err := s.q.Exec(ctx, q, args)
	if err != nil {
		return mapErr(err)
	}
	return affected(tag)
}

func (s *pgStore) Queue(ctx context.Context, bookID string) ([]model.Reservation, error) {
	return collectAll[model.Reservation](ctx, s.q,
		qb.Select(reservationColumns...).From(reservationsTableName).
			Where(sq.Eq{"book_id": bookID, "status": model.ReservationWaiting}).
			OrderBy("queue_position"))
}

func (s *pgStore) ActiveReservation(ctx context.Context, bookID, userID string) (model.Reservation, error) {
	return collectOne[model.Reservation](ctx, s.q,
		qb.Select(reservationColumns...).From(reservationsTableName).
			Where(sq.Eq{
				"book_id": bookID,
				"user_id": userID,
				"status":  []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady},
			}).
			Limit(1))
}

func (s *pgStore) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).From(reservationsTableName).OrderBy("reserved_at", "id")
	if f.UserID != "" {
		q = q.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.BookID != "" {
		q = q.Where(sq.Eq{"book_id": f.BookID})
	}
	if f.ActiveOnly {
		q = q.Where(sq.Eq{"status": []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady}})
	}
	return collectAll[model.Reservation](ctx, s.q, q)
}

func (s *pgStore) CountActiveReservations(ctx context.Context, userID string) (int, error) {
	return count(ctx, s.q, qb.Select("count(*)").From(reservationsTableName).
		Where(sq.Eq{
			"user_id": userID,
			"status":  []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady},
		}))
}

type purchaseRow struct {
	ID          string               `db:"id"`
	RequesterID string               `db:"requester_id"`
	Title       string               `db:"title"`
	Author      string               `db:"author"`
	ISBN        string               `db:"isbn"`
	Publisher   string               `db:"publisher"`
	Price       string               `db:"price"`
	VendorURL   string               `db:"vendor_url"`
	ImageURL    string               `db:"image_url"`
	Reason      string               `db:"reason"`
	Priority    int                  `db:"priority"`
	Status      model.PurchaseStatus `db:"status"`
	CreatedAt   time.Time            `db:"created_at"`
	DecidedBy   *string              `db:"decided_by"`
	DecidedAt   *time.Time           `db:"decided_at"`
	BookID      *string              `db:"book_id"`
}

func (r purchaseRow) toModel() model.PurchaseRequest {
	return model.PurchaseRequest{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Descriptor: model.PurchaseDescriptor{
			Title:     r.Title,
			Author:    r.Author,
			ISBN:      r.ISBN,
			Publisher: r.Publisher,
			Price:     r.Price,
			VendorURL: r.VendorURL,
			ImageURL:  r.ImageURL,
			Reason:    r.Reason,
			Priority:  r.Priority,
		},
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		DecidedBy: r.DecidedBy,
		DecidedAt: r.DecidedAt,
		BookID:    r.BookID,
	}
}

type historyRow struct {
	RequestID string `db:"request_id"`
	model.HistoryEntry
}

func (s *pgStore) history(ctx context.Context, ids ...string) (map[string][]model.HistoryEntry, error) {
	res := make(map[string][]model.HistoryEntry, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	rows, err := collectAll[historyRow](ctx, s.q,
		qb.Select(historyColumns...).From(historyTableName).
			Where(sq.Eq{"request_id": ids}).
			OrderBy("id"))
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		res[r.RequestID] = append(res[r.RequestID], r.HistoryEntry)
	}
	return res, nil
}

func (s *pgStore) GetPurchaseRequest(ctx context.Context, id string) (model.PurchaseRequest, error) {
	row, err := collectOne[purchaseRow](ctx, s.q,
		qb.Select(purchaseColumns...).From(purchaseRequestsTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	h, err := s.history(ctx, id)
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	pr := row.toModel()
	pr.History = h[id]
	return pr, nil
}

func (s *pgStore) CreatePurchaseRequest(ctx context.Context, pr model.PurchaseRequest) error {
	q := `
insert into purchase_requests (id, requester_id, title, author, isbn, publisher, price, vendor_url, image_url,
                               reason, priority, status, created_at, decided_by, decided_at, book_id)
values (@id, @requester_id, @title, @author, @isbn, @publisher, @price, @vendor_url, @image_url,
        @reason, @priority, @status, @created_at, @decided_by, @decided_at, @book_id)`
	d := pr.Descriptor
	args := pgx.NamedArgs{
		"id":           pr.ID,
		"requester_id": pr.RequesterID,
		"title":        d.Title,
		"author":       d.Author,
		"isbn":         d.ISBN,
		"publisher":    d.Publisher,
		"price":        d.Price,
		"vendor_url":   d.VendorURL,
		"image_url":    d.ImageURL,
		"reason":       d.Reason,
		"priority":     d.Priority,
		"status":       pr.Status,
		"created_at":   pr.CreatedAt,
		"decided_by":   pr.DecidedBy,
		"decided_at":   pr.DecidedAt,
		"book_id":      pr.BookID,
	}
	if _, err := s.q.Exec(ctx, q, args); err != nil {
		return mapErr(err)
	}
	for _, e := range pr.History {
		if err := s.AppendHistory(ctx, pr.ID, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgStore) UpdatePurchaseRequest(ctx context.Context, pr model.PurchaseRequest) error {
	q := `
update purchase_requests
    set status = @status, decided_by = @decided_by, decided_at = @decided_at, book_id = @book_id
where id = @id`
	args := pgx.NamedArgs{
		"id":         pr.ID,
		"status":     pr.Status,
		"decided_by": pr.DecidedBy,
		"decided_at": pr.DecidedAt,
		"book_id":    pr.BookID,
	}
	tag, err := s.q.Exec(ctx, q, args)
	if err != nil {
		return mapErr(err)
	}
	return affected(tag)
}

func (s *pgStore) AppendHistory(ctx context.Context, requestID string, e model.HistoryEntry) error {
	query, args, err := qb.Insert(historyTableName).
		Columns(historyColumns...).
		Values(requestID, e.ActorID, e.Action, e.From, e.To, e.Comment, e.At).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, query, args...)
	return mapErr(err)
}

func (s *pgStore) ListPurchaseRequests(ctx context.Context, f model.PurchaseFilter) ([]model.PurchaseRequest, error) {
	q := qb.Select(purchaseColumns...).From(purchaseRequestsTableName).OrderBy("created_at", "id")
	if f.RequesterID != "" {
		q = q.Where(sq.Eq{"requester_id": f.RequesterID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	rows, err := collectAll[purchaseRow](ctx, s.q, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	h, err := s.history(ctx, ids...)
	if err != nil {
		return nil, err
	}
	res := make([]model.PurchaseRequest, 0, len(rows))
	for _, r := range rows {
		pr := r.toModel()
		pr.History = h[r.ID]
		res = append(res, pr)
	}
	return res, nil
}

func (s *pgStore) CountActiveRequests(ctx context.Context, requesterID string) (int, error) {
	return count(ctx, s.q, qb.Select("count(*)").From(purchaseRequestsTableName).
		Where(sq.Eq{
			"requester_id": requesterID,
			"status":       []model.PurchaseStatus{model.PurchasePending, model.PurchaseApproved, model.PurchaseOrdered},
		}))
}

func (s *pgStore) HasActiveRequest(ctx context.Context, requesterID, title, author string) (bool, error) {
	n, err := count(ctx, s.q, qb.Select("count(*)").From(purchaseRequestsTableName).
		Where(sq.Eq{
			"requester_id": requesterID,
			"status":       []model.PurchaseStatus{model.PurchasePending, model.PurchaseApproved, model.PurchaseOrdered},
		}).
		Where("lower(title) = lower(?) and lower(author) = lower(?)", title, author))
	return n > 0, err
}
