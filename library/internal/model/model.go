package model

import (
	"strings"
	"time"
)

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type Role string

const (
	RoleUser     Role = "USER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts any casing ("admin", "Admin", "ADMIN").
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleApprover, RoleAdmin:
		return r, true
	}
	return "", false
}

// Actor is the authenticated caller of an operation. It is always passed
// explicitly, the core keeps no notion of a current user.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookOnLoan    BookStatus = "ON_LOAN"
)

type Book struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Author          string     `json:"author" db:"author"`
	ISBN            string     `json:"isbn" db:"isbn"`
	Publisher       string     `json:"publisher" db:"publisher"`
	Description     string     `json:"description" db:"description"`
	ImageURL        string     `json:"imageUrl" db:"image_url"`
	Status          BookStatus `json:"status" db:"status"`
	CurrentBorrower *string    `json:"currentBorrower,omitempty" db:"current_borrower"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// BookDescriptor is what the catalog needs to create a book record.
type BookDescriptor struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	ISBN        string `json:"isbn" validate:"max=20"`
	Publisher   string `json:"publisher" validate:"max=255"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

type Loan struct {
	ID             string     `json:"id" db:"id"`
	BookID         string     `json:"bookId" db:"book_id"`
	UserID         string     `json:"userId" db:"user_id"`
	LoanDate       time.Time  `json:"loanDate" db:"loan_date"`
	DueDate        time.Time  `json:"dueDate" db:"due_date"`
	ReturnedAt     *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
	ExtensionCount int        `json:"extensionCount" db:"extension_count"`
}

func (l Loan) Active() bool { return l.ReturnedAt == nil }

// IsOverdue is the only definition of overdue; it is computed on read and never stored.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.ReturnedAt == nil && now.After(l.DueDate)
}

// LoanView is a Loan as presented to callers, with the overdue flag derived at read time.
type LoanView struct {
	Loan    `json:",inline"`
	Overdue bool `json:"overdue"`
}

func NewLoanView(l Loan, now time.Time) LoanView {
	return LoanView{Loan: l, Overdue: l.IsOverdue(now)}
}

type LoanFilter struct {
	UserID      string
	BookID      string
	ActiveOnly  bool
	OverdueOnly bool
}

type ReservationStatus string

const (
	ReservationWaiting   ReservationStatus = "WAITING"
	ReservationReady     ReservationStatus = "READY"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

type Reservation struct {
	ID     string `json:"id" db:"id"`
	BookID string `json:"bookId" db:"book_id"`
	UserID string `json:"userId" db:"user_id"`
	// QueuePosition is 1-based while WAITING and 0 once the reservation left the queue.
	QueuePosition int               `json:"queuePosition" db:"queue_position"`
	ReservedAt    time.Time         `json:"reservedAt" db:"reserved_at"`
	Status        ReservationStatus `json:"status" db:"status"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`
}

type ReservationFilter struct {
	UserID     string
	BookID     string
	ActiveOnly bool
}

// ReturnResult is what a return produces: the closed loan plus, when the queue
// was not empty, the promoted reservation and the loan opened for it.
type ReturnResult struct {
	Loan         LoanView     `json:"loan"`
	Promoted     *Reservation `json:"promoted,omitempty"`
	PromotedLoan *LoanView    `json:"promotedLoan,omitempty"`
}
