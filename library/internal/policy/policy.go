// Package policy is the authorization guard consulted before every mutating operation.
package policy

import "github.com/Astemirdum/library-circulation/library/internal/model"

type Operation int

const (
	Borrow Operation = iota + 1
	BorrowForOther
	ReturnOwn
	ReturnAny
	ExtendOwn
	ExtendAny
	Reserve
	ReserveForOther
	CancelOwn
	CancelAny
	SubmitRequest
	Decide
	MarkOrdered
	MarkReceived
	AdmitToLibrary
	ImportBook
	ViewAll
	ListOverdue
)

var opNames = map[Operation]string{
	Borrow:          "borrow",
	BorrowForOther:  "borrow_for_other",
	ReturnOwn:       "return_own",
	ReturnAny:       "return_any",
	ExtendOwn:       "extend_own",
	ExtendAny:       "extend_any",
	Reserve:         "reserve",
	ReserveForOther: "reserve_for_other",
	CancelOwn:       "cancel_own",
	CancelAny:       "cancel_any",
	SubmitRequest:   "submit_request",
	Decide:          "decide",
	MarkOrdered:     "mark_ordered",
	MarkReceived:    "mark_received",
	AdmitToLibrary:  "admit_to_library",
	ImportBook:      "import_book",
	ViewAll:         "view_all",
	ListOverdue:     "list_overdue",
}

func (o Operation) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

const (
	user = 1 << iota
	approver
	admin

	anyone          = user | approver | admin
	approverOrAdmin = approver | admin
)

var roleBits = map[model.Role]int{
	model.RoleUser:     user,
	model.RoleApprover: approver,
	model.RoleAdmin:    admin,
}

var table = map[Operation]int{
	Borrow:          anyone,
	BorrowForOther:  admin,
	ReturnOwn:       anyone,
	ReturnAny:       admin,
	ExtendOwn:       anyone,
	ExtendAny:       admin,
	Reserve:         anyone,
	ReserveForOther: admin,
	CancelOwn:       anyone,
	CancelAny:       admin,
	SubmitRequest:   anyone,
	Decide:          approverOrAdmin,
	MarkOrdered:     approverOrAdmin,
	MarkReceived:    admin,
	AdmitToLibrary:  admin,
	ImportBook:      admin,
	ViewAll:         approverOrAdmin,
	ListOverdue:     approverOrAdmin,
}

// Authorize reports whether role may perform op. Unknown roles and operations are denied.
func Authorize(role model.Role, op Operation) bool {
	bit, ok := roleBits[role]
	if !ok {
		return false
	}
	return table[op]&bit != 0
}

// AuthorizeOwned picks own when the actor is the owner of the target and other otherwise.
func AuthorizeOwned(actor model.Actor, ownerID string, own, other Operation) bool {
	if actor.UserID != "" && actor.UserID == ownerID {
		return Authorize(actor.Role, own)
	}
	return Authorize(actor.Role, other)
}
