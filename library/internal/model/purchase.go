package model

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseApproved  PurchaseStatus = "APPROVED"
	PurchaseRejected  PurchaseStatus = "REJECTED"
	PurchaseOrdered   PurchaseStatus = "ORDERED"
	PurchaseReceived  PurchaseStatus = "RECEIVED"
	PurchaseCompleted PurchaseStatus = "COMPLETED"
)

func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseRejected || s == PurchaseCompleted
}

// Active requests count against the requester's limit.
func (s PurchaseStatus) Active() bool {
	return s == PurchasePending || s == PurchaseApproved || s == PurchaseOrdered
}

type PurchaseAction string

const (
	ActionSubmit  PurchaseAction = "submit"
	ActionApprove PurchaseAction = "approve"
	ActionReject  PurchaseAction = "reject"
	ActionOrder   PurchaseAction = "order"
	ActionReceive PurchaseAction = "receive"
	ActionAdmit   PurchaseAction = "admit"
)

type transition struct {
	from PurchaseStatus
	to   PurchaseStatus
}

// purchaseTransitions is the whole workflow graph. Submit has no source state.
var purchaseTransitions = map[PurchaseAction]transition{
	ActionApprove: {from: PurchasePending, to: PurchaseApproved},
	ActionReject:  {from: PurchasePending, to: PurchaseRejected},
	ActionOrder:   {from: PurchaseApproved, to: PurchaseOrdered},
	ActionReceive: {from: PurchaseOrdered, to: PurchaseReceived},
	ActionAdmit:   {from: PurchaseReceived, to: PurchaseCompleted},
}

// NextPurchaseStatus reports the status reached by applying action to from.
func NextPurchaseStatus(from PurchaseStatus, action PurchaseAction) (PurchaseStatus, bool) {
	t, ok := purchaseTransitions[action]
	if !ok || t.from != from {
		return from, false
	}
	return t.to, true
}

const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// PurchaseDescriptor is carried verbatim from submission to admission.
type PurchaseDescriptor struct {
	Title     string `json:"title" validate:"required,max=255"`
	Author    string `json:"author" validate:"required,max=255"`
	ISBN      string `json:"isbn" validate:"max=20"`
	Publisher string `json:"publisher" validate:"max=255"`
	Price     string `json:"price" validate:"max=32"`
	VendorURL string `json:"vendorUrl" validate:"max=1000"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
	Reason    string `json:"reason" validate:"max=2000"`
	Priority  int    `json:"priority" validate:"omitempty,min=1,max=3"`
}

func (d PurchaseDescriptor) BookDescriptor() BookDescriptor {
	return BookDescriptor{
		Title:     d.Title,
		Author:    d.Author,
		ISBN:      d.ISBN,
		Publisher: d.Publisher,
		ImageURL:  d.ImageURL,
	}
}

type HistoryEntry struct {
	ActorID string         `json:"actorId" db:"actor_id"`
	Action  PurchaseAction `json:"action" db:"action"`
	From    PurchaseStatus `json:"from" db:"from_status"`
	To      PurchaseStatus `json:"to" db:"to_status"`
	Comment string         `json:"comment" db:"comment"`
	At      time.Time      `json:"at" db:"at"`
}

type PurchaseRequest struct {
	ID          string             `json:"id"`
	RequesterID string             `json:"requesterId"`
	Descriptor  PurchaseDescriptor `json:"descriptor"`
	Status      PurchaseStatus     `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	DecidedBy   *string            `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time         `json:"decidedAt,omitempty"`
	BookID      *string            `json:"bookId,omitempty"`
	History     []HistoryEntry     `json:"history"`
}

type PurchaseFilter struct {
	RequesterID string
	Status      PurchaseStatus
}
