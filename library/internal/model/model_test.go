package model_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNextPurchaseStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		from   model.PurchaseStatus
		action model.PurchaseAction
		want   model.PurchaseStatus
		ok     bool
	}{
		{name: "approve pending", from: model.PurchasePending, action: model.ActionApprove, want: model.PurchaseApproved, ok: true},
		{name: "reject pending", from: model.PurchasePending, action: model.ActionReject, want: model.PurchaseRejected, ok: true},
		{name: "order approved", from: model.PurchaseApproved, action: model.ActionOrder, want: model.PurchaseOrdered, ok: true},
		{name: "receive ordered", from: model.PurchaseOrdered, action: model.ActionReceive, want: model.PurchaseReceived, ok: true},
		{name: "admit received", from: model.PurchaseReceived, action: model.ActionAdmit, want: model.PurchaseCompleted, ok: true},
		{name: "reject approved", from: model.PurchaseApproved, action: model.ActionReject, want: model.PurchaseApproved},
		{name: "receive pending", from: model.PurchasePending, action: model.ActionReceive, want: model.PurchasePending},
		{name: "approve completed", from: model.PurchaseCompleted, action: model.ActionApprove, want: model.PurchaseCompleted},
		{name: "submit is not a transition", from: model.PurchasePending, action: model.ActionSubmit, want: model.PurchasePending},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := model.NextPurchaseStatus(tt.from, tt.action)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoan_IsOverdue(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	returned := now.Add(-time.Hour)

	require.False(t, model.Loan{DueDate: now}.IsOverdue(now))
	require.True(t, model.Loan{DueDate: now.Add(-time.Second)}.IsOverdue(now))
	require.False(t, model.Loan{DueDate: now.Add(-48 * time.Hour), ReturnedAt: &returned}.IsOverdue(now))
}

func TestParseRole(t *testing.T) {
	t.Parallel()
	r, ok := model.ParseRole(" approver ")
	require.True(t, ok)
	require.Equal(t, model.RoleApprover, r)

	_, ok = model.ParseRole("librarian")
	require.False(t, ok)
}
