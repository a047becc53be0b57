package workflow

import (
	"testing"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialApprovalStatus(t *testing.T) {
	assert.Equal(t, entities.ApprovalApproved, InitialApprovalStatus(entities.RoleAdmin))
	assert.Equal(t, entities.ApprovalApproved, InitialApprovalStatus(entities.RoleUserManager))
	assert.Equal(t, entities.ApprovalPending, InitialApprovalStatus(entities.RoleUser))
}

func TestApprove(t *testing.T) {
	next, err := Approve(entities.ApprovalPending)
	require.NoError(t, err)
	assert.Equal(t, entities.ApprovalApproved, next)

	for _, terminal := range []entities.ApprovalStatus{entities.ApprovalApproved, entities.ApprovalRejected} {
		got, err := Approve(terminal)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Equal(t, terminal, got, "состояние не должно меняться")
	}
}

func TestReject(t *testing.T) {
	next, reason, err := Reject(entities.ApprovalPending, "  duplicate request ")
	require.NoError(t, err)
	assert.Equal(t, entities.ApprovalRejected, next)
	assert.Equal(t, "duplicate request", reason)

	_, _, err = Reject(entities.ApprovalPending, "   ")
	var inputErr *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)

	got, _, err := Reject(entities.ApprovalRejected, "again")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, entities.ApprovalRejected, got)

	_, _, err = Reject(entities.ApprovalApproved, "late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}
