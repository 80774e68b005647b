package assignment

import (
	"testing"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name   string
		from   models.AssignmentStatus
		action Action
		want   models.AssignmentStatus
	}{
		{"gateway match", models.StatusPending, ActionAutoMatch, models.StatusAutoMatched},
		{"accept suggestion", models.StatusAutoMatched, ActionAccept, models.StatusConfirmed},
		{"decline suggestion", models.StatusAutoMatched, ActionDecline, models.StatusPending},
		{"manual assign pending", models.StatusPending, ActionManualAssign, models.StatusManuallyAssigned},
		{"manual assign auto", models.StatusAutoMatched, ActionManualAssign, models.StatusManuallyAssigned},
		{"reopen confirmed", models.StatusConfirmed, ActionManualAssign, models.StatusManuallyAssigned},
		{"reopen rejected", models.StatusRejected, ActionManualAssign, models.StatusManuallyAssigned},
		{"clear manual", models.StatusManuallyAssigned, ActionClear, models.StatusPending},
		{"clear confirmed", models.StatusConfirmed, ActionClear, models.StatusPending},
		{"clear rejected", models.StatusRejected, ActionClear, models.StatusPending},
		{"reject auto", models.StatusAutoMatched, ActionReject, models.StatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   models.AssignmentStatus
		action Action
	}{
		{"accept pending", models.StatusPending, ActionAccept},
		{"accept confirmed", models.StatusConfirmed, ActionAccept},
		{"decline manual", models.StatusManuallyAssigned, ActionDecline},
		{"reject confirmed", models.StatusConfirmed, ActionReject},
		{"clear pending", models.StatusPending, ActionClear},
		{"auto-match confirmed", models.StatusConfirmed, ActionAutoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.from, tt.action)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.CodeOf(err))
			assert.Equal(t, apperrors.KindPrecondition, apperrors.KindOf(err))
		})
	}
}
