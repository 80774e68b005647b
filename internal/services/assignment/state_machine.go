package assignment

import (
	"fmt"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/models"
)

// Action is an operator- or gateway-driven event on a record's lifecycle.
type Action string

const (
	ActionAutoMatch    Action = "auto_match"    // gateway suggested a resident
	ActionAccept       Action = "accept"        // operator accepts the suggestion
	ActionDecline      Action = "decline"       // operator declines the suggestion
	ActionManualAssign Action = "manual_assign" // operator picks a resident
	ActionClear        Action = "clear"         // operator removes the link
	ActionReject       Action = "reject"        // operator marks the record rejected
)

type transitionKey struct {
	from   models.AssignmentStatus
	action Action
}

// transitions is the full table. Anything absent is an invalid transition.
// confirmed and rejected are stable but re-openable: a manual assign or
// clear takes the record back into the flow.
var transitions = map[transitionKey]models.AssignmentStatus{
	{models.StatusPending, ActionAutoMatch}: models.StatusAutoMatched,

	{models.StatusAutoMatched, ActionAccept}:  models.StatusConfirmed,
	{models.StatusAutoMatched, ActionDecline}: models.StatusPending,

	{models.StatusPending, ActionManualAssign}:          models.StatusManuallyAssigned,
	{models.StatusAutoMatched, ActionManualAssign}:      models.StatusManuallyAssigned,
	{models.StatusConfirmed, ActionManualAssign}:        models.StatusManuallyAssigned,
	{models.StatusRejected, ActionManualAssign}:         models.StatusManuallyAssigned,
	{models.StatusManuallyAssigned, ActionManualAssign}: models.StatusManuallyAssigned,

	{models.StatusManuallyAssigned, ActionClear}: models.StatusPending,
	{models.StatusAutoMatched, ActionClear}:      models.StatusPending,
	{models.StatusConfirmed, ActionClear}:        models.StatusPending,
	{models.StatusRejected, ActionClear}:         models.StatusPending,

	{models.StatusPending, ActionReject}:          models.StatusRejected,
	{models.StatusAutoMatched, ActionReject}:      models.StatusRejected,
	{models.StatusManuallyAssigned, ActionReject}: models.StatusRejected,
}

// Next resolves the target state for action from the current one, or a
// precondition error when the table has no such edge.
func Next(from models.AssignmentStatus, action Action) (models.AssignmentStatus, error) {
	to, ok := transitions[transitionKey{from, action}]
	if !ok {
		return "", apperrors.New(apperrors.KindPrecondition, apperrors.CodeInvalidTransition,
			fmt.Sprintf("cannot %s a %s record", action, from))
	}
	return to, nil
}
