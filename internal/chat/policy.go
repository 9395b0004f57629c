package chat

import (
	"github.com/npezzotti/go-opschat/internal/types"
)

// StatusPolicy decides which support-room status changes and assignments
// are allowed. Every status and assignee mutation goes through it.
type StatusPolicy interface {
	CheckTransition(from, to types.RoomStatus) error
	CheckAssignment(status types.RoomStatus) error
}

// PermissiveStatusPolicy allows any status jump and assignment in any status.
type PermissiveStatusPolicy struct{}

func (PermissiveStatusPolicy) CheckTransition(_, _ types.RoomStatus) error { return nil }

func (PermissiveStatusPolicy) CheckAssignment(_ types.RoomStatus) error { return nil }

// LinearStatusPolicy enforces open -> in_progress -> resolved -> closed and
// only allows assignment while a room is open or in progress.
type LinearStatusPolicy struct{}

var linearNext = map[types.RoomStatus]types.RoomStatus{
	types.StatusOpen:       types.StatusInProgress,
	types.StatusInProgress: types.StatusResolved,
	types.StatusResolved:   types.StatusClosed,
}

func (LinearStatusPolicy) CheckTransition(from, to types.RoomStatus) error {
	if next, ok := linearNext[from]; ok && next == to {
		return nil
	}
	return ErrTransitionDenied
}

func (LinearStatusPolicy) CheckAssignment(status types.RoomStatus) error {
	if status == types.StatusOpen || status == types.StatusInProgress {
		return nil
	}
	return ErrTransitionDenied
}
