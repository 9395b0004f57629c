package chat

import (
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
)

// Identity is the operator on whose behalf a request runs.
type Identity struct {
	OperatorId int
	Role       types.Role
}

func (i Identity) Valid() bool {
	return i.OperatorId > 0 && i.Role.Valid()
}

// ResolveVisibility returns the scope of rooms the operator may see: every
// room they actively participate in, plus support rooms they opened, plus
// every support room for admin-tier roles.
func ResolveVisibility(id Identity) database.VisibilityScope {
	return database.VisibilityScope{
		OperatorId: id.OperatorId,
		AllSupport: id.Role.IsAdminTier(),
	}
}

// CanView applies the visibility rule to a single loaded room. active is
// the viewer's active participant row in the room, or nil.
func CanView(room database.Room, viewer Identity, active *database.Participant) bool {
	if room.State.IsDeleted() {
		return false
	}

	if isActiveMember(active, viewer) {
		return true
	}

	return room.Type == types.RoomTypeSupport &&
		(viewer.Role.IsAdminTier() || room.CreatedBy == viewer.OperatorId)
}

// CanSend reports whether sender may post a user message into room. Support
// rooms accept the creator and admin-tier roles without a participant row;
// personal and group rooms require an active row allowed to send.
func CanSend(room database.Room, sender Identity, active *database.Participant) bool {
	if room.State.IsDeleted() {
		return false
	}

	switch room.Type {
	case types.RoomTypeSupport:
		return room.CreatedBy == sender.OperatorId || sender.Role.IsAdminTier()
	case types.RoomTypePersonal, types.RoomTypeGroup:
		return isActiveMember(active, sender) && active.CanSendMessages
	default:
		return false
	}
}

func isActiveMember(p *database.Participant, id Identity) bool {
	return p != nil && p.Active() && p.OperatorId == id.OperatorId
}
