package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
)

type CreateRoomParams struct {
	Type           types.RoomType
	Subject        string
	GroupName      string
	Description    string
	Priority       types.Priority
	ParticipantIds []int
}

type UpdateRoomParams struct {
	Subject     *string
	GroupName   *string
	Description *string
	Priority    *types.Priority
}

type RoomDetail struct {
	Room         database.Room
	Participants []database.Participant
	Messages     []database.Message
}

// ListRooms returns the operator's visible rooms, most recently active first.
func (s *Service) ListRooms(ctx context.Context, id Identity) ([]database.RoomSummary, error) {
	rooms, err := s.db.ListRoomSummaries(ctx, ResolveVisibility(id))
	if err != nil {
		return nil, storageError("list rooms", err)
	}
	return rooms, nil
}

// GetRoomDetail returns a room with its participants and full history and
// marks the room read for the caller.
func (s *Service) GetRoomDetail(ctx context.Context, id Identity, roomId string) (RoomDetail, error) {
	room, _, err := s.loadVisibleRoom(ctx, id, roomId)
	if err != nil {
		return RoomDetail{}, err
	}

	if _, err := s.markRoomRead(ctx, room, id); err != nil {
		s.log.Printf("mark room %q read for operator %d: %v", room.ExternalId, id.OperatorId, err)
	}

	messages, err := s.db.ListMessages(ctx, room.Id)
	if err != nil {
		return RoomDetail{}, storageError("list messages", err)
	}

	participants, err := s.db.ListParticipants(ctx, room.Id)
	if err != nil {
		return RoomDetail{}, storageError("list participants", err)
	}

	return RoomDetail{
		Room:         room,
		Participants: participants,
		Messages:     messages,
	}, nil
}

// CreateRoom inserts a room together with its creator and initial members
// and records a creation message that is already marked read.
func (s *Service) CreateRoom(ctx context.Context, creator Identity, params CreateRoomParams) (database.Room, error) {
	if !params.Type.Valid() {
		return database.Room{}, invalid("type", "must be support, personal or group")
	}

	if params.Type == types.RoomTypeGroup && creator.Role != types.RoleSuperAdmin {
		return database.Room{}, ErrForbidden
	}

	priority := params.Priority
	if priority == "" {
		priority = types.PriorityNormal
	}
	if !priority.Valid() {
		return database.Room{}, invalid("priority", "must be low, normal, high or urgent")
	}

	dbParams := database.CreateRoomParams{
		Type:        params.Type,
		Subject:     strings.TrimSpace(params.Subject),
		GroupName:   strings.TrimSpace(params.GroupName),
		Description: params.Description,
		Priority:    priority,
		CreatedBy:   creator.OperatorId,
		Members: []database.NewMember{
			{OperatorId: creator.OperatorId, Role: creator.Role, CanSendMessages: true},
		},
	}

	memberIds := make([]int, 0, len(params.ParticipantIds))
	for _, opId := range params.ParticipantIds {
		if opId != creator.OperatorId && !slices.Contains(memberIds, opId) {
			memberIds = append(memberIds, opId)
		}
	}

	var systemBody string
	switch params.Type {
	case types.RoomTypeSupport:
		if dbParams.Subject == "" {
			return database.Room{}, invalid("subject", "is required")
		}
		if len(memberIds) > 0 {
			return database.Room{}, invalid("participant_ids", "not allowed for support rooms")
		}
		dbParams.Status = types.StatusOpen
		systemBody = fmt.Sprintf("Support request %q opened", dbParams.Subject)
	case types.RoomTypePersonal:
		if len(memberIds) != 1 {
			return database.Room{}, invalid("participant_ids", "must name exactly one other operator")
		}
		systemBody = "Conversation started"
	case types.RoomTypeGroup:
		if dbParams.GroupName == "" {
			return database.Room{}, invalid("group_name", "is required")
		}
		systemBody = fmt.Sprintf("Group %q created", dbParams.GroupName)
	}

	for _, opId := range memberIds {
		op, err := s.getOperator(ctx, opId)
		if err != nil {
			return database.Room{}, err
		}
		dbParams.Members = append(dbParams.Members, database.NewMember{
			OperatorId:      op.Id,
			Role:            op.Role,
			CanSendMessages: true,
		})
	}

	externalId, err := s.newId()
	if err != nil {
		return database.Room{}, fmt.Errorf("generate room id: %w", err)
	}
	dbParams.ExternalId = externalId

	room, err := s.db.CreateRoom(ctx, dbParams)
	if err != nil {
		return database.Room{}, storageError("create room", err)
	}

	s.postSystemMessage(ctx, room, creator.OperatorId, systemBody, true)

	return room, nil
}

// UpdateRoomMetadata edits descriptive fields. Group rooms require
// super_admin; support rooms accept their creator and admin-tier roles;
// personal rooms accept any active participant.
func (s *Service) UpdateRoomMetadata(ctx context.Context, actor Identity, roomId string, params UpdateRoomParams) (database.Room, error) {
	if params.Subject == nil && params.GroupName == nil && params.Description == nil && params.Priority == nil {
		return database.Room{}, invalid("body", "no fields to update")
	}

	room, active, err := s.loadVisibleRoomForUpdate(ctx, actor, roomId)
	if err != nil {
		return database.Room{}, err
	}

	switch room.Type {
	case types.RoomTypeGroup:
		if actor.Role != types.RoleSuperAdmin {
			return database.Room{}, ErrForbidden
		}
		if params.Subject != nil || params.Priority != nil {
			return database.Room{}, invalid("body", "group rooms only accept group_name and description")
		}
	case types.RoomTypeSupport:
		if !actor.Role.IsAdminTier() && room.CreatedBy != actor.OperatorId {
			return database.Room{}, ErrForbidden
		}
		if params.GroupName != nil {
			return database.Room{}, invalid("group_name", "only group rooms have a group name")
		}
	case types.RoomTypePersonal:
		if !isActiveMember(active, actor) {
			return database.Room{}, ErrForbidden
		}
		if params.GroupName != nil || params.Priority != nil {
			return database.Room{}, invalid("body", "personal rooms only accept subject and description")
		}
	}

	if params.GroupName != nil && strings.TrimSpace(*params.GroupName) == "" {
		return database.Room{}, invalid("group_name", "must not be empty")
	}
	if params.Subject != nil && room.Type == types.RoomTypeSupport && strings.TrimSpace(*params.Subject) == "" {
		return database.Room{}, invalid("subject", "must not be empty")
	}
	if params.Priority != nil && !params.Priority.Valid() {
		return database.Room{}, invalid("priority", "must be low, normal, high or urgent")
	}

	updated, err := s.db.UpdateRoom(ctx, database.UpdateRoomParams{
		RoomId:      room.Id,
		Subject:     trimmed(params.Subject),
		GroupName:   trimmed(params.GroupName),
		Description: params.Description,
		Priority:    params.Priority,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, ErrGone
		}
		return database.Room{}, storageError("update room", err)
	}

	if room.Type == types.RoomTypeGroup && updated.GroupName != room.GroupName {
		s.postSystemMessage(ctx, updated, actor.OperatorId, fmt.Sprintf("Group renamed to %q", updated.GroupName), false)
	}

	return updated, nil
}

// UpdateStatus moves a support room to a new status through the status policy.
func (s *Service) UpdateStatus(ctx context.Context, actor Identity, roomId string, status types.RoomStatus) (database.Room, error) {
	if !status.Valid() {
		return database.Room{}, invalid("status", "must be open, in_progress, resolved or closed")
	}

	room, err := s.loadSupportRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, err
	}

	if !actor.Role.IsAdminTier() && room.CreatedBy != actor.OperatorId {
		return database.Room{}, ErrForbidden
	}

	if room.Status == status {
		return room, nil
	}

	if err := s.policy.CheckTransition(room.Status, status); err != nil {
		return database.Room{}, err
	}

	if err := s.db.UpdateRoomStatus(ctx, room.Id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, ErrGone
		}
		return database.Room{}, storageError("update status", err)
	}
	room.Status = status

	s.postSystemMessage(ctx, room, actor.OperatorId, fmt.Sprintf("Status changed to: %s", status), false)

	return room, nil
}

// AssignRoom sets or clears the admin responsible for a support room.
func (s *Service) AssignRoom(ctx context.Context, actor Identity, roomId string, assignee *int) (database.Room, error) {
	if !actor.Role.IsAdminTier() {
		return database.Room{}, ErrForbidden
	}

	room, err := s.loadSupportRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, err
	}

	systemBody := "Assignment cleared"
	if assignee != nil {
		op, err := s.getOperator(ctx, *assignee)
		if err != nil {
			return database.Room{}, err
		}
		if !op.Role.IsAdminTier() {
			return database.Room{}, invalid("assignee_id", "must be an admin")
		}
		systemBody = fmt.Sprintf("Assigned to: %s", op.Username)
	}

	if err := s.policy.CheckAssignment(room.Status); err != nil {
		return database.Room{}, err
	}

	if err := s.db.UpdateRoomAssignee(ctx, room.Id, assignee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, ErrGone
		}
		return database.Room{}, storageError("update assignee", err)
	}
	room.AssignedTo = assignee

	s.postSystemMessage(ctx, room, actor.OperatorId, systemBody, false)

	return room, nil
}

// SoftDelete marks a room deleted. Participant rows and messages are kept.
func (s *Service) SoftDelete(ctx context.Context, actor Identity, roomId string) error {
	if actor.Role != types.RoleSuperAdmin {
		return ErrForbidden
	}

	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return err
	}

	if err := s.db.SoftDeleteRoom(ctx, room.Id, actor.OperatorId, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGone
		}
		return storageError("delete room", err)
	}

	return nil
}

func (s *Service) loadSupportRoom(ctx context.Context, roomId string) (database.Room, error) {
	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, err
	}
	if room.Type != types.RoomTypeSupport {
		return database.Room{}, invalid("room_id", "only support rooms have a status and assignee")
	}
	return room, nil
}

// loadVisibleRoomForUpdate is loadVisibleRoom except that super_admin may
// update group rooms they do not belong to.
func (s *Service) loadVisibleRoomForUpdate(ctx context.Context, actor Identity, roomId string) (database.Room, *database.Participant, error) {
	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, nil, err
	}

	active, err := s.activeParticipant(ctx, room.Id, actor.OperatorId)
	if err != nil {
		return database.Room{}, nil, err
	}

	if room.Type == types.RoomTypeGroup && actor.Role == types.RoleSuperAdmin {
		return room, active, nil
	}

	if !CanView(room, actor, active) {
		return database.Room{}, nil, ErrForbidden
	}

	return room, active, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
