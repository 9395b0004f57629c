package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
)

// ListParticipants returns the active members of a room visible to viewer.
func (s *Service) ListParticipants(ctx context.Context, viewer Identity, roomId string) ([]database.Participant, error) {
	room, _, err := s.loadVisibleRoom(ctx, viewer, roomId)
	if err != nil {
		return nil, err
	}

	participants, err := s.db.ListParticipants(ctx, room.Id)
	if err != nil {
		return nil, storageError("list participants", err)
	}
	return participants, nil
}

// AddParticipant adds an operator to a group room. The participant's role
// is a snapshot of the operator's global role at this moment.
func (s *Service) AddParticipant(ctx context.Context, actor Identity, roomId string, operatorId int, canSend *bool) (database.Participant, error) {
	room, err := s.loadGroupForMembership(ctx, actor, roomId)
	if err != nil {
		return database.Participant{}, err
	}

	op, err := s.getOperator(ctx, operatorId)
	if err != nil {
		return database.Participant{}, err
	}

	existing, err := s.activeParticipant(ctx, room.Id, op.Id)
	if err != nil {
		return database.Participant{}, err
	}
	if existing != nil {
		return database.Participant{}, ErrAlreadyParticipant
	}

	allowSend := true
	if canSend != nil {
		allowSend = *canSend
	}

	p, err := s.db.AddParticipant(ctx, database.AddParticipantParams{
		RoomId:          room.Id,
		OperatorId:      op.Id,
		Role:            op.Role,
		CanSendMessages: allowSend,
		AddedBy:         actor.OperatorId,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return database.Participant{}, ErrAlreadyParticipant
		}
		return database.Participant{}, storageError("add participant", err)
	}

	s.postSystemMessage(ctx, room, actor.OperatorId, fmt.Sprintf("%s was added to the group", op.Username), false)

	return p, nil
}

// RemoveParticipant soft-removes an operator from a group room.
func (s *Service) RemoveParticipant(ctx context.Context, actor Identity, roomId string, operatorId int) error {
	room, err := s.loadGroupForMembership(ctx, actor, roomId)
	if err != nil {
		return err
	}

	op, err := s.getOperator(ctx, operatorId)
	if err != nil {
		return err
	}

	if err := s.leave(ctx, room, op.Id); err != nil {
		return err
	}

	s.postSystemMessage(ctx, room, actor.OperatorId, fmt.Sprintf("%s was removed from the group", op.Username), false)

	return nil
}

// LeaveRoom lets an operator soft-remove themselves from a group room.
func (s *Service) LeaveRoom(ctx context.Context, id Identity, roomId string) error {
	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return err
	}
	if room.Type != types.RoomTypeGroup {
		return ErrForbidden
	}

	op, err := s.getOperator(ctx, id.OperatorId)
	if err != nil {
		return err
	}

	if err := s.leave(ctx, room, op.Id); err != nil {
		return err
	}

	s.postSystemMessage(ctx, room, id.OperatorId, fmt.Sprintf("%s left the group", op.Username), false)

	return nil
}

func (s *Service) leave(ctx context.Context, room database.Room, operatorId int) error {
	err := s.db.RemoveParticipant(ctx, room.Id, operatorId, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotParticipant
		}
		return storageError("remove participant", err)
	}
	return nil
}

// loadGroupForMembership checks the actor may manage membership before
// anything else is looked up.
func (s *Service) loadGroupForMembership(ctx context.Context, actor Identity, roomId string) (database.Room, error) {
	if actor.Role != types.RoleSuperAdmin {
		return database.Room{}, ErrForbidden
	}

	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, err
	}

	if room.Type != types.RoomTypeGroup {
		return database.Room{}, ErrForbidden
	}

	return room, nil
}
