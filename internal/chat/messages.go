package chat

import (
	"context"
	"strings"

	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
)

type SendMessageParams struct {
	RoomId      string
	Body        string
	Type        types.MessageType
	Attachments []database.NewAttachment
}

// SendMessage stores a message from sender. System messages skip the send
// permission check; everything else must pass CanSend.
func (s *Service) SendMessage(ctx context.Context, sender Identity, params SendMessageParams) (database.Message, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return database.Message{}, invalid("body", "is required")
	}

	msgType := params.Type
	if msgType == "" {
		msgType = types.MessageTypeText
	}
	if msgType != types.MessageTypeText && msgType != types.MessageTypeSystem {
		return database.Message{}, invalid("type", "must be text or system")
	}

	room, err := s.loadRoom(ctx, params.RoomId)
	if err != nil {
		return database.Message{}, err
	}

	if msgType != types.MessageTypeSystem {
		var active *database.Participant
		if room.Type != types.RoomTypeSupport {
			active, err = s.activeParticipant(ctx, room.Id, sender.OperatorId)
			if err != nil {
				return database.Message{}, err
			}
		}

		if !CanSend(room, sender, active) {
			return database.Message{}, ErrForbidden
		}
	}

	return s.createMessage(ctx, room, sender.OperatorId, database.CreateMessageParams{
		Body:        body,
		Type:        msgType,
		Attachments: params.Attachments,
	})
}

// createMessage persists a message and marks the room read for its sender.
// The last_read_at bump is best effort: the message is already durable.
func (s *Service) createMessage(ctx context.Context, room database.Room, senderId int, params database.CreateMessageParams) (database.Message, error) {
	params.RoomId = room.Id
	params.SenderId = senderId

	msg, err := s.db.CreateMessage(ctx, params)
	if err != nil {
		return database.Message{}, storageError("create message", err)
	}

	if err := s.db.TouchLastRead(ctx, []int{room.Id}, senderId, s.now()); err != nil {
		s.log.Printf("touch last read for operator %d in room %q: %v", senderId, room.ExternalId, err)
	}

	return msg, nil
}

// postSystemMessage records a lifecycle event in the room on behalf of
// actorId. The event itself has already been committed, so a failure here
// is logged rather than returned.
func (s *Service) postSystemMessage(ctx context.Context, room database.Room, actorId int, body string, preRead bool) {
	_, err := s.createMessage(ctx, room, actorId, database.CreateMessageParams{
		Body:   body,
		Type:   types.MessageTypeSystem,
		IsRead: preRead,
	})
	if err != nil {
		s.log.Printf("system message in room %q: %v", room.ExternalId, err)
	}
}
