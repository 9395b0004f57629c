package database

import (
	"context"
	"time"

	"github.com/npezzotti/go-opschat/internal/types"
)

type ChatRepository interface {
	Ping(ctx context.Context) error
	GetOperator(ctx context.Context, operatorId int) (Operator, error)

	GetRoomByExternalId(ctx context.Context, externalId string) (Room, error)
	CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error)
	UpdateRoom(ctx context.Context, params UpdateRoomParams) (Room, error)
	UpdateRoomStatus(ctx context.Context, roomId int, status types.RoomStatus) error
	UpdateRoomAssignee(ctx context.Context, roomId int, assignee *int) error
	SoftDeleteRoom(ctx context.Context, roomId, deletedBy int, at time.Time) error
	ListRoomSummaries(ctx context.Context, scope VisibilityScope) ([]RoomSummary, error)

	GetActiveParticipant(ctx context.Context, roomId, operatorId int) (Participant, error)
	ListParticipants(ctx context.Context, roomId int) ([]Participant, error)
	AddParticipant(ctx context.Context, params AddParticipantParams) (Participant, error)
	RemoveParticipant(ctx context.Context, roomId, operatorId int, at time.Time) error
	TouchLastRead(ctx context.Context, roomIds []int, operatorId int, at time.Time) error

	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	ListMessages(ctx context.Context, roomId int) ([]Message, error)

	CountUnread(ctx context.Context, scope VisibilityScope) (int, error)
	MarkRoomRead(ctx context.Context, roomId, operatorId int, at time.Time) (int64, error)
	ListNotifications(ctx context.Context, scope VisibilityScope, limit int) ([]Notification, error)
	MarkMessagesRead(ctx context.Context, scope VisibilityScope, messageIds []int, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, scope VisibilityScope, at time.Time) (int64, error)
}
