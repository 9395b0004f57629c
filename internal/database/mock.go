package database

import (
	"context"
	"time"

	"github.com/npezzotti/go-opschat/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockChatRepository) GetOperator(ctx context.Context, operatorId int) (Operator, error) {
	args := m.Called(ctx, operatorId)
	return args.Get(0).(Operator), args.Error(1)
}
func (m *MockChatRepository) GetRoomByExternalId(ctx context.Context, externalId string) (Room, error) {
	args := m.Called(ctx, externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) UpdateRoom(ctx context.Context, params UpdateRoomParams) (Room, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) UpdateRoomStatus(ctx context.Context, roomId int, status types.RoomStatus) error {
	args := m.Called(ctx, roomId, status)
	return args.Error(0)
}
func (m *MockChatRepository) UpdateRoomAssignee(ctx context.Context, roomId int, assignee *int) error {
	args := m.Called(ctx, roomId, assignee)
	return args.Error(0)
}
func (m *MockChatRepository) SoftDeleteRoom(ctx context.Context, roomId, deletedBy int, at time.Time) error {
	args := m.Called(ctx, roomId, deletedBy, at)
	return args.Error(0)
}
func (m *MockChatRepository) ListRoomSummaries(ctx context.Context, scope VisibilityScope) ([]RoomSummary, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]RoomSummary), args.Error(1)
}
func (m *MockChatRepository) GetActiveParticipant(ctx context.Context, roomId, operatorId int) (Participant, error) {
	args := m.Called(ctx, roomId, operatorId)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockChatRepository) ListParticipants(ctx context.Context, roomId int) ([]Participant, error) {
	args := m.Called(ctx, roomId)
	return args.Get(0).([]Participant), args.Error(1)
}
func (m *MockChatRepository) AddParticipant(ctx context.Context, params AddParticipantParams) (Participant, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockChatRepository) RemoveParticipant(ctx context.Context, roomId, operatorId int, at time.Time) error {
	args := m.Called(ctx, roomId, operatorId, at)
	return args.Error(0)
}
func (m *MockChatRepository) TouchLastRead(ctx context.Context, roomIds []int, operatorId int, at time.Time) error {
	args := m.Called(ctx, roomIds, operatorId, at)
	return args.Error(0)
}
func (m *MockChatRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) ListMessages(ctx context.Context, roomId int) ([]Message, error) {
	args := m.Called(ctx, roomId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) CountUnread(ctx context.Context, scope VisibilityScope) (int, error) {
	args := m.Called(ctx, scope)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) MarkRoomRead(ctx context.Context, roomId, operatorId int, at time.Time) (int64, error) {
	args := m.Called(ctx, roomId, operatorId, at)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) ListNotifications(ctx context.Context, scope VisibilityScope, limit int) ([]Notification, error) {
	args := m.Called(ctx, scope, limit)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockChatRepository) MarkMessagesRead(ctx context.Context, scope VisibilityScope, messageIds []int, at time.Time) (int64, error) {
	args := m.Called(ctx, scope, messageIds, at)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) MarkAllRead(ctx context.Context, scope VisibilityScope, at time.Time) (int64, error) {
	args := m.Called(ctx, scope, at)
	return args.Get(0).(int64), args.Error(1)
}
