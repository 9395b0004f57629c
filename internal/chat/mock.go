package chat

import (
	"context"

	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockService) ListRooms(ctx context.Context, id Identity) ([]database.RoomSummary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]database.RoomSummary), args.Error(1)
}
func (m *MockService) GetRoomDetail(ctx context.Context, id Identity, roomId string) (RoomDetail, error) {
	args := m.Called(ctx, id, roomId)
	return args.Get(0).(RoomDetail), args.Error(1)
}
func (m *MockService) CreateRoom(ctx context.Context, creator Identity, params CreateRoomParams) (database.Room, error) {
	args := m.Called(ctx, creator, params)
	return args.Get(0).(database.Room), args.Error(1)
}
func (m *MockService) UpdateRoomMetadata(ctx context.Context, actor Identity, roomId string, params UpdateRoomParams) (database.Room, error) {
	args := m.Called(ctx, actor, roomId, params)
	return args.Get(0).(database.Room), args.Error(1)
}
func (m *MockService) UpdateStatus(ctx context.Context, actor Identity, roomId string, status types.RoomStatus) (database.Room, error) {
	args := m.Called(ctx, actor, roomId, status)
	return args.Get(0).(database.Room), args.Error(1)
}
func (m *MockService) AssignRoom(ctx context.Context, actor Identity, roomId string, assignee *int) (database.Room, error) {
	args := m.Called(ctx, actor, roomId, assignee)
	return args.Get(0).(database.Room), args.Error(1)
}
func (m *MockService) SoftDelete(ctx context.Context, actor Identity, roomId string) error {
	args := m.Called(ctx, actor, roomId)
	return args.Error(0)
}
func (m *MockService) SendMessage(ctx context.Context, sender Identity, params SendMessageParams) (database.Message, error) {
	args := m.Called(ctx, sender, params)
	return args.Get(0).(database.Message), args.Error(1)
}
func (m *MockService) MarkRead(ctx context.Context, id Identity, roomId string) (int64, error) {
	args := m.Called(ctx, id, roomId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockService) UnreadCount(ctx context.Context, id Identity) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *MockService) Notifications(ctx context.Context, id Identity) ([]database.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]database.Notification), args.Error(1)
}
func (m *MockService) MarkNotificationsRead(ctx context.Context, id Identity, messageIds []int) (int64, error) {
	args := m.Called(ctx, id, messageIds)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockService) DismissNotifications(ctx context.Context, id Identity) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockService) ListParticipants(ctx context.Context, viewer Identity, roomId string) ([]database.Participant, error) {
	args := m.Called(ctx, viewer, roomId)
	return args.Get(0).([]database.Participant), args.Error(1)
}
func (m *MockService) AddParticipant(ctx context.Context, actor Identity, roomId string, operatorId int, canSend *bool) (database.Participant, error) {
	args := m.Called(ctx, actor, roomId, operatorId, canSend)
	return args.Get(0).(database.Participant), args.Error(1)
}
func (m *MockService) RemoveParticipant(ctx context.Context, actor Identity, roomId string, operatorId int) error {
	args := m.Called(ctx, actor, roomId, operatorId)
	return args.Error(0)
}
func (m *MockService) LeaveRoom(ctx context.Context, id Identity, roomId string) error {
	args := m.Called(ctx, id, roomId)
	return args.Error(0)
}
