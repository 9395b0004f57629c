package chat

import (
	"context"
	"slices"

	"github.com/npezzotti/go-opschat/internal/database"
)

// UnreadCount counts unread messages not sent by the operator across every
// room visible to them.
func (s *Service) UnreadCount(ctx context.Context, id Identity) (int, error) {
	count, err := s.db.CountUnread(ctx, ResolveVisibility(id))
	if err != nil {
		return 0, storageError("count unread", err)
	}
	return count, nil
}

// MarkRead marks every message in the room not sent by the operator as read.
// Calling it again flips nothing.
func (s *Service) MarkRead(ctx context.Context, id Identity, roomId string) (int64, error) {
	room, _, err := s.loadVisibleRoom(ctx, id, roomId)
	if err != nil {
		return 0, err
	}

	return s.markRoomRead(ctx, room, id)
}

func (s *Service) markRoomRead(ctx context.Context, room database.Room, id Identity) (int64, error) {
	n, err := s.db.MarkRoomRead(ctx, room.Id, id.OperatorId, s.now())
	if err != nil {
		return 0, storageError("mark room read", err)
	}
	return n, nil
}

// Notifications returns the most recent unread messages addressed to the
// operator, newest first.
func (s *Service) Notifications(ctx context.Context, id Identity) ([]database.Notification, error) {
	notifications, err := s.db.ListNotifications(ctx, ResolveVisibility(id), NotificationLimit)
	if err != nil {
		return nil, storageError("list notifications", err)
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given messages read. Ids the operator
// authored, ids outside their visible rooms and ids already read are
// skipped, so resubmitting the same ids is a no-op.
func (s *Service) MarkNotificationsRead(ctx context.Context, id Identity, messageIds []int) (int64, error) {
	if len(messageIds) == 0 {
		return 0, invalid("message_ids", "is required")
	}

	ids := make([]int, 0, len(messageIds))
	for _, mid := range messageIds {
		if mid <= 0 {
			return 0, invalid("message_ids", "must be positive")
		}
		if !slices.Contains(ids, mid) {
			ids = append(ids, mid)
		}
	}

	n, err := s.db.MarkMessagesRead(ctx, ResolveVisibility(id), ids, s.now())
	if err != nil {
		return 0, storageError("mark notifications read", err)
	}
	return n, nil
}

// DismissNotifications marks every pending notification read.
func (s *Service) DismissNotifications(ctx context.Context, id Identity) (int64, error) {
	n, err := s.db.MarkAllRead(ctx, ResolveVisibility(id), s.now())
	if err != nil {
		return 0, storageError("dismiss notifications", err)
	}
	return n, nil
}
