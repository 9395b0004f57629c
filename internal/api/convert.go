package api

import (
	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
)

func toRoom(r database.Room) types.Room {
	return types.Room{
		Id:            r.ExternalId,
		Type:          r.Type,
		Name:          r.DisplayName(),
		Subject:       r.Subject,
		GroupName:     r.GroupName,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		CreatedBy:     r.CreatedBy,
		AssignedTo:    r.AssignedTo,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRoomSummaries(rows []database.RoomSummary) []types.RoomSummary {
	summaries := make([]types.RoomSummary, 0, len(rows))
	for _, row := range rows {
		summary := types.RoomSummary{
			Room:        toRoom(row.Room),
			UnreadCount: row.UnreadCount,
		}
		if row.LastMessage != nil {
			summary.LastMessage = &types.LastMessage{
				Body:      row.LastMessage.Body,
				CreatedAt: row.LastMessage.CreatedAt,
				SenderId:  row.LastMessage.SenderId,
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func toMessage(m database.Message, roomId string) types.Message {
	attachments := make([]types.Attachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, types.Attachment{
			Id:          a.Id,
			FileUrl:     a.FileUrl,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}

	return types.Message{
		Id:          m.Id,
		RoomId:      roomId,
		SenderId:    m.SenderId,
		Body:        m.Body,
		Type:        m.Type,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
		Attachments: attachments,
	}
}

func toParticipant(p database.Participant) types.Participant {
	return types.Participant{
		Operator: types.Operator{
			Id:       p.OperatorId,
			Username: p.Username,
		},
		Role:            p.Role,
		CanSendMessages: p.CanSendMessages,
		JoinedAt:        p.JoinedAt,
		LeftAt:          p.LeftAt,
		LastReadAt:      p.LastReadAt,
		AddedBy:         p.AddedBy,
	}
}

func toParticipants(rows []database.Participant) []types.Participant {
	participants := make([]types.Participant, 0, len(rows))
	for _, p := range rows {
		participants = append(participants, toParticipant(p))
	}
	return participants
}

func toRoomDetail(d chat.RoomDetail) types.RoomDetail {
	messages := make([]types.Message, 0, len(d.Messages))
	for _, m := range d.Messages {
		messages = append(messages, toMessage(m, d.Room.ExternalId))
	}

	return types.RoomDetail{
		Room:         toRoom(d.Room),
		Participants: toParticipants(d.Participants),
		Messages:     messages,
	}
}

func toNotifications(rows []database.Notification) []types.Notification {
	notifications := make([]types.Notification, 0, len(rows))
	for _, n := range rows {
		notifications = append(notifications, types.Notification{
			MessageId:      n.MessageId,
			RoomId:         n.RoomExternalId,
			RoomName:       types.DisplayName(n.RoomType, n.RoomGroupName, n.RoomSubject),
			SenderId:       n.SenderId,
			SenderUsername: n.SenderUsername,
			Body:           n.Body,
			Type:           n.Type,
			CreatedAt:      n.CreatedAt,
		})
	}
	return notifications
}
