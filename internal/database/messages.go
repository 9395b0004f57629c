package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateMessage stores a message with its attachment references and bumps
// the room's last_message_at. created_at is assigned by the store.
func (db *PgChatRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	msg := Message{
		RoomId:   params.RoomId,
		SenderId: params.SenderId,
		Body:     params.Body,
		Type:     params.Type,
		IsRead:   params.IsRead,
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var readAt sql.NullTime
		err := tx.QueryRowContext(ctx,
			"INSERT INTO messages (room_id, sender_id, body, type, is_read, read_at, created_at) "+
				"VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 THEN NOW() AT TIME ZONE 'UTC' END, NOW() AT TIME ZONE 'UTC') "+
				"RETURNING id, read_at, created_at",
			params.RoomId,
			params.SenderId,
			params.Body,
			params.Type,
			params.IsRead,
		).Scan(&msg.Id, &readAt, &msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		if readAt.Valid {
			t := readAt.Time
			msg.ReadAt = &t
		}

		msg.Attachments = make([]Attachment, 0, len(params.Attachments))
		for _, a := range params.Attachments {
			att := Attachment{
				MessageId:   msg.Id,
				FileUrl:     a.FileUrl,
				FileName:    a.FileName,
				ContentType: a.ContentType,
				Size:        a.Size,
			}
			err = tx.QueryRowContext(ctx,
				"INSERT INTO message_attachments (message_id, file_url, file_name, content_type, size, created_at) "+
					"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at",
				msg.Id,
				a.FileUrl,
				a.FileName,
				a.ContentType,
				a.Size,
				msg.CreatedAt,
			).Scan(&att.Id, &att.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert attachment: %w", err)
			}
			msg.Attachments = append(msg.Attachments, att)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE rooms SET last_message_at = GREATEST(COALESCE(last_message_at, $2), $2) WHERE id = $1",
			params.RoomId,
			msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("update room: %w", err)
		}

		return nil
	})
	if err != nil {
		return Message{}, err
	}

	return msg, nil
}

// ListMessages returns the full history of a room, oldest first, with
// attachments loaded in one additional query.
func (db *PgChatRepository) ListMessages(ctx context.Context, roomId int) ([]Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, room_id, sender_id, body, type, is_read, read_at, created_at FROM messages "+
			"WHERE room_id = $1 ORDER BY created_at ASC, id ASC",
		roomId,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	index := make(map[int]int)
	for rows.Next() {
		var (
			msg    Message
			readAt sql.NullTime
		)
		err := rows.Scan(
			&msg.Id,
			&msg.RoomId,
			&msg.SenderId,
			&msg.Body,
			&msg.Type,
			&msg.IsRead,
			&readAt,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if readAt.Valid {
			t := readAt.Time
			msg.ReadAt = &t
		}
		msg.Attachments = make([]Attachment, 0)

		index[msg.Id] = len(messages)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(messages) == 0 {
		return messages, nil
	}

	ids := make([]int, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.Id)
	}

	attRows, err := db.conn.QueryContext(ctx,
		"SELECT id, message_id, file_url, file_name, content_type, size, created_at FROM message_attachments "+
			"WHERE message_id = ANY($1) ORDER BY id",
		int64Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer attRows.Close()

	for attRows.Next() {
		var a Attachment
		err := attRows.Scan(&a.Id, &a.MessageId, &a.FileUrl, &a.FileName, &a.ContentType, &a.Size, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		if i, ok := index[a.MessageId]; ok {
			messages[i].Attachments = append(messages[i].Attachments, a)
		}
	}

	if err := attRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}

func (db *PgChatRepository) CountUnread(ctx context.Context, scope VisibilityScope) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages m JOIN rooms r ON r.id = m.room_id "+
			"WHERE "+visibleRoom+" AND m.sender_id <> $1 AND m.is_read = FALSE",
		scope.OperatorId,
		scope.AllSupport,
	).Scan(&count)

	return count, err
}

// MarkRoomRead flips every unread message in the room not sent by the
// operator and bumps the operator's last_read_at, atomically.
func (db *PgChatRepository) MarkRoomRead(ctx context.Context, roomId, operatorId int, at time.Time) (int64, error) {
	var affected int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE messages SET is_read = TRUE, read_at = $3 "+
				"WHERE room_id = $1 AND sender_id <> $2 AND is_read = FALSE",
			roomId,
			operatorId,
			at,
		)
		if err != nil {
			return fmt.Errorf("mark messages: %w", err)
		}

		affected, err = res.RowsAffected()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE participants SET last_read_at = $3 "+
				"WHERE room_id = $1 AND operator_id = $2 AND left_at IS NULL",
			roomId,
			operatorId,
			at,
		)
		if err != nil {
			return fmt.Errorf("touch participant: %w", err)
		}

		return nil
	})

	return affected, err
}

func (db *PgChatRepository) ListNotifications(ctx context.Context, scope VisibilityScope, limit int) ([]Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT m.id, r.id, r.external_id, r.type, r.subject, r.group_name, "+
			"m.sender_id, o.username, m.body, m.type, m.created_at "+
			"FROM messages m "+
			"JOIN rooms r ON r.id = m.room_id "+
			"JOIN operators o ON o.id = m.sender_id "+
			"WHERE "+visibleRoom+" AND m.sender_id <> $1 AND m.is_read = FALSE "+
			"ORDER BY m.created_at DESC, m.id DESC LIMIT $3",
		scope.OperatorId,
		scope.AllSupport,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		err := rows.Scan(
			&n.MessageId,
			&n.RoomId,
			&n.RoomExternalId,
			&n.RoomType,
			&n.RoomSubject,
			&n.RoomGroupName,
			&n.SenderId,
			&n.SenderUsername,
			&n.Body,
			&n.Type,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return notifications, nil
}

// markReadQuery flips the selected notification candidates and bumps
// last_read_at for every room it touched in one statement. extra narrows
// the candidate set and may reference parameters from $4 on.
func markReadQuery(extra string) string {
	return `
		WITH updated AS (
			UPDATE messages m SET is_read = TRUE, read_at = $3
			FROM rooms r
			WHERE r.id = m.room_id AND ` + visibleRoom + `
				AND m.sender_id <> $1 AND m.is_read = FALSE` + extra + `
			RETURNING m.room_id
		),
		touched AS (
			UPDATE participants p SET last_read_at = $3
			WHERE p.operator_id = $1 AND p.left_at IS NULL
				AND p.room_id IN (SELECT DISTINCT room_id FROM updated)
			RETURNING p.id
		)
		SELECT COUNT(*) FROM updated`
}

func (db *PgChatRepository) MarkMessagesRead(ctx context.Context, scope VisibilityScope, messageIds []int, at time.Time) (int64, error) {
	if len(messageIds) == 0 {
		return 0, nil
	}

	var affected int64
	err := db.conn.QueryRowContext(ctx,
		markReadQuery(" AND m.id = ANY($4)"),
		scope.OperatorId,
		scope.AllSupport,
		at,
		int64Array(messageIds),
	).Scan(&affected)

	return affected, err
}

func (db *PgChatRepository) MarkAllRead(ctx context.Context, scope VisibilityScope, at time.Time) (int64, error) {
	var affected int64
	err := db.conn.QueryRowContext(ctx,
		markReadQuery(""),
		scope.OperatorId,
		scope.AllSupport,
		at,
	).Scan(&affected)

	return affected, err
}
