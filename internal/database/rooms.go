package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/npezzotti/go-opschat/internal/types"
)

// visibleRoom is the room visibility predicate over the alias r. It expects
// the operator id in $1 and the all-support flag in $2.
const visibleRoom = `r.is_deleted = FALSE AND (
		(r.type = 'support' AND ($2::boolean OR r.created_by = $1))
		OR EXISTS (
			SELECT 1 FROM participants vp
			WHERE vp.room_id = r.id AND vp.operator_id = $1 AND vp.left_at IS NULL
		)
	)`

var roomFields = []string{
	"id", "external_id", "type", "subject", "group_name", "description", "status",
	"priority", "created_by", "assigned_to", "last_message_at", "is_deleted",
	"deleted_at", "deleted_by", "created_at", "updated_at",
}

func roomColumns(alias string) string {
	cols := make([]string, len(roomFields))
	for i, f := range roomFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner, extra ...any) (Room, error) {
	var (
		room          Room
		status        sql.NullString
		assignedTo    sql.NullInt64
		lastMessageAt sql.NullTime
		isDeleted     bool
		deletedAt     sql.NullTime
		deletedBy     sql.NullInt64
	)

	dest := []any{
		&room.Id,
		&room.ExternalId,
		&room.Type,
		&room.Subject,
		&room.GroupName,
		&room.Description,
		&status,
		&room.Priority,
		&room.CreatedBy,
		&assignedTo,
		&lastMessageAt,
		&isDeleted,
		&deletedAt,
		&deletedBy,
		&room.CreatedAt,
		&room.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Room{}, err
	}

	room.Status = types.RoomStatus(status.String)
	if assignedTo.Valid {
		id := int(assignedTo.Int64)
		room.AssignedTo = &id
	}
	if lastMessageAt.Valid {
		t := lastMessageAt.Time
		room.LastMessageAt = &t
	}
	room.State = roomState(isDeleted, deletedAt, deletedBy)

	return room, nil
}

// roomState is the only place the soft-delete columns are interpreted.
func roomState(isDeleted bool, deletedAt sql.NullTime, deletedBy sql.NullInt64) types.RoomState {
	if !isDeleted {
		return types.ActiveState()
	}
	return types.DeletedState(deletedAt.Time, int(deletedBy.Int64))
}

func nullStatus(s types.RoomStatus) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != ""}
}

func (db *PgChatRepository) GetOperator(ctx context.Context, operatorId int) (Operator, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, username, email, role FROM operators "+
			"WHERE id = $1 LIMIT 1",
		operatorId,
	)

	var op Operator
	var role string
	err := row.Scan(
		&op.Id,
		&op.Username,
		&op.EmailAddress,
		&role,
	)
	if err != nil {
		return Operator{}, err
	}

	op.Role, err = types.ParseRole(role)
	if err != nil {
		return Operator{}, fmt.Errorf("operator %d: %w", operatorId, err)
	}

	return op, nil
}

func (db *PgChatRepository) GetRoomByExternalId(ctx context.Context, externalId string) (Room, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+roomColumns("r")+" FROM rooms r "+
			"WHERE r.external_id = $1 LIMIT 1",
		externalId,
	)

	return scanRoom(row)
}

func (db *PgChatRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	var room Room
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		row := tx.QueryRowContext(ctx,
			"INSERT INTO rooms AS r (external_id, type, subject, group_name, description, status, priority, created_by, created_at, updated_at) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING "+roomColumns("r"),
			params.ExternalId,
			params.Type,
			params.Subject,
			params.GroupName,
			params.Description,
			nullStatus(params.Status),
			params.Priority,
			params.CreatedBy,
			now,
		)

		var err error
		room, err = scanRoom(row)
		if err != nil {
			return fmt.Errorf("insert room: %w", mapError(err))
		}

		for _, m := range params.Members {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO participants (room_id, operator_id, role, can_send_messages, joined_at, added_by) "+
					"VALUES ($1, $2, $3, $4, $5, $6)",
				room.Id,
				m.OperatorId,
				m.Role,
				m.CanSendMessages,
				now,
				params.CreatedBy,
			)
			if err != nil {
				return fmt.Errorf("insert participant %d: %w", m.OperatorId, mapError(err))
			}
		}

		return nil
	})
	if err != nil {
		return Room{}, err
	}

	return room, nil
}

func (db *PgChatRepository) UpdateRoom(ctx context.Context, params UpdateRoomParams) (Room, error) {
	row := db.conn.QueryRowContext(ctx,
		"UPDATE rooms AS r SET "+
			"subject = COALESCE($2, r.subject), "+
			"group_name = COALESCE($3, r.group_name), "+
			"description = COALESCE($4, r.description), "+
			"priority = COALESCE($5, r.priority), "+
			"updated_at = $6 "+
			"WHERE r.id = $1 AND r.is_deleted = FALSE RETURNING "+roomColumns("r"),
		params.RoomId,
		params.Subject,
		params.GroupName,
		params.Description,
		params.Priority,
		time.Now().UTC(),
	)

	return scanRoom(row)
}

func (db *PgChatRepository) UpdateRoomStatus(ctx context.Context, roomId int, status types.RoomStatus) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1 AND is_deleted = FALSE",
		roomId,
		status,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return expectRows(res)
}

func (db *PgChatRepository) UpdateRoomAssignee(ctx context.Context, roomId int, assignee *int) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE rooms SET assigned_to = $2, updated_at = $3 WHERE id = $1 AND is_deleted = FALSE",
		roomId,
		assignee,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return expectRows(res)
}

func (db *PgChatRepository) SoftDeleteRoom(ctx context.Context, roomId, deletedBy int, at time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE rooms SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2 "+
			"WHERE id = $1 AND is_deleted = FALSE",
		roomId,
		at,
		deletedBy,
	)
	if err != nil {
		return err
	}

	return expectRows(res)
}

// ListRoomSummaries returns the visible rooms with their last message and
// unread count, computed in one grouped query.
func (db *PgChatRepository) ListRoomSummaries(ctx context.Context, scope VisibilityScope) ([]RoomSummary, error) {
	query := `
		WITH visible AS (
			SELECT ` + roomColumns("r") + `
			FROM rooms r
			WHERE ` + visibleRoom + `
		),
		last_msg AS (
			SELECT DISTINCT ON (m.room_id) m.room_id, m.id, m.body, m.created_at, m.sender_id
			FROM messages m
			JOIN visible v ON v.id = m.room_id
			ORDER BY m.room_id, m.created_at DESC, m.id DESC
		),
		unread AS (
			SELECT m.room_id, COUNT(*) AS cnt
			FROM messages m
			JOIN visible v ON v.id = m.room_id
			WHERE m.sender_id <> $1 AND m.is_read = FALSE
			GROUP BY m.room_id
		)
		SELECT ` + roomColumns("v") + `,
			lm.id, lm.body, lm.created_at, lm.sender_id,
			COALESCE(u.cnt, 0)
		FROM visible v
		LEFT JOIN last_msg lm ON lm.room_id = v.id
		LEFT JOIN unread u ON u.room_id = v.id
		ORDER BY v.last_message_at DESC NULLS LAST, v.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, scope.OperatorId, scope.AllSupport)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	summaries := make([]RoomSummary, 0)
	for rows.Next() {
		var (
			msgId       sql.NullInt64
			msgBody     sql.NullString
			msgCreated  sql.NullTime
			msgSenderId sql.NullInt64
			unread      int
		)

		room, err := scanRoom(rows, &msgId, &msgBody, &msgCreated, &msgSenderId, &unread)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		summary := RoomSummary{Room: room, UnreadCount: unread}
		if msgId.Valid {
			summary.LastMessage = &Message{
				Id:        int(msgId.Int64),
				RoomId:    room.Id,
				SenderId:  int(msgSenderId.Int64),
				Body:      msgBody.String,
				CreatedAt: msgCreated.Time,
			}
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return summaries, nil
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
