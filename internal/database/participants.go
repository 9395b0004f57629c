package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const participantColumns = "p.id, p.room_id, p.operator_id, o.username, p.role, p.can_send_messages, " +
	"p.joined_at, p.left_at, p.last_read_at, p.added_by"

func scanParticipant(row rowScanner) (Participant, error) {
	var (
		p          Participant
		leftAt     sql.NullTime
		lastReadAt sql.NullTime
	)

	err := row.Scan(
		&p.Id,
		&p.RoomId,
		&p.OperatorId,
		&p.Username,
		&p.Role,
		&p.CanSendMessages,
		&p.JoinedAt,
		&leftAt,
		&lastReadAt,
		&p.AddedBy,
	)
	if err != nil {
		return Participant{}, err
	}

	if leftAt.Valid {
		t := leftAt.Time
		p.LeftAt = &t
	}
	if lastReadAt.Valid {
		t := lastReadAt.Time
		p.LastReadAt = &t
	}

	return p, nil
}

func (db *PgChatRepository) GetActiveParticipant(ctx context.Context, roomId, operatorId int) (Participant, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants p "+
			"JOIN operators o ON o.id = p.operator_id "+
			"WHERE p.room_id = $1 AND p.operator_id = $2 AND p.left_at IS NULL LIMIT 1",
		roomId,
		operatorId,
	)

	return scanParticipant(row)
}

func (db *PgChatRepository) ListParticipants(ctx context.Context, roomId int) ([]Participant, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants p "+
			"JOIN operators o ON o.id = p.operator_id "+
			"WHERE p.room_id = $1 AND p.left_at IS NULL ORDER BY p.joined_at, p.id",
		roomId,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return participants, nil
}

// AddParticipant inserts an active membership row. A concurrent insert for
// the same room and operator fails with ErrDuplicate.
func (db *PgChatRepository) AddParticipant(ctx context.Context, params AddParticipantParams) (Participant, error) {
	row := db.conn.QueryRowContext(ctx,
		"WITH p AS ("+
			"INSERT INTO participants (room_id, operator_id, role, can_send_messages, joined_at, added_by) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, room_id, operator_id, role, can_send_messages, joined_at, left_at, last_read_at, added_by"+
			") SELECT "+participantColumns+" FROM p JOIN operators o ON o.id = p.operator_id",
		params.RoomId,
		params.OperatorId,
		params.Role,
		params.CanSendMessages,
		time.Now().UTC(),
		params.AddedBy,
	)

	p, err := scanParticipant(row)
	if err != nil {
		return Participant{}, mapError(err)
	}

	return p, nil
}

func (db *PgChatRepository) RemoveParticipant(ctx context.Context, roomId, operatorId int, at time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE participants SET left_at = $3 "+
			"WHERE room_id = $1 AND operator_id = $2 AND left_at IS NULL",
		roomId,
		operatorId,
		at,
	)
	if err != nil {
		return err
	}

	return expectRows(res)
}

// TouchLastRead bumps last_read_at on the operator's active rows in the
// given rooms. Rooms without an active row are skipped.
func (db *PgChatRepository) TouchLastRead(ctx context.Context, roomIds []int, operatorId int, at time.Time) error {
	if len(roomIds) == 0 {
		return nil
	}

	_, err := db.conn.ExecContext(ctx,
		"UPDATE participants SET last_read_at = $3 "+
			"WHERE room_id = ANY($1) AND operator_id = $2 AND left_at IS NULL",
		int64Array(roomIds),
		operatorId,
		at,
	)

	return err
}
