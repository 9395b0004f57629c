package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/types"
	"github.com/teris-io/shortid"
)

// NotificationLimit caps the recent-unread feed.
const NotificationLimit = 10

// Service implements the room-scoped chat operations. It keeps no state
// between calls; every operation runs against the repository within the
// caller's context.
type Service struct {
	log    *log.Logger
	db     database.ChatRepository
	policy StatusPolicy
	newId  func() (string, error)
	now    func() time.Time
}

func NewService(logger *log.Logger, db database.ChatRepository, policy StatusPolicy) *Service {
	if policy == nil {
		policy = PermissiveStatusPolicy{}
	}

	return &Service{
		log:    logger,
		db:     db,
		policy: policy,
		newId:  shortid.Generate,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// loadRoom resolves an external room id to a room that is not deleted.
func (s *Service) loadRoom(ctx context.Context, roomId string) (database.Room, error) {
	if roomId == "" {
		return database.Room{}, invalid("room_id", "is required")
	}

	room, err := s.db.GetRoomByExternalId(ctx, roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, fmt.Errorf("room %q: %w", roomId, ErrNotFound)
		}
		return database.Room{}, storageError("get room", err)
	}

	if room.State.IsDeleted() {
		return database.Room{}, fmt.Errorf("room %q: %w", roomId, ErrGone)
	}

	return room, nil
}

// activeParticipant returns the operator's active row in the room, or nil.
func (s *Service) activeParticipant(ctx context.Context, roomId, operatorId int) (*database.Participant, error) {
	p, err := s.db.GetActiveParticipant(ctx, roomId, operatorId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("get participant", err)
	}
	return &p, nil
}

// loadVisibleRoom loads a room and checks the operator may see it.
func (s *Service) loadVisibleRoom(ctx context.Context, id Identity, roomId string) (database.Room, *database.Participant, error) {
	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return database.Room{}, nil, err
	}

	active, err := s.activeParticipant(ctx, room.Id, id.OperatorId)
	if err != nil {
		return database.Room{}, nil, err
	}

	if !CanView(room, id, active) {
		return database.Room{}, nil, ErrForbidden
	}

	return room, active, nil
}

func (s *Service) getOperator(ctx context.Context, operatorId int) (database.Operator, error) {
	op, err := s.db.GetOperator(ctx, operatorId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Operator{}, fmt.Errorf("operator %d: %w", operatorId, ErrNotFound)
		}
		// a directory row outside the role set is not a chat operator
		if errors.Is(err, types.ErrUnknownRole) {
			s.log.Printf("operator %d skipped: %v", operatorId, err)
			return database.Operator{}, fmt.Errorf("operator %d: %w", operatorId, ErrNotFound)
		}
		return database.Operator{}, storageError("get operator", err)
	}
	return op, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
