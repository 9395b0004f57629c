package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is an operator's global role. It is resolved once at the identity
// boundary and compared as a value everywhere else.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ErrUnknownRole is returned by ParseRole for names outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalizes a role name coming from an external collaborator.
// Spacing, dashes and case are ignored, so "Super Admin" and "super_admin"
// both resolve to RoleSuperAdmin.
func ParseRole(s string) (Role, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)

	switch Role(norm) {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return Role(norm), nil
	case "superadmin":
		return RoleSuperAdmin, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
}

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin || r == RoleSuperAdmin
}

// IsAdminTier reports whether the role can see every support room.
func (r Role) IsAdminTier() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type RoomType string

const (
	RoomTypeSupport  RoomType = "support"
	RoomTypePersonal RoomType = "personal"
	RoomTypeGroup    RoomType = "group"
)

func (t RoomType) Valid() bool {
	return t == RoomTypeSupport || t == RoomTypePersonal || t == RoomTypeGroup
}

type RoomStatus string

const (
	StatusOpen       RoomStatus = "open"
	StatusInProgress RoomStatus = "in_progress"
	StatusResolved   RoomStatus = "resolved"
	StatusClosed     RoomStatus = "closed"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

// Deletion records who soft-deleted a room and when.
type Deletion struct {
	At time.Time
	By int
}

// RoomState is either active or deleted. The zero value is active.
type RoomState struct {
	deletion *Deletion
}

func ActiveState() RoomState {
	return RoomState{}
}

func DeletedState(at time.Time, by int) RoomState {
	return RoomState{deletion: &Deletion{At: at, By: by}}
}

func (s RoomState) IsDeleted() bool {
	return s.deletion != nil
}

func (s RoomState) Deletion() (Deletion, bool) {
	if s.deletion == nil {
		return Deletion{}, false
	}
	return *s.deletion, true
}

// DisplayName is the name shown for a room in feeds and lists.
func DisplayName(t RoomType, groupName, subject string) string {
	if t == RoomTypeGroup {
		return groupName
	}
	return subject
}
