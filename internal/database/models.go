package database

import (
	"time"

	"github.com/npezzotti/go-opschat/internal/types"
)

type Operator struct {
	Id           int
	Username     string
	EmailAddress string
	Role         types.Role
}

type Room struct {
	Id            int
	ExternalId    string
	Type          types.RoomType
	Subject       string
	GroupName     string
	Description   string
	Status        types.RoomStatus
	Priority      types.Priority
	CreatedBy     int
	AssignedTo    *int
	LastMessageAt *time.Time
	State         types.RoomState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r Room) DisplayName() string {
	return types.DisplayName(r.Type, r.GroupName, r.Subject)
}

type Participant struct {
	Id              int
	RoomId          int
	OperatorId      int
	Username        string
	Role            types.Role
	CanSendMessages bool
	JoinedAt        time.Time
	LeftAt          *time.Time
	LastReadAt      *time.Time
	AddedBy         int
}

func (p Participant) Active() bool {
	return p.LeftAt == nil
}

type Attachment struct {
	Id          int
	MessageId   int
	FileUrl     string
	FileName    string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

type Message struct {
	Id          int
	RoomId      int
	SenderId    int
	Body        string
	Type        types.MessageType
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
	Attachments []Attachment
}

// RoomSummary is one row of an operator's room list.
type RoomSummary struct {
	Room        Room
	LastMessage *Message
	UnreadCount int
}

type Notification struct {
	MessageId      int
	RoomId         int
	RoomExternalId string
	RoomType       types.RoomType
	RoomSubject    string
	RoomGroupName  string
	SenderId       int
	SenderUsername string
	Body           string
	Type           types.MessageType
	CreatedAt      time.Time
}

// VisibilityScope selects the rooms an operator may see. Rooms marked
// deleted are always excluded.
type VisibilityScope struct {
	OperatorId int
	// AllSupport grants visibility of every support room, not only the
	// ones the operator created.
	AllSupport bool
}

type NewMember struct {
	OperatorId      int
	Role            types.Role
	CanSendMessages bool
}

type CreateRoomParams struct {
	ExternalId  string
	Type        types.RoomType
	Subject     string
	GroupName   string
	Description string
	Status      types.RoomStatus
	Priority    types.Priority
	CreatedBy   int
	Members     []NewMember
}

type UpdateRoomParams struct {
	RoomId      int
	Subject     *string
	GroupName   *string
	Description *string
	Priority    *types.Priority
}

type AddParticipantParams struct {
	RoomId          int
	OperatorId      int
	Role            types.Role
	CanSendMessages bool
	AddedBy         int
}

type NewAttachment struct {
	FileUrl     string
	FileName    string
	ContentType string
	Size        int64
}

type CreateMessageParams struct {
	RoomId      int
	SenderId    int
	Body        string
	Type        types.MessageType
	IsRead      bool
	Attachments []NewAttachment
}
