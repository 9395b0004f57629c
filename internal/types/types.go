package types

import (
	"time"
)

type Operator struct {
	Id           int    `json:"id"`
	Username     string `json:"username"`
	EmailAddress string `json:"email_address,omitempty"`
	Role         Role   `json:"role,omitempty"`
}

type Room struct {
	Id            string     `json:"id"`
	Type          RoomType   `json:"type"`
	Name          string     `json:"name"`
	Subject       string     `json:"subject,omitempty"`
	GroupName     string     `json:"group_name,omitempty"`
	Description   string     `json:"description"`
	Status        RoomStatus `json:"status,omitempty"`
	Priority      Priority   `json:"priority,omitempty"`
	CreatedBy     int        `json:"created_by"`
	AssignedTo    *int       `json:"assigned_to"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

type LastMessage struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	SenderId  int       `json:"sender_id"`
}

type RoomSummary struct {
	Room
	LastMessage *LastMessage `json:"last_message"`
	UnreadCount int          `json:"unread_count"`
}

type Participant struct {
	Operator        Operator   `json:"operator"`
	Role            Role       `json:"role"`
	CanSendMessages bool       `json:"can_send_messages"`
	JoinedAt        time.Time  `json:"joined_at"`
	LeftAt          *time.Time `json:"left_at,omitempty"`
	LastReadAt      *time.Time `json:"last_read_at"`
	AddedBy         int        `json:"added_by"`
}

type Attachment struct {
	Id          int    `json:"id"`
	FileUrl     string `json:"file_url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type Message struct {
	Id          int          `json:"id"`
	RoomId      string       `json:"room_id"`
	SenderId    int          `json:"sender_id"`
	Body        string       `json:"body"`
	Type        MessageType  `json:"type"`
	IsRead      bool         `json:"is_read"`
	ReadAt      *time.Time   `json:"read_at"`
	CreatedAt   time.Time    `json:"created_at"`
	Attachments []Attachment `json:"attachments"`
}

type RoomDetail struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
}

type Notification struct {
	MessageId      int         `json:"message_id"`
	RoomId         string      `json:"room_id"`
	RoomName       string      `json:"room_name"`
	SenderId       int         `json:"sender_id"`
	SenderUsername string      `json:"sender_username"`
	Body           string      `json:"body"`
	Type           MessageType `json:"type"`
	CreatedAt      time.Time   `json:"created_at"`
}
