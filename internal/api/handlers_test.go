package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/config"
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/stats"
	"github.com/npezzotti/go-opschat/internal/testutil"
	"github.com/npezzotti/go-opschat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	testSigningKey = []byte("test-signing-key")

	member     = chat.Identity{OperatorId: 1, Role: types.RoleMember}
	admin      = chat.Identity{OperatorId: 3, Role: types.RoleAdmin}
	superAdmin = chat.Identity{OperatorId: 4, Role: types.RoleSuperAdmin}

	testTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
)

func newTestApp(t *testing.T, svc ChatService, su stats.StatsProvider) *OpsChatApp {
	return NewOpsChatApp(http.NewServeMux(), testutil.TestLogger(t), svc, su, &config.Config{
		ServerAddr: "localhost:8080",
		SigningKey: testSigningKey,
	})
}

// newRequest builds a request carrying a bearer token for id.
func newRequest(t *testing.T, method, path string, body any, id chat.Identity) *http.Request {
	buf := &bytes.Buffer{}
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		if err := json.NewEncoder(buf).Encode(v); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, buf)
	token, err := NewToken(testSigningKey, id.OperatorId, id.Role, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ApiError {
	var apiErr ApiError
	if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return apiErr
}

func supportRoom() database.Room {
	return database.Room{
		Id:         10,
		ExternalId: "sup",
		Type:       types.RoomTypeSupport,
		Subject:    "Billing issue",
		Status:     types.StatusOpen,
		Priority:   types.PriorityNormal,
		CreatedBy:  member.OperatorId,
		CreatedAt:  testTime,
		UpdatedAt:  testTime,
	}
}

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name    string
		mockErr error
	}{
		{
			name:    "successful health check",
			mockErr: nil,
		},
		{
			name:    "failed health check",
			mockErr: errors.New("db error"),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			defer svc.AssertExpectations(t)
			svc.On("Ping", mock.Anything).Return(tc.mockErr).Once()

			app := newTestApp(t, svc, nil)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if tc.mockErr != nil {
				assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
			} else {
				assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
				assert.Equal(t, "OK", rr.Body.String(), "expected response body to be 'OK'")
			}
		})
	}
}

func TestUnauthenticatedRequest(t *testing.T) {
	svc := &chat.MockService{}
	app := newTestApp(t, svc, nil)

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "ListRooms", mock.Anything, mock.Anything)
}

func TestListRoomsHandler(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)

	lastMsg := &database.Message{Body: "On it", SenderId: admin.OperatorId, CreatedAt: testTime}
	group := database.Room{Id: 11, ExternalId: "ops", Type: types.RoomTypeGroup, GroupName: "Ops"}
	svc.On("ListRooms", mock.Anything, admin).Return([]database.RoomSummary{
		{Room: supportRoom(), LastMessage: lastMsg, UnreadCount: 2},
		{Room: group},
	}, nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/rooms", nil, admin))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, private", rr.Header().Get("Cache-Control"))

	var rooms []types.RoomSummary
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&rooms))
	assert.Len(t, rooms, 2)
	assert.Equal(t, "sup", rooms[0].Id)
	assert.Equal(t, "Billing issue", rooms[0].Name)
	assert.Equal(t, 2, rooms[0].UnreadCount)
	assert.Equal(t, "On it", rooms[0].LastMessage.Body)
	assert.Equal(t, "Ops", rooms[1].Name)
	assert.Nil(t, rooms[1].LastMessage)
}

func TestListRoomsHandler_Empty(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)
	svc.On("ListRooms", mock.Anything, member).Return([]database.RoomSummary(nil), nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/rooms", nil, member))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestCreateRoomHandler(t *testing.T) {
	tcases := []struct {
		name           string
		identity       chat.Identity
		body           any
		setup          func(svc *chat.MockService, su *stats.MockStatsUpdater)
		expectedStatus int
		expectedDetail map[string]string
	}{
		{
			name:     "creates support room",
			identity: member,
			body:     CreateRoomRequest{Type: types.RoomTypeSupport, Subject: "Billing issue"},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("CreateRoom", mock.Anything, member, chat.CreateRoomParams{
					Type:    types.RoomTypeSupport,
					Subject: "Billing issue",
				}).Return(supportRoom(), nil).Once()
				su.On("Incr", stats.RoomsCreated).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json body",
			identity:       member,
			body:           "invalid json",
			setup:          func(svc *chat.MockService, su *stats.MockStatsUpdater) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing type",
			identity:       member,
			body:           CreateRoomRequest{Subject: "Billing issue"},
			setup:          func(svc *chat.MockService, su *stats.MockStatsUpdater) {},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: map[string]string{"type": "is required"},
		},
		{
			name:           "unknown priority",
			identity:       member,
			body:           CreateRoomRequest{Type: types.RoomTypeSupport, Subject: "x", Priority: "asap"},
			setup:          func(svc *chat.MockService, su *stats.MockStatsUpdater) {},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: map[string]string{"priority": "must be one of: low normal high urgent"},
		},
		{
			name:     "admin cannot create group",
			identity: admin,
			body:     CreateRoomRequest{Type: types.RoomTypeGroup, GroupName: "Ops"},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("CreateRoom", mock.Anything, admin, mock.Anything).Return(database.Room{}, chat.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:     "service validation error",
			identity: member,
			body:     CreateRoomRequest{Type: types.RoomTypePersonal},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("CreateRoom", mock.Anything, member, mock.Anything).
					Return(database.Room{}, &chat.ValidationError{Field: "participant_ids", Message: "must name exactly one other operator"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: map[string]string{"participant_ids": "must name exactly one other operator"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			su := &stats.MockStatsUpdater{}
			defer svc.AssertExpectations(t)
			defer su.AssertExpectations(t)
			tc.setup(svc, su)

			app := newTestApp(t, svc, su)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/rooms", tc.body, tc.identity))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusCreated {
				var room types.Room
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&room))
				assert.Equal(t, "sup", room.Id)
				assert.Equal(t, types.StatusOpen, room.Status)
				return
			}

			apiErr := decodeError(t, rr)
			assert.Equal(t, tc.expectedStatus, apiErr.StatusCode)
			if tc.expectedDetail != nil {
				assert.Equal(t, tc.expectedDetail, apiErr.Details)
			}
			su.AssertNotCalled(t, "Incr", mock.Anything)
		})
	}
}

func TestGetRoomHandler(t *testing.T) {
	room := supportRoom()
	detail := chat.RoomDetail{
		Room: room,
		Participants: []database.Participant{
			{RoomId: 10, OperatorId: member.OperatorId, Username: "bob", Role: types.RoleMember, CanSendMessages: true, JoinedAt: testTime},
		},
		Messages: []database.Message{
			{Id: 1, RoomId: 10, SenderId: member.OperatorId, Body: "Support request opened", Type: types.MessageTypeSystem, IsRead: true, CreatedAt: testTime},
			{Id: 2, RoomId: 10, SenderId: admin.OperatorId, Body: "See log", Type: types.MessageTypeText, CreatedAt: testTime.Add(time.Minute),
				Attachments: []database.Attachment{{Id: 7, FileUrl: "https://files.example.com/log.txt", FileName: "log.txt"}}},
		},
	}

	tcases := []struct {
		name           string
		mockDetail     chat.RoomDetail
		mockErr        error
		expectedStatus int
	}{
		{name: "returns detail", mockDetail: detail, expectedStatus: http.StatusOK},
		{name: "unknown room", mockErr: chat.ErrNotFound, expectedStatus: http.StatusNotFound},
		{name: "deleted room", mockErr: chat.ErrGone, expectedStatus: http.StatusGone},
		{name: "not visible", mockErr: chat.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "storage failure", mockErr: &chat.StorageError{Op: "list messages", Err: errors.New("timeout")}, expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			defer svc.AssertExpectations(t)
			svc.On("GetRoomDetail", mock.Anything, member, "sup").Return(tc.mockDetail, tc.mockErr).Once()

			app := newTestApp(t, svc, nil)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/rooms/sup", nil, member))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.mockErr != nil {
				return
			}

			var got types.RoomDetail
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, "sup", got.Room.Id)
			assert.Len(t, got.Participants, 1)
			assert.Equal(t, "bob", got.Participants[0].Operator.Username)
			assert.Len(t, got.Messages, 2)
			assert.Equal(t, "sup", got.Messages[0].RoomId)
			assert.Empty(t, got.Messages[0].Attachments)
			assert.Equal(t, "log.txt", got.Messages[1].Attachments[0].FileName)
		})
	}
}

func TestUpdateRoomHandler(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)

	name := "Night shift"
	renamed := database.Room{Id: 11, ExternalId: "ops", Type: types.RoomTypeGroup, GroupName: name}
	svc.On("UpdateRoomMetadata", mock.Anything, superAdmin, "ops", chat.UpdateRoomParams{GroupName: &name}).Return(renamed, nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPatch, "/api/rooms/ops", map[string]string{"group_name": name}, superAdmin))

	assert.Equal(t, http.StatusOK, rr.Code)
	var room types.Room
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&room))
	assert.Equal(t, name, room.Name)
}

func TestUpdateStatusHandler(t *testing.T) {
	tcases := []struct {
		name           string
		body           any
		mockErr        error
		callsService   bool
		expectedStatus int
	}{
		{name: "updates status", body: UpdateStatusRequest{Status: types.StatusInProgress}, callsService: true, expectedStatus: http.StatusOK},
		{name: "unknown status", body: map[string]string{"status": "pending"}, expectedStatus: http.StatusBadRequest},
		{name: "transition denied", body: UpdateStatusRequest{Status: types.StatusClosed}, mockErr: chat.ErrTransitionDenied, callsService: true, expectedStatus: http.StatusConflict},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			defer svc.AssertExpectations(t)
			if tc.callsService {
				room := supportRoom()
				room.Status = types.StatusInProgress
				svc.On("UpdateStatus", mock.Anything, admin, "sup", mock.Anything).Return(room, tc.mockErr).Once()
			}

			app := newTestApp(t, svc, nil)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPut, "/api/rooms/sup/status", tc.body, admin))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusConflict {
				apiErr := decodeError(t, rr)
				assert.Contains(t, apiErr.Message, "status change not allowed")
			}
		})
	}
}

func TestAssignRoomHandler(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)

	assignee := admin.OperatorId
	room := supportRoom()
	room.AssignedTo = &assignee
	svc.On("AssignRoom", mock.Anything, admin, "sup", &assignee).Return(room, nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPut, "/api/rooms/sup/assignee", AssignRoomRequest{AssigneeId: &assignee}, admin))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got types.Room
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, &assignee, got.AssignedTo)
}

func TestDeleteRoomHandler(t *testing.T) {
	tcases := []struct {
		name           string
		identity       chat.Identity
		mockErr        error
		expectedStatus int
	}{
		{name: "super admin deletes", identity: superAdmin, expectedStatus: http.StatusNoContent},
		{name: "admin forbidden", identity: admin, mockErr: chat.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "already deleted", identity: superAdmin, mockErr: chat.ErrGone, expectedStatus: http.StatusGone},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			su := &stats.MockStatsUpdater{}
			defer svc.AssertExpectations(t)
			defer su.AssertExpectations(t)

			svc.On("SoftDelete", mock.Anything, tc.identity, "ops").Return(tc.mockErr).Once()
			if tc.mockErr == nil {
				su.On("Incr", stats.RoomsDeleted).Once()
			}

			app := newTestApp(t, svc, su)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodDelete, "/api/rooms/ops", nil, tc.identity))

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestSendMessageHandler(t *testing.T) {
	sent := database.Message{Id: 42, RoomId: 10, SenderId: member.OperatorId, Body: "hello", Type: types.MessageTypeText, CreatedAt: testTime}

	tcases := []struct {
		name           string
		body           any
		setup          func(svc *chat.MockService, su *stats.MockStatsUpdater)
		expectedStatus int
		expectedDetail map[string]string
	}{
		{
			name: "sends text message",
			body: SendMessageRequest{Body: "hello"},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("SendMessage", mock.Anything, member, chat.SendMessageParams{
					RoomId:      "sup",
					Body:        "hello",
					Type:        types.MessageTypeText,
					Attachments: []database.NewAttachment{},
				}).Return(sent, nil).Once()
				su.On("Incr", stats.MessagesSent).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "sends with attachment",
			body: SendMessageRequest{Body: "see file", Attachments: []AttachmentRequest{
				{FileUrl: "https://files.example.com/a.png", FileName: "a.png", ContentType: "image/png", Size: 120},
			}},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("SendMessage", mock.Anything, member, chat.SendMessageParams{
					RoomId: "sup",
					Body:   "see file",
					Type:   types.MessageTypeText,
					Attachments: []database.NewAttachment{
						{FileUrl: "https://files.example.com/a.png", FileName: "a.png", ContentType: "image/png", Size: 120},
					},
				}).Return(sent, nil).Once()
				su.On("Incr", stats.MessagesSent).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty body",
			body:           SendMessageRequest{},
			setup:          func(svc *chat.MockService, su *stats.MockStatsUpdater) {},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: map[string]string{"body": "is required"},
		},
		{
			name: "attachment without url",
			body: SendMessageRequest{Body: "x", Attachments: []AttachmentRequest{{FileName: "a.png"}}},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: map[string]string{"file_url": "is required"},
		},
		{
			name: "sender not allowed",
			body: SendMessageRequest{Body: "hello"},
			setup: func(svc *chat.MockService, su *stats.MockStatsUpdater) {
				svc.On("SendMessage", mock.Anything, member, mock.Anything).Return(database.Message{}, chat.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			su := &stats.MockStatsUpdater{}
			defer svc.AssertExpectations(t)
			defer su.AssertExpectations(t)
			tc.setup(svc, su)

			app := newTestApp(t, svc, su)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/rooms/sup/messages", tc.body, member))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusCreated {
				var msg types.Message
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&msg))
				assert.Equal(t, 42, msg.Id)
				assert.Equal(t, "sup", msg.RoomId)
				return
			}

			if tc.expectedDetail != nil {
				assert.Equal(t, tc.expectedDetail, decodeError(t, rr).Details)
			}
		})
	}
}

func TestMarkRoomReadHandler(t *testing.T) {
	tcases := []struct {
		name     string
		affected int64
	}{
		{name: "marks messages read", affected: 2},
		{name: "nothing left to mark", affected: 0},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &chat.MockService{}
			su := &stats.MockStatsUpdater{}
			defer svc.AssertExpectations(t)
			defer su.AssertExpectations(t)

			svc.On("MarkRead", mock.Anything, member, "sup").Return(tc.affected, nil).Once()
			if tc.affected > 0 {
				su.On("Add", stats.MessagesMarkedRead, tc.affected).Once()
			}

			app := newTestApp(t, svc, su)
			rr := httptest.NewRecorder()
			app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/rooms/sup/read", nil, member))

			assert.Equal(t, http.StatusOK, rr.Code)
			var resp AffectedResponse
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tc.affected, resp.Affected)
		})
	}
}

func TestParticipantHandlers(t *testing.T) {
	t.Run("list participants", func(t *testing.T) {
		svc := &chat.MockService{}
		defer svc.AssertExpectations(t)
		svc.On("ListParticipants", mock.Anything, member, "ops").Return([]database.Participant{
			{OperatorId: 4, Username: "root", Role: types.RoleSuperAdmin, CanSendMessages: true},
		}, nil).Once()

		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/rooms/ops/participants", nil, member))

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []types.Participant
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, types.RoleSuperAdmin, got[0].Role)
	})

	t.Run("add participant", func(t *testing.T) {
		svc := &chat.MockService{}
		su := &stats.MockStatsUpdater{}
		defer svc.AssertExpectations(t)
		defer su.AssertExpectations(t)

		canSend := false
		svc.On("AddParticipant", mock.Anything, superAdmin, "ops", 2, &canSend).
			Return(database.Participant{RoomId: 11, OperatorId: 2, Username: "bob", Role: types.RoleMember}, nil).Once()
		su.On("Incr", stats.ParticipantsAdded).Once()

		app := newTestApp(t, svc, su)
		rr := httptest.NewRecorder()
		req := newRequest(t, http.MethodPost, "/api/rooms/ops/participants", AddParticipantRequest{OperatorId: 2, CanSendMessages: &canSend}, superAdmin)
		app.Handler().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("add existing participant", func(t *testing.T) {
		svc := &chat.MockService{}
		defer svc.AssertExpectations(t)
		svc.On("AddParticipant", mock.Anything, superAdmin, "ops", 2, (*bool)(nil)).
			Return(database.Participant{}, chat.ErrAlreadyParticipant).Once()

		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/rooms/ops/participants", AddParticipantRequest{OperatorId: 2}, superAdmin))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("remove participant", func(t *testing.T) {
		svc := &chat.MockService{}
		su := &stats.MockStatsUpdater{}
		defer svc.AssertExpectations(t)
		defer su.AssertExpectations(t)
		svc.On("RemoveParticipant", mock.Anything, superAdmin, "ops", 2).Return(nil).Once()
		su.On("Incr", stats.ParticipantsRemoved).Once()

		app := newTestApp(t, svc, su)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodDelete, "/api/rooms/ops/participants/2", nil, superAdmin))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	})

	t.Run("remove with bad operator id", func(t *testing.T) {
		svc := &chat.MockService{}
		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodDelete, "/api/rooms/ops/participants/bob", nil, superAdmin))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeError(t, rr)
		assert.Equal(t, map[string]string{"operator_id": "must be a positive integer"}, apiErr.Details)
		svc.AssertNotCalled(t, "RemoveParticipant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remove operator that is not a participant", func(t *testing.T) {
		svc := &chat.MockService{}
		defer svc.AssertExpectations(t)
		svc.On("RemoveParticipant", mock.Anything, superAdmin, "ops", 9).Return(chat.ErrNotParticipant).Once()

		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodDelete, "/api/rooms/ops/participants/9", nil, superAdmin))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("leave room", func(t *testing.T) {
		svc := &chat.MockService{}
		su := &stats.MockStatsUpdater{}
		defer svc.AssertExpectations(t)
		defer su.AssertExpectations(t)
		svc.On("LeaveRoom", mock.Anything, member, "ops").Return(nil).Once()
		su.On("Incr", stats.ParticipantsRemoved).Once()

		app := newTestApp(t, svc, su)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/rooms/ops/leave", nil, member))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestUnreadCountHandler(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)
	svc.On("UnreadCount", mock.Anything, admin).Return(3, nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/unread", nil, admin))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"unread_count":3}`, rr.Body.String())
}

func TestNotificationsHandler(t *testing.T) {
	svc := &chat.MockService{}
	defer svc.AssertExpectations(t)
	svc.On("Notifications", mock.Anything, member).Return([]database.Notification{
		{MessageId: 5, RoomExternalId: "ops", RoomType: types.RoomTypeGroup, RoomGroupName: "Ops", RoomSubject: "", SenderId: 4, SenderUsername: "root", Body: "hi", Type: types.MessageTypeText, CreatedAt: testTime},
		{MessageId: 4, RoomExternalId: "sup", RoomType: types.RoomTypeSupport, RoomSubject: "Billing issue", SenderId: 3, SenderUsername: "alice", Body: "On it", Type: types.MessageTypeText, CreatedAt: testTime},
	}, nil).Once()

	app := newTestApp(t, svc, nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/notifications", nil, member))

	assert.Equal(t, http.StatusOK, rr.Code)
	var feed []types.Notification
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&feed))
	assert.Len(t, feed, 2)
	assert.Equal(t, "Ops", feed[0].RoomName)
	assert.Equal(t, "Billing issue", feed[1].RoomName)
	assert.Equal(t, "sup", feed[1].RoomId)
}

func TestMarkNotificationsReadHandler(t *testing.T) {
	t.Run("marks listed ids", func(t *testing.T) {
		svc := &chat.MockService{}
		su := &stats.MockStatsUpdater{}
		defer svc.AssertExpectations(t)
		defer su.AssertExpectations(t)
		svc.On("MarkNotificationsRead", mock.Anything, member, []int{4, 5}).Return(int64(2), nil).Once()
		su.On("Add", stats.MessagesMarkedRead, int64(2)).Once()

		app := newTestApp(t, svc, su)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/notifications/read", MarkNotificationsReadRequest{MessageIds: []int{4, 5}}, member))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"affected":2}`, rr.Body.String())
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		svc := &chat.MockService{}
		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/notifications/read", MarkNotificationsReadRequest{}, member))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "MarkNotificationsRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("dismiss all", func(t *testing.T) {
		svc := &chat.MockService{}
		defer svc.AssertExpectations(t)
		svc.On("DismissNotifications", mock.Anything, member).Return(int64(0), nil).Once()

		app := newTestApp(t, svc, nil)
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/notifications/dismiss", nil, member))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"affected":0}`, rr.Body.String())
	})
}
