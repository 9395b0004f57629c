package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/stats"
	"github.com/npezzotti/go-opschat/internal/types"
)

type CreateRoomRequest struct {
	Type           types.RoomType `json:"type" validate:"required,oneof=support personal group"`
	Subject        string         `json:"subject" validate:"max=255"`
	GroupName      string         `json:"group_name" validate:"max=255"`
	Description    string         `json:"description" validate:"max=2000"`
	Priority       types.Priority `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	ParticipantIds []int          `json:"participant_ids" validate:"dive,gt=0"`
}

type UpdateRoomRequest struct {
	Subject     *string         `json:"subject" validate:"omitempty,max=255"`
	GroupName   *string         `json:"group_name" validate:"omitempty,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Priority    *types.Priority `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

type UpdateStatusRequest struct {
	Status types.RoomStatus `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type AssignRoomRequest struct {
	AssigneeId *int `json:"assignee_id" validate:"omitempty,gt=0"`
}

type AttachmentRequest struct {
	FileUrl     string `json:"file_url" validate:"required,url"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"max=127"`
	Size        int64  `json:"size" validate:"gte=0"`
}

type SendMessageRequest struct {
	Body        string              `json:"body" validate:"required,max=10000"`
	Attachments []AttachmentRequest `json:"attachments" validate:"max=10,dive"`
}

type AddParticipantRequest struct {
	OperatorId      int   `json:"operator_id" validate:"required,gt=0"`
	CanSendMessages *bool `json:"can_send_messages"`
}

type MarkNotificationsReadRequest struct {
	MessageIds []int `json:"message_ids" validate:"required,min=1,dive,gt=0"`
}

type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

func (s *OpsChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *OpsChatApp) writeError(w http.ResponseWriter, errResp *ApiError) {
	s.writeJson(w, errResp.StatusCode, errResp)
}

// writeServiceError renders an error from the chat service. Server-side
// failures are logged; everything else is the caller's problem.
func (s *OpsChatApp) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	errResp := errorFromService(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	s.writeError(w, errResp)
}

func (s *OpsChatApp) identity(w http.ResponseWriter, r *http.Request) (chat.Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
	}
	return id, ok
}

func (s *OpsChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.log.Printf("health check: %v", err)
		s.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *OpsChatApp) listRooms(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	rooms, err := s.svc.ListRooms(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toRoomSummaries(rooms))
}

func (s *OpsChatApp) createRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	room, err := s.svc.CreateRoom(r.Context(), id, chat.CreateRoomParams{
		Type:           req.Type,
		Subject:        req.Subject,
		GroupName:      req.GroupName,
		Description:    req.Description,
		Priority:       req.Priority,
		ParticipantIds: req.ParticipantIds,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.RoomsCreated)
	s.writeJson(w, http.StatusCreated, toRoom(room))
}

func (s *OpsChatApp) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	detail, err := s.svc.GetRoomDetail(r.Context(), id, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toRoomDetail(detail))
}

func (s *OpsChatApp) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req UpdateRoomRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	room, err := s.svc.UpdateRoomMetadata(r.Context(), id, r.PathValue("id"), chat.UpdateRoomParams{
		Subject:     req.Subject,
		GroupName:   req.GroupName,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toRoom(room))
}

func (s *OpsChatApp) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	room, err := s.svc.UpdateStatus(r.Context(), id, r.PathValue("id"), req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toRoom(room))
}

func (s *OpsChatApp) assignRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req AssignRoomRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	room, err := s.svc.AssignRoom(r.Context(), id, r.PathValue("id"), req.AssigneeId)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toRoom(room))
}

func (s *OpsChatApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	if err := s.svc.SoftDelete(r.Context(), id, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.RoomsDeleted)
	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *OpsChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	attachments := make([]database.NewAttachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, database.NewAttachment{
			FileUrl:     a.FileUrl,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}

	roomId := r.PathValue("id")
	msg, err := s.svc.SendMessage(r.Context(), id, chat.SendMessageParams{
		RoomId:      roomId,
		Body:        req.Body,
		Type:        types.MessageTypeText,
		Attachments: attachments,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.MessagesSent)
	s.writeJson(w, http.StatusCreated, toMessage(msg, roomId))
}

func (s *OpsChatApp) markRoomRead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	n, err := s.svc.MarkRead(r.Context(), id, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.add(stats.MessagesMarkedRead, n)
	s.writeJson(w, http.StatusOK, AffectedResponse{Affected: n})
}

func (s *OpsChatApp) listParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	participants, err := s.svc.ListParticipants(r.Context(), id, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toParticipants(participants))
}

func (s *OpsChatApp) addParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req AddParticipantRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	p, err := s.svc.AddParticipant(r.Context(), id, r.PathValue("id"), req.OperatorId, req.CanSendMessages)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.ParticipantsAdded)
	s.writeJson(w, http.StatusCreated, toParticipant(p))
}

func (s *OpsChatApp) removeParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	operatorId, err := strconv.Atoi(r.PathValue("operatorId"))
	if err != nil || operatorId <= 0 {
		s.writeError(w, NewValidationError(map[string]string{"operator_id": "must be a positive integer"}))
		return
	}

	if err := s.svc.RemoveParticipant(r.Context(), id, r.PathValue("id"), operatorId); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.ParticipantsRemoved)
	s.writeJson(w, http.StatusOK, OkResponse{Ok: true})
}

func (s *OpsChatApp) leaveRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	if err := s.svc.LeaveRoom(r.Context(), id, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.incr(stats.ParticipantsRemoved)
	s.writeJson(w, http.StatusOK, OkResponse{Ok: true})
}

func (s *OpsChatApp) unreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	count, err := s.svc.UnreadCount(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

func (s *OpsChatApp) notifications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	feed, err := s.svc.Notifications(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, toNotifications(feed))
}

func (s *OpsChatApp) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req MarkNotificationsReadRequest
	if errResp := s.decodeRequest(r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	n, err := s.svc.MarkNotificationsRead(r.Context(), id, req.MessageIds)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.add(stats.MessagesMarkedRead, n)
	s.writeJson(w, http.StatusOK, AffectedResponse{Affected: n})
}

func (s *OpsChatApp) dismissNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	n, err := s.svc.DismissNotifications(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.add(stats.MessagesMarkedRead, n)
	s.writeJson(w, http.StatusOK, AffectedResponse{Affected: n})
}
