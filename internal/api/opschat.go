package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/config"
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/stats"
	"github.com/npezzotti/go-opschat/internal/types"
)

// ChatService is the set of chat operations exposed over HTTP.
type ChatService interface {
	Ping(ctx context.Context) error

	ListRooms(ctx context.Context, id chat.Identity) ([]database.RoomSummary, error)
	GetRoomDetail(ctx context.Context, id chat.Identity, roomId string) (chat.RoomDetail, error)
	CreateRoom(ctx context.Context, creator chat.Identity, params chat.CreateRoomParams) (database.Room, error)
	UpdateRoomMetadata(ctx context.Context, actor chat.Identity, roomId string, params chat.UpdateRoomParams) (database.Room, error)
	UpdateStatus(ctx context.Context, actor chat.Identity, roomId string, status types.RoomStatus) (database.Room, error)
	AssignRoom(ctx context.Context, actor chat.Identity, roomId string, assignee *int) (database.Room, error)
	SoftDelete(ctx context.Context, actor chat.Identity, roomId string) error

	SendMessage(ctx context.Context, sender chat.Identity, params chat.SendMessageParams) (database.Message, error)
	MarkRead(ctx context.Context, id chat.Identity, roomId string) (int64, error)
	UnreadCount(ctx context.Context, id chat.Identity) (int, error)
	Notifications(ctx context.Context, id chat.Identity) ([]database.Notification, error)
	MarkNotificationsRead(ctx context.Context, id chat.Identity, messageIds []int) (int64, error)
	DismissNotifications(ctx context.Context, id chat.Identity) (int64, error)

	ListParticipants(ctx context.Context, viewer chat.Identity, roomId string) ([]database.Participant, error)
	AddParticipant(ctx context.Context, actor chat.Identity, roomId string, operatorId int, canSend *bool) (database.Participant, error)
	RemoveParticipant(ctx context.Context, actor chat.Identity, roomId string, operatorId int) error
	LeaveRoom(ctx context.Context, id chat.Identity, roomId string) error
}

type OpsChatApp struct {
	log        *log.Logger
	svc        ChatService
	srv        *http.Server
	stats      stats.StatsProvider
	validate   *validator.Validate
	signingKey []byte
}

func NewOpsChatApp(mux *http.ServeMux, logger *log.Logger, svc ChatService, su stats.StatsProvider, cfg *config.Config) *OpsChatApp {
	s := &OpsChatApp{
		log:        logger,
		svc:        svc,
		stats:      su,
		validate:   newValidator(),
		signingKey: cfg.SigningKey,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)

	mux.Handle("GET /api/rooms", s.authMiddleware(s.listRooms))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("GET /api/rooms/{id}", s.authMiddleware(s.getRoom))
	mux.Handle("PATCH /api/rooms/{id}", s.authMiddleware(s.updateRoom))
	mux.Handle("DELETE /api/rooms/{id}", s.authMiddleware(s.deleteRoom))
	mux.Handle("PUT /api/rooms/{id}/status", s.authMiddleware(s.updateStatus))
	mux.Handle("PUT /api/rooms/{id}/assignee", s.authMiddleware(s.assignRoom))
	mux.Handle("POST /api/rooms/{id}/messages", s.authMiddleware(s.sendMessage))
	mux.Handle("POST /api/rooms/{id}/read", s.authMiddleware(s.markRoomRead))
	mux.Handle("GET /api/rooms/{id}/participants", s.authMiddleware(s.listParticipants))
	mux.Handle("POST /api/rooms/{id}/participants", s.authMiddleware(s.addParticipant))
	mux.Handle("DELETE /api/rooms/{id}/participants/{operatorId}", s.authMiddleware(s.removeParticipant))
	mux.Handle("POST /api/rooms/{id}/leave", s.authMiddleware(s.leaveRoom))

	mux.Handle("GET /api/unread", s.authMiddleware(s.unreadCount))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.notifications))
	mux.Handle("POST /api/notifications/read", s.authMiddleware(s.markNotificationsRead))
	mux.Handle("POST /api/notifications/dismiss", s.authMiddleware(s.dismissNotifications))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = handlers.CombinedLoggingHandler(logger.Writer(), h)
	h = s.errorHandler(h)

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *OpsChatApp) Handler() http.Handler {
	return s.srv.Handler
}

func (s *OpsChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *OpsChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *OpsChatApp) incr(name string) {
	if s.stats != nil {
		s.stats.Incr(name)
	}
}

func (s *OpsChatApp) add(name string, delta int64) {
	if s.stats != nil && delta != 0 {
		s.stats.Add(name, delta)
	}
}
