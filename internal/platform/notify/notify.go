// Package notify delivers user-facing outcome messages. Every user-initiated
// operation ends in exactly one notification per outcome: success, warning,
// error, or info. Messages are kept in a bounded in-memory feed that the UI
// polls, and mirrored to the structured log.
package notify

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a single user-facing outcome message.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives outcome messages. Implementations must be fire-and-forget: a
// notification failure never fails the operation that produced it.
type Sink interface {
	Success(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
}

// Feed is the in-memory Sink backing the UI toast surface. It keeps the most
// recent maxSize notifications, newest first.
type Feed struct {
	mu      sync.Mutex
	items   []Notification
	maxSize int
	logger  zerolog.Logger
}

func NewFeed(maxSize int, logger zerolog.Logger) *Feed {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &Feed{maxSize: maxSize, logger: logger}
}

func (f *Feed) push(level Level, msg string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}

	f.mu.Lock()
	f.items = append([]Notification{n}, f.items...)
	if len(f.items) > f.maxSize {
		f.items = f.items[:f.maxSize]
	}
	f.mu.Unlock()

	evt := f.logger.Info()
	if level == LevelError {
		evt = f.logger.Error()
	} else if level == LevelWarning {
		evt = f.logger.Warn()
	}
	evt.Str("level", string(level)).Msg(msg)
}

func (f *Feed) Success(_ context.Context, msg string) { f.push(LevelSuccess, msg) }
func (f *Feed) Warning(_ context.Context, msg string) { f.push(LevelWarning, msg) }
func (f *Feed) Error(_ context.Context, msg string)   { f.push(LevelError, msg) }
func (f *Feed) Info(_ context.Context, msg string)    { f.push(LevelInfo, msg) }

// Recent returns up to limit notifications, newest first.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}
	out := make([]Notification, limit)
	copy(out, f.items[:limit])
	return out
}

// Handler serves the notification feed to the UI.
type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notifications", h.List)
}

func (h *Handler) List(c echo.Context) error {
	limit := 50
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	return c.JSON(http.StatusOK, h.feed.Recent(limit))
}
