package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

// MessageHandlers provides HTTP handlers for the message wall.
type MessageHandlers struct {
	messages *core.MessageService
	metrics  *metrics.Metrics
	cfg      *config.Config
	log      *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(messages *core.MessageService, m *metrics.Metrics, cfg *config.Config, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		messages: messages,
		metrics:  m,
		cfg:      cfg,
		log:      logger,
	}
}

// CreateMessageRequest represents the create message request body.
// Photo is base64 in JSON; multipart forms send it as a file part.
type CreateMessageRequest struct {
	Name         string `json:"name" form:"name"`
	Relationship string `json:"relationship" form:"relationship"`
	Message      string `json:"message" form:"message"`
	Photo        []byte `json:"photo" form:"-"`
}

// AddCommentRequest represents the add comment request body.
type AddCommentRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// List handles listing all messages.
// GET /api/messages?order=oldest|newest
func (h *MessageHandlers) List(c *gin.Context) {
	msgs := h.messages.List(c.Request.Context())
	position := func(i int) int { return i }

	switch c.DefaultQuery("order", "oldest") {
	case "oldest":
	case "newest":
		n := len(msgs)
		msgs = core.Newest(msgs)
		position = func(i int) int { return n - 1 - i }
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order must be oldest or newest", Code: core.ErrCodeValidation, Field: "order"})
		return
	}

	response := make([]MessageResponse, 0, len(msgs))
	for i, m := range msgs {
		pos := position(i)
		response = append(response, MessageResponse{Message: m, Position: &pos})
	}
	c.JSON(http.StatusOK, response)
}

// Recent handles the recent activity list.
// GET /api/messages/recent?limit=3
func (h *MessageHandlers) Recent(c *gin.Context) {
	limit := core.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer", Code: core.ErrCodeValidation, Field: "limit"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.messages.Recent(c.Request.Context(), limit))
}

// Stats handles message totals.
// GET /api/stats
func (h *MessageHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.messages.Stats(c.Request.Context()))
}

// Relationships lists relationship suggestions.
// GET /api/relationships
func (h *MessageHandlers) Relationships(c *gin.Context) {
	c.JSON(http.StatusOK, core.Relationships)
}

// Storage reports whether messages are being persisted.
// GET /api/storage
func (h *MessageHandlers) Storage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"driver":    h.cfg.Storage.Driver,
		"persisted": h.messages.Persisted(c.Request.Context()),
	})
}

// Create handles posting a new message.
// POST /api/messages
func (h *MessageHandlers) Create(c *gin.Context) {
	if limit := createBodyLimit(h.cfg.Limits.MaxPhotoBytes); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	req, err := h.bindCreate(c)
	if err != nil {
		h.log.Debug().Err(err).Msg("invalid create message request")
		writeError(c, h.log, err)
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), core.NewMessage{
		Name:         req.Name,
		Relationship: req.Relationship,
		Text:         req.Message,
		Photo:        req.Photo,
	})
	if msg == nil {
		writeError(c, h.log, err)
		return
	}

	h.metrics.Messages.Inc()
	c.JSON(http.StatusCreated, MessageResponse{Message: *msg, Warning: h.warning(err)})
}

// Like handles liking a message by ID or position.
// POST /api/messages/:id/like, POST /api/positions/:index/like
func (h *MessageHandlers) Like(c *gin.Context) {
	loc, ok := h.locator(c)
	if !ok {
		return
	}

	msg, err := h.messages.Like(c.Request.Context(), loc)
	if msg == nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.Likes.Inc()
	c.JSON(http.StatusOK, MessageResponse{Message: *msg, Warning: h.warning(err)})
}

// AddComment handles commenting on a message by ID or position.
// POST /api/messages/:id/comments, POST /api/positions/:index/comments
func (h *MessageHandlers) AddComment(c *gin.Context) {
	loc, ok := h.locator(c)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid add comment request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
		return
	}

	comment, err := h.messages.AddComment(c.Request.Context(), loc, req.Name, req.Text)
	if comment == nil {
		writeError(c, h.log, err)
		return
	}
	h.metrics.Comments.Inc()
	c.JSON(http.StatusCreated, CommentResponse{Comment: *comment, Warning: h.warning(err)})
}

// Delete handles removing one message. Admin only.
// DELETE /api/messages/:id, DELETE /api/positions/:index
func (h *MessageHandlers) Delete(c *gin.Context) {
	loc, ok := h.locator(c)
	if !ok {
		return
	}

	err := h.messages.Delete(c.Request.Context(), loc)
	if err != nil && warningText(err) == "" {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Str("locator", loc.String()).Msg("message deleted by admin")
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted", Warning: h.warning(err)})
}

// ClearAll handles removing every message. Admin only.
// DELETE /api/messages
func (h *MessageHandlers) ClearAll(c *gin.Context) {
	err := h.messages.ClearAll(c.Request.Context())
	if err != nil && warningText(err) == "" {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Msg("messages cleared by admin")
	c.JSON(http.StatusOK, StatusResponse{Status: "cleared", Warning: h.warning(err)})
}

// warning returns the warning text for err and counts it.
func (h *MessageHandlers) warning(err error) string {
	w := warningText(err)
	if w != "" {
		h.metrics.StorageWarnings.Inc()
	}
	return w
}

// locator resolves the target message from the route, writing a 400 on bad input.
func (h *MessageHandlers) locator(c *gin.Context) (core.Locator, bool) {
	if raw := c.Param("index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "position must be an integer", Code: core.ErrCodeValidation, Field: "index"})
			return nil, false
		}
		return core.AtPosition(index), true
	}
	return core.ByID(c.Param("id")), true
}

// createBodySlack covers the text fields and encoding overhead around a photo.
const createBodySlack = 64 << 10

// createBodyLimit caps a create request at a base64-encoded photo of maxPhoto
// bytes plus slack. Zero means no cap.
func createBodyLimit(maxPhoto int) int64 {
	if maxPhoto <= 0 {
		return 0
	}
	return int64(maxPhoto)/3*4 + 4 + createBodySlack
}

func (h *MessageHandlers) bindCreate(c *gin.Context) (CreateMessageRequest, error) {
	var req CreateMessageRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, bodyError(err, h.cfg.Limits.MaxPhotoBytes, "body", "invalid request body")
		}
		return req, nil
	}

	if err := c.ShouldBind(&req); err != nil {
		return req, bodyError(err, h.cfg.Limits.MaxPhotoBytes, "body", "invalid form body")
	}

	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, bodyError(err, h.cfg.Limits.MaxPhotoBytes, "photo", "invalid photo upload")
	}

	f, err := fh.Open()
	if err != nil {
		return req, fmt.Errorf("open photo upload: %w", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if max := h.cfg.Limits.MaxPhotoBytes; max > 0 {
		// One byte over the cap is enough for the service to reject it.
		r = io.LimitReader(f, int64(max)+1)
	}
	req.Photo, err = io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("read photo upload: %w", err)
	}
	return req, nil
}

// bodyError reports an oversized body against the photo field, and any other
// bind failure against field.
func bodyError(err error, maxPhoto int, field, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &core.ValidationError{Field: "photo", Message: fmt.Sprintf("photo exceeds %d bytes", maxPhoto)}
	}
	return &core.ValidationError{Field: field, Message: msg}
}
