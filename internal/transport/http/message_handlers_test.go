package http

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/core"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func createMessage(t *testing.T, s *testServer, name, text string) MessageResponse {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/messages", CreateMessageRequest{Name: name, Message: text}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create message: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var msg MessageResponse
	decode(t, resp, &msg)
	return msg
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/health", nil, nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.Code, resp.Body.String())
	}
}

func TestCreateAndListMessages(t *testing.T) {
	s := newTestServer(t, nil)

	first := createMessage(t, s, "Alice", "Happy birthday, friend!")
	createMessage(t, s, "Bob", "Many happy returns of the day")

	if first.ID == "" {
		t.Fatalf("expected created message to carry an id")
	}
	if first.Relationship != nil {
		t.Fatalf("expected no relationship, got %q", *first.Relationship)
	}
	if first.Likes != 0 || len(first.Comments) != 0 {
		t.Fatalf("unexpected initial counters: %+v", first.Message)
	}

	resp := s.do(t, http.MethodGet, "/api/messages", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.Code)
	}
	var oldest []MessageResponse
	decode(t, resp, &oldest)
	if len(oldest) != 2 || oldest[0].Name != "Alice" || oldest[1].Name != "Bob" {
		t.Fatalf("unexpected oldest-first list: %+v", oldest)
	}
	if oldest[0].Position == nil || *oldest[0].Position != 0 {
		t.Fatalf("expected first message at position 0")
	}

	resp = s.do(t, http.MethodGet, "/api/messages?order=newest", nil, nil)
	var newest []MessageResponse
	decode(t, resp, &newest)
	if len(newest) != 2 || newest[0].Name != "Bob" {
		t.Fatalf("unexpected newest-first list: %+v", newest)
	}
	if newest[0].Position == nil || *newest[0].Position != 1 {
		t.Fatalf("expected newest message to keep storage position 1")
	}

	resp = s.do(t, http.MethodGet, "/api/messages?order=sideways", nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown order, got %d", resp.Code)
	}
}

func TestCreateMessageValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{name: "missing name", body: CreateMessageRequest{Message: "Happy birthday, friend!"}, field: "name"},
		{name: "short text", body: CreateMessageRequest{Name: "Alice", Message: "too short"}, field: "message"},
		{name: "bad photo", body: CreateMessageRequest{Name: "Alice", Message: "Happy birthday, friend!", Photo: []byte("GIF89a not allowed")}, field: "photo"},
		{name: "malformed body", body: "{", field: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/messages", tt.body, nil)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
			var body ErrorResponse
			decode(t, resp, &body)
			if body.Code != core.ErrCodeValidation || body.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %+v", tt.field, body)
			}
		})
	}

	resp := s.do(t, http.MethodGet, "/api/stats", nil, nil)
	var stats core.Stats
	decode(t, resp, &stats)
	if stats.Messages != 0 {
		t.Fatalf("rejected posts must not be stored, got %d messages", stats.Messages)
	}
}

func TestCreateMessageWithPhoto(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/messages", CreateMessageRequest{
		Name:         "Alice",
		Relationship: "Friend",
		Message:      "Happy birthday, friend!",
		Photo:        pngHeader,
	}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var msg MessageResponse
	decode(t, resp, &msg)
	if !bytes.Equal(msg.Photo, pngHeader) {
		t.Fatalf("photo bytes were not preserved")
	}
	if msg.Relationship == nil || *msg.Relationship != "Friend" {
		t.Fatalf("expected relationship Friend, got %v", msg.Relationship)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(base64.StdEncoding.EncodeToString(pngHeader))) {
		t.Fatalf("expected photo encoded as base64 in response")
	}
}

func TestCreateMessageRejectsOversizedBodyBeforeDecoding(t *testing.T) {
	s := newTestServer(t, nil)

	photo := append(append([]byte{}, pngHeader...), make([]byte, 100<<10)...)
	resp := s.do(t, http.MethodPost, "/api/messages", CreateMessageRequest{
		Name:    "Alice",
		Message: "Happy birthday, friend!",
		Photo:   photo,
	}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	var body ErrorResponse
	decode(t, resp, &body)
	if body.Field != "photo" {
		t.Fatalf("expected photo field error, got %+v", body)
	}
}

func TestCreateBodyLimit(t *testing.T) {
	if got := createBodyLimit(0); got != 0 {
		t.Fatalf("expected no cap without a photo limit, got %d", got)
	}
	maxPhoto := 3 << 20
	if got := createBodyLimit(maxPhoto); got < int64(maxPhoto)/3*4 {
		t.Fatalf("cap %d cannot hold a base64 photo of %d bytes", got, maxPhoto)
	}
}

func TestCreateMessageMultipart(t *testing.T) {
	s := newTestServer(t, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("name", "Carol")
	_ = w.WriteField("message", "Sending warm wishes!")
	part, err := w.CreateFormFile("photo", "cake.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(pngHeader); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var msg MessageResponse
	decode(t, resp, &msg)
	if msg.Name != "Carol" || !bytes.Equal(msg.Photo, pngHeader) {
		t.Fatalf("unexpected multipart message: %+v", msg.Message)
	}
}

func TestLikeAndCommentByIDAndPosition(t *testing.T) {
	s := newTestServer(t, nil)

	msg := createMessage(t, s, "Alice", "Happy birthday, friend!")

	resp := s.do(t, http.MethodPost, "/api/messages/"+msg.ID+"/like", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("like by id: expected 200, got %d", resp.Code)
	}
	resp = s.do(t, http.MethodPost, "/api/positions/0/like", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("like by position: expected 200, got %d", resp.Code)
	}
	var liked MessageResponse
	decode(t, resp, &liked)
	if liked.Likes != 2 {
		t.Fatalf("expected 2 likes, got %d", liked.Likes)
	}

	resp = s.do(t, http.MethodPost, "/api/messages/"+msg.ID+"/comments", AddCommentRequest{Name: "Bob", Text: "So true"}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("comment by id: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var comment CommentResponse
	decode(t, resp, &comment)
	if comment.Name != "Bob" || comment.Text != "So true" || comment.CreatedAt == "" {
		t.Fatalf("unexpected comment %+v", comment.Comment)
	}

	resp = s.do(t, http.MethodPost, "/api/positions/0/comments", AddCommentRequest{Name: "  ", Text: "Agreed"}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank commenter, got %d", resp.Code)
	}

	resp = s.do(t, http.MethodGet, "/api/stats", nil, nil)
	var stats core.Stats
	decode(t, resp, &stats)
	if stats.Messages != 1 || stats.Likes != 2 || stats.Comments != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestLikeMissingMessage(t *testing.T) {
	s := newTestServer(t, nil)
	createMessage(t, s, "Alice", "Happy birthday, friend!")

	tests := []struct {
		path string
		code int
	}{
		{path: "/api/messages/does-not-exist/like", code: http.StatusNotFound},
		{path: "/api/positions/5/like", code: http.StatusNotFound},
		{path: "/api/positions/-1/like", code: http.StatusNotFound},
		{path: "/api/positions/abc/like", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := s.do(t, http.MethodPost, tt.path, nil, nil)
		if resp.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, resp.Code)
		}
	}
}

func TestRecent(t *testing.T) {
	s := newTestServer(t, nil)
	createMessage(t, s, "Alice", "Happy birthday, friend!")
	createMessage(t, s, "Bob", "Wishing you a wonderful year ahead full of laughter")
	createMessage(t, s, "Carol", "Have the best day ever!!")
	createMessage(t, s, "Dave", "Cheers to another trip around the sun")

	resp := s.do(t, http.MethodGet, "/api/messages/recent", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("recent: expected 200, got %d", resp.Code)
	}
	var previews []core.Preview
	decode(t, resp, &previews)
	if len(previews) != core.DefaultRecentLimit || previews[0].Name != "Bob" || previews[2].Name != "Dave" {
		t.Fatalf("unexpected recent previews %+v", previews)
	}

	resp = s.do(t, http.MethodGet, "/api/messages/recent?limit=0", nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero limit, got %d", resp.Code)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	s := newTestServer(t, nil)
	msg := createMessage(t, s, "Alice", "Happy birthday, friend!")
	createMessage(t, s, "Bob", "Many happy returns of the day")

	resp := s.do(t, http.MethodDelete, "/api/messages/"+msg.ID, nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.Code)
	}
	resp = s.do(t, http.MethodDelete, "/api/messages", nil, map[string]string{AdminHeaderName: "forged"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with unknown session, got %d", resp.Code)
	}

	admin := s.login(t)
	resp = s.do(t, http.MethodDelete, "/api/messages/"+msg.ID, nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete by id: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = s.do(t, http.MethodDelete, "/api/messages/"+msg.ID, nil, admin)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.Code)
	}

	resp = s.do(t, http.MethodDelete, "/api/positions/0", nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete by position: expected 200, got %d", resp.Code)
	}

	createMessage(t, s, "Carol", "Have the best day ever!!")
	resp = s.do(t, http.MethodDelete, "/api/messages", nil, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("clear all: expected 200, got %d", resp.Code)
	}

	resp = s.do(t, http.MethodGet, "/api/messages", nil, nil)
	var list []MessageResponse
	decode(t, resp, &list)
	if len(list) != 0 {
		t.Fatalf("expected empty wall, got %d messages", len(list))
	}
}

func TestReadRoutesRequirePass(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Gate.RequirePass = true
	})

	resp := s.do(t, http.MethodGet, "/api/messages", nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without pass, got %d", resp.Code)
	}
	resp = s.do(t, http.MethodGet, "/api/stats", nil, map[string]string{"Authorization": "Token abc"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with malformed header, got %d", resp.Code)
	}

	// Posting stays open.
	createMessage(t, s, "Alice", "Happy birthday, friend!")

	resp = s.do(t, http.MethodPut, "/api/celebration", CelebrationRequest{Name: "Sam", Birthday: "1990-05-17"}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("setup: expected 200, got %d", resp.Code)
	}
	resp = s.do(t, http.MethodPost, "/api/verify", CelebrationRequest{Name: "sam", Birthday: "1990-05-17"}, nil)
	var verify VerifyResponse
	decode(t, resp, &verify)
	if !verify.Verified || verify.Pass == "" {
		t.Fatalf("expected a pass, got %+v", verify)
	}

	resp = s.do(t, http.MethodGet, "/api/messages", nil, map[string]string{"Authorization": "Bearer " + verify.Pass})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with pass, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStorageStatus(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/storage", nil, nil)
	var before map[string]any
	decode(t, resp, &before)
	if before["persisted"] != false || before["driver"] != config.DriverFile {
		t.Fatalf("unexpected storage status before first post: %v", before)
	}

	createMessage(t, s, "Alice", "Happy birthday, friend!")

	resp = s.do(t, http.MethodGet, "/api/storage", nil, nil)
	var after map[string]any
	decode(t, resp, &after)
	if after["persisted"] != true {
		t.Fatalf("expected persisted after first post: %v", after)
	}
}

func TestRelationships(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/relationships", nil, nil)
	var list []string
	decode(t, resp, &list)
	if len(list) != len(core.Relationships) {
		t.Fatalf("expected %d relationships, got %d", len(core.Relationships), len(list))
	}
}
