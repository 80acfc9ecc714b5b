package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/metrics"
	"github.com/vovakirdan/birthdaywall/internal/store"
	"github.com/vovakirdan/birthdaywall/internal/store/file"
)

type testServer struct {
	router   *gin.Engine
	services Services
	cfg      config.Config
}

// newTestServer wires real services over file documents in a temp dir.
func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.Storage.MessagesPath = filepath.Join(dir, "birthday_messages.json")
	cfg.Storage.CelebrationPath = filepath.Join(dir, "birthday_config.json")
	cfg.Gate.Secret = "test-secret"
	cfg.Limits.MaxPhotoBytes = 1 << 10
	cfg.Limits.PostsPerMinute = 0
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.Nop()

	messages := core.NewMessageService(
		file.Document(cfg.Storage.MessagesPath, cfg.Storage.BackupSuffix, func(v []store.Message) int { return len(v) }, &disabledLogger),
		core.MessageOptions{MaxPhotoBytes: cfg.Limits.MaxPhotoBytes},
		&disabledLogger,
	)
	celebration := core.NewCelebrationService(
		file.Document[store.Celebration](cfg.Storage.CelebrationPath, cfg.Storage.BackupSuffix, nil, &disabledLogger),
		&disabledLogger,
	)
	svc := Services{
		Messages:    messages,
		Celebration: celebration,
		Gate:        core.NewGate(celebration),
		Sessions:    auth.NewSessions(auth.NewAuthenticator(cfg.Admin.Password, cfg.Admin.PasswordHash), cfg.Admin.SessionTTL),
		Passes:      auth.NewPassIssuer(auth.PassConfig{Secret: []byte(cfg.Gate.Secret), Issuer: "test", TTL: time.Hour}),
		Metrics:     metrics.New(),
	}

	return &testServer{
		router:   NewRouter(svc, &cfg, &disabledLogger),
		services: svc,
		cfg:      cfg,
	}
}

// do sends a JSON request and returns the recorder.
func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

// login returns headers carrying an authorized admin session.
func (s *testServer) login(t *testing.T) map[string]string {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Password: config.DefaultAdminPassword}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin login failed: %d %s", resp.Code, resp.Body.String())
	}
	var session SessionResponse
	decode(t, resp, &session)
	return map[string]string{AdminHeaderName: session.Session}
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", resp.Body.String(), err)
	}
}
