package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"job-portal/internal/auth"
	"job-portal/internal/auth/testutil"
	"job-portal/internal/portal"
	"job-portal/internal/portal/adapter/persistence/mongodb"
	"job-portal/internal/portal/config"
	"job-portal/internal/shared/logger"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var quietLog = logger.NewLoggerWithConfig("error", "text")

// server is a portal listening on a loopback port.
type server struct {
	module  *portal.PortalModule
	app     *fiber.App
	baseURL string
	wsURL   string
}

func startServer(t *testing.T, cfg *config.Config, redisClient *redis.Client) *server {
	t.Helper()

	authM, err := auth.NewAuthModule(testutil.NewConfigFixture().Development(), nil, quietLog)
	require.NoError(t, err)
	module, err := portal.NewPortalModuleWithCollections(cfg,
		mongodb.NewMemoryCollection(), mongodb.NewMemoryCollection(),
		redisClient, nil, authM.Middleware, quietLog)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	authM.RegisterRoutes(app)
	module.RegisterRoutes(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(5 * time.Second) })

	addr := ln.Addr().String()
	return &server{
		module:  module,
		app:     app,
		baseURL: "http://" + addr,
		wsURL:   "ws://" + addr,
	}
}

func (s *server) postJSON(t *testing.T, path string, body interface{}, cookie *stdhttp.Cookie) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := stdhttp.NewRequest(stdhttp.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := stdhttp.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *server) login(t *testing.T, email string) *stdhttp.Cookie {
	t.Helper()
	resp, err := stdhttp.Post(s.baseURL+"/jwt", "application/json",
		bytes.NewBufferString(`{"email":"`+email+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (s *server) createJob(t *testing.T, hrEmail string) string {
	t.Helper()
	out := s.postJSON(t, "/jobs", map[string]interface{}{
		"hr_email": hrEmail,
		"hr_name":  "Dana",
		"title":    "Platform Engineer",
		"company":  "Acme",
	}, nil)
	return out["insertedId"].(string)
}

func (s *server) apply(t *testing.T, jobID, email string) string {
	t.Helper()
	out := s.postJSON(t, "/job-applications", map[string]interface{}{
		"job_id":          jobID,
		"applicant_email": email,
	}, nil)
	return out["insertedId"].(string)
}

// feedMessage mirrors the websocket envelope.
type feedMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func (s *server) dialFeed(t *testing.T, jobID, query string, cookie *stdhttp.Cookie) (*websocket.Conn, *stdhttp.Response, error) {
	t.Helper()
	header := stdhttp.Header{}
	if cookie != nil {
		header.Set("Cookie", cookie.String())
	}
	target := s.wsURL + "/ws/jobs/" + jobID + "/applications"
	if query != "" {
		target += "?" + query
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func readMessage(t *testing.T, conn *websocket.Conn) feedMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg feedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}
