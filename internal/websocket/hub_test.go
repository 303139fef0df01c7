package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// menuGrants lists the menu URLs each user may view
type menuGrants map[uint][]string

func (g menuGrants) CheckAccessByURL(_ context.Context, userID uint, url string, kind model.PermissionKind) bool {
	if kind != model.PermView {
		return false
	}
	for _, u := range g[userID] {
		if u == url {
			return true
		}
	}
	return false
}

func newServer(t *testing.T, access AccessChecker) (*Hub, *token.Issuer, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zap.NewNop(), nil, access)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	issuer := token.NewIssuer("ws-secret", time.Hour)
	r := gin.New()
	r.GET("/ws", hub.ServeWs(issuer))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, issuer, srv
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	_, _, srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishReachesClient(t *testing.T) {
	hub, issuer, srv := newServer(t, menuGrants{9: {model.MenuURLComplaints}})
	conn := dial(t, issuer, srv, 9)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(EventComplaintCreated, map[string]uint{"id": 5})

	ev := readEvent(t, conn)
	assert.Equal(t, EventComplaintCreated, ev.Type)
	assert.Equal(t, map[string]interface{}{"id": float64(5)}, ev.Data)
}

func TestPublishSkipsClientsWithoutMenuAccess(t *testing.T) {
	hub, issuer, srv := newServer(t, menuGrants{8: {model.MenuURLComplaints}, 9: {model.MenuURLPayments}})
	allowed := dial(t, issuer, srv, 8)
	denied := dial(t, issuer, srv, 9)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(EventComplaintCreated, map[string]uint{"id": 5})
	assert.Equal(t, EventComplaintCreated, readEvent(t, allowed).Type)

	// ungated events still reach everyone, so the first frame the denied client sees is this one
	hub.Publish(EventPermissionsChanged, map[string]uint{"role_id": 2})
	assert.Equal(t, EventPermissionsChanged, readEvent(t, denied).Type)
	assert.Equal(t, EventPermissionsChanged, readEvent(t, allowed).Type)
}

func TestPublishWithoutCheckerDropsScopedEvents(t *testing.T) {
	hub, issuer, srv := newServer(t, nil)
	conn := dial(t, issuer, srv, 3)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(EventPaymentReminders, map[string]int{"sent": 4})
	hub.Publish(EventPermissionsChanged, map[string]uint{"role_id": 1})

	assert.Equal(t, EventPermissionsChanged, readEvent(t, conn).Type)
}

func dial(t *testing.T, issuer *token.Issuer, srv *httptest.Server, userID uint) *websocket.Conn {
	t.Helper()
	signed, _, err := issuer.Issue(userID, 1, "ops@example.com")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + signed
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readEvent reads one frame; batched frames are newline separated so only the first is decoded
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(msg), "\n", 2)[0]), &ev))
	return ev
}
