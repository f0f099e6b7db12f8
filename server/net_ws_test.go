package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"pizzaroyal/client"
	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

func testServer(t *testing.T) (*RoomManager, *httptest.Server) {
	t.Helper()
	m := NewRoomManager(Options{DefaultRoom: "room-1", Codec: "json", SendBuffer: 64, Tuning: game.DefaultTuning()})
	mux := http.NewServeMux()
	m.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		m.Shutdown()
	})
	return m, srv
}

func dial(t *testing.T, srv *httptest.Server, name string, codec protocol.Codec) *client.Session {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=" + name
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w, tr, err := client.Dial(ctx, url, codec, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	s, err := client.NewRemoteSession(w, tr, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("session %s: %v", name, err)
	}
	return s
}

// eventually 每帧推进所有会话，直到条件成立或超时
func eventually(t *testing.T, what string, cond func() bool, sessions ...*client.Session) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, s := range sessions {
			if err := s.Update(0.02, game.V(1, 0)); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestClientMovesOnServer(t *testing.T) {
	for _, codec := range []protocol.Codec{protocol.JSON, protocol.MsgPack} {
		t.Run(codec.Name(), func(t *testing.T) {
			m, srv := testServer(t)
			s := dial(t, srv, "alice", codec)
			defer s.Close()
			id := s.Player().ID
			start := s.Player().Position

			room, ok := m.Room("room-1")
			if !ok {
				t.Fatalf("default room not created")
			}
			eventually(t, "server to see the player move", func() bool {
				for _, ms := range room.State().Members {
					if ms.ID == id && ms.Position.X > start.X {
						return ms.Codec == codec.Name()
					}
				}
				return false
			}, s)
		})
	}
}

func TestClientsSeeEachOther(t *testing.T) {
	_, srv := testServer(t)
	alice := dial(t, srv, "alice", protocol.JSON)
	defer alice.Close()
	bob := dial(t, srv, "bob", protocol.MsgPack)
	bobID := bob.Player().ID

	eventually(t, "alice to see bob", func() bool {
		_, ok := alice.ShadowPosition(bobID)
		return ok
	}, alice, bob)

	if err := bob.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	eventually(t, "alice to see bob leave", func() bool {
		_, ok := alice.Model().Players[bobID]
		return !ok
	}, alice)
}

func TestDroppedSocketIsAnImplicitLeave(t *testing.T) {
	m, srv := testServer(t)
	alice := dial(t, srv, "alice", protocol.JSON)
	defer alice.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=bob"
	w, tr, err := client.Dial(context.Background(), url, protocol.MsgPack, nil)
	if err != nil {
		t.Fatalf("dial bob: %v", err)
	}
	bobID := w.PlayerID
	eventually(t, "alice to see bob", func() bool {
		_, ok := alice.Model().Players[bobID]
		return ok
	}, alice)

	// 直接断开连接，不发送 player_left
	if err := tr.Close(); err != nil {
		t.Fatalf("close transport: %v", err)
	}
	eventually(t, "alice to see bob leave", func() bool {
		_, ok := alice.Model().Players[bobID]
		return !ok
	}, alice)

	room, _ := m.Room("room-1")
	for _, ms := range room.State().Members {
		if ms.ID == bobID {
			t.Fatalf("bob still listed as a member")
		}
	}
}

func TestUnknownCodecRejected(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/ws?codec=xml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAdminEndpoints(t *testing.T) {
	m := NewRoomManager(Options{Tuning: game.DefaultTuning()})
	defer m.Shutdown()
	m.GetOrCreateRoom("room-1")

	rec := httptest.NewRecorder()
	m.HandleAdminState(rec, httptest.NewRequest(http.MethodGet, "/admin/state?room=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing room status = %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]any{"fire_timer": 7.5})
	rec = httptest.NewRecorder()
	m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodPost, "/admin/config", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("post config status = %d: %s", rec.Code, rec.Body)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = httptest.NewRecorder()
		m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodGet, "/admin/config?room=room-1", nil))
		var got RoomConfig
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode config: %v", err)
		}
		if got.FireTimer != nil && *got.FireTimer == 7.5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("fire timer never updated")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	m.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var metrics struct {
		Room    string         `json:"room"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.Room != "room-1" || metrics.Metrics["tick_count"] == nil {
		t.Fatalf("metrics = %+v", metrics)
	}

	rec = httptest.NewRecorder()
	m.HandleRooms(rec, httptest.NewRequest(http.MethodGet, "/admin/rooms", nil))
	if !strings.Contains(rec.Body.String(), `"room-1"`) {
		t.Fatalf("rooms = %s", rec.Body)
	}
}
