package server

import (
	"encoding/json"
	"net/http"
)

// roomFor 按 ?room= 查找房间；未指定时使用默认房间
func (m *RoomManager) roomFor(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = m.opts.DefaultRoom
	}
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
	}
	return room, ok
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间规则的读取与热更新
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段，下一次 Tick 生效
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, ok := m.roomFor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		st := room.State()
		writeJSON(w, RoomConfig{
			MaxInputsPerTick: &st.MaxInputsPerTick,
			FireTimer:        &st.Tuning.FireTimer,
			BossWalkSpeed:    &st.Tuning.BossWalkSpeed,
			BossRunSpeed:     &st.Tuning.BossRunSpeed,
		})
	case http.MethodPost:
		var body RoomConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room.UpdateConfig(body)
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAdminState 输出房间摘要：成员、Boss、未完成订单
// GET /admin/state?room=room-1
func (m *RoomManager) HandleAdminState(w http.ResponseWriter, r *http.Request) {
	room, ok := m.roomFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, room.State())
}

// HandleRooms 列出所有房间
// GET /admin/rooms
func (m *RoomManager) HandleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"rooms": m.RoomIDs()})
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := m.roomFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"tick":    room.tickSeq.Load(),
		"metrics": room.metrics.Snapshot(),
	})
}

// Routes 注册 WebSocket、管理与监控接口
func (m *RoomManager) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/admin/state", m.HandleAdminState)
	mux.HandleFunc("/admin/rooms", m.HandleRooms)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}
