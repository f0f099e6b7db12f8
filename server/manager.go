package server

import (
	"sort"
	"sync"

	"pizzaroyal/game"
	"pizzaroyal/journal"
)

// Options 房间管理器的创建参数
type Options struct {
	DefaultRoom string
	Codec       string // 连接未指定编码时使用
	SendBuffer  int
	Tuning      game.Tuning
	Journal     journal.Recorder
}

func DefaultOptions() Options {
	return Options{
		DefaultRoom: "room-1",
		Codec:       "json",
		SendBuffer:  64,
		Tuning:      game.DefaultTuning(),
		Journal:     journal.Nop(),
	}
}

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	opts  Options
	mu    sync.RWMutex
	rooms map[string]*Room
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// NewRoomManager 创建独立的房间管理器（测试或多实例使用）
func NewRoomManager(opts Options) *RoomManager {
	if opts.Journal == nil {
		opts.Journal = journal.Nop()
	}
	if opts.DefaultRoom == "" {
		opts.DefaultRoom = "room-1"
	}
	return &RoomManager{opts: opts, rooms: make(map[string]*Room)}
}

// Configure 设置单例参数，需在第一次 GetRoomManager 之前调用
func Configure(opts Options) *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager(opts)
	})
	return defaultManager
}

// GetRoomManager 单例房间管理器
func GetRoomManager() *RoomManager {
	return Configure(DefaultOptions())
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.opts.Tuning, m.opts.Journal)
		m.rooms[id] = r
		r.StartTicker()
		Log.Infof("room=%s created", id)
	}
	return r
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 所有房间 id（升序）
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有房间
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
