package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws      *websocket.Conn
	frame   int
	send    chan []byte
	session string

	mu     sync.Mutex
	closed bool
}

func NewClientConn(ws *websocket.Conn, codec protocol.Codec, buffer int) *ClientConn {
	frame := websocket.TextMessage
	if codec.Binary() {
		frame = websocket.BinaryMessage
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &ClientConn{
		ws:      ws,
		frame:   frame,
		send:    make(chan []byte, buffer),
		session: uuid.NewString(),
	}
}

// Send 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- b:
		return nil
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		return errSendQueueFull
	}
}

// Close 关闭发送队列，写协程发完剩余消息后关闭连接
func (c *ClientConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(c.frame, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，解码后注入房间
func (c *ClientConn) readPump(room *Room, id game.ID, codec protocol.Codec) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在 Tick 线程中移除该玩家（隐式 player_left）
	defer room.RequestLeave(id)
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugf("room=%s player %d read: %v", room.ID, id, err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		msg, err := protocol.DecodeClient(codec, payload)
		if err != nil {
			room.metrics.IncDecodeErrors()
			Log.Debugf("room=%s player %d: %v", room.ID, id, err)
			continue
		}
		room.OnInput(Input{PlayerID: id, Msg: msg})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&name=alice&codec=json|msgpack
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("room")
	if roomID == "" {
		roomID = m.opts.DefaultRoom
	}
	codecName := q.Get("codec")
	if codecName == "" {
		codecName = m.opts.Codec
	}
	codec, err := protocol.CodecByName(codecName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	room := m.GetOrCreateRoom(roomID)
	client := NewClientConn(ws, codec, m.opts.SendBuffer)
	go client.writePump()

	id, ok := room.RequestJoin(Join{Name: q.Get("name"), Session: client.session, Codec: codec, Conn: client})
	if !ok {
		_ = client.Close()
		return
	}
	go client.readPump(room, id, codec)
}
