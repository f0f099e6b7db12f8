package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pizzaroyal/protocol"
)

const (
	welcomeTimeout = 10 * time.Second
	writeTimeout   = 5 * time.Second
)

// WSTransport 基于 WebSocket 的传输：后台读协程解码后排队，Poll 非阻塞取出
type WSTransport struct {
	ws    *websocket.Conn
	codec protocol.Codec
	log   *zap.SugaredLogger

	incoming chan protocol.ServerMessage
	done     chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once

	errMu   sync.Mutex
	readErr error
}

// Dial 连接服务端并等待欢迎消息。rawURL 形如 ws://host/ws?room=room-1&name=alice
func Dial(ctx context.Context, rawURL string, codec protocol.Codec, log *zap.SugaredLogger) (*protocol.Welcome, *WSTransport, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	ws, resp, err := d.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	deadline := time.Now().Add(welcomeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = ws.SetReadDeadline(deadline)
	_, payload, err := ws.ReadMessage()
	if err != nil {
		_ = ws.Close()
		return nil, nil, fmt.Errorf("read welcome: %w", err)
	}
	msg, err := protocol.DecodeServer(codec, payload)
	if err != nil {
		_ = ws.Close()
		return nil, nil, err
	}
	if msg.Type != protocol.TypeWelcome || msg.Welcome == nil || msg.Welcome.Model == nil {
		_ = ws.Close()
		return nil, nil, fmt.Errorf("expected welcome, got %q", msg.Type)
	}
	_ = ws.SetReadDeadline(time.Time{})

	t := &WSTransport{
		ws:       ws,
		codec:    codec,
		log:      log,
		incoming: make(chan protocol.ServerMessage, 256),
		done:     make(chan struct{}),
	}
	go t.readPump()
	log.Infof("connected to %s as player %d (%s)", u.Host, msg.Welcome.PlayerID, codec.Name())
	return msg.Welcome, t, nil
}

// readPump 读到错误即退出，并关闭 incoming 通知 Poll
func (t *WSTransport) readPump() {
	defer close(t.incoming)
	for {
		_, payload, err := t.ws.ReadMessage()
		if err != nil {
			t.setErr(err)
			return
		}
		msg, err := protocol.DecodeServer(t.codec, payload)
		if err != nil {
			t.log.Warnf("drop undecodable message: %v", err)
			continue
		}
		select {
		case t.incoming <- msg:
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) Poll() ([]protocol.ServerMessage, error) {
	var out []protocol.ServerMessage
	for {
		select {
		case msg, ok := <-t.incoming:
			if !ok {
				return out, t.err()
			}
			out = append(out, msg)
		default:
			return out, nil
		}
	}
}

func (t *WSTransport) Send(msg protocol.ClientMessage) error {
	b, err := t.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	frame := websocket.TextMessage
	if t.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.ws.WriteMessage(frame, b)
}

func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.writeMu.Unlock()
		err = t.ws.Close()
	})
	return err
}

func (t *WSTransport) setErr(err error) {
	t.errMu.Lock()
	t.readErr = err
	t.errMu.Unlock()
}

func (t *WSTransport) err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	if t.readErr == nil {
		return ErrConnectionLost
	}
	return t.readErr
}
