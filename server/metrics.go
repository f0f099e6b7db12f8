package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	EventsBroadcast   int64 // 广播出去的事件数
	InputsAccepted    int64 // 被接受的客户端消息数
	InputsRejected    int64 // 下标越界等被拒绝的消息数
	DecodeErrors      int64 // 无法解码的消息数
	RateLimited       int64 // 单帧处理不完、顺延到下一帧的次数
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	SendDropped       int64 // 因发送队列满被丢弃的下行消息数
	Joined            int64
	Left              int64
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncRejected()          { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *RoomMetrics) IncDecodeErrors()      { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *RoomMetrics) IncRateLimited()       { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncSendDropped()       { atomic.AddInt64(&m.SendDropped, 1) }
func (m *RoomMetrics) IncJoined()            { atomic.AddInt64(&m.Joined, 1) }
func (m *RoomMetrics) IncLeft()              { atomic.AddInt64(&m.Left, 1) }
func (m *RoomMetrics) AddEvents(n int)       { atomic.AddInt64(&m.EventsBroadcast, int64(n)) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"events_broadcast":    atomic.LoadInt64(&m.EventsBroadcast),
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"inputs_rejected":     atomic.LoadInt64(&m.InputsRejected),
		"decode_errors":       atomic.LoadInt64(&m.DecodeErrors),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"send_dropped":        atomic.LoadInt64(&m.SendDropped),
		"joined":              atomic.LoadInt64(&m.Joined),
		"left":                atomic.LoadInt64(&m.Left),
		"avg_tick_ms":         avgMs,
	}
}
