package journal

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"pizzaroyal/game"
)

// Entry 一次广播的事件批次。流水只写不读，不用于恢复世界
type Entry struct {
	ID     ulid.ULID    `json:"id"`
	Room   string       `json:"room"`
	Tick   uint64       `json:"tick"`
	Time   time.Time    `json:"time"`
	Events []game.Event `json:"events"`
}

func NewEntry(room string, tick uint64, events []game.Event) Entry {
	return Entry{
		ID:     ulid.Make(),
		Room:   room,
		Tick:   tick,
		Time:   time.Now().UTC(),
		Events: events,
	}
}

// Recorder 流水落地方式
type Recorder interface {
	Record(e Entry) error
	Close() error
}

type nop struct{}

func (nop) Record(Entry) error { return nil }
func (nop) Close() error       { return nil }

// Nop 不记录任何内容
func Nop() Recorder { return nop{} }

type multi []Recorder

// Multi 同时写入多个 Recorder（nil 被忽略）
func Multi(recs ...Recorder) Recorder {
	var out multi
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return Nop()
	}
	return out
}

func (m multi) Record(e Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
