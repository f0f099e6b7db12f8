package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteIndex 事件索引：后台单协程写入，落后时丢弃，文件流水才是完整记录
type SQLiteIndex struct {
	db  *sql.DB
	log *zap.SugaredLogger

	ch   chan Entry
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Int64
}

func OpenSQLite(path string, log *zap.SugaredLogger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{db: db, log: log, ch: make(chan Entry, 4096)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			tick INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			events INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			batch_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			room TEXT NOT NULL,
			tick INTEGER NOT NULL,
			type TEXT NOT NULL,
			subject INTEGER,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (batch_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_room_tick ON events(room, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record 非阻塞入队
func (s *SQLiteIndex) Record(e Entry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Dropped 因队列满被丢弃的批次数
func (s *SQLiteIndex) Dropped() int64 { return s.dropped.Load() }

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	for e := range s.ch {
		if err := s.write(ctx, e); err != nil {
			s.log.Warnf("journal index write %s: %v", e.ID, err)
		}
	}
}

func (s *SQLiteIndex) write(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO batches(id,room,tick,recorded_at,events) VALUES(?,?,?,?,?)`,
		e.ID.String(), e.Room, int64(e.Tick), e.Time.Format(time.RFC3339Nano), len(e.Events),
	); err != nil {
		return err
	}
	for i, ev := range e.Events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		var subject any
		if id, ok := ev.Subject(); ok {
			subject = int64(id)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO events(batch_id,seq,room,tick,type,subject,raw_json) VALUES(?,?,?,?,?,?,?)`,
			e.ID.String(), i, e.Room, int64(e.Tick), string(ev.Type), subject, string(raw),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountByType 按事件类型统计（运维查询用）
func (s *SQLiteIndex) CountByType(ctx context.Context, room string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM events WHERE room = ? GROUP BY type`, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}
