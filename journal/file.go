package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const hourLayout = "2006-01-02-15"

// FileWriter 按小时切分的流水文件 <prefix>-<UTC 小时>.jsonl.zst。
// 每条记录压缩成一个独立的 zstd 帧直接追加到文件，写入返回后即可被读取，
// 进程异常退出最多丢失正在写的那一条
type FileWriter struct {
	dir    string
	prefix string
	now    func() time.Time

	mu    sync.Mutex
	enc   *zstd.Encoder // 只用 EncodeAll，不持有输出流
	hour  string
	f     *os.File
	frame []byte
}

func NewFileWriter(dir, prefix string) *FileWriter {
	return &FileWriter{dir: dir, prefix: prefix, now: time.Now}
}

// Record 追加一条批次记录（一行 JSON）
func (w *FileWriter) Record(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: encode entry: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureFile(w.now().UTC().Format(hourLayout)); err != nil {
		return err
	}
	w.frame = w.enc.EncodeAll(line, w.frame[:0])
	if _, err := w.f.Write(w.frame); err != nil {
		return fmt.Errorf("journal: write %s: %w", w.f.Name(), err)
	}
	return nil
}

// Close 关闭当前文件；之后的 Record 会重新打开
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.closeFile()
	if w.enc != nil {
		_ = w.enc.Close()
		w.enc = nil
	}
	return err
}

// PathForHour 某小时对应的文件路径
func (w *FileWriter) PathForHour(t time.Time) string {
	return w.pathFor(t.UTC().Format(hourLayout))
}

func (w *FileWriter) pathFor(hour string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ensureFile 小时变化时切换文件
func (w *FileWriter) ensureFile(hour string) error {
	if w.enc == nil {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return fmt.Errorf("journal: zstd: %w", err)
		}
		w.enc = enc
	}
	if w.f != nil && w.hour == hour {
		return nil
	}
	if err := w.closeFile(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	f, err := os.OpenFile(w.pathFor(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	w.f = f
	w.hour = hour
	return nil
}

func (w *FileWriter) closeFile() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	w.hour = ""
	return err
}
