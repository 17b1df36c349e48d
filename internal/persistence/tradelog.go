package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/tradewinds/internal/world"
)

// TradeRow is one settled trade flow, journaled when the network is
// rebuilt.
type TradeRow struct {
	Tick       uint64             `json:"tick"`
	Settlement world.SettlementID `json:"settlement"`
	Partner    world.SettlementID `json:"partner"`
	Value      float64            `json:"value"`
	Risk       float64            `json:"risk"`
	Hops       int                `json:"hops"`
}

// TradeLog appends trade rows to hour-rotated zstd-compressed JSONL
// files under its base directory.
type TradeLog struct {
	dir string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewTradeLog returns a log writing under dir. Files are created lazily
// on first append.
func NewTradeLog(dir string) *TradeLog {
	return &TradeLog{dir: dir}
}

// Append journals a batch of rows into the current hour's file.
func (l *TradeLog) Append(rows []TradeRow) error {
	if len(rows) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != l.curHour {
		if err := l.rotateLocked(hour); err != nil {
			return err
		}
	}

	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := l.w.Write(b); err != nil {
			return err
		}
		if err := l.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return l.w.Flush()
}

// Close flushes and closes the current file, if any.
func (l *TradeLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *TradeLog) rotateLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("trades-%s.jsonl.zst", hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 128*1024)
	l.curHour = hour
	return nil
}

func (l *TradeLog) closeLocked() error {
	var err error
	if l.w != nil {
		_ = l.w.Flush()
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.w = nil
	return err
}
