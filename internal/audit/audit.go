// Package audit provides the append-only operation log: one timestamped line
// per event, written to a file sink and never read back by the core.
package audit

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// Log is a write-only audit sink. Every entry carries the session id so
// interleaved runs can be told apart after the fact.
type Log struct {
	sugar   *zap.SugaredLogger
	session string
}

// Open appends to the log file at path, creating it if needed.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	session := newSessionID()
	sugar := zap.New(core).Sugar().With("session", session)
	return &Log{sugar: sugar, session: session}, nil
}

// Nop returns a logger that discards everything. Used by tests and dry runs.
func Nop() *Log {
	return &Log{sugar: zap.NewNop().Sugar()}
}

func (l *Log) Session() string { return l.session }

func (l *Log) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Log) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Log) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

func (l *Log) Close() {
	_ = l.sugar.Sync()
}

func newSessionID() string {
	t := ulid.Timestamp(time.Now())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return strings.ToUpper(id.String())
}
