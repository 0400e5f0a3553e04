package webhooktest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cmstar/go-logx"
)

// LogEntry 是 [LogRecorder] 记录的一条日志。
type LogEntry struct {
	Level   logx.Level
	Message string

	// Fields 记录 key-value 对，值使用 fmt.Sprintf("%v") 转为字符串。
	// 多余的、没有配对的值记录在 UNKNOWN 上。
	Fields map[string]string
}

// LogRecorder 实现 [logx.Logger] ，记录全部日志，用于在测试中断言日志内容。可被并发使用。
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ logx.Logger = (*LogRecorder)(nil)

// NewLogRecorder 创建一个 [LogRecorder] 的新实例。
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// Log implements [logx.Logger.Log].
func (l *LogRecorder) Log(level logx.Level, message string, keyValues ...any) error {
	entry := LogEntry{
		Level:   level,
		Message: message,
		Fields:  make(map[string]string),
	}

	length := len(keyValues)
	for i := 0; i < length-1; i += 2 {
		k := fmt.Sprintf("%v", keyValues[i])
		entry.Fields[k] = fmt.Sprintf("%v", keyValues[i+1])
	}

	if length%2 != 0 {
		entry.Fields["UNKNOWN"] = fmt.Sprintf("%v", keyValues[length-1])
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return nil
}

// LogFn implements [logx.Logger.LogFn].
func (l *LogRecorder) LogFn(level logx.Level, messageFactory func() (string, []any)) error {
	m, kv := messageFactory()
	return l.Log(level, m, kv...)
}

// Entries 返回已记录的日志的副本。
func (l *LogRecorder) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// String 返回已记录的日志，每条一行，格式为：
//
//	level={LEVEL} message={MESSAGE} KEY1=VALUE1 KEY2=VALUE2 ...
//
// 每行中的 key 按字母顺序排列。
func (l *LogRecorder) String() string {
	b := new(strings.Builder)
	for _, e := range l.Entries() {
		b.WriteString("level=")
		b.WriteString(logx.LevelToString(e.Level))
		b.WriteString(" message=")
		b.WriteString(e.Message)

		for _, k := range sortedKeys(e.Fields) {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(e.Fields[k])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
