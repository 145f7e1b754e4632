package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	batchSize     = 50
	flushInterval = 5 * time.Second
)

// DBHandler is an slog.Handler that batches ERROR+ records into the
// system_logs table. Only the background loop writes; Stop flushes what is
// left and waits for it.
type DBHandler struct {
	sink  *logSink
	attrs []slog.Attr
	group string
}

// logSink is shared by a handler and every handler derived from it with
// WithAttrs or WithGroup.
type logSink struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.SystemLog
	ticker   *time.Ticker
	full     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDBHandler(db *gorm.DB) *DBHandler {
	s := &logSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, batchSize),
		ticker: time.NewTicker(flushInterval),
		full:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.flushLoop()
	return &DBHandler{sink: s}
}

func (s *logSink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.full:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *logSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, batchSize)
	s.mu.Unlock()

	// Logged below ERROR so the failure is not fed back into this handler.
	if err := s.db.CreateInBatches(batch, batchSize).Error; err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err.Error(), "count", len(batch))
	}
}

func (s *logSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	ready := len(s.buffer) >= batchSize
	s.mu.Unlock()

	if ready {
		// A pending signal already covers this batch.
		select {
		case s.full <- struct{}{}:
		default:
		}
	}
}

// Stop flushes the buffer and ends the background loop. It is safe to call
// more than once.
func (h *DBHandler) Stop() {
	h.sink.stopOnce.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
		h.sink.wg.Wait()
	})
}

// Enabled only handles ERROR and above.
func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	extra := make(map[string]interface{})
	for _, a := range h.attrs {
		setField(&entry, extra, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		setField(&entry, extra, qualify(h.group, a))
		return true
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.add(entry)
	return nil
}

// setField maps well-known attribute keys to columns. Everything else, and
// anything inside a group, lands in extra.
func setField(entry *models.SystemLog, extra map[string]interface{}, a slog.Attr) {
	v := a.Value.Resolve()
	switch a.Key {
	case "family_id":
		s := v.String()
		entry.FamilyID = &s
	case "user_id":
		s := v.String()
		entry.UserID = &s
	case "trace_id":
		entry.TraceID = v.String()
	case "action":
		entry.Action = v.String()
	case "error":
		entry.Error = v.String()
	case "latency_ms":
		switch v.Kind() {
		case slog.KindFloat64:
			entry.LatencyMs = int(math.Round(v.Float64()))
		case slog.KindInt64:
			entry.LatencyMs = int(v.Int64())
		case slog.KindDuration:
			entry.LatencyMs = int(v.Duration().Milliseconds())
		}
	default:
		extra[a.Key] = v.Any()
	}
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, qualify(h.group, a))
	}
	return &DBHandler{sink: h.sink, attrs: merged, group: h.group}
}

func (h *DBHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &DBHandler{sink: h.sink, attrs: h.attrs, group: group}
}

// qualify prefixes the key with the open group, if any.
func qualify(group string, a slog.Attr) slog.Attr {
	if group == "" {
		return a
	}
	return slog.Attr{Key: group + "." + a.Key, Value: a.Value}
}
