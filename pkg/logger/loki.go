package logger

import (
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap/zapcore"
)

const lokiBatchSize = 100

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// LokiCore ships log lines to a Loki push endpoint in batches. Delivery failures are dropped.
type LokiCore struct {
	zapcore.LevelEnabler
	enc    zapcore.Encoder
	client *resty.Client
	labels map[string]string

	mu      *sync.Mutex
	pending *[][2]string
}

// NewLokiCore creates a core pushing to baseURL/loki/api/v1/push
func NewLokiCore(baseURL, user, password string, labels map[string]string, level zapcore.LevelEnabler) *LokiCore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Second).
		SetHeader("Content-Type", "application/json")
	if user != "" {
		client.SetBasicAuth(user, password)
	}
	pending := make([][2]string, 0, lokiBatchSize)
	return &LokiCore{
		LevelEnabler: level,
		enc:          zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg", LevelKey: "level", EncodeLevel: zapcore.LowercaseLevelEncoder}),
		client:       client,
		labels:       labels,
		mu:           &sync.Mutex{},
		pending:      &pending,
	}
}

func (c *LokiCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.enc = c.enc.Clone()
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return &clone
}

func (c *LokiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *LokiCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := [2]string{strconv.FormatInt(ent.Time.UnixNano(), 10), buf.String()}
	buf.Free()

	c.mu.Lock()
	*c.pending = append(*c.pending, line)
	full := len(*c.pending) >= lokiBatchSize
	c.mu.Unlock()

	if full || ent.Level >= zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

// Sync flushes the pending batch
func (c *LokiCore) Sync() error {
	c.mu.Lock()
	if len(*c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := *c.pending
	fresh := make([][2]string, 0, lokiBatchSize)
	*c.pending = fresh
	c.mu.Unlock()

	_, err := c.client.R().
		SetBody(lokiPush{Streams: []lokiStream{{Stream: c.labels, Values: batch}}}).
		Post("/loki/api/v1/push")
	return err
}
