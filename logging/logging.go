// Package logging builds zap loggers that redact PII before anything is encoded.
//
// Messages are passed through mask.SanitizeText. Fields whose key looks sensitive are
// replaced with privacy.Redacted, and every other field value is rendered and sanitized
// with privacy.SanitizeForLog. Redaction happens in the core, so it also applies to
// fields attached with Logger.With.
package logging

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MrEthical07/goShield/mask"
	"github.com/MrEthical07/goShield/privacy"
)

// Config selects level and encoder flavour.
type Config struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Development bool   `env:"DEVELOPMENT"`
}

// New builds a sanitizing logger.
func New(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		zc.Level = level
	}
	return zc.Build(zap.WrapCore(NewSanitizingCore))
}

// Wrap returns a logger sharing l's core behind a sanitizing core.
func Wrap(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.WithOptions(zap.WrapCore(NewSanitizingCore))
}

type sanitizingCore struct {
	zapcore.Core
}

// NewSanitizingCore wraps c. Wrapping twice is harmless.
func NewSanitizingCore(c zapcore.Core) zapcore.Core {
	if _, ok := c.(*sanitizingCore); ok {
		return c
	}
	return &sanitizingCore{Core: c}
}

func (c *sanitizingCore) With(fields []zapcore.Field) zapcore.Core {
	return &sanitizingCore{Core: c.Core.With(sanitizeFields(fields))}
}

func (c *sanitizingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sanitizingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = mask.SanitizeText(ent.Message)
	return c.Core.Write(ent, sanitizeFields(fields))
}

func sanitizeFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = sanitizeField(f)
	}
	return out
}

func sanitizeField(f zapcore.Field) zapcore.Field {
	switch f.Type {
	case zapcore.NamespaceType, zapcore.SkipType:
		return f
	}
	if privacy.IsSensitiveField(f.Key) {
		return zap.String(f.Key, privacy.Redacted)
	}

	switch f.Type {
	case zapcore.StringType:
		f.String = mask.SanitizeText(f.String)
		return f
	case zapcore.ByteStringType:
		return zap.String(f.Key, mask.SanitizeText(string(f.Interface.([]byte))))
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			return zap.String(f.Key, mask.SanitizeText(render(err, err.Error)))
		}
		return f
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok {
			return zap.String(f.Key, mask.SanitizeText(render(s, s.String)))
		}
		return f
	case zapcore.ReflectType:
		return zap.Any(f.Key, privacy.SanitizeForLog(f.Interface))
	case zapcore.ObjectMarshalerType, zapcore.ArrayMarshalerType, zapcore.InlineMarshalerType:
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		if f.Type == zapcore.InlineMarshalerType {
			return zap.Any(f.Key, privacy.SanitizeForLog(enc.Fields))
		}
		return zap.Any(f.Key, privacy.SanitizeForLog(enc.Fields[f.Key]))
	default:
		return f
	}
}

// render calls fn and recovers the panic a typed-nil receiver causes, reporting "<nil>"
// the way zap's encoder does.
func render(v any, fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
				out = "<nil>"
				return
			}
			out = fmt.Sprintf("PANIC=%v", r)
		}
	}()
	return fn()
}
