package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared by the screener and the AI reviewer.
const (
	FieldRole      = "role"
	FieldCandidate = "candidate"
	FieldProvider  = "provider"
	FieldModel     = "model"
)

// WithRole tags every line of one screening run with the role name.
func WithRole(log *zap.Logger, role string) *zap.Logger {
	return with(log, FieldRole, role)
}

// WithCandidate tags per-candidate lines with the role and the document id.
func WithCandidate(log *zap.Logger, role, candidate string) *zap.Logger {
	return with(log, FieldRole, role, FieldCandidate, candidate)
}

// WithProvider tags reviewer lines with the AI provider and model.
func WithProvider(log *zap.Logger, provider, model string) *zap.Logger {
	return with(log, FieldProvider, provider, FieldModel, model)
}

// with attaches key/value pairs as string fields. Blank values are omitted and
// a nil logger becomes a no-op one.
func with(log *zap.Logger, pairs ...string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}

	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		value := strings.TrimSpace(pairs[i+1])
		if value == "" {
			continue
		}
		fields = append(fields, zap.String(pairs[i], value))
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
