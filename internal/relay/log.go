package relay

import (
	"context"

	"go.uber.org/zap"

	"didvault/internal/domain"
)

// LogSink records relay requests without contacting any endpoint.
type LogSink struct {
	log *zap.Logger
}

// NewLog returns a LogSink writing to log.
func NewLog(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log.With(zap.String("component", "relay"))}
}

// SyncIdentity logs the request and always succeeds.
func (s *LogSink) SyncIdentity(ctx context.Context, id domain.DID, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("relaying DID", zap.String("did", id.String()), zap.String("target", target))
	return nil
}

var _ domain.RelaySink = (*LogSink)(nil)
