// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"log/slog"
	"time"
)

// logAttrs prepends the attributes identifying s to extra.
func (s *Socket) logAttrs(extra ...any) []any {
	meta := s.metadata()
	return append([]any{
		slog.String("socketID", s.id),
		slog.String("family", meta.family.String()),
		slog.String("socketType", meta.stype.String()),
		slog.String("protocol", meta.protocol.String()),
	}, extra...)
}

// logStart emits a *Start event.
func (s *Socket) logStart(log func(string, ...any), event string, t0 time.Time, extra ...any) {
	log(event, s.logAttrs(append(extra, slog.Time("t", t0))...)...)
}

// logDone emits a *Done event carrying err and its class.
func (s *Socket) logDone(log func(string, ...any), event string, t0 time.Time, err error, extra ...any) {
	extra = append(extra,
		slog.Any("err", err),
		slog.String("errClass", s.errClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", s.timeNow()),
	)
	log(event, s.logAttrs(extra...)...)
}
