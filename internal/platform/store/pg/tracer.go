package pg

import (
	"context"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one traced statement as the sql adapter observed it.
// Bind args never enter the event: cache rows carry bearer tokens, so
// only the arg count is traced
type QueryEvent struct {
	SQL       string
	ArgCount  int
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement when SQL logging is on
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer builds a tracer over root. The derived logger is forced to debug
// level so LOG_SQL output never gets filtered by the process-wide level.
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

// OnQuery logs the statement at info, or warn once it crossed the slow
// threshold, with the SQL collapsed to one line
func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	elapsedMs := float64(ev.ElapsedUS) / 1000.0
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}

	evt.Float64("elapsed_ms", elapsedMs).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Int("args", ev.ArgCount).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds runs of whitespace so multiline SQL logs as a single line
func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
