package relay

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/rs/zerolog"
)

// Pump drains and logs every event until the context deadline passes.
// Deadline expiry is the normal end of the window, not an error; only
// stream failures are returned.
func (r *Relay) Pump(ctx context.Context, log zerolog.Logger) error {
	for {
		event, err := r.ReadEvent(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if event.Command == CmdReceive {
			log.Info().Str("command", event.Command).Str("frame", hex.EncodeToString(event.Frame)).Msg("relay event")
			continue
		}
		log.Info().Str("command", event.Command).Str("text", event.Text).Msg("relay event")
	}
}

// WaitFor scans events until one with the target command arrives, sharing
// the relay's single read loop so interleaved log lines are not lost. The
// context deadline bounds the wait and surfaces as its error.
func (r *Relay) WaitFor(ctx context.Context, command string) (Event, error) {
	for {
		event, err := r.ReadEvent(ctx)
		if err != nil {
			return Event{}, err
		}
		if event.Command == command {
			return event, nil
		}
	}
}
