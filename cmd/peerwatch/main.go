// Command peerwatch listens to the relay, decodes received radio frames,
// and maintains a directory of peers from their announce packets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"rradio/internal/config"
	"rradio/internal/logging"
	"rradio/internal/packet"
	"rradio/internal/peers"
	"rradio/internal/relay"
)

const summaryInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "peerwatch:", err)
		os.Exit(1)
	}
}

func run() error {
	device := flag.String("device", "", "serial device path (auto-detects the relay when empty)")
	runFor := flag.Duration("for", 0, "listen duration, e.g. 30s (0 = until interrupt)")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := logging.Component(logging.New(cfg.Logging.Level), "peerwatch")

	devicePath := *device
	if devicePath == "" {
		devicePath = cfg.Serial.Device
	}
	readTimeout, err := cfg.Serial.ParseReadTimeout()
	if err != nil {
		return err
	}
	idleSleep, err := cfg.Serial.ParseIdleSleep()
	if err != nil {
		return err
	}

	r, err := relay.Open(devicePath, relay.Options{
		BaudRate:    cfg.Serial.Baud,
		ReadTimeout: readTimeout,
		IdleSleep:   idleSleep,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("close relay")
		}
	}()
	log.Info().Str("device", r.Device()).Int("baud", cfg.Serial.Baud).Msg("opened relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}

	return watch(ctx, log, r)
}

func watch(ctx context.Context, log zerolog.Logger, r *relay.Relay) error {
	directory := peers.NewDirectory()
	lastSummary := time.Now()

	for {
		event, err := r.ReadEvent(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				logSummary(log, directory)
				return nil
			}
			return err
		}

		switch event.Command {
		case relay.CmdReceive:
			handleFrame(log, directory, event.Frame)
		case relay.CmdLog:
			log.Info().Str("text", event.Text).Msg("relay log")
		default:
			log.Info().Str("command", event.Command).Str("text", event.Text).Msg("relay status")
		}

		if time.Since(lastSummary) >= summaryInterval {
			logSummary(log, directory)
			lastSummary = time.Now()
		}
	}
}

func handleFrame(log zerolog.Logger, directory *peers.Directory, frame []byte) {
	if len(frame) == 0 {
		log.Warn().Msg("malformed frame dropped")
		return
	}

	p, err := packet.Decode(frame)
	if err != nil {
		log.Warn().Err(err).Msg("undecodable frame")
		return
	}

	announce, ok := p.(*packet.Announce)
	if !ok {
		log.Debug().Str("packet", fmt.Sprint(p)).Msg("non-announce frame")
		return
	}

	record, err := directory.Add(announce)
	if err != nil {
		log.Warn().Err(err).Msg("directory add")
		return
	}
	log.Info().
		Int32("serial", record.Serial).
		Uint8("class_id", record.ClassID).
		Uint16("group", record.Group).
		Uint16("channel", record.Channel).
		Uint32("image", record.Image).
		Msg("peer announced")
}

func logSummary(log zerolog.Logger, directory *peers.Directory) {
	log.Info().Int("peers", directory.Len()).Msg("directory summary")
}
