// Command relaytest exercises the radio relay: it lists candidate serial
// ports, blasts raw payloads over the link, and in structured mode sends
// one randomized packet per known variant and verifies the echoed frame
// field by field.
package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"rradio/internal/config"
	"rradio/internal/logging"
	"rradio/internal/packet"
	"rradio/internal/relay"
)

const (
	defaultCount    = 10
	defaultInterval = 250 * time.Millisecond
	rawPayloadSize  = 32
	responseTimeout = 2 * time.Second
	settleWindow    = 200 * time.Millisecond
	finalWindow     = 500 * time.Millisecond

	hexWords = "deadbeefcafef00dbabe8badf00dd00dface"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "relaytest:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	listOnly := flag.Bool("list", false, "list available USB serial ports and exit")
	device := flag.String("device", "", "serial device path (auto-detects the relay when empty)")
	count := flag.Int("count", defaultCount, "number of packets (or iterations with -packets) to send")
	interval := flag.Duration("interval", defaultInterval, "delay between packets")
	randomize := flag.Bool("rand", false, "send random 32-byte payloads")
	words := flag.Bool("words", false, "send a fixed hex word pattern")
	packets := flag.Bool("packets", false, "send structured packets per payload type and verify the echo")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	if *listOnly {
		return renderPortTable(os.Stdout)
	}
	if *count <= 0 {
		return fmt.Errorf("%w: -count must be positive", errUsage)
	}
	if *interval < 0 {
		return fmt.Errorf("%w: -interval must be zero or positive", errUsage)
	}
	if *packets && (*randomize || *words) {
		return fmt.Errorf("%w: -packets may not be combined with -rand or -words", errUsage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := logging.Component(logging.New(cfg.Logging.Level), "relaytest")

	r, err := openRelay(*device, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("close relay")
		}
	}()
	log.Info().Str("device", r.Device()).Int("baud", cfg.Serial.Baud).Msg("opened relay")
	if err := r.ResetInput(); err != nil {
		return fmt.Errorf("reset input: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *packets {
		return sendStructured(ctx, log, r, *count, *interval)
	}

	return sendRaw(ctx, log, r, *count, *interval, *randomize, *words)
}

func openRelay(device string, cfg config.Config) (*relay.Relay, error) {
	if device == "" {
		device = cfg.Serial.Device
	}
	readTimeout, err := cfg.Serial.ParseReadTimeout()
	if err != nil {
		return nil, err
	}
	idleSleep, err := cfg.Serial.ParseIdleSleep()
	if err != nil {
		return nil, err
	}

	return relay.Open(device, relay.Options{
		BaudRate:    cfg.Serial.Baud,
		ReadTimeout: readTimeout,
		IdleSleep:   idleSleep,
	})
}

func sendRaw(ctx context.Context, log zerolog.Logger, r *relay.Relay, count int, interval time.Duration, randomize, words bool) error {
	log.Info().Int("count", count).Dur("interval", interval).Bool("random", randomize).Msg("sending raw payloads")
	if err := pumpWindow(ctx, r, log, settleWindow); err != nil {
		return err
	}

	for index := 0; index < count; index++ {
		var (
			line string
			err  error
		)
		if words {
			line, err = r.SendHex(hexWords + hexWords)
		} else {
			line, err = r.Send(rawPayload(index, randomize))
		}
		if err != nil {
			return err
		}
		log.Info().Str("line", line).Msg("sent")

		wait := interval
		if index == count-1 {
			wait = finalWindow
		}
		if err := pumpWindow(ctx, r, log, wait); err != nil {
			return err
		}
	}

	return nil
}

func sendStructured(ctx context.Context, log zerolog.Logger, r *relay.Relay, count int, interval time.Duration) error {
	log.Info().Int("iterations", count).Msg("sending structured packets for every payload type")
	if err := pumpWindow(ctx, r, log, settleWindow); err != nil {
		return err
	}

	for iteration := 1; iteration <= count; iteration++ {
		log.Info().Int("iteration", iteration).Int("total", count).Msg("iteration")
		for _, build := range structuredBuilders {
			sent := build()
			line, err := r.Send(sent.Encode())
			if err != nil {
				return err
			}
			log.Info().Str("line", line).Msg("sent")

			waitCtx, cancel := context.WithTimeout(ctx, responseTimeout)
			event, err := r.WaitFor(waitCtx, relay.CmdReceive)
			cancel()
			if err != nil {
				return fmt.Errorf("wait for echo of %s: %w", sent, err)
			}

			received, err := packet.Decode(event.Frame)
			if err != nil {
				return fmt.Errorf("decode echoed frame: %w", err)
			}
			if !reflect.DeepEqual(sent, received) {
				return fmt.Errorf("echo mismatch: sent %s, received %s", sent, received)
			}
			log.Info().Str("packet", sent.String()).Msg("validated echo")

			if interval > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(interval):
				}
			}
		}
	}

	return nil
}

func pumpWindow(ctx context.Context, r *relay.Relay, log zerolog.Logger, d time.Duration) error {
	windowCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	return r.Pump(windowCtx, log)
}

func rawPayload(index int, randomize bool) []byte {
	buf := make([]byte, rawPayloadSize)
	if randomize {
		_, _ = cryptorand.Read(buf)
		return buf
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(index))

	return buf
}

type stringerPacket interface {
	packet.Packet
	String() string
}

var structuredBuilders = []func() stringerPacket{
	func() stringerPacket {
		return &packet.Announce{
			Header:  randomHeader(packet.TypeAnnounce),
			ClassID: randomUint8(),
			Group:   randomUint16(),
			Channel: randomUint16(),
			Flags:   randomUint16(),
			Image:   rand.Uint32(),
		}
	},
	func() stringerPacket {
		return &packet.Display{
			Header:        randomHeader(packet.TypeDisplay),
			Tone:          randomUint8(),
			Duration:      randomUint8(),
			Image:         rand.Uint32(),
			HeadLampLeft:  randomColor(),
			HeadLampRight: randomColor(),
			NeoLeft:       randomColor(),
			NeoRight:      randomColor(),
		}
	},
	func() stringerPacket {
		return &packet.BotCommand{
			Header:      randomHeader(packet.TypeBotCommand),
			CommandType: randomUint8(),
			Motor1:      randomInt16(),
			Motor2:      randomInt16(),
			Motor3:      randomInt16(),
			Motor4:      randomInt16(),
			Duration:    randomInt16(),
			Servo1:      randomInt16(),
			Servo2:      randomInt16(),
			Data1:       randomInt32(),
		}
	},
	func() stringerPacket {
		return &packet.BotStatus{
			Header:  randomHeader(packet.TypeBotStatus),
			Buttons: randomUint8(),
			AccelX:  randomInt16(),
			AccelY:  randomInt16(),
			AccelZ:  randomInt16(),
		}
	},
	func() stringerPacket {
		return &packet.Joystick{
			Header:  randomHeader(packet.TypeJoystick),
			X:       randomUint16(),
			Y:       randomUint16(),
			Buttons: randomUint8(),
			AccelX:  randomInt16(),
			AccelY:  randomInt16(),
			AccelZ:  randomInt16(),
		}
	},
}

func randomHeader(t packet.Type) packet.Header {
	return packet.Header{Type: t, Time: randomInt32(), Serial: randomInt32()}
}

func randomUint8() uint8   { return uint8(rand.Uint32()) }
func randomUint16() uint16 { return uint16(rand.Uint32()) }
func randomInt16() int16   { return int16(rand.Uint32()) }
func randomInt32() int32   { return int32(rand.Uint32()) }
func randomColor() uint32  { return rand.Uint32() & 0xFFFFFF }

func renderPortTable(w io.Writer) error {
	ports, err := relay.USBPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No USB serial ports found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tVID:PID\tSERIAL\tPRODUCT")
	for _, port := range ports {
		fmt.Fprintf(tw, "%s\t%s:%s\t%s\t%s\n", port.Name, port.VID, port.PID, port.SerialNumber, port.Product)
	}

	return tw.Flush()
}
