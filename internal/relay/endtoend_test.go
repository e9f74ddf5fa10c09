package relay

import (
	"testing"

	"rradio/internal/packet"
	"rradio/internal/peers"
)

// Full path of an inbound announce: relay line -> classified frame ->
// decoded packet -> peer directory.
func TestInboundAnnounceReachesDirectory(t *testing.T) {
	sent := &packet.Announce{
		Header:  packet.Header{Type: packet.TypeAnnounce, Time: 1000, Serial: 99},
		ClassID: 3,
		Group:   7,
		Channel: 1,
		Flags:   0,
		Image:   42,
	}

	stream := &scriptedStream{reads: [][]byte{
		[]byte("r: " + packet.EncodeHex(sent) + "\n"),
	}}
	r := testRelay(stream)

	event, err := r.ReadEvent(testContext(t))
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Command != CmdReceive {
		t.Fatalf("command = %q, want %q", event.Command, CmdReceive)
	}

	decoded, err := packet.Decode(event.Frame)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	announce, ok := decoded.(*packet.Announce)
	if !ok {
		t.Fatalf("decoded %T, want *packet.Announce", decoded)
	}
	if *announce != *sent {
		t.Fatalf("decoded announce %+v, want %+v", announce, sent)
	}

	directory := peers.NewDirectory()
	if _, err := directory.Add(announce); err != nil {
		t.Fatalf("directory add: %v", err)
	}
	record, ok := directory.FindBySerial(99)
	if !ok {
		t.Fatal("expected record for serial 99")
	}
	if record.ClassID != 3 || record.Group != 7 || record.Channel != 1 || record.Image != 42 || record.Time != 1000 {
		t.Fatalf("unexpected record: %+v", record)
	}
}
