package peers

import (
	"errors"
	"testing"

	"rradio/internal/packet"
)

func announce(serial int32, classID uint8, group uint16) *packet.Announce {
	return &packet.Announce{
		Header:  packet.Header{Type: packet.TypeAnnounce, Time: 1000, Serial: serial},
		ClassID: classID,
		Group:   group,
		Channel: 1,
		Image:   42,
	}
}

func TestAddAndFindBySerial(t *testing.T) {
	d := NewDirectory()

	record, err := d.Add(announce(99, 3, 7))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if record.Serial != 99 || record.ClassID != 3 || record.Group != 7 || record.Time != 1000 {
		t.Fatalf("unexpected record: %+v", record)
	}

	found, ok := d.FindBySerial(99)
	if !ok {
		t.Fatal("expected record for serial 99")
	}
	if found != record {
		t.Fatalf("stored record %+v differs from returned %+v", found, record)
	}
	if _, ok := d.FindBySerial(100); ok {
		t.Fatal("unexpected record for serial 100")
	}
}

func TestAddUpsertsBySerial(t *testing.T) {
	d := NewDirectory()

	if _, err := d.Add(announce(5, 1, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := d.Add(announce(5, 2, 20)); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	if d.Len() != 1 {
		t.Fatalf("len = %d, want 1", d.Len())
	}
	record, _ := d.FindBySerial(5)
	if record.ClassID != 2 || record.Group != 20 {
		t.Fatalf("last write did not win: %+v", record)
	}
}

func TestAddRejectsNonAnnounce(t *testing.T) {
	d := NewDirectory()

	status := &packet.BotStatus{Header: packet.Header{Type: packet.TypeBotStatus, Serial: 1}}
	if _, err := d.Add(status); !errors.Is(err, packet.ErrWrongVariant) {
		t.Fatalf("expected ErrWrongVariant, got %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("directory grew on rejected add: %d", d.Len())
	}
}

func TestFindByClass(t *testing.T) {
	d := NewDirectory()
	for _, p := range []*packet.Announce{announce(1, 3, 0), announce(2, 3, 0), announce(3, 9, 0)} {
		if _, err := d.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	matches := d.FindByClass(3)
	if len(matches) != 2 {
		t.Fatalf("found %d records for class 3, want 2", len(matches))
	}
	for _, record := range matches {
		if record.ClassID != 3 {
			t.Fatalf("wrong class in result: %+v", record)
		}
	}
	if got := d.FindByClass(42); len(got) != 0 {
		t.Fatalf("found %d records for unknown class", len(got))
	}
}

func TestClear(t *testing.T) {
	d := NewDirectory()
	if _, err := d.Add(announce(1, 1, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	d.Clear()
	if d.Len() != 0 {
		t.Fatalf("len after clear = %d", d.Len())
	}
	if records := d.Records(); len(records) != 0 {
		t.Fatalf("records after clear: %+v", records)
	}
}
