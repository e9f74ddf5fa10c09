// Package peers tracks nodes advertised through announce packets.
package peers

import (
	"fmt"

	"rradio/internal/packet"
)

// Record is an immutable snapshot of one announce. A newer announce for
// the same serial replaces the stored record rather than mutating it.
type Record struct {
	Serial  int32
	ClassID uint8
	Group   uint16
	Channel uint16
	Flags   uint16
	Image   uint32
	Time    int32
}

func recordFrom(p *packet.Announce) Record {
	return Record{
		Serial:  p.Serial,
		ClassID: p.ClassID,
		Group:   p.Group,
		Channel: p.Channel,
		Flags:   p.Flags,
		Image:   p.Image,
		Time:    p.Time,
	}
}

// Directory maps node serials to their latest announce snapshot.
// It carries no locking: access is single-writer by design, and callers
// sharing one across goroutines must serialize externally.
type Directory struct {
	records map[int32]Record
}

func NewDirectory() *Directory {
	return &Directory{records: make(map[int32]Record)}
}

// Add upserts the peer described by an announce packet, keyed by the
// header serial, and returns the stored record. Any other variant is
// rejected with packet.ErrWrongVariant.
func (d *Directory) Add(p packet.Packet) (Record, error) {
	announce, ok := p.(*packet.Announce)
	if !ok {
		return Record{}, fmt.Errorf("%w: directory accepts announce packets, got tag %d", packet.ErrWrongVariant, p.Head().Type)
	}

	record := recordFrom(announce)
	d.records[record.Serial] = record

	return record, nil
}

// FindBySerial returns the record for a serial, if present.
func (d *Directory) FindBySerial(serial int32) (Record, bool) {
	record, ok := d.records[serial]

	return record, ok
}

// FindByClass returns every record with the given class id, in map
// iteration order.
func (d *Directory) FindByClass(classID uint8) []Record {
	var out []Record
	for _, record := range d.records {
		if record.ClassID == classID {
			out = append(out, record)
		}
	}

	return out
}

// Records returns a snapshot of all known peers.
func (d *Directory) Records() []Record {
	out := make([]Record, 0, len(d.records))
	for _, record := range d.records {
		out = append(out, record)
	}

	return out
}

// Clear drops every record.
func (d *Directory) Clear() {
	d.records = make(map[int32]Record)
}

// Len reports the number of tracked peers.
func (d *Directory) Len() int {
	return len(d.records)
}
