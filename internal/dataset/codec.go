package dataset

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshot is the binary layout of a dataset: column names, their kinds, and
// the cells in on-disk spelling, row by row.
type snapshot struct {
	Columns []string   `msgpack:"columns"`
	Kinds   []Kind     `msgpack:"kinds"`
	Rows    [][]string `msgpack:"rows"`
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (d *Dataset) EncodeMsgpack(enc *msgpack.Encoder) error {
	records := d.Records()
	snap := snapshot{
		Columns: records[0],
		Kinds:   make([]Kind, 0, len(records[0])),
		Rows:    records[1:],
	}
	for _, name := range snap.Columns {
		kind, err := d.Kind(name)
		if err != nil {
			return err
		}
		snap.Kinds = append(snap.Kinds, kind)
	}
	return enc.Encode(&snap)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (d *Dataset) DecodeMsgpack(dec *msgpack.Decoder) error {
	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return err
	}
	if len(snap.Columns) != len(snap.Kinds) {
		return fmt.Errorf("dataset: snapshot has %d columns but %d kinds", len(snap.Columns), len(snap.Kinds))
	}
	cols := make([]Column, len(snap.Columns))
	for c, name := range snap.Columns {
		cells := make([]string, len(snap.Rows))
		for r, row := range snap.Rows {
			if len(row) != len(snap.Columns) {
				return fmt.Errorf("dataset: snapshot row %d has %d cells, want %d", r, len(row), len(snap.Columns))
			}
			cells[r] = row[c]
		}
		cols[c] = Column{Name: name, kind: snap.Kinds[c], cells: cells}
	}
	decoded, err := FromColumns(cols...)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}
