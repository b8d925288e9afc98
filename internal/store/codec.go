package store

import (
	"bytes"
	"encoding/json"

	"je-feed-v2/internal/model"
)

// Encode serializes the inventory deterministically: keys sorted (Go's JSON
// encoder sorts map keys), 2-space indent, stable struct field order.
// Repeated encodes of unchanged data are byte-identical, which keeps the
// persisted file diffable and versionable.
func Encode(inv model.Inventory) ([]byte, error) {
	if inv == nil {
		inv = model.Inventory{}
	}
	buf, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

// Decode parses a persisted inventory document. Any parse failure yields an
// empty inventory and ok=false; the caller rebuilds from scratch rather than
// failing the run.
func Decode(data []byte) (model.Inventory, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Inventory{}, false
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, false
	}
	if inv == nil {
		return model.Inventory{}, false
	}
	// Guard against null entries in a hand-edited file.
	for id, rec := range inv {
		if rec == nil {
			delete(inv, id)
		}
	}
	return inv, true
}

// EncodeRecord serializes a single record in the same stable form used by
// the SQL backends.
func EncodeRecord(rec *model.Record) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeRecord parses a single record document.
func DecodeRecord(data []byte) (*model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
