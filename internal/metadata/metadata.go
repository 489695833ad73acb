// =============================================================================
// Tax Invoice Generator - Billing Metadata
// =============================================================================
//
// The metadata file holds the supplier's global billing fields plus one block
// per delivery place:
//
//   {
//     "GST": "10AAAAA0000A1Z5",
//     "vendor_code": "V1234",
//     "DMART":  {"bill_to": "...", "place_of_supply": "...", "site_code": "..."},
//     "RELIANCE": {"bill_to": "...", "place_of_supply": "...", "site_code": "..."}
//   }
//
// GST and vendor_code are reserved. Every other key holding an object is a
// place. Places are kept in the order they appear in the file; that order is
// used for the batch folder walk and for place fallback.
//
// Scalar keys other than the reserved ones (older files carry invoice_no, PO
// and delivery_date) are ignored.
//
// =============================================================================

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Reserved top-level keys. They are never places.
const (
	KeyGST        = "GST"
	KeyVendorCode = "vendor_code"
)

// ErrNoPlaces is returned when a place is requested from metadata that has no
// place blocks at all.
var ErrNoPlaces = errors.New("metadata defines no places")

// IsReserved reports whether key is one of the global, non-place keys.
func IsReserved(key string) bool {
	return key == KeyGST || key == KeyVendorCode
}

// Place is one billing destination.
type Place struct {
	Name          string `json:"-"`
	BillTo        string `json:"bill_to"`
	PlaceOfSupply string `json:"place_of_supply"`
	SiteCode      string `json:"site_code"`
}

// Metadata is the parsed metadata file.
type Metadata struct {
	GST        string
	VendorCode string

	order  []string
	places map[string]Place
}

// Load reads and parses the metadata file at path.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	meta, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	return meta, nil
}

// Parse decodes metadata JSON, keeping places in file order.
func Parse(data []byte) (*Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("metadata must be a JSON object")
	}

	meta := &Metadata{places: make(map[string]Place)}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}

		switch {
		case key == KeyGST:
			meta.GST, err = decodeString(raw)
		case key == KeyVendorCode:
			meta.VendorCode, err = decodeString(raw)
		case isObject(raw):
			err = meta.addPlace(key, raw)
		}
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after metadata object")
	}

	return meta, nil
}

func (m *Metadata) addPlace(name string, raw json.RawMessage) error {
	var p Place
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	p.Name = name

	// A repeated key replaces the earlier block but keeps its position.
	if _, exists := m.places[name]; !exists {
		m.order = append(m.order, name)
	}
	m.places[name] = p
	return nil
}

// Places returns the place names in file order.
func (m *Metadata) Places() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Place looks up a place by exact name.
func (m *Metadata) Place(name string) (Place, bool) {
	p, ok := m.places[name]
	return p, ok
}

// ResolvePlace returns the place to bill.
//
// PARAMETERS:
//   - requested: the place asked for by the caller (may be empty)
//
// RETURNS:
//   - The requested place when it exists and is not a reserved key.
//   - Otherwise the first place in file order.
//   - ErrNoPlaces when the metadata has no places.
//
// The second return value reports whether the fallback was used.
func (m *Metadata) ResolvePlace(requested string) (Place, bool, error) {
	if !IsReserved(requested) {
		if p, ok := m.places[requested]; ok {
			return p, false, nil
		}
	}

	if len(m.order) == 0 {
		return Place{}, false, ErrNoPlaces
	}
	return m.places[m.order[0]], true, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected a string: %w", err)
	}
	return s, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
