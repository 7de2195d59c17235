package records

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// wireRecord is the persisted shape. Field names are part of the on-disk
// format and must not change.
type wireRecord struct {
	Filename string      `json:"Filename"`
	Date     string      `json:"Date"`
	Time     string      `json:"Time"`
	Mileage  wireMileage `json:"Mileage"`
	CarType  string      `json:"Car type"`
	Car      string      `json:"Car"`
	Notes    string      `json:"Notes"`
}

// wireMileage accepts integers, integral floats, and quoted numbers, which
// older logs wrote when OCR output was stored verbatim. Quoted values may
// carry the list punctuation of a single OCR candidate, as in "['123456']".
type wireMileage int64

var candidatePunctuation = strings.NewReplacer("[", "", "]", "", "'", "", `"`, "")

// int64 values at or above this float cannot be represented.
const maxMileageFloat = float64(math.MaxInt64)

func (m *wireMileage) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("mileage is null")
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		candidates := legacyCandidates(unquoted)
		switch len(candidates) {
		case 0:
			return fmt.Errorf("mileage %s is empty", string(data))
		case 1:
			raw = candidates[0]
		default:
			return fmt.Errorf("mileage %s holds %d OCR candidates, confirm one by hand", string(data), len(candidates))
		}
	}
	v, err := parseMileage(raw)
	if err != nil {
		return fmt.Errorf("mileage %s: %w", string(data), err)
	}
	*m = wireMileage(v)
	return nil
}

// legacyCandidates splits a quoted legacy value into its non-empty
// comma-separated readings.
func legacyCandidates(value string) []string {
	var out []string
	for _, part := range strings.Split(candidatePunctuation.Replace(value), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseMileage(raw string) (int64, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	if f < 0 || f >= maxMileageFloat {
		return 0, fmt.Errorf("value %g out of range", f)
	}
	return int64(f), nil
}

// MarshalJSON encodes the record in the stable wire format.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toWire())
}

// UnmarshalJSON decodes the stable wire format.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rec, err := w.toRecord()
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func (r Record) toWire() wireRecord {
	identity := r.Identity
	if identity == "" {
		identity = IdentityUnknown
	}
	return wireRecord{
		Filename: r.SourceID,
		Date:     r.Date(),
		Time:     r.Clock(),
		Mileage:  wireMileage(r.Mileage),
		CarType:  string(r.Class),
		Car:      string(identity),
		Notes:    r.Notes,
	}
}

func (w wireRecord) toRecord() (Record, error) {
	clock := strings.TrimSpace(w.Time)
	switch strings.ToLower(clock) {
	case "none", "nan", "null":
		clock = ""
	}
	observed, known, err := Combine(w.Date, clock)
	if err != nil {
		return Record{}, err
	}
	r := Record{
		SourceID:   w.Filename,
		ObservedAt: observed,
		TimeKnown:  known,
		Mileage:    int64(w.Mileage),
		Class:      ParseClass(w.CarType),
		Identity:   ParseIdentity(w.Car),
		Notes:      w.Notes,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Encode renders records as an indented JSON array. An empty collection
// encodes as [] rather than null.
func Encode(items []Record) ([]byte, error) {
	if items == nil {
		items = []Record{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON array of records. Blank input decodes to an empty
// collection. Errors name the 1-based position of the offending record.
func Decode(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	items := make([]Record, len(raw))
	for i, msg := range raw {
		if err := json.Unmarshal(msg, &items[i]); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i+1, err)
		}
	}
	return items, nil
}
