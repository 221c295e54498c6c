package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FeatureSet is the canonical in-memory form of a cabin's feature tags.
// Stored data arrives in three historical shapes: a comma-joined string
// ("jacuzzi, pool"), a JSON array of tags, or a JSON object of
// tag -> bool. All three parse into a set; serialization always emits
// the sorted tag array.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from tags, trimming and dropping empties.
func NewFeatureSet(tags ...string) FeatureSet {
	fs := FeatureSet{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			fs[t] = struct{}{}
		}
	}
	return fs
}

// Tags returns the sorted tag list.
func (fs FeatureSet) Tags() []string {
	out := make([]string, 0, len(fs))
	for t := range fs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Has reports whether wanted matches any tag, case-insensitive
// substring over the serialized tag set. This mirrors how guests type
// partial feature names ("jacuz").
func (fs FeatureSet) Has(wanted string) bool {
	wanted = strings.ToLower(strings.TrimSpace(wanted))
	if wanted == "" {
		return true
	}
	joined := strings.ToLower(strings.Join(fs.Tags(), ","))
	return strings.Contains(joined, wanted)
}

// Missing returns the wanted tags not present in the set.
func (fs FeatureSet) Missing(wanted []string) []string {
	var missing []string
	for _, w := range wanted {
		if !fs.Has(w) {
			missing = append(missing, w)
		}
	}
	return missing
}

func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Tags())
}

func (fs *FeatureSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err == nil {
		*fs = NewFeatureSet(tags...)
		return nil
	}
	var flags map[string]bool
	if err := json.Unmarshal(data, &flags); err == nil {
		out := FeatureSet{}
		for tag, on := range flags {
			if on {
				tag = strings.TrimSpace(tag)
				if tag != "" {
					out[tag] = struct{}{}
				}
			}
		}
		*fs = out
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("features: unsupported shape: %s", data)
	}
	*fs = NewFeatureSet(splitAndTrim(raw)...)
	return nil
}

// Value implements driver.Valuer; the canonical column form is the
// sorted JSON tag array.
func (fs FeatureSet) Value() (driver.Value, error) {
	return json.Marshal(fs.Tags())
}

func (fs *FeatureSet) Scan(src any) error {
	if src == nil {
		*fs = FeatureSet{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return fs.UnmarshalJSON(v)
	case string:
		return fs.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into FeatureSet", src)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
