package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RecordVariant identifies which raw shape an account record has.
type RecordVariant string

const (
	VariantOwner   RecordVariant = "OWNER"
	VariantStaff   RecordVariant = "STAFF"
	VariantUnknown RecordVariant = "UNKNOWN"
)

// AccountMetadata is the free-form payload pinned with the record.
type AccountMetadata struct {
	Name      string         `json:"name"`
	KeyValues map[string]any `json:"keyvalues"`
}

// RawAccountRecord is a pinned account record as loaded into local state.
type RawAccountRecord struct {
	ID       string          `json:"id"`
	Hash     string          `json:"ipfs_pin_hash"`
	PinnedAt time.Time       `json:"-"`
	Metadata AccountMetadata `json:"metadata"`
}

type rawAccountRecordJSON struct {
	ID       string          `json:"id"`
	Hash     string          `json:"ipfs_pin_hash"`
	PinnedAt string          `json:"date_pinned"`
	Metadata AccountMetadata `json:"metadata"`
}

// ParseAccountRecord decodes the stored JSON form.
func ParseAccountRecord(data []byte) (RawAccountRecord, error) {
	var record RawAccountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return RawAccountRecord{}, fmt.Errorf("decode account record: %w", err)
	}
	return record, nil
}

// UnmarshalJSON reads the pinned form. An unparseable pin date is left as the
// zero time rather than failing the whole record.
func (r *RawAccountRecord) UnmarshalJSON(data []byte) error {
	var raw rawAccountRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = RawAccountRecord{
		ID:       raw.ID,
		Hash:     raw.Hash,
		Metadata: raw.Metadata,
	}
	if raw.PinnedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw.PinnedAt); err == nil {
			r.PinnedAt = ts
		}
	}
	return nil
}

// MarshalJSON writes the same shape ParseAccountRecord reads.
func (r RawAccountRecord) MarshalJSON() ([]byte, error) {
	out := rawAccountRecordJSON{
		ID:       r.ID,
		Hash:     r.Hash,
		Metadata: r.Metadata,
	}
	if !r.PinnedAt.IsZero() {
		out.PinnedAt = r.PinnedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// Variant detects the record shape once. Staff keys win over owner keys.
func (r RawAccountRecord) Variant() RecordVariant {
	owner := false
	for key, value := range r.Metadata.KeyValues {
		if value == nil {
			continue
		}
		if strings.HasPrefix(key, StaffKeyPrefix) {
			return VariantStaff
		}
		if strings.HasPrefix(key, OwnerKeyPrefix) {
			owner = true
		}
	}
	if owner {
		return VariantOwner
	}
	return VariantUnknown
}
