// Package fingerprint derives deterministic identifiers and integrity hashes
// from record data
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// GoldenID derives the stable identifier for a golden record from its
// normalized identity attributes. The same person yields the same id across
// runs and resolver instances; the id never changes once issued.
func GoldenID(firstName, lastName string, dateOfBirth *time.Time, stateID string) string {
	dob := ""
	if dateOfBirth != nil {
		dob = dateOfBirth.Format("2006-01-02")
	}

	key := strings.Join([]string{
		normalizers.NormalizeName(firstName),
		normalizers.NormalizeName(lastName),
		dob,
		normalizers.NormalizeStateID(stateID),
	}, "|")

	hash := sha256.Sum256([]byte(key))
	return "GR-" + strings.ToUpper(hex.EncodeToString(hash[:])[:12])
}

// CollectionHash computes an order-independent hash over a record
// collection. Records are sorted by identifier and reduced to id plus name
// fields, so two collections with the same membership hash identically
// regardless of ordering or ancillary fields.
func CollectionHash(records []map[string]any) string {
	type keyed struct {
		id   string
		name string
	}

	entries := make([]keyed, 0, len(records))
	for _, r := range records {
		id := stringField(r, "student_id")
		if id == "" {
			id = stringField(r, "id")
		}
		entries = append(entries, keyed{
			id:   id,
			name: stringField(r, "first_name") + stringField(r, "last_name"),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	var input strings.Builder
	for _, e := range entries {
		input.WriteString(e.id)
		input.WriteString("|")
		input.WriteString(e.name)
		input.WriteString("|")
	}

	hash := sha256.Sum256([]byte(input.String()))
	return hex.EncodeToString(hash[:])
}

// RecordHash computes a short integrity hash over a record's key identity
// fields, used for spot-check comparisons.
func RecordHash(id, firstName, lastName, dateOfBirth string) string {
	data := fmt.Sprintf("%s|%s|%s|%s", id, firstName, lastName, dateOfBirth)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}

// HasChanged compares two hashes to detect drift
func HasChanged(oldHash, newHash string) bool {
	return oldHash != newHash
}

func stringField(record map[string]any, key string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
