package mapping

import (
	"errors"
	"fmt"
	"time"

	"contactsync/internal/sync/models"
)

// Type records how a correspondence came to exist.
type Type string

const (
	// TypeMigrated marks mappings written by a bulk first-time migration.
	TypeMigrated Type = "MIGRATED"
	// TypeNomisCreated marks mappings written while replaying a legacy-originated change.
	TypeNomisCreated Type = "NOMIS_CREATED"
	// TypeDPSCreated marks mappings where the legacy row was itself written in
	// response to a target-originated change.
	TypeDPSCreated Type = "DPS_CREATED"
)

func (t Type) IsValid() bool {
	return t == TypeMigrated || t == TypeNomisCreated || t == TypeDPSCreated
}

// Mapping is the durable legacy-id to target-id correspondence for one record.
// Mappings are never updated in place; they are deleted and recreated.
type Mapping struct {
	Kind        models.EntityKind `json:"kind"`
	LegacyID    int64             `json:"legacyId"`
	TargetID    string            `json:"targetId"`
	OwnerKey    string            `json:"ownerKey"`
	MappingType Type              `json:"mappingType"`
	Label       string            `json:"label,omitempty"`
	WhenCreated time.Time         `json:"whenCreated"`
}

// Validate checks the fields every store relies on.
func (m Mapping) Validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid mapping kind %q", m.Kind)
	}
	if m.LegacyID <= 0 {
		return errors.New("mapping legacy id must be positive")
	}
	if m.TargetID == "" {
		return errors.New("mapping target id is required")
	}
	if !m.MappingType.IsValid() {
		return fmt.Errorf("invalid mapping type %q", m.MappingType)
	}
	return nil
}
