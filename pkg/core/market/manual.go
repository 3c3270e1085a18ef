package market

import (
	"fmt"

	"reverse_dcf/pkg/core/utils"
)

// ParseManualSnapshot decodes a user-supplied snapshot payload. Strict JSON,
// repairable JSON and Hjson are all accepted, so the payload can be pasted
// from an API response or written by hand with comments. The snapshot is
// validated against the same rules fetched data must satisfy.
func ParseManualSnapshot(payload string) (*Snapshot, error) {
	var snap Snapshot
	if _, err := utils.SmartParse(payload, &snap); err != nil {
		return nil, fmt.Errorf("manual snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("manual snapshot: %w", err)
	}
	return &snap, nil
}
