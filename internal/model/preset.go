package model

import "time"

// Preset is a named reservation policy a manager saved for reuse when
// configuring new spaces.
type Preset struct {
	ID        uint64     // presets.id
	MemberID  uint64     // presets.member_id
	Name      string     // presets.name
	Policy    TimePolicy // presets.available_start .. presets.enabled_days
	CreatedAt time.Time  // presets.created_at
}

// IsOwnedBy reports whether the preset belongs to memberID.
func (p Preset) IsOwnedBy(memberID uint64) bool { return p.MemberID == memberID }
