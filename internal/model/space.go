package model

import "time"

// Space is a bookable area on a map.  MapOwnerID is denormalised from the
// owning map when the space is loaded so that authorization needs no second
// lookup.
type Space struct {
	ID          uint64     // spaces.id
	MapID       uint64     // spaces.map_id
	MapOwnerID  uint64     // maps.member_id of the owning map
	Name        string     // spaces.name
	Color       string     // spaces.color
	Description string     // spaces.description
	Area        string     // spaces.area (opaque drawing geometry)
	Policy      TimePolicy // spaces.available_start .. spaces.enabled_days
	CreatedAt   time.Time  // spaces.created_at
	UpdatedAt   time.Time  // spaces.updated_at
}

// BelongsTo reports whether the space sits on the given map.
func (s Space) BelongsTo(mapID uint64) bool { return s.MapID == mapID }
