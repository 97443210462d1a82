package model

import "time"

// Map groups spaces under a single manager.  SharingID is a random public
// identifier that guests use to open the map without knowing its numeric id.
//
// Fields:
//  ID        – primary key.
//  OwnerID   – member id of the managing member.
//  Name      – display name.
//  Drawing   – opaque drawing data rendered by the client.
//  SharingID – random UUID handed out to guests.
type Map struct {
	ID        uint64    // maps.id
	OwnerID   uint64    // maps.member_id
	Name      string    // maps.name
	Drawing   string    // maps.drawing
	SharingID string    // maps.sharing_id
	CreatedAt time.Time // maps.created_at
	UpdatedAt time.Time // maps.updated_at
}

// IsOwnedBy reports whether memberID manages the map.
func (m Map) IsOwnedBy(memberID uint64) bool { return m.OwnerID == memberID }
