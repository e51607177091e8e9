package models

import "time"

// Pin visibility levels
const (
	VisibilityPrivate = 0
	VisibilityFriends = 1
	VisibilityPublic  = 2
)

// Friendship statuses
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

// Friendship states relative to a viewer
const (
	RelationNone            = "none"
	RelationPendingOutgoing = "pending_outgoing"
	RelationPendingIncoming = "pending_incoming"
	RelationFriends         = "friends"
)

// User represents a user in the system. The password hash is never
// serialized into responses.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"-"`
	Birthday      string    `json:"birthday"`
	PhoneNo       string    `json:"phone_no"`
	PhoneVerified bool      `json:"phone_verified"`
	ProfilePicURL *string   `json:"profile_pic_url,omitempty"`
	DeviceToken   *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Profile is the public subset of a user safe to return to other users
type Profile struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	FullName      string  `json:"full_name"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
}

// Profile returns the public view of the user
func (u *User) Profile() *Profile {
	return &Profile{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		ProfilePicURL: u.ProfilePicURL,
	}
}

// Pin represents a geotagged post owned by a single user
type Pin struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Title        string    `json:"title"`
	Caption      string    `json:"caption"`
	Visibility   int       `json:"visibility"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
	LocationTags []string  `json:"location_tags"`
	UserTags     []string  `json:"user_tags"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FriendPin is a pin paired with its author's public profile,
// as served in the friends feed
type FriendPin struct {
	Pin    *Pin     `json:"pin"`
	Author *Profile `json:"author"`
}

// Friendship represents a directed friendship edge. Once accepted the
// relation is symmetric: lookups must check both orderings.
type Friendship struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Recommendation is a friend-recommendation candidate ranked by the
// number of shared accepted friends
type Recommendation struct {
	Profile     *Profile `json:"profile"`
	MutualCount int      `json:"mutual_count"`
}
