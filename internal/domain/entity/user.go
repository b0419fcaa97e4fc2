package entity

import (
	"strings"
	"time"
)

// DefaultLocation is stored as last_known_location until clients report one.
var DefaultLocation = GeoPoint{Latitude: 40.112814, Longitude: -88.231786}

const DefaultCategoryWeight = 1.0

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CategoryWeight struct {
	CategoryID string  `json:"category_id"`
	Weight     float64 `json:"weight"`
}

// User is a registered person. Optional fields are nil when absent so that
// uniqueness checks can tell "not given" apart from a value.
type User struct {
	ID        string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Email                 *string `json:"email"`
	IsEmailVerified       bool    `json:"is_email_verified"`
	PhoneNumber           *string `json:"phone_number"`
	IsPhoneNumberVerified bool    `json:"is_phone_number_verified"`

	Password     *string `json:"-"`
	FacebookID   *string `json:"facebook_id,omitempty"`
	SignupMethod string  `json:"signup_method"`

	CategoryWeights   []CategoryWeight `json:"category_weights"`
	LastKnownLocation GeoPoint         `json:"last_known_location"`

	Credit float64 `json:"credit"`
	Debit  float64 `json:"debit"`

	DateCreated      time.Time `json:"date_created"`
	DateLastModified time.Time `json:"date_last_modified"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

const profileImageName = "/profile_picture.jpg"

// ProfileImagePath is the single blob location of a user's picture.
func ProfileImagePath(userID string) string {
	return userID + profileImageName
}

// ProfileImageOwner reports the user ID encoded in a profile image path.
func ProfileImageOwner(path string) (string, bool) {
	userID, ok := strings.CutSuffix(path, profileImageName)
	if !ok || userID == "" || strings.Contains(userID, "/") {
		return "", false
	}
	return userID, true
}

// StringValue dereferences an optional field, yielding "" when absent.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
