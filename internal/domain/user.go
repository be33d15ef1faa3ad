package domain

import "time"

// User represents a registered account. PasswordHash and RefreshToken are
// credential material and must never cross the API boundary.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	PasswordHash  string
	// RefreshToken is the single currently valid refresh token for this
	// user, or empty when logged out. Mutated only by the session service.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicView is the outward representation of a User.
type PublicView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public strips credential fields from the user record.
func (u *User) Public() PublicView {
	return PublicView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
