package dto

// ProfileInput carries the optional profile fields a user can fill in when
// updating their profile or while joining a family. Empty fields are left
// untouched.
type ProfileInput struct {
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Location  string `json:"location,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ProfileInput
}
