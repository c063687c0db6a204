// Package conduit holds the users API wire types and errors shared by the HTTP
// client, the session and the CLI.
package conduit

// AccessTokenKey is the item the bearer token is persisted under
const AccessTokenKey = "accessToken"

// User is the authenticated user as returned by the API
type User struct {
	Email    string `json:"email" yaml:"email"`
	Token    string `json:"token" yaml:"-"`
	Username string `json:"username" yaml:"username"`
	Bio      string `json:"bio" yaml:"bio"`
	Image    string `json:"image" yaml:"image"`
}

// RegisterInput represents the registration request body
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput represents the login request body
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserInput represents a partial profile update; nil fields are left unchanged
type UpdateUserInput struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Image    *string `json:"image,omitempty"`
}
