package authapi

import "github.com/RayenHanafi/Mosque-Noor/cmd/internal/httpx"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	httpx.Envelope
	User userResponse `json:"user"`
}

type meResponse struct {
	httpx.Envelope
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user,omitempty"`
}
