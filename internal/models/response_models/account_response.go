package response_models

type AuthResponse struct {
	Token string `json:"token"`
}

type AccountResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
}
