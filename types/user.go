package types

// UserResponse is the user shape returned by the API. The username comes from
// the Supabase user metadata and is shown in the app instead of the email.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}
