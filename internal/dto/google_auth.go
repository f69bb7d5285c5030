package dto

// GoogleLoginResponse carries the consent URL the front end redirects to.
// State must come back unchanged on the callback.
type GoogleLoginResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// GoogleProfile is the subset of the Google userinfo payload used to
// find or create the local account
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}
