package domain

// Session is the client-local authentication state.
type Session struct {
	Token  string `json:"token" validate:"required,printascii"`
	UserID UserID `json:"userId" validate:"gt=0"`
}

// LoggedIn reports whether the session holds credentials.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != "" && s.UserID != 0
}
