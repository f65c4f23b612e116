package models

// Session is the in-memory authentication state. It is owned by the
// session service; everything else reads it through a snapshot copy.
type Session struct {
	AccessToken   string
	RefreshToken  string
	User          *User
	TempUser      *TempUser
	SetupComplete bool
	IsLoading     bool
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil && s.AccessToken != ""
}
