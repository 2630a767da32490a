package model

// Session is the signed-in actor for a single request.
// A nil *Session means the visitor is signed out.
type Session struct {
	User    *User
	Profile *UserProfile
}

func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.IsAdmin
}

// DefaultAnonymous is the initial state of the "post anonymously" checkbox.
func (s *Session) DefaultAnonymous() bool {
	return s == nil || s.Profile == nil || !s.Profile.ShowRealName
}
