package session

import "photos/internal/models"

// Session is the process-wide selection of the authenticated user and
// the album currently open in the viewer. The core is single-threaded;
// access is not synchronized.
type Session struct {
	currentUser  *models.User
	currentAlbum *models.Album
}

// New returns an empty session. Tests substitute isolated instances;
// the running application uses the package-level Default.
func New() *Session {
	return &Session{}
}

// Default is the process-wide session, cleared at startup.
var Default = New()

// SetUser binds a user to the session. Changing the user always drops
// the current album selection.
func (s *Session) SetUser(u *models.User) {
	s.currentUser = u
	s.currentAlbum = nil
}

// User returns the currently authenticated user, or nil.
func (s *Session) User() *models.User {
	return s.currentUser
}

// SetAlbum selects the album currently open in the viewer.
func (s *Session) SetAlbum(a *models.Album) {
	s.currentAlbum = a
}

// Album returns the currently open album, or nil.
func (s *Session) Album() *models.Album {
	return s.currentAlbum
}

// Clear resets the session to its startup state.
func (s *Session) Clear() {
	s.currentUser = nil
	s.currentAlbum = nil
}
