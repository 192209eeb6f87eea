// Package app is the flat procedural surface the presentation layer
// calls. Every operation is scoped to the session's current user, and
// each successful mutation is flushed to the store before returning.
package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"photos/internal/account"
	"photos/internal/models"
	"photos/internal/search"
	"photos/internal/session"
	"photos/internal/store"

	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn = errors.New("no user logged in")
	ErrSameAlbum   = errors.New("source and destination album are the same")
)

// App binds the store, session and account manager into the contract
// consumed by the UI.
type App struct {
	store    *store.Store
	accounts *account.Manager
	session  *session.Session
	catalog  *Catalog
	results  []*models.Photo
	log      *zap.Logger
}

func New(st *store.Store, accounts *account.Manager, sess *session.Session, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		store:    st,
		accounts: accounts,
		session:  sess,
		catalog:  NewCatalog(),
		log:      log,
	}
}

// Session exposes the bound session, read-only for the UI.
func (a *App) Session() *session.Session {
	return a.session
}

// Catalog exposes the known tag types for UI autocompletion.
func (a *App) Catalog() *Catalog {
	return a.catalog
}

// Login binds the named user to the session. The known-tag-type catalog
// and any previous search results are reset.
func (a *App) Login(username string) (*models.User, error) {
	u, err := a.accounts.Login(username)
	if err != nil {
		return nil, err
	}
	a.session.SetUser(u)
	a.catalog = NewCatalog()
	a.results = nil
	a.log.Info("login", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// Logout clears the session.
func (a *App) Logout() {
	a.session.Clear()
	a.catalog = NewCatalog()
	a.results = nil
}

// ListUsers enumerates all stored users (admin surface).
func (a *App) ListUsers() ([]*models.User, error) {
	return a.accounts.ListUsers()
}

// CreateUser creates an empty regular user (admin surface).
func (a *App) CreateUser(username string) (*models.User, error) {
	return a.accounts.CreateUser(username)
}

// DeleteUser removes a regular user (admin surface).
func (a *App) DeleteUser(username string) error {
	return a.accounts.DeleteUser(username)
}

func (a *App) currentUser() (*models.User, error) {
	u := a.session.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// save flushes the current user's state. The admin account is
// recognized by name only and never stored.
func (a *App) save(u *models.User) error {
	if u.Role == models.RoleAdmin {
		return nil
	}
	return a.store.Save(u)
}

// CreateAlbum adds a new empty album for the current user.
func (a *App) CreateAlbum(name string) (*models.Album, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	album, err := u.CreateAlbum(name)
	if err != nil {
		return nil, err
	}
	if err := a.save(u); err != nil {
		return nil, err
	}
	return album, nil
}

// RenameAlbum renames an album of the current user.
func (a *App) RenameAlbum(name, newName string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	if err := u.RenameAlbum(name, newName); err != nil {
		return err
	}
	return a.save(u)
}

// DeleteAlbum removes an album of the current user. If it was the open
// album, the selection is cleared.
func (a *App) DeleteAlbum(name string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	if err := u.DeleteAlbum(name); err != nil {
		return err
	}
	if open := a.session.Album(); open != nil && strings.EqualFold(open.Name, name) {
		a.session.SetAlbum(nil)
	}
	return a.save(u)
}

// OpenAlbum selects an album as the session's current album.
func (a *App) OpenAlbum(name string) (*models.Album, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	album := u.Album(name)
	if album == nil {
		return nil, models.ErrUnknownAlbum
	}
	a.session.SetAlbum(album)
	return album, nil
}

// AddPhoto imports an image into an album. A zero dateTaken falls back
// to the file's last-modified time, or the current time when the file
// cannot be inspected.
func (a *App) AddPhoto(albumName, filepath string, dateTaken time.Time) (*models.Photo, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	album := u.Album(albumName)
	if album == nil {
		return nil, models.ErrUnknownAlbum
	}
	if dateTaken.IsZero() {
		if info, err := os.Stat(filepath); err == nil {
			dateTaken = info.ModTime()
		} else {
			dateTaken = time.Now()
		}
	}
	photo := models.NewPhoto(filepath, "", dateTaken)
	if err := album.AddPhoto(photo); err != nil {
		return nil, err
	}
	if err := a.save(u); err != nil {
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes a photo from one album. Its presence in other
// albums is untouched.
func (a *App) DeletePhoto(albumName, filepath string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	album := u.Album(albumName)
	if album == nil {
		return models.ErrUnknownAlbum
	}
	photo := album.Find(filepath)
	if photo == nil {
		return models.ErrUnknownPhoto
	}
	if err := album.RemovePhoto(photo); err != nil {
		return err
	}
	return a.save(u)
}

// CopyPhoto appends the photo reference to the destination album. Both
// albums end up sharing the same record, so later caption or tag edits
// show through both.
func (a *App) CopyPhoto(srcAlbum, filepath, destAlbum string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	_, photo, dest, err := a.resolveTransfer(u, srcAlbum, filepath, destAlbum)
	if err != nil {
		return err
	}
	if err := dest.AddPhoto(photo); err != nil {
		return err
	}
	return a.save(u)
}

// MovePhoto removes the photo from the source album and appends it to
// the destination.
func (a *App) MovePhoto(srcAlbum, filepath, destAlbum string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	src, photo, dest, err := a.resolveTransfer(u, srcAlbum, filepath, destAlbum)
	if err != nil {
		return err
	}
	if dest.Contains(photo.Filepath) {
		return models.ErrDuplicatePhoto
	}
	if err := src.RemovePhoto(photo); err != nil {
		return err
	}
	if err := dest.AddPhoto(photo); err != nil {
		return err
	}
	return a.save(u)
}

func (a *App) resolveTransfer(u *models.User, srcAlbum, filepath, destAlbum string) (src *models.Album, photo *models.Photo, dest *models.Album, err error) {
	if strings.EqualFold(srcAlbum, destAlbum) {
		return nil, nil, nil, ErrSameAlbum
	}
	src = u.Album(srcAlbum)
	if src == nil {
		return nil, nil, nil, models.ErrUnknownAlbum
	}
	dest = u.Album(destAlbum)
	if dest == nil {
		return nil, nil, nil, models.ErrUnknownAlbum
	}
	photo = src.Find(filepath)
	if photo == nil {
		return nil, nil, nil, models.ErrUnknownPhoto
	}
	return src, photo, dest, nil
}

// SetCaption replaces a photo's caption.
func (a *App) SetCaption(albumName, filepath, caption string) error {
	u, photo, err := a.findPhoto(albumName, filepath)
	if err != nil {
		return err
	}
	photo.SetCaption(caption)
	return a.save(u)
}

// AddTag attaches a name/value tag to a photo. New tag names extend the
// session's known-type catalog; single-valued types replace the prior
// value.
func (a *App) AddTag(albumName, filepath, name, value string) error {
	u, photo, err := a.findPhoto(albumName, filepath)
	if err != nil {
		return err
	}
	tag := models.NewTag(name, value)
	if tag.Name == "" || tag.Value == "" {
		return models.ErrEmptyName
	}
	a.catalog.Define(tag.Name)
	photo.AddTag(tag, a.catalog.Policy())
	return a.save(u)
}

// RemoveTag detaches a tag from a photo; an absent tag is tolerated.
func (a *App) RemoveTag(albumName, filepath, name, value string) error {
	u, photo, err := a.findPhoto(albumName, filepath)
	if err != nil {
		return err
	}
	photo.RemoveTag(models.NewTag(name, value))
	return a.save(u)
}

func (a *App) findPhoto(albumName, filepath string) (*models.User, *models.Photo, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, nil, err
	}
	album := u.Album(albumName)
	if album == nil {
		return nil, nil, models.ErrUnknownAlbum
	}
	photo := album.Find(filepath)
	if photo == nil {
		return nil, nil, models.ErrUnknownPhoto
	}
	return u, photo, nil
}

// SearchByDate runs a date-range query and retains the result for
// CreateAlbumFromResults.
func (a *App) SearchByDate(start, end time.Time, scope search.Scope) ([]*models.Photo, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	results, err := search.ByDate(u, scope, start, end)
	if err != nil {
		return nil, err
	}
	a.results = results
	return results, nil
}

// SearchByTag runs a tag-expression query and retains the result for
// CreateAlbumFromResults.
func (a *App) SearchByTag(query string, scope search.Scope) ([]*models.Photo, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	results, err := search.ByTag(u, scope, query)
	if err != nil {
		return nil, err
	}
	a.results = results
	return results, nil
}

// LastResults returns the photos found by the most recent search.
func (a *App) LastResults() []*models.Photo {
	return a.results
}

// CreateAlbumFromResults promotes the last search result to a new
// album, preserving result order. The new album shares photo references
// with the originals. Two result records can carry the same filepath
// when a file was imported into several albums and later edited apart;
// the first occurrence wins. The album is attached to the user only
// once it is fully built, so a rejected name leaves no partial album
// behind.
func (a *App) CreateAlbumFromResults(name string) (*models.Album, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	album := models.NewAlbum(name)
	for _, p := range a.results {
		if album.Contains(p.Filepath) {
			continue
		}
		if err := album.AddPhoto(p); err != nil {
			return nil, err
		}
	}
	if err := u.AddAlbum(album); err != nil {
		return nil, err
	}
	if err := a.save(u); err != nil {
		return nil, err
	}
	return album, nil
}
