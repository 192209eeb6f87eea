package app

import (
	"testing"
	"time"

	"photos/internal/account"
	"photos/internal/models"
	"photos/internal/search"
	"photos/internal/session"
	"photos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestApp wires a full stack on a throwaway file store and returns
// the app together with its store so tests can reopen state.
func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()
	dataDir := t.TempDir()
	st, err := store.New(store.Config{Backend: store.BackendFile, DataDir: dataDir}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	accounts := account.NewManager(st, t.TempDir(), zap.NewNop())
	return New(st, accounts, session.New(), zap.NewNop()), st
}

func loginAlice(t *testing.T, a *App) *models.User {
	t.Helper()
	_, err := a.CreateUser("alice")
	require.NoError(t, err)
	u, err := a.Login("alice")
	require.NoError(t, err)
	return u
}

func TestCreatePersistReload(t *testing.T) {
	a, st := newTestApp(t)
	loginAlice(t, a)

	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	taken := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	_, err = a.AddPhoto("trip", "/img/a.jpg", taken)
	require.NoError(t, err)

	// Fresh session, same store.
	reloaded, err := st.Load("alice")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	require.Len(t, reloaded.Albums, 1)
	assert.Equal(t, "trip", reloaded.Albums[0].Name)
	require.Equal(t, 1, reloaded.Albums[0].PhotoCount())
	photo := reloaded.Albums[0].Photos[0]
	assert.Equal(t, "/img/a.jpg", photo.Filepath)
	assert.True(t, photo.DateTaken.Equal(taken))
}

func TestOperationsRequireLogin(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.CreateAlbum("trip")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = a.SearchByTag("person=alice", search.AllAlbums())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoginUnknownUser(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.Login("ghost")
	assert.ErrorIs(t, err, account.ErrUnknownUser)
	assert.Nil(t, a.Session().User())
}

func TestLogoutClearsSession(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.OpenAlbum("trip")
	require.NoError(t, err)

	a.Logout()
	assert.Nil(t, a.Session().User())
	assert.Nil(t, a.Session().Album())
}

func TestDeleteOpenAlbumClearsSelection(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.OpenAlbum("Trip")
	require.NoError(t, err)

	require.NoError(t, a.DeleteAlbum("trip"))
	assert.Nil(t, a.Session().Album())
}

func TestCopyPhotoSharesReference(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.CreateAlbum("best")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	require.NoError(t, a.CopyPhoto("trip", "/img/a.jpg", "best"))

	assert.True(t, u.Album("trip").Contains("/img/a.jpg"))
	assert.True(t, u.Album("best").Contains("/img/a.jpg"))

	// Edits through one album are visible through the other.
	require.NoError(t, a.SetCaption("best", "/img/a.jpg", "shared"))
	assert.Equal(t, "shared", u.Album("trip").Find("/img/a.jpg").Caption)
}

func TestMovePhotoIsNotCopy(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("src")
	require.NoError(t, err)
	_, err = a.CreateAlbum("dest")
	require.NoError(t, err)
	_, err = a.AddPhoto("src", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	require.NoError(t, a.MovePhoto("src", "/img/a.jpg", "dest"))

	assert.False(t, u.Album("src").Contains("/img/a.jpg"))
	assert.True(t, u.Album("dest").Contains("/img/a.jpg"))
}

func TestTransferPreconditions(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("src")
	require.NoError(t, err)
	_, err = a.CreateAlbum("dest")
	require.NoError(t, err)
	_, err = a.AddPhoto("src", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, a.CopyPhoto("src", "/img/a.jpg", "SRC"), ErrSameAlbum)
	assert.ErrorIs(t, a.CopyPhoto("src", "/img/missing.jpg", "dest"), models.ErrUnknownPhoto)
	assert.ErrorIs(t, a.CopyPhoto("src", "/img/a.jpg", "nowhere"), models.ErrUnknownAlbum)

	require.NoError(t, a.CopyPhoto("src", "/img/a.jpg", "dest"))
	assert.ErrorIs(t, a.CopyPhoto("src", "/img/a.jpg", "dest"), models.ErrDuplicatePhoto)
	assert.ErrorIs(t, a.MovePhoto("src", "/img/a.jpg", "dest"), models.ErrDuplicatePhoto)
}

func TestMoveFailureLeavesSourceIntact(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("src")
	require.NoError(t, err)
	_, err = a.CreateAlbum("dest")
	require.NoError(t, err)
	_, err = a.AddPhoto("src", "/img/a.jpg", time.Now())
	require.NoError(t, err)
	require.NoError(t, a.CopyPhoto("src", "/img/a.jpg", "dest"))

	err = a.MovePhoto("src", "/img/a.jpg", "dest")
	assert.ErrorIs(t, err, models.ErrDuplicatePhoto)
	assert.True(t, u.Album("src").Contains("/img/a.jpg"),
		"a rejected move must not remove the photo from its source")
}

func TestAddTagGrowsCatalog(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"location", "person"}, a.Catalog().Types())

	require.NoError(t, a.AddTag("trip", "/img/a.jpg", "mood", "calm"))
	assert.Contains(t, a.Catalog().Types(), "mood")

	// Catalog is session-local: a new login starts over.
	_, err = a.Login("alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"location", "person"}, a.Catalog().Types())
}

func TestAddTagLocationReplacement(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	require.NoError(t, a.AddTag("trip", "/img/a.jpg", "location", "paris"))
	require.NoError(t, a.AddTag("trip", "/img/a.jpg", "Location", "rome"))

	photo := u.Album("trip").Find("/img/a.jpg")
	require.Len(t, photo.Tags, 1)
	assert.True(t, photo.HasTag(models.NewTag("location", "rome")))
}

func TestAddTagRejectsEmptyParts(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, a.AddTag("trip", "/img/a.jpg", "", "x"), models.ErrEmptyName)
	assert.ErrorIs(t, a.AddTag("trip", "/img/a.jpg", "person", "  "), models.ErrEmptyName)
}

func TestCreateAlbumFromResults(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/b.jpg", time.Now())
	require.NoError(t, err)
	require.NoError(t, a.AddTag("trip", "/img/a.jpg", "person", "bob"))

	results, err := a.SearchByTag("person=bob", search.AllAlbums())
	require.NoError(t, err)
	require.Len(t, results, 1)

	album, err := a.CreateAlbumFromResults("bob pics")
	require.NoError(t, err)
	assert.Equal(t, 1, album.PhotoCount())

	// Shares references with the originals.
	require.NoError(t, a.SetCaption("bob pics", "/img/a.jpg", "hello"))
	assert.Equal(t, "hello", u.Album("trip").Find("/img/a.jpg").Caption)

	// Promoting onto an existing name fails like createAlbum.
	_, err = a.CreateAlbumFromResults("trip")
	assert.ErrorIs(t, err, models.ErrDuplicateAlbum)
}

func TestCreateAlbumFromResultsCollapsesSharedFilepaths(t *testing.T) {
	a, _ := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.CreateAlbum("pets")
	require.NoError(t, err)

	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err = a.AddPhoto("trip", "/img/a.jpg", when)
	require.NoError(t, err)
	_, err = a.AddPhoto("pets", "/img/a.jpg", when)
	require.NoError(t, err)

	// Diverging the captions makes the two records structurally
	// distinct, so both survive search dedup.
	require.NoError(t, a.SetCaption("pets", "/img/a.jpg", "also here"))

	results, err := a.SearchByDate(when, when, search.AllAlbums())
	require.NoError(t, err)
	require.Len(t, results, 2)

	album, err := a.CreateAlbumFromResults("found")
	require.NoError(t, err)
	assert.Equal(t, 1, album.PhotoCount())
	assert.Equal(t, "", album.Find("/img/a.jpg").Caption)
}

func TestFailedPromotionLeavesNoAlbum(t *testing.T) {
	a, _ := newTestApp(t)
	u := loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)

	before := len(u.Albums)
	_, err = a.CreateAlbumFromResults("trip")
	require.ErrorIs(t, err, models.ErrDuplicateAlbum)
	assert.Len(t, u.Albums, before)

	_, err = a.CreateAlbumFromResults("   ")
	require.ErrorIs(t, err, models.ErrEmptyName)
	assert.Len(t, u.Albums, before)
}

func TestMutationsAreFlushedBeforeReturn(t *testing.T) {
	a, st := newTestApp(t)
	loginAlice(t, a)
	_, err := a.CreateAlbum("trip")
	require.NoError(t, err)
	_, err = a.AddPhoto("trip", "/img/a.jpg", time.Now())
	require.NoError(t, err)
	require.NoError(t, a.AddTag("trip", "/img/a.jpg", "location", "paris"))

	stored, err := st.Load("alice")
	require.NoError(t, err)
	photo := stored.Albums[0].Find("/img/a.jpg")
	require.NotNil(t, photo)
	assert.True(t, photo.HasTag(models.NewTag("location", "paris")))
}

func TestAdminSessionIsNeverPersisted(t *testing.T) {
	a, st := newTestApp(t)
	u, err := a.Login("admin")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, u.Role)

	// Album ops on the admin session stay in memory only.
	_, err = a.CreateAlbum("scratch")
	require.NoError(t, err)

	stored, err := st.Load("admin")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
