// Package api exposes the presentation contract over HTTP for a local
// UI shell. It is a thin JSON adapter over the app facade; all domain
// rules live below it.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"photos/internal/account"
	"photos/internal/app"
	"photos/internal/models"
	"photos/internal/search"
	"photos/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type API struct {
	app *app.App
	log *zap.Logger
}

func New(a *app.App, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{app: a, log: log}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", a.login)
	r.Post("/logout", a.logout)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", a.listUsers)
		r.Post("/", a.createUser)
		r.Delete("/{username}", a.deleteUser)
	})

	r.Route("/albums", func(r chi.Router) {
		r.Get("/", a.listAlbums)
		r.Post("/", a.createAlbum)
		r.Get("/{name}", a.getAlbum)
		r.Put("/{name}", a.renameAlbum)
		r.Delete("/{name}", a.deleteAlbum)
		r.Post("/{name}/open", a.openAlbum)
		r.Post("/{name}/photos", a.addPhoto)
		r.Delete("/{name}/photos", a.deletePhoto)
	})

	r.Route("/photos", func(r chi.Router) {
		r.Post("/copy", a.copyPhoto)
		r.Post("/move", a.movePhoto)
		r.Put("/caption", a.setCaption)
		r.Post("/tags", a.addTag)
		r.Delete("/tags", a.removeTag)
	})

	r.Route("/search", func(r chi.Router) {
		r.Get("/date", a.searchByDate)
		r.Get("/tags", a.searchByTag)
		r.Post("/album", a.createAlbumFromResults)
	})

	r.Route("/tagtypes", func(r chi.Router) {
		r.Get("/", a.listTagTypes)
		r.Post("/", a.defineTagType)
	})

	return r
}

// Responses

type userResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type dateRangeResponse struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

type albumResponse struct {
	Name       string             `json:"name"`
	PhotoCount int                `json:"photoCount"`
	DateRange  *dateRangeResponse `json:"dateRange,omitempty"`
	Photos     []*models.Photo    `json:"photos,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{Username: u.Username, Role: string(u.Role)}
}

func toAlbumResponse(album *models.Album, withPhotos bool) albumResponse {
	resp := albumResponse{Name: album.Name, PhotoCount: album.PhotoCount()}
	if earliest, latest, ok := album.DateRange(); ok {
		resp.DateRange = &dateRangeResponse{Earliest: earliest, Latest: latest}
	}
	if withPhotos {
		resp.Photos = album.Photos
	}
	return resp
}

// Handlers

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	u, err := a.app.Login(req.Username)
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.app.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.app.ListUsers()
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	u, err := a.app.CreateUser(req.Username)
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.app.DeleteUser(chi.URLParam(r, "username")); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAlbums(w http.ResponseWriter, r *http.Request) {
	u := a.app.Session().User()
	if u == nil {
		a.respondDomainError(w, app.ErrNotLoggedIn)
		return
	}
	resp := make([]albumResponse, 0, len(u.Albums))
	for _, album := range u.Albums {
		resp = append(resp, toAlbumResponse(album, false))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *API) createAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	album, err := a.app.CreateAlbum(req.Name)
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAlbumResponse(album, false))
}

func (a *API) getAlbum(w http.ResponseWriter, r *http.Request) {
	u := a.app.Session().User()
	if u == nil {
		a.respondDomainError(w, app.ErrNotLoggedIn)
		return
	}
	album := u.Album(chi.URLParam(r, "name"))
	if album == nil {
		a.respondDomainError(w, models.ErrUnknownAlbum)
		return
	}
	respondJSON(w, http.StatusOK, toAlbumResponse(album, true))
}

func (a *API) renameAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.RenameAlbum(chi.URLParam(r, "name"), req.Name); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := a.app.DeleteAlbum(chi.URLParam(r, "name")); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) openAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := a.app.OpenAlbum(chi.URLParam(r, "name"))
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAlbumResponse(album, true))
}

func (a *API) addPhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filepath  string    `json:"filepath"`
		DateTaken time.Time `json:"dateTaken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Filepath == "" {
		respondError(w, http.StatusBadRequest, "filepath is required")
		return
	}
	photo, err := a.app.AddPhoto(chi.URLParam(r, "name"), req.Filepath, req.DateTaken)
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

func (a *API) deletePhoto(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	if err := a.app.DeletePhoto(chi.URLParam(r, "name"), path); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	SrcAlbum  string `json:"srcAlbum"`
	Filepath  string `json:"filepath"`
	DestAlbum string `json:"destAlbum"`
}

func (a *API) copyPhoto(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.CopyPhoto(req.SrcAlbum, req.Filepath, req.DestAlbum); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) movePhoto(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.MovePhoto(req.SrcAlbum, req.Filepath, req.DestAlbum); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) setCaption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Album    string `json:"album"`
		Filepath string `json:"filepath"`
		Caption  string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.SetCaption(req.Album, req.Filepath, req.Caption); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tagRequest struct {
	Album    string `json:"album"`
	Filepath string `json:"filepath"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

func (a *API) addTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.AddTag(req.Album, req.Filepath, req.Name, req.Value); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) removeTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := a.app.RemoveTag(req.Album, req.Filepath, req.Name, req.Value); err != nil {
		a.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) searchByDate(w http.ResponseWriter, r *http.Request) {
	start, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start"), time.Local)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be a YYYY-MM-DD date")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end"), time.Local)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be a YYYY-MM-DD date")
		return
	}
	results, err := a.app.SearchByDate(start, end, scopeFromQuery(r))
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (a *API) searchByTag(w http.ResponseWriter, r *http.Request) {
	results, err := a.app.SearchByTag(r.URL.Query().Get("q"), scopeFromQuery(r))
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (a *API) createAlbumFromResults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	album, err := a.app.CreateAlbumFromResults(req.Name)
	if err != nil {
		a.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAlbumResponse(album, true))
}

func (a *API) listTagTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.app.Catalog().Types())
}

func (a *API) defineTagType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	a.app.Catalog().Define(req.Name)
	respondJSON(w, http.StatusOK, a.app.Catalog().Types())
}

func scopeFromQuery(r *http.Request) search.Scope {
	if album := r.URL.Query().Get("album"); album != "" {
		return search.AlbumScope(album)
	}
	return search.AllAlbums()
}

// respondDomainError maps domain sentinels to HTTP statuses. Store
// failures are logged in full and surfaced generically.
func (a *API) respondDomainError(w http.ResponseWriter, err error) {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		a.log.Error("store operation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "operation failed")
		return
	}

	switch {
	case errors.Is(err, app.ErrNotLoggedIn):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrUnknownUser),
		errors.Is(err, models.ErrUnknownAlbum),
		errors.Is(err, models.ErrUnknownPhoto):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrDuplicateUser),
		errors.Is(err, account.ErrReservedUser),
		errors.Is(err, models.ErrDuplicateAlbum),
		errors.Is(err, models.ErrDuplicatePhoto):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrEmptyName),
		errors.Is(err, app.ErrSameAlbum),
		errors.Is(err, search.ErrInvalidDateRange),
		errors.Is(err, search.ErrInvalidTagQuery):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error("unexpected error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
