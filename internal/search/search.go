// Package search evaluates date-range and tag-expression queries over
// a user's photos. Results never contain the same photo twice, even
// when it appears in several of the inspected albums.
package search

import (
	"errors"
	"strings"
	"time"

	"photos/internal/models"
)

var (
	ErrInvalidDateRange = errors.New("start date is after end date")
	ErrInvalidTagQuery  = errors.New("invalid tag query")
)

// Scope selects either one named album or the union of all albums.
type Scope struct {
	Album string // empty means all albums
}

// AlbumScope restricts a search to one album of the current user.
func AlbumScope(name string) Scope {
	return Scope{Album: name}
}

// AllAlbums searches the union of the user's albums.
func AllAlbums() Scope {
	return Scope{}
}

// Op is the boolean connective of a two-term tag query.
type Op int

const (
	OpNone Op = iota
	OpAnd
	OpOr
)

// Query is a parsed tag expression: one term, or two terms joined by
// AND / OR. The grammar deliberately stops there: no parentheses, no
// negation, no longer chains.
type Query struct {
	Terms []models.Tag
	Op    Op
}

// ParseTagQuery parses "name=value", optionally joined to a second term
// by a case-sensitive " AND " or " OR ". Names and values are trimmed
// and must be non-empty.
func ParseTagQuery(query string) (Query, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Query{}, ErrInvalidTagQuery
	}

	op := OpNone
	parts := []string{query}
	if strings.Contains(query, " AND ") {
		op = OpAnd
		parts = strings.Split(query, " AND ")
	} else if strings.Contains(query, " OR ") {
		op = OpOr
		parts = strings.Split(query, " OR ")
	}
	if len(parts) > 2 {
		return Query{}, ErrInvalidTagQuery
	}

	q := Query{Op: op}
	for _, part := range parts {
		term, err := parseTerm(part)
		if err != nil {
			return Query{}, err
		}
		q.Terms = append(q.Terms, term)
	}
	return q, nil
}

func parseTerm(s string) (models.Tag, error) {
	kv := strings.Split(s, "=")
	if len(kv) != 2 {
		return models.Tag{}, ErrInvalidTagQuery
	}
	t := models.NewTag(kv[0], kv[1])
	if t.Name == "" || t.Value == "" {
		return models.Tag{}, ErrInvalidTagQuery
	}
	return t, nil
}

// Matches evaluates the query against one photo's tag set.
func (q Query) Matches(p *models.Photo) bool {
	switch q.Op {
	case OpAnd:
		return p.HasTag(q.Terms[0]) && p.HasTag(q.Terms[1])
	case OpOr:
		return p.HasTag(q.Terms[0]) || p.HasTag(q.Terms[1])
	default:
		return p.HasTag(q.Terms[0])
	}
}

// ByTag returns the distinct photos in scope matching the tag query,
// in inspection order.
func ByTag(u *models.User, scope Scope, query string) ([]*models.Photo, error) {
	q, err := ParseTagQuery(query)
	if err != nil {
		return nil, err
	}
	photos, err := gather(u, scope)
	if err != nil {
		return nil, err
	}
	var results []*models.Photo
	for _, p := range photos {
		if q.Matches(p) {
			results = appendDistinct(results, p)
		}
	}
	return results, nil
}

// ByDate returns the distinct photos in scope taken within
// [start 00:00:00, end 23:59:59.999999999], bounds inclusive. The
// date components of start and end are interpreted in their own
// locations; time-of-day is ignored.
func ByDate(u *models.User, scope Scope, start, end time.Time) ([]*models.Photo, error) {
	from := startOfDay(start)
	to := endOfDay(end)
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	photos, err := gather(u, scope)
	if err != nil {
		return nil, err
	}
	var results []*models.Photo
	for _, p := range photos {
		if !p.DateTaken.Before(from) && !p.DateTaken.After(to) {
			results = appendDistinct(results, p)
		}
	}
	return results, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func gather(u *models.User, scope Scope) ([]*models.Photo, error) {
	if scope.Album != "" {
		album := u.Album(scope.Album)
		if album == nil {
			return nil, models.ErrUnknownAlbum
		}
		return album.Photos, nil
	}
	var photos []*models.Photo
	for _, album := range u.Albums {
		photos = append(photos, album.Photos...)
	}
	return photos, nil
}

// appendDistinct drops photos structurally equal to one already kept.
func appendDistinct(results []*models.Photo, p *models.Photo) []*models.Photo {
	for _, existing := range results {
		if existing.Equal(p) {
			return results
		}
	}
	return append(results, p)
}
