package models

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a typed name/value pair attached to a Photo.
// Equality is case-insensitive on both name and value.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewTag builds a Tag with surrounding whitespace trimmed.
func NewTag(name, value string) Tag {
	return Tag{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
}

// Equal reports whether two tags match under case-insensitive comparison.
func (t Tag) Equal(o Tag) bool {
	return strings.EqualFold(t.Name, o.Name) && strings.EqualFold(t.Value, o.Value)
}

func (t Tag) String() string {
	return fmt.Sprintf("%s=%s", t.Name, t.Value)
}

// Arity says how many values a tag type may carry on one photo.
type Arity int

const (
	Multi Arity = iota
	Single
)

// TagPolicy maps lowercased tag names to their arity. Tag names absent
// from the map are multi-valued.
type TagPolicy map[string]Arity

// DefaultTagPolicy returns the built-in policy: "location" is
// single-valued, everything else allows multiple values.
func DefaultTagPolicy() TagPolicy {
	return TagPolicy{"location": Single}
}

// Arity looks up the arity for a tag name, case-insensitively.
func (p TagPolicy) Arity(name string) Arity {
	return p[strings.ToLower(name)]
}

// Photo is a record identified by its absolute filesystem path.
// Filepath and DateTaken are fixed at creation; caption and tags mutate.
type Photo struct {
	Filepath  string    `json:"filepath"`
	Caption   string    `json:"caption"`
	DateTaken time.Time `json:"dateTaken"`
	Tags      []Tag     `json:"tags"`
}

// NewPhoto creates a photo with an empty tag set.
func NewPhoto(filepath, caption string, dateTaken time.Time) *Photo {
	return &Photo{Filepath: filepath, Caption: caption, DateTaken: dateTaken}
}

// HasTag reports whether the photo carries a tag equal to t.
func (p *Photo) HasTag(t Tag) bool {
	for _, existing := range p.Tags {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

// AddTag inserts t into the photo's tag set. For single-valued tag types
// the existing tag of the same name is replaced; exact duplicates are
// dropped silently.
func (p *Photo) AddTag(t Tag, policy TagPolicy) {
	if policy.Arity(t.Name) == Single {
		kept := p.Tags[:0]
		for _, existing := range p.Tags {
			if !strings.EqualFold(existing.Name, t.Name) {
				kept = append(kept, existing)
			}
		}
		p.Tags = kept
	}
	if !p.HasTag(t) {
		p.Tags = append(p.Tags, t)
	}
}

// RemoveTag deletes the tag equal to t. Absent tags are tolerated.
func (p *Photo) RemoveTag(t Tag) {
	for i, existing := range p.Tags {
		if existing.Equal(t) {
			p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
			return
		}
	}
}

// SetCaption replaces the photo's caption.
func (p *Photo) SetCaption(caption string) {
	p.Caption = caption
}

// Equal is structural equality across filepath, caption, dateTaken and
// the tag set (order-insensitive).
func (p *Photo) Equal(o *Photo) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Filepath != o.Filepath || p.Caption != o.Caption || !p.DateTaken.Equal(o.DateTaken) {
		return false
	}
	if len(p.Tags) != len(o.Tags) {
		return false
	}
	for _, t := range p.Tags {
		if !o.HasTag(t) {
			return false
		}
	}
	return true
}

// Album is a named, ordered collection of photos. A photo appears at
// most once per album, keyed by filepath.
type Album struct {
	Name   string   `json:"name"`
	Photos []*Photo `json:"photos"`
}

func NewAlbum(name string) *Album {
	return &Album{Name: name}
}

// Find returns the photo with the given filepath, or nil.
func (a *Album) Find(filepath string) *Photo {
	for _, p := range a.Photos {
		if p.Filepath == filepath {
			return p
		}
	}
	return nil
}

// Contains reports whether a photo with the given filepath is present.
func (a *Album) Contains(filepath string) bool {
	return a.Find(filepath) != nil
}

// AddPhoto appends p, preserving insertion order. Duplicate filepaths
// are rejected.
func (a *Album) AddPhoto(p *Photo) error {
	if a.Contains(p.Filepath) {
		return ErrDuplicatePhoto
	}
	a.Photos = append(a.Photos, p)
	return nil
}

// RemovePhoto deletes the photo with p's filepath from the album.
func (a *Album) RemovePhoto(p *Photo) error {
	for i, existing := range a.Photos {
		if existing.Filepath == p.Filepath {
			a.Photos = append(a.Photos[:i], a.Photos[i+1:]...)
			return nil
		}
	}
	return ErrUnknownPhoto
}

// PhotoCount returns the number of photos in the album.
func (a *Album) PhotoCount() int {
	return len(a.Photos)
}

// DateRange returns the earliest and latest dateTaken across the
// album's photos. ok is false for an empty album.
func (a *Album) DateRange() (earliest, latest time.Time, ok bool) {
	if len(a.Photos) == 0 {
		return time.Time{}, time.Time{}, false
	}
	earliest = a.Photos[0].DateTaken
	latest = a.Photos[0].DateTaken
	for _, p := range a.Photos[1:] {
		if p.DateTaken.Before(earliest) {
			earliest = p.DateTaken
		}
		if p.DateTaken.After(latest) {
			latest = p.DateTaken
		}
	}
	return earliest, latest, true
}

// Equal is structural equality: same name, same photos in the same order.
func (a *Album) Equal(o *Album) bool {
	if a == nil || o == nil {
		return a == o
	}
	if a.Name != o.Name || len(a.Photos) != len(o.Photos) {
		return false
	}
	for i, p := range a.Photos {
		if !p.Equal(o.Photos[i]) {
			return false
		}
	}
	return true
}

// Role distinguishes the administrative account from regular members.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is an account owning a sequence of albums. Usernames compare
// case-insensitively; album names are unique within a user up to case.
type User struct {
	Username string   `json:"username"`
	Role     Role     `json:"role"`
	Albums   []*Album `json:"albums"`
}

func NewUser(username string) *User {
	return &User{Username: username, Role: RoleMember}
}

// Album returns the user's album with the given name (case-insensitive),
// or nil.
func (u *User) Album(name string) *Album {
	for _, a := range u.Albums {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// CreateAlbum appends a new empty album. The name must be non-empty
// after trimming and unique among the user's albums up to case.
func (u *User) CreateAlbum(name string) (*Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if u.Album(name) != nil {
		return nil, ErrDuplicateAlbum
	}
	a := NewAlbum(name)
	u.Albums = append(u.Albums, a)
	return a, nil
}

// AddAlbum appends an existing album, subject to the same name rules as
// CreateAlbum.
func (u *User) AddAlbum(a *Album) error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if u.Album(a.Name) != nil {
		return ErrDuplicateAlbum
	}
	u.Albums = append(u.Albums, a)
	return nil
}

// RenameAlbum gives the named album a new name, rejecting collisions
// with the user's other albums.
func (u *User) RenameAlbum(name, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	target := u.Album(name)
	if target == nil {
		return ErrUnknownAlbum
	}
	if other := u.Album(newName); other != nil && other != target {
		return ErrDuplicateAlbum
	}
	target.Name = newName
	return nil
}

// DeleteAlbum removes the named album from the user. Only the album's
// own photo references go away; photos shared with other albums remain.
func (u *User) DeleteAlbum(name string) error {
	for i, a := range u.Albums {
		if strings.EqualFold(a.Name, name) {
			u.Albums = append(u.Albums[:i], u.Albums[i+1:]...)
			return nil
		}
	}
	return ErrUnknownAlbum
}

// Equal is structural equality over the full object graph.
func (u *User) Equal(o *User) bool {
	if u == nil || o == nil {
		return u == o
	}
	if !strings.EqualFold(u.Username, o.Username) || u.Role != o.Role {
		return false
	}
	if len(u.Albums) != len(o.Albums) {
		return false
	}
	for i, a := range u.Albums {
		if !a.Equal(o.Albums[i]) {
			return false
		}
	}
	return true
}
