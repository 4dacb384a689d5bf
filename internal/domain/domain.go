package domain

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Decision is a parent's verdict on a single name.
type Decision string

const (
	Like  Decision = "like"
	Maybe Decision = "maybe"
	Nope  Decision = "nope"
)

// Decisions lists every valid decision in display order.
var Decisions = []Decision{Like, Maybe, Nope}

func (d Decision) Valid() bool {
	switch d {
	case Like, Maybe, Nope:
		return true
	}
	return false
}

// ParseDecision accepts a decision in any letter case.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDecision
	}
	return d, nil
}

type Gender string

const (
	Male    Gender = "m"
	Female  Gender = "w"
	Unknown Gender = "unknown"
)

// GenderFilter narrows name lists. FilterAll disables filtering.
type GenderFilter string

const (
	FilterAll    GenderFilter = "all"
	FilterMale   GenderFilter = "m"
	FilterFemale GenderFilter = "w"
)

// ParseGenderFilter maps empty input to FilterAll.
func ParseGenderFilter(s string) (GenderFilter, error) {
	switch f := GenderFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterMale, FilterFemale:
		return f, nil
	}
	return "", ErrInvalidGender
}

// ParseGender maps empty input to Unknown.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case "", Unknown:
		return Unknown, nil
	case Male, Female:
		return g, nil
	}
	return "", ErrInvalidGender
}

// FoldName returns the case-folded form two names are compared by, so
// "Änne" and "änne" (or "Strauß" and "STRAUSS") collide.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// ParseLetter accepts a single letter, as used by the name list filter.
// Empty input means no filter.
func ParseLetter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || !unicode.IsLetter(r) {
		return "", ErrInvalidLetter
	}
	return s, nil
}

// Role identifies which parent a session belongs to.
type Role string

const (
	Papa Role = "papa"
	Mama Role = "mama"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Papa, Mama:
		return r, nil
	}
	return "", ErrInvalidRole
}

// Other returns the partner role.
func (r Role) Other() Role {
	if r == Papa {
		return Mama
	}
	return Papa
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidDecision    = errors.New("decision must be one of like, maybe, nope")
	ErrInvalidGender      = errors.New("gender must be one of m, w")
	ErrInvalidRole        = errors.New("role must be papa or mama")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidLetter      = errors.New("letter must be a single letter")
	ErrDuplicateName      = errors.New("name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRoleTaken          = errors.New("role already taken by another account")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNoSwipeSession     = errors.New("no swipe session started")
)
