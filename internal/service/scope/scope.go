// Package scope derives the set of bases an actor may query.
package scope

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
)

// Scope is the authorized base set for one request. "All bases" is the
// explicit All flag; an empty Bases slice without it matches nothing, so
// omission can never silently widen a query.
type Scope struct {
	All   bool
	Bases []primitive.ObjectID
}

// Empty reports whether the scope resolves to no base at all.
func (s Scope) Empty() bool {
	return !s.All && len(s.Bases) == 0
}

// Contains reports whether the scope covers the given base.
func (s Scope) Contains(id primitive.ObjectID) bool {
	if s.All {
		return true
	}
	for _, b := range s.Bases {
		if b == id {
			return true
		}
	}
	return false
}

// AllBases is the explicit whole-fleet scope.
func AllBases() Scope {
	return Scope{All: true}
}

// Single scopes a request to exactly one base.
func Single(id primitive.ObjectID) Scope {
	return Scope{Bases: []primitive.ObjectID{id}}
}

// Resolve maps an actor and a requested base filter onto the authorized
// scope. Admins get the requested base, or the whole fleet when none is
// requested. Every other role is pinned to its assigned base regardless of
// the request; a mismatched request is overridden, not rejected.
func Resolve(actor models.Actor, requested primitive.ObjectID) (Scope, error) {
	if actor.IsAdmin() {
		if requested.IsZero() {
			return AllBases(), nil
		}
		return Single(requested), nil
	}
	if actor.Base.IsZero() {
		return Scope{}, apperrors.Authorizationf("actor %q has no assigned base", actor.Name)
	}
	return Single(actor.Base), nil
}
