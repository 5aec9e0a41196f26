// Package roles describes the sixteen person roles and holds the registry
// that dispatches role-scoped person operations.
package roles

import (
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// ActorCreditTable is the table behind the actor role; unlike crew roles
// it is not a plain join table.
const ActorCreditTable = "role_assignments"

// Descriptor is everything that differs between roles.
type Descriptor struct {
	Role types.Role
	Tag  types.RoleType
	// CrewSet is the movie association set the role is credited through;
	// empty for roles without one.
	CrewSet types.CrewSet
	// CreditTable links people to movies for this role (movie_id,
	// person_id); empty when the role is tag-only.
	CreditTable string
}

// HasCredits reports whether the role is linked to movies.
func (d Descriptor) HasCredits() bool {
	return d.CreditTable != ""
}

var descriptors = []Descriptor{
	{Role: types.RoleActor, Tag: types.RoleTypeActor, CreditTable: ActorCreditTable},
	{Role: types.RoleProducer, Tag: types.RoleTypeProducer, CrewSet: types.CrewProducers, CreditTable: "movie_producers"},
	{Role: types.RoleDirector, Tag: types.RoleTypeDirector, CrewSet: types.CrewDirectors, CreditTable: "movie_directors"},
	{Role: types.RoleScreenwriter, Tag: types.RoleTypeScreenwriter, CrewSet: types.CrewScreenwriters, CreditTable: "movie_screenwriters"},
	{Role: types.RoleMusician, Tag: types.RoleTypeMusician, CrewSet: types.CrewMusicians, CreditTable: "movie_musicians"},
	{Role: types.RolePhotographer, Tag: types.RoleTypePhotographer, CrewSet: types.CrewPhotographers, CreditTable: "movie_photographers"},
	{Role: types.RoleCostumier, Tag: types.RoleTypeCostumier, CrewSet: types.CrewCostumiers, CreditTable: "movie_costumiers"},
	{Role: types.RoleDecorator, Tag: types.RoleTypeDecorator, CrewSet: types.CrewDecorators, CreditTable: "movie_decorators"},
	{Role: types.RoleEditor, Tag: types.RoleTypeEditor, CrewSet: types.CrewEditors, CreditTable: "movie_editors"},
	{Role: types.RoleCaster, Tag: types.RoleTypeCaster, CrewSet: types.CrewCasting, CreditTable: "movie_casters"},
	{Role: types.RoleArtDirector, Tag: types.RoleTypeArtDirector},
	{Role: types.RoleSoundEditor, Tag: types.RoleTypeSoundEditor},
	{Role: types.RoleVisualEffectsSupervisor, Tag: types.RoleTypeVisualEffectsSupervisor},
	{Role: types.RoleMakeupArtist, Tag: types.RoleTypeMakeupArtist},
	{Role: types.RoleHairDresser, Tag: types.RoleTypeHairDresser},
	{Role: types.RoleStuntman, Tag: types.RoleTypeStuntman},
}

// Descriptors returns a copy of all role descriptors in registry order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// DescriptorFor returns the descriptor of a role.
func DescriptorFor(role types.Role) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Role == role {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ForCrewSet returns the descriptor credited through a crew set.
func ForCrewSet(set types.CrewSet) (Descriptor, bool) {
	if set == "" {
		return Descriptor{}, false
	}
	for _, d := range descriptors {
		if d.CrewSet == set {
			return d, true
		}
	}
	return Descriptor{}, false
}

// CrewSets lists the nine crew sets in registry order.
func CrewSets() []types.CrewSet {
	var out []types.CrewSet
	for _, d := range descriptors {
		if d.CrewSet != "" {
			out = append(out, d.CrewSet)
		}
	}
	return out
}
