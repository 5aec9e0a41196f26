package types

// Role identifies one of the sixteen capacities a person can be credited in.
type Role string

const (
	RoleActor                   Role = "actor"
	RoleProducer                Role = "producer"
	RoleDirector                Role = "director"
	RoleScreenwriter            Role = "screenwriter"
	RoleMusician                Role = "musician"
	RolePhotographer            Role = "photographer"
	RoleCostumier               Role = "costumier"
	RoleDecorator               Role = "decorator"
	RoleEditor                  Role = "editor"
	RoleCaster                  Role = "caster"
	RoleArtDirector             Role = "art-director"
	RoleSoundEditor             Role = "sound-editor"
	RoleVisualEffectsSupervisor Role = "visual-effects-supervisor"
	RoleMakeupArtist            Role = "makeup-artist"
	RoleHairDresser             Role = "hair-dresser"
	RoleStuntman                Role = "stuntman"
)

// RoleType is the tag stored on a person for each capacity they were
// credited in.
type RoleType string

const (
	RoleTypeActor                   RoleType = "ACTOR"
	RoleTypeProducer                RoleType = "PRODUCER"
	RoleTypeDirector                RoleType = "DIRECTOR"
	RoleTypeScreenwriter            RoleType = "SCREENWRITER"
	RoleTypeMusician                RoleType = "MUSICIAN"
	RoleTypePhotographer            RoleType = "PHOTOGRAPHER"
	RoleTypeCostumier               RoleType = "COSTUMIER"
	RoleTypeDecorator               RoleType = "DECORATOR"
	RoleTypeEditor                  RoleType = "EDITOR"
	RoleTypeCaster                  RoleType = "CASTER"
	RoleTypeArtDirector             RoleType = "ART_DIRECTOR"
	RoleTypeSoundEditor             RoleType = "SOUND_EDITOR"
	RoleTypeVisualEffectsSupervisor RoleType = "VISUAL_EFFECTS_SUPERVISOR"
	RoleTypeMakeupArtist            RoleType = "MAKEUP_ARTIST"
	RoleTypeHairDresser             RoleType = "HAIR_DRESSER"
	RoleTypeStuntman                RoleType = "STUNTMAN"
)

var roleTypes = map[RoleType]struct{}{
	RoleTypeActor: {}, RoleTypeProducer: {}, RoleTypeDirector: {}, RoleTypeScreenwriter: {},
	RoleTypeMusician: {}, RoleTypePhotographer: {}, RoleTypeCostumier: {}, RoleTypeDecorator: {},
	RoleTypeEditor: {}, RoleTypeCaster: {}, RoleTypeArtDirector: {}, RoleTypeSoundEditor: {},
	RoleTypeVisualEffectsSupervisor: {}, RoleTypeMakeupArtist: {}, RoleTypeHairDresser: {},
	RoleTypeStuntman: {},
}

// Valid reports whether t is one of the known tags.
func (t RoleType) Valid() bool {
	_, ok := roleTypes[t]
	return ok
}

// CrewSet names one of the movie's nine crew-role association sets.
type CrewSet string

const (
	CrewProducers     CrewSet = "producers"
	CrewDirectors     CrewSet = "directors"
	CrewScreenwriters CrewSet = "screenwriters"
	CrewMusicians     CrewSet = "musicians"
	CrewPhotographers CrewSet = "photographers"
	CrewCostumiers    CrewSet = "costumiers"
	CrewDecorators    CrewSet = "decorators"
	CrewEditors       CrewSet = "editors"
	CrewCasting       CrewSet = "casting"
)
