package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/utils"
)

// =============================================================================
// CATALOG ENTITIES
// =============================================================================

// Movie is the catalog's aggregate root. Crew sets, genres and countries are
// shared references; role assignments and awards are owned rows.
type Movie struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string     `gorm:"not null;uniqueIndex:idx_movies_title_original" json:"title"`
	OriginalTitle string     `gorm:"not null;default:'';uniqueIndex:idx_movies_title_original" json:"original_title"`
	SearchTitle   string     `gorm:"index" json:"-"`
	Synopsis      string     `gorm:"type:text" json:"synopsis"`
	ReleaseDate   *time.Time `gorm:"index" json:"release_date,omitempty"`
	Runtime       *int       `json:"runtime,omitempty"` // minutes
	Budget        *int64     `json:"budget,omitempty"`
	BoxOffice     *int64     `json:"box_office,omitempty"`
	Poster        *string    `gorm:"uniqueIndex" json:"poster,omitempty"`
	UserID        *string    `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Crew sets
	Producers     []Person `gorm:"many2many:movie_producers;" json:"producers,omitempty"`
	Directors     []Person `gorm:"many2many:movie_directors;" json:"directors,omitempty"`
	Screenwriters []Person `gorm:"many2many:movie_screenwriters;" json:"screenwriters,omitempty"`
	Musicians     []Person `gorm:"many2many:movie_musicians;" json:"musicians,omitempty"`
	Photographers []Person `gorm:"many2many:movie_photographers;" json:"photographers,omitempty"`
	Costumiers    []Person `gorm:"many2many:movie_costumiers;" json:"costumiers,omitempty"`
	Decorators    []Person `gorm:"many2many:movie_decorators;" json:"decorators,omitempty"`
	Editors       []Person `gorm:"many2many:movie_editors;" json:"editors,omitempty"`
	Casters       []Person `gorm:"many2many:movie_casters;" json:"casters,omitempty"`

	RoleAssignments []RoleAssignment `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"role_assignments,omitempty"`
	Genres          []Genre          `gorm:"many2many:movie_genres;" json:"genres,omitempty"`
	Countries       []Country        `gorm:"many2many:movie_countries;" json:"countries,omitempty"`
	Awards          []Award          `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"awards,omitempty"`

	// Projections filled by list queries
	AwardCount int64 `gorm:"->;-:migration" json:"award_count"`
}

// Person is anyone credited on a movie, in any role.
type Person struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	SearchName string     `gorm:"index" json:"-"`
	BirthDate  *time.Time `gorm:"index" json:"birth_date,omitempty"`
	DeathDate  *time.Time `gorm:"index" json:"death_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	RoleTypes []PersonRoleType `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"role_types,omitempty"`
	Countries []Country        `gorm:"many2many:person_countries;" json:"countries,omitempty"`
	Awards    []Award          `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"awards,omitempty"`

	MovieCount int64 `gorm:"->;-:migration" json:"movie_count"`
	AwardCount int64 `gorm:"->;-:migration" json:"award_count"`
}

// PersonRoleType tags a person with a capacity they have been credited in.
type PersonRoleType struct {
	PersonID string `gorm:"type:varchar(36);primaryKey" json:"person_id"`
	RoleType string `gorm:"type:varchar(40);primaryKey;index" json:"role_type"`
}

// RoleAssignment is a cast credit: a person playing a named character.
type RoleAssignment struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	MovieID       string    `gorm:"type:varchar(36);not null;index" json:"movie_id"`
	PersonID      string    `gorm:"type:varchar(36);not null;index" json:"person_id"`
	CharacterName *string   `json:"character_name,omitempty"`
	Person        *Person   `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Award belongs to exactly one of a movie or a person.
type Award struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	SearchName string    `gorm:"index" json:"-"`
	Year       *int      `gorm:"index" json:"year,omitempty"`
	MovieID    *string   `gorm:"type:varchar(36);index" json:"movie_id,omitempty"`
	PersonID   *string   `gorm:"type:varchar(36);index" json:"person_id,omitempty"`
	CeremonyID *string   `gorm:"type:varchar(36);index" json:"ceremony_id,omitempty"`
	Ceremony   *Ceremony `gorm:"foreignKey:CeremonyID" json:"ceremony,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ceremony groups awards handed out at the same event.
type Ceremony struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	SearchName string    `gorm:"index" json:"-"`
	Year       *int      `json:"year,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	AwardCount int64 `gorm:"->;-:migration" json:"award_count"`
}

type Genre struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"not null;uniqueIndex" json:"name"`
	SearchName string    `gorm:"index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	MovieCount int64 `gorm:"->;-:migration" json:"movie_count"`
}

type Country struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"not null;uniqueIndex" json:"name"`
	Code       *string   `gorm:"type:varchar(2);uniqueIndex" json:"code,omitempty"` // ISO 3166-1 alpha-2
	SearchName string    `gorm:"index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	MovieCount int64 `gorm:"->;-:migration" json:"movie_count"`
}

// User is the account that registered catalog entries.
type User struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	SearchName string    `gorm:"index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	MovieCount int64 `gorm:"->;-:migration" json:"movie_count"`
}

// AllModels lists every table the catalog migrates, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Genre{},
		&Country{},
		&Ceremony{},
		&Person{},
		&PersonRoleType{},
		&Movie{},
		&RoleAssignment{},
		&Award{},
	}
}

// =============================================================================
// HOOKS
// =============================================================================

func assignID(id *string) {
	if *id == "" {
		*id = utils.GenerateUUID()
	}
}

func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (m *Movie) BeforeSave(tx *gorm.DB) error {
	m.SearchTitle = utils.Fold(m.Title + " " + m.OriginalTitle)
	return nil
}

func (p *Person) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *Person) BeforeSave(tx *gorm.DB) error {
	p.SearchName = utils.Fold(p.Name)
	return nil
}

func (r *RoleAssignment) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (a *Award) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *Award) BeforeSave(tx *gorm.DB) error {
	a.SearchName = utils.Fold(a.Name)
	return nil
}

func (c *Ceremony) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (c *Ceremony) BeforeSave(tx *gorm.DB) error {
	c.SearchName = utils.Fold(c.Name)
	return nil
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	assignID(&g.ID)
	return nil
}

func (g *Genre) BeforeSave(tx *gorm.DB) error {
	g.SearchName = utils.Fold(g.Name)
	return nil
}

func (c *Country) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (c *Country) BeforeSave(tx *gorm.DB) error {
	c.SearchName = utils.Fold(c.Name)
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.SearchName = utils.Fold(u.Username)
	return nil
}
