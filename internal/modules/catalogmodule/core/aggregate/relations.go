// Package aggregate manages a movie's relationship sets: the nine crew
// sets, genres, countries, awards and cast role assignments.
//
// Changes follow a two-phase contract. Store.Load materializes every set
// into a Relations handle; mutators edit the handle in memory; Store.Commit
// writes the difference in one transaction. Store.Update does all three
// inside a single transaction.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/utils"
)

// AwardInput describes an award to attach to the movie.
type AwardInput struct {
	Name       string  `json:"name"`
	Year       *int    `json:"year,omitempty"`
	CeremonyID *string `json:"ceremony_id,omitempty"`
}

func (a AwardInput) key() string {
	k := utils.Fold(a.Name) + "\x00"
	if a.Year != nil {
		k += strconv.Itoa(*a.Year)
	}
	k += "\x00"
	if a.CeremonyID != nil {
		k += *a.CeremonyID
	}
	return k
}

// AssignmentInput describes a cast credit.
type AssignmentInput struct {
	PersonID      string  `json:"person_id"`
	CharacterName *string `json:"character_name,omitempty"`
}

func (a AssignmentInput) key() string {
	k := a.PersonID + "\x00"
	if a.CharacterName != nil {
		k += *a.CharacterName
	}
	return k
}

type idSet map[string]struct{}

func newIDSet(ids ...string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s idSet) clone() idSet {
	c := make(idSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// minus returns the ids in s that are not in other, sorted.
func (s idSet) minus(other idSet) []string {
	var out []string
	for id := range s {
		if _, ok := other[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

type state struct {
	crew        map[types.CrewSet]idSet
	genres      idSet
	countries   idSet
	awards      map[string]database.Award
	assignments map[string]database.RoleAssignment
}

func newState() state {
	s := state{
		crew:        make(map[types.CrewSet]idSet),
		genres:      idSet{},
		countries:   idSet{},
		awards:      make(map[string]database.Award),
		assignments: make(map[string]database.RoleAssignment),
	}
	for _, set := range roles.CrewSets() {
		s.crew[set] = idSet{}
	}
	return s
}

func (s state) clone() state {
	c := state{
		crew:        make(map[types.CrewSet]idSet, len(s.crew)),
		genres:      s.genres.clone(),
		countries:   s.countries.clone(),
		awards:      make(map[string]database.Award, len(s.awards)),
		assignments: make(map[string]database.RoleAssignment, len(s.assignments)),
	}
	for set, ids := range s.crew {
		c.crew[set] = ids.clone()
	}
	for id, a := range s.awards {
		c.awards[id] = a
	}
	for id, a := range s.assignments {
		c.assignments[id] = a
	}
	return c
}

// Relations is a loaded, mutable view of one movie's relationship sets.
// A handle is not safe for concurrent use. The first failing mutator
// poisons it: later mutators return the same error and Commit writes
// nothing.
type Relations struct {
	movieID string
	loaded  state
	current state
	err     error
}

func newRelations(movieID string, loaded state) *Relations {
	return &Relations{movieID: movieID, loaded: loaded, current: loaded.clone()}
}

func (r *Relations) MovieID() string {
	return r.movieID
}

// Err returns the error that poisoned the handle, if any.
func (r *Relations) Err() error {
	return r.err
}

func (r *Relations) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return r.err
}

func (r *Relations) crewSet(op string, set types.CrewSet) (idSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	ids, ok := r.current.crew[set]
	if !ok {
		return nil, r.fail(catalogerrors.ValidationError(op, "unknown crew set %q", set).WithID(r.movieID))
	}
	return ids, nil
}

func (r *Relations) checkIDs(op, what string, ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return r.fail(catalogerrors.ValidationError(op, "%s id is required", what).WithID(r.movieID))
		}
	}
	return nil
}

// Crew returns the person ids in a crew set, sorted.
func (r *Relations) Crew(set types.CrewSet) []string {
	return r.current.crew[set].sorted()
}

// ReplaceCrew makes personIDs the whole crew set.
func (r *Relations) ReplaceCrew(set types.CrewSet, personIDs []string) error {
	const op = "replace_crew"
	if _, err := r.crewSet(op, set); err != nil {
		return err
	}
	if err := r.checkIDs(op, "person", personIDs...); err != nil {
		return err
	}
	r.current.crew[set] = newIDSet(personIDs...)
	return nil
}

// AddCrew adds a person to a crew set; adding a member again is a no-op.
func (r *Relations) AddCrew(set types.CrewSet, personID string) error {
	const op = "add_crew"
	ids, err := r.crewSet(op, set)
	if err != nil {
		return err
	}
	if err := r.checkIDs(op, "person", personID); err != nil {
		return err
	}
	ids[personID] = struct{}{}
	return nil
}

// RemoveCrew removes a person from a crew set; absent ids are a no-op.
func (r *Relations) RemoveCrew(set types.CrewSet, personID string) error {
	ids, err := r.crewSet("remove_crew", set)
	if err != nil {
		return err
	}
	delete(ids, personID)
	return nil
}

func (r *Relations) Genres() []string {
	return r.current.genres.sorted()
}

func (r *Relations) ReplaceGenres(genreIDs []string) error {
	if r.err != nil {
		return r.err
	}
	if err := r.checkIDs("replace_genres", "genre", genreIDs...); err != nil {
		return err
	}
	r.current.genres = newIDSet(genreIDs...)
	return nil
}

func (r *Relations) AddGenre(genreID string) error {
	if r.err != nil {
		return r.err
	}
	if err := r.checkIDs("add_genre", "genre", genreID); err != nil {
		return err
	}
	r.current.genres[genreID] = struct{}{}
	return nil
}

func (r *Relations) RemoveGenre(genreID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.current.genres, genreID)
	return nil
}

func (r *Relations) Countries() []string {
	return r.current.countries.sorted()
}

func (r *Relations) ReplaceCountries(countryIDs []string) error {
	if r.err != nil {
		return r.err
	}
	if err := r.checkIDs("replace_countries", "country", countryIDs...); err != nil {
		return err
	}
	r.current.countries = newIDSet(countryIDs...)
	return nil
}

func (r *Relations) AddCountry(countryID string) error {
	if r.err != nil {
		return r.err
	}
	if err := r.checkIDs("add_country", "country", countryID); err != nil {
		return err
	}
	r.current.countries[countryID] = struct{}{}
	return nil
}

func (r *Relations) RemoveCountry(countryID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.current.countries, countryID)
	return nil
}

// Awards returns the movie's awards ordered by name, then id.
func (r *Relations) Awards() []database.Award {
	out := make([]database.Award, 0, len(r.current.awards))
	for _, a := range r.current.awards {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Relations) validateAward(op string, in AwardInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return r.fail(catalogerrors.ValidationError(op, "award name is required").WithID(r.movieID))
	}
	if in.Year != nil && *in.Year <= 0 {
		return r.fail(catalogerrors.ValidationError(op, "award year %d is not positive", *in.Year).WithID(r.movieID))
	}
	if in.CeremonyID != nil && strings.TrimSpace(*in.CeremonyID) == "" {
		return r.fail(catalogerrors.ValidationError(op, "ceremony id is empty").WithID(r.movieID))
	}
	return nil
}

func (r *Relations) awardByKey(key string) (database.Award, bool) {
	for _, a := range r.current.awards {
		if awardKey(a) == key {
			return a, true
		}
	}
	return database.Award{}, false
}

func awardKey(a database.Award) string {
	return AwardInput{Name: a.Name, Year: a.Year, CeremonyID: a.CeremonyID}.key()
}

func (r *Relations) newAward(in AwardInput) database.Award {
	movieID := r.movieID
	return database.Award{
		ID:         utils.GenerateUUID(),
		Name:       strings.TrimSpace(in.Name),
		Year:       in.Year,
		MovieID:    &movieID,
		CeremonyID: in.CeremonyID,
	}
}

// ReplaceAwards makes inputs the movie's whole award set. Awards equal to
// an existing one (same name, year and ceremony) keep their identity.
func (r *Relations) ReplaceAwards(inputs []AwardInput) error {
	const op = "replace_awards"
	if r.err != nil {
		return r.err
	}
	for _, in := range inputs {
		if err := r.validateAward(op, in); err != nil {
			return err
		}
	}

	next := make(map[string]database.Award, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		key := in.key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		award, ok := r.awardByKey(key)
		if !ok {
			award = r.newAward(in)
		}
		next[award.ID] = award
	}
	r.current.awards = next
	return nil
}

// AddAward attaches an award and returns its id. Adding an award equal to
// an existing one returns the existing id.
func (r *Relations) AddAward(in AwardInput) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if err := r.validateAward("add_award", in); err != nil {
		return "", err
	}
	if existing, ok := r.awardByKey(in.key()); ok {
		return existing.ID, nil
	}
	award := r.newAward(in)
	r.current.awards[award.ID] = award
	return award.ID, nil
}

func (r *Relations) RemoveAward(awardID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.current.awards, awardID)
	return nil
}

// RoleAssignments returns the cast credits ordered by person, then id.
func (r *Relations) RoleAssignments() []database.RoleAssignment {
	out := make([]database.RoleAssignment, 0, len(r.current.assignments))
	for _, a := range r.current.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PersonID != out[j].PersonID {
			return out[i].PersonID < out[j].PersonID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Relations) validateAssignment(op string, in AssignmentInput) error {
	if strings.TrimSpace(in.PersonID) == "" {
		return r.fail(catalogerrors.ValidationError(op, "person id is required").WithID(r.movieID))
	}
	if in.CharacterName != nil && strings.TrimSpace(*in.CharacterName) == "" {
		return r.fail(catalogerrors.ValidationError(op, "character name is empty").WithID(r.movieID).WithField("character_name"))
	}
	return nil
}

func (r *Relations) assignmentByKey(key string) (database.RoleAssignment, bool) {
	for _, a := range r.current.assignments {
		if assignmentKey(a) == key {
			return a, true
		}
	}
	return database.RoleAssignment{}, false
}

func assignmentKey(a database.RoleAssignment) string {
	return AssignmentInput{PersonID: a.PersonID, CharacterName: a.CharacterName}.key()
}

func (r *Relations) newAssignment(in AssignmentInput) database.RoleAssignment {
	var character *string
	if in.CharacterName != nil {
		name := strings.TrimSpace(*in.CharacterName)
		character = &name
	}
	return database.RoleAssignment{
		ID:            utils.GenerateUUID(),
		MovieID:       r.movieID,
		PersonID:      in.PersonID,
		CharacterName: character,
	}
}

func normalizeAssignment(in AssignmentInput) AssignmentInput {
	if in.CharacterName != nil {
		name := strings.TrimSpace(*in.CharacterName)
		in.CharacterName = &name
	}
	return in
}

// ReplaceRoleAssignments makes inputs the movie's whole cast.
func (r *Relations) ReplaceRoleAssignments(inputs []AssignmentInput) error {
	const op = "replace_role_assignments"
	if r.err != nil {
		return r.err
	}
	for _, in := range inputs {
		if err := r.validateAssignment(op, in); err != nil {
			return err
		}
	}

	next := make(map[string]database.RoleAssignment, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		in = normalizeAssignment(in)
		key := in.key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		assignment, ok := r.assignmentByKey(key)
		if !ok {
			assignment = r.newAssignment(in)
		}
		next[assignment.ID] = assignment
	}
	r.current.assignments = next
	return nil
}

// AddRoleAssignment adds a cast credit and returns its id; an identical
// credit (same person and character) is returned instead of duplicated.
func (r *Relations) AddRoleAssignment(in AssignmentInput) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if err := r.validateAssignment("add_role_assignment", in); err != nil {
		return "", err
	}
	in = normalizeAssignment(in)
	if existing, ok := r.assignmentByKey(in.key()); ok {
		return existing.ID, nil
	}
	assignment := r.newAssignment(in)
	r.current.assignments[assignment.ID] = assignment
	return assignment.ID, nil
}

func (r *Relations) RemoveRoleAssignment(assignmentID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.current.assignments, assignmentID)
	return nil
}
