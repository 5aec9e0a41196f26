package types

import "context"

// EntityType names a listable catalog entity.
type EntityType string

const (
	EntityMovie    EntityType = "movie"
	EntityPerson   EntityType = "person"
	EntityGenre    EntityType = "genre"
	EntityCountry  EntityType = "country"
	EntityAward    EntityType = "award"
	EntityCeremony EntityType = "ceremony"
	EntityUser     EntityType = "user"
)

// Action is what happened to an entity, as reported to observers.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionRelations Action = "relations"
)

// Observer is called after a successful commit.
type Observer func(ctx context.Context, action Action, id string)

// Page is one page of a list result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// NewPage assembles a page and derives the page count.
func NewPage[T any](items []T, total int64, page, size int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return &Page[T]{Items: items, Total: total, Page: page, Size: size, Pages: pages}
}
