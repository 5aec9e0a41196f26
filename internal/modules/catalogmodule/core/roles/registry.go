package roles

import (
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// Binding is the repository/service pair serving one role.
type Binding struct {
	Descriptor Descriptor
	Repository types.PersonRepository
	Service    types.PersonService
}

// Factory builds the binding for one role.
type Factory func(d Descriptor) Binding

// Registry maps role identifiers to their bindings. It is filled once by
// NewRegistry and only read afterwards, so lookups need no locking.
type Registry struct {
	bindings map[types.Role]Binding
	order    []types.Role
}

// NewRegistry calls build once per role descriptor.
func NewRegistry(build Factory) *Registry {
	r := &Registry{
		bindings: make(map[types.Role]Binding, len(descriptors)),
		order:    make([]types.Role, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		b := build(d)
		b.Descriptor = d
		r.bindings[d.Role] = b
		r.order = append(r.order, d.Role)
	}
	return r
}

// Lookup returns the binding for role or ErrUnknownRole.
func (r *Registry) Lookup(role types.Role) (Binding, error) {
	b, ok := r.bindings[role]
	if !ok {
		return Binding{}, catalogerrors.UnknownRole("lookup_role", string(role))
	}
	return b, nil
}

// Service is Lookup narrowed to the service.
func (r *Registry) Service(role types.Role) (types.PersonService, error) {
	b, err := r.Lookup(role)
	if err != nil {
		return nil, err
	}
	return b.Service, nil
}

// Roles lists the registered roles in a stable order.
func (r *Registry) Roles() []types.Role {
	out := make([]types.Role, len(r.order))
	copy(out, r.order)
	return out
}
