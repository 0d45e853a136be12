// Package schema is the declarative catalog of bridge actions: for each
// action, the backend method it maps to, its parameter contract, and its
// result shape. The registry is pure data plus pure functions; it performs no
// I/O and is immutable once built, so concurrent readers need no locking.
package schema

import "fmt"

// Param describes one parameter of an action.
type Param struct {
	Type        string
	Description string
	Required    bool
	// Default is injected when the caller omits the parameter. A nil
	// Default means the parameter is simply passed through when present.
	Default any
}

// Returns describes the result shape of an action.
type Returns struct {
	Type        string
	Description string
	// Item names the element shape for array results.
	Item string
}

// Action describes one dispatchable bridge action.
type Action struct {
	Name        string
	Method      string
	Description string
	Params      map[string]Param
	Returns     Returns
}

// NotFoundError reports a lookup for an action the registry does not declare.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema: unknown action %q", e.Name)
}

// MissingParamError reports a required parameter with no supplied value and
// no default. It is raised before any network call is attempted.
type MissingParamError struct {
	Action string
	Param  string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("schema: action %q requires parameter %q", e.Action, e.Param)
}

// Registry is the immutable action table.
type Registry struct {
	byName map[string]*Action
	order  []string
}

// NewRegistry builds a Registry from the given actions. Duplicate names
// panic: the table is assembled once at startup from static declarations,
// and a collision there is a programming error.
func NewRegistry(actions ...Action) *Registry {
	r := &Registry{byName: make(map[string]*Action, len(actions))}
	for i := range actions {
		a := actions[i]
		if _, dup := r.byName[a.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate action %q", a.Name))
		}
		r.byName[a.Name] = &a
		r.order = append(r.order, a.Name)
	}
	return r
}

// Describe returns the descriptor for name.
func (r *Registry) Describe(name string) (*Action, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return a, nil
}

// ApplyDefaults merges supplied parameters with the action's declared
// defaults. Caller values win on collision; declared defaults fill the gaps;
// a required parameter with neither fails. The supplied map is not mutated.
func (r *Registry) ApplyDefaults(name string, supplied map[string]any) (map[string]any, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	merged := make(map[string]any, len(supplied)+len(a.Params))
	for k, v := range supplied {
		merged[k] = v
	}
	for pname, p := range a.Params {
		if _, ok := merged[pname]; ok {
			continue
		}
		if p.Default != nil {
			merged[pname] = p.Default
			continue
		}
		if p.Required {
			return nil, &MissingParamError{Action: name, Param: pname}
		}
	}
	return merged, nil
}

// List enumerates all descriptors in registration order. The order is stable
// but carries no meaning beyond giving introspection a deterministic output.
func (r *Registry) List() []*Action {
	out := make([]*Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
