package command

import "sort"

// Registry stores commands by name. It does not dispatch; the router looks
// commands up and invokes them.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c, replacing any command with the same name.
// It returns the replaced command, if there was one.
func (r *Registry) Register(c Command) (Command, bool) {
	prev, replaced := r.commands[c.Name]
	r.commands[c.Name] = c
	return prev, replaced
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (r *Registry) Len() int {
	return len(r.commands)
}
