package domain

// Module is a unit of the multi-module build: an identity, the directory it owns,
// and the modules it depends on.
type Module struct {
	ID           InternedString
	Dir          string
	Dependencies []InternedString
	Tasks        map[string]Task
}

// Task is a command a module can run, looked up by name when the module is affected.
type Task struct {
	Name        InternedString
	Command     []string
	Environment map[string]string
	WorkingDir  string
}

// Task returns the module's task with the given name.
func (m Module) Task(name string) (Task, bool) {
	t, ok := m.Tasks[name]
	return t, ok
}
