package config

// Workfile represents the structure of the affected.work.yaml file.
type Workfile struct {
	Version    string   `yaml:"version"`
	Modules    []string `yaml:"modules"`
	Target     string   `yaml:"target"`
	Mode       string   `yaml:"mode"`
	AlwaysRun  []string `yaml:"alwaysRun"`
	NeverRun   []string `yaml:"neverRun"`
	AllowList  []string `yaml:"allowList"`
	AffectsAll []string `yaml:"affectsAll"`
	Ignored    []string `yaml:"ignored"`
	Debug      bool     `yaml:"debug"`
}

// Modulefile represents the structure of an affected.yaml file.
type Modulefile struct {
	Version   string              `yaml:"version"`
	Module    string              `yaml:"module"`
	DependsOn []string            `yaml:"dependsOn"`
	Tasks     map[string]*TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in a module file.
type TaskDTO struct {
	Cmd         []string          `yaml:"cmd"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}
