package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix is prepended to every override key when read from the environment.
const EnvPrefix = "AFFECTED"

// Override keys. Each one is read from a flag of the same name or from
// AFFECTED_<KEY> in the environment.
const (
	KeyTarget   = "target"
	KeyMode     = "mode"
	KeyProjects = "projects"
	KeyAll      = "all"
	KeyDebug    = "debug"
	KeyBase     = "base"
	KeyHead     = "head"
	KeyCompare  = "compare"
	KeyArgs     = "args"
)

var overrideKeys = []string{KeyTarget, KeyMode, KeyProjects, KeyAll, KeyDebug, KeyBase, KeyHead, KeyCompare, KeyArgs}

// Overrides are operator-supplied values layered over the workfile.
// A flag wins over the environment, which wins over the workfile.
type Overrides struct {
	Target   string
	Mode     string
	Projects []string
	All      bool
	Debug    bool
	Base     string
	Head     string
	Compare  string
	// Args are appended to every task command run for an affected module.
	Args []string
}

// NewViper returns a viper instance reading AFFECTED_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range overrideKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// BindFlags binds every override flag present in flags to v. Flags that were
// not set on the command line do not shadow the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range overrideKeys {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to bind flag"), "flag", key)
		}
	}
	return nil
}

// ReadOverrides collects the current override values from v.
func ReadOverrides(v *viper.Viper) Overrides {
	return Overrides{
		Target:   strings.TrimSpace(v.GetString(KeyTarget)),
		Mode:     strings.TrimSpace(v.GetString(KeyMode)),
		Projects: splitList(v.GetStringSlice(KeyProjects)),
		All:      v.GetBool(KeyAll),
		Debug:    v.GetBool(KeyDebug),
		Base:     strings.TrimSpace(v.GetString(KeyBase)),
		Head:     strings.TrimSpace(v.GetString(KeyHead)),
		Compare:  strings.TrimSpace(v.GetString(KeyCompare)),
		Args:     strings.Fields(v.GetString(KeyArgs)),
	}
}

// Apply returns cfg with every set override replacing the workfile value.
// Projects replaces the allow list. Debug can only be switched on.
func (o Overrides) Apply(cfg domain.Config) domain.Config {
	if o.Target != "" {
		cfg.TargetTask = o.Target
	}
	if o.Mode != "" {
		cfg.Mode = domain.Mode(o.Mode)
	}
	if len(o.Projects) > 0 {
		cfg.AllowList = domain.NewInternedStrings(o.Projects)
	}
	if o.Debug {
		cfg.Debug = true
	}
	return cfg
}

// ChangeRequest builds the request for the change source rooted at root.
func (o Overrides) ChangeRequest(root string) (domain.ChangeRequest, error) {
	mode, err := domain.ParseCompareMode(o.Compare)
	if err != nil {
		return domain.ChangeRequest{}, err
	}
	return domain.ChangeRequest{
		Root:        root,
		PreviousRef: o.Base,
		CurrentRef:  o.Head,
		Mode:        mode,
		ForceAll:    o.All,
	}, nil
}

// splitList accepts both repeated values and comma separated lists.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
