package resolver

// DefaultToolchainEnvVar is consulted for the toolchain root when the
// workspace does not name its own variable.
const DefaultToolchainEnvVar = "CRATEWELD_SDK_ROOT"

// DefaultToolchainExecutable is searched on PATH when the workspace does
// not name its own executable. A rustup install keeps cargo under
// <root>/bin, so the root sits two levels up.
const DefaultToolchainExecutable = "cargo"

// Probe sources, in resolution order.
const (
	ProbeOverride  = "override"
	ProbeEnv       = "env"
	ProbePath      = "path"
	ProbeWellKnown = "well-known"
)

// ToolchainSpec describes where a toolchain root may be found. Sources are
// consulted in field order and the first hit wins.
type ToolchainSpec struct {
	// Override is an explicit root from a flag, the settings file, or a
	// workspace attribute. When set it is trusted as-is.
	Override string

	// EnvVar names the environment variable holding the root. Empty means
	// DefaultToolchainEnvVar.
	EnvVar string

	// Executable is searched on PATH; the root is two directory levels
	// above the binary (<root>/bin/<executable>). Empty means
	// DefaultToolchainExecutable.
	Executable string

	// ExtraRoots are workspace-declared candidate directories, probed on
	// every platform after the PATH search.
	ExtraRoots []string

	// SDKName selects the well-known install directories probed on
	// Windows as a last resort.
	SDKName string
}

// Probe records one toolchain lookup attempt. The doctor command renders
// the full list so a miss is explainable without rerunning anything.
type Probe struct {
	Source string // ProbeOverride, ProbeEnv, ProbePath or ProbeWellKnown
	Detail string // what was consulted: variable name, executable, directory
	Value  string // the root a hit produced
	Hit    bool
}

// ToolchainRoot resolves the toolchain root. A miss on every source
// returns "": the value is passed through to the external tool, which
// fails loudly on its own if it needed one.
func (r *Resolver) ToolchainRoot(spec ToolchainSpec) (string, []Probe) {
	var probes []Probe

	if spec.Override != "" {
		probes = append(probes, Probe{Source: ProbeOverride, Detail: spec.Override, Value: spec.Override, Hit: true})
		return spec.Override, probes
	}
	probes = append(probes, Probe{Source: ProbeOverride, Detail: "(unset)"})

	envVar := spec.EnvVar
	if envVar == "" {
		envVar = DefaultToolchainEnvVar
	}
	if v, ok := r.LookupEnv(envVar); ok && v != "" {
		probes = append(probes, Probe{Source: ProbeEnv, Detail: envVar, Value: v, Hit: true})
		return v, probes
	}
	probes = append(probes, Probe{Source: ProbeEnv, Detail: envVar})

	executable := spec.Executable
	if executable == "" {
		executable = DefaultToolchainExecutable
	}
	if bin, err := r.LookPath(executable); err == nil {
		root := r.Platform.Dir(r.Platform.Dir(bin))
		probes = append(probes, Probe{Source: ProbePath, Detail: executable, Value: root, Hit: true})
		return root, probes
	}
	probes = append(probes, Probe{Source: ProbePath, Detail: executable})

	for _, dir := range spec.ExtraRoots {
		if r.Exists(dir) {
			probes = append(probes, Probe{Source: ProbeWellKnown, Detail: dir, Value: dir, Hit: true})
			return dir, probes
		}
		probes = append(probes, Probe{Source: ProbeWellKnown, Detail: dir})
	}

	if r.Platform.OS() == "windows" {
		for _, dir := range r.Platform.WellKnownRoots(spec.SDKName) {
			if r.Exists(dir) {
				probes = append(probes, Probe{Source: ProbeWellKnown, Detail: dir, Value: dir, Hit: true})
				return dir, probes
			}
			probes = append(probes, Probe{Source: ProbeWellKnown, Detail: dir})
		}
	}

	return "", probes
}
