package domain

import "slices"

// JavaHome binds a JDK to the system property Gradle reads its location from.
type JavaHome struct {
	Name     string
	Property string
	Path     string
}

// Variant is one concrete build configuration: OS, JDK homes, task set and daemon mode.
// It is immutable once constructed; accessors return copies.
type Variant struct {
	os        OS
	javaHomes []JavaHome
	daemon    bool
	taskSet   string
	tasks     []string
}

// NewVariant creates a Variant, copying the provided slices.
func NewVariant(os OS, taskSet string, tasks []string, daemon bool, javaHomes []JavaHome) Variant {
	return Variant{
		os:        os,
		javaHomes: slices.Clone(javaHomes),
		daemon:    daemon,
		taskSet:   taskSet,
		tasks:     slices.Clone(tasks),
	}
}

// OS returns the agent operating system.
func (v Variant) OS() OS {
	return v.os
}

// Daemon reports whether the Gradle daemon is enabled.
func (v Variant) Daemon() bool {
	return v.daemon
}

// TaskSet returns the name of the task set the variant was expanded from.
func (v Variant) TaskSet() string {
	return v.taskSet
}

// Tasks returns the ordered task list.
func (v Variant) Tasks() []string {
	return slices.Clone(v.tasks)
}

// JavaHomes returns the JDK homes for the variant OS in declaration order.
func (v Variant) JavaHomes() []JavaHome {
	return slices.Clone(v.javaHomes)
}

// JavaHome looks up a JDK home by name.
func (v Variant) JavaHome(name string) (JavaHome, bool) {
	for _, h := range v.javaHomes {
		if h.Name == name {
			return h, true
		}
	}
	return JavaHome{}, false
}

// Name returns a stable identifier such as "linux_quick" or "windows_quick_nodaemon".
func (v Variant) Name() string {
	name := v.os.String() + "_" + v.taskSet
	if !v.daemon {
		name += "_nodaemon"
	}
	return name
}

// Equal reports whether two variants describe the same build configuration.
func (v Variant) Equal(o Variant) bool {
	return v.os == o.os &&
		v.daemon == o.daemon &&
		v.taskSet == o.taskSet &&
		slices.Equal(v.tasks, o.tasks) &&
		slices.Equal(v.javaHomes, o.javaHomes)
}
