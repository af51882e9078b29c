// Package matrix expands the configured axes into concrete build variants.
package matrix

import (
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

// Expand enumerates os × task set × daemon mode in declaration order.
// Every OS must have a path for every declared JDK.
func Expand(cfg *domain.Config) ([]domain.Variant, error) {
	m := cfg.Matrix
	if len(m.OS) == 0 {
		return nil, zerr.Wrap(domain.ErrConfiguration, "matrix declares no operating systems")
	}
	if len(m.JDKs) == 0 {
		return nil, zerr.Wrap(domain.ErrConfiguration, "matrix declares no JDKs")
	}
	if len(m.TaskSets) == 0 {
		return nil, zerr.Wrap(domain.ErrConfiguration, "matrix declares no task sets")
	}

	homes := make(map[domain.OS][]domain.JavaHome, len(m.OS))
	for _, os := range m.OS {
		h, err := javaHomes(os, m.JDKs)
		if err != nil {
			return nil, err
		}
		homes[os] = h
	}

	daemonModes := m.DaemonModes
	if len(daemonModes) == 0 {
		daemonModes = []bool{cfg.Flags.Daemon}
	}

	variants := make([]domain.Variant, 0, len(m.OS)*len(m.TaskSets)*len(daemonModes))
	for _, os := range m.OS {
		for _, ts := range m.TaskSets {
			for _, daemon := range daemonModes {
				variants = append(variants, domain.NewVariant(os, ts.Name, ts.Tasks, daemon, homes[os]))
			}
		}
	}
	return variants, nil
}

func javaHomes(os domain.OS, jdks []domain.JDK) ([]domain.JavaHome, error) {
	out := make([]domain.JavaHome, 0, len(jdks))
	for _, jdk := range jdks {
		path, ok := jdk.Paths[os]
		if !ok || path == "" {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfiguration, "JDK has no path for operating system"),
				"os", os.String()), "jdk", jdk.Name)
		}
		out = append(out, domain.JavaHome{Name: jdk.Name, Property: jdk.Property, Path: path})
	}
	return out, nil
}

// Select returns the variants matched by selector, keeping their order.
// An empty selection is a configuration error.
func Select(variants []domain.Variant, selector domain.VariantSelector) ([]domain.Variant, error) {
	var out []domain.Variant
	for _, v := range variants {
		if selector.Matches(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, zerr.Wrap(domain.ErrConfiguration, "variant selector matches nothing")
	}
	return out, nil
}
