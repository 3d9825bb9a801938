package keyguard

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// EnvironmentProbe inspects the running process for debuggers and
// instrumentation. Both checks are point-in-time and advisory.
type EnvironmentProbe interface {
	// DebuggerAttached reports whether another tracer is attached to the process.
	DebuggerAttached(ctx context.Context) bool

	// AnalysisToolsPresent reports whether any known analysis tool is installed.
	AnalysisToolsPresent(ctx context.Context) bool
}

// RootProbe is implemented by probes that can look for root indicators.
type RootProbe interface {
	RootIndicatorsPresent(ctx context.Context) bool
}

// DebuggerMethod selects how HostProbe looks for a tracer.
type DebuggerMethod string

const (
	// DebuggerTracerPID reads TracerPid from /proc/self/status.
	DebuggerTracerPID DebuggerMethod = "tracerpid"

	// DebuggerSelfTrace has a short-lived helper process try to trace this
	// one; a refusal means a tracer is attached. It costs a fork and exec.
	DebuggerSelfTrace DebuggerMethod = "selftrace"

	// DebuggerAll reads TracerPid and falls back to the self-trace attempt.
	// It is the default.
	DebuggerAll DebuggerMethod = "all"
)

// ParseDebuggerMethod converts a settings value into a DebuggerMethod.
// An empty string selects DebuggerAll.
func ParseDebuggerMethod(s string) (DebuggerMethod, error) {
	switch m := DebuggerMethod(s); m {
	case "":
		return DebuggerAll, nil
	case DebuggerTracerPID, DebuggerSelfTrace, DebuggerAll:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown debugger method %q", ErrInvalidSettings, s)
	}
}

// HostProbe is the EnvironmentProbe for the current host. The zero value
// uses DefaultToolPaths, RootIndicatorPaths and DebuggerAll.
// A HostProbe is safe for concurrent use once configured.
type HostProbe struct {
	// ToolPaths replaces DefaultToolPaths when non-nil.
	ToolPaths []string

	// RootPaths replaces RootIndicatorPaths when non-nil.
	RootPaths []string

	// PropertyFiles replaces DefaultPropertyFiles when non-nil.
	PropertyFiles []string

	// Method selects the debugger check.
	Method DebuggerMethod

	// Logger receives detection details. Nil means logrus.StandardLogger().
	Logger *logrus.Logger

	statusPath string
}

// Compile-time interface checks.
var (
	_ EnvironmentProbe = (*HostProbe)(nil)
	_ RootProbe        = (*HostProbe)(nil)
	_ EmulatorProbe    = (*HostProbe)(nil)
)

// DebuggerAttached implements EnvironmentProbe. A debugger that attaches
// after the call returns is not seen.
func (p *HostProbe) DebuggerAttached(ctx context.Context) bool {
	log := loggerOrDefault(p.Logger)
	method := p.Method
	if method == "" {
		method = DebuggerAll
	}

	if method == DebuggerTracerPID || method == DebuggerAll {
		path := p.statusPath
		if path == "" {
			path = procSelfStatus
		}
		pid, err := tracerPID(path)
		switch {
		case err != nil:
			log.WithFields(operationFields("probe.debugger", logrus.Fields{
				"method": DebuggerTracerPID,
				"error":  err.Error(),
			})).Debug("TracerPid unavailable")
		case pid != 0:
			log.WithFields(operationFields("probe.debugger", logrus.Fields{
				"method":     DebuggerTracerPID,
				"tracer_pid": pid,
			})).Warn("Debugger detected")
			return true
		}
	}

	if method == DebuggerSelfTrace || method == DebuggerAll {
		traced, err := selfTrace(ctx)
		if err != nil {
			log.WithFields(operationFields("probe.debugger", logrus.Fields{
				"method": DebuggerSelfTrace,
				"error":  err.Error(),
			})).Debug("Self-trace unavailable")
		}
		if traced {
			log.WithFields(operationFields("probe.debugger", logrus.Fields{
				"method": DebuggerSelfTrace,
			})).Warn("Debugger detected")
			return true
		}
	}

	return false
}

// AnalysisToolsPresent implements EnvironmentProbe. One existing path is
// enough; missing tools are expected false negatives.
func (p *HostProbe) AnalysisToolsPresent(ctx context.Context) bool {
	paths := p.ToolPaths
	if paths == nil {
		paths = DefaultToolPaths
	}
	path, found := firstExisting(paths)
	if found {
		loggerOrDefault(p.Logger).WithFields(operationFields("probe.tools", logrus.Fields{
			"path": path,
		})).Warn("Analysis tool detected")
	}
	return found
}

// RootIndicatorsPresent implements RootProbe.
func (p *HostProbe) RootIndicatorsPresent(ctx context.Context) bool {
	paths := p.RootPaths
	if paths == nil {
		paths = RootIndicatorPaths
	}
	path, found := firstExisting(paths)
	if found {
		loggerOrDefault(p.Logger).WithFields(operationFields("probe.root", logrus.Fields{
			"path": path,
		})).Warn("Root indicator detected")
	}
	return found
}

// EmulatorIndicatorsPresent implements EmulatorProbe. Hosts without
// Android build properties never match.
func (p *HostProbe) EmulatorIndicatorsPresent(ctx context.Context) bool {
	paths := p.PropertyFiles
	if paths == nil {
		paths = DefaultPropertyFiles
	}
	indicator, found := loadBuildProps(paths).emulatorIndicator()
	if found {
		loggerOrDefault(p.Logger).WithFields(operationFields("probe.emulator", logrus.Fields{
			"indicator": indicator,
		})).Warn("Emulator detected")
	}
	return found
}

// Names of the checks a Guard runs.
const (
	CheckDebugger      = "debugger"
	CheckAnalysisTools = "analysis_tools"
	CheckRoot          = "root"
	CheckEmulator      = "emulator"
)

// Check is one independent environment test. Detect returns true on
// evidence of tampering; Err is the error Reveal reports for it.
type Check struct {
	Name   string
	Err    error
	Detect func(ctx context.Context) bool
}

// probeChecks lists the checks backed by probe, in evaluation order.
func probeChecks(probe EnvironmentProbe, withRoot, withEmulator bool) []Check {
	checks := []Check{
		{Name: CheckDebugger, Err: ErrDebuggerDetected, Detect: probe.DebuggerAttached},
		{Name: CheckAnalysisTools, Err: ErrAnalysisToolDetected, Detect: probe.AnalysisToolsPresent},
	}
	if rp, ok := probe.(RootProbe); ok && withRoot {
		checks = append(checks, Check{Name: CheckRoot, Err: ErrRootDetected, Detect: rp.RootIndicatorsPresent})
	}
	if ep, ok := probe.(EmulatorProbe); ok && withEmulator {
		checks = append(checks, Check{Name: CheckEmulator, Err: ErrEmulatorDetected, Detect: ep.EmulatorIndicatorsPresent})
	}
	return checks
}
