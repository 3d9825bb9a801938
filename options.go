package keyguard

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Guard.
type Option func(*options)

type options struct {
	table    Table
	expected uint32
	probe    EnvironmentProbe
	host     HostProbe
	root     bool
	emulator bool
	extra    []Check
	logger   *logrus.Logger
	level    string
	mp       metric.MeterProvider
	tp       trace.TracerProvider
	err      error // deferred validation error from options
}

func defaultOptions() *options {
	return &options{
		table:    defaultTable,
		expected: ExpectedChecksum,
	}
}

func (o *options) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

// WithProbe replaces the host probe. Tool path, root path and debugger
// method options only configure the host probe and are ignored afterwards.
func WithProbe(p EnvironmentProbe) Option {
	return func(o *options) {
		if p == nil {
			o.fail(fmt.Errorf("%w: probe is nil", ErrInvalidSettings))
			return
		}
		o.probe = p
	}
}

// WithTable replaces the compiled fragment table. The expected checksum
// is not changed; pair it with WithExpectedChecksum.
func WithTable(t Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithExpectedChecksum sets the checksum the integrity check compares against.
func WithExpectedChecksum(sum uint32) Option {
	return func(o *options) {
		o.expected = sum
	}
}

// WithToolPaths replaces the analysis tool paths of the host probe.
func WithToolPaths(paths ...string) Option {
	return func(o *options) {
		o.host.ToolPaths = append([]string{}, paths...)
	}
}

// WithRootPaths replaces the root indicator paths of the host probe.
func WithRootPaths(paths ...string) Option {
	return func(o *options) {
		o.host.RootPaths = append([]string{}, paths...)
	}
}

// WithDebuggerMethod selects how the host probe looks for a tracer.
func WithDebuggerMethod(m DebuggerMethod) Option {
	return func(o *options) {
		parsed, err := ParseDebuggerMethod(string(m))
		if err != nil {
			o.fail(err)
			return
		}
		o.host.Method = parsed
	}
}

// WithRootCheck adds the root indicator check to every verdict. The probe
// must implement RootProbe.
func WithRootCheck() Option {
	return func(o *options) {
		o.root = true
	}
}

// WithPropertyFiles replaces the build property files the host probe
// reads for the emulator check.
func WithPropertyFiles(paths ...string) Option {
	return func(o *options) {
		o.host.PropertyFiles = append([]string{}, paths...)
	}
}

// WithEmulatorCheck adds the emulator check to every verdict. The probe
// must implement EmulatorProbe.
func WithEmulatorCheck() Option {
	return func(o *options) {
		o.emulator = true
	}
}

// WithCheck appends a host-defined check. It runs after the built-in ones.
func WithCheck(c Check) Option {
	return func(o *options) {
		if c.Name == "" || c.Detect == nil {
			o.fail(fmt.Errorf("%w: check needs a name and a detect function", ErrInvalidSettings))
			return
		}
		if c.Err == nil {
			c.Err = fmt.Errorf("keyguard: %s check failed", c.Name)
		}
		o.extra = append(o.extra, c)
	}
}

// WithLogger sets the logger. The default is logrus.StandardLogger(), or a
// new logger when settings carry a log level. A log level from settings is
// not applied to a logger passed here.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider. The default is the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.mp = mp
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The default is the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// WithSettings applies loaded settings. Later options override them.
func WithSettings(s Settings) Option {
	return func(o *options) {
		if err := s.apply(o); err != nil {
			o.fail(err)
		}
	}
}

// build resolves the options into the check list and logger.
func (o *options) build() ([]Check, *logrus.Logger, error) {
	if o.err != nil {
		return nil, nil, o.err
	}

	logger := o.logger
	if o.level != "" {
		lvl, err := logrus.ParseLevel(o.level)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		// A caller's logger may be shared; its level stays theirs.
		if logger == nil {
			logger = logrus.New()
			logger.SetLevel(lvl)
		}
	}
	logger = loggerOrDefault(logger)

	probe := o.probe
	if probe == nil {
		host := o.host
		host.Logger = logger
		probe = &host
	}
	if _, ok := probe.(RootProbe); o.root && !ok {
		return nil, nil, fmt.Errorf("%w: probe %T cannot check root indicators", ErrInvalidSettings, probe)
	}
	if _, ok := probe.(EmulatorProbe); o.emulator && !ok {
		return nil, nil, fmt.Errorf("%w: probe %T cannot check emulator indicators", ErrInvalidSettings, probe)
	}

	checks := probeChecks(probe, o.root, o.emulator)
	checks = append(checks, o.extra...)
	return checks, logger, nil
}
