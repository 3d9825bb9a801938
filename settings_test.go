package keyguard

import (
	"context"
	"testing"

	"github.com/rbaliyan/config"
	"github.com/rbaliyan/config/memory"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings([]byte(`
tool_paths:
  - /opt/tools/frida-server
extra_tool_paths:
  - /data/local/tmp/re.frida.server
debugger_method: all
expected_checksum: 0x2FD0
check_root: true
check_emulator: true
property_files:
  - /system/build.prop
log_level: warn
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/tools/frida-server"}, s.ToolPaths)
	assert.Equal(t, []string{"/data/local/tmp/re.frida.server"}, s.ExtraToolPaths)
	assert.Equal(t, "all", s.DebuggerMethod)
	require.NotNil(t, s.ExpectedChecksum)
	assert.Equal(t, ExpectedChecksum, *s.ExpectedChecksum)
	assert.True(t, s.CheckRoot)
	assert.True(t, s.CheckEmulator)
	assert.Equal(t, []string{"/system/build.prop"}, s.PropertyFiles)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestParseSettingsEmpty(t *testing.T) {
	s, err := ParseSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown method", "debugger_method: strace\n"},
		{"bad yaml", "tool_paths: [unterminated\n"},
		{"wrong type", "check_root: {a: b}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.input))
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestLoadSettingsFromMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Connect(ctx))
	defer store.Close(ctx)

	raw := []byte(`{"extra_tool_paths":["/data/local/tmp/hluda"],"debugger_method":"tracerpid","expected_checksum":12240,"log_level":"debug"}`)
	val, err := config.NewValueFromBytes(ctx, raw, "json")
	require.NoError(t, err)
	_, err = store.Set(ctx, config.DefaultNamespace, "keyguard/settings", val)
	require.NoError(t, err)

	s, err := LoadSettings(ctx, store, config.DefaultNamespace, "keyguard/settings")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/local/tmp/hluda"}, s.ExtraToolPaths)
	assert.Equal(t, "tracerpid", s.DebuggerMethod)
	require.NotNil(t, s.ExpectedChecksum)
	assert.Equal(t, ExpectedChecksum, *s.ExpectedChecksum)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettingsErrors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadSettings(ctx, nil, config.DefaultNamespace, "keyguard/settings")
	assert.ErrorIs(t, err, ErrInvalidSettings)

	store := memory.NewStore()
	require.NoError(t, store.Connect(ctx))
	defer store.Close(ctx)

	_, err = LoadSettings(ctx, store, config.DefaultNamespace, "missing")
	assert.Error(t, err)

	val, err := config.NewValueFromBytes(ctx, []byte(`{"debugger_method":"gdb"}`), "json")
	require.NoError(t, err)
	_, err = store.Set(ctx, config.DefaultNamespace, "bad", val)
	require.NoError(t, err)
	_, err = LoadSettings(ctx, store, config.DefaultNamespace, "bad")
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSettingsApply(t *testing.T) {
	sum := uint32(0xBEEF)
	o := defaultOptions()
	require.NoError(t, Settings{
		ExtraToolPaths:   []string{"/tmp/extra"},
		DebuggerMethod:   "selftrace",
		ExpectedChecksum: &sum,
		CheckRoot:        true,
		CheckEmulator:    true,
		PropertyFiles:    []string{"/vendor/build.prop"},
		LogLevel:         "error",
	}.apply(o))

	assert.Equal(t, append(append([]string{}, DefaultToolPaths...), "/tmp/extra"), o.host.ToolPaths)
	assert.Equal(t, DebuggerSelfTrace, o.host.Method)
	assert.Equal(t, sum, o.expected)
	assert.True(t, o.root)
	assert.True(t, o.emulator)
	assert.Equal(t, []string{"/vendor/build.prop"}, o.host.PropertyFiles)
	assert.Equal(t, "error", o.level)
	assert.Len(t, DefaultToolPaths, 6, "defaults must not be modified")
}

func TestSettingsApplyExtraAfterReplace(t *testing.T) {
	o := defaultOptions()
	require.NoError(t, Settings{
		ToolPaths:      []string{"/a"},
		ExtraToolPaths: []string{"/b"},
	}.apply(o))
	assert.Equal(t, []string{"/a", "/b"}, o.host.ToolPaths)
}

func TestSettingsApplyZeroKeepsDefaults(t *testing.T) {
	o := defaultOptions()
	require.NoError(t, Settings{}.apply(o))
	assert.Nil(t, o.host.ToolPaths)
	assert.Equal(t, ExpectedChecksum, o.expected)
	assert.False(t, o.root)
	assert.Empty(t, o.level)
}

func TestWithSettingsLogLevel(t *testing.T) {
	g, err := NewGuard(
		WithProbe(&fakeProbe{}),
		WithSettings(Settings{LogLevel: "warn"}),
	)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, g.logger.GetLevel())
	assert.NotSame(t, logrus.StandardLogger(), g.logger)
	assert.Equal(t, logrus.InfoLevel, logrus.StandardLogger().GetLevel())
}

func TestWithSettingsLogLevelKeepsCallerLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	g, err := NewGuard(
		WithLogger(logger),
		WithProbe(&fakeProbe{}),
		WithSettings(Settings{LogLevel: "error"}),
	)
	require.NoError(t, err)
	assert.Same(t, logger, g.logger)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	g.KeyFragment(context.Background(), StaticDevice(testDeviceID))
	assert.NotEmpty(t, hook.AllEntries())
}

func TestWithSettingsInvalid(t *testing.T) {
	_, err := NewGuard(WithSettings(Settings{LogLevel: "loud"}))
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = NewGuard(WithSettings(Settings{DebuggerMethod: "strace"}))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestWithSettingsChecksum(t *testing.T) {
	sum := uint32(1)
	g, err := NewGuard(WithProbe(&fakeProbe{}), WithSettings(Settings{ExpectedChecksum: &sum}))
	require.NoError(t, err)
	assert.False(t, g.PerformIntegrityCheck(context.Background()))

	g, err = NewGuard(
		WithProbe(&fakeProbe{}),
		WithSettings(Settings{ExpectedChecksum: &sum}),
		WithExpectedChecksum(ExpectedChecksum),
	)
	require.NoError(t, err)
	assert.True(t, g.PerformIntegrityCheck(context.Background()))
}
