package keyguard

import (
	"context"
	"os"
	"strings"

	"github.com/magiconair/properties"
)

// EmulatorProbe is implemented by probes that can recognise an emulator.
type EmulatorProbe interface {
	EmulatorIndicatorsPresent(ctx context.Context) bool
}

// DefaultPropertyFiles are read, in order, for the build properties the
// emulator check inspects. /proc/cpuinfo supplies the Hardware line.
var DefaultPropertyFiles = []string{
	"/system/build.prop",
	"/vendor/build.prop",
	"/proc/cpuinfo",
}

// buildProps holds the properties the emulator check looks at. Empty fields
// were not found.
type buildProps struct {
	fingerprint  string
	model        string
	manufacturer string
	brand        string
	device       string
	product      string
	hardware     string
}

// propertyKeys maps each field to the keys that may carry it, in priority order.
var propertyKeys = []struct {
	keys []string
	set  func(*buildProps, string)
}{
	{[]string{"ro.build.fingerprint", "ro.system.build.fingerprint"}, func(b *buildProps, v string) { b.fingerprint = v }},
	{[]string{"ro.product.model", "ro.product.system.model"}, func(b *buildProps, v string) { b.model = v }},
	{[]string{"ro.product.manufacturer", "ro.product.system.manufacturer"}, func(b *buildProps, v string) { b.manufacturer = v }},
	{[]string{"ro.product.brand", "ro.product.system.brand"}, func(b *buildProps, v string) { b.brand = v }},
	{[]string{"ro.product.device", "ro.product.system.device"}, func(b *buildProps, v string) { b.device = v }},
	{[]string{"ro.product.name", "ro.product.system.name"}, func(b *buildProps, v string) { b.product = v }},
	{[]string{"ro.hardware", "ro.boot.hardware", "Hardware"}, func(b *buildProps, v string) { b.hardware = v }},
}

// loadBuildProps merges the property files. A value from an earlier file
// wins; unreadable files are skipped.
func loadBuildProps(paths []string) buildProps {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	merged := properties.NewProperties()
	merged.DisableExpansion = true
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		p, err := loader.LoadBytes(data)
		if err != nil {
			continue
		}
		for _, k := range p.Keys() {
			if _, ok := merged.Get(k); ok {
				continue
			}
			v, _ := p.Get(k)
			merged.Set(k, v)
		}
	}

	var b buildProps
	for _, pk := range propertyKeys {
		for _, k := range pk.keys {
			if v, ok := merged.Get(k); ok && strings.TrimSpace(v) != "" {
				pk.set(&b, strings.TrimSpace(v))
				break
			}
		}
	}
	return b
}

// emulatorIndicator returns the first indicator the properties match.
func (b buildProps) emulatorIndicator() (string, bool) {
	indicators := []struct {
		name  string
		match bool
	}{
		{"fingerprint:generic", strings.Contains(b.fingerprint, "generic")},
		{"fingerprint:unknown", strings.Contains(b.fingerprint, "unknown")},
		{"fingerprint:emulator", strings.Contains(b.fingerprint, "emulator")},
		{"model:google_sdk", strings.Contains(b.model, "google_sdk")},
		{"model:Emulator", strings.Contains(b.model, "Emulator")},
		{"model:Android SDK built for x86", strings.Contains(b.model, "Android SDK built for x86")},
		{"manufacturer:Genymotion", strings.Contains(b.manufacturer, "Genymotion")},
		{"brand+device:generic", strings.HasPrefix(b.brand, "generic") && strings.HasPrefix(b.device, "generic")},
		{"device:generic", strings.Contains(b.device, "generic")},
		{"product:sdk", strings.Contains(b.product, "sdk")},
		{"hardware:goldfish", strings.Contains(b.hardware, "goldfish")},
		{"hardware:ranchu", strings.Contains(b.hardware, "ranchu")},
	}
	for _, ind := range indicators {
		if ind.match {
			return ind.name, true
		}
	}
	return "", false
}
