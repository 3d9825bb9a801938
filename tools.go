package keyguard

import "os"

// DefaultToolPaths lists install locations of common instrumentation and
// tracing tools on Android. The list is static and incomplete.
var DefaultToolPaths = []string{
	"/data/local/tmp/frida-server",
	"/data/local/tmp/gdbserver",
	"/data/local/tmp/gdb",
	"/system/bin/strace",
	"/system/xbin/strace",
	"/data/local/tmp/tcpdump",
}

// HookFrameworkPaths lists additional Frida server locations. They are not
// part of DefaultToolPaths and can be added through Settings.ExtraToolPaths.
var HookFrameworkPaths = []string{
	"/data/local/tmp/re.frida.server",
	"/sdcard/frida-server",
	"/data/data/re.frida.server",
}

// RootIndicatorPaths lists su binaries, root manager packages and busybox.
var RootIndicatorPaths = []string{
	"/system/app/Superuser.apk",
	"/sbin/su",
	"/system/bin/su",
	"/system/xbin/su",
	"/data/local/xbin/su",
	"/data/local/bin/su",
	"/system/sd/xbin/su",
	"/system/bin/failsafe/su",
	"/data/local/su",
	"/su/bin/su",
	"/system/app/SuperSU.apk",
	"/system/app/Kinguser.apk",
	"/data/data/eu.chainfire.supersu",
	"/data/data/com.noshufou.android.su",
	"/data/data/com.koushikdutta.superuser",
	"/data/data/com.thirdparty.superuser",
	"/data/data/com.yellowes.su",
	"/system/xbin/busybox",
	"/system/bin/busybox",
}

// firstExisting returns the first path that exists. Any stat error other
// than success counts as absent.
func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
