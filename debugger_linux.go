//go:build linux

package keyguard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"
)

// selfTraceEnv marks a re-executed copy of the binary as the self-trace
// helper. Its value is the pid of the process to trace.
const selfTraceEnv = "KEYGUARD_SELFTRACE_PARENT"

// Exit codes of the self-trace helper.
const (
	selfTraceFree   = 0
	selfTraceTraced = 3
	selfTraceFailed = 4
)

func init() {
	if parent, ok := os.LookupEnv(selfTraceEnv); ok {
		os.Exit(runSelfTraceHelper(parent))
	}
}

// runSelfTraceHelper seizes the parent and exits. A process has one tracer
// at most, so EPERM means another one holds it. The kernel drops the seize
// when the helper exits, without stopping the parent.
func runSelfTraceHelper(parent string) int {
	pid, err := strconv.Atoi(parent)
	if err != nil || pid != unix.Getppid() {
		return selfTraceFailed
	}

	// The parent writes once it has allowed us to trace it.
	var b [1]byte
	if _, err := os.Stdin.Read(b[:]); err != nil {
		return selfTraceFailed
	}

	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_SEIZE, uintptr(pid), 0, 0, 0, 0)
	switch errno {
	case 0:
		return selfTraceFree
	case unix.EPERM:
		return selfTraceTraced
	default:
		return selfTraceFailed
	}
}

// selfTraceMu serializes helpers; PR_SET_PTRACER holds a single pid.
var selfTraceMu sync.Mutex

// selfTrace re-executes the binary as a helper that tries to trace this
// process. Nothing in this process becomes a tracee.
func selfTrace(ctx context.Context) (bool, error) {
	selfTraceMu.Lock()
	defer selfTraceMu.Unlock()

	cmd := exec.CommandContext(ctx, "/proc/self/exe")
	cmd.Args = []string{"keyguard-selftrace"}
	cmd.Env = append(os.Environ(), selfTraceEnv+"="+strconv.Itoa(os.Getpid()))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return false, fmt.Errorf("keyguard: self-trace pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("keyguard: start self-trace helper: %w", err)
	}

	// Yama ptrace_scope 1 only lets ancestors trace; name the helper as an
	// exception for its lifetime. EINVAL means Yama is not loaded.
	if err := unix.Prctl(unix.PR_SET_PTRACER, uintptr(cmd.Process.Pid), 0, 0, 0); err == nil {
		defer unix.Prctl(unix.PR_SET_PTRACER, 0, 0, 0, 0)
	}

	_, werr := stdin.Write([]byte{1})
	stdin.Close()

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return false, fmt.Errorf("keyguard: self-trace helper: %w", err)
	}
	if werr != nil && cmd.ProcessState.ExitCode() == selfTraceFree {
		return false, fmt.Errorf("keyguard: self-trace helper: %w", werr)
	}
	return selfTraceVerdict(cmd.ProcessState.ExitCode())
}

// selfTraceVerdict maps a helper exit code to a verdict.
func selfTraceVerdict(code int) (bool, error) {
	switch code {
	case selfTraceFree:
		return false, nil
	case selfTraceTraced:
		return true, nil
	default:
		return false, fmt.Errorf("keyguard: self-trace helper exited with %d", code)
	}
}
