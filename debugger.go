package keyguard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const procSelfStatus = "/proc/self/status"

// tracerPID returns the TracerPid field of a procfs status file.
func tracerPID(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parseTracerPID(f)
}

// parseTracerPID scans a /proc/<pid>/status document for the TracerPid line.
func parseTracerPID(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "TracerPid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("keyguard: malformed TracerPid line %q", line)
		}
		return strconv.Atoi(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("keyguard: no TracerPid in status")
}
