package tui

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
)

// TracerDetector reports whether a debugger is attached to the process.
// The terminal counterpart of an open browser inspector is a tracer
// such as delve or strace. On systems without /proc it never fires.
type TracerDetector struct {
	// StatusPath overrides /proc/self/status in tests.
	StatusPath string
}

var _ integrity.Detector = TracerDetector{}

func (d TracerDetector) Detect(context.Context) (bool, error) {
	path := d.StatusPath
	if path == "" {
		path = "/proc/self/status"
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tracerPID(data) > 0, nil
}

// tracerPID extracts the TracerPid field, or 0 when absent.
func tracerPID(status []byte) int {
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		v, ok := strings.CutPrefix(sc.Text(), "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return pid
	}
	return 0
}
