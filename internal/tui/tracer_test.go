package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTracerPID(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   int
	}{
		{"untraced", "Name:\tclario\nState:\tS (sleeping)\nTracerPid:\t0\n", 0},
		{"traced", "Name:\tclario\nTracerPid:\t4242\nUid:\t1000\n", 4242},
		{"missing", "Name:\tclario\n", 0},
		{"garbage", "TracerPid:\tx\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tracerPID([]byte(tt.status)); got != tt.want {
				t.Errorf("tracerPID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTracerDetector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	if err := os.WriteFile(path, []byte("TracerPid:\t17\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	hit, err := TracerDetector{StatusPath: path}.Detect(context.Background())
	if err != nil || !hit {
		t.Errorf("Detect() = %v, %v; want true, nil", hit, err)
	}

	hit, err = TracerDetector{StatusPath: filepath.Join(dir, "absent")}.Detect(context.Background())
	if err != nil || hit {
		t.Errorf("missing status file: Detect() = %v, %v; want false, nil", hit, err)
	}
}
