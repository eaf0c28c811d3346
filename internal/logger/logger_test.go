package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "glbview.log")

	// 1MB is the smallest size lumberjack allows.
	err := InitWith(Options{
		Level: "debug",
		File: FileConfig{
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 1,
		},
	})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	long := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("viewport %d loaded: %s", i, long)
	}
	Sync()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("main log file does not exist")
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "glbview.log" || !strings.HasPrefix(name, "glbview") {
			continue
		}
		rotated++
		// glbview-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s doesn't have expected timestamp format", name)
		}
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), tt.level+".log")
			err := InitWith(Options{Level: tt.level, File: FileConfig{Path: logFile, MaxSizeMB: 10}})
			if err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Named("viewport").Info("model loaded")
	l.Debug("hidden")
	_ = l.Sync()

	out := buf.String()
	if !strings.Contains(out, "model loaded") || !strings.Contains(out, "viewport") {
		t.Errorf("expected named info line, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked at info level: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "info", false},
		{"DEBUG", "debug", false},
		{" warning ", "warn", false},
		{"fatal", "fatal", false},
		{"verbose", "", true},
	}
	for _, tc := range tests {
		lvl, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", tc.in, err)
			continue
		}
		if lvl.String() != tc.want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", tc.in, tc.want, lvl)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLBeforeInit(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()
	Log = nil

	if L() == nil {
		t.Fatal("expected no-op logger before Init")
	}
	Info("dropped")
	Named("app").Warn("dropped")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/glbview.log")

	if cfg.Path != "/tmp/glbview.log" {
		t.Errorf("expected path /tmp/glbview.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
