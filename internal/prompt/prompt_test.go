package prompt

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestParseFilenames(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    []string
		warning string
		wantErr error
	}{
		{"empty", "", 4, nil, "", ErrEmptyInput},
		{"blank", "  \t\n", 4, nil, "", ErrEmptyInput},
		{"no glb", "a.obj, b.fbx", 4, nil, "", ErrNoValidFilenames},
		{"only separators", ",,, ,", 4, nil, "", ErrNoValidFilenames},
		{"single", "model1.glb", 4, []string{"model1.glb"}, "", nil},
		{"commas", "a.glb,b.glb", 4, []string{"a.glb", "b.glb"}, "", nil},
		{"mixed separators", " a.glb ,  b.glb\tc.glb\n", 4, []string{"a.glb", "b.glb", "c.glb"}, "", nil},
		{"case insensitive", "A.GLB b.Glb", 4, []string{"A.GLB", "b.Glb"}, "", nil},
		{"filters others", "a.glb notes.txt b.glb", 4, []string{"a.glb", "b.glb"}, "", nil},
		{"truncates", "1.glb 2.glb 3.glb 4.glb 5.glb", 4, []string{"1.glb", "2.glb", "3.glb", "4.glb"}, "Only the first 4 models will be loaded.", nil},
		{"exact max", "1.glb 2.glb", 2, []string{"1.glb", "2.glb"}, "", nil},
		{"no limit", "1.glb 2.glb 3.glb", 0, []string{"1.glb", "2.glb", "3.glb"}, "", nil},
		{"suffix only", ".glb", 4, []string{".glb"}, "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, warning, err := ParseFilenames(tc.input, ".glb", tc.max)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%v should match ErrInvalidInput", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if warning != tc.warning {
				t.Errorf("expected warning %q, got %q", tc.warning, warning)
			}
		})
	}
}

func TestParseFilenames_Messages(t *testing.T) {
	_, _, err := ParseFilenames("", ".glb", 4)
	if err.Error() != "Please enter at least one filename." {
		t.Errorf("unexpected message %q", err)
	}
	_, _, err = ParseFilenames("x.png", ".glb", 4)
	if err.Error() != "Please enter valid GLB filenames ending with .glb" {
		t.Errorf("unexpected message %q", err)
	}
	_, _, err = ParseFilenames("x.png", ".GLTF", 4)
	if err.Error() != "Please enter valid GLTF filenames ending with .gltf" {
		t.Errorf("unexpected message %q", err)
	}
}

func TestParser_Parse(t *testing.T) {
	p := Parser{Ext: ".glb", Max: 2}
	tests := []struct {
		line  string
		kind  Kind
		files []string
	}{
		{"reset", Reset, nil},
		{"  RESET ", Reset, nil},
		{"quit", Quit, nil},
		{"exit", Quit, nil},
		{"help", Help, nil},
		{"a.glb b.glb c.glb", Load, []string{"a.glb", "b.glb"}},
	}
	for _, tc := range tests {
		cmd, err := p.Parse(tc.line)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.line, err)
		}
		if cmd.Kind != tc.kind || !reflect.DeepEqual(cmd.Files, tc.files) {
			t.Errorf("Parse(%q) = %v %v, expected %v %v", tc.line, cmd.Kind, cmd.Files, tc.kind, tc.files)
		}
	}
}

func TestReader_Next(t *testing.T) {
	input := "a.glb, b.glb\n\nfoo.txt\nreset\n"
	r := NewReader(strings.NewReader(input), Parser{Ext: ".glb", Max: 4})

	cmd, err := r.Next()
	if err != nil || cmd.Kind != Load || len(cmd.Files) != 2 {
		t.Fatalf("line 1: got %+v %v", cmd, err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("line 2: expected ErrEmptyInput, got %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrNoValidFilenames) {
		t.Errorf("line 3: expected ErrNoValidFilenames, got %v", err)
	}
	if cmd, err := r.Next(); err != nil || cmd.Kind != Reset {
		t.Errorf("line 4: got %+v %v", cmd, err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
