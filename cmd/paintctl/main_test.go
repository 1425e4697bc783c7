// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes paintctl with args against a fresh store directory.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--store", dir, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImportInfoExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 100, 70)
	tiles := filepath.Join(dir, "tiles")

	out, err := run(t, tiles, "import", "--model", "rgba", "--name", "", src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "photo: 100x70 RGBA") {
		t.Errorf("import output = %q", out)
	}

	out, err = run(t, tiles, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"photo", "100x70", "4"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output %q lacks %q", out, want)
		}
	}

	dst := filepath.Join(dir, "copy.png")
	if _, err := run(t, tiles, "export", "--model", "", "photo", dst); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 70 {
		t.Errorf("exported bounds %v", img.Bounds())
	}
	r, g, _, _ := img.At(9, 5).RGBA()
	if r>>8 != 9 || g>>8 != 5 {
		t.Errorf("pixel (9,5) = %d,%d", r>>8, g>>8)
	}
}

func TestInfo_Empty(t *testing.T) {
	out, err := run(t, t.TempDir(), "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No streams found.") {
		t.Errorf("output = %q", out)
	}
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"unknown model", []string{"import", "--model", "hsv", "--name", "", "x.png"}},
		{"missing file", []string{"import", "--model", "rgba", "--name", "", filepath.Join(dir, "none.png")}},
		{"missing stream", []string{"export", "--model", "", "none", filepath.Join(dir, "x.png")}},
		{"missing info stream", []string{"info", "none"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, dir, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOps(t *testing.T) {
	out, err := run(t, t.TempDir(), "ops")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"RGBA", "CMYKA", "GRAYA", "ALPHA", "operators known"} {
		if !strings.Contains(out, want) {
			t.Errorf("ops output lacks %q", want)
		}
	}
}

func TestModelFor(t *testing.T) {
	tests := []struct {
		name  string
		model string
		depth int
		want  string
		ok    bool
	}{
		{"by depth rgba", "", 4, "RGBA", true},
		{"by depth cmyk", "", 5, "CMYKA", true},
		{"by depth gray", "", 2, "GRAYA", true},
		{"by name", "Alpha", 4, "ALPHA", true},
		{"unknown depth", "", 7, "", false},
		{"unknown name", "lab", 4, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := modelFor(tt.model, tt.depth)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, ok %v", err, tt.ok)
			}
			if tt.ok && s.Name() != tt.want {
				t.Errorf("model = %s, want %s", s.Name(), tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug").String() != "DEBUG" || parseLevel("bogus").String() != "WARN" {
		t.Error("parseLevel mapping")
	}
}
