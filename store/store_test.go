// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

func pattern(x, y, c int) quantum.Quantum {
	return quantum.Quantum((x*131 + y*977 + c*31 + 1) & 0xFFFF)
}

// paintRect writes pattern over the inclusive rectangle.
func paintRect(t *testing.T, m *tile.Manager, x1, y1, x2, y2 int) {
	t.Helper()
	w, h, d := x2-x1+1, y2-y1+1, m.Depth()
	buf := make([]quantum.Quantum, w*h*d)
	for y := range h {
		for x := range w {
			for c := range d {
				buf[(y*w+x)*d+c] = pattern(x1+x, y1+y, c)
			}
		}
	}
	if err := m.WritePixelData(x1, y1, x2, y2, buf, w*d); err != nil {
		t.Fatalf("WritePixelData: %v", err)
	}
}

func readAll(t *testing.T, m *tile.Manager) []quantum.Quantum {
	t.Helper()
	buf := make([]quantum.Quantum, m.Width()*m.Height()*m.Depth())
	if err := m.ReadPixelData(0, 0, m.Width()-1, m.Height()-1, buf, m.Width()*m.Depth()); err != nil {
		t.Fatalf("ReadPixelData: %v", err)
	}
	return buf
}

// =============================================================================
// Stream format
// =============================================================================

func TestWriteRead_RoundTrip(t *testing.T) {
	m := tile.NewManager(200, 150, 4)
	paintRect(t, m, 0, 0, 70, 70)
	paintRect(t, m, 150, 140, 199, 149)

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Width() != 200 || got.Height() != 150 || got.Depth() != 4 {
		t.Fatalf("plane %dx%dx%d, want 200x150x4", got.Width(), got.Height(), got.Depth())
	}
	if !slices.Equal(readAll(t, got), readAll(t, m)) {
		t.Error("pixels differ after round trip")
	}
	for i := range m.TileCount() {
		want := m.TileAt(i, tile.Read).Allocated()
		if have := got.TileAt(i, tile.Read).Allocated(); have != want {
			t.Errorf("tile %d allocated = %v, want %v", i, have, want)
		}
	}
	if len(got.DirtyTiles()) != 0 {
		t.Errorf("loaded plane has dirty tiles %v", got.DirtyTiles())
	}
}

func TestWriteRead_EmptyPlane(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, tile.NewManager(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.TileCount() != 0 {
		t.Errorf("TileCount = %d, want 0", got.TileCount())
	}
}

func TestRead_Errors(t *testing.T) {
	m := tile.NewManager(70, 10, 1)
	paintRect(t, m, 0, 0, 69, 9)
	var good bytes.Buffer
	if err := Write(&good, m); err != nil {
		t.Fatal(err)
	}
	stream := good.Bytes()

	withVersion := slices.Clone(stream)
	binary.LittleEndian.PutUint16(withVersion[4:], 9)

	badKind := slices.Clone(stream)
	badKind[20] = 7

	huge := slices.Clone(stream[:20])
	binary.LittleEndian.PutUint32(huge[8:], 1<<20)
	binary.LittleEndian.PutUint32(huge[12:], 1<<20)
	binary.LittleEndian.PutUint32(huge[16:], 1<<28)

	deep := slices.Clone(stream)
	binary.LittleEndian.PutUint16(deep[6:], 0xFFFF)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrFormat},
		{"bad magic", append([]byte("NOPE"), stream[4:]...), ErrFormat},
		{"version", withVersion, ErrVersion},
		{"record kind", badKind, ErrFormat},
		{"truncated", stream[:len(stream)-3], ErrFormat},
		{"huge plane", huge, ErrFormat},
		{"deep pixels", deep, ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Read error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRead_FailureReleasesTiles(t *testing.T) {
	m := tile.NewManager(200, 200, 4)
	paintRect(t, m, 0, 0, 199, 199)
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatal(err)
	}
	stream := buf.Bytes()

	md := tile.NewMediator()
	owner := tile.NewManager(10, 10, 4, tile.WithMediator(md))
	owner.TileAt(0, tile.Write)
	before := md.Len()

	_, err := Read(bytes.NewReader(stream[:len(stream)/2]), tile.WithMediator(md))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("Read error = %v, want ErrFormat", err)
	}
	if after := md.Len(); after != before {
		t.Errorf("mediator holds %d tiles after a failed read, want %d", after, before)
	}
}

func TestWrite_TooLarge(t *testing.T) {
	m := tile.NewManager(4, 4, maxDepth+1)
	if err := Write(&bytes.Buffer{}, m); !errors.Is(err, ErrFormat) {
		t.Errorf("Write error = %v, want ErrFormat", err)
	}
}

// =============================================================================
// DirContainer
// =============================================================================

func TestDirContainer_SaveLoad(t *testing.T) {
	c, err := NewDirContainer(filepath.Join(t.TempDir(), "planes"))
	if err != nil {
		t.Fatal(err)
	}
	m := tile.NewManager(90, 90, 2)
	paintRect(t, m, 10, 10, 80, 80)

	if err := Save(c, "layer-1", m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(c, "layer-0", tile.NewManager(5, 5, 2)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	names, err := c.Names()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"layer-0", "layer-1"}) {
		t.Errorf("Names = %v", names)
	}

	got, err := Load(c, "layer-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(readAll(t, got), readAll(t, m)) {
		t.Error("loaded pixels differ")
	}

	if err := c.Remove("layer-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := Load(c, "layer-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Remove = %v, want ErrNotFound", err)
	}
	if err := c.Remove("layer-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestDirContainer_Names(t *testing.T) {
	c, err := NewDirContainer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "a/b", `a\b`, ".", ".."} {
		if _, err := c.Create(name); !errors.Is(err, ErrName) {
			t.Errorf("Create(%q) = %v, want ErrName", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err := c.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("Names = %v, want none", names)
	}
}

func TestDirContainer_AbortKeepsPrevious(t *testing.T) {
	c, err := NewDirContainer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(c, "p", tile.NewManager(3, 3, 1)); err != nil {
		t.Fatal(err)
	}

	w, err := c.Create("p")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}
	if err := w.(*atomicFile).Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close after Abort = %v", err)
	}

	got, err := Load(c, "p")
	if err != nil {
		t.Fatalf("previous stream lost: %v", err)
	}
	if got.Width() != 3 {
		t.Errorf("Width = %d, want 3", got.Width())
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1", len(entries))
	}
}
