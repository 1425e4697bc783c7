// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package store serializes tile planes.
//
// A stream starts with a fixed header (magic, version, plane size, depth,
// tile count) followed by one record per tile in grid order. Allocated
// tiles carry their quanta as a zstd frame of little-endian uint16
// values; unallocated tiles carry nothing and load back unallocated.
package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/paintcore/quantum"
	"github.com/gogpu/paintcore/tile"
)

const (
	magic   = "PCTS"
	version = 1

	recordEmpty = 0
	recordData  = 1

	maxSide   = 1 << 20
	maxPixels = 1 << 28
	maxDepth  = 64
)

var (
	// ErrFormat is returned when a stream is not a tile stream or is
	// corrupt.
	ErrFormat = errors.New("store: invalid tile stream")

	// ErrVersion is returned for streams written by an unknown version.
	ErrVersion = errors.New("store: unsupported stream version")
)

type header struct {
	Magic   [4]byte
	Version uint16
	Depth   uint16
	Width   uint32
	Height  uint32
	Tiles   uint32
}

// Write serializes every tile of mgr to w.
func Write(w io.Writer, mgr *tile.Manager) error {
	if mgr.Depth() > maxDepth || mgr.Width() > maxSide || mgr.Height() > maxSide || mgr.Width()*mgr.Height() > maxPixels {
		return fmt.Errorf("%w: %dx%d plane of depth %d is too large to store", ErrFormat, mgr.Width(), mgr.Height(), mgr.Depth())
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("store: create encoder: %w", err)
	}
	defer enc.Close()

	bw := bufio.NewWriter(w)
	h := header{
		Version: version,
		Depth:   uint16(mgr.Depth()),
		Width:   uint32(mgr.Width()),
		Height:  uint32(mgr.Height()),
		Tiles:   uint32(mgr.TileCount()),
	}
	copy(h.Magic[:], magic)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("store: write header: %w", err)
	}

	var raw, packed []byte
	for i := range mgr.TileCount() {
		t := mgr.TileAt(i, tile.Read)
		if !t.Allocated() {
			if err := bw.WriteByte(recordEmpty); err != nil {
				return fmt.Errorf("store: write tile %d: %w", i, err)
			}
			continue
		}
		raw = appendQuanta(raw[:0], t.Data(0, 0)[:t.Size()])
		packed = enc.EncodeAll(raw, packed[:0])

		var rec [5]byte
		rec[0] = recordData
		binary.LittleEndian.PutUint32(rec[1:], uint32(len(packed)))
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("store: write tile %d: %w", i, err)
		}
		if _, err := bw.Write(packed); err != nil {
			return fmt.Errorf("store: write tile %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}
	return nil
}

// Read loads a plane written by Write. opts configure the new manager.
func Read(r io.Reader, opts ...tile.Option) (*tile.Manager, error) {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}
	if string(h.Magic[:]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, h.Magic[:])
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.Depth == 0 || h.Depth > maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrFormat, h.Depth)
	}
	if h.Width > maxSide || h.Height > maxSide || uint64(h.Width)*uint64(h.Height) > maxPixels {
		return nil, fmt.Errorf("%w: plane of %dx%d", ErrFormat, h.Width, h.Height)
	}
	tilesX := (uint64(h.Width) + tile.Width - 1) / tile.Width
	tilesY := (uint64(h.Height) + tile.Height - 1) / tile.Height
	if uint64(h.Tiles) != tilesX*tilesY {
		return nil, fmt.Errorf("%w: %d tiles for a %dx%d plane", ErrFormat, h.Tiles, h.Width, h.Height)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("store: create decoder: %w", err)
	}
	defer dec.Close()

	mgr := tile.NewManager(int(h.Width), int(h.Height), int(h.Depth), opts...)
	if err := readTiles(br, dec, mgr); err != nil {
		mgr.Release()
		return nil, err
	}
	mgr.ClearDirty()
	return mgr, nil
}

// readTiles fills mgr from the tile records that follow the header.
func readTiles(br *bufio.Reader, dec *zstd.Decoder, mgr *tile.Manager) error {
	var packed, raw []byte
	for i := range mgr.TileCount() {
		kind, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: tile %d: %w", ErrFormat, i, err)
		}
		switch kind {
		case recordEmpty:
			continue
		case recordData:
		default:
			return fmt.Errorf("%w: tile %d: record kind %d", ErrFormat, i, kind)
		}

		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("%w: tile %d: %w", ErrFormat, i, err)
		}
		tr := mgr.TileRect(i)
		size := tr.Dx() * tr.Dy() * mgr.Depth()
		if int(n) > 2*size+1024 {
			return fmt.Errorf("%w: tile %d: payload of %d bytes", ErrFormat, i, n)
		}
		packed = grow(packed, int(n))
		if _, err := io.ReadFull(br, packed); err != nil {
			return fmt.Errorf("%w: tile %d: %w", ErrFormat, i, err)
		}
		raw, err = dec.DecodeAll(packed, raw[:0])
		if err != nil {
			return fmt.Errorf("%w: tile %d: %w", ErrFormat, i, err)
		}
		if len(raw) != size*2 {
			return fmt.Errorf("%w: tile %d: %d bytes, want %d", ErrFormat, i, len(raw), size*2)
		}

		t := mgr.TileAt(i, tile.Write)
		decodeQuanta(t.Data(0, 0)[:size], raw)
	}
	return nil
}

func appendQuanta(dst []byte, src []quantum.Quantum) []byte {
	for _, q := range src {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(q))
	}
	return dst
}

func decodeQuanta(dst []quantum.Quantum, src []byte) {
	for i := range dst {
		dst[i] = quantum.Quantum(binary.LittleEndian.Uint16(src[i*2:]))
	}
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
