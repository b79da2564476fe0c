// Package signaltest builds signal files for tests.
package signaltest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/signal"
)

// WriteBigWig writes intervals to path as a zlib-compressed bigWig with one
// bedGraph section per chromosome.
func WriteBigWig(t testing.TB, path string, intervals []signal.Interval) {
	t.Helper()
	data, err := EncodeBigWig(intervals, true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

type indexBranch struct {
	StartChromIx uint32
	StartBase    uint32
	EndChromIx   uint32
	EndBase      uint32
	ChildOffset  uint64
}

// EncodeBigWig lays out a little-endian bigWig without zoom levels. The
// index root is a branch node with one single-block leaf per chromosome.
func EncodeBigWig(intervals []signal.Interval, compress bool) ([]byte, error) {
	var chroms []string
	byChrom := make(map[string][]signal.Interval)
	for _, iv := range intervals {
		if _, ok := byChrom[iv.Chrom]; !ok {
			chroms = append(chroms, iv.Chrom)
		}
		byChrom[iv.Chrom] = append(byChrom[iv.Chrom], iv)
	}
	slices.Sort(chroms)

	le := binary.LittleEndian
	var (
		blocks     [][]byte
		leaves     []signal.RTreeLeaf
		maxRaw     int
		keySize    int
		chromSizes []uint32
	)
	for id, chrom := range chroms {
		keySize = max(keySize, len(chrom))
		ivs := byChrom[chrom]
		h := signal.SectionHeader{
			ChromID: uint32(id),
			Start:   uint32(ivs[0].Start),
			Type:    signal.SectionBedGraph,
			Count:   uint16(len(ivs)),
		}
		for _, iv := range ivs {
			h.Start = min(h.Start, uint32(iv.Start))
			h.End = max(h.End, uint32(iv.End))
		}
		chromSizes = append(chromSizes, h.End)

		var raw bytes.Buffer
		if err := binary.Write(&raw, le, h); err != nil {
			return nil, err
		}
		for _, iv := range ivs {
			item := struct {
				Start, End uint32
				Value      float32
			}{uint32(iv.Start), uint32(iv.End), float32(iv.Value)}
			if err := binary.Write(&raw, le, item); err != nil {
				return nil, err
			}
		}
		maxRaw = max(maxRaw, raw.Len())

		block := raw.Bytes()
		if compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			if _, err := zw.Write(block); err != nil {
				return nil, err
			}
			if err := zw.Close(); err != nil {
				return nil, err
			}
			block = z.Bytes()
		}
		blocks = append(blocks, block)
		leaves = append(leaves, signal.RTreeLeaf{
			StartChromIx: uint32(id), StartBase: h.Start,
			EndChromIx: uint32(id), EndBase: h.End,
			DataSize: uint64(len(block)),
		})
	}

	hdrSize := uint64(binary.Size(signal.BBIHeader{}))
	nodeSize := uint64(binary.Size(signal.NodeHeader{}))
	chromTreeOff := hdrSize
	chromTreeSize := uint64(binary.Size(signal.ChromTreeHeader{})) + nodeSize + uint64(len(chroms))*uint64(keySize+8)
	dataOff := chromTreeOff + chromTreeSize
	off := dataOff + 4
	for i, block := range blocks {
		leaves[i].DataOffset = off
		off += uint64(len(block))
	}
	indexOff := off

	var uncompress uint32
	if compress {
		uncompress = uint32(maxRaw)
	}

	var buf bytes.Buffer
	write := func(v any) {
		// bytes.Buffer writes cannot fail
		_ = binary.Write(&buf, le, v)
	}
	write(signal.BBIHeader{
		Magic:             signal.BigWigMagic,
		Version:           4,
		ChromTreeOffset:   chromTreeOff,
		FullDataOffset:    dataOff,
		FullIndexOffset:   indexOff,
		UncompressBufSize: uncompress,
	})

	write(signal.ChromTreeHeader{
		Magic:     signal.ChromTreeMagic,
		BlockSize: uint32(max(len(chroms), 1)),
		KeySize:   uint32(keySize),
		ValSize:   8,
		ItemCount: uint64(len(chroms)),
	})
	write(signal.NodeHeader{IsLeaf: 1, Count: uint16(len(chroms))})
	for id, chrom := range chroms {
		key := make([]byte, keySize)
		copy(key, chrom)
		buf.Write(key)
		write(struct{ ID, Size uint32 }{uint32(id), chromSizes[id]})
	}

	write(uint32(len(blocks)))
	for _, block := range blocks {
		buf.Write(block)
	}

	rootSize := nodeSize + uint64(len(leaves))*uint64(binary.Size(indexBranch{}))
	leafSize := nodeSize + uint64(binary.Size(signal.RTreeLeaf{}))
	rootOff := indexOff + uint64(binary.Size(signal.RTreeHeader{}))
	rh := signal.RTreeHeader{
		Magic:        signal.RTreeMagic,
		BlockSize:    256,
		ItemCount:    uint64(len(leaves)),
		ItemsPerSlot: 1,
	}
	if len(leaves) > 0 {
		rh.EndChromIx = leaves[len(leaves)-1].EndChromIx
		rh.EndBase = leaves[len(leaves)-1].EndBase
		rh.StartBase = leaves[0].StartBase
	}
	rh.EndFileOffset = indexOff
	write(rh)
	write(signal.NodeHeader{IsLeaf: 0, Count: uint16(len(leaves))})
	for i, leaf := range leaves {
		write(indexBranch{
			StartChromIx: leaf.StartChromIx, StartBase: leaf.StartBase,
			EndChromIx: leaf.EndChromIx, EndBase: leaf.EndBase,
			ChildOffset: rootOff + rootSize + uint64(i)*leafSize,
		})
	}
	for _, leaf := range leaves {
		write(signal.NodeHeader{IsLeaf: 1, Count: 1})
		write(leaf)
	}
	return buf.Bytes(), nil
}
