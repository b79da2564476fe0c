package signal

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// BBI magic numbers.
const (
	BigWigMagic    uint32 = 0x888FFC26
	ChromTreeMagic uint32 = 0x78CA8C91
	RTreeMagic     uint32 = 0x2468ACE0
)

// Wiggle section types.
const (
	SectionBedGraph  uint8 = 1
	SectionVarStep   uint8 = 2
	SectionFixedStep uint8 = 3
)

// ErrNotBigWig is returned for input without the bigWig magic number.
var ErrNotBigWig = errors.New("not a bigWig file")

// BBIHeader is the fixed 64-byte header of a bigWig file.
type BBIHeader struct {
	Magic              uint32
	Version            uint16
	ZoomLevels         uint16
	ChromTreeOffset    uint64
	FullDataOffset     uint64
	FullIndexOffset    uint64
	FieldCount         uint16
	DefinedFieldCount  uint16
	AutoSQLOffset      uint64
	TotalSummaryOffset uint64
	UncompressBufSize  uint32
	Reserved           uint64
}

// ChromTreeHeader heads the chromosome B+ tree.
type ChromTreeHeader struct {
	Magic     uint32
	BlockSize uint32
	KeySize   uint32
	ValSize   uint32
	ItemCount uint64
	Reserved  uint64
}

// RTreeHeader heads the data index.
type RTreeHeader struct {
	Magic         uint32
	BlockSize     uint32
	ItemCount     uint64
	StartChromIx  uint32
	StartBase     uint32
	EndChromIx    uint32
	EndBase       uint32
	EndFileOffset uint64
	ItemsPerSlot  uint32
	Reserved      uint32
}

// NodeHeader starts every B+ tree and R tree node.
type NodeHeader struct {
	IsLeaf   uint8
	Reserved uint8
	Count    uint16
}

// RTreeLeaf locates one data block.
type RTreeLeaf struct {
	StartChromIx uint32
	StartBase    uint32
	EndChromIx   uint32
	EndBase      uint32
	DataOffset   uint64
	DataSize     uint64
}

type rTreeBranch struct {
	StartChromIx uint32
	StartBase    uint32
	EndChromIx   uint32
	EndBase      uint32
	ChildOffset  uint64
}

// SectionHeader starts every wiggle data section.
type SectionHeader struct {
	ChromID  uint32
	Start    uint32
	End      uint32
	ItemStep uint32
	ItemSpan uint32
	Type     uint8
	Reserved uint8
	Count    uint16
}

type bigWigReader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	hdr   BBIHeader
}

// LoadBigWig reads every data section of a bigWig file into a source.
func LoadBigWig(path string) (*BedGraphSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bigWig file: %w", err)
	}
	defer f.Close()

	intervals, err := ReadBigWig(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewBedGraphSource(intervals)
}

// ReadBigWig decodes the full-resolution data of a bigWig file, in index
// order. Zoom levels are not read.
func ReadBigWig(r io.ReaderAt) ([]Interval, error) {
	b := &bigWigReader{r: r}
	if err := b.readHeader(); err != nil {
		return nil, err
	}

	chroms := make(map[uint32]string)
	if err := b.readChromTree(chroms); err != nil {
		return nil, err
	}

	blocks, err := b.readIndex()
	if err != nil {
		return nil, err
	}

	var out []Interval
	for _, blk := range blocks {
		data, err := b.readBlock(blk)
		if err != nil {
			return nil, err
		}
		out, err = decodeSections(data, b.order, chroms, out)
		if err != nil {
			return nil, fmt.Errorf("block at %d: %w", blk.DataOffset, err)
		}
	}
	return out, nil
}

// IsBigWig reports whether the file at path starts with the bigWig magic
// number in either byte order.
func IsBigWig(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open signal file: %w", err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false, nil
	}
	return byteOrder(magic) != nil, nil
}

func byteOrder(magic [4]byte) binary.ByteOrder {
	switch {
	case binary.LittleEndian.Uint32(magic[:]) == BigWigMagic:
		return binary.LittleEndian
	case binary.BigEndian.Uint32(magic[:]) == BigWigMagic:
		return binary.BigEndian
	}
	return nil
}

func (b *bigWigReader) section(off uint64) *io.SectionReader {
	return io.NewSectionReader(b.r, int64(off), math.MaxInt64-int64(off))
}

func (b *bigWigReader) readHeader() error {
	var magic [4]byte
	if _, err := b.r.ReadAt(magic[:], 0); err != nil {
		return fmt.Errorf("%w: %v", ErrNotBigWig, err)
	}
	b.order = byteOrder(magic)
	if b.order == nil {
		return ErrNotBigWig
	}
	if err := binary.Read(b.section(0), b.order, &b.hdr); err != nil {
		return fmt.Errorf("read bigWig header: %w", err)
	}
	return nil
}

func (b *bigWigReader) readChromTree(chroms map[uint32]string) error {
	var h ChromTreeHeader
	if err := binary.Read(b.section(b.hdr.ChromTreeOffset), b.order, &h); err != nil {
		return fmt.Errorf("read chromosome tree header: %w", err)
	}
	if h.Magic != ChromTreeMagic {
		return fmt.Errorf("bad chromosome tree magic %#x", h.Magic)
	}
	return b.readChromNode(b.hdr.ChromTreeOffset+uint64(binary.Size(h)), h.KeySize, chroms)
}

func (b *bigWigReader) readChromNode(off uint64, keySize uint32, chroms map[uint32]string) error {
	sr := b.section(off)
	var n NodeHeader
	if err := binary.Read(sr, b.order, &n); err != nil {
		return fmt.Errorf("read chromosome tree node: %w", err)
	}

	key := make([]byte, keySize)
	var children []uint64
	for range n.Count {
		if _, err := io.ReadFull(sr, key); err != nil {
			return fmt.Errorf("read chromosome key: %w", err)
		}
		if n.IsLeaf != 0 {
			var v struct{ ID, Size uint32 }
			if err := binary.Read(sr, b.order, &v); err != nil {
				return fmt.Errorf("read chromosome entry: %w", err)
			}
			chroms[v.ID] = string(bytes.TrimRight(key, "\x00"))
			continue
		}
		var child uint64
		if err := binary.Read(sr, b.order, &child); err != nil {
			return fmt.Errorf("read chromosome tree child: %w", err)
		}
		children = append(children, child)
	}

	for _, child := range children {
		if err := b.readChromNode(child, keySize, chroms); err != nil {
			return err
		}
	}
	return nil
}

func (b *bigWigReader) readIndex() ([]RTreeLeaf, error) {
	var h RTreeHeader
	if err := binary.Read(b.section(b.hdr.FullIndexOffset), b.order, &h); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if h.Magic != RTreeMagic {
		return nil, fmt.Errorf("bad index magic %#x", h.Magic)
	}
	return b.readIndexNode(b.hdr.FullIndexOffset+uint64(binary.Size(h)), nil)
}

func (b *bigWigReader) readIndexNode(off uint64, leaves []RTreeLeaf) ([]RTreeLeaf, error) {
	sr := b.section(off)
	var n NodeHeader
	if err := binary.Read(sr, b.order, &n); err != nil {
		return nil, fmt.Errorf("read index node: %w", err)
	}

	if n.IsLeaf != 0 {
		for range n.Count {
			var leaf RTreeLeaf
			if err := binary.Read(sr, b.order, &leaf); err != nil {
				return nil, fmt.Errorf("read index leaf: %w", err)
			}
			leaves = append(leaves, leaf)
		}
		return leaves, nil
	}

	branches := make([]rTreeBranch, n.Count)
	if err := binary.Read(sr, b.order, branches); err != nil {
		return nil, fmt.Errorf("read index branch: %w", err)
	}
	var err error
	for _, br := range branches {
		if leaves, err = b.readIndexNode(br.ChildOffset, leaves); err != nil {
			return nil, err
		}
	}
	return leaves, nil
}

func (b *bigWigReader) readBlock(leaf RTreeLeaf) ([]byte, error) {
	raw := make([]byte, leaf.DataSize)
	if _, err := b.r.ReadAt(raw, int64(leaf.DataOffset)); err != nil {
		return nil, fmt.Errorf("read block at %d: %w", leaf.DataOffset, err)
	}
	if b.hdr.UncompressBufSize == 0 {
		return raw, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("inflate block at %d: %w", leaf.DataOffset, err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate block at %d: %w", leaf.DataOffset, err)
	}
	return data, nil
}

// decodeSections appends the records of every section in data to out.
func decodeSections(data []byte, order binary.ByteOrder, chroms map[uint32]string, out []Interval) ([]Interval, error) {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var h SectionHeader
		if err := binary.Read(r, order, &h); err != nil {
			return nil, fmt.Errorf("read section header: %w", err)
		}
		chrom, ok := chroms[h.ChromID]
		if !ok {
			return nil, fmt.Errorf("section references unknown chromosome id %d", h.ChromID)
		}

		for i := range uint32(h.Count) {
			var iv Interval
			switch h.Type {
			case SectionBedGraph:
				var item struct {
					Start, End uint32
					Value      float32
				}
				if err := binary.Read(r, order, &item); err != nil {
					return nil, fmt.Errorf("read bedGraph item: %w", err)
				}
				iv = Interval{Start: int64(item.Start), End: int64(item.End), Value: float64(item.Value)}
			case SectionVarStep:
				var item struct {
					Start uint32
					Value float32
				}
				if err := binary.Read(r, order, &item); err != nil {
					return nil, fmt.Errorf("read varStep item: %w", err)
				}
				iv = Interval{Start: int64(item.Start), End: int64(item.Start + h.ItemSpan), Value: float64(item.Value)}
			case SectionFixedStep:
				var value float32
				if err := binary.Read(r, order, &value); err != nil {
					return nil, fmt.Errorf("read fixedStep item: %w", err)
				}
				start := h.Start + i*h.ItemStep
				iv = Interval{Start: int64(start), End: int64(start + h.ItemSpan), Value: float64(value)}
			default:
				return nil, fmt.Errorf("unknown section type %d", h.Type)
			}
			iv.Chrom = chrom
			out = append(out, iv)
		}
	}
	return out, nil
}
