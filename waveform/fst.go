package waveform

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/rs/xid"

	"github.com/sarchlab/aionhdl/fourval"
)

// blockType is an FST block type identifier.
type blockType uint8

const (
	blockHeader   blockType = 0
	blockVCData   blockType = 1
	blockGeometry blockType = 3
	blockHierarchy blockType = 4
)

// FST hierarchy tag bytes and variable/scope type codes, per the FST spec.
const (
	fstScopeTag   = 0xFE
	fstUpscopeTag = 0xFF
	fstVarWire    = 0x05
	fstVarReg     = 0x04
	fstScopeModule = 0x03
)

type hierEntry struct {
	kind  hierKind
	name  string
	index uint32
	width uint32
}

type hierKind uint8

const (
	hierScope hierKind = iota
	hierUpscope
	hierVar
)

type valueChange struct {
	timeFS      uint64
	signalIndex uint32
	value       fourval.Vec
}

// FSTRecorder buffers every hierarchy declaration and value change in
// memory, then writes the full FST binary on Finalize. The FST header
// block needs the total signal count and time range up front, so there is
// no way to stream the file incrementally.
type FSTRecorder struct {
	w io.Writer

	signalIndex map[int]uint32
	nextIndex   uint32
	widths      []uint32
	hierarchy   []hierEntry
	changes     []valueChange

	startTime  uint64
	endTime    uint64
	hasChanges bool

	writerTag string
}

// NewFSTRecorder returns a recorder that writes its FST file to w on
// Finalize. Each recorder stamps its header with a fresh session tag so
// two waveform files from the same run are never confused for one
// another.
func NewFSTRecorder(w io.Writer) *FSTRecorder {
	return &FSTRecorder{
		w:           w,
		signalIndex: make(map[int]uint32),
		writerTag:   xid.New().String(),
	}
}

func (f *FSTRecorder) RegisterSignal(id int, name string, width int) error {
	if _, exists := f.signalIndex[id]; exists {
		return fmt.Errorf("waveform: signal %d already registered", id)
	}
	index := f.nextIndex
	f.nextIndex++
	f.signalIndex[id] = index
	f.widths = append(f.widths, uint32(width))
	f.hierarchy = append(f.hierarchy, hierEntry{kind: hierVar, name: name, index: index, width: uint32(width)})
	return nil
}

func (f *FSTRecorder) BeginScope(name string) error {
	f.hierarchy = append(f.hierarchy, hierEntry{kind: hierScope, name: name})
	return nil
}

func (f *FSTRecorder) EndScope() error {
	f.hierarchy = append(f.hierarchy, hierEntry{kind: hierUpscope})
	return nil
}

func (f *FSTRecorder) RecordChange(timeFS uint64, id int, value fourval.Vec) error {
	index, ok := f.signalIndex[id]
	if !ok {
		return fmt.Errorf("waveform: unregistered signal %d", id)
	}
	if !f.hasChanges {
		f.startTime = timeFS
		f.hasChanges = true
	}
	f.endTime = timeFS
	f.changes = append(f.changes, valueChange{timeFS: timeFS, signalIndex: index, value: value})
	return nil
}

func (f *FSTRecorder) Finalize() error {
	if err := f.writeHeaderBlock(); err != nil {
		return err
	}
	if err := f.writeVCDataBlock(); err != nil {
		return err
	}
	if err := f.writeGeometryBlock(); err != nil {
		return err
	}
	if err := f.writeHierarchyBlock(); err != nil {
		return err
	}
	if flusher, ok := f.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// writeHeaderBlock writes the fixed 329-byte FST header payload: time
// range, endianness probe, scope/var/vc counts, timescale, and the
// writer/date identity strings.
func (f *FSTRecorder) writeHeaderBlock() error {
	payload := make([]byte, 329)

	binary.BigEndian.PutUint64(payload[0:8], f.startTime)
	binary.BigEndian.PutUint64(payload[8:16], f.endTime)
	binary.LittleEndian.PutUint64(payload[16:24], math.Float64bits(math.E))
	binary.BigEndian.PutUint64(payload[24:32], 0) // writer memory use

	scopeCount := uint64(0)
	for _, h := range f.hierarchy {
		if h.kind == hierScope {
			scopeCount++
		}
	}
	binary.BigEndian.PutUint64(payload[32:40], scopeCount)
	binary.BigEndian.PutUint64(payload[40:48], uint64(f.nextIndex))
	binary.BigEndian.PutUint64(payload[48:56], uint64(f.nextIndex))

	vcCount := uint64(0)
	if f.hasChanges {
		vcCount = 1
	}
	binary.BigEndian.PutUint64(payload[56:64], vcCount)

	payload[64] = byte(int8(-15)) // timescale exponent: femtoseconds

	writerStr := []byte("aionhdl " + f.writerTag)
	copy(payload[65:65+min(len(writerStr), 127)], writerStr)

	dateStr := []byte("1970-01-01 00:00:00\n")
	copy(payload[193:193+min(len(dateStr), 25)], dateStr)

	payload[312] = 0 // file type: Verilog
	binary.BigEndian.PutUint64(payload[313:321], 0)

	return writeBlock(f.w, blockHeader, payload)
}

// buildBitsArray returns one ASCII byte per bit (MSB first) of every
// signal's value at startTime, or 'x' for a signal with no change that
// early.
func (f *FSTRecorder) buildBitsArray() []byte {
	initial := make([]*fourval.Vec, f.nextIndex)
	for i := range f.changes {
		c := &f.changes[i]
		if c.timeFS == f.startTime {
			initial[c.signalIndex] = &c.value
		}
	}

	var bits []byte
	for i, v := range initial {
		width := int(f.widths[i])
		if v == nil {
			for j := 0; j < width; j++ {
				bits = append(bits, 'x')
			}
			continue
		}
		for bit := width - 1; bit >= 0; bit-- {
			bits = append(bits, logicByte(v.Bit(bit)))
		}
	}
	return bits
}

func logicByte(l fourval.Logic) byte {
	switch l {
	case fourval.Zero:
		return '0'
	case fourval.One:
		return '1'
	case fourval.Z:
		return 'z'
	default:
		return 'x'
	}
}

// buildWavesAndPositions encodes every post-startTime value change per
// signal, returning the concatenated wave data and each signal's 1-based
// byte offset into it (0 meaning "no changes").
func (f *FSTRecorder) buildWavesAndPositions(uniqueTimes []uint64) ([]byte, []uint64) {
	timeIndex := make(map[uint64]uint64, len(uniqueTimes))
	for i, t := range uniqueTimes {
		timeIndex[t] = uint64(i)
	}

	perSignal := make([][]valueChange, f.nextIndex)
	for _, c := range f.changes {
		if c.timeFS == f.startTime {
			continue
		}
		perSignal[c.signalIndex] = append(perSignal[c.signalIndex], c)
	}

	var waves bytes.Buffer
	positions := make([]uint64, f.nextIndex)

	for idx, changes := range perSignal {
		if len(changes) == 0 {
			continue
		}
		positions[idx] = uint64(waves.Len()) + 1
		width := int(f.widths[idx])

		var sig bytes.Buffer
		var prevIdx uint64
		for _, c := range changes {
			t := timeIndex[c.timeFS]
			delta := t - prevIdx
			prevIdx = t

			if width == 1 {
				switch c.value.Bit(0) {
				case fourval.Zero:
					writeVarint(&sig, delta<<2)
				case fourval.One:
					writeVarint(&sig, (delta<<2)|2)
				case fourval.X:
					writeVarint(&sig, (delta<<4)|1)
				default:
					writeVarint(&sig, (delta<<4)|3)
				}
			} else {
				writeVarint(&sig, (delta<<1)|1)
				for bit := width - 1; bit >= 0; bit-- {
					sig.WriteByte(logicByte(c.value.Bit(bit)))
				}
			}
		}

		writeVarint(&waves, 0) // uncompressed-length marker: unpacked per-signal entry
		waves.Write(sig.Bytes())
	}

	return waves.Bytes(), positions
}

func encodePositionTable(positions []uint64) []byte {
	var buf bytes.Buffer
	for _, p := range positions {
		writeVarint(&buf, p)
	}
	return buf.Bytes()
}

func buildTimeTable(uniqueTimes []uint64) []byte {
	var buf bytes.Buffer
	var prev uint64
	for _, t := range uniqueTimes {
		writeVarint(&buf, t-prev)
		prev = t
	}
	return buf.Bytes()
}

// writeVCDataBlock writes the type-1 value-change block: bits (initial
// values), waves (subsequent changes), the position table, and the time
// table. Bits, waves and the time table are each compressed independently
// with ZLib; the position table is written uncompressed.
func (f *FSTRecorder) writeVCDataBlock() error {
	if !f.hasChanges {
		return nil
	}

	uniqueTimes := make([]uint64, 0, len(f.changes))
	seen := make(map[uint64]bool)
	for _, c := range f.changes {
		if !seen[c.timeFS] {
			seen[c.timeFS] = true
			uniqueTimes = append(uniqueTimes, c.timeFS)
		}
	}
	sort.Slice(uniqueTimes, func(i, j int) bool { return uniqueTimes[i] < uniqueTimes[j] })

	bitsRaw := f.buildBitsArray()
	bitsCompressed, err := compressZlib(bitsRaw)
	if err != nil {
		return err
	}

	wavesRaw, positions := f.buildWavesAndPositions(uniqueTimes)
	var wavesCompressed []byte
	if len(wavesRaw) > 0 {
		wavesCompressed, err = compressZlib(wavesRaw)
		if err != nil {
			return err
		}
	}

	positionRaw := encodePositionTable(positions)

	timeRaw := buildTimeTable(uniqueTimes)
	timeCompressed, err := compressZlib(timeRaw)
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	writeU64BE(&payload, f.startTime)
	writeU64BE(&payload, f.endTime)
	writeU64BE(&payload, 0) // memory_required

	writeVarint(&payload, uint64(len(bitsRaw)))
	writeVarint(&payload, uint64(len(bitsCompressed)))
	writeVarint(&payload, uint64(f.nextIndex))
	payload.Write(bitsCompressed)

	writeVarint(&payload, uint64(f.nextIndex))
	payload.WriteByte('Z') // waves packtype: ZLib
	payload.Write(wavesCompressed)

	payload.Write(positionRaw)
	writeU64BE(&payload, uint64(len(positionRaw)))

	payload.Write(timeCompressed)
	writeU64BE(&payload, uint64(len(timeRaw)))
	writeU64BE(&payload, uint64(len(timeCompressed)))
	writeU64BE(&payload, uint64(len(uniqueTimes)))

	return writeBlock(f.w, blockVCData, payload.Bytes())
}

// writeGeometryBlock writes the type-3 block: every signal's bit width,
// ZLib-compressed.
func (f *FSTRecorder) writeGeometryBlock() error {
	var raw bytes.Buffer
	for _, w := range f.widths {
		writeVarint(&raw, uint64(w))
	}

	compressed, err := compressZlib(raw.Bytes())
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	writeU64BE(&payload, uint64(raw.Len()))
	writeU64BE(&payload, uint64(len(f.widths)))
	payload.Write(compressed)

	return writeBlock(f.w, blockGeometry, payload.Bytes())
}

// writeHierarchyBlock writes the type-4 block: the tagged scope/upscope/
// var entry stream, GZip-compressed.
func (f *FSTRecorder) writeHierarchyBlock() error {
	var raw bytes.Buffer
	for _, h := range f.hierarchy {
		switch h.kind {
		case hierScope:
			raw.WriteByte(fstScopeTag)
			raw.WriteByte(fstScopeModule)
			raw.WriteString(h.name)
			raw.WriteByte(0)
			raw.WriteByte(0) // component name, empty
		case hierUpscope:
			raw.WriteByte(fstUpscopeTag)
		case hierVar:
			if h.width == 1 {
				raw.WriteByte(fstVarWire)
			} else {
				raw.WriteByte(fstVarReg)
			}
			raw.WriteByte(0) // direction: implicit
			raw.WriteString(h.name)
			raw.WriteByte(0)
			writeVarint(&raw, uint64(h.width))
			writeVarint(&raw, 0) // alias: new variable
		}
	}

	compressed, err := compressGzip(raw.Bytes())
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	writeU64BE(&payload, uint64(raw.Len()))
	payload.Write(compressed)

	return writeBlock(f.w, blockHierarchy, payload.Bytes())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// writeVarint writes value as unsigned LEB128.
func writeVarint(w *bytes.Buffer, value uint64) {
	for {
		b := byte(value & 0x7F)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if value == 0 {
			break
		}
	}
}

func writeU64BE(w *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBlock writes an FST block: a one-byte type tag followed by an
// 8-byte big-endian section length (which counts itself but not the type
// byte) and the payload.
func writeBlock(w io.Writer, bt blockType, payload []byte) error {
	if _, err := w.Write([]byte{byte(bt)}); err != nil {
		return err
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(8+len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
