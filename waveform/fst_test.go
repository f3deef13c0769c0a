package waveform

import (
	"bytes"
	"testing"

	"github.com/sarchlab/aionhdl/fourval"
)

func TestFSTRecorderHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFSTRecorder(&buf)

	if err := rec.RegisterSignal(1, "top.clk", 1); err != nil {
		t.Fatalf("RegisterSignal: %v", err)
	}
	if err := rec.RegisterSignal(2, "top.data", 8); err != nil {
		t.Fatalf("RegisterSignal: %v", err)
	}
	if err := rec.RecordChange(0, 1, fourval.FromU64(1, 0)); err != nil {
		t.Fatalf("RecordChange: %v", err)
	}
	if err := rec.RecordChange(1_000_000, 1, fourval.FromU64(1, 1)); err != nil {
		t.Fatalf("RecordChange: %v", err)
	}
	if err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	blocks, err := readBlocks(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readBlocks: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(blocks))
	}

	header, err := parseHeader(blocks[0].Payload)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if header.StartTime != 0 {
		t.Errorf("StartTime = %d, want 0", header.StartTime)
	}
	if header.EndTime != 1_000_000 {
		t.Errorf("EndTime = %d, want 1000000", header.EndTime)
	}
	if header.NumVars != 2 {
		t.Errorf("NumVars = %d, want 2", header.NumVars)
	}
	if header.TimeExp != -15 {
		t.Errorf("TimeExp = %d, want -15", header.TimeExp)
	}
}

func TestFSTRecorderGeometryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFSTRecorder(&buf)
	rec.RegisterSignal(1, "a", 1)
	rec.RegisterSignal(2, "b", 16)
	rec.RegisterSignal(3, "c", 32)
	rec.RecordChange(0, 1, fourval.FromU64(1, 1))
	if err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	blocks, err := readBlocks(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readBlocks: %v", err)
	}
	var geometry []uint32
	for _, b := range blocks {
		if b.Type == blockGeometry {
			geometry, err = parseGeometry(b.Payload)
			if err != nil {
				t.Fatalf("parseGeometry: %v", err)
			}
		}
	}
	want := []uint32{1, 16, 32}
	if len(geometry) != len(want) {
		t.Fatalf("geometry = %v, want %v", geometry, want)
	}
	for i := range want {
		if geometry[i] != want[i] {
			t.Errorf("geometry[%d] = %d, want %d", i, geometry[i], want[i])
		}
	}
}

func TestFSTRecorderHierarchyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFSTRecorder(&buf)
	rec.BeginScope("top")
	rec.RegisterSignal(1, "clk", 1)
	rec.RegisterSignal(2, "rst", 1)
	rec.EndScope()
	rec.RecordChange(0, 1, fourval.FromU64(1, 0))
	if err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	blocks, err := readBlocks(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readBlocks: %v", err)
	}
	var names []string
	for _, b := range blocks {
		if b.Type == blockHierarchy {
			names, err = parseHierarchyNames(b.Payload)
			if err != nil {
				t.Fatalf("parseHierarchyNames: %v", err)
			}
		}
	}
	want := []string{"clk", "rst"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestFSTRecorderRejectsDoubleRegistration(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFSTRecorder(&buf)
	if err := rec.RegisterSignal(1, "clk", 1); err != nil {
		t.Fatalf("RegisterSignal: %v", err)
	}
	if err := rec.RegisterSignal(1, "clk", 1); err == nil {
		t.Fatal("expected error registering the same signal id twice")
	}
}

func TestFSTRecorderRejectsUnregisteredChange(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFSTRecorder(&buf)
	if err := rec.RecordChange(0, 99, fourval.FromU64(1, 1)); err == nil {
		t.Fatal("expected error recording a change for an unregistered signal")
	}
}
