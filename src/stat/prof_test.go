package stat

import (
	"bytes"
	"testing"

	"sched"
)

func samples() []sched.TaskSample {
	return []sched.TaskSample{
		{ID: 0, Priority: sched.LowPriority, Ticks: 7},
		{ID: 1, Priority: sched.HighPriority, Ticks: 3},
	}
}

func TestBuildProducesOneSamplePerTask(t *testing.T) {
	p := Build(samples())
	if len(p.Sample) != 2 {
		t.Fatalf("Sample count = %d, want 2", len(p.Sample))
	}
	if len(p.Function) != 2 || len(p.Location) != 2 {
		t.Fatalf("Function/Location count = %d/%d, want 2/2", len(p.Function), len(p.Location))
	}
	if p.Sample[0].Value[0] != 7 {
		t.Fatalf("first sample value = %d, want 7", p.Sample[0].Value[0])
	}
	if p.Sample[0].Label["priority"][0] != "0" {
		t.Fatalf("first sample priority label = %q, want %q", p.Sample[0].Label["priority"][0], "0")
	}
}

func TestBuildProducesValidProfile(t *testing.T) {
	p := Build(samples())
	if err := p.CheckValid(); err != nil {
		t.Fatalf("CheckValid: %v", err)
	}
}

func TestBuildHandlesNoTasks(t *testing.T) {
	p := Build(nil)
	if err := p.CheckValid(); err != nil {
		t.Fatalf("CheckValid on empty snapshot: %v", err)
	}
	if len(p.Sample) != 0 {
		t.Fatalf("Sample count = %d, want 0", len(p.Sample))
	}
}

func TestDeviceReadReturnsRenderedPayload(t *testing.T) {
	d := &Device{data: buildGzippedFixture(t)}
	buf := make([]byte, 4096)
	n, err := d.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("expected a non-empty read")
	}
	if !bytes.HasPrefix(buf[:n], []byte{0x1f, 0x8b}) {
		t.Fatal("expected a gzip-magic-prefixed payload")
	}
}

func TestDeviceReadAdvancesOffsetAndEventuallyReturnsEOF(t *testing.T) {
	d := &Device{data: buildGzippedFixture(t)}
	first := make([]byte, len(d.data))
	n, err := d.Read(first)
	if err != nil || n != len(d.data) {
		t.Fatalf("Read: n=%d err=%v", n, err)
	}
	n, err = d.Read(first)
	if err != nil || n != 0 {
		t.Fatalf("second Read: n=%d err=%v, want 0, nil", n, err)
	}
}

func buildGzippedFixture(t *testing.T) []byte {
	t.Helper()
	p := Build(samples())
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}
