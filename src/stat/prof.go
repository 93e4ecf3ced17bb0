// Package stat exposes scheduler accounting to userspace as a pprof-format
// profile, the modern equivalent of Biscuit's stat/stats/oommsg counters.
package stat

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/google/pprof/profile"

	"sched"
	"vfs"
)

// Build turns a scheduler snapshot into a pprof profile with one sample per
// task: the sample's value is the PIT ticks charged to that task, and its
// label records the task's priority level.
func Build(samples []sched.TaskSample) *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "ticks", Unit: "count"}},
	}
	for i, s := range samples {
		id := uint64(i + 1)
		fn := &profile.Function{
			ID:   id,
			Name: fmt.Sprintf("task%d.prio%d", s.ID, s.Priority),
		}
		loc := &profile.Location{
			ID:   id,
			Line: []profile.Line{{Function: fn}},
		}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(s.Ticks)},
			Label:    map[string][]string{"priority": {strconv.Itoa(int(s.Priority))}},
		})
	}
	return p
}

// Snapshot renders the current scheduler state as a gzip'd protobuf, the
// exact bytes a /dev/prof reader receives.
func Snapshot() ([]byte, error) {
	p := Build(sched.Snapshot())
	if err := p.CheckValid(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Device is the /dev/prof file: a read-only snapshot of scheduler
// accounting, rendered fresh the first time it's read after being opened so
// repeated opens see up-to-date counters without needing a Seek/truncate
// dance.
type Device struct {
	vfs.NopInterface
	data   []byte
	offset int64
}

// NewDevice returns a /dev/prof handle with no rendered snapshot yet; the
// first Read call takes one.
func NewDevice() *Device {
	return &Device{}
}

func (d *Device) Read(buf []byte) (int, error) {
	if d.data == nil {
		rendered, err := Snapshot()
		if err != nil {
			return 0, err
		}
		d.data = rendered
	}
	if d.offset >= int64(len(d.data)) {
		return 0, nil
	}
	n := copy(buf, d.data[d.offset:])
	d.offset += int64(n)
	return n, nil
}

func (d *Device) Fstat() (vfs.State, error) {
	return vfs.State{Size: int64(len(d.data))}, nil
}

func (d *Device) Metadata() (vfs.Metadata, error) {
	return vfs.NewMetadata(vfs.KindCharDevice), nil
}
