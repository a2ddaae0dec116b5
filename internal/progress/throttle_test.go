package progress

import (
	"testing"
	"time"
)

const testWindow = 50 * time.Millisecond

func collect() (chan Data, func(Data)) {
	ch := make(chan Data, 16)
	return ch, func(d Data) { ch <- d }
}

func TestThrottle_LeadingAndTrailing(t *testing.T) {
	ch, emit := collect()
	th := NewThrottle(testWindow, emit)
	defer th.Stop()

	th.Push(Data{Downloaded: 1})
	th.Push(Data{Downloaded: 2})
	th.Push(Data{Downloaded: 3})

	if got := len(ch); got != 1 {
		t.Fatalf("emitted %d snapshots synchronously, want 1", got)
	}
	if d := <-ch; d.Downloaded != 1 {
		t.Errorf("leading Downloaded = %d, want 1", d.Downloaded)
	}

	select {
	case d := <-ch:
		if d.Downloaded != 3 {
			t.Errorf("trailing Downloaded = %d, want 3 (latest)", d.Downloaded)
		}
	case <-time.After(time.Second):
		t.Fatal("trailing snapshot never emitted")
	}

	select {
	case d := <-ch:
		t.Errorf("unexpected extra emission %+v", d)
	case <-time.After(3 * testWindow):
	}
}

func TestThrottle_FinalFlushesAndCloses(t *testing.T) {
	ch, emit := collect()
	th := NewThrottle(testWindow, emit)

	th.Push(Data{Downloaded: 1})
	th.Push(Data{Downloaded: 2})
	th.Final(Data{Downloaded: 9})

	if got := len(ch); got != 2 {
		t.Fatalf("emitted %d snapshots, want 2", got)
	}
	<-ch
	if d := <-ch; d.Downloaded != 9 {
		t.Errorf("final Downloaded = %d, want 9", d.Downloaded)
	}

	th.Push(Data{Downloaded: 10})
	select {
	case d := <-ch:
		t.Errorf("emission after Final: %+v", d)
	case <-time.After(3 * testWindow):
	}
}

func TestThrottle_StopDropsPending(t *testing.T) {
	ch, emit := collect()
	th := NewThrottle(testWindow, emit)
	th.Push(Data{Downloaded: 1})
	th.Push(Data{Downloaded: 2})
	th.Stop()
	<-ch
	select {
	case d := <-ch:
		t.Errorf("emission after Stop: %+v", d)
	case <-time.After(3 * testWindow):
	}
}

func TestSnapshot(t *testing.T) {
	tests := []struct {
		name        string
		downloaded  int64
		total       int64
		wantRatio   float64
		wantPercent float64
	}{
		{name: "third", downloaded: 1, total: 3, wantRatio: 1.0 / 3, wantPercent: 33.33},
		{name: "done", downloaded: 10, total: 10, wantRatio: 1, wantPercent: 100},
		{name: "overshoot clamps", downloaded: 12, total: 10, wantRatio: 1, wantPercent: 100},
		{name: "unknown total", downloaded: 5, total: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Snapshot(tt.downloaded, tt.total, 0, 0, 0, false)
			if d.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", d.Ratio, tt.wantRatio)
			}
			if d.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, want %v", d.Percent, tt.wantPercent)
			}
			if d.Indeterminate {
				t.Errorf("Snapshot should not be indeterminate")
			}
		})
	}
}

func TestSnapshotStrings(t *testing.T) {
	d := Snapshot(1024, 4096, 1024, 61*time.Second, 3*time.Second, true)
	if d.Speed != "1.0 KiB/s" || d.Elapsed != "1:01" || d.ETA != "0:03" {
		t.Errorf("Snapshot strings = %q %q %q", d.Speed, d.Elapsed, d.ETA)
	}
	if d := Snapshot(0, 10, 0, 0, 0, false); d.ETA != "" {
		t.Errorf("ETA without estimate = %q, want empty", d.ETA)
	}
	if d := Indeterminate(2 * time.Second); !d.Indeterminate || d.Elapsed != "0:02" {
		t.Errorf("Indeterminate() = %+v", d)
	}
}
