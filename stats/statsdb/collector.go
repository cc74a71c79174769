package statsdb

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sarchlab/memsim/stats"
)

// SnapshotRow is one counter sample in the "stats" table.
type SnapshotRow struct {
	Phase uint64
	Path  string
	Value uint64
}

// PeriodicCollector snapshots the statistics tree into a Recorder once per
// collection interval, so a run's counters can be plotted over simulated
// phases rather than only read at the end.
type PeriodicCollector struct {
	mu sync.Mutex

	rec      Recorder
	root     *stats.Aggregate
	interval uint64

	lastPhase uint64
	started   bool
}

// NewPeriodicCollector creates a collector that dumps the tree under root
// every interval phases. An interval of zero dumps on every PhaseEnded call.
func NewPeriodicCollector(
	rec Recorder,
	root *stats.Aggregate,
	interval uint64,
) *PeriodicCollector {
	rec.CreateTable("stats", SnapshotRow{})

	return &PeriodicCollector{
		rec:      rec,
		root:     root,
		interval: interval,
	}
}

// PhaseEnded dumps a snapshot when the collection interval has elapsed since
// the previous dump.
func (c *PeriodicCollector) PhaseEnded(phase uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started && phase-c.lastPhase < c.interval {
		return
	}
	c.lastPhase = phase
	c.started = true

	c.dump(phase)
}

// Dump records a snapshot unconditionally, for the end of a run.
func (c *PeriodicCollector) Dump(phase uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dump(phase)
}

func (c *PeriodicCollector) dump(phase uint64) {
	c.walk(c.root, "", phase)
}

func (c *PeriodicCollector) walk(s stats.Stat, prefix string, phase uint64) {
	switch st := s.(type) {
	case *stats.Aggregate:
		for _, child := range st.Children() {
			path := child.Name()
			if prefix != "" {
				path = prefix + "." + child.Name()
			}
			c.walk(child, path, phase)
		}
	case stats.Vector:
		for i := 0; i < st.Size(); i++ {
			c.rec.Insert("stats", SnapshotRow{
				Phase: phase,
				Path:  prefix + "." + st.ElemName(i),
				Value: st.At(i),
			})
		}
	case stats.Scalar:
		c.rec.Insert("stats", SnapshotRow{
			Phase: phase,
			Path:  prefix,
			Value: st.Value(),
		})
	}
}

// RunInfoRow is one property of the run in the "run_info" table.
type RunInfoRow struct {
	Property string
	Value    string
}

// RunLog records what was executed and when into the "run_info" table.
type RunLog struct {
	rec     Recorder
	entries []RunInfoRow
}

// NewRunLog creates the run_info table and captures the start time, the
// command line, and the working directory.
func NewRunLog(rec Recorder) *RunLog {
	rec.CreateTable("run_info", RunInfoRow{})

	l := &RunLog{rec: rec}

	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	l.entries = append(l.entries, RunInfoRow{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	l.entries = append(l.entries, RunInfoRow{"Command", cmd})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	l.entries = append(l.entries, RunInfoRow{"Working Directory", filepath.Dir(ex)})

	return l
}

// End writes the captured properties along with the end time.
func (l *RunLog) End() {
	for _, entry := range l.entries {
		l.rec.Insert("run_info", entry)
	}
	l.entries = nil

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	l.rec.Insert("run_info", RunInfoRow{"End Time", endTime})

	l.rec.Flush()
}
