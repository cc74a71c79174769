package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/memsim/stats"
	"github.com/sarchlab/memsim/stats/statsdb"
)

// Builder can be used to build a simulation.
type Builder struct {
	outputFileName string
	recorder       statsdb.Recorder
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithOutputFileName sets the custom output file name for the results
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithRecorder overrides the default SQLite recorder.
func (b Builder) WithRecorder(rec statsdb.Recorder) Builder {
	b.recorder = rec
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.recorder != nil && b.outputFileName != "" {
		panic("output file name cannot be set when a recorder is provided")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
		procTable:     make(map[int]int),
	}

	s.id = xid.New().String()
	s.root = stats.NewAggregate("root", "memsim stats")

	s.recorder = b.recorder
	if s.recorder == nil {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "memsim_" + s.id
		}
		s.recorder = statsdb.NewSQLite(outputPath)
	}

	return s
}
