// Package simulation assembles the translation stack, the validation
// harness, and the supporting services of one simulation run.
package simulation

import (
	"fmt"
	"io"

	"github.com/seantronsen/virtual-memory-sim/config"
	"github.com/seantronsen/virtual-memory-sim/datarecording"
	"github.com/seantronsen/virtual-memory-sim/monitoring"
	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/validation"
	"github.com/seantronsen/virtual-memory-sim/vm/backingstore"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/seantronsen/virtual-memory-sim/vm/pagetable"
	"github.com/seantronsen/virtual-memory-sim/vm/tlb"
	"github.com/seantronsen/virtual-memory-sim/vm/translator"
)

// A Simulation provides the services required to run one simulation.
type Simulation struct {
	id  string
	cfg config.Config

	storage    *backingstore.Storage
	cache      *tlb.Cache
	table      *pagetable.Table
	pool       *framepool.Pool
	translator *translator.Translator
	tracker    *stats.Tracker

	addresses *validation.AddressReader
	oracle    *validation.OracleReader
	harness   *validation.Harness

	dataRecorder datarecording.DataRecorder
	runRecorder  *datarecording.RunRecorder
	monitor      *monitoring.Monitor

	progress      *progressObserver
	totalAccesses uint64
	out           io.Writer
}

// progressObserver advances the monitor progress bar as the harness scores
// accesses. The bar is attached when the run starts.
type progressObserver struct {
	bar *monitoring.ProgressBar
}

func (o *progressObserver) ObserveAccess(_ validation.AccessRecord) {
	if o.bar == nil {
		return
	}

	o.bar.IncrementFinished(1)
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Tracker returns the counter tracker of the simulation.
func (s *Simulation) Tracker() *stats.Tracker {
	return s.tracker
}

// Translator returns the address translator of the simulation.
func (s *Simulation) Translator() *translator.Translator {
	return s.translator
}

// Harness returns the validation harness of the simulation.
func (s *Simulation) Harness() *validation.Harness {
	return s.harness
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Run replays the recorded address stream through the translation stack and
// reports the outcome. The run counters end up on the output writer and in
// the run database.
func (s *Simulation) Run() error {
	fmt.Fprintln(s.out, "virtual memory simulation")
	fmt.Fprint(s.out, s.cfg)

	s.runRecorder.Start()

	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar("validation", s.totalAccesses)
		s.progress.bar = bar
		defer s.monitor.CompleteProgressBar(bar)
	}

	err := s.harness.Run()

	snapshot := s.tracker.Snapshot()
	s.runRecorder.End(snapshot)

	if err != nil {
		return err
	}

	fmt.Fprint(s.out, snapshot)

	return nil
}

// Terminate closes the input files and the recorder of the simulation.
func (s *Simulation) Terminate() {
	s.addresses.Close()
	s.oracle.Close()
	s.storage.Close()
	s.dataRecorder.Close()
}
