package simulation

import (
	"io"
	"os"
	"time"

	"github.com/rs/xid"
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

// Builder can be used to build a simulation.
type Builder struct {
	cfg            config.Config
	monitorOn      bool
	monitorPort    int
	outputFileName string
	out            io.Writer
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:       config.Default(),
		monitorOn: true,
		out:       os.Stdout,
	}
}

// WithConfig sets the configuration of the simulation.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithOutput sets the writer that receives the run report.
func (b Builder) WithOutput(out io.Writer) Builder {
	b.out = out
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation. It opens the input files named by the
// configuration and fails if any of them is unusable.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:       xid.New().String(),
		cfg:      b.cfg,
		progress: &progressObserver{},
		out:      b.out,
	}

	if err := b.openInputs(s); err != nil {
		return nil, err
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "vmsim_run_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)
	s.runRecorder = datarecording.NewRunRecorder(s.dataRecorder, b.cfg)

	b.buildTranslationStack(s)
	b.buildHarness(s)

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) openInputs(s *Simulation) error {
	space := b.cfg.Space()

	storage, err := backingstore.MakeBuilder().
		WithPath(b.cfg.FileStorage).
		WithPageCount(space.PageCount).
		WithFrameSize(space.FrameSize).
		Build()
	if err != nil {
		return err
	}
	s.storage = storage

	addresses, err := validation.NewAddressReader(b.cfg.FileAddress)
	if err != nil {
		s.storage.Close()
		return err
	}
	s.addresses = addresses

	oracle, err := validation.NewOracleReader(b.cfg.FileValidation)
	if err != nil {
		s.addresses.Close()
		s.storage.Close()
		return err
	}
	s.oracle = oracle

	total, err := validation.CountLines(b.cfg.FileAddress)
	if err != nil {
		s.oracle.Close()
		s.addresses.Close()
		s.storage.Close()
		return err
	}
	s.totalAccesses = total

	return nil
}

func (b Builder) buildTranslationStack(s *Simulation) {
	// Validate() already vetted the policy name.
	finder, err := framepool.NewVictimFinder(
		b.cfg.Policy, time.Now().UnixNano())
	if err != nil {
		panic(err)
	}

	s.tracker = stats.NewTracker()
	s.cache = tlb.New(int(b.cfg.SizeTLB))
	s.table = pagetable.New(b.cfg.SizeTable)
	s.pool = framepool.MakeBuilder().
		WithCapacity(b.cfg.PoolCapacity()).
		WithFrameSize(b.cfg.SizeFrame).
		WithVictimFinder(finder).
		Build()

	s.translator = translator.MakeBuilder().
		WithAddressSpace(b.cfg.Space()).
		WithCache(s.cache).
		WithPageTable(s.table).
		WithFramePool(s.pool).
		WithPageLoader(s.storage).
		WithTracker(s.tracker).
		Build()
}

func (b Builder) buildHarness(s *Simulation) {
	s.harness = validation.MakeBuilder().
		WithTranslator(s.translator).
		WithAddressReader(s.addresses).
		WithOracleReader(s.oracle).
		WithTracker(s.tracker).
		WithDelay(b.cfg.Delay()).
		WithOutput(b.out).
		WithObserver(s.runRecorder).
		WithObserver(s.progress).
		Build()
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterRun(s.harness)
	s.monitor.RegisterTracker(s.tracker)
	s.monitor.RegisterComponent("tlb", s.cache)
	s.monitor.RegisterComponent("pagetable", s.table)
	s.monitor.RegisterComponent("framepool", s.pool)
	s.monitor.RegisterComponent("storage", s.storage)
	s.monitor.StartServer()
}
