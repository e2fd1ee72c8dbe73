package validation

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm/translator"
)

// A Builder can build validation harnesses.
type Builder struct {
	translator *translator.Translator
	addresses  *AddressReader
	oracle     *OracleReader
	tracker    *stats.Tracker
	delay      time.Duration
	out        io.Writer
	observers  []Observer
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		out: os.Stdout,
	}
}

// WithTranslator sets the translator the stream is replayed through.
func (b Builder) WithTranslator(t *translator.Translator) Builder {
	b.translator = t
	return b
}

// WithAddressReader sets the source of logical addresses.
func (b Builder) WithAddressReader(r *AddressReader) Builder {
	b.addresses = r
	return b
}

// WithOracleReader sets the source of expected outcomes.
func (b Builder) WithOracleReader(r *OracleReader) Builder {
	b.oracle = r
	return b
}

// WithTracker sets the tracker the run counters accumulate in.
func (b Builder) WithTracker(tracker *stats.Tracker) Builder {
	b.tracker = tracker
	return b
}

// WithDelay sets the simulated per-access latency.
func (b Builder) WithDelay(delay time.Duration) Builder {
	b.delay = delay
	return b
}

// WithOutput sets the writer mismatch reports go to.
func (b Builder) WithOutput(out io.Writer) Builder {
	b.out = out
	return b
}

// WithObserver registers an observer of every attempted access.
func (b Builder) WithObserver(observer Observer) Builder {
	b.observers = append(b.observers, observer)
	return b
}

// Build returns a harness ready to run.
func (b Builder) Build() *Harness {
	b.parametersMustBeValid()

	h := &Harness{
		translator: b.translator,
		addresses:  b.addresses,
		oracle:     b.oracle,
		tracker:    b.tracker,
		delay:      b.delay,
		out:        b.out,
		observers:  b.observers,
	}
	h.cond = sync.NewCond(&h.mu)

	return h
}

func (b Builder) parametersMustBeValid() {
	if b.translator == nil {
		panic("harness requires a translator")
	}

	if b.addresses == nil || b.oracle == nil {
		panic("harness requires an address reader and an oracle reader")
	}

	if b.tracker == nil {
		panic("harness requires a tracker")
	}

	if b.out == nil {
		panic("harness requires an output writer")
	}
}
