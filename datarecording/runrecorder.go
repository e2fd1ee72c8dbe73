package datarecording

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/seantronsen/virtual-memory-sim/config"
	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/validation"
)

// runInfo rows describe the execution itself.
type runInfo struct {
	Property string
	Value    string
}

// runConfigEntry rows hold one configuration parameter each.
type runConfigEntry struct {
	Parameter string
	Value     string
}

// AccessTrace is one recorded access in the access_trace table.
type AccessTrace struct {
	Sequence uint64
	Virtual  uint64
	Page     uint64
	Offset   uint64
	Physical uint64
	Value    int8
	Outcome  string
	Match    bool
}

// RunSummary is the single row of final counters written when a run ends.
type RunSummary struct {
	AttemptedAccesses uint64
	CorrectAccesses   uint64
	PageHits          uint64
	TLBHits           uint64
	TLBFlushes        uint64
	TLBHitRatio       float64
	PageHitRatio      float64
}

// A RunRecorder writes everything one simulation run produces: the
// execution metadata, the configuration, every attempted access, and the
// final summary. It observes the validation harness for the trace.
type RunRecorder struct {
	id       string
	recorder DataRecorder
	cfg      config.Config
}

// NewRunRecorder creates the run tables on the backend and returns a
// recorder bound to a fresh run ID.
func NewRunRecorder(recorder DataRecorder, cfg config.Config) *RunRecorder {
	r := &RunRecorder{
		id:       xid.New().String(),
		recorder: recorder,
		cfg:      cfg,
	}

	recorder.CreateTable("run_info", runInfo{})
	recorder.CreateTable("run_config", runConfigEntry{})
	recorder.CreateTable("access_trace", AccessTrace{})
	recorder.CreateTable("run_summary", RunSummary{})

	return r
}

// ID returns the run's identifier.
func (r *RunRecorder) ID() string {
	return r.id
}

// Start records the execution metadata and the run configuration.
func (r *RunRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.recorder.InsertData("run_info", runInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	r.recorder.InsertData("run_info", runInfo{"Command", cmd})

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	r.recorder.InsertData("run_info", runInfo{"Working Directory", cwd})
	r.recorder.InsertData("run_info", runInfo{"Run ID", r.id})

	r.recordConfig()
}

func (r *RunRecorder) recordConfig() {
	for _, entry := range []runConfigEntry{
		{"file_storage", r.cfg.FileStorage},
		{"file_validation", r.cfg.FileValidation},
		{"file_address", r.cfg.FileAddress},
		{"size_table", fmt.Sprintf("%d", r.cfg.SizeTable)},
		{"size_tlb", fmt.Sprintf("%d", r.cfg.SizeTLB)},
		{"size_frame", fmt.Sprintf("%d", r.cfg.SizeFrame)},
		{"size_pool", fmt.Sprintf("%d", r.cfg.PoolCapacity())},
		{"delay_us", fmt.Sprintf("%d", r.cfg.DelayUS)},
		{"policy", r.cfg.Policy},
	} {
		r.recorder.InsertData("run_config", entry)
	}
}

// ObserveAccess records one attempted access into the trace.
func (r *RunRecorder) ObserveAccess(record validation.AccessRecord) {
	r.recorder.InsertData("access_trace", AccessTrace{
		Sequence: record.Sequence,
		Virtual:  record.Access.Virtual.Raw,
		Page:     record.Access.Virtual.PageNumber,
		Offset:   record.Access.Virtual.Offset,
		Physical: record.Access.Physical,
		Value:    record.Access.Value,
		Outcome:  record.Access.Outcome.String(),
		Match:    record.Match,
	})
}

// End records the end time and the final counters, then flushes the
// backend.
func (r *RunRecorder) End(snapshot stats.Snapshot) {
	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.recorder.InsertData("run_info", runInfo{"End Time", endTime})

	r.recorder.InsertData("run_summary", RunSummary{
		AttemptedAccesses: snapshot.AttemptedAccesses,
		CorrectAccesses:   snapshot.CorrectAccesses,
		PageHits:          snapshot.PageHits,
		TLBHits:           snapshot.TLBHits,
		TLBFlushes:        snapshot.TLBFlushes,
		TLBHitRatio:       snapshot.TLBHitRatio(),
		PageHitRatio:      snapshot.PageHitRatio(),
	})

	r.recorder.Flush()
}
