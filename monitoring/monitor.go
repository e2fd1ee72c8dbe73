// Package monitoring provides a web server that exposes the internal state
// of a running simulation.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/seantronsen/virtual-memory-sim/monitoring/web"
	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A Run is a simulation run that the monitor can suspend and resume.
type Run interface {
	Pause()
	Continue()
}

type namedComponent struct {
	name      string
	component any
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	run        Run
	tracker    *stats.Tracker
	components []namedComponent
	portNumber int
	actualPort int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterRun registers the run controlled through the pause and continue
// endpoints.
func (m *Monitor) RegisterRun(r Run) {
	m.run = r
}

// RegisterTracker registers the counter tracker served by the statistics and
// metrics endpoints.
func (m *Monitor) RegisterTracker(t *stats.Tracker) {
	m.tracker = t
}

// RegisterComponent registers a component to be inspected through the
// component endpoints.
func (m *Monitor) RegisterComponent(name string, c any) {
	m.components = append(m.components, namedComponent{
		name:      name,
		component: c,
	})
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/pause", m.pauseRun)
	r.HandleFunc("/api/continue", m.continueRun)
	r.HandleFunc("/api/stats", m.reportStatistics)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", m.metricsHandler())
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.actualPort = listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(
		os.Stderr,
		"Monitoring simulation with http://localhost:%d\n",
		m.actualPort)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// Port returns the port the server listens on. It is zero before StartServer
// is called.
func (m *Monitor) Port() int {
	return m.actualPort
}

func (m *Monitor) pauseRun(w http.ResponseWriter, _ *http.Request) {
	m.run.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	m.run.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type statisticsRsp struct {
	AttemptedAccesses uint64  `json:"attempted_accesses"`
	CorrectAccesses   uint64  `json:"correct_accesses"`
	PageHits          uint64  `json:"page_hits"`
	TLBHits           uint64  `json:"tlb_hits"`
	TLBFlushes        uint64  `json:"tlb_flushes"`
	TLBHitRatio       float64 `json:"tlb_hit_ratio"`
	PageHitRatio      float64 `json:"page_hit_ratio"`
}

func (m *Monitor) reportStatistics(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.tracker.Snapshot()
	rsp := statisticsRsp{
		AttemptedAccesses: snapshot.AttemptedAccesses,
		CorrectAccesses:   snapshot.CorrectAccesses,
		PageHits:          snapshot.PageHits,
		TLBHits:           snapshot.TLBHits,
		TLBFlushes:        snapshot.TLBFlushes,
		TLBHitRatio:       snapshot.TLBHitRatio(),
		PageHitRatio:      snapshot.PageHitRatio(),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) metricsHandler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "vmsim_attempted_accesses_total",
			Help: "Number of addresses pulled from the address stream.",
		}, func() float64 {
			return float64(m.tracker.Snapshot().AttemptedAccesses)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "vmsim_correct_accesses_total",
			Help: "Number of accesses whose value matched the oracle.",
		}, func() float64 {
			return float64(m.tracker.Snapshot().CorrectAccesses)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "vmsim_page_hits_total",
			Help: "Number of translations served by a valid page table entry.",
		}, func() float64 {
			return float64(m.tracker.Snapshot().PageHits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "vmsim_tlb_hits_total",
			Help: "Number of translations served by the translation cache.",
		}, func() float64 {
			return float64(m.tracker.Snapshot().TLBHits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "vmsim_tlb_flushes_total",
			Help: "Number of whole-cache flushes caused by hard faults.",
		}, func() float64 {
			return float64(m.tracker.Snapshot().TLBFlushes)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vmsim_tlb_hit_ratio",
			Help: "Fraction of attempted accesses served by the translation cache.",
		}, func() float64 {
			return m.tracker.Snapshot().TLBHitRatio()
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vmsim_page_hit_ratio",
			Help: "Fraction of attempted accesses served by a valid page table entry.",
		}, func() float64 {
			return m.tracker.Snapshot().PageHitRatio()
		}),
	)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, c := range m.components {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", c.name)
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		dieOnErr(err)
	}

	name := req.CompName
	fields := strings.Split(req.FieldName, ".")

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type fieldFormatError struct {
}

func (e fieldFormatError) Error() string {
	return "fieldFormatError"
}

func (m *Monitor) walkFields(
	comp any,
	fields string,
) (reflect.Value, error) {
	elem := reflect.ValueOf(comp)

	fieldNames := strings.Split(fields, ".")

	for len(fieldNames) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			elem = elem.Elem()
		case reflect.Struct:
			elem = elem.FieldByName(fieldNames[0])
			fieldNames = fieldNames[1:]
		case reflect.Slice:
			index, err := strconv.Atoi(fieldNames[0])
			if err != nil {
				return elem, fieldFormatError{}
			}

			elem = elem.Index(index)
			fieldNames = fieldNames[1:]
		default:
			panic(fmt.Sprintf("kind %d not supported", elem.Kind()))
		}
	}

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	return elem, nil
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) any {
	var component any
	for _, c := range m.components {
		if c.name == name {
			component = c.component
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
