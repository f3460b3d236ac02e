// Package monitoring turns a running emulation into a small HTTP server that
// allows external inspection and control of the machine.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/retromach/retromach/naming"
	"github.com/retromach/retromach/timing"
)

// Pausable is the control surface the monitor needs from the machine driver.
// Pause returns only once the emulation goroutine is parked between steps,
// which is the only window in which scheduler state may be read from another
// goroutine.
type Pausable interface {
	Pause()
	Continue()
}

// A TimeTeller can be used to get the current emulated time.
type TimeTeller interface {
	CurrentTime() timing.EmuTime
}

// Driver is the part of the machine the monitor controls.
type Driver interface {
	Pausable
	TimeTeller
}

// Monitor can turn an emulation into a server and allows external monitoring
// and controlling of the machine.
type Monitor struct {
	driver     Driver
	scheduler  *timing.Scheduler
	devices    []naming.Named
	portNumber int
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

// RegisterDriver registers the driver that advances the emulation.
func (m *Monitor) RegisterDriver(d Driver) {
	m.driver = d
}

// RegisterScheduler registers the scheduler of the machine.
func (m *Monitor) RegisterScheduler(s *timing.Scheduler) {
	m.scheduler = s
}

// RegisterDevice registers a device to be monitored.
func (m *Monitor) RegisterDevice(d naming.Named) {
	m.devices = append(m.devices, d)
}

// StartServer starts the monitor as a web server with a custom port if
// wanted. It returns the address the server listens on.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseDriver)
	r.HandleFunc("/api/continue", m.continueDriver)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pending", m.pending)
	r.HandleFunc("/api/list_devices", m.listDevices)
	r.HandleFunc("/api/device/{name}", m.listDeviceDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	addr := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring emulation with %s\n", addr)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	return addr
}

// OpenBrowser opens the monitor address in the host browser.
func (m *Monitor) OpenBrowser(addr string) {
	err := browser.OpenURL(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
	}
}

func (m *Monitor) pauseDriver(w http.ResponseWriter, _ *http.Request) {
	m.driver.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueDriver(w http.ResponseWriter, _ *http.Request) {
	m.driver.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.driver.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

type pendingRsp struct {
	Pending bool   `json:"pending"`
	Next    uint64 `json:"next,omitempty"`
}

// pending reports whether any sync point is pending and when the earliest one
// is due. The driver is paused across the read since the scheduler is not
// safe for concurrent access.
func (m *Monitor) pending(w http.ResponseWriter, _ *http.Request) {
	m.driver.Pause()
	rsp := pendingRsp{Pending: m.scheduler.Pending()}
	if rsp.Pending {
		rsp.Next = uint64(m.scheduler.NextSyncPoint())
	}
	m.driver.Continue()

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, d := range m.devices {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", d.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listDeviceDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	device := m.findDeviceOr404(w, name)
	if device == nil {
		return
	}

	m.driver.Pause()
	defer m.driver.Continue()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(device)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) naming.Named {
	var device naming.Named
	for _, d := range m.devices {
		if d.Name() == name {
			device = d
		}
	}

	if device == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Device not found"))
		dieOnErr(err)
	}

	return device
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
