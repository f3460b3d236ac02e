package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/retromach/retromach/input"
	"github.com/retromach/retromach/machine"
	"github.com/retromach/retromach/memory"
	"github.com/retromach/retromach/timing"
	"github.com/retromach/retromach/video"
)

var runFlags struct {
	frames      uint64
	trace       string
	noMonitor   bool
	monitorPort int
	openBrowser bool
	savePath    string
	loadPath    string
	logDispatch bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the machine for a number of frames",
	Run: func(_ *cobra.Command, _ []string) {
		runMachine()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64Var(&runFlags.frames, "frames", 60,
		"number of video frames to emulate")
	runCmd.Flags().StringVar(&runFlags.trace, "trace", "",
		"record the dispatch trace into this SQLite database")
	runCmd.Flags().BoolVar(&runFlags.noMonitor, "no-monitor", false,
		"disable the monitoring server")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "port", 0,
		"port for the monitoring server, 0 picks a free one")
	runCmd.Flags().BoolVar(&runFlags.openBrowser, "browser", false,
		"open the monitoring page in the host browser")
	runCmd.Flags().StringVar(&runFlags.savePath, "save", "",
		"write a snapshot to this file after the run")
	runCmd.Flags().StringVar(&runFlags.loadPath, "load", "",
		"restore a snapshot from this file before the run")
	runCmd.Flags().BoolVar(&runFlags.logDispatch, "log-dispatch", false,
		"print every dispatched sync point to stderr")
}

func runMachine() {
	m := buildMachine()

	if runFlags.logDispatch {
		logger := log.New(os.Stderr, "dispatch: ", 0)
		m.Scheduler().AcceptHook(timing.NewDispatchLogger(logger))
	}

	vdp := video.New("board.vdp", m.Scheduler())
	m.AttachDevice(vdp)

	flash := memory.NewAmdFlash("board.flash", m.Scheduler(),
		512*1024, 64*1024)
	m.AttachDevice(flash)

	joy := input.NewJoystick("board.joy1", m.Scheduler())
	m.AttachDevice(joy)
	joy.Plug(m.Distributor())

	if runFlags.loadPath != "" {
		loadSnapshot(m)
	} else {
		vdp.PowerUp(m.Scheduler().CurrentTime())
	}

	if runFlags.openBrowser && m.Monitor() != nil {
		m.Monitor().OpenBrowser(m.MonitorAddr())
	}

	frameDur := timing.NewClock(video.VDPFreq).
		Cycles(video.CyclesPerLine * video.LinesPerFrame)
	target := m.Scheduler().CurrentTime().
		Add(frameDur * timing.EmuDuration(runFlags.frames))

	m.Driver().RunUntil(target)

	fmt.Printf("emulated %d frames, time %d, frame counter %d\n",
		runFlags.frames, m.Driver().CurrentTime(), vdp.Frame())

	if runFlags.savePath != "" {
		saveSnapshot(m)
	}

	m.Terminate()
}

func buildMachine() *machine.Machine {
	b := machine.MakeBuilder().
		WithName("retromach").
		WithConfig(machine.ConfigFromEnv())

	if runFlags.noMonitor {
		b = b.WithoutMonitoring()
	}
	if runFlags.monitorPort != 0 {
		b = b.WithMonitorPort(runFlags.monitorPort)
	}
	if runFlags.trace != "" {
		b = b.WithTrace(runFlags.trace)
	}

	return b.Build()
}

func loadSnapshot(m *machine.Machine) {
	f, err := os.Open(runFlags.loadPath)
	dieOnErr(err)
	defer f.Close()

	dieOnErr(m.Load(f))
}

func saveSnapshot(m *machine.Machine) {
	f, err := os.Create(runFlags.savePath)
	dieOnErr(err)
	defer f.Close()

	dieOnErr(m.Save(f))
}

func dieOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
