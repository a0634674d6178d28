// Command simdriver is the entry point for the machine-level simulation
// driver (spec.md §1): it registers the built-in plugins, loads
// configuration, assembles a machine from the configured template, wires
// the snapshot-forwarding sinks, and runs the cycle engine to completion.
package main

import (
	"flag"
	"os"

	"github.com/coreforge/simdriver/admin"
	"github.com/coreforge/simdriver/builtins"
	"github.com/coreforge/simdriver/engine"
	"github.com/coreforge/simdriver/machine"
	"github.com/coreforge/simdriver/procinit"
	simconfig "github.com/coreforge/simdriver/simconfig"
	simlog "github.com/coreforge/simdriver/simlog"
	statsink "github.com/coreforge/simdriver/statsink"
)

func main() {
	configFile := flag.String("config", "./config.json", "path to the driver configuration file")
	envFile := flag.String("envfile", "", "optional .env file to load before configuration")
	dropUser := flag.String("user", "", "optional unprivileged user to drop to before the machine is assembled")
	dropGroup := flag.String("group", "", "optional unprivileged group to drop to before the machine is assembled")
	logDate := flag.Bool("logdate", false, "include timestamps in log output (systemd already adds them)")
	flag.Parse()

	if *envFile != "" {
		if err := procinit.LoadEnv(*envFile); err != nil && !os.IsNotExist(err) {
			simlog.Fatal("loading env file:", err)
		}
	}

	if err := simconfig.Init(*configFile); err != nil {
		simlog.Fatal("loading configuration:", err)
	}
	if err := simconfig.WarnOnChange(*configFile); err != nil {
		simlog.Warn("could not watch configuration file for changes:", err)
	}

	cfg, err := simconfig.LoadDriverConfig()
	if err != nil {
		simlog.Fatal("loading driver configuration:", err)
	}

	simlog.Init(levelName(cfg.LogLevel), *logDate)
	if cfg.LogFile != "" {
		if err := simlog.SetOutputFile(levelName(cfg.LogLevel), cfg.LogFile); err != nil {
			simlog.Fatal("opening log file:", err)
		}
	}

	if *dropUser != "" || *dropGroup != "" {
		if err := procinit.DropPrivileges(*dropUser, *dropGroup); err != nil {
			simlog.Fatal("dropping privileges:", err)
		}
	}

	builtins.RegisterBuiltins()
	statsink.RegisterBuiltins()

	m := machine.NewMachine(cfg.MachineConfig, nil)
	if err := machine.Assemble(m, cfg.MachineConfig, cfg.CacheConfigType, builtins.NewSimpleMemory); err != nil {
		simlog.Fatal("assembling machine:", err)
	}
	defer m.Close()

	fm := statsink.NewForwardingManager(simconfig.GetSection("sinks"))
	defer fm.Close()

	eng := engine.NewEngine(m, cfg, fm)

	mode := "sequential"
	if cfg.ThreadedSimulation {
		mode = "threaded"
	}
	adminSrv, err := admin.Start(cfg.AdminAddr, eng, fm, mode)
	if err != nil {
		simlog.Warn("admin HTTP surface failed to start:", err)
	}
	defer adminSrv.Close()

	eng.SetHeaderCallback(func() {
		procinit.SystemdNotify(true, "running")
	})

	if err := eng.Run(); err != nil {
		simlog.ComponentFatal("Engine", "run failed:", err)
	}

	simlog.ComponentInfo("Engine", "exit: sim_cycle=", eng.SimCycle(), "iterations=", eng.Iterations())
	simconfig.StopWatch()
}

// levelName maps the driver's numeric loglevel (spec.md §6.1: loglevel >= 1
// forces sequential mode) onto simlog's named levels. 0 is the quiet
// default; anything >= 1 is treated as verbose/debug.
func levelName(level int) string {
	if level >= 1 {
		return "debug"
	}
	return "info"
}
