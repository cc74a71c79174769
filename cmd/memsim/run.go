package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/mem/hierarchy"
	"github.com/sarchlab/memsim/mem/trace"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/simulation"
	"github.com/sarchlab/memsim/stats"
	"github.com/sarchlab/memsim/stats/statsdb"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation described by a configuration file.",
	Long: "`run -c sim.yaml` builds the hierarchy the configuration " +
		"describes, drives it with a synthetic access stream, and records " +
		"the statistics.",
	Run: func(cmd *cobra.Command, _ []string) {
		runSimulation(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "Configuration file to run")
	runCmd.Flags().StringP("output", "o", "",
		"Name of the output database or file prefix")
	runCmd.Flags().String("backend", "sqlite",
		"Statistics backend: sqlite, csv, mysql, or clickhouse")
	runCmd.Flags().Bool("trace", false, "Record every access to the database")
	runCmd.Flags().Bool("monitor", false, "Start the monitoring server")
	runCmd.Flags().Int("monitor-port", 0, "Port of the monitoring server")
	runCmd.Flags().Bool("browser", false,
		"Open the monitoring page in a browser")
	runCmd.Flags().Uint64("phases", 4, "Number of phases to simulate")
	runCmd.Flags().Uint64("accesses", 10000,
		"Accesses each core issues per phase")
	runCmd.Flags().Uint64("stats-interval", 1,
		"Record a statistics snapshot every this many phases")
	runCmd.Flags().Int64("seed", 1, "Seed of the synthetic access stream")
	runCmd.Flags().String("report", "",
		"Only report the counters whose path matches this regular expression")
	runCmd.Flags().Bool("strict-config", false,
		"Fail the run if the configuration has settings nothing consumed")

	err := runCmd.MarkFlagRequired("config")
	if err != nil {
		panic(err)
	}
}

func runSimulation(cmd *cobra.Command) {
	// Database credentials may live in a .env file next to the binary.
	_ = godotenv.Load()

	cfg := config.New(mustString(cmd, "config"))

	sim := buildSimulation(cmd)

	runLog := statsdb.NewRunLog(sim.Recorder())

	var tracer *trace.Tracer
	if mustBool(cmd, "trace") {
		tracer = trace.NewTracer(sim.Recorder())
	}

	builder := hierarchy.MakeBuilder().
		WithConfig(cfg).
		WithSimulation(sim)
	if tracer != nil {
		builder = builder.WithTracer(tracer)
	}
	h := builder.Build()

	attachProcStats(sim, cfg)

	collector := statsdb.NewPeriodicCollector(
		sim.Recorder(), sim.StatsRoot(), mustUint64(cmd, "stats-interval"))

	monitor := startMonitor(cmd, sim)

	drive(cmd, h, sim, collector, monitor)

	report(cmd, sim)
	cfg.WriteAndClose(
		outputName(cmd, sim)+"_config.yaml", mustBool(cmd, "strict-config"))
	runLog.End()
	sim.Terminate()

	// atexit runs the recorder flush handlers before the process exits.
	atexit.Exit(0)
}

func buildSimulation(cmd *cobra.Command) *simulation.Simulation {
	backend := mustString(cmd, "backend")
	output := mustString(cmd, "output")

	builder := simulation.MakeBuilder()

	switch backend {
	case "sqlite":
		if output != "" {
			builder = builder.WithOutputFileName(output)
		}
	case "csv":
		if output == "" {
			log.Panic("the csv backend needs an output prefix (-o)")
		}
		builder = builder.WithRecorder(statsdb.NewCSV(output))
	case "mysql":
		builder = builder.WithRecorder(statsdb.NewMySQL())
	case "clickhouse":
		builder = builder.WithRecorder(newClickHouseFromEnv())
	default:
		log.Panicf("unknown statistics backend %s", backend)
	}

	return builder.Build()
}

// newClickHouseFromEnv reads the server location and the credentials from
// the environment, following the same variables the MySQL backend uses.
func newClickHouseFromEnv() statsdb.Recorder {
	host := envOr("MEMSIM_STATS_IP", "127.0.0.1")
	portStr := envOr("MEMSIM_STATS_PORT", "9000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Panicf("invalid MEMSIM_STATS_PORT %s", portStr)
	}

	return statsdb.NewClickHouse(
		host, port,
		envOr("MEMSIM_STATS_DB", "default"),
		envOr("MEMSIM_STATS_USERNAME", "default"),
		os.Getenv("MEMSIM_STATS_PASSWORD"),
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// attachProcStats mirrors the per-core counters into per-process counters,
// attributed by the simulation's core-to-process table.
func attachProcStats(sim *simulation.Simulation, cfg *config.Config) {
	maxProcs := int(cfg.Uint32Or("sys.maxProcs", 0))
	if maxProcs == 0 {
		maxProcs = len(cfg.Subgroups("sys.procs"))
	}
	if maxProcs == 0 {
		maxProcs = 1
	}

	root := sim.StatsRoot()
	coresAgg := stats.Lookup(root, "cores").(*stats.Aggregate)

	stats.NewProcStats(root, coresAgg, maxProcs, sim, sim.Phase)
}

func startMonitor(
	cmd *cobra.Command,
	sim *simulation.Simulation,
) *monitoring.Monitor {
	if !mustBool(cmd, "monitor") {
		return nil
	}

	monitor := monitoring.NewMonitor()
	if port := mustInt(cmd, "monitor-port"); port != 0 {
		monitor = monitor.WithPortNumber(port)
	}
	if mustBool(cmd, "browser") {
		monitor = monitor.WithBrowser()
	}

	monitor.RegisterSimulation(sim)
	monitor.StartServer()

	return monitor
}

func report(cmd *cobra.Command, sim *simulation.Simulation) {
	root := sim.StatsRoot()

	if pattern := mustString(cmd, "report"); pattern != "" {
		filtered, err := stats.Filter(root, pattern)
		if err != nil {
			log.Panicf("invalid report pattern %s: %s", pattern, err)
		}
		root = filtered
	}

	err := stats.WriteText(os.Stdout, root)
	if err != nil {
		log.Panic(err)
	}
}

func outputName(cmd *cobra.Command, sim *simulation.Simulation) string {
	if output := mustString(cmd, "output"); output != "" {
		return output
	}
	return fmt.Sprintf("memsim_%s", sim.ID())
}

func mustString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustUint64(cmd *cobra.Command, name string) uint64 {
	v, err := cmd.Flags().GetUint64(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustInt64(cmd *cobra.Command, name string) int64 {
	v, err := cmd.Flags().GetInt64(name)
	if err != nil {
		panic(err)
	}
	return v
}
