package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/davidmreed/monitor-affinity/internal/affinity"
	"github.com/davidmreed/monitor-affinity/internal/config"
	"github.com/davidmreed/monitor-affinity/internal/dispatch"
	"github.com/davidmreed/monitor-affinity/internal/monitor"
	"github.com/davidmreed/monitor-affinity/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "one":
		os.Exit(runOne(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "select":
		os.Exit(runSelect(os.Args[2:]))
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: monitor-affinity <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Route commands to monitors selected by property, not by output name.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Dispatch every configured command once")
	fmt.Fprintln(w, "  one                 Dispatch a single command given by flags")
	fmt.Fprintln(w, "  list                List connected monitors")
	fmt.Fprintln(w, "  select              Show which monitors match affinity criteria")
	fmt.Fprintln(w, "  daemon              Keep commands routed as monitors come and go")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Affinities: primary, largest, smallest, leftmost, rightmost, topmost,")
	fmt.Fprintln(w, "bottommost, portrait, landscape. Negate with a not- prefix (not-primary).")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'monitor-affinity <command> --help' for command-specific options.")
}

// affinityFlags collects repeated -a/--affinity values.
type affinityFlags []string

func (f *affinityFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *affinityFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func connect(cfg *config.Config) (*x11.Connection, error) {
	return x11.NewConnection(x11.Options{
		Display:    cfg.Display,
		XAuthority: cfg.XAuthority,
	})
}

// snapshot opens an X connection, takes one topology snapshot, and closes.
func snapshot(cfg *config.Config) ([]monitor.Monitor, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Monitors()
}

// dispatchAll runs every spec against one snapshot. Dry-run invocations are
// printed; spawn failures are reported per invocation and never abort the
// remaining specs. Returns a nonzero exit code if any spawn failed.
func dispatchAll(specs []dispatch.CommandSpec, monitors []monitor.Monitor, dryRun bool) int {
	d := dispatch.New(dryRun)
	code := 0
	for _, spec := range specs {
		for _, res := range d.Dispatch(spec, monitors) {
			switch {
			case dryRun:
				fmt.Println(res.Invocation)
			case res.Err != nil:
				fmt.Fprintf(os.Stderr, "monitor-affinity: %v\n", res.Err)
				code = 1
			}
		}
	}
	return code
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/monitor-affinity/config.yaml)")
	dryRun := fs.Bool("dry-run", false, "Print what would be run without spawning anything")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monitor-affinity run [--config FILE] [--dry-run]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Take one topology snapshot and dispatch every configured command.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	specs, err := cfg.Specs()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	monitors, err := snapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to query monitors: %v", err)
	}

	return dispatchAll(specs, monitors, *dryRun)
}

func runOne(args []string) int {
	fs := flag.NewFlagSet("one", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var affinities affinityFlags
	fs.Var(&affinities, "a", "Affinity criterion; repeatable, applied in order")
	fs.Var(&affinities, "affinity", "Alias for -a")
	envKey := fs.String("env", "", "Deliver the monitor name in this environment variable instead of substituting %s in args")
	allowMultiple := fs.Bool("m", false, "Run the command once per matching monitor")
	fs.BoolVar(allowMultiple, "allow-multiple", false, "Alias for -m")
	dryRun := fs.Bool("dry-run", false, "Print what would be run without spawning anything")
	configPath := fs.String("config", "", "Config file for display overrides only")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monitor-affinity one [options] -- <program> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Dispatch a single command without a config file. Without --env, every")
		fmt.Fprintf(os.Stderr, "%%s in the arguments is replaced with the selected monitor's name.\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "one requires a program to run")
		fs.Usage()
		return 2
	}

	cmd := config.Command{
		Program:       fs.Arg(0),
		Args:          fs.Args()[1:],
		Affinities:    affinities,
		Env:           *envKey,
		AllowMultiple: *allowMultiple,
	}
	if err := cmd.Validate(); err != nil {
		log.Fatalf("Invalid command: %v", err)
	}
	spec, err := cmd.Spec()
	if err != nil {
		log.Fatalf("Invalid command: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	monitors, err := snapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to query monitors: %v", err)
	}

	return dispatchAll([]dispatch.CommandSpec{spec}, monitors, *dryRun)
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Emit JSON instead of text")
	configPath := fs.String("config", "", "Config file for display overrides only")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monitor-affinity list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected monitors with geometry and primary flag.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	monitors, err := snapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to query monitors: %v", err)
	}
	monitor.SortByName(monitors)

	if *asJSON {
		data, err := monitorsJSON(monitors)
		if err != nil {
			log.Fatalf("Failed to encode monitors: %v", err)
		}
		fmt.Println(string(data))
		return 0
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tPOSITION\tPRIMARY")
		for _, m := range monitors {
			primary := ""
			if m.Primary {
				primary = "yes"
			}
			fmt.Fprintf(w, "%s\t%dx%d\t%+d%+d\t%s\n", m.Name, m.Width, m.Height, m.X, m.Y, primary)
		}
		w.Flush()
		return 0
	}

	for _, m := range monitors {
		fmt.Println(m)
	}
	return 0
}

// monitorsJSON encodes the snapshot for machine consumers. An empty
// snapshot encodes as [], never null.
func monitorsJSON(monitors []monitor.Monitor) ([]byte, error) {
	if monitors == nil {
		monitors = []monitor.Monitor{}
	}
	return json.MarshalIndent(monitors, "", "  ")
}

func runSelect(args []string) int {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var affinities affinityFlags
	fs.Var(&affinities, "a", "Affinity criterion; repeatable, applied in order")
	fs.Var(&affinities, "affinity", "Alias for -a")
	allowMultiple := fs.Bool("m", false, "Print every matching monitor instead of the first")
	fs.BoolVar(allowMultiple, "allow-multiple", false, "Alias for -m")
	configPath := fs.String("config", "", "Config file for display overrides only")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monitor-affinity select -a <affinity> [-a ...] [-m]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the monitor names that survive the affinity narrowing.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	criteria, err := affinity.ParseAll(affinities)
	if err != nil {
		log.Fatalf("Invalid affinity: %v", err)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	monitors, err := snapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to query monitors: %v", err)
	}

	resolved := affinity.Resolve(affinity.Select(monitors, criteria), *allowMultiple)
	for _, name := range monitor.Names(resolved) {
		fmt.Println(name)
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "print":
		return runConfigPrint(args[1:])
	case "help", "-h", "--help":
		printConfigUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: monitor-affinity config <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate    Validate configuration")
	fmt.Fprintln(w, "  print       Print effective configuration")
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if _, err := loadConfig(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		return 1
	}
	fmt.Println("OK")
	return 0
}

func runConfigPrint(args []string) int {
	fs := flag.NewFlagSet("config print", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatalf("Failed to encode config: %v", err)
	}
	os.Stdout.Write(data)
	return 0
}
