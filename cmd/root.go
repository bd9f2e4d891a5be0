// Package cmd implements the CLI command structure for codeloops.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/config"
	"github.com/nibzard/codeloops-go/internal/logging"
	"github.com/nibzard/codeloops-go/internal/planning"
	"github.com/nibzard/codeloops-go/internal/store"
	"github.com/nibzard/codeloops-go/internal/ui"
	"github.com/nibzard/codeloops-go/internal/watch"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

const (
	markPresent = "✓"
	markMissing = "✗"
)

// env bundles what every subcommand needs.
type env struct {
	cfg    *config.ConfigWithSources
	logger *log.Logger
	store  *store.Store
}

// Run executes the codeloops CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("codeloops", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	subcommand, remainingArgs := remainingArgs[0], remainingArgs[1:]

	logger := logging.FromConfig(cws.Config, stderr)
	e := &env{
		cfg:    cws,
		logger: logger,
		store: store.New(cws.Config.Root,
			store.WithLogger(logger),
			store.WithStrictValidation(cws.Config.StrictValidation),
		),
	}

	switch subcommand {
	case "init":
		return initCommand(e, remainingArgs)
	case "list", "ls":
		return listCommand(e, remainingArgs)
	case "status":
		return statusCommand(e, remainingArgs)
	case "show":
		return showCommand(e, remainingArgs)
	case "set":
		return setCommand(e, remainingArgs)
	case "import":
		return importCommand(e, remainingArgs)
	case "validate":
		return validateCommand(e, remainingArgs)
	case "backup":
		return backupCommand(e, remainingArgs)
	case "watch":
		return watchCommand(ctx, e, remainingArgs)
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// parseInterspersed parses fs allowing flags after positional arguments,
// so "show checkout tasks -format yaml" works.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("codeloops "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func requireArgs(name string, args []string, want int, usage string) error {
	if len(args) < want {
		return fmt.Errorf("%s: missing arguments (usage: codeloops %s %s)", name, name, usage)
	}
	return nil
}

func parseKindArg(s string) (planning.Kind, error) {
	kind, ok := codeloopsdir.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("unknown document kind %q (want problem, technical or tasks)", s)
	}
	return kind, nil
}

// initCommand materializes the three templates for a feature.
func initCommand(e *env, args []string) error {
	fs := newFlagSet("init")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("init", positional, 1, "<feature>"); err != nil {
		return err
	}
	feature := positional[0]

	for _, kind := range codeloopsdir.Kinds {
		if _, err := e.store.CreateOrUpdate(feature, kind, planning.Update{}); err != nil {
			return fmt.Errorf("init %s: %w", feature, err)
		}
	}
	fmt.Fprintf(stdout, "Initialized %s in %s\n", feature, codeloopsdir.ProjectPath(e.store.Root(), feature))
	return nil
}

type projectStatus struct {
	Name  string             `json:"name"`
	Files store.ProjectFiles `json:"files"`
}

// listCommand lists projects with per-document presence.
func listCommand(e *env, args []string) error {
	fs := newFlagSet("list")
	asJSON := fs.Bool("json", false, "Output as JSON")
	showBackups := fs.Bool("backups", false, "Include backup directories")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}

	names, err := e.store.ListProjects()
	if err != nil {
		return err
	}

	projects := make([]projectStatus, 0, len(names))
	for _, name := range names {
		if codeloopsdir.IsBackup(name) && !*showBackups {
			continue
		}
		projects = append(projects, projectStatus{Name: name, Files: e.store.GetProjectFiles(name)})
	}

	if *asJSON {
		return writeJSON(stdout, projects)
	}
	if len(projects) == 0 {
		fmt.Fprintf(stdout, "No projects in %s\n", e.store.Root())
		return nil
	}
	width := 0
	for _, p := range projects {
		if len(p.Name) > width {
			width = len(p.Name)
		}
	}
	for _, p := range projects {
		fmt.Fprintf(stdout, "%-*s  %s\n", width, p.Name, formatFiles(p.Files))
	}
	return nil
}

// statusCommand reports which documents exist for one feature.
func statusCommand(e *env, args []string) error {
	fs := newFlagSet("status")
	asJSON := fs.Bool("json", false, "Output as JSON")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("status", positional, 1, "<feature>"); err != nil {
		return err
	}
	feature := positional[0]

	if !e.store.ProjectExists(feature) {
		return fmt.Errorf("project %q not found in %s", feature, e.store.Root())
	}
	files := e.store.GetProjectFiles(feature)
	if *asJSON {
		return writeJSON(stdout, projectStatus{Name: feature, Files: files})
	}

	fmt.Fprintf(stdout, "%s (%d/3 documents)\n", feature, files.Count())
	for _, kind := range codeloopsdir.Kinds {
		mark := markMissing
		if files.Has(kind) {
			mark = markPresent
		}
		fmt.Fprintf(stdout, "  %s %-10s %s\n", mark, kind, codeloopsdir.FileName(kind))
	}
	return nil
}

// showCommand prints one document.
func showCommand(e *env, args []string) error {
	fs := newFlagSet("show")
	format := fs.String("format", "json", "Output format (json, yaml, summary)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("show", positional, 2, "<feature> <problem|technical|tasks> [-format json|yaml|summary]"); err != nil {
		return err
	}
	feature := positional[0]
	kind, err := parseKindArg(positional[1])
	if err != nil {
		return err
	}

	doc, err := e.store.Read(feature, kind)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("no %s for %s", planning.DisplayName(kind), feature)
	}

	switch *format {
	case "json":
		return writeJSON(stdout, doc)
	case "yaml", "yml":
		out, err := planning.ToYAML(doc)
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	case "summary":
		typed, err := doc.View(kind)
		if typed == nil {
			return err
		}
		fmt.Fprint(stdout, planning.FormatSummary(typed))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or summary)", *format)
	}
}

// setCommand applies key=value updates to a document.
func setCommand(e *env, args []string) error {
	fs := newFlagSet("set")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("set", positional, 3, "<feature> <kind> key=value..."); err != nil {
		return err
	}
	feature := positional[0]
	kind, err := parseKindArg(positional[1])
	if err != nil {
		return err
	}
	update, err := parseAssignments(positional[2:])
	if err != nil {
		return err
	}

	if _, err := e.store.CreateOrUpdate(feature, kind, update); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Updated %s for %s: %s\n", planning.DisplayName(kind), feature, strings.Join(update.Keys(), ", "))
	return nil
}

// parseAssignments turns key=value pairs into an update. Values are
// parsed as JSON when possible and kept as strings otherwise.
func parseAssignments(pairs []string) (planning.Update, error) {
	update := make(planning.Update, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (want key=value)", pair)
		}
		update[key] = parseValue(value)
	}
	return update, nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// importCommand replaces a document with the content of a JSON file.
func importCommand(e *env, args []string) error {
	fs := newFlagSet("import")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("import", positional, 3, "<feature> <kind> <file|->"); err != nil {
		return err
	}
	feature, source := positional[0], positional[2]
	kind, err := parseKindArg(positional[1])
	if err != nil {
		return err
	}

	var raw []byte
	if source == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	doc, err := planning.ParseDocument(kind, raw, source)
	if err != nil {
		return err
	}
	if err := e.store.Write(feature, kind, doc); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %s for %s\n", planning.DisplayName(kind), feature)
	return nil
}

// validateCommand checks every present document of a feature.
func validateCommand(e *env, args []string) error {
	fs := newFlagSet("validate")
	strict := fs.Bool("strict", e.cfg.Config.StrictValidation, "Also run deep validation")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("validate", positional, 1, "<feature> [-strict]"); err != nil {
		return err
	}
	feature := positional[0]
	if !e.store.ProjectExists(feature) {
		return fmt.Errorf("project %q not found in %s", feature, e.store.Root())
	}

	failed := 0
	for _, kind := range codeloopsdir.Kinds {
		doc, err := e.store.Read(feature, kind)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(stdout, "%s %-10s %v\n", markMissing, kind, err)
			continue
		case doc == nil:
			fmt.Fprintf(stdout, "- %-10s absent\n", kind)
			continue
		}
		if *strict {
			if err := planning.ValidateDeepRaw(kind, doc); err != nil {
				failed++
				fmt.Fprintf(stdout, "%s %-10s %v\n", markMissing, kind, err)
				continue
			}
		}
		fmt.Fprintf(stdout, "%s %-10s valid\n", markPresent, kind)
	}

	if failed > 0 {
		return fmt.Errorf("%d invalid document(s) in %s", failed, feature)
	}
	return nil
}

// backupCommand copies a feature directory and prints the backup name.
func backupCommand(e *env, args []string) error {
	fs := newFlagSet("backup")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("backup", positional, 1, "<feature>"); err != nil {
		return err
	}

	name, err := e.store.BackupProject(positional[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, name)
	return nil
}

// watchCommand prints document changes until interrupted.
func watchCommand(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("watch")
	summary := fs.Bool("summary", false, "Print the document summary after each change")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("watch", positional, 1, "<feature>"); err != nil {
		return err
	}
	feature := positional[0]

	w, err := watch.New(e.store.Root(), feature, watch.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.logger.Info("watching", "feature", feature, "dir", w.Dir())

	err = w.Run(ctx, func(c watch.Change) {
		fmt.Fprintf(stdout, "%s %s %s\n", c.Op, c.Kind, c.Path)
		if !*summary || c.Op == watch.OpRemove || c.Op == watch.OpRename {
			return
		}
		doc, err := e.store.ReadDocument(c.Feature, c.Kind)
		if err != nil {
			e.logger.Warn("read changed document", "kind", c.Kind, "err", err)
			return
		}
		if doc != nil {
			fmt.Fprint(stdout, planning.FormatSummary(doc))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tuiCommand launches the project browser.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("tui")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	return ui.RunTUI(ctx, e.store)
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(e *env, args []string) error {
	fs := newFlagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	cfg := e.cfg.Config
	values := map[string]any{
		"root":              cfg.Root,
		"strict_validation": cfg.StrictValidation,
		"log_level":         cfg.LogLevel,
		"log_format":        cfg.LogFormat,
		"log_timestamps":    cfg.LogTimestamps,
		"log_caller":        cfg.LogCaller,
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if file := e.cfg.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "# config file: %s\n", file)
	}
	for _, k := range keys {
		source := e.cfg.Sources[k]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(stdout, "%-17s = %-30v # %s\n", k, values[k], source)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "codeloops version %s\n", Version)
	return nil
}

func formatFiles(f store.ProjectFiles) string {
	parts := make([]string, 0, len(codeloopsdir.Kinds))
	for _, kind := range codeloopsdir.Kinds {
		mark := markMissing
		if f.Has(kind) {
			mark = markPresent
		}
		parts = append(parts, fmt.Sprintf("%s %s", mark, kind))
	}
	return strings.Join(parts, "  ")
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "codeloops - planning documents for feature work")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  codeloops [global options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init <feature>                    Create problem, technical and tasks templates")
	fmt.Fprintln(w, "  list [-json] [-backups]           List projects and their documents")
	fmt.Fprintln(w, "  status <feature> [-json]          Show which documents exist")
	fmt.Fprintln(w, "  show <feature> <kind> [-format]   Print a document (json, yaml, summary)")
	fmt.Fprintln(w, "  set <feature> <kind> key=value... Replace top-level fields of a document")
	fmt.Fprintln(w, "  import <feature> <kind> <file|->  Replace a document from a JSON file")
	fmt.Fprintln(w, "  validate <feature> [-strict]      Check every present document")
	fmt.Fprintln(w, "  backup <feature>                  Copy a project to a timestamped backup")
	fmt.Fprintln(w, "  watch <feature> [-summary]        Print document changes until interrupted")
	fmt.Fprintln(w, "  tui                               Browse projects in a terminal UI")
	fmt.Fprintln(w, "  config [-example]                 Show effective configuration")
	fmt.Fprintln(w, "  version                           Show version information")
	fmt.Fprintln(w, "  help                              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Kinds: problem, technical, tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
}
