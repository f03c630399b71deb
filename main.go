package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/peterh/liner"

	"github.com/mcncl/psconv/internal/config"
	"github.com/mcncl/psconv/internal/convert"
	"github.com/mcncl/psconv/internal/errors"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Mode        string   `help:"Conversion mode: json2ps, ps2json, yaml2ps, ps2yaml or fmt (default ps2json)." short:"m"`
	Config      string   `help:"Path to a config file. Defaults to the nearest .psconv.yml." short:"c" type:"path"`
	KeyCase     string   `help:"Rewrite object keys: snake, camel, lower_camel, kebab or screaming_snake." short:"k"`
	Check       bool     `help:"With -m fmt, only report whether the input is already formatted."`
	Workers     int      `help:"Number of files converted in parallel in batch mode." short:"w"`
	OutDir      string   `help:"Directory for batch output files. Defaults to each input's directory." type:"path"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, reading a document until Ctrl+D." short:"I"`
	Files       []string `arg:"" optional:"" help:"Files to convert in batch mode." type:"path"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("psconv"),
		kong.Description("Convert between PS notation and JSON or YAML"),
		kong.UsageOnError(),
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// Usage has already been shown by kong.UsageOnError()
		os.Exit(1)
	}
	CLI.Interactive = interactiveRequested(os.Args[1:])

	if CLI.Version {
		fmt.Printf("psconv version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: psconv --help\n")
		os.Exit(1)
	}
}

// interactiveRequested reports whether a terminal stdin should be read
// through the line editor: -I was given or psconv ran without arguments.
// It must be called after parsing, which resets CLI.
func interactiveRequested(args []string) bool {
	return CLI.Interactive || len(args) == 0
}

// newContext resolves the configuration file, applies CLI overrides and
// sets up logging
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		Mode:    CLI.Mode,
		KeyCase: CLI.KeyCase,
		Workers: CLI.Workers,
		OutDir:  CLI.OutDir,
		Debug:   CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger := newLogger(os.Stderr, cfg.Dev.Debug)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}
	return &Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger}, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run executes the main program logic
func run(ctx *Context) error {
	converter := convert.NewConverter(ctx.Config, ctx.Logger)

	if len(CLI.Files) > 0 {
		if CLI.Input != "" || CLI.Output != "" {
			return errors.NewInputError("batch files cannot be combined with -i or -o", errors.ErrInvalidFilePath)
		}
		return runBatch(converter)
	}

	// 1. Read the input document
	src, err := readInput()
	if err != nil {
		return err
	}

	mode := ctx.Config.Mode
	ctx.Logger.Debug("converting", "mode", mode, "bytes", len(src))

	// 2. Check-only formatting
	if CLI.Check {
		if mode != config.ModeFormat {
			return errors.NewConfigError("--check requires -m fmt", errors.ErrInvalidMode)
		}
		formatted, err := converter.CheckPS(src)
		if err != nil {
			return err
		}
		if !formatted {
			return errors.ErrNotFormatted
		}
		return nil
	}

	// 3. Convert
	out, err := converter.Convert(mode, src)
	if err != nil {
		return err
	}

	// 4. Output the result
	return writeOutput(out)
}

// runBatch converts every positional file and reports each failure
func runBatch(converter *convert.Converter) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := converter.Batch(ctx, converter.Jobs(CLI.Files))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Job.Input, errors.UserFriendlyError(r.Err))
			continue
		}
		fmt.Fprintf(os.Stderr, "%s -> %s\n", r.Job.Input, r.Job.Output)
	}
	if err != nil {
		return errors.NewOutputError(err.Error(), err)
	}
	return nil
}

// readInput reads the document from file or stdin
func readInput() ([]byte, error) {
	if CLI.Input != "" {
		return readFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	// Terminal is interactive (not piped)
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", path), err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", path), errors.ErrFileEmpty)
	}
	return data, nil
}

// writeOutput writes the converted document to file or stdout
func writeOutput(out []byte) error {
	if CLI.Output != "" {
		if err := os.WriteFile(CLI.Output, out, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	if _, err := os.Stdout.Write(out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// lineReader is the part of liner.State used to read a document
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// readInteractiveInput lets users type or paste a document with line
// editing and signal completion with Ctrl+D (EOF)
func readInteractiveInput() ([]byte, error) {
	fmt.Fprintln(os.Stderr, "psconv interactive mode")
	fmt.Fprintln(os.Stderr, "Enter your document below and press Ctrl+D when done:")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	data, err := readLines(ln)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(os.Stderr, "\nConverting...")
	return data, nil
}

// readLines collects prompted lines until EOF
func readLines(r lineReader) ([]byte, error) {
	var b strings.Builder
	for {
		line, err := r.Prompt("> ")
		if stderrors.Is(err, io.EOF) {
			break
		}
		if stderrors.Is(err, liner.ErrPromptAborted) {
			return nil, errors.NewInputError("input aborted", err)
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if strings.TrimSpace(line) != "" {
			r.AppendHistory(line)
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}
	return []byte(b.String()), nil
}
