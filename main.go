package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	configx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/pkg/config"
	_ "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/pkg/logger/autoload"
	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
	corpusx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/corpus"
	enginex "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/engine"
	exportx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/export"
	llmx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/llm"
	registryx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/registry"
	toolx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/tool"
)

const (
	exitOK        = 0
	exitConfig    = 1
	exitCancelled = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitConfig
	}

	switch args[0] {
	case "discuss":
		return runDiscuss(args[1:])
	case "info":
		return runInfo()
	case "example":
		return runExample()
	case "help", "-h", "--help":
		usage()
		return exitOK
	default:
		color.Error.Printf("unknown command %q\n", args[0])
		usage()
		return exitConfig
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Roundtable: multi-agent brainstorming discussions.

Usage:
  roundtable discuss "question" [flags]   conduct a discussion
  roundtable info                         show configured models and tools
  roundtable example                      print an example .env configuration

Discuss flags:
  -rounds N         number of discussion rounds (default 3)
  -temperature T    sampling temperature for participants (default 0.7)
  -no-moderator     disable the final moderator summary
  -tools            enable external knowledge tools
  -data PATH        file or directory given to all participants (repeatable)
  -export FORMAT    export format: markdown, json, text
  -output PATH      write the export to a file instead of stdout
  -quiet            suppress live progress output
`)
}

type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runDiscuss(args []string) int {
	var question string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		question = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("discuss", flag.ContinueOnError)
	rounds := fs.Int("rounds", 3, "number of discussion rounds")
	temperature := fs.Float64("temperature", 0.7, "participant sampling temperature")
	noModerator := fs.Bool("no-moderator", false, "disable moderator summary")
	toolsEnabled := fs.Bool("tools", false, "enable external knowledge tools")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	exportFormat := fs.String("export", "", "export format: markdown, json, text")
	outputPath := fs.String("output", "", "output file path for the export")
	var dataPaths stringSlice
	fs.Var(&dataPaths, "data", "file or directory to load as discussion context (repeatable)")

	if err := fs.Parse(args); err != nil {
		return exitConfig
	}
	if question == "" {
		question = strings.TrimSpace(strings.Join(fs.Args(), " "))
	}
	if question == "" {
		color.Error.Println("a question is required: roundtable discuss \"...\"")
		return exitConfig
	}

	var format exportx.Format
	if *exportFormat != "" {
		var err error
		if format, err = exportx.ParseFormat(*exportFormat); err != nil {
			color.Error.Println(err.Error())
			return exitConfig
		}
	}

	llmCfg, err := configx.New[llmx.Config]("")
	if err != nil {
		color.Error.Printf("configuration error: %v\n", err)
		return exitConfig
	}

	participants := llmCfg.Participants(*temperature, nil)
	if len(participants) == 0 {
		color.Error.Println("no participants configured; set MODEL1, API_KEY1, ... in the environment (see: roundtable example)")
		return exitConfig
	}

	var (
		catalog   *toolx.Catalog
		toolNotes []string
	)
	if *toolsEnabled {
		toolCfg, err := configx.New[toolx.Config]("")
		if err != nil {
			color.Error.Printf("configuration error: %v\n", err)
			return exitConfig
		}
		catalog = toolx.NewCatalog(*toolCfg)
		toolNotes = catalog.Descriptions()
	}

	entries := make([]registryx.Entry, 0, len(participants))
	for _, p := range participants {
		var opts []llmx.ClientOption
		if catalog != nil {
			opts = append(opts, llmx.WithCatalog(catalog))
		}
		client, err := llmx.NewClient(p, opts...)
		if err != nil {
			color.Error.Printf("configuration error: %v\n", err)
			return exitConfig
		}
		entries = append(entries, registryx.Entry{Participant: p, Client: client})
	}

	reg, err := registryx.New(entries)
	if err != nil {
		color.Error.Printf("configuration error: %v\n", err)
		return exitConfig
	}

	engineOpts := []enginex.Option{
		enginex.WithCallTimeout(llmCfg.CallTimeout),
		enginex.WithToolDescriptions(toolNotes),
	}

	if !*noModerator {
		if spec, ok := llmCfg.Moderator(); ok {
			client, err := llmx.NewClient(spec)
			if err != nil {
				color.Error.Printf("configuration error: %v\n", err)
				return exitConfig
			}
			engineOpts = append(engineOpts, enginex.WithModerator(client, spec.Temperature))
		} else {
			color.Warn.Println("no moderator endpoint configured; skipping final summary")
		}
	}

	if !*quiet {
		lastRound := 0
		engineOpts = append(engineOpts, enginex.WithProgress(func(round int, c contractx.Contribution) {
			if round != lastRound {
				lastRound = round
				color.Cyan.Printf("\nRound %d/%d\n%s\n", round, *rounds, strings.Repeat("-", 60))
			}
			color.Bold.Printf("%s (%s):\n", c.Participant, c.Model)
			if c.Failed() {
				color.Warn.Printf("did not respond: %s\n\n", c.Failure.Kind)
				return
			}
			fmt.Printf("%s\n\n", c.Text)
		}))
	}

	files, loadWarnings := corpusx.NewLoader().Load(dataPaths)
	for _, w := range loadWarnings {
		color.Warn.Printf("warning: %s\n", w.Message)
	}

	if !*quiet {
		color.Cyan.Printf("Question: %s\n", question)
		fmt.Printf("Participants: %d | Rounds: %d | Temperature: %.2f\n", len(participants), *rounds, *temperature)
		for _, p := range participants {
			fmt.Printf("  - %s: %s\n", p.Label, p.Model)
		}
		if catalog != nil {
			fmt.Printf("Tools: %d available\n", catalog.Len())
		}
		if len(files) > 0 {
			fmt.Printf("Data files: %d loaded\n", len(files))
		}
	}

	eng, err := enginex.New(reg, *rounds, engineOpts...)
	if err != nil {
		color.Error.Printf("configuration error: %v\n", err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	discussion, runErr := eng.Run(ctx, question, files)
	discussion = mergeWarnings(discussion, loadWarnings)

	if runErr != nil {
		if errors.Is(runErr, contractx.ErrCancelled) {
			color.Warn.Println("\ndiscussion cancelled; partial transcript retained")
			writeExport(discussion, format, *outputPath)
			return exitCancelled
		}
		color.Error.Printf("error: %v\n", runErr)
		return exitConfig
	}

	if !*quiet {
		if discussion.FinalSummary != "" {
			color.Cyan.Printf("\nFinal Summary\n%s\n", strings.Repeat("-", 60))
			fmt.Printf("%s\n", discussion.FinalSummary)
		}
		for _, w := range discussion.Warnings {
			color.Warn.Printf("warning [%s]: %s\n", w.Kind, w.Message)
		}
		color.Green.Println("\ndiscussion complete")
	}

	if !writeExport(discussion, format, *outputPath) {
		return exitConfig
	}
	return exitOK
}

func mergeWarnings(d *contractx.Discussion, loadWarnings []contractx.Warning) *contractx.Discussion {
	if d == nil || len(loadWarnings) == 0 {
		return d
	}
	d.Warnings = append(append([]contractx.Warning{}, loadWarnings...), d.Warnings...)
	return d
}

func writeExport(d *contractx.Discussion, format exportx.Format, outputPath string) bool {
	if format == "" || d == nil {
		return true
	}

	content, err := exportx.Render(d, format)
	if err != nil {
		color.Error.Printf("export error: %v\n", err)
		return false
	}

	if outputPath == "" {
		fmt.Println(content)
		return true
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		color.Error.Printf("failed to write %s: %v\n", outputPath, err)
		return false
	}
	color.Green.Printf("discussion exported to %s\n", outputPath)
	return true
}

func runInfo() int {
	llmCfg, err := configx.New[llmx.Config]("")
	if err != nil {
		color.Error.Printf("configuration error: %v\n", err)
		return exitConfig
	}

	participants := llmCfg.Participants(0.7, nil)

	color.Cyan.Println("Participants")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Label", "Model", "Endpoint"})
	for i, p := range participants {
		table.Append([]string{fmt.Sprintf("%d", i+1), p.Label, p.Model, p.BaseURL})
	}
	table.Render()
	if len(participants) == 0 {
		color.Warn.Println("none configured; see: roundtable example")
	}

	color.Cyan.Println("\nModerator")
	if mod, ok := llmCfg.Moderator(); ok {
		fmt.Printf("  %s @ %s\n", mod.Model, mod.BaseURL)
	} else {
		fmt.Println("  not configured")
	}

	toolCfg, err := configx.New[toolx.Config]("")
	if err != nil {
		color.Error.Printf("configuration error: %v\n", err)
		return exitConfig
	}
	catalog := toolx.NewCatalog(*toolCfg)

	color.Cyan.Println("\nExternal knowledge tools")
	toolTable := tablewriter.NewWriter(os.Stdout)
	toolTable.SetHeader([]string{"Tool", "Description"})
	for _, t := range catalog.Tools() {
		toolTable.Append([]string{t.Name, t.Description})
	}
	toolTable.Render()
	if strings.TrimSpace(toolCfg.TavilyAPIKey) == "" {
		color.Warn.Println("web_search disabled: set TAVILY_API_KEY to enable it")
	}

	return exitOK
}

func runExample() int {
	fmt.Print(`# Example .env configuration for Roundtable

# Participant 1
MODEL1=gpt-4o
API_KEY1=your-openai-api-key
BASE_URL1=https://api.openai.com/v1
LABEL1=GPT-4o

# Participant 2
MODEL2=claude-sonnet-4.5
API_KEY2=your-anthropic-api-key
BASE_URL2=https://api.anthropic.com/v1

# Participant 3
MODEL3=meta-llama/Llama-3.3-70B-Instruct
API_KEY3=your-friendli-api-key
BASE_URL3=https://api.friendli.ai/serverless/v1

# Moderator (falls back to DEFAULT_* when unset)
MODERATOR_MODEL=gpt-4o
MODERATOR_API_KEY=your-openai-api-key
MODERATOR_BASE_URL=https://api.openai.com/v1

# Fallback participant when no MODELn entries exist
DEFAULT_MODEL=gpt-4o
DEFAULT_API_KEY=your-openai-api-key
DEFAULT_BASE_URL=https://api.openai.com/v1

# Per-call timeout for model invocations
CALL_TIMEOUT=60s

# External tools (optional; web search needs a key)
TAVILY_API_KEY=your-tavily-api-key

# Logging
LOG_DEBUG=false
LOG_PRETTY_FORMAT=true
`)
	return exitOK
}
