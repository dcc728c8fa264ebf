package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-ptrstore"
	"github.com/goliatone/go-ptrstore/config"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/eval"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Script is a replayable sequence of store operations.
//
//	watches:
//	  - pointer: /user
//	    strictness: isEqual
//	  - pointer: /count
//	    filter: "value > 10"
//	    engine: expr
//	receivers:
//	  - pointer: /ping
//	steps:
//	  - op: set
//	    ptr: /user/name
//	    value: bob
//	  - op: send
//	    ptr: /ping
//	    value: 42
//	  - op: flush
type Script struct {
	Watches   []WatchSpec    `yaml:"watches"`
	Receivers []ReceiverSpec `yaml:"receivers"`
	Steps     []Step         `yaml:"steps"`
}

// WatchSpec subscribes a trigger to a pointer.
type WatchSpec struct {
	Pointer    string `yaml:"pointer"`
	Strictness string `yaml:"strictness"`
	// Skip defaults to 1, which hides the value present at attach time.
	Skip *int `yaml:"skip"`
	// Filter is a boolean expression over `value` and `pointer`; values
	// for which it is false are not printed.
	Filter string `yaml:"filter"`
	// Engine evaluates Filter: expr (default), cel or js.
	Engine string `yaml:"engine"`
}

// ReceiverSpec attaches a command receiver to a pointer.
type ReceiverSpec struct {
	Pointer string `yaml:"pointer"`
}

// Step is one operation. Op is one of set, delete, send or flush.
type Step struct {
	Op       string `yaml:"op"`
	Ptr      string `yaml:"ptr"`
	Value    any    `yaml:"value"`
	NextTick bool   `yaml:"next_tick"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a script of writes and commands, printing notifications",
	Long: `Replay runs each step of a script against a store built from the
config file and prints every watch notification and received command.

Deferred writes (next_tick: true) are applied by an explicit flush step,
by the end of the notification cascade that queued them, or when the
script ends.

Example:
  ptrstore replay -c store.yaml script.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	replayCmd.Flags().Bool("dump", false, "print the final document")
	replayCmd.Flags().String("log-level", "", "log store events to stderr at this level (debug, info, warn, error)")
	_ = replayCmd.MarkFlagRequired("config")
}

func runReplay(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	dump, _ := cmd.Flags().GetBool("dump")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	script, err := loadScript(args[0])
	if err != nil {
		return err
	}

	opts := []store.Option{store.WithScheduler(store.ManualScheduler)}
	if level != "" {
		logger, err := stderrLogger(level)
		if err != nil {
			return err
		}
		opts = append(opts, store.WithLogger(logger))
	}
	st, err := cfg.NewStore(opts...)
	if err != nil {
		return err
	}
	defer st.Destroy()

	return replay(cmd.OutOrStdout(), st, script, dump)
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &script, nil
}

func stderrLogger(level string) (store.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log-level: %w", err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return store.NewSlogLogger(slog.New(handler)), nil
}

func replay(out io.Writer, st *store.Store, script *Script, dump bool) error {
	for _, w := range script.Watches {
		strictness := compare.Strictness("")
		if w.Strictness != "" {
			parsed, err := compare.ParseStrictness(w.Strictness)
			if err != nil {
				return fmt.Errorf("watch %s: %w", w.Pointer, err)
			}
			strictness = parsed
		}
		skip := ptrstore.DefaultSkip
		if w.Skip != nil {
			skip = *w.Skip
		}
		pointer := w.Pointer
		filter, err := watchFilter(w)
		if err != nil {
			return fmt.Errorf("watch %s: %w", pointer, err)
		}
		trigger := ptrstore.NewTrigger[any]()
		trigger.Sync(st, pointer, func(v any) {
			if filter != nil {
				keep, err := eval.Bool(filter, eval.Context{Value: v, Pointer: pointer})
				if err != nil {
					fmt.Fprintf(out, "watch %s: filter: %v\n", pointer, err)
					return
				}
				if !keep {
					return
				}
			}
			fmt.Fprintf(out, "watch %s: %s\n", pointer, encode(v))
		}, strictness, skip, nil)
		defer trigger.Detach()
		if err := trigger.Err(); err != nil {
			return fmt.Errorf("watch %s: %w", pointer, err)
		}
	}

	for _, r := range script.Receivers {
		pointer := r.Pointer
		receiver := ptrstore.NewCommandReceiver[any]()
		receiver.Sync(st, pointer, func(v any) {
			fmt.Fprintf(out, "command %s: %s\n", pointer, encode(v))
		}, nil)
		defer receiver.Detach()
	}

	send := ptrstore.NewSender(st)
	for i, step := range script.Steps {
		if err := run(st, send, step); err != nil {
			return fmt.Errorf("step %d (%s %s): %w", i+1, step.Op, step.Ptr, err)
		}
	}
	st.Flush()

	if dump {
		fmt.Fprintf(out, "document: %s\n", encode(st.Snapshot()))
	}
	return nil
}

func watchFilter(w WatchSpec) (eval.CompiledRule, error) {
	if strings.TrimSpace(w.Filter) == "" {
		return nil, nil
	}
	ev, err := eval.NewEngine(w.Engine, eval.EngineOptions{})
	if err != nil {
		return nil, err
	}
	return ev.Compile(w.Filter)
}

func run(st *store.Store, send ptrstore.SendFunc, step Step) error {
	mode := store.Immediate()
	if step.NextTick {
		mode = store.NextTick()
	}
	switch strings.ToLower(strings.TrimSpace(step.Op)) {
	case "set":
		return st.Set([]store.Entry{{Pointer: step.Ptr, Value: step.Value}}, mode)
	case "delete":
		return st.Delete([]string{step.Ptr}, mode)
	case "send":
		return send(step.Ptr, step.Value)
	case "flush":
		st.Flush()
		return nil
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
