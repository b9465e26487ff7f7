// Command twibot-check validates command manifest files: it compiles every
// declared usage pattern, checks placeholder type tags against the built-in
// converters, builds the alias tree and prints it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/twipi/twibot/cmdtree"
	"github.com/twipi/twibot/internal/cfgutil"
	"github.com/twipi/twibot/param"
	"github.com/twipi/twibot/twibot"
	"golang.org/x/sync/errgroup"
)

var (
	verbosity = 0
	jsonLog   = false
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <manifest file>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		pflag.PrintDefaults()
	}
	pflag.CountVarP(&verbosity, "verbose", "v", "verbosity level: warn (0), info, debug")
	pflag.BoolVarP(&jsonLog, "json-log", "j", jsonLog, "log output as JSON to stdout")
	pflag.Parse()

	logger := setupLogging()
	slog.SetDefault(logger)

	files := pflag.Args()
	if len(files) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	trees := make([][]cmdtree.Node, len(files))

	var errg errgroup.Group
	for i, file := range files {
		i, file := i, file
		errg.Go(func() error {
			nodes, err := checkFile(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			trees[i] = nodes
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		logger.Error("manifest check failed", tint.Err(err))
		os.Exit(1)
	}

	for i, file := range files {
		logger.Info("manifest OK", "file", file, "commands", len(trees[i]))
		printTree(trees[i], 0)
	}
}

// manifest is the on-disk command manifest format, parseable from TOML or
// JSON.
type manifest struct {
	Commands []manifestCommand `toml:"commands" json:"commands"`
}

type manifestCommand struct {
	Name        string   `toml:"name" json:"name"`
	Description string   `toml:"description" json:"description"`
	Usage       string   `toml:"usage" json:"usage"`
	Aliases     []string `toml:"aliases" json:"aliases"`
}

// checkFile registers every command of the manifest the way a bot would at
// startup, so it trips the exact same configuration errors, then builds
// the alias tree.
func checkFile(path string) ([]cmdtree.Node, error) {
	cfg, err := cfgutil.ParseFile[manifest](path)
	if err != nil {
		return nil, fmt.Errorf("cannot parse manifest: %w", err)
	}

	registry := twibot.NewRegistry(param.NewRegistry())
	for _, c := range cfg.Commands {
		cmd := &twibot.Command{
			Name:        c.Name,
			Aliases:     c.Aliases,
			Description: c.Description,
			Usage:       c.Usage,
		}
		if err := registry.Register(cmd); err != nil {
			return nil, err
		}
	}

	return registry.Manifest()
}

func printTree(nodes []cmdtree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		fmt.Printf("%s%s: %s\n", indent, node.Name, node.Description)
		for _, opt := range node.Options {
			attrs := opt.Type
			if opt.Required {
				attrs += ", required"
			}
			if opt.Repeated {
				attrs += ", repeated"
			}
			fmt.Printf("%s  <%s> (%s)\n", indent, opt.Name, attrs)
		}
		printTree(node.Children, depth+1)
	}
}

func setupLogging() *slog.Logger {
	// -v counts up from warn: warn (0), info (1), debug (2+).
	level := slog.LevelWarn - slog.Level(4*verbosity)
	if level < slog.LevelDebug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if jsonLog {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:   level,
			NoColor: os.Getenv("NO_COLOR") != "",
		})
	}

	return slog.New(handler)
}
