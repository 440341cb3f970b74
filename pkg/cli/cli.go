// Package cli implements the spicec command surface: hand-rolled os.Args
// dispatch (no flag library), one handler per subcommand, in the style
// the teacher's own entry point uses.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spicelang/spicec/internal/cache"
	"github.com/spicelang/spicec/internal/config"
	"github.com/spicelang/spicec/internal/diagnostics"
	"github.com/spicelang/spicec/internal/modules"
	"github.com/spicelang/spicec/internal/pipeline"
)

// cacheFileName is the build cache's sqlite file, kept alongside the source
// unit's directory so a project's cache travels with its sources.
const cacheFileName = ".spicec-cache.sqlite"

const usage = `Usage:
  spicec build <file> [--emit py|pyx|exe] [--check] [--verbose] [--no-final-check] [--runtime-checks]
  spicec help
`

// Run is the CLI entry point; it returns the process exit code rather
// than calling os.Exit itself, so tests can drive it without spawning a
// subprocess.
func Run(args []string) int {
	if len(args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	switch args[1] {
	case "help", "-help", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	case "build":
		return runBuild(args[2:])
	default:
		fmt.Fprintf(os.Stderr, "spicec: unknown command %q\n\n%s", args[1], usage)
		return 2
	}
}

func runBuild(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	opts := config.DefaultCompileOptions()
	sourcePath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--emit":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "spicec: --emit requires a value")
				return 2
			}
			i++
			opts.Emit = config.EmitMode(args[i])
		case "--check":
			opts.Check = true
		case "--verbose":
			opts.Verbose = true
		case "--no-final-check":
			opts.NoFinalCheck = true
		case "--runtime-checks":
			opts.RuntimeChecks = true
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "spicec: unknown flag %q\n", args[i])
				return 2
			}
			sourcePath = args[i]
		}
	}

	if sourcePath == "" {
		fmt.Fprintln(os.Stderr, "spicec: missing source file")
		return 2
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicec: %v\n", err)
		return 2
	}

	searchRoots := []string{filepath.Dir(sourcePath)}
	if manifest, err := config.LoadManifest(findManifest(sourcePath)); err == nil {
		manifestOpts := manifest.ToCompileOptions()
		manifestOpts.Check, manifestOpts.Verbose = opts.Check, opts.Verbose
		opts = manifestOpts
		searchRoots = append(searchRoots, manifest.SearchRoots...)
	}

	sessionID := uuid.New().String()
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "spicec: session %s compiling %s (emit=%s)\n", sessionID, sourcePath, opts.Emit)
	}

	buildCache, cacheErr := cache.Open(filepath.Join(filepath.Dir(sourcePath), cacheFileName))
	if cacheErr != nil && opts.Verbose {
		fmt.Fprintf(os.Stderr, "spicec: session %s: build cache unavailable: %v\n", sessionID, cacheErr)
	}
	if buildCache != nil {
		defer buildCache.Close()
	}

	sourceHash := cache.HashSource(string(source))
	if buildCache != nil && !opts.Check {
		if cached, ok := buildCache.Lookup(sourceHash, opts.Emit); ok {
			if opts.Verbose {
				fmt.Fprintf(os.Stderr, "spicec: session %s: cache hit for %s\n", sessionID, sourcePath)
			}
			fmt.Fprint(os.Stdout, cached)
			return 0
		}
	}

	resolver := modules.NewFSResolver(searchRoots)
	proc := pipeline.NewProcessor(opts, resolver)
	result := proc.Run(sourcePath, string(source))

	formatter := diagnostics.NewFormatter(os.Stderr)
	formatter.RenderAll(result.Diagnostics)

	if !result.Ok {
		if result.FailedPass == pipeline.PassSymbols && len(result.Diagnostics) > 0 &&
			result.Diagnostics[0].Code == diagnostics.MUnresolvedImport {
			return 2
		}
		return 1
	}

	if opts.Check {
		return 0
	}

	if buildCache != nil {
		if err := buildCache.Store(sourceHash, opts.Emit, result.Output); err != nil && opts.Verbose {
			fmt.Fprintf(os.Stderr, "spicec: session %s: build cache store failed: %v\n", sessionID, err)
		}
	}

	fmt.Fprint(os.Stdout, result.Output)
	return 0
}

// findManifest returns the path of spicec.yaml in sourcePath's own
// directory; parent directories are not searched. The file may not exist:
// the caller treats LoadManifest's error as "no manifest".
func findManifest(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), "spicec.yaml")
}
