package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/kquant/kquant"
	"go.uber.org/zap"
)

func main() {
	var config kquant.Config
	var outputPath string
	var methodName string
	var seedName string
	var dithering int
	var paletteOut string
	var verbose bool
	flag.IntVar(&config.PaletteSize, "colors", 0, "number of colors in the color palette (required)")
	flag.IntVar(&dithering, "dithering", 0, "1 to enable Floyd-Steinberg dithering, 0 to disable it")
	flag.StringVar(&outputPath, "output", "", "path of the output PNG (required)")
	flag.StringVar(&methodName, "method", "kmeans", "palette method: kmeans or octree")
	flag.StringVar(&seedName, "seed", "octree", "initial palette for kmeans: octree or sample")
	flag.IntVar(&config.MaxIters, "max-iters", kquant.DefaultMaxKMeansIters,
		"maximum number of clustering iterations (negative for no limit)")
	flag.IntVar(&config.MaxSize, "max-size", 0, "shrink the image to fit in a square of this size first")
	flag.StringVar(&paletteOut, "palette-out", "", "optional path to save a palette swatch PNG")
	flag.BoolVar(&verbose, "v", false, "log every clustering iteration")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "<input> -colors <k> -output <path> [flags]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	args, err := parseInterspersed(flag.CommandLine, os.Args[1:])
	if err != nil || len(args) != 1 || config.PaletteSize == 0 || outputPath == "" {
		flag.Usage()
	}
	inputPath := args[0]
	config.Dithering = dithering != 0

	config.Method, err = kquant.ParseMethod(methodName)
	essentials.Must(err)
	config.Seed, err = kquant.ParseSeed(seedName)
	essentials.Must(err)

	logger := newLogger(verbose)
	defer logger.Sync()
	config.Logger = logger

	inStats, err := os.Stat(inputPath)
	essentials.Must(err)
	palette, err := kquant.QuantizeFile(inputPath, outputPath, &config)
	essentials.Must(err)
	outStats, err := os.Stat(outputPath)
	essentials.Must(err)

	if paletteOut != "" {
		essentials.Must(kquant.WriteImage(paletteOut, kquant.PaletteSwatch(palette, 0)))
	}

	fmt.Printf(
		"%s -> %s (%d colors, %s)",
		humanize.Bytes(uint64(inStats.Size())),
		humanize.Bytes(uint64(outStats.Size())),
		len(palette),
		config.Method,
	)
	fmt.Println()
}

// parseInterspersed parses flags which may appear before,
// between or after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	essentials.Must(err)
	return logger
}
