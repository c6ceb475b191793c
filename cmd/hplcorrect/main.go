package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/lidarops/hplcorrect/internal/app"
	"github.com/lidarops/hplcorrect/internal/log"
	"github.com/lidarops/hplcorrect/pkg/config"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "hplcorrect.yaml", "Path to YAML configuration file")
	mode := flag.String("mode", "raw", "Correction mode: 'raw' corrects Wind/Stare files in the instrument layout,\n\t\t\t'wind' re-derives processed wind profiles from raw VAD files")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hplcorrect %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	runMode := app.Mode(*mode)
	if runMode != app.ModeRaw && runMode != app.ModeWind {
		log.Errorf("Unsupported mode: %s. Use 'raw' or 'wind'", *mode)
		os.Exit(1)
	}

	// Create and run the batch corrector
	application := app.New(cfgData, runMode, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Batch run failed: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.Data, error) {
	filename, _ := filepath.Abs(cfgFile)

	cfgData, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
