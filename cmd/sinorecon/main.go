package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sinorecon/pkg/config"
	"sinorecon/pkg/filter"
	"sinorecon/pkg/imageio"
	"sinorecon/pkg/phantom"
	"sinorecon/pkg/reconstruction"
	"sinorecon/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	input := flag.String("input", "", "RGB sinogram image (overrides input.path)")
	outputDir := flag.String("output", "", "Output directory (overrides output.dir)")
	filters := flag.String("filters", "", "Comma-separated filters to run: none, ramp, hamming, hann")
	plots := flag.Bool("plots", false, "Render laminograms and filter kernels as plots")
	writePhantom := flag.Bool("phantom", false, "Write a synthetic point-source sinogram to the input path and exit")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	flag.Parse()

	logger := log.New(os.Stderr, "sinorecon: ", log.LstdFlags)

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			logger.Fatalf("Failed to create config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *filters != "" {
		cfg.Reconstruction.Filters = strings.Split(*filters, ",")
		cfg.Reconstruction.Compare = defaultCompare(cfg.Reconstruction.Filters, cfg.Reconstruction.Compare)
	}
	if *plots {
		cfg.Output.Plots = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	if *writePhantom {
		if err := savePhantom(cfg); err != nil {
			logger.Fatalf("Failed to write phantom: %v", err)
		}
		fmt.Printf("Synthetic sinogram written to %s\n", cfg.Input.Path)
		return
	}

	fmt.Println("================================")
	fmt.Println("FILTERED BACK-PROJECTION OF AN RGB SINOGRAM")
	fmt.Println("================================")

	startTime := time.Now()
	out, err := run(cfg, logger)
	if err != nil {
		logger.Fatalf("Reconstruction failed: %v", err)
	}

	fmt.Printf("\nReconstruction completed successfully in %.2f seconds!\n", time.Since(startTime).Seconds())
	fmt.Printf("Results saved to: %s\n", cfg.Output.Dir)
	for _, name := range out.Files {
		fmt.Printf("- %s\n", name)
	}

	if c := out.Comparison; c != nil {
		fmt.Printf("\nDifference between %s and %s:\n", c.A, c.B)
		fmt.Printf("=======================================\n")
		fmt.Printf("Mean Squared Error (MSE): %.6f\n", c.Metrics.MSE)
		fmt.Printf("Root Mean Square Error (RMSE): %.6f\n", c.Metrics.RMSE)
		fmt.Printf("Peak Signal-to-Noise Ratio (PSNR): %.3f dB\n", c.Metrics.PSNR)
		fmt.Printf("Structural Similarity Index (SSIM): %.3f\n", c.Metrics.SSIM)
	}
}

// defaultCompare keeps the configured pair when both filters are still run,
// and otherwise drops the comparison
func defaultCompare(filters, compare []string) []string {
	run := make(map[filter.Kind]bool)
	for _, name := range filters {
		if kind, err := filter.ParseKind(name); err == nil {
			run[kind] = true
		}
	}
	for _, name := range compare {
		kind, err := filter.ParseKind(name)
		if err != nil || !run[kind] {
			return nil
		}
	}
	return compare
}

// summary lists what a run produced
type summary struct {
	Files      []string
	Comparison *reconstruction.Comparison
}

// run reconstructs the configured sinogram with every configured filter and
// writes the results into the output directory
func run(cfg *config.Config, logger *log.Logger) (*summary, error) {
	kinds, err := cfg.Filters()
	if err != nil {
		return nil, err
	}

	var viewer visualization.Viewer
	var dir *visualization.DirViewer
	if cfg.Output.Plots {
		pv, err := visualization.NewPlotViewer(cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		viewer, dir = pv, pv.DirViewer
	} else {
		dv, err := visualization.NewDirViewer(cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		viewer, dir = dv, dv
	}

	params := &reconstruction.Params{
		Angles:  cfg.Input.Angles,
		Samples: cfg.Input.Samples,
	}
	if cfg.Output.Verbose {
		params.Logger = logger
		params.Progress = progressLogger(logger)
	}

	r, original, err := reconstruction.NewReconstructorFromFile(cfg.Input.Path, params)
	if err != nil {
		return nil, err
	}

	s := &summary{}
	originalPath := filepath.Join(cfg.Output.Dir, cfg.Output.OriginalName)
	if err := imageio.Save(originalPath, original); err != nil {
		return nil, err
	}
	s.Files = append(s.Files, originalPath)

	results, err := r.ReconstructAll(kinds)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if err := viewer.ShowImage(res.Filter.String(), res.Image); err != nil {
			return nil, err
		}
		s.Files = append(s.Files, dir.Path(res.Filter.String()))

		if !cfg.Output.SaveLaminograms && !cfg.Output.Plots {
			continue
		}
		for _, ch := range res.Channels {
			title := fmt.Sprintf("%s laminogram %s", ch.Name, res.Filter)
			if err := viewer.ShowPlane(title, ch.Laminogram); err != nil {
				return nil, err
			}
			s.Files = append(s.Files, dir.Path(title))
		}
	}

	if cfg.Output.Plots {
		path, err := saveKernels(cfg.Output.Dir, kinds, r.Sinogram().Red.SampleCount)
		if err != nil {
			return nil, err
		}
		if path != "" {
			s.Files = append(s.Files, path)
		}
	}

	a, b, ok, err := cfg.ComparePair()
	if err != nil {
		return nil, err
	}
	if ok {
		c, err := reconstruction.Compare(reconstruction.Find(results, a), reconstruction.Find(results, b))
		if err != nil {
			return nil, err
		}
		if err := viewer.ShowImage("difference", c.Difference); err != nil {
			return nil, err
		}
		s.Files = append(s.Files, dir.Path("difference"))
		s.Comparison = c
	}

	return s, nil
}

// progressLogger reports back-projection progress in quarters
func progressLogger(logger *log.Logger) func(channel string, completed, total int) {
	return func(channel string, completed, total int) {
		step := total / 4
		if step == 0 {
			step = 1
		}
		if completed%step == 0 || completed == total {
			logger.Printf("  %s channel: %d/%d angles", channel, completed, total)
		}
	}
}

// saveKernels plots the kernel of every filter that has one
func saveKernels(dir string, kinds []filter.Kind, samples int) (string, error) {
	kernels := make(map[string][]float64)
	for _, kind := range kinds {
		k, err := filter.KernelFor(kind, samples)
		if err != nil {
			return "", err
		}
		if k != nil {
			kernels[kind.String()] = k
		}
	}
	if len(kernels) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, "kernels.png")
	return path, visualization.SaveKernelPlot(path, kernels)
}

// demoPoints places a few coloured point sources inside the inscribed square
func demoPoints(samples int) []phantom.Point {
	c := float64(samples-1) / 2
	r := float64(samples) / 6
	return []phantom.Point{
		{X: c, Y: c, Intensity: [3]float64{1, 1, 1}},
		{X: c - r, Y: c - r/2, Intensity: [3]float64{1, 0.1, 0.1}},
		{X: c + r/2, Y: c - r, Intensity: [3]float64{0.1, 1, 0.1}},
		{X: c + r, Y: c + r, Intensity: [3]float64{0.1, 0.1, 1}},
		{X: c - r/2, Y: c + r, Intensity: [3]float64{0.8, 0.8, 0.1}},
	}
}

// savePhantom writes the sinogram of demoPoints to the configured input path
func savePhantom(cfg *config.Config) error {
	angles, samples := cfg.Input.Angles, cfg.Input.Samples
	if angles == 0 {
		angles = 360
	}
	if samples == 0 {
		samples = 658
	}

	sino, err := phantom.Sinogram(angles, samples, demoPoints(samples))
	if err != nil {
		return err
	}
	return imageio.Save(cfg.Input.Path, phantom.Render(sino))
}
