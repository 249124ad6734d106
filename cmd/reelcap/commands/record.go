package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reelcap/reelcap/internal/api"
	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/capture"
	"github.com/reelcap/reelcap/internal/config"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/preset"
	"github.com/reelcap/reelcap/internal/session"
	"github.com/reelcap/reelcap/internal/sink"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the screen, a region, or an application window",
	Long: `Record the screen to a video file.

Without flags, the full primary screen is recorded until interrupted.
Flags or a saved preset pick the target, area, duration and quality; when
both are given, flags win field by field.`,
	Example: `  # Record the primary screen until Ctrl+C
  reelcap record

  # Record 10 seconds of a centered 1280x720 region
  reelcap record --duration 10000 --area center:1280:720

  # Record the Notes window with system-wide audio (hybrid mode)
  reelcap record --app Notes --system-audio-only

  # Record using a saved preset, overriding its frame rate
  reelcap record --preset demo --fps 60`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	addRecordingFlags(recordCmd)
	recordCmd.Flags().StringP("output", "o", "", "output file path (default is a timestamped name in the current directory)")
	recordCmd.Flags().Bool("overwrite", false, "overwrite the output file if it exists")
	recordCmd.Flags().String("preset", "", "use a saved preset as the configuration base")
	recordCmd.Flags().Int("status-port", 0, "serve a local status/control API on this port")
	recordCmd.Flags().BoolP("verbose", "v", false, "verbose progress output")
}

func runRecord(cmd *cobra.Command, args []string) error {
	in := collectInput(cmd)
	in.Output, _ = cmd.Flags().GetString("output")
	in.Overwrite, _ = cmd.Flags().GetBool("overwrite")
	in.Preset, _ = cmd.Flags().GetString("preset")
	in.Verbose, _ = cmd.Flags().GetBool("verbose")
	statusPort, _ := cmd.Flags().GetInt("status-port")

	store, err := preset.NewFileStore(viper.GetString("preset_dir"))
	if err != nil {
		return err
	}

	appEnum := apps.NewLazyEnumerator()
	defer appEnum.Close()

	displays := display.NewEnumerator()
	resolver := &config.Resolver{
		Displays:    displays,
		Apps:        appEnum,
		Presets:     store,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()),
	}

	cfg, err := resolver.Resolve(in)
	if err != nil {
		return err
	}

	plan, err := capture.Select(cfg, displays)
	if err != nil {
		return &exitError{code: ExitRuntime, err: err}
	}
	for _, notice := range plan.Notices {
		fmt.Println(notice)
	}

	out := sink.NewMJPEGFile(cfg.OutputPath, plan.Output.Width, plan.Output.Height, cfg.Video.Quality.JPEGQuality())
	ctrl := session.New(capture.NewGrabEngine(), out)

	if statusPort > 0 {
		server := api.NewServer(ctrl, store)
		go func() {
			if err := server.Start(statusPort); err != nil {
				fmt.Fprintf(os.Stderr, "status server error: %v\n", err)
			}
		}()
		defer server.Shutdown()
	}

	// A cancellation signal feeds the controller's stop guard; the
	// controller decides whether confirmation is required.
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			ctrl.Cancel()
		}
	}()

	printPlan(cfg, plan)

	result := ctrl.Run(context.Background(), cfg, plan)
	switch result.Kind {
	case session.ResultCompleted:
		fmt.Printf("Saved %s (%d bytes, %v)\n", result.OutputPath, result.Bytes, result.Duration.Round(time.Millisecond))
		return nil
	case session.ResultCancelled:
		fmt.Println("Recording cancelled; no output produced.")
		return &exitError{code: ExitCancelled}
	default:
		if result.PartialPath != "" {
			fmt.Fprintf(os.Stderr, "Partial recording preserved at %s\n", result.PartialPath)
		}
		return &exitError{code: ExitRuntime, err: result.Err}
	}
}

func printPlan(cfg *config.RecordingConfiguration, plan *capture.Plan) {
	target := ""
	switch plan.Mode {
	case capture.ModeScreen:
		target = fmt.Sprintf("%s, area %s", plan.Screen.Name, plan.SourceRect)
	case capture.ModeApplication:
		target = fmt.Sprintf("%s window %q", plan.Application.Name, plan.Window.Title)
	case capture.ModeHybrid:
		target = fmt.Sprintf("%s region under %s", plan.Screen.Name, plan.Application.Name)
	}

	length := "until cancelled"
	if !cfg.IsContinuous() {
		length = cfg.Duration.String()
	}

	fmt.Printf("Recording %s at %dx%d, %d fps, %s quality, %s -> %s\n",
		target, plan.Output.Width, plan.Output.Height, plan.FPS, plan.Quality, length, cfg.OutputPath)
}
