package commands

import (
	"github.com/spf13/cobra"

	"github.com/reelcap/reelcap/internal/config"
)

// addRecordingFlags registers the flag set shared by `record` and
// `preset save`.
func addRecordingFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("duration", -1, "recording length in milliseconds (-1 records until cancelled)")
	cmd.Flags().String("area", "", "capture area: x:y:w:h or center:w:h (default is the full screen)")
	cmd.Flags().Int("screen", 0, "1-based screen index (default is the primary screen)")
	cmd.Flags().String("app", "", "record a single application's window by name")
	cmd.Flags().String("format", "mjpeg", "output container format")
	cmd.Flags().Int("fps", 30, "frames per second (15, 30 or 60)")
	cmd.Flags().String("quality", "medium", "video quality tier (low, medium, high)")
	cmd.Flags().String("audio-quality", "medium", "audio quality tier (low, medium, high)")
	cmd.Flags().Bool("microphone", false, "include the microphone stream")
	cmd.Flags().Bool("system-audio-only", false, "force system-wide audio capture (enables hybrid mode with --app)")
	cmd.Flags().Bool("cursor", true, "show the cursor in the recording")
	cmd.Flags().Int("countdown", 0, "seconds to count down before capture starts")
}

// collectInput reads the shared recording flags into a CLIInput, marking
// which flags the user explicitly set so they override preset fields only
// when actually given.
func collectInput(cmd *cobra.Command) config.CLIInput {
	flags := cmd.Flags()

	in := config.CLIInput{}
	in.DurationMS, _ = flags.GetInt64("duration")
	in.DurationSet = flags.Changed("duration")
	in.Area, _ = flags.GetString("area")
	in.AreaSet = flags.Changed("area")
	in.Screen, _ = flags.GetInt("screen")
	in.ScreenSet = flags.Changed("screen")
	in.Application, _ = flags.GetString("app")
	in.Format, _ = flags.GetString("format")
	in.FormatSet = flags.Changed("format")
	in.FPS, _ = flags.GetInt("fps")
	in.FPSSet = flags.Changed("fps")
	in.VideoQuality, _ = flags.GetString("quality")
	in.VideoQualitySet = flags.Changed("quality")
	in.AudioQuality, _ = flags.GetString("audio-quality")
	in.AudioQualitySet = flags.Changed("audio-quality")
	in.Microphone, _ = flags.GetBool("microphone")
	in.MicrophoneSet = flags.Changed("microphone")
	in.SystemAudioOnly, _ = flags.GetBool("system-audio-only")
	in.SystemAudioOnlySet = flags.Changed("system-audio-only")
	in.ShowCursor, _ = flags.GetBool("cursor")
	in.ShowCursorSet = flags.Changed("cursor")
	in.CountdownSeconds, _ = flags.GetInt("countdown")
	in.CountdownSet = flags.Changed("countdown")

	return in
}
