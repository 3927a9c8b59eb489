package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmarchant/reveille/internal/audio"
)

var playOpts struct {
	volume int
}

var playCmd = &cobra.Command{
	Use:   "play <audio-file>",
	Short: "Play a single audio file and exit",
	Long: `Play a single audio file and exit.

Examples:
  # Test a recording at full volume
  reveille play sounds/reveille.mp3

  # Quieter
  reveille play sounds/taps.mp3 --volume 40`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return playFile(args[0], playOpts.volume)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVar(&playOpts.volume, "volume", 100,
		"Playback volume (0-100)")
}

// playFile plays one file synchronously so the process does not exit
// mid-call.
func playFile(path string, volume int) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("volume %d out of range 0-100", volume)
	}

	manager := audio.NewManager(logger)
	defer manager.Stop()

	manager.SetVolumePercent(volume)

	logger.Info("playing file", "path", path, "volume", volume)
	if err := manager.PlaySync(path); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
