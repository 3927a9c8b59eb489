package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmarchant/reveille/internal/config"
	"github.com/jmarchant/reveille/internal/schedule"
)

var nextOpts struct {
	all bool
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next scheduled call",
	Long: `Show the next scheduled call and when it fires.

Examples:
  # The single next call
  reveille next

  # Today's remaining calls
  reveille next --all`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)

	nextCmd.Flags().BoolVar(&nextOpts.all, "all", false,
		"List all of today's remaining calls")
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(globalOpts.configPath)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sched := cfg.Schedule()
	now := time.Now().In(loc)

	if nextOpts.all {
		upcoming := sched.Upcoming(now)
		if len(upcoming) == 0 {
			fmt.Println("No calls remaining today")
			return nil
		}
		for _, e := range upcoming {
			printCall(e, e.At.On(now))
		}
		return nil
	}

	entry, at, ok := sched.Next(now)
	if !ok {
		fmt.Fprintln(os.Stderr, "The schedule has no calls")
		return nil
	}
	printCall(entry, at)
	return nil
}

func printCall(e schedule.Entry, at time.Time) {
	fmt.Printf("%-12s %s (%s)\n", e.Name, at.Format("Mon 15:04"), humanize.Time(at))
}
