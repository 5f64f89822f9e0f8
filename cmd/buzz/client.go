package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/internal/connect"
	"github.com/Xevion/go-buzz/types"
)

var (
	sunrise bool
	sunset  bool
	offset  string
)

var timesCmd = &cobra.Command{
	Use:   "times",
	Short: "List and edit the configured buzz times",
}

var timesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured times",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		times, err := client.Times()
		if err != nil {
			return err
		}
		if len(times) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No buzz times configured")
			return nil
		}
		for _, t := range times {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var timesAddCmd = &cobra.Command{
	Use:   "add [HH:MM]",
	Short: "Add a daily time, or today's sunrise/sunset",
	Args: func(cmd *cobra.Command, args []string) error {
		if sunrise || sunset {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if sunrise && sunset {
			return fmt.Errorf("--sunrise and --sunset are mutually exclusive")
		}
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}

		var resp internal.AddTimeResponse
		if sunrise || sunset {
			resp, err = client.AddSun(sunset, types.DurationString(offset))
		} else {
			resp, err = client.AddTime(types.TimeString(args[0]))
		}
		if err != nil {
			return err
		}

		if resp.Added {
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", resp.Time)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already configured\n", resp.Time)
		}
		return nil
	},
}

var timesRemoveCmd = &cobra.Command{
	Use:     "remove HH:MM",
	Aliases: []string{"rm"},
	Short:   "Remove a daily time",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		return client.RemoveTime(types.TimeString(args[0]))
	},
}

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Manage the custom alert sound",
}

var audioSetCmd = &cobra.Command{
	Use:   "set FILE",
	Short: "Upload a custom alert sound",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		return client.SetAudio(filepath.Base(args[0]), f)
	},
}

var audioClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Go back to the built-in tone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		return client.ClearAudio()
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume LEVEL",
	Short: `Set the alert volume, "0.7" or "70%"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := internal.ParseLevel(args[0])
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		return client.SetVolume(level)
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Fire a test buzz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		started, err := client.Test()
		if err != nil {
			return err
		}
		if !started {
			fmt.Fprintln(cmd.OutOrStdout(), "A buzz is already in progress")
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the clock, the next buzz and the audio settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		status, err := client.Status()
		if err != nil {
			return err
		}

		next := "none"
		if status.Next != nil {
			next = status.Next.String()
		}
		clip := status.ClipName
		if clip == "" {
			clip = "built-in tone"
		}
		times := make([]string, 0, len(status.Times))
		for _, t := range status.Times {
			times = append(times, t.String())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Time:      %s\n", status.Now)
		fmt.Fprintf(cmd.OutOrStdout(), "Next:      %s (in %s)\n", next, status.Countdown)
		fmt.Fprintf(cmd.OutOrStdout(), "Flashing:  %t\n", status.Flashing)
		fmt.Fprintf(cmd.OutOrStdout(), "Times:     %s\n", strings.Join(times, " "))
		fmt.Fprintf(cmd.OutOrStdout(), "Sound:     %s at %.0f%%\n", clip, status.Volume*100)
		fmt.Fprintf(cmd.OutOrStdout(), "Store:     %s\n", status.Store)
		fmt.Fprintf(cmd.OutOrStdout(), "Version:   %s\n", status.Version)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live clock feed",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	timesAddCmd.Flags().BoolVar(&sunrise, "sunrise", false, "use today's sunrise")
	timesAddCmd.Flags().BoolVar(&sunset, "sunset", false, "use today's sunset")
	timesAddCmd.Flags().StringVar(&offset, "offset", "", `shift the sun event, e.g. "-30m"`)

	timesCmd.AddCommand(timesListCmd, timesAddCmd, timesRemoveCmd)
	audioCmd.AddCommand(audioSetCmd, audioClearCmd)
}

func baseURL() (*url.URL, error) {
	raw := serverURL
	if raw == "" {
		raw = "http://" + cfg.HTTPAddr
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	return u, nil
}

func newClient(ctx context.Context) (*internal.HttpClient, error) {
	u, err := baseURL()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return internal.NewHttpClient(ctx, u), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	u, err := baseURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := connect.Dial(ctx, u)
	if err != nil {
		return err
	}
	defer conn.Close()

	frames := make(chan connect.Frame, 16)
	go connect.ListenWebsocket(conn.Conn, frames)

	out := cmd.OutOrStdout()
	var clock, countdown string
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return fmt.Errorf("connection to %s closed", u.Host)
			}
			switch frame.Type {
			case connect.TypeTime:
				clock = frame.Text
			case connect.TypeCountdown:
				countdown = frame.Text
			case connect.TypeFlash:
				if frame.Active {
					fmt.Fprintf(out, "\nBUZZ at %s\n", clock)
				}
				continue
			case connect.TypeTimes:
				fmt.Fprintf(out, "\nTimes: %v\n", frame.Times)
				continue
			default:
				continue
			}
			fmt.Fprintf(out, "\r%s  next buzz in %-12s", clock, countdown)
		}
	}
}
