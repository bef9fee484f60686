package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/klfgate/internal/connect"
	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/transport"
	"github.com/muurk/klfgate/internal/ui"
)

var (
	tuiFlag      bool
	setUTCFlag   bool
	timeZoneFlag string
	yesFlag      bool
	discoverType int
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(trustCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(leaveLearnCmd)
	rootCmd.AddCommand(passwordCmd)

	monitorCmd.Flags().BoolVar(&tuiFlag, "tui", false, "Interactive scrolling view")
	clockCmd.Flags().BoolVar(&setUTCFlag, "set-utc", false, "Set the gateway clock to the current UTC time")
	clockCmd.Flags().StringVar(&timeZoneFlag, "timezone", "", `Set the gateway time zone string (e.g. ":GMT+1:GMT+2:0060:(1994)040102-0:110102-0")`)
	rebootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")
	trustCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")
	removeCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")
	discoverCmd.Flags().IntVar(&discoverType, "type", 0, "Actuator type to search for (0 for all)")
}

// monitorCmd follows gateway notifications
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow gateway notifications live",
	Long: `Enable the house status monitor and print every notification the
gateway sends until interrupted. With --tui the events are shown in a
scrolling view.`,
	Example: `  klfctl monitor
  klfctl monitor --tui
  klfctl monitor --format json`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	return withGateway(cmd, "Monitor failed", true, func(ctx context.Context, c *connect.Conn) error {
		feed := make(chan events.Event, ui.MonitorHistory)
		failed := make(chan error, 1)

		push := func(ev events.Event) {
			select {
			case feed <- ev:
			default:
			}
		}
		// err and timeout both end the session
		ended := func(ev events.Event) {
			push(ev)
			select {
			case failed <- ev.Err:
			default:
			}
		}
		subs := []events.Subscription{
			c.Session.On(events.TopicNotification, push),
			c.Session.On(events.TopicTimeout, ended),
			c.Session.On(events.TopicError, ended),
		}
		defer func() {
			for _, s := range subs {
				c.Session.Off(s)
			}
		}()

		if err := c.Client.EnableHouseMonitor(ctx); err != nil {
			return err
		}

		if tuiFlag && detailed() {
			return monitorTUI(ctx, c, feed, failed)
		}

		if detailed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Monitoring %s, press Ctrl+C to stop\n", c.Host)
		}
		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-failed:
				return err
			case ev := <-feed:
				msg := ui.NewEventMsg(ev)
				if detailed() {
					fmt.Fprintln(out, ui.FormatEvent(msg))
					continue
				}
				if err := printJSON(cmd, msg); err != nil {
					return err
				}
			}
		}
	})
}

func monitorTUI(ctx context.Context, c *connect.Conn, feed <-chan events.Event, failed <-chan error) error {
	source := make(chan ui.EventMsg)
	prog := tea.NewProgram(ui.NewMonitor("klfctl monitor", source), tea.WithContext(ctx))

	go func() {
		defer close(source)
		prog.Send(ui.ConnectedMsg{Host: c.Host})
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-failed:
				prog.Send(ui.ErrMsg{Err: err})
				return
			case ev := <-feed:
				select {
				case source <- ui.NewEventMsg(ev):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(ui.Monitor); ok {
		return m.Err()
	}
	return nil
}

// clockCmd reads or sets the gateway clock
var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Show or set the gateway clock",
	Example: `  klfctl clock
  klfctl clock --set-utc
  klfctl clock --timezone ":GMT+1:GMT+2:0060:(1994)040102-0:110102-0"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Clock failed", false, func(ctx context.Context, c *connect.Conn) error {
			if setUTCFlag {
				if err := c.Client.SetUTC(ctx, time.Now()); err != nil {
					return err
				}
			}
			if timeZoneFlag != "" {
				if err := c.Client.SetTimeZone(ctx, timeZoneFlag); err != nil {
					return err
				}
			}
			lt, err := c.Client.LocalTime(ctx)
			if err != nil {
				return err
			}

			t := lt.Time()
			if !detailed() {
				return printJSON(cmd, map[string]any{
					"localTime": t.Format(time.RFC3339),
					"skew":      time.Since(t).Round(time.Second).String(),
				})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Gateway clock",
				ui.Detail{Key: "Local time", Value: t.Format("2006-01-02 15:04:05")},
				ui.Detail{Key: "Set UTC", Value: strconv.FormatBool(setUTCFlag)},
				ui.Detail{Key: "Time zone", Value: orDash(timeZoneFlag)},
			)
			return nil
		})
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// rebootCmd restarts the gateway
var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Reboot failed", false, func(ctx context.Context, c *connect.Conn) error {
			if !yesFlag && !ui.ConfirmReboot(cmd.InOrStdin(), cmd.ErrOrStderr(), c.Host) {
				return errors.New("reboot cancelled")
			}
			if err := c.Client.Reboot(ctx); err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]any{"rebooting": true})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Gateway is rebooting",
				ui.Detail{Key: "Host", Value: c.Host},
				ui.Detail{Key: "Note", Value: "the gateway is back after about a minute"},
			)
			return nil
		})
	},
}

// trustCmd pins the certificate fingerprint of a gateway
var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Fetch and pin the gateway certificate fingerprint",
	Long: `Connect without verification, show the SHA-256 fingerprint of the
gateway certificate and pin it in the configuration registry. Later
connections fail when the certificate changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		host, key, err := connect.ResolveHost(ctx, settings, registry)
		if err != nil {
			return fail(cmd, "Trust failed", err)
		}
		addr := net.JoinHostPort(host, strconv.Itoa(settings.Gateway.Port))
		fp, err := transport.Probe(ctx, addr, settings.Gateway.RequestTimeout)
		if err != nil {
			return fail(cmd, "Trust failed", err)
		}

		if detailed() && !yesFlag {
			warnings := []string{
				"Fingerprint: " + fp,
				"Compare it with a trusted source before pinning.",
			}
			if gw := registry.GetGateway(key); gw != nil && gw.Fingerprint != "" && gw.Fingerprint != fp {
				warnings = append(warnings, "Replaces pinned fingerprint "+gw.Fingerprint)
			}
			if !ui.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Trust gateway "+host, warnings, "yes") {
				return errors.New("trust cancelled")
			}
		}

		registry.UpdateLastSeen(key, host)
		registry.PinFingerprint(key, fp)
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save config registry: %w", err)
		}

		if !detailed() {
			return printJSON(cmd, map[string]string{"gateway": key, "host": host, "fingerprint": fp})
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Certificate pinned",
			ui.Detail{Key: "Gateway", Value: key},
			ui.Detail{Key: "Host", Value: host},
			ui.Detail{Key: "Fingerprint", Value: fp},
		)
		return nil
	},
}

// discoverCmd searches for new actuators
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search for new actuators and add them to the gateway",
	Long: `Put the gateway into discovery mode. Discovery may take several
minutes; interrupt to give up waiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if discoverType < 0 || discoverType > 0x3FF {
			return fmt.Errorf("invalid actuator type %d", discoverType)
		}
		return withGateway(cmd, "Discovery failed", true, func(ctx context.Context, c *connect.Conn) error {
			if detailed() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Searching for actuators, this can take a few minutes...")
			}
			res, err := c.Client.Discover(ctx, klf.ActuatorType(discoverType))
			if err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string][]int{
					"added":             res.Added.Nodes(),
					"rfConnectionError": res.RFConnectionError.Nodes(),
					"ioKeyError":        res.IOKeyError.Nodes(),
					"removed":           res.Removed.Nodes(),
				})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Discovery finished",
				ui.Detail{Key: "Added", Value: fmt.Sprint(res.Added.Nodes())},
				ui.Detail{Key: "RF errors", Value: fmt.Sprint(res.RFConnectionError.Nodes())},
				ui.Detail{Key: "Key errors", Value: fmt.Sprint(res.IOKeyError.Nodes())},
				ui.Detail{Key: "Removed", Value: fmt.Sprint(res.Removed.Nodes())},
			)
			return nil
		})
	},
}

// removeCmd deletes actuators from the gateway
var removeCmd = &cobra.Command{
	Use:   "remove <node>...",
	Short: "Remove actuators from the gateway system table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args))
		for _, a := range args {
			n, err := parseNode(a)
			if err != nil {
				return err
			}
			ids = append(ids, int(n))
		}
		return withGateway(cmd, "Remove failed", false, func(ctx context.Context, c *connect.Conn) error {
			if !yesFlag && !ui.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Remove nodes from "+c.Host,
				[]string{"Nodes " + fmt.Sprint(ids) + " will be deleted from the gateway.", "Scenes using them may be deleted too."}, "REMOVE") {
				return errors.New("remove cancelled")
			}
			scenesDeleted, err := c.Client.RemoveNodes(ctx, ids...)
			if err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]any{"removed": ids, "scenesDeleted": scenesDeleted})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Nodes removed",
				ui.Detail{Key: "Nodes", Value: fmt.Sprint(ids)},
				ui.Detail{Key: "Scenes deleted", Value: strconv.FormatBool(scenesDeleted)},
			)
			return nil
		})
	},
}

var leaveLearnCmd = &cobra.Command{
	Use:   "leave-learn",
	Short: "Take the gateway out of learn state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Leave learn state failed", false, func(ctx context.Context, c *connect.Conn) error {
			if err := c.Client.LeaveLearnState(ctx); err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]bool{"learnState": false})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Gateway left learn state")
			return nil
		})
	},
}

// NewPasswordEnvVar holds the new password for 'klfctl password'.
const NewPasswordEnvVar = "KLF_NEW_PASSWORD"

// passwordCmd changes the gateway password
var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the gateway password",
	Long: `Change the gateway password. The new password is read from
KLF_NEW_PASSWORD or prompted twice. Other connected clients are notified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := connect.Password(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		next, err := newPassword(cmd)
		if err != nil {
			return err
		}
		currentPassword = current

		return withGateway(cmd, "Password change failed", false, func(ctx context.Context, c *connect.Conn) error {
			if err := c.Client.ChangePassword(ctx, current, next); err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]bool{"changed": true})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Password changed", ui.Detail{Key: "Host", Value: c.Host})
			return nil
		})
	},
}

func newPassword(cmd *cobra.Command) (string, error) {
	if p := os.Getenv(NewPasswordEnvVar); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no new password: set %s or run interactively", NewPasswordEnvVar)
	}
	prompt := func(label string) (string, error) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	first, err := prompt("New password: ")
	if err != nil {
		return "", err
	}
	second, err := prompt("Repeat new password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
