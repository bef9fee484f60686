package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/klfgate/internal/config"
	"github.com/muurk/klfgate/internal/connect"
	"github.com/muurk/klfgate/internal/discovery"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/ui"
)

var (
	scanTimeout time.Duration
	waitFlag    bool
	labelRoom   string
	labelType   string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(sceneCmd)

	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to listen for gateways")
	positionCmd.Flags().BoolVar(&waitFlag, "wait", false, "Wait until the movement has finished")
	labelCmd.Flags().StringVar(&labelRoom, "room", "", "Room used to group nodes")
	labelCmd.Flags().StringVar(&labelType, "type", "", "Node type (window, blind, roller, awning, garage, light, on_off, other)")
}

// scanCmd discovers gateways on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for KLF 200 gateways on the network",
	Long: `Scan for KLF 200 gateways using mDNS.

Gateways advertise themselves as VELUX_KLF_LAN_XXXX. Every gateway found is
remembered in the configuration registry.`,
	Example: `  klfctl scan
  klfctl scan --scan-timeout 15s`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	devices, err := discovery.ScanForDevices(cmd.Context(), scanTimeout)
	if err != nil {
		return fail(cmd, "Scan failed", err)
	}

	for _, d := range devices {
		registry.UpdateLastSeen(d.Serial, d.IP)
	}
	if len(devices) > 0 {
		if registry.Default == "" && len(devices) == 1 {
			registry.Default = devices[0].Serial
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save config registry: %w", err)
		}
	}

	if !detailed() {
		return printJSON(cmd, devices)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if len(devices) == 0 {
		p.PrintWarning("No gateways found",
			ui.Detail{Key: "Timeout", Value: scanTimeout.String()},
			ui.Detail{Key: "Hint", Value: "multicast may be blocked; use --host"},
		)
		return nil
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		nick := ""
		if gw := registry.GetGateway(d.Serial); gw != nil {
			nick = gw.Nickname
		}
		rows = append(rows, []string{d.Serial, d.IP, d.Hostname, nick})
	}
	p.PrintHeader("Gateways", "klfctl scan", ui.Detail{Key: "Found", Value: strconv.Itoa(len(devices))})
	p.PrintTable([]string{"Serial", "Address", "Host name", "Nickname"}, rows)
	return nil
}

// infoCmd shows gateway information
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show gateway version, state and network setup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Gateway info failed", false, func(ctx context.Context, c *connect.Conn) error {
			v, err := c.Client.Version(ctx)
			if err != nil {
				return err
			}
			pv, err := c.Client.ProtocolVersion(ctx)
			if err != nil {
				return err
			}
			st, err := c.Client.State(ctx)
			if err != nil {
				return err
			}
			ns, err := c.Client.NetworkSetup(ctx)
			if err != nil {
				return err
			}

			if !detailed() {
				return printJSON(cmd, map[string]any{
					"host":        c.Host,
					"fingerprint": c.Fingerprint,
					"software":    v.SoftwareString(),
					"hardware":    v.Hardware,
					"protocol":    pv.String(),
					"state":       st.State.String(),
					"subState":    st.SubState.String(),
					"ip":          ns.IP.String(),
					"mask":        ns.Mask.String(),
					"gateway":     ns.Gateway.String(),
					"dhcp":        ns.DHCP,
				})
			}

			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Gateway "+c.Key,
				ui.Detail{Key: "Host", Value: c.Host},
				ui.Detail{Key: "Software", Value: v.SoftwareString()},
				ui.Detail{Key: "Hardware", Value: strconv.Itoa(int(v.Hardware))},
				ui.Detail{Key: "Protocol", Value: pv.String()},
				ui.Detail{Key: "State", Value: st.State.String()},
				ui.Detail{Key: "Sub state", Value: st.SubState.String()},
				ui.Detail{Key: "Address", Value: ns.IP.String() + " / " + ns.Mask.String()},
				ui.Detail{Key: "Router", Value: ns.Gateway.String()},
				ui.Detail{Key: "DHCP", Value: strconv.FormatBool(ns.DHCP)},
				ui.Detail{Key: "Fingerprint", Value: c.Fingerprint},
			)
			return nil
		})
	},
}

type nodeView struct {
	ID       byte    `json:"id"`
	Name     string  `json:"name"`
	Label    string  `json:"label,omitempty"`
	Room     string  `json:"room,omitempty"`
	Type     string  `json:"type"`
	State    string  `json:"state"`
	Position float64 `json:"position"` // -1 when unknown
	Target   float64 `json:"target"`
}

func positionPercent(p klf.Position) float64 {
	if !p.IsRelative() {
		return -1
	}
	return p.Percent()
}

// nodesCmd lists the actuators
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List actuators with their positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Listing nodes failed", false, func(ctx context.Context, c *connect.Conn) error {
			nodes, err := c.Client.Nodes(ctx)
			if err != nil {
				return err
			}

			views := make([]nodeView, 0, len(nodes))
			for _, n := range nodes {
				v := nodeView{
					ID:       n.NodeID,
					Name:     n.Name,
					Type:     n.Type.String(),
					State:    n.State.String(),
					Position: positionPercent(n.CurrentPosition),
					Target:   positionPercent(n.Target),
				}
				if gw := registry.GetGateway(c.Key); gw != nil {
					if meta := gw.Nodes[int(n.NodeID)]; meta != nil {
						v.Label, v.Room = meta.Label, meta.Room
					}
				}
				views = append(views, v)
			}

			if !detailed() {
				return printJSON(cmd, views)
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.PrintHeader("Nodes", "klfctl nodes",
				ui.Detail{Key: "Gateway", Value: c.Host},
				ui.Detail{Key: "Count", Value: strconv.Itoa(len(views))},
			)
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				name := v.Name
				if v.Label != "" {
					name += " (" + v.Label + ")"
				}
				rows = append(rows, []string{strconv.Itoa(int(v.ID)), name, v.Room, v.Type, ui.PositionBar(v.Position), v.State})
			}
			p.PrintTable([]string{"ID", "Name", "Room", "Type", "Position", "State"}, rows)
			return nil
		})
	},
}

// The gateway holds at most 200 actuators.
const maxNodeID = 199

func parseNode(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v > maxNodeID {
		return 0, fmt.Errorf("invalid node id %q (0-%d)", s, maxNodeID)
	}
	return byte(v), nil
}

// positionCmd moves a node
var positionCmd = &cobra.Command{
	Use:   "position <node> <percent>",
	Short: "Move a node to a position (0 = open, 100 = closed)",
	Example: `  # Close node 0 completely
  klfctl position 0 100

  # Open node 2 halfway and wait until it stops
  klfctl position 2 50 --wait`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := parseNode(args[0])
		if err != nil {
			return err
		}
		percent, err := strconv.ParseFloat(args[1], 64)
		if err != nil || percent < 0 || percent > 100 {
			return fmt.Errorf("invalid percent %q (0-100)", args[1])
		}

		return withGateway(cmd, "Move failed", false, func(ctx context.Context, c *connect.Conn) error {
			res, err := c.Client.SetPosition(ctx, node, percent, waitFlag)
			if err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, res)
			}
			r := ui.NewSuccessResult("Position command accepted",
				ui.Detail{Key: "Node", Value: strconv.Itoa(int(node))},
				ui.Detail{Key: "Target", Value: strconv.FormatFloat(percent, 'f', -1, 64) + "%"},
				ui.Detail{Key: "Session", Value: strconv.Itoa(int(res.SessionID))},
			)
			for _, st := range res.Status {
				r.AddDetail(fmt.Sprintf("Node %d", st.NodeID), st.RunStatus.String())
			}
			ui.NewPrinter(cmd.OutOrStdout()).Println(r.SetWidth(ui.GetTerminalWidth()).Render())
			return nil
		})
	},
}

// stopCmd halts nodes
var stopCmd = &cobra.Command{
	Use:   "stop <node>...",
	Short: "Stop moving nodes at their current position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := make([]byte, 0, len(args))
		for _, a := range args {
			n, err := parseNode(a)
			if err != nil {
				return err
			}
			nodes = append(nodes, n)
		}
		return withGateway(cmd, "Stop failed", false, func(ctx context.Context, c *connect.Conn) error {
			if err := c.Client.Stop(ctx, nodes...); err != nil {
				return err
			}
			if detailed() {
				ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Stop sent", ui.Detail{Key: "Nodes", Value: fmt.Sprint(nodes)})
				return nil
			}
			ids := make([]int, len(nodes))
			for i, n := range nodes {
				ids[i] = int(n)
			}
			return printJSON(cmd, map[string]any{"stopped": ids})
		})
	},
}

// renameCmd changes the name stored in the gateway
var renameCmd = &cobra.Command{
	Use:   "rename <node> <name>",
	Short: "Rename a node in the gateway",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := parseNode(args[0])
		if err != nil {
			return err
		}
		return withGateway(cmd, "Rename failed", false, func(ctx context.Context, c *connect.Conn) error {
			if err := c.Client.Rename(ctx, node, args[1]); err != nil {
				return err
			}
			if detailed() {
				ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Node renamed",
					ui.Detail{Key: "Node", Value: args[0]},
					ui.Detail{Key: "Name", Value: args[1]},
				)
				return nil
			}
			return printJSON(cmd, map[string]any{"node": node, "name": args[1]})
		})
	},
}

// labelCmd stores a client-side label for a node
var labelCmd = &cobra.Command{
	Use:   "label <node> <label>",
	Short: "Store a local label and room for a node",
	Long: `Store a label, room and type for a node in the local configuration
registry. Labels are shown by 'klfctl nodes' and never sent to the gateway.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := parseNode(args[0])
		if err != nil {
			return err
		}
		if labelType != "" {
			if _, ok := config.NodeTypeDefinitions[labelType]; !ok {
				types := make([]string, 0, len(config.NodeTypeDefinitions))
				for t := range config.NodeTypeDefinitions {
					types = append(types, t)
				}
				sort.Strings(types)
				return fmt.Errorf("unknown node type %q (one of %v)", labelType, types)
			}
		}

		ctx := cmd.Context()
		_, key, err := connect.ResolveHost(ctx, settings, registry)
		if err != nil {
			return err
		}
		registry.SetNodeLabel(key, int(node), args[1], labelRoom, labelType)
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save config registry: %w", err)
		}
		if detailed() {
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Label saved",
				ui.Detail{Key: "Gateway", Value: key},
				ui.Detail{Key: "Node", Value: args[0]},
				ui.Detail{Key: "Label", Value: args[1]},
			)
			return nil
		}
		return printJSON(cmd, registry.GetGateway(key).Nodes[int(node)])
	},
}

var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "List, run and stop scenes",
}

func init() {
	sceneCmd.AddCommand(sceneListCmd, sceneRunCmd, sceneStopCmd)
	sceneRunCmd.Flags().BoolVar(&waitFlag, "wait", false, "Wait until the scene has finished")
}

func parseScene(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid scene id %q", s)
	}
	return byte(v), nil
}

var sceneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenes stored in the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(cmd, "Listing scenes failed", false, func(ctx context.Context, c *connect.Conn) error {
			scenes, err := c.Client.Scenes(ctx)
			if err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, scenes)
			}
			p := ui.NewPrinter(cmd.OutOrStdout())
			p.PrintHeader("Scenes", "klfctl scene list", ui.Detail{Key: "Count", Value: strconv.Itoa(len(scenes))})
			rows := make([][]string, 0, len(scenes))
			for _, s := range scenes {
				rows = append(rows, []string{strconv.Itoa(int(s.ID)), s.Name})
			}
			p.PrintTable([]string{"ID", "Name"}, rows)
			return nil
		})
	},
}

var sceneRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a scene",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseScene(args[0])
		if err != nil {
			return err
		}
		return withGateway(cmd, "Scene failed", false, func(ctx context.Context, c *connect.Conn) error {
			sid, err := c.Client.RunScene(ctx, id, waitFlag)
			if err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]any{"scene": id, "sessionId": sid})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Scene started",
				ui.Detail{Key: "Scene", Value: args[0]},
				ui.Detail{Key: "Session", Value: strconv.Itoa(int(sid))},
			)
			return nil
		})
	},
}

var sceneStopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Stop a running scene",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseScene(args[0])
		if err != nil {
			return err
		}
		return withGateway(cmd, "Stopping scene failed", false, func(ctx context.Context, c *connect.Conn) error {
			if err := c.Client.StopScene(ctx, id); err != nil {
				return err
			}
			if !detailed() {
				return printJSON(cmd, map[string]any{"scene": id, "stopped": true})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Scene stopped", ui.Detail{Key: "Scene", Value: args[0]})
			return nil
		})
	},
}
