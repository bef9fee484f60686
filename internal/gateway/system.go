package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/klfgate/internal/klf"
)

// Version returns firmware and hardware versions. Results are cached for
// CacheDuration.
func (c *Client) Version(ctx context.Context) (klf.Version, error) {
	if c.CacheDuration > 0 {
		c.cacheMutex.RLock()
		if c.cachedVersion != nil && time.Since(c.cacheTime) < c.CacheDuration {
			v := *c.cachedVersion
			c.cacheMutex.RUnlock()
			return v, nil
		}
		c.cacheMutex.RUnlock()
	}

	v, err := read[klf.Version](ctx, c, klf.CmdGetVersionReq)
	if err != nil {
		return klf.Version{}, err
	}
	if c.CacheDuration > 0 {
		c.cacheMutex.Lock()
		c.cachedVersion = &v
		c.cacheTime = time.Now()
		c.cacheMutex.Unlock()
	}
	return v, nil
}

// ProtocolVersion returns the API version the gateway speaks.
func (c *Client) ProtocolVersion(ctx context.Context) (klf.ProtocolVersion, error) {
	return read[klf.ProtocolVersion](ctx, c, klf.CmdGetProtocolVersionReq)
}

// State returns the gateway state and sub state.
func (c *Client) State(ctx context.Context) (klf.State, error) {
	return read[klf.State](ctx, c, klf.CmdGetStateReq)
}

// NetworkSetup returns the gateway LAN configuration.
func (c *Client) NetworkSetup(ctx context.Context) (klf.NetworkSetup, error) {
	return read[klf.NetworkSetup](ctx, c, klf.CmdGetNetworkSetupReq)
}

// SetNetworkSetup changes the gateway LAN configuration. The gateway applies
// it after a reboot.
func (c *Client) SetNetworkSetup(ctx context.Context, ns klf.NetworkSetup) error {
	_, err := c.sess.Send(ctx, klf.CmdSetNetworkSetupReq, ns)
	return err
}

// LeaveLearnState ends learn mode.
func (c *Client) LeaveLearnState(ctx context.Context) error {
	r, err := call[klf.StatusReply](ctx, c, klf.CmdLeaveLearnStateReq, nil)
	if err != nil {
		return err
	}
	if !r.OK {
		return rejected(klf.CmdLeaveLearnStateReq, 0, "gateway stayed in learn state")
	}
	return nil
}

// Reboot restarts the gateway. The connection drops shortly after the
// confirmation.
func (c *Client) Reboot(ctx context.Context) error {
	_, err := c.sess.Send(ctx, klf.CmdRebootReq, nil)
	if err == nil {
		c.InvalidateCache()
	}
	return err
}

// EnableHouseMonitor turns on GW_NODE_STATE_POSITION_CHANGED_NTF for every
// node.
func (c *Client) EnableHouseMonitor(ctx context.Context) error {
	_, err := c.sess.Send(ctx, klf.CmdHouseStatusMonitorEnableReq, nil)
	return err
}

// DisableHouseMonitor turns off position notifications.
func (c *Client) DisableHouseMonitor(ctx context.Context) error {
	_, err := c.sess.Send(ctx, klf.CmdHouseStatusMonitorDisableReq, nil)
	return err
}

// ChangePassword replaces the gateway password. Other connected clients
// receive GW_PASSWORD_CHANGE_NTF.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	if len(next) == 0 || len(next) > klf.MaxPasswordLength {
		return fmt.Errorf("new password must be 1-%d characters", klf.MaxPasswordLength)
	}
	r, err := call[klf.StatusReply](ctx, c, klf.CmdPasswordChangeReq, klf.PasswordChange{Current: current, New: next})
	if err != nil {
		return err
	}
	if !r.OK {
		return rejected(klf.CmdPasswordChangeReq, 1, "current password is wrong")
	}
	return nil
}

// SetUTC sets the gateway clock.
func (c *Client) SetUTC(ctx context.Context, t time.Time) error {
	_, err := c.sess.Send(ctx, klf.CmdSetUTCReq, klf.SetUTC{Time: t})
	return err
}

// SetTimeZone sets the rule string the gateway uses to derive local time.
func (c *Client) SetTimeZone(ctx context.Context, zone string) error {
	r, err := call[klf.StatusReply](ctx, c, klf.CmdRTCSetTimeZoneReq, klf.TimeZone{Zone: zone})
	if err != nil {
		return err
	}
	if !r.OK {
		return rejected(klf.CmdRTCSetTimeZoneReq, 0, "time zone string not accepted")
	}
	return nil
}

// LocalTime returns the gateway clock.
func (c *Client) LocalTime(ctx context.Context) (klf.LocalTime, error) {
	return read[klf.LocalTime](ctx, c, klf.CmdGetLocalTimeReq)
}
