package gateway

import (
	"context"
	"fmt"

	"github.com/muurk/klfgate/internal/klf"
)

// MoveRequest moves the main parameter of one or more nodes.
type MoveRequest struct {
	Nodes    []byte
	Position klf.Position
	// Wait blocks until the gateway reports the command session finished.
	Wait bool
}

// MoveResult is the outcome of a movement command.
type MoveResult struct {
	SessionID uint16
	// Status holds the run status notifications seen while waiting.
	Status []klf.RunStatusNotification
}

// Move sends GW_COMMAND_SEND_REQ for req.
func (c *Client) Move(ctx context.Context, req MoveRequest) (MoveResult, error) {
	if len(req.Nodes) == 0 {
		return MoveResult{}, fmt.Errorf("no nodes to move")
	}
	res := MoveResult{SessionID: c.sess.NextSessionID()}

	var w *watcher
	if req.Wait {
		w = c.watch(klf.CmdCommandRunStatusNtf, klf.CmdSessionFinishedNtf)
		defer w.close()
	}

	r, err := call[klf.CommandSendReply](ctx, c, klf.CmdCommandSendReq,
		klf.NewCommandSend(res.SessionID, req.Position, req.Nodes...))
	if err != nil {
		return res, err
	}
	if !r.Accepted {
		return res, rejected(klf.CmdCommandSendReq, 0, "command not accepted")
	}
	if !req.Wait {
		return res, nil
	}

	deadline, stop := c.collectDeadline()
	defer stop()
	for {
		msg, err := w.next(ctx, deadline, klf.CmdCommandSendReq)
		if err != nil {
			return res, err
		}
		switch rec := msg.Record.(type) {
		case klf.RunStatusNotification:
			if rec.SessionID == res.SessionID {
				res.Status = append(res.Status, rec)
			}
		case klf.SessionFinished:
			if rec.SessionID == res.SessionID {
				return res, nil
			}
		}
	}
}

// SetPosition moves one node to percent (0 open, 100 closed for most
// window actuators).
func (c *Client) SetPosition(ctx context.Context, node byte, percent float64, wait bool) (MoveResult, error) {
	pos, err := klf.PercentToPosition(percent)
	if err != nil {
		return MoveResult{}, err
	}
	return c.Move(ctx, MoveRequest{Nodes: []byte{node}, Position: pos, Wait: wait})
}

// Stop halts the given nodes where they are.
func (c *Client) Stop(ctx context.Context, nodes ...byte) error {
	_, err := c.Move(ctx, MoveRequest{Nodes: nodes, Position: klf.PositionCurrent})
	return err
}
