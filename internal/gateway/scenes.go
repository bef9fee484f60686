package gateway

import (
	"context"

	"github.com/muurk/klfgate/internal/klf"
)

// Scenes returns the scenes stored in the gateway.
func (c *Client) Scenes(ctx context.Context) ([]klf.Scene, error) {
	w := c.watch(klf.CmdGetSceneListNtf)
	defer w.close()

	r, err := call[klf.SceneCount](ctx, c, klf.CmdGetSceneListReq, nil)
	if err != nil {
		return nil, err
	}
	if r.Total == 0 {
		return nil, nil
	}

	deadline, stop := c.collectDeadline()
	defer stop()

	scenes := make([]klf.Scene, 0, r.Total)
	for {
		msg, err := w.next(ctx, deadline, klf.CmdGetSceneListReq)
		if err != nil {
			return scenes, err
		}
		l, err := record[klf.SceneList](msg)
		if err != nil {
			return scenes, err
		}
		scenes = append(scenes, l.Scenes...)
		if l.Remaining == 0 {
			return scenes, nil
		}
	}
}

// RunScene activates a scene and returns its command session id. With wait
// it returns once the gateway reports the session finished.
func (c *Client) RunScene(ctx context.Context, id byte, wait bool) (uint16, error) {
	sid := c.sess.NextSessionID()

	var w *watcher
	if wait {
		w = c.watch(klf.CmdSessionFinishedNtf)
		defer w.close()
	}

	r, err := call[klf.SceneReply](ctx, c, klf.CmdActivateSceneReq, klf.ActivateScene{
		SessionID:  sid,
		Originator: klf.OriginatorUser,
		Priority:   klf.PriorityUserLevel2,
		SceneID:    id,
	})
	if err != nil {
		return sid, err
	}
	if !r.OK() {
		return sid, rejected(klf.CmdActivateSceneReq, r.Status, sceneReplyReason(r.Status))
	}
	if !wait {
		return sid, nil
	}

	deadline, stop := c.collectDeadline()
	defer stop()
	for {
		msg, err := w.next(ctx, deadline, klf.CmdActivateSceneReq)
		if err != nil {
			return sid, err
		}
		if f, ok := msg.Record.(klf.SessionFinished); ok && f.SessionID == sid {
			return sid, nil
		}
	}
}

// StopScene halts a running scene.
func (c *Client) StopScene(ctx context.Context, id byte) error {
	r, err := call[klf.SceneReply](ctx, c, klf.CmdStopSceneReq, klf.StopScene{
		SessionID:  c.sess.NextSessionID(),
		Originator: klf.OriginatorUser,
		Priority:   klf.PriorityUserLevel2,
		SceneID:    id,
	})
	if err != nil {
		return err
	}
	if !r.OK() {
		return rejected(klf.CmdStopSceneReq, r.Status, sceneReplyReason(r.Status))
	}
	return nil
}

func sceneReplyReason(status byte) string {
	switch status {
	case klf.SceneReplyInvalidParam:
		return "invalid scene"
	case klf.SceneReplyRejected:
		return "request rejected"
	default:
		return ""
	}
}
