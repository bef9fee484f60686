package gateway

import (
	"context"
	"slices"

	"github.com/muurk/klfgate/internal/klf"
)

// Nodes returns every node in the system table, ordered by node id.
func (c *Client) Nodes(ctx context.Context) ([]klf.NodeInfo, error) {
	w := c.watch(klf.CmdGetAllNodesInformationNtf, klf.CmdGetAllNodesInformationFinishedNtf)
	defer w.close()

	r, err := call[klf.AllNodesReply](ctx, c, klf.CmdGetAllNodesInformationReq, nil)
	if err != nil {
		return nil, err
	}
	if !r.OK() {
		// empty system table, no notifications follow
		return nil, nil
	}

	deadline, stop := c.collectDeadline()
	defer stop()

	nodes := make([]klf.NodeInfo, 0, r.Total)
	for {
		msg, err := w.next(ctx, deadline, klf.CmdGetAllNodesInformationReq)
		if err != nil {
			return nodes, err
		}
		if msg.Command == klf.CmdGetAllNodesInformationFinishedNtf {
			break
		}
		info, err := record[klf.NodeInfo](msg)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, info)
	}
	slices.SortFunc(nodes, func(a, b klf.NodeInfo) int { return int(a.NodeID) - int(b.NodeID) })
	return nodes, nil
}

// Node returns the information of one node.
func (c *Client) Node(ctx context.Context, id byte) (klf.NodeInfo, error) {
	w := c.watch(klf.CmdGetNodeInformationNtf)
	defer w.close()

	r, err := call[klf.NodeReply](ctx, c, klf.CmdGetNodeInformationReq, klf.NodeRef{NodeID: id})
	if err != nil {
		return klf.NodeInfo{}, err
	}
	if !r.OK() {
		return klf.NodeInfo{}, rejected(klf.CmdGetNodeInformationReq, r.Status, nodeReplyReason(r.Status))
	}

	deadline, stop := c.collectDeadline()
	defer stop()
	for {
		msg, err := w.next(ctx, deadline, klf.CmdGetNodeInformationReq)
		if err != nil {
			return klf.NodeInfo{}, err
		}
		info, err := record[klf.NodeInfo](msg)
		if err != nil {
			return klf.NodeInfo{}, err
		}
		if info.NodeID == id {
			return info, nil
		}
	}
}

// Rename sets the name of a node.
func (c *Client) Rename(ctx context.Context, id byte, name string) error {
	r, err := call[klf.NodeReply](ctx, c, klf.CmdSetNodeNameReq, klf.NodeName{NodeID: id, Name: name})
	if err != nil {
		return err
	}
	if !r.OK() {
		return rejected(klf.CmdSetNodeNameReq, r.Status, nodeReplyReason(r.Status))
	}
	return nil
}

// SystemTable returns the actuators known to the gateway.
func (c *Client) SystemTable(ctx context.Context) ([]klf.SystemTableEntry, error) {
	w := c.watch(klf.CmdCSGetSystemTableDataNtf)
	defer w.close()

	if _, err := c.sess.Send(ctx, klf.CmdCSGetSystemTableDataReq, nil); err != nil {
		return nil, err
	}

	deadline, stop := c.collectDeadline()
	defer stop()

	var entries []klf.SystemTableEntry
	for {
		msg, err := w.next(ctx, deadline, klf.CmdCSGetSystemTableDataReq)
		if err != nil {
			return entries, err
		}
		t, err := record[klf.SystemTable](msg)
		if err != nil {
			return entries, err
		}
		entries = append(entries, t.Entries...)
		if t.Remaining == 0 {
			return entries, nil
		}
	}
}

// Discover searches for new actuators of nodeType (0 for all types). The
// search may take minutes; ctx bounds it.
func (c *Client) Discover(ctx context.Context, nodeType klf.ActuatorType) (klf.DiscoverResult, error) {
	w := c.watch(klf.CmdCSDiscoverNodesNtf)
	defer w.close()

	if _, err := c.sess.Send(ctx, klf.CmdCSDiscoverNodesReq, klf.DiscoverNodes{NodeType: nodeType}); err != nil {
		return klf.DiscoverResult{}, err
	}
	msg, err := w.next(ctx, nil, klf.CmdCSDiscoverNodesReq)
	if err != nil {
		return klf.DiscoverResult{}, err
	}
	return record[klf.DiscoverResult](msg)
}

// RemoveNodes deletes actuators from the system table. It reports whether
// scenes were deleted along with them.
func (c *Client) RemoveNodes(ctx context.Context, ids ...int) (bool, error) {
	r, err := call[klf.RemoveNodesReply](ctx, c, klf.CmdCSRemoveNodesReq, klf.RemoveNodes{Nodes: klf.NodeSetOf(ids...)})
	if err != nil {
		return false, err
	}
	return r.SceneDeleted, nil
}

func nodeReplyReason(status byte) string {
	switch status {
	case klf.NodeReplyRejected:
		return "request rejected"
	case klf.NodeReplyInvalidIndex:
		return "invalid node index"
	default:
		return ""
	}
}
