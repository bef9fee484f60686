// Package gateway implements high level KLF operations on top of a session.
//
// Each method sends one request and interprets its confirmation. Operations
// answered by a series of notifications (node lists, scene lists, the system
// table, discovery) subscribe before sending and collect until the gateway
// signals the end.
//
// Usage:
//
//	sess := session.New()
//	if err := sess.Connect(ctx, "192.168.1.50"); err != nil {
//	    return err
//	}
//	defer sess.End(ctx)
//	if err := sess.Login(ctx, password); err != nil {
//	    return err
//	}
//
//	gw := gateway.New(sess)
//	nodes, err := gw.Nodes(ctx)
//	_, err = gw.SetPosition(ctx, nodes[0].NodeID, 50, true)
package gateway
