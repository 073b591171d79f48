// Package nodeproc names the boundary between this module and the
// node-under-test. Spawning, configuring, and tearing down the actual
// Zcash-protocol node binary a conformance run drives is out of scope for
// this module: nodeproc only defines the interface a separate driver
// implements, mirroring original_source's setup::node::{Node, Action}
// without reimplementing its subprocess-management half.
package nodeproc

import "net"

// InitialAction is the behavior a Driver is expected to exhibit immediately
// after starting, before any test-specific interaction begins.
type InitialAction int

const (
	// ActionNone means the node should start without connecting to or
	// waiting on any peer.
	ActionNone InitialAction = iota

	// ActionWaitForConnection means the node should be configured to
	// wait for an inbound connection before doing anything else.
	ActionWaitForConnection

	// ActionSeedWithTestnetBlocks means the node should be started with
	// its chain state preloaded with testnet blocks, as served by
	// internal/vectors. The number of blocks is not carried by
	// InitialAction.
	ActionSeedWithTestnetBlocks
)

// Driver is implemented by whatever component is responsible for running
// the node-under-test as a subprocess: starting it, reporting its listening
// address, and stopping it. This module never implements Driver itself.
type Driver interface {
	// ListenAddr returns the address the node-under-test is listening
	// on for peer connections.
	ListenAddr() net.Addr

	// InitialAction reports the behavior this driver configured the
	// node to exhibit on startup.
	InitialAction() InitialAction

	// Stop terminates the node-under-test, releasing any resources the
	// driver holds.
	Stop() error
}
