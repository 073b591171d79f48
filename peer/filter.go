package peer

import "github.com/excc-labs/zconform/wire"

// FilterAction describes how a SyntheticPeer responds to an inbound message
// of a given kind.
type FilterAction int

const (
	// FilterDisabled delivers the message to the peer's inbound channel
	// unmodified.
	FilterDisabled FilterAction = iota

	// FilterEnabled silently drops the message.
	FilterEnabled

	// FilterAutoReply drops the message and sends back the default
	// protocol response on the peer's behalf.
	FilterAutoReply
)

// MessageFilter decides, per message command, whether a SyntheticPeer
// delivers, drops, or auto-replies to an inbound message. The zero value
// filters nothing.
type MessageFilter struct {
	ping       FilterAction
	getHeaders FilterAction
	getAddr    FilterAction
	getData    FilterAction
}

// NewMessageFilter returns a MessageFilter with every supported message kind
// set to FilterDisabled.
func NewMessageFilter() *MessageFilter {
	return &MessageFilter{}
}

// WithAllDisabled returns a MessageFilter with every supported message kind
// set to FilterDisabled. It is equivalent to NewMessageFilter and exists for
// symmetry with WithAllEnabled and WithAllAutoReply.
func WithAllDisabled() *MessageFilter {
	return &MessageFilter{}
}

// WithAllEnabled returns a MessageFilter with every supported message kind
// set to FilterEnabled.
func WithAllEnabled() *MessageFilter {
	return &MessageFilter{
		ping:       FilterEnabled,
		getHeaders: FilterEnabled,
		getAddr:    FilterEnabled,
		getData:    FilterEnabled,
	}
}

// WithAllAutoReply returns a MessageFilter with every supported message kind
// set to FilterAutoReply.
func WithAllAutoReply() *MessageFilter {
	return &MessageFilter{
		ping:       FilterAutoReply,
		getHeaders: FilterAutoReply,
		getAddr:    FilterAutoReply,
		getData:    FilterAutoReply,
	}
}

// WithPingFilter sets the filter action applied to inbound MsgPing.
func (f *MessageFilter) WithPingFilter(action FilterAction) *MessageFilter {
	f.ping = action
	return f
}

// WithGetHeadersFilter sets the filter action applied to inbound MsgGetHeaders.
func (f *MessageFilter) WithGetHeadersFilter(action FilterAction) *MessageFilter {
	f.getHeaders = action
	return f
}

// WithGetAddrFilter sets the filter action applied to inbound MsgGetAddr.
func (f *MessageFilter) WithGetAddrFilter(action FilterAction) *MessageFilter {
	f.getAddr = action
	return f
}

// WithGetDataFilter sets the filter action applied to inbound MsgGetData.
func (f *MessageFilter) WithGetDataFilter(action FilterAction) *MessageFilter {
	f.getData = action
	return f
}

// actionFor returns the configured FilterAction for the command carried by
// msg. Message kinds the filter does not recognize are always FilterDisabled.
func (f *MessageFilter) actionFor(msg wire.Message) FilterAction {
	switch msg.(type) {
	case *wire.MsgPing:
		return f.ping
	case *wire.MsgGetHeaders:
		return f.getHeaders
	case *wire.MsgGetAddr:
		return f.getAddr
	case *wire.MsgGetData:
		return f.getData
	default:
		return FilterDisabled
	}
}

// autoReply builds the default protocol response for a message that was
// matched by FilterAutoReply. It panics if called with a message kind the
// filter does not know how to answer; callers must only invoke it after
// actionFor has returned FilterAutoReply.
func autoReply(msg wire.Message) wire.Message {
	switch m := msg.(type) {
	case *wire.MsgPing:
		return wire.NewMsgPong(m.Nonce)
	case *wire.MsgGetAddr:
		return wire.NewMsgAddr()
	case *wire.MsgGetHeaders:
		return wire.NewMsgHeaders()
	case *wire.MsgGetData:
		notFound := wire.NewMsgNotFound()
		notFound.InvList = append(notFound.InvList[:0], m.InvList...)
		return notFound
	default:
		panic("peer: autoReply called with a message kind that has no default response")
	}
}
