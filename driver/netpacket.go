package driver

import (
	"sort"
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

// Packet is one netpacket message.
type Packet struct {
	Data     []byte
	Flags    uint32
	ClientID uint16
}

// LoopbackNetpacket is an in-process netpacket session. Packets the core
// sends are recorded, and with Echo set they are queued back to the core as
// if the addressed peer had answered. Nothing leaves the process.
type LoopbackNetpacket struct {
	cb    *NetpacketCallbacks
	peers map[uint16]bool
	inbox []Packet
	sent  []Packet
	mu    sync.Mutex
	state NetpacketState
	Echo  bool
}

func NewLoopbackNetpacket() *LoopbackNetpacket {
	return &LoopbackNetpacket{peers: make(map[uint16]bool)}
}

// SetCallbacks installs or removes the core's interface. Removing it stops a
// started session first.
func (n *LoopbackNetpacket) SetCallbacks(cb *NetpacketCallbacks) bool {
	n.mu.Lock()
	old := n.cb
	started := n.state == NetpacketStarted
	n.cb = cb
	if cb == nil {
		n.state = NetpacketDisconnected
		n.peers = make(map[uint16]bool)
		n.inbox = nil
	}
	n.mu.Unlock()
	if cb == nil && started && old != nil && old.Stop != nil {
		old.Stop()
	}
	return true
}

// Connect moves the host side into the connected state.
func (n *LoopbackNetpacket) Connect() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cb == nil || n.state == NetpacketStarted {
		return false
	}
	n.state = NetpacketConnected
	return true
}

// Start begins a session with this host as the local client.
func (n *LoopbackNetpacket) Start() bool {
	n.mu.Lock()
	cb := n.cb
	if cb == nil || n.state != NetpacketConnected {
		n.mu.Unlock()
		return false
	}
	n.state = NetpacketStarted
	n.mu.Unlock()
	if cb.Start != nil {
		cb.Start(abi.NetpacketLocal)
	}
	return true
}

func (n *LoopbackNetpacket) Stop() bool {
	n.mu.Lock()
	cb := n.cb
	if n.state != NetpacketStarted {
		n.mu.Unlock()
		return false
	}
	n.state = NetpacketStopped
	n.mu.Unlock()
	if cb != nil && cb.Stop != nil {
		cb.Stop()
	}
	return true
}

// Disconnect ends the session and forgets every peer.
func (n *LoopbackNetpacket) Disconnect() {
	n.Stop()
	n.mu.Lock()
	n.state = NetpacketDisconnected
	n.peers = make(map[uint16]bool)
	n.inbox = nil
	n.mu.Unlock()
}

// AddPeer announces a peer. The core may refuse it.
func (n *LoopbackNetpacket) AddPeer(id uint16) bool {
	if id == abi.NetpacketLocal || id == abi.NetpacketBroadcast {
		return false
	}
	n.mu.Lock()
	cb := n.cb
	ok := n.state == NetpacketStarted && !n.peers[id]
	n.mu.Unlock()
	if !ok {
		return false
	}
	if cb.Connected != nil && !cb.Connected(id) {
		return false
	}
	n.mu.Lock()
	n.peers[id] = true
	n.mu.Unlock()
	return true
}

func (n *LoopbackNetpacket) RemovePeer(id uint16) {
	n.mu.Lock()
	cb := n.cb
	had := n.peers[id]
	delete(n.peers, id)
	n.mu.Unlock()
	if had && cb != nil && cb.Disconnected != nil {
		cb.Disconnected(id)
	}
}

// Peers returns connected peer ids in ascending order.
func (n *LoopbackNetpacket) Peers() []uint16 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uint16, 0, len(n.peers))
	for id := range n.peers {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Deliver queues a packet from a peer for the core's next PollReceive.
func (n *LoopbackNetpacket) Deliver(data []byte, from uint16) {
	n.mu.Lock()
	n.inbox = append(n.inbox, Packet{Data: append([]byte(nil), data...), ClientID: from})
	n.mu.Unlock()
}

// Send is called by the core. Packets to unknown peers are dropped.
func (n *LoopbackNetpacket) Send(flags uint32, data []byte, clientID uint16) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != NetpacketStarted {
		return
	}
	if clientID != abi.NetpacketBroadcast && !n.peers[clientID] {
		return
	}
	p := Packet{Data: append([]byte(nil), data...), Flags: flags, ClientID: clientID}
	n.sent = append(n.sent, p)
	if !n.Echo {
		return
	}
	if clientID == abi.NetpacketBroadcast {
		for id := range n.peers {
			n.inbox = append(n.inbox, Packet{Data: p.Data, ClientID: id})
		}
		return
	}
	n.inbox = append(n.inbox, Packet{Data: p.Data, ClientID: clientID})
}

// PollReceive delivers queued packets to the core.
func (n *LoopbackNetpacket) PollReceive() {
	n.mu.Lock()
	cb := n.cb
	inbox := n.inbox
	n.inbox = nil
	n.mu.Unlock()
	if cb == nil || cb.Receive == nil {
		return
	}
	for _, p := range inbox {
		cb.Receive(p.Data, p.ClientID)
	}
}

// Poll runs the core's per-frame poll hook while started.
func (n *LoopbackNetpacket) Poll() {
	n.mu.Lock()
	cb := n.cb
	started := n.state == NetpacketStarted
	n.mu.Unlock()
	if started && cb.Poll != nil {
		cb.Poll()
	}
}

func (n *LoopbackNetpacket) State() NetpacketState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Sent returns the packets the core has sent.
func (n *LoopbackNetpacket) Sent() []Packet {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Packet(nil), n.sent...)
}

// ProtocolVersion returns the version string the core registered.
func (n *LoopbackNetpacket) ProtocolVersion() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cb == nil {
		return ""
	}
	return n.cb.ProtocolVersion
}
