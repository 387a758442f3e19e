package runtime

import (
	"testing"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
)

func TestNetpacketSession(t *testing.T) {
	c := newFakeCore()
	np := driver.NewLoopbackNetpacket()
	np.Echo = true
	s := newTestSession(t, c, driver.Registry{Netpacket: np})

	var send, pollReceive uint64
	var started []uint16
	var received []string
	var receivedFrom []uint16
	stopped := 0
	r := newRecord(t, c, c.codec.Shapes().NetpacketCallback)
	r.SetPtr("start", c.fn(func(args []uint64) (uint64, error) {
		started = append(started, uint16(args[0]))
		send, pollReceive = args[1], args[2]
		return 0, nil
	}))
	r.SetPtr("receive", c.fn(func(args []uint64) (uint64, error) {
		data, err := c.arena.Read(args[0], uint32(args[1]))
		if err != nil {
			return 0, err
		}
		received = append(received, string(data))
		receivedFrom = append(receivedFrom, uint16(args[2]))
		return 0, nil
	}))
	r.SetPtr("stop", c.fn(func([]uint64) (uint64, error) {
		stopped++
		return 0, nil
	}))
	r.SetPtr("connected", c.fn(func(args []uint64) (uint64, error) {
		return b2u(args[0] != 7), nil
	}))
	r.SetPtr("protocol_version", c.arena.CString("fake 1"))
	if !s.Dispatch(uint32(abi.SetNetpacketInterface), r.Addr()) {
		t.Fatal("SET_NETPACKET_INTERFACE refused")
	}
	if v := np.ProtocolVersion(); v != "fake 1" {
		t.Errorf("protocol version = %q", v)
	}

	if !np.Connect() || !np.Start() {
		t.Fatal("loopback session did not start")
	}
	if len(started) != 1 || started[0] != abi.NetpacketLocal || send == 0 || pollReceive == 0 {
		t.Fatalf("start called with %v, send %#x, poll %#x", started, send, pollReceive)
	}
	if !np.AddPeer(2) {
		t.Error("core refused peer 2")
	}
	if np.AddPeer(7) {
		t.Error("peer 7 accepted although the core refused it")
	}

	buf := c.arena.Bytes([]byte("ping"), 1)
	c.hostCall(t, send, 0, buf, 4, 2)
	if sent := np.Sent(); len(sent) != 1 || string(sent[0].Data) != "ping" || sent[0].ClientID != 2 {
		t.Fatalf("sent = %+v", sent)
	}
	c.hostCall(t, pollReceive)
	if len(received) != 1 || received[0] != "ping" || receivedFrom[0] != 2 {
		t.Errorf("received %q from %v", received, receivedFrom)
	}

	if !s.Dispatch(uint32(abi.SetNetpacketInterface), 0) {
		t.Fatal("clearing the netpacket interface refused")
	}
	if stopped != 1 {
		t.Errorf("stop called %d times, want 1", stopped)
	}
	if np.State() != driver.NetpacketDisconnected {
		t.Errorf("state = %s after clearing", np.State())
	}
}

func TestNetpacketRequiresStartAndReceive(t *testing.T) {
	c := newFakeCore()
	np := driver.NewLoopbackNetpacket()
	s := newTestSession(t, c, driver.Registry{Netpacket: np})

	r := newRecord(t, c, c.codec.Shapes().NetpacketCallback)
	r.SetPtr("start", c.fn(func([]uint64) (uint64, error) { return 0, nil }))
	if s.Dispatch(uint32(abi.SetNetpacketInterface), r.Addr()) {
		t.Error("interface without a receive callback accepted")
	}
	if np.Connect() {
		t.Error("driver holds callbacks from a rejected interface")
	}
}
