package runtime

import (
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

var (
	sigNetStart        = engine.Sig("v_Spp")
	sigNetReceive      = engine.Sig("v_pzS")
	sigNetConnected    = engine.Sig("b_S")
	sigNetDisconnected = engine.Sig("v_S")
)

// envSetNetpacketInterface installs the core's netpacket callbacks with the
// netpacket driver. NULL removes them.
func (s *Session) envSetNetpacketInterface(data uint64) (bool, error) {
	if s.reg.Netpacket == nil {
		return false, nil
	}
	if data == 0 {
		return s.reg.Netpacket.SetCallbacks(nil), nil
	}
	r := s.codec.Record(s.shapes.NetpacketCallback, data)
	start, receive, stop := r.Ptr("start"), r.Ptr("receive"), r.Ptr("stop")
	poll, connected, disconnected := r.Ptr("poll"), r.Ptr("connected"), r.Ptr("disconnected")
	version, _ := r.OptString("protocol_version")
	if err := r.Err(); err != nil {
		return false, err
	}
	if start == 0 || receive == 0 {
		return false, rterrors.NilPointer(rterrors.PhaseDispatch, []string{"retro_netpacket_callback", "start"})
	}
	send, err := s.core.HostFunction(engine.HostNetpacketSend)
	if err != nil {
		return false, err
	}
	pollReceive, err := s.core.HostFunction(engine.HostNetpacketPollReceive)
	if err != nil {
		return false, err
	}

	call := func(name string, ptr uint64, sig engine.Signature, args ...uint64) (uint64, bool) {
		if s.closed || ptr == 0 {
			return 0, false
		}
		v, err := s.callCore(name, ptr, sig, args...)
		return v, err == nil
	}
	cb := &driver.NetpacketCallbacks{
		ProtocolVersion: version,
		Start: func(clientID uint16) {
			call("netpacket_start", start, sigNetStart, uint64(clientID), send, pollReceive)
		},
		Receive: func(data []byte, clientID uint16) {
			s.netpacketReceive(receive, data, clientID)
		},
		Stop: func() { call("netpacket_stop", stop, sigVoid) },
		Poll: func() { call("netpacket_poll", poll, sigVoid) },
		Connected: func(clientID uint16) bool {
			if connected == 0 {
				return true
			}
			v, ok := call("netpacket_connected", connected, sigNetConnected, uint64(clientID))
			return ok && v != 0
		},
		Disconnected: func(clientID uint16) {
			call("netpacket_disconnected", disconnected, sigNetDisconnected, uint64(clientID))
		},
	}
	return s.reg.Netpacket.SetCallbacks(cb), nil
}

// netpacketReceive copies a packet into core memory for the duration of
// the receive callback.
func (s *Session) netpacketReceive(fn uint64, data []byte, clientID uint16) {
	if s.closed || len(data) == 0 || len(data) > maxFrameBytes {
		return
	}
	size := uint32(len(data))
	buf, err := s.alloc.Alloc(size, 1)
	if err != nil {
		return
	}
	defer s.alloc.Free(buf, size, 1)
	if err := s.mem.Write(buf, data); err != nil {
		return
	}
	_, _ = s.callCore("netpacket_receive", fn, sigNetReceive, buf, uint64(size), uint64(clientID))
}
