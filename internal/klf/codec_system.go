package klf

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// ErrorNotification is GW_ERROR_NTF.
type ErrorNotification struct {
	Number ErrorNumber
}

func encodeErrorNtf(e ErrorNotification) ([]byte, error) {
	return []byte{byte(e.Number)}, nil
}

func decodeErrorNtf(b []byte) (ErrorNotification, error) {
	if err := needLen(b, 1); err != nil {
		return ErrorNotification{}, err
	}
	return ErrorNotification{Number: ErrorNumber(b[0])}, nil
}

// Version is GW_GET_VERSION_CFM.
type Version struct {
	Software     [6]byte // command version, whole, sub, branch, build, micro build
	Hardware     byte
	ProductGroup byte // 14 for the gateway
	ProductType  byte // 3 for the gateway
}

// SoftwareString formats the software version as dotted numbers.
func (v Version) SoftwareString() string {
	s := v.Software
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d", s[0], s[1], s[2], s[3], s[4], s[5])
}

func encodeVersion(v Version) ([]byte, error) {
	b := make([]byte, 9)
	copy(b, v.Software[:])
	b[6] = v.Hardware
	b[7] = v.ProductGroup
	b[8] = v.ProductType
	return b, nil
}

func decodeVersion(b []byte) (Version, error) {
	if err := needLen(b, 9); err != nil {
		return Version{}, err
	}
	var v Version
	copy(v.Software[:], b[:6])
	v.Hardware = b[6]
	v.ProductGroup = b[7]
	v.ProductType = b[8]
	return v, nil
}

// ProtocolVersion is GW_GET_PROTOCOL_VERSION_CFM.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

func (p ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

func encodeProtocolVersion(p ProtocolVersion) ([]byte, error) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:2], p.Major)
	binary.BigEndian.PutUint16(b[2:4], p.Minor)
	return b, nil
}

func decodeProtocolVersion(b []byte) (ProtocolVersion, error) {
	if err := needLen(b, 4); err != nil {
		return ProtocolVersion{}, err
	}
	return ProtocolVersion{
		Major: binary.BigEndian.Uint16(b[0:2]),
		Minor: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// State is GW_GET_STATE_CFM.
type State struct {
	State    GatewayState
	SubState SubState
	Data     [4]byte // reserved
}

func encodeState(s State) ([]byte, error) {
	b := make([]byte, 6)
	b[0] = byte(s.State)
	b[1] = byte(s.SubState)
	copy(b[2:], s.Data[:])
	return b, nil
}

func decodeState(b []byte) (State, error) {
	if err := needLen(b, 6); err != nil {
		return State{}, err
	}
	s := State{State: GatewayState(b[0]), SubState: SubState(b[1])}
	copy(s.Data[:], b[2:6])
	return s, nil
}

// NetworkSetup is GW_GET_NETWORK_SETUP_CFM and GW_SET_NETWORK_SETUP_REQ.
type NetworkSetup struct {
	IP      netip.Addr
	Mask    netip.Addr
	Gateway netip.Addr
	DHCP    bool
}

func encodeNetworkSetup(n NetworkSetup) ([]byte, error) {
	b := make([]byte, 13)
	for i, a := range []netip.Addr{n.IP, n.Mask, n.Gateway} {
		if !a.IsValid() {
			continue // all zero
		}
		if !a.Is4() {
			return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrRecordType, a)
		}
		v := a.As4()
		copy(b[i*4:], v[:])
	}
	if n.DHCP {
		b[12] = 1
	}
	return b, nil
}

func decodeNetworkSetup(b []byte) (NetworkSetup, error) {
	if err := needLen(b, 13); err != nil {
		return NetworkSetup{}, err
	}
	return NetworkSetup{
		IP:      netip.AddrFrom4([4]byte(b[0:4])),
		Mask:    netip.AddrFrom4([4]byte(b[4:8])),
		Gateway: netip.AddrFrom4([4]byte(b[8:12])),
		DHCP:    b[12] == 1,
	}, nil
}
