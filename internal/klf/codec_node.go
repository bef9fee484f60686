package klf

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	nodeNameSize  = 64
	nodeInfoSize  = 124
	maxAliases    = 5
	aliasSize     = 4
	functionCount = 4
)

// NodeRef is GW_GET_NODE_INFORMATION_REQ.
type NodeRef struct {
	NodeID byte
}

func encodeNodeRef(r NodeRef) ([]byte, error) {
	return []byte{r.NodeID}, nil
}

func decodeNodeRef(b []byte) (NodeRef, error) {
	if err := needLen(b, 1); err != nil {
		return NodeRef{}, err
	}
	return NodeRef{NodeID: b[0]}, nil
}

// Node reply status values
const (
	NodeReplyOK           byte = 0
	NodeReplyRejected     byte = 1
	NodeReplyInvalidIndex byte = 2
)

// NodeReply is GW_GET_NODE_INFORMATION_CFM and GW_SET_NODE_NAME_CFM.
type NodeReply struct {
	Status byte
	NodeID byte
}

// OK reports whether the gateway accepted the request.
func (r NodeReply) OK() bool { return r.Status == NodeReplyOK }

func encodeNodeReply(r NodeReply) ([]byte, error) {
	return []byte{r.Status, r.NodeID}, nil
}

func decodeNodeReply(b []byte) (NodeReply, error) {
	if err := needLen(b, 2); err != nil {
		return NodeReply{}, err
	}
	return NodeReply{Status: b[0], NodeID: b[1]}, nil
}

// AllNodesReply is GW_GET_ALL_NODES_INFORMATION_CFM. Status 0 means Total
// node notifications follow; 1 means the system table is empty.
type AllNodesReply struct {
	Status byte
	Total  byte
}

// OK reports whether node notifications follow.
func (r AllNodesReply) OK() bool { return r.Status == 0 }

func encodeAllNodesReply(r AllNodesReply) ([]byte, error) {
	return []byte{r.Status, r.Total}, nil
}

func decodeAllNodesReply(b []byte) (AllNodesReply, error) {
	if err := needLen(b, 2); err != nil {
		return AllNodesReply{}, err
	}
	return AllNodesReply{Status: b[0], Total: b[1]}, nil
}

// Alias maps an alias type to a value for a node.
type Alias struct {
	Type  uint16
	Value uint16
}

// NodeInfo is GW_GET_NODE_INFORMATION_NTF and GW_GET_ALL_NODES_INFORMATION_NTF.
type NodeInfo struct {
	NodeID          byte
	Order           uint16
	Placement       byte
	Name            string
	Velocity        Velocity
	Type            ActuatorType
	SubType         byte
	ProductGroup    byte
	ProductType     byte
	NodeVariation   byte
	PowerMode       byte
	BuildNumber     byte
	Serial          [8]byte
	State           NodeState
	CurrentPosition Position
	Target          Position
	Functional      [functionCount]Position
	RemainingTime   uint16 // seconds
	Timestamp       time.Time
	Aliases         []Alias
}

func encodeNodeInfo(n NodeInfo) ([]byte, error) {
	if len(n.Aliases) > maxAliases {
		return nil, fmt.Errorf("%w: %d aliases, at most %d", ErrFieldTooLong, len(n.Aliases), maxAliases)
	}
	b := make([]byte, nodeInfoSize)
	b[0] = n.NodeID
	binary.BigEndian.PutUint16(b[1:3], n.Order)
	b[3] = n.Placement
	if err := putString(b[4:4+nodeNameSize], n.Name); err != nil {
		return nil, err
	}
	b[68] = byte(n.Velocity)
	binary.BigEndian.PutUint16(b[69:71], uint16(n.Type)<<6|uint16(n.SubType&0x3F))
	b[71] = n.ProductGroup
	b[72] = n.ProductType
	b[73] = n.NodeVariation
	b[74] = n.PowerMode
	b[75] = n.BuildNumber
	copy(b[76:84], n.Serial[:])
	b[84] = byte(n.State)
	binary.BigEndian.PutUint16(b[85:87], uint16(n.CurrentPosition))
	binary.BigEndian.PutUint16(b[87:89], uint16(n.Target))
	for i, fp := range n.Functional {
		binary.BigEndian.PutUint16(b[89+2*i:], uint16(fp))
	}
	binary.BigEndian.PutUint16(b[97:99], n.RemainingTime)
	putUnix(b[99:103], n.Timestamp)
	b[103] = byte(len(n.Aliases))
	for i, a := range n.Aliases {
		p := b[104+i*aliasSize:]
		binary.BigEndian.PutUint16(p[0:2], a.Type)
		binary.BigEndian.PutUint16(p[2:4], a.Value)
	}
	return b, nil
}

func decodeNodeInfo(b []byte) (NodeInfo, error) {
	if err := needLen(b, nodeInfoSize); err != nil {
		return NodeInfo{}, err
	}
	ts := binary.BigEndian.Uint16(b[69:71])
	n := NodeInfo{
		NodeID:          b[0],
		Order:           binary.BigEndian.Uint16(b[1:3]),
		Placement:       b[3],
		Name:            readString(b[4 : 4+nodeNameSize]),
		Velocity:        Velocity(b[68]),
		Type:            ActuatorType(ts >> 6),
		SubType:         byte(ts & 0x3F),
		ProductGroup:    b[71],
		ProductType:     b[72],
		NodeVariation:   b[73],
		PowerMode:       b[74],
		BuildNumber:     b[75],
		State:           NodeState(b[84]),
		CurrentPosition: Position(binary.BigEndian.Uint16(b[85:87])),
		Target:          Position(binary.BigEndian.Uint16(b[87:89])),
		RemainingTime:   binary.BigEndian.Uint16(b[97:99]),
		Timestamp:       readUnix(b[99:103]),
	}
	copy(n.Serial[:], b[76:84])
	for i := range n.Functional {
		n.Functional[i] = Position(binary.BigEndian.Uint16(b[89+2*i:]))
	}
	count := min(int(b[103]), maxAliases)
	for i := 0; i < count; i++ {
		p := b[104+i*aliasSize:]
		n.Aliases = append(n.Aliases, Alias{
			Type:  binary.BigEndian.Uint16(p[0:2]),
			Value: binary.BigEndian.Uint16(p[2:4]),
		})
	}
	return n, nil
}

// NodeName is GW_SET_NODE_NAME_REQ.
type NodeName struct {
	NodeID byte
	Name   string
}

func encodeNodeName(n NodeName) ([]byte, error) {
	b := make([]byte, 1+nodeNameSize)
	b[0] = n.NodeID
	if err := putString(b[1:], n.Name); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeNodeName(b []byte) (NodeName, error) {
	if err := needLen(b, 1+nodeNameSize); err != nil {
		return NodeName{}, err
	}
	return NodeName{NodeID: b[0], Name: readString(b[1 : 1+nodeNameSize])}, nil
}

// PositionChanged is GW_NODE_STATE_POSITION_CHANGED_NTF.
type PositionChanged struct {
	NodeID          byte
	State           NodeState
	CurrentPosition Position
	Target          Position
	Functional      [functionCount]Position
	RemainingTime   uint16 // seconds
	Timestamp       time.Time
}

func encodePositionChanged(p PositionChanged) ([]byte, error) {
	b := make([]byte, 20)
	b[0] = p.NodeID
	b[1] = byte(p.State)
	binary.BigEndian.PutUint16(b[2:4], uint16(p.CurrentPosition))
	binary.BigEndian.PutUint16(b[4:6], uint16(p.Target))
	for i, fp := range p.Functional {
		binary.BigEndian.PutUint16(b[6+2*i:], uint16(fp))
	}
	binary.BigEndian.PutUint16(b[14:16], p.RemainingTime)
	putUnix(b[16:20], p.Timestamp)
	return b, nil
}

func decodePositionChanged(b []byte) (PositionChanged, error) {
	if err := needLen(b, 20); err != nil {
		return PositionChanged{}, err
	}
	p := PositionChanged{
		NodeID:          b[0],
		State:           NodeState(b[1]),
		CurrentPosition: Position(binary.BigEndian.Uint16(b[2:4])),
		Target:          Position(binary.BigEndian.Uint16(b[4:6])),
		RemainingTime:   binary.BigEndian.Uint16(b[14:16]),
		Timestamp:       readUnix(b[16:20]),
	}
	for i := range p.Functional {
		p.Functional[i] = Position(binary.BigEndian.Uint16(b[6+2*i:]))
	}
	return p, nil
}
