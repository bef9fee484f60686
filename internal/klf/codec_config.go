package klf

import "fmt"

const systemTableEntrySize = 11

// SystemTableEntry describes one node in the gateway's system table.
type SystemTableEntry struct {
	Index        byte
	Address      [3]byte // io-homecontrol actuator address
	Type         ActuatorType
	SubType      byte
	PowerSave    PowerSaveMode
	IOMembership bool
	RFSupport    bool
	Turnaround   byte // 0: 5 ms, 1: 10 ms, 2: 20 ms, 3: 40 ms
	Manufacturer Manufacturer
	Backbone     [3]byte
}

// SystemTable is GW_CS_GET_SYSTEMTABLE_DATA_NTF. Remaining counts entries
// still to come in further notifications.
type SystemTable struct {
	Entries   []SystemTableEntry
	Remaining byte
}

func encodeSystemTable(t SystemTable) ([]byte, error) {
	if len(t.Entries) > 255 {
		return nil, fmt.Errorf("%w: %d system table entries", ErrFieldTooLong, len(t.Entries))
	}
	b := make([]byte, 2+len(t.Entries)*systemTableEntrySize)
	b[0] = byte(len(t.Entries))
	for i, e := range t.Entries {
		p := b[1+i*systemTableEntrySize:]
		p[0] = e.Index
		copy(p[1:4], e.Address[:])
		at := uint16(e.Type)<<6 | uint16(e.SubType&0x3F)
		p[4] = byte(at >> 8)
		p[5] = byte(at)
		mode := byte(e.PowerSave) & 0x03
		if e.IOMembership {
			mode |= 1 << 2
		}
		if e.RFSupport {
			mode |= 1 << 3
		}
		mode |= (e.Turnaround & 0x03) << 6
		p[6] = mode
		p[7] = byte(e.Manufacturer)
		copy(p[8:11], e.Backbone[:])
	}
	b[len(b)-1] = t.Remaining
	return b, nil
}

func decodeSystemTable(b []byte) (SystemTable, error) {
	if err := needLen(b, 2); err != nil {
		return SystemTable{}, err
	}
	n := int(b[0])
	if err := needLen(b, 2+n*systemTableEntrySize); err != nil {
		return SystemTable{}, err
	}
	t := SystemTable{Entries: make([]SystemTableEntry, n)}
	for i := range t.Entries {
		p := b[1+i*systemTableEntrySize:]
		at := uint16(p[4])<<8 | uint16(p[5])
		e := SystemTableEntry{
			Index:        p[0],
			Type:         ActuatorType(at >> 6),
			SubType:      byte(at & 0x3F),
			PowerSave:    PowerSaveMode(p[6] & 0x03),
			IOMembership: p[6]&(1<<2) != 0,
			RFSupport:    p[6]&(1<<3) != 0,
			Turnaround:   p[6] >> 6,
			Manufacturer: Manufacturer(p[7]),
		}
		copy(e.Address[:], p[1:4])
		copy(e.Backbone[:], p[8:11])
		t.Entries[i] = e
	}
	t.Remaining = b[1+n*systemTableEntrySize]
	return t, nil
}

// DiscoverNodes is GW_CS_DISCOVER_NODES_REQ. NodeType 0 discovers all types.
type DiscoverNodes struct {
	NodeType ActuatorType
}

func encodeDiscoverNodes(d DiscoverNodes) ([]byte, error) {
	return []byte{byte(d.NodeType)}, nil
}

func decodeDiscoverNodes(b []byte) (DiscoverNodes, error) {
	if err := needLen(b, 1); err != nil {
		return DiscoverNodes{}, err
	}
	return DiscoverNodes{NodeType: ActuatorType(b[0])}, nil
}

// DiscoverResult is GW_CS_DISCOVER_NODES_NTF.
type DiscoverResult struct {
	Added             NodeSet
	RFConnectionError NodeSet
	IOKeyError        NodeSet
	Removed           NodeSet
	Open              NodeSet
	Status            DiscoverStatus
}

func encodeDiscoverResult(d DiscoverResult) ([]byte, error) {
	b := make([]byte, 5*NodeSetSize+1)
	for i, s := range []NodeSet{d.Added, d.RFConnectionError, d.IOKeyError, d.Removed, d.Open} {
		s.put(b[i*NodeSetSize:])
	}
	b[5*NodeSetSize] = byte(d.Status)
	return b, nil
}

func decodeDiscoverResult(b []byte) (DiscoverResult, error) {
	if err := needLen(b, 5*NodeSetSize+1); err != nil {
		return DiscoverResult{}, err
	}
	return DiscoverResult{
		Added:             readNodeSet(b[0*NodeSetSize:]),
		RFConnectionError: readNodeSet(b[1*NodeSetSize:]),
		IOKeyError:        readNodeSet(b[2*NodeSetSize:]),
		Removed:           readNodeSet(b[3*NodeSetSize:]),
		Open:              readNodeSet(b[4*NodeSetSize:]),
		Status:            DiscoverStatus(b[5*NodeSetSize]),
	}, nil
}

// RemoveNodes is GW_CS_REMOVE_NODES_REQ.
type RemoveNodes struct {
	Nodes NodeSet
}

func encodeRemoveNodes(r RemoveNodes) ([]byte, error) {
	b := make([]byte, NodeSetSize)
	r.Nodes.put(b)
	return b, nil
}

func decodeRemoveNodes(b []byte) (RemoveNodes, error) {
	if err := needLen(b, NodeSetSize); err != nil {
		return RemoveNodes{}, err
	}
	return RemoveNodes{Nodes: readNodeSet(b)}, nil
}

// RemoveNodesReply is GW_CS_REMOVE_NODES_CFM.
type RemoveNodesReply struct {
	SceneDeleted bool
}

func encodeRemoveNodesReply(r RemoveNodesReply) ([]byte, error) {
	if r.SceneDeleted {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func decodeRemoveNodesReply(b []byte) (RemoveNodesReply, error) {
	if err := needLen(b, 1); err != nil {
		return RemoveNodesReply{}, err
	}
	return RemoveNodesReply{SceneDeleted: b[0] == 1}, nil
}
