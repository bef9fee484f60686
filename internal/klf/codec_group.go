package klf

import "encoding/binary"

const (
	groupNameSize     = 64
	groupInfoSize     = 99
	groupActuatorSize = 25
)

// Group types
const (
	GroupTypeUser  byte = 0
	GroupTypeRoom  byte = 1
	GroupTypeHouse byte = 2
	GroupTypeAll   byte = 3
)

// GroupRef is GW_GET_GROUP_INFORMATION_REQ and GW_GROUP_DELETED_NTF.
type GroupRef struct {
	GroupID byte
}

func encodeGroupRef(r GroupRef) ([]byte, error) {
	return []byte{r.GroupID}, nil
}

func decodeGroupRef(b []byte) (GroupRef, error) {
	if err := needLen(b, 1); err != nil {
		return GroupRef{}, err
	}
	return GroupRef{GroupID: b[0]}, nil
}

// Group reply status values
const (
	GroupReplyOK           byte = 0
	GroupReplyRejected     byte = 1
	GroupReplyInvalidIndex byte = 2
)

// GroupReply is GW_GET_GROUP_INFORMATION_CFM.
type GroupReply struct {
	Status  byte
	GroupID byte
}

// OK reports whether the gateway accepted the request.
func (r GroupReply) OK() bool { return r.Status == GroupReplyOK }

func encodeGroupReply(r GroupReply) ([]byte, error) {
	return []byte{r.Status, r.GroupID}, nil
}

func decodeGroupReply(b []byte) (GroupReply, error) {
	if err := needLen(b, 2); err != nil {
		return GroupReply{}, err
	}
	return GroupReply{Status: b[0], GroupID: b[1]}, nil
}

// GroupInfo is GW_GET_GROUP_INFORMATION_NTF and
// GW_GET_ALL_GROUPS_INFORMATION_NTF. Only actuators can be members; the
// object count on the wire is derived from Members.
type GroupInfo struct {
	GroupID       byte
	Order         uint16
	Placement     byte
	Name          string
	Velocity      Velocity
	NodeVariation byte
	Type          byte
	Members       NodeSet
	Revision      uint16
}

func putGroupInfo(b []byte, g GroupInfo) error {
	b[0] = g.GroupID
	binary.BigEndian.PutUint16(b[1:3], g.Order)
	b[3] = g.Placement
	if err := putString(b[4:4+groupNameSize], g.Name); err != nil {
		return err
	}
	p := b[4+groupNameSize:]
	p[0] = byte(g.Velocity)
	p[1] = g.NodeVariation
	p[2] = g.Type
	p[3] = byte(len(g.Members.Nodes()))

	var bits [NodeSetSize]byte
	members := g.Members
	members.Beacons = [MaxBeacons]bool{}
	members.put(bits[:])
	copy(p[4:4+groupActuatorSize], bits[:groupActuatorSize])
	binary.BigEndian.PutUint16(p[4+groupActuatorSize:], g.Revision)
	return nil
}

func readGroupInfo(b []byte) GroupInfo {
	p := b[4+groupNameSize:]
	var bits [NodeSetSize]byte
	copy(bits[:], p[4:4+groupActuatorSize])
	return GroupInfo{
		GroupID:       b[0],
		Order:         binary.BigEndian.Uint16(b[1:3]),
		Placement:     b[3],
		Name:          readString(b[4 : 4+groupNameSize]),
		Velocity:      Velocity(p[0]),
		NodeVariation: p[1],
		Type:          p[2],
		Members:       readNodeSet(bits[:]),
		Revision:      binary.BigEndian.Uint16(p[4+groupActuatorSize:]),
	}
}

func encodeGroupInfo(g GroupInfo) ([]byte, error) {
	b := make([]byte, groupInfoSize)
	if err := putGroupInfo(b, g); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeGroupInfo(b []byte) (GroupInfo, error) {
	if err := needLen(b, groupInfoSize); err != nil {
		return GroupInfo{}, err
	}
	return readGroupInfo(b), nil
}

// GroupChanged is GW_GROUP_INFORMATION_CHANGED_NTF. A deleted group carries
// only its GroupID.
type GroupChanged struct {
	Deleted bool
	Group   GroupInfo
}

func encodeGroupChanged(c GroupChanged) ([]byte, error) {
	if c.Deleted {
		return []byte{0, c.Group.GroupID}, nil
	}
	b := make([]byte, 1+groupInfoSize)
	b[0] = 1
	if err := putGroupInfo(b[1:], c.Group); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeGroupChanged(b []byte) (GroupChanged, error) {
	if err := needLen(b, 2); err != nil {
		return GroupChanged{}, err
	}
	if b[0] == 0 {
		return GroupChanged{Deleted: true, Group: GroupInfo{GroupID: b[1]}}, nil
	}
	if err := needLen(b, 1+groupInfoSize); err != nil {
		return GroupChanged{}, err
	}
	return GroupChanged{Group: readGroupInfo(b[1:])}, nil
}

// AllGroupsRequest is GW_GET_ALL_GROUPS_INFORMATION_REQ. With UseFilter set
// only groups of Type are reported.
type AllGroupsRequest struct {
	UseFilter bool
	Type      byte
}

func encodeAllGroupsRequest(r AllGroupsRequest) ([]byte, error) {
	b := []byte{0, r.Type}
	if r.UseFilter {
		b[0] = 1
	}
	return b, nil
}

func decodeAllGroupsRequest(b []byte) (AllGroupsRequest, error) {
	if err := needLen(b, 2); err != nil {
		return AllGroupsRequest{}, err
	}
	return AllGroupsRequest{UseFilter: b[0] != 0, Type: b[1]}, nil
}

// AllGroupsReply is GW_GET_ALL_GROUPS_INFORMATION_CFM. Status 0 means Total
// GW_GET_ALL_GROUPS_INFORMATION_NTF frames follow.
type AllGroupsReply struct {
	Status byte
	Total  byte
}

// OK reports whether group notifications follow.
func (r AllGroupsReply) OK() bool { return r.Status == 0 }

func encodeAllGroupsReply(r AllGroupsReply) ([]byte, error) {
	return []byte{r.Status, r.Total}, nil
}

func decodeAllGroupsReply(b []byte) (AllGroupsReply, error) {
	if err := needLen(b, 2); err != nil {
		return AllGroupsReply{}, err
	}
	return AllGroupsReply{Status: b[0], Total: b[1]}, nil
}
