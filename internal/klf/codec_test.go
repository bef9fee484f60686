package klf

import (
	"bytes"
	"errors"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"
)

// Each case builds a frame through the registry and parses it back, so the
// encoder, envelope and decoder agree on every built-in layout.
func TestCodecs_Envelope(t *testing.T) {
	reg := DefaultRegistry()
	ts := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		name    string
		cmd     Command
		rec     Record
		payload int
	}{
		{"error ntf", CmdErrorNtf, ErrorNotification{Number: 12}, 1},
		{"version", CmdGetVersionCfm, Version{Software: [6]byte{0, 2, 0, 0, 71, 0}, Hardware: 6, ProductGroup: 14, ProductType: 3}, 9},
		{"protocol version", CmdGetProtocolVersionCfm, ProtocolVersion{Major: 3, Minor: 14}, 4},
		{"state", CmdGetStateCfm, State{State: 2, SubState: 0x80}, 6},
		{"leave learn state", CmdLeaveLearnStateCfm, StatusReply{OK: true}, 1},
		{"network setup", CmdGetNetworkSetupCfm, NetworkSetup{
			IP:      netip.MustParseAddr("192.168.1.50"),
			Mask:    netip.MustParseAddr("255.255.255.0"),
			Gateway: netip.MustParseAddr("192.168.1.1"),
			DHCP:    true,
		}, 13},
		{"system table", CmdCSGetSystemTableDataNtf, SystemTable{
			Entries: []SystemTableEntry{{
				Index: 4, Address: [3]byte{0x12, 0x34, 0x56}, Type: 4, SubType: 1,
				PowerSave: 1, IOMembership: true, RFSupport: true, Turnaround: 2,
				Manufacturer: 1, Backbone: [3]byte{1, 2, 3},
			}},
			Remaining: 3,
		}, 13},
		{"discover nodes", CmdCSDiscoverNodesReq, DiscoverNodes{NodeType: 2}, 1},
		{"discover result", CmdCSDiscoverNodesNtf, DiscoverResult{
			Added:   NodeSetOf(0, 9, 199),
			Removed: NodeSetOf(3),
			Status:  6,
		}, 131},
		{"remove nodes", CmdCSRemoveNodesReq, RemoveNodes{Nodes: NodeSetOf(1, 2)}, 26},
		{"remove nodes reply", CmdCSRemoveNodesCfm, RemoveNodesReply{SceneDeleted: true}, 1},
		{"node ref", CmdGetNodeInformationReq, NodeRef{NodeID: 7}, 1},
		{"node reply", CmdGetNodeInformationCfm, NodeReply{Status: NodeReplyInvalidIndex, NodeID: 7}, 2},
		{"all nodes reply", CmdGetAllNodesInformationCfm, AllNodesReply{Status: 0, Total: 5}, 2},
		{"node info", CmdGetAllNodesInformationNtf, NodeInfo{
			NodeID: 3, Order: 2, Placement: 1, Name: "Bedroom window", Velocity: 1,
			Type: 4, SubType: 1, ProductGroup: 14, ProductType: 3, PowerMode: 1,
			Serial: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, State: 5,
			CurrentPosition: 0xC800, Target: 0xC800,
			Functional:    [4]Position{PositionUnknown, PositionUnknown, PositionUnknown, PositionUnknown},
			RemainingTime: 12, Timestamp: ts,
			Aliases: []Alias{{Type: 0xD803, Value: 0xBA00}},
		}, 124},
		{"node name", CmdSetNodeNameReq, NodeName{NodeID: 3, Name: "Kitchen"}, 65},
		{"position changed", CmdNodeStatePositionChangedNtf, PositionChanged{
			NodeID: 3, State: 4, CurrentPosition: 0x6400, Target: 0xC800,
			Functional:    [4]Position{1, 2, 3, 4},
			RemainingTime: 30, Timestamp: ts,
		}, 20},
		{"group ref", CmdGetGroupInformationReq, GroupRef{GroupID: 4}, 1},
		{"group reply", CmdGetGroupInformationCfm, GroupReply{Status: GroupReplyInvalidIndex, GroupID: 4}, 2},
		{"group info", CmdGetAllGroupsInformationNtf, GroupInfo{
			GroupID: 4, Order: 1, Placement: 2, Name: "Upstairs", Velocity: 2,
			NodeVariation: 1, Type: GroupTypeRoom, Members: NodeSetOf(0, 3, 199), Revision: 7,
		}, 99},
		{"group changed", CmdGroupInformationChangedNtf, GroupChanged{Group: GroupInfo{
			GroupID: 5, Name: "Roof", Type: GroupTypeUser, Members: NodeSetOf(8),
		}}, 100},
		{"group deleted change", CmdGroupInformationChangedNtf, GroupChanged{Deleted: true, Group: GroupInfo{GroupID: 5}}, 2},
		{"all groups request", CmdGetAllGroupsInformationReq, AllGroupsRequest{UseFilter: true, Type: GroupTypeHouse}, 2},
		{"all groups reply", CmdGetAllGroupsInformationCfm, AllGroupsReply{Status: 0, Total: 3}, 2},
		{"group deleted", CmdGroupDeletedNtf, GroupRef{GroupID: 9}, 1},
		{"command send", CmdCommandSendReq, NewCommandSend(0x1234, 0x6400, 3, 5), 66},
		{"command send reply", CmdCommandSendCfm, CommandSendReply{SessionID: 0x1234, Accepted: true}, 3},
		{"run status", CmdCommandRunStatusNtf, RunStatusNotification{
			SessionID: 0x1234, StatusID: 1, NodeID: 3, ParameterValue: 0x6400,
			RunStatus: 2, StatusReply: 1, InformationCode: 0xDEADBEEF,
		}, 13},
		{"remaining time", CmdCommandRemainingTimeNtf, RemainingTime{SessionID: 9, NodeID: 3, Seconds: 42}, 6},
		{"session finished", CmdSessionFinishedNtf, SessionFinished{SessionID: 0xBEEF}, 2},
		{"status request", CmdStatusRequestReq, StatusRequest{
			SessionID: 0x0102, Nodes: []byte{3, 4}, StatusType: StatusTypeCurrent,
			FunctionalIndexes: [2]byte{0x80, 0},
		}, 26},
		{"status request reply", CmdStatusRequestCfm, CommandSendReply{SessionID: 0x0102, Accepted: true}, 3},
		{"status parameters", CmdStatusRequestNtf, StatusNotification{
			SessionID: 0x0102, StatusID: 1, NodeID: 3, RunStatus: 0, StatusReply: 1,
			StatusType: StatusTypeCurrent,
			Parameters: []StatusParameter{{Parameter: 0, Value: 0xC800}, {Parameter: 1, Value: PositionUnknown}},
		}, 59},
		{"status main info", CmdStatusRequestNtf, StatusNotification{
			SessionID: 0x0102, StatusID: 1, NodeID: 4, RunStatus: 2, StatusReply: 1,
			StatusType: StatusTypeMainInfo,
			Main: &MainInfo{
				Target: 0, CurrentPosition: 0x6400, RemainingTime: 15,
				LastMaster: 0x00AABBCC, LastOriginator: OriginatorUser,
			},
		}, 18},
		{"scene count", CmdGetSceneListCfm, SceneCount{Total: 2}, 1},
		{"scene list", CmdGetSceneListNtf, SceneList{
			Scenes:    []Scene{{ID: 0, Name: "Morning"}, {ID: 1, Name: "Night"}},
			Remaining: 0,
		}, 132},
		{"activate scene", CmdActivateSceneReq, ActivateScene{SessionID: 7, Originator: 1, Priority: 3, SceneID: 1, Velocity: 2}, 6},
		{"activate scene reply", CmdActivateSceneCfm, SceneReply{Status: SceneReplyOK, SessionID: 7}, 3},
		{"stop scene", CmdStopSceneReq, StopScene{SessionID: 8, Originator: 1, Priority: 3, SceneID: 1}, 5},
		{"set utc", CmdSetUTCReq, SetUTC{Time: ts}, 4},
		{"time zone", CmdRTCSetTimeZoneReq, TimeZone{Zone: ":GMT+1:GMT+2:0060:(1994)040102-0:110102-0"}, 64},
		{"time zone reply", CmdRTCSetTimeZoneCfm, StatusReply{OK: false}, 1},
		{"local time", CmdGetLocalTimeCfm, LocalTime{
			UTC: ts, Second: 20, Minute: 13, Hour: 23, Day: 14, Month: 10, Year: 123,
			Weekday: 2, YearDay: 317, Daylight: -1,
		}, 15},
		{"password enter", CmdPasswordEnterReq, PasswordEnter{Password: "velux123"}, 32},
		{"password enter reply", CmdPasswordEnterCfm, StatusReply{OK: true}, 1},
		{"password change", CmdPasswordChangeReq, PasswordChange{Current: "velux123", New: "s3cret"}, 64},
		{"password changed", CmdPasswordChangeNtf, PasswordChanged{Password: "s3cret"}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildFrame(reg, tt.cmd, tt.rec)
			if err != nil {
				t.Fatalf("BuildFrame() error = %v", err)
			}
			if got := len(frame) - FrameOverhead; got != tt.payload {
				t.Errorf("payload length = %d, want %d", got, tt.payload)
			}
			m, err := ParseFrame(reg, frame)
			if err != nil {
				t.Fatalf("ParseFrame() error = %v", err)
			}
			if !reflect.DeepEqual(m.Record, tt.rec) {
				t.Errorf("record = %+v\nwant     %+v", m.Record, tt.rec)
			}
		})
	}
}

func TestStatusCodec_SuccessValues(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		cmd     Command
		payload byte
		wantOK  bool
	}{
		{CmdPasswordEnterCfm, 0, true},
		{CmdPasswordEnterCfm, 1, false},
		{CmdPasswordChangeCfm, 0, true},
		{CmdRTCSetTimeZoneCfm, 1, true},
		{CmdRTCSetTimeZoneCfm, 0, false},
		{CmdLeaveLearnStateCfm, 1, true},
	}
	for _, tt := range tests {
		m, err := ParseFrame(reg, mustRaw(t, tt.cmd, []byte{tt.payload}))
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if got := m.Record.(StatusReply).OK; got != tt.wantOK {
			t.Errorf("%s status %d: OK = %v, want %v", tt.cmd, tt.payload, got, tt.wantOK)
		}
	}
}

func TestTyped_AcceptsPointer(t *testing.T) {
	frame, err := BuildFrame(DefaultRegistry(), CmdGetNodeInformationReq, &NodeRef{NodeID: 9})
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}
	if frame[HeaderSize] != 9 {
		t.Errorf("payload = % X", frame[HeaderSize:len(frame)-1])
	}
}

func TestSystemTable_Bits(t *testing.T) {
	payload := []byte{
		1,                // one entry
		4,                // index
		0x12, 0x34, 0x56, // address
		0x01, 0x01,       // type 4, subtype 1
		0b1000_1001,      // turnaround 2, rf, no io membership, low power
		1,                // VELUX
		0, 0, 0,          // backbone
		0,                // remaining
	}
	tbl, err := decodeSystemTable(payload)
	if err != nil {
		t.Fatal(err)
	}
	e := tbl.Entries[0]
	if e.Type != 4 || e.SubType != 1 {
		t.Errorf("type/subtype = %d/%d, want 4/1", e.Type, e.SubType)
	}
	if e.PowerSave != 1 || e.IOMembership || !e.RFSupport || e.Turnaround != 2 {
		t.Errorf("mode bits decoded as %+v", e)
	}
	if e.Manufacturer.String() != "VELUX" {
		t.Errorf("manufacturer = %s", e.Manufacturer)
	}
}

func TestSystemTable_Truncated(t *testing.T) {
	_, err := decodeSystemTable([]byte{2, 1, 2, 3})
	if !errors.Is(err, ErrPayloadLength) {
		t.Errorf("error = %v, want ErrPayloadLength", err)
	}
}

func TestNetworkSetup_RejectsIPv6(t *testing.T) {
	_, err := encodeNetworkSetup(NetworkSetup{IP: netip.MustParseAddr("::1")})
	if !errors.Is(err, ErrRecordType) {
		t.Errorf("error = %v, want ErrRecordType", err)
	}
}

func TestCommandSend_Layout(t *testing.T) {
	b, err := encodeCommandSend(NewCommandSend(0x0102, 0xC800, 7))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]byte{
		0: 0x01, 1: 0x02, // session id
		2: OriginatorUser,
		3: PriorityUserLevel2,
		7: 0xC8, 8: 0x00, // main parameter
		41: 1, // index array count
		42: 7, // node
	}
	for off, v := range want {
		if b[off] != v {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", off, b[off], v)
		}
	}

	if _, err := encodeCommandSend(CommandSend{}); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("no nodes: error = %v, want ErrFieldTooLong", err)
	}
	if _, err := encodeCommandSend(NewCommandSend(1, 0, make([]byte, 21)...)); err == nil {
		t.Error("21 nodes: expected error")
	}
}

func TestGroupInfo_Layout(t *testing.T) {
	b, err := encodeGroupInfo(GroupInfo{GroupID: 2, Name: "Hall", Members: NodeSetOf(1, 9), Revision: 0x0304})
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]byte{
		0:  2,   // group id
		4:  'H', // name
		71: 2,   // object count
		72: 0x02, 73: 0x02, // actuator bits 1 and 9
		97: 0x03, 98: 0x04, // revision
	}
	for off, v := range want {
		if b[off] != v {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", off, b[off], v)
		}
	}

	if _, err := decodeGroupChanged([]byte{1, 2}); !errors.Is(err, ErrPayloadLength) {
		t.Errorf("truncated change: error = %v, want ErrPayloadLength", err)
	}
}

func TestStatusRequest_Validation(t *testing.T) {
	if _, err := encodeStatusRequest(StatusRequest{StatusType: StatusTypeMainInfo}); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("no nodes: error = %v, want ErrFieldTooLong", err)
	}
	if _, err := encodeStatusNotification(StatusNotification{StatusType: StatusTypeMainInfo}); !errors.Is(err, ErrRecordType) {
		t.Errorf("main info without body: error = %v, want ErrRecordType", err)
	}
	params := make([]StatusParameter, 18)
	if _, err := encodeStatusNotification(StatusNotification{Parameters: params}); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("18 parameters: error = %v, want ErrFieldTooLong", err)
	}
}

func TestPasswordChange_NewAtOffset32(t *testing.T) {
	b, err := encodePasswordChange(PasswordChange{Current: "old", New: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b[32:], []byte("new\x00")) {
		t.Errorf("new password field = % X", b[32:36])
	}
}

func TestPassword_MaxLength(t *testing.T) {
	ok := strings.Repeat("p", MaxPasswordLength)
	if _, err := encodePasswordEnter(PasswordEnter{Password: ok}); err != nil {
		t.Errorf("%d chars: %v", MaxPasswordLength, err)
	}
	if _, err := encodePasswordEnter(PasswordEnter{Password: ok + "p"}); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("%d chars: error = %v, want ErrFieldTooLong", MaxPasswordLength+1, err)
	}
}

func TestSceneList_TooLarge(t *testing.T) {
	_, err := encodeSceneList(SceneList{Scenes: make([]Scene, 4)})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestLocalTime_Time(t *testing.T) {
	utc := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)
	lt := LocalTime{
		UTC: utc, Second: 20, Minute: 13, Hour: 23, Day: 14, Month: 10, Year: 123,
	}
	got := lt.Time()
	if !got.Equal(utc) {
		t.Errorf("Time() = %v, want instant %v", got, utc)
	}
	if _, off := got.Zone(); off != 3600 {
		t.Errorf("zone offset = %d, want 3600", off)
	}
}

func TestRegistry_CustomCodec(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Decoder(CmdGetStateCfm); ok {
		t.Fatal("empty registry has a decoder")
	}
	reg.Register(CmdGetStateCfm, Codec{Decode: func(b []byte) (Record, error) {
		return len(b), nil
	}})
	m, err := ParseFrame(reg, mustRaw(t, CmdGetStateCfm, []byte{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if m.Record != 3 {
		t.Errorf("record = %v, want 3", m.Record)
	}
	if _, ok := reg.Encoder(CmdGetStateCfm); ok {
		t.Error("decode-only codec reports an encoder")
	}
	if got := reg.Commands(); len(got) != 1 || got[0] != CmdGetStateCfm {
		t.Errorf("Commands() = %v", got)
	}
}
