package klf

import (
	"encoding/binary"
	"fmt"
)

const (
	commandSendSize = 66
	maxIndexArray   = 20
	functionalSlots = 16
)

// Command originators
const (
	OriginatorUser       byte = 1
	OriginatorRain       byte = 2
	OriginatorTimer      byte = 3
	OriginatorUPS        byte = 5
	OriginatorSAAC       byte = 8
	OriginatorWind       byte = 9
	OriginatorLoadShed   byte = 11
	OriginatorLocalLight byte = 12
	OriginatorEmergency  byte = 255
)

// Command priority levels
const (
	PriorityHumanProtection byte = 0
	PriorityEnvProtection   byte = 1
	PriorityUserLevel1      byte = 2
	PriorityUserLevel2      byte = 3
	PriorityComfortLevel1   byte = 4
)

// CommandSend is GW_COMMAND_SEND_REQ. Functional parameters only take effect
// when their bit in FunctionalMask is set; bit 15 is FP1.
type CommandSend struct {
	SessionID         uint16
	Originator        byte
	Priority          byte
	ParameterActive   byte // 0 selects the main parameter
	Main              Position
	FunctionalMask    uint16
	Functional        [functionalSlots]Position
	Nodes             []byte
	PriorityLevelLock bool
	PriorityLevels    [2]byte // PL_0_3, PL_4_7
	LockTime          byte
}

// NewCommandSend returns a user-originated request moving the main
// parameter of the given nodes to pos.
func NewCommandSend(sessionID uint16, pos Position, nodes ...byte) CommandSend {
	return CommandSend{
		SessionID:  sessionID,
		Originator: OriginatorUser,
		Priority:   PriorityUserLevel2,
		Main:       pos,
		Nodes:      nodes,
	}
}

func encodeCommandSend(c CommandSend) ([]byte, error) {
	if len(c.Nodes) == 0 || len(c.Nodes) > maxIndexArray {
		return nil, fmt.Errorf("%w: %d nodes, want 1-%d", ErrFieldTooLong, len(c.Nodes), maxIndexArray)
	}
	b := make([]byte, commandSendSize)
	binary.BigEndian.PutUint16(b[0:2], c.SessionID)
	b[2] = c.Originator
	b[3] = c.Priority
	b[4] = c.ParameterActive
	binary.BigEndian.PutUint16(b[5:7], c.FunctionalMask)
	binary.BigEndian.PutUint16(b[7:9], uint16(c.Main))
	for i, fp := range c.Functional {
		binary.BigEndian.PutUint16(b[9+2*i:], uint16(fp))
	}
	b[41] = byte(len(c.Nodes))
	copy(b[42:62], c.Nodes)
	if c.PriorityLevelLock {
		b[62] = 1
	}
	b[63] = c.PriorityLevels[0]
	b[64] = c.PriorityLevels[1]
	b[65] = c.LockTime
	return b, nil
}

func decodeCommandSend(b []byte) (CommandSend, error) {
	if err := needLen(b, commandSendSize); err != nil {
		return CommandSend{}, err
	}
	c := CommandSend{
		SessionID:         binary.BigEndian.Uint16(b[0:2]),
		Originator:        b[2],
		Priority:          b[3],
		ParameterActive:   b[4],
		FunctionalMask:    binary.BigEndian.Uint16(b[5:7]),
		Main:              Position(binary.BigEndian.Uint16(b[7:9])),
		PriorityLevelLock: b[62] == 1,
		PriorityLevels:    [2]byte{b[63], b[64]},
		LockTime:          b[65],
	}
	for i := range c.Functional {
		c.Functional[i] = Position(binary.BigEndian.Uint16(b[9+2*i:]))
	}
	n := min(int(b[41]), maxIndexArray)
	c.Nodes = append([]byte(nil), b[42:42+n]...)
	return c, nil
}

// CommandSendReply is GW_COMMAND_SEND_CFM and GW_STATUS_REQUEST_CFM.
type CommandSendReply struct {
	SessionID uint16
	Accepted  bool
}

func encodeCommandSendReply(r CommandSendReply) ([]byte, error) {
	b := make([]byte, 3)
	binary.BigEndian.PutUint16(b[0:2], r.SessionID)
	if r.Accepted {
		b[2] = 1
	}
	return b, nil
}

func decodeCommandSendReply(b []byte) (CommandSendReply, error) {
	if err := needLen(b, 3); err != nil {
		return CommandSendReply{}, err
	}
	return CommandSendReply{
		SessionID: binary.BigEndian.Uint16(b[0:2]),
		Accepted:  b[2] == 1,
	}, nil
}

// RunStatusNotification is GW_COMMAND_RUN_STATUS_NTF.
type RunStatusNotification struct {
	SessionID       uint16
	StatusID        byte // originator of the status
	NodeID          byte
	NodeParameter   byte
	ParameterValue  Position
	RunStatus       RunStatus
	StatusReply     byte
	InformationCode uint32
}

func encodeRunStatus(r RunStatusNotification) ([]byte, error) {
	b := make([]byte, 13)
	binary.BigEndian.PutUint16(b[0:2], r.SessionID)
	b[2] = r.StatusID
	b[3] = r.NodeID
	b[4] = r.NodeParameter
	binary.BigEndian.PutUint16(b[5:7], uint16(r.ParameterValue))
	b[7] = byte(r.RunStatus)
	b[8] = r.StatusReply
	binary.BigEndian.PutUint32(b[9:13], r.InformationCode)
	return b, nil
}

func decodeRunStatus(b []byte) (RunStatusNotification, error) {
	if err := needLen(b, 13); err != nil {
		return RunStatusNotification{}, err
	}
	return RunStatusNotification{
		SessionID:       binary.BigEndian.Uint16(b[0:2]),
		StatusID:        b[2],
		NodeID:          b[3],
		NodeParameter:   b[4],
		ParameterValue:  Position(binary.BigEndian.Uint16(b[5:7])),
		RunStatus:       RunStatus(b[7]),
		StatusReply:     b[8],
		InformationCode: binary.BigEndian.Uint32(b[9:13]),
	}, nil
}

// RemainingTime is GW_COMMAND_REMAINING_TIME_NTF.
type RemainingTime struct {
	SessionID     uint16
	NodeID        byte
	NodeParameter byte
	Seconds       uint16
}

func encodeRemainingTime(r RemainingTime) ([]byte, error) {
	b := make([]byte, 6)
	binary.BigEndian.PutUint16(b[0:2], r.SessionID)
	b[2] = r.NodeID
	b[3] = r.NodeParameter
	binary.BigEndian.PutUint16(b[4:6], r.Seconds)
	return b, nil
}

func decodeRemainingTime(b []byte) (RemainingTime, error) {
	if err := needLen(b, 6); err != nil {
		return RemainingTime{}, err
	}
	return RemainingTime{
		SessionID:     binary.BigEndian.Uint16(b[0:2]),
		NodeID:        b[2],
		NodeParameter: b[3],
		Seconds:       binary.BigEndian.Uint16(b[4:6]),
	}, nil
}

// SessionFinished is GW_SESSION_FINISHED_NTF.
type SessionFinished struct {
	SessionID uint16
}

func encodeSessionFinished(s SessionFinished) ([]byte, error) {
	return binary.BigEndian.AppendUint16(nil, s.SessionID), nil
}

func decodeSessionFinished(b []byte) (SessionFinished, error) {
	if err := needLen(b, 2); err != nil {
		return SessionFinished{}, err
	}
	return SessionFinished{SessionID: binary.BigEndian.Uint16(b)}, nil
}
