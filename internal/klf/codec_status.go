package klf

import (
	"encoding/binary"
	"fmt"
)

const (
	statusRequestSize = 26
	statusHeaderSize  = 7
	mainInfoSize      = 11
	maxStatusParams   = 17
	statusParamSize   = 3
)

// Status types selecting the GW_STATUS_REQUEST_NTF layout
const (
	StatusTypeTarget    byte = 0
	StatusTypeCurrent   byte = 1
	StatusTypeRemaining byte = 2
	StatusTypeMainInfo  byte = 3
)

// StatusRequest is GW_STATUS_REQUEST_REQ. FunctionalIndexes selects FP1-FP16
// with bit 15 of the first byte meaning FP1; main info ignores it.
type StatusRequest struct {
	SessionID         uint16
	Nodes             []byte
	StatusType        byte
	FunctionalIndexes [2]byte
}

func encodeStatusRequest(r StatusRequest) ([]byte, error) {
	if len(r.Nodes) == 0 || len(r.Nodes) > maxIndexArray {
		return nil, fmt.Errorf("%w: %d nodes, want 1-%d", ErrFieldTooLong, len(r.Nodes), maxIndexArray)
	}
	b := make([]byte, statusRequestSize)
	binary.BigEndian.PutUint16(b[0:2], r.SessionID)
	b[2] = byte(len(r.Nodes))
	copy(b[3:23], r.Nodes)
	b[23] = r.StatusType
	b[24] = r.FunctionalIndexes[0]
	b[25] = r.FunctionalIndexes[1]
	return b, nil
}

func decodeStatusRequest(b []byte) (StatusRequest, error) {
	if err := needLen(b, statusRequestSize); err != nil {
		return StatusRequest{}, err
	}
	n := min(int(b[2]), maxIndexArray)
	return StatusRequest{
		SessionID:         binary.BigEndian.Uint16(b[0:2]),
		Nodes:             append([]byte(nil), b[3:3+n]...),
		StatusType:        b[23],
		FunctionalIndexes: [2]byte{b[24], b[25]},
	}, nil
}

// StatusParameter is one parameter value of a status notification.
type StatusParameter struct {
	Parameter byte // 0 main, 1-16 FP1-FP16
	Value     Position
}

// MainInfo is the StatusTypeMainInfo body of GW_STATUS_REQUEST_NTF.
type MainInfo struct {
	Target          Position
	CurrentPosition Position
	RemainingTime   uint16
	LastMaster      uint32
	LastOriginator  byte
}

// StatusNotification is GW_STATUS_REQUEST_NTF. Main is set when StatusType is
// StatusTypeMainInfo, Parameters otherwise.
type StatusNotification struct {
	SessionID   uint16
	StatusID    byte
	NodeID      byte
	RunStatus   RunStatus
	StatusReply byte
	StatusType  byte
	Parameters  []StatusParameter
	Main        *MainInfo
}

func encodeStatusNotification(s StatusNotification) ([]byte, error) {
	var b []byte
	if s.StatusType == StatusTypeMainInfo {
		if s.Main == nil {
			return nil, fmt.Errorf("%w: main info status without Main", ErrRecordType)
		}
		b = make([]byte, statusHeaderSize+mainInfoSize)
		p := b[statusHeaderSize:]
		binary.BigEndian.PutUint16(p[0:2], uint16(s.Main.Target))
		binary.BigEndian.PutUint16(p[2:4], uint16(s.Main.CurrentPosition))
		binary.BigEndian.PutUint16(p[4:6], s.Main.RemainingTime)
		binary.BigEndian.PutUint32(p[6:10], s.Main.LastMaster)
		p[10] = s.Main.LastOriginator
	} else {
		if len(s.Parameters) > maxStatusParams {
			return nil, fmt.Errorf("%w: %d status parameters, max %d", ErrFieldTooLong, len(s.Parameters), maxStatusParams)
		}
		b = make([]byte, statusHeaderSize+1+maxStatusParams*statusParamSize)
		p := b[statusHeaderSize:]
		p[0] = byte(len(s.Parameters))
		for i, sp := range s.Parameters {
			q := p[1+i*statusParamSize:]
			q[0] = sp.Parameter
			binary.BigEndian.PutUint16(q[1:3], uint16(sp.Value))
		}
	}
	binary.BigEndian.PutUint16(b[0:2], s.SessionID)
	b[2] = s.StatusID
	b[3] = s.NodeID
	b[4] = byte(s.RunStatus)
	b[5] = s.StatusReply
	b[6] = s.StatusType
	return b, nil
}

func decodeStatusNotification(b []byte) (StatusNotification, error) {
	if err := needLen(b, statusHeaderSize+1); err != nil {
		return StatusNotification{}, err
	}
	s := StatusNotification{
		SessionID:   binary.BigEndian.Uint16(b[0:2]),
		StatusID:    b[2],
		NodeID:      b[3],
		RunStatus:   RunStatus(b[4]),
		StatusReply: b[5],
		StatusType:  b[6],
	}
	p := b[statusHeaderSize:]

	if s.StatusType == StatusTypeMainInfo {
		if err := needLen(p, mainInfoSize); err != nil {
			return StatusNotification{}, err
		}
		s.Main = &MainInfo{
			Target:          Position(binary.BigEndian.Uint16(p[0:2])),
			CurrentPosition: Position(binary.BigEndian.Uint16(p[2:4])),
			RemainingTime:   binary.BigEndian.Uint16(p[4:6]),
			LastMaster:      binary.BigEndian.Uint32(p[6:10]),
			LastOriginator:  p[10],
		}
		return s, nil
	}

	n := min(int(p[0]), maxStatusParams)
	if err := needLen(p, 1+n*statusParamSize); err != nil {
		return StatusNotification{}, err
	}
	if n > 0 {
		s.Parameters = make([]StatusParameter, n)
		for i := range s.Parameters {
			q := p[1+i*statusParamSize:]
			s.Parameters[i] = StatusParameter{Parameter: q[0], Value: Position(binary.BigEndian.Uint16(q[1:3]))}
		}
	}
	return s, nil
}
