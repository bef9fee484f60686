package klf

import (
	"encoding/binary"
	"fmt"
)

const (
	sceneNameSize  = 64
	sceneEntrySize = 1 + sceneNameSize
)

// SceneCount is GW_GET_SCENE_LIST_CFM.
type SceneCount struct {
	Total byte
}

func encodeSceneCount(s SceneCount) ([]byte, error) {
	return []byte{s.Total}, nil
}

func decodeSceneCount(b []byte) (SceneCount, error) {
	if err := needLen(b, 1); err != nil {
		return SceneCount{}, err
	}
	return SceneCount{Total: b[0]}, nil
}

// Scene is one entry of a scene list.
type Scene struct {
	ID   byte
	Name string
}

// SceneList is GW_GET_SCENE_LIST_NTF. Remaining counts scenes still to come
// in further notifications.
type SceneList struct {
	Scenes    []Scene
	Remaining byte
}

func encodeSceneList(l SceneList) ([]byte, error) {
	if 2+len(l.Scenes)*sceneEntrySize > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d scenes in one notification", ErrPayloadTooLarge, len(l.Scenes))
	}
	b := make([]byte, 2+len(l.Scenes)*sceneEntrySize)
	b[0] = byte(len(l.Scenes))
	for i, s := range l.Scenes {
		p := b[1+i*sceneEntrySize:]
		p[0] = s.ID
		if err := putString(p[1:sceneEntrySize], s.Name); err != nil {
			return nil, err
		}
	}
	b[len(b)-1] = l.Remaining
	return b, nil
}

func decodeSceneList(b []byte) (SceneList, error) {
	if err := needLen(b, 2); err != nil {
		return SceneList{}, err
	}
	n := int(b[0])
	if err := needLen(b, 2+n*sceneEntrySize); err != nil {
		return SceneList{}, err
	}
	l := SceneList{Scenes: make([]Scene, n)}
	for i := range l.Scenes {
		p := b[1+i*sceneEntrySize:]
		l.Scenes[i] = Scene{ID: p[0], Name: readString(p[1:sceneEntrySize])}
	}
	l.Remaining = b[1+n*sceneEntrySize]
	return l, nil
}

// ActivateScene is GW_ACTIVATE_SCENE_REQ.
type ActivateScene struct {
	SessionID  uint16
	Originator byte
	Priority   byte
	SceneID    byte
	Velocity   Velocity
}

func encodeActivateScene(a ActivateScene) ([]byte, error) {
	b := make([]byte, 6)
	binary.BigEndian.PutUint16(b[0:2], a.SessionID)
	b[2] = a.Originator
	b[3] = a.Priority
	b[4] = a.SceneID
	b[5] = byte(a.Velocity)
	return b, nil
}

func decodeActivateScene(b []byte) (ActivateScene, error) {
	if err := needLen(b, 6); err != nil {
		return ActivateScene{}, err
	}
	return ActivateScene{
		SessionID:  binary.BigEndian.Uint16(b[0:2]),
		Originator: b[2],
		Priority:   b[3],
		SceneID:    b[4],
		Velocity:   Velocity(b[5]),
	}, nil
}

// StopScene is GW_STOP_SCENE_REQ.
type StopScene struct {
	SessionID  uint16
	Originator byte
	Priority   byte
	SceneID    byte
}

func encodeStopScene(s StopScene) ([]byte, error) {
	b := make([]byte, 5)
	binary.BigEndian.PutUint16(b[0:2], s.SessionID)
	b[2] = s.Originator
	b[3] = s.Priority
	b[4] = s.SceneID
	return b, nil
}

func decodeStopScene(b []byte) (StopScene, error) {
	if err := needLen(b, 5); err != nil {
		return StopScene{}, err
	}
	return StopScene{
		SessionID:  binary.BigEndian.Uint16(b[0:2]),
		Originator: b[2],
		Priority:   b[3],
		SceneID:    b[4],
	}, nil
}

// Scene reply status values
const (
	SceneReplyOK           byte = 0
	SceneReplyInvalidParam byte = 1
	SceneReplyRejected     byte = 2
)

// SceneReply is GW_ACTIVATE_SCENE_CFM and GW_STOP_SCENE_CFM.
type SceneReply struct {
	Status    byte
	SessionID uint16
}

// OK reports whether the gateway accepted the request.
func (r SceneReply) OK() bool { return r.Status == SceneReplyOK }

func encodeSceneReply(r SceneReply) ([]byte, error) {
	b := make([]byte, 3)
	b[0] = r.Status
	binary.BigEndian.PutUint16(b[1:3], r.SessionID)
	return b, nil
}

func decodeSceneReply(b []byte) (SceneReply, error) {
	if err := needLen(b, 3); err != nil {
		return SceneReply{}, err
	}
	return SceneReply{Status: b[0], SessionID: binary.BigEndian.Uint16(b[1:3])}, nil
}
