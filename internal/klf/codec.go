package klf

import "fmt"

// typed adapts strongly typed payload functions to a Codec. Encoders accept
// either T or *T.
func typed[T any](enc func(T) ([]byte, error), dec func([]byte) (T, error)) Codec {
	var c Codec
	if enc != nil {
		c.Encode = func(r Record) ([]byte, error) {
			switch v := r.(type) {
			case T:
				return enc(v)
			case *T:
				if v != nil {
					return enc(*v)
				}
			}
			var zero T
			return nil, recordTypeError(fmt.Sprintf("%T", zero), r)
		}
	}
	if dec != nil {
		c.Decode = func(b []byte) (Record, error) {
			v, err := dec(b)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return c
}

// statusCodec handles confirmations whose payload is a single status byte.
// success is the wire value meaning the request succeeded; the gateway is
// not consistent about it across commands.
func statusCodec(success byte) Codec {
	failure := byte(1)
	if success == 1 {
		failure = 0
	}
	return typed(
		func(s StatusReply) ([]byte, error) {
			if s.OK {
				return []byte{success}, nil
			}
			return []byte{failure}, nil
		},
		func(b []byte) (StatusReply, error) {
			if err := needLen(b, 1); err != nil {
				return StatusReply{}, err
			}
			return StatusReply{OK: b[0] == success}, nil
		},
	)
}

// StatusReply is a confirmation carrying only a success flag.
type StatusReply struct {
	OK bool
}

func registerBuiltins(r *Registry) {
	// system
	r.Register(CmdErrorNtf, typed(encodeErrorNtf, decodeErrorNtf))
	r.Register(CmdGetVersionCfm, typed(encodeVersion, decodeVersion))
	r.Register(CmdGetProtocolVersionCfm, typed(encodeProtocolVersion, decodeProtocolVersion))
	r.Register(CmdGetStateCfm, typed(encodeState, decodeState))
	r.Register(CmdLeaveLearnStateCfm, statusCodec(1))
	r.Register(CmdGetNetworkSetupCfm, typed(encodeNetworkSetup, decodeNetworkSetup))
	r.Register(CmdSetNetworkSetupReq, typed(encodeNetworkSetup, decodeNetworkSetup))

	// configuration service
	r.Register(CmdCSGetSystemTableDataNtf, typed(encodeSystemTable, decodeSystemTable))
	r.Register(CmdCSDiscoverNodesReq, typed(encodeDiscoverNodes, decodeDiscoverNodes))
	r.Register(CmdCSDiscoverNodesNtf, typed(encodeDiscoverResult, decodeDiscoverResult))
	r.Register(CmdCSRemoveNodesReq, typed(encodeRemoveNodes, decodeRemoveNodes))
	r.Register(CmdCSRemoveNodesCfm, typed(encodeRemoveNodesReply, decodeRemoveNodesReply))

	// nodes
	r.Register(CmdGetNodeInformationReq, typed(encodeNodeRef, decodeNodeRef))
	r.Register(CmdGetNodeInformationCfm, typed(encodeNodeReply, decodeNodeReply))
	r.Register(CmdGetNodeInformationNtf, typed(encodeNodeInfo, decodeNodeInfo))
	r.Register(CmdGetAllNodesInformationCfm, typed(encodeAllNodesReply, decodeAllNodesReply))
	r.Register(CmdGetAllNodesInformationNtf, typed(encodeNodeInfo, decodeNodeInfo))
	r.Register(CmdSetNodeNameReq, typed(encodeNodeName, decodeNodeName))
	r.Register(CmdSetNodeNameCfm, typed(encodeNodeReply, decodeNodeReply))
	r.Register(CmdNodeStatePositionChangedNtf, typed(encodePositionChanged, decodePositionChanged))

	// groups
	r.Register(CmdGetGroupInformationReq, typed(encodeGroupRef, decodeGroupRef))
	r.Register(CmdGetGroupInformationCfm, typed(encodeGroupReply, decodeGroupReply))
	r.Register(CmdGetGroupInformationNtf, typed(encodeGroupInfo, decodeGroupInfo))
	r.Register(CmdGroupInformationChangedNtf, typed(encodeGroupChanged, decodeGroupChanged))
	r.Register(CmdGetAllGroupsInformationReq, typed(encodeAllGroupsRequest, decodeAllGroupsRequest))
	r.Register(CmdGetAllGroupsInformationCfm, typed(encodeAllGroupsReply, decodeAllGroupsReply))
	r.Register(CmdGetAllGroupsInformationNtf, typed(encodeGroupInfo, decodeGroupInfo))
	r.Register(CmdGroupDeletedNtf, typed(encodeGroupRef, decodeGroupRef))

	// command execution
	r.Register(CmdCommandSendReq, typed(encodeCommandSend, decodeCommandSend))
	r.Register(CmdCommandSendCfm, typed(encodeCommandSendReply, decodeCommandSendReply))
	r.Register(CmdCommandRunStatusNtf, typed(encodeRunStatus, decodeRunStatus))
	r.Register(CmdCommandRemainingTimeNtf, typed(encodeRemainingTime, decodeRemainingTime))
	r.Register(CmdSessionFinishedNtf, typed(encodeSessionFinished, decodeSessionFinished))
	r.Register(CmdStatusRequestReq, typed(encodeStatusRequest, decodeStatusRequest))
	r.Register(CmdStatusRequestCfm, typed(encodeCommandSendReply, decodeCommandSendReply))
	r.Register(CmdStatusRequestNtf, typed(encodeStatusNotification, decodeStatusNotification))

	// scenes
	r.Register(CmdGetSceneListCfm, typed(encodeSceneCount, decodeSceneCount))
	r.Register(CmdGetSceneListNtf, typed(encodeSceneList, decodeSceneList))
	r.Register(CmdActivateSceneReq, typed(encodeActivateScene, decodeActivateScene))
	r.Register(CmdActivateSceneCfm, typed(encodeSceneReply, decodeSceneReply))
	r.Register(CmdStopSceneReq, typed(encodeStopScene, decodeStopScene))
	r.Register(CmdStopSceneCfm, typed(encodeSceneReply, decodeSceneReply))

	// clock
	r.Register(CmdSetUTCReq, typed(encodeSetUTC, decodeSetUTC))
	r.Register(CmdRTCSetTimeZoneReq, typed(encodeTimeZone, decodeTimeZone))
	r.Register(CmdRTCSetTimeZoneCfm, statusCodec(1))
	r.Register(CmdGetLocalTimeCfm, typed(encodeLocalTime, decodeLocalTime))

	// authentication
	r.Register(CmdPasswordEnterReq, typed(encodePasswordEnter, decodePasswordEnter))
	r.Register(CmdPasswordEnterCfm, statusCodec(0))
	r.Register(CmdPasswordChangeReq, typed(encodePasswordChange, decodePasswordChange))
	r.Register(CmdPasswordChangeCfm, statusCodec(0))
	r.Register(CmdPasswordChangeNtf, typed(encodePasswordChanged, decodePasswordChanged))
}
