package klf

// Gateway command codes.
const (
	CmdErrorNtf              Command = 0x0000
	CmdRebootReq             Command = 0x0001
	CmdRebootCfm             Command = 0x0002
	CmdSetFactoryDefaultReq  Command = 0x0003
	CmdSetFactoryDefaultCfm  Command = 0x0004
	CmdGetVersionReq         Command = 0x0008
	CmdGetVersionCfm         Command = 0x0009
	CmdGetProtocolVersionReq Command = 0x000A
	CmdGetProtocolVersionCfm Command = 0x000B
	CmdGetStateReq           Command = 0x000C
	CmdGetStateCfm           Command = 0x000D
	CmdLeaveLearnStateReq    Command = 0x000E
	CmdLeaveLearnStateCfm    Command = 0x000F

	CmdGetNetworkSetupReq Command = 0x00E0
	CmdGetNetworkSetupCfm Command = 0x00E1
	CmdSetNetworkSetupReq Command = 0x00E2
	CmdSetNetworkSetupCfm Command = 0x00E3

	CmdCSGetSystemTableDataReq        Command = 0x0100
	CmdCSGetSystemTableDataCfm        Command = 0x0101
	CmdCSGetSystemTableDataNtf        Command = 0x0102
	CmdCSDiscoverNodesReq             Command = 0x0103
	CmdCSDiscoverNodesCfm             Command = 0x0104
	CmdCSDiscoverNodesNtf             Command = 0x0105
	CmdCSRemoveNodesReq               Command = 0x0106
	CmdCSRemoveNodesCfm               Command = 0x0107
	CmdCSVirginStateReq               Command = 0x0108
	CmdCSVirginStateCfm               Command = 0x0109
	CmdCSControllerCopyReq            Command = 0x010A
	CmdCSControllerCopyCfm            Command = 0x010B
	CmdCSControllerCopyNtf            Command = 0x010C
	CmdCSControllerCopyCancelNtf      Command = 0x010D
	CmdCSReceiveKeyReq                Command = 0x010E
	CmdCSReceiveKeyCfm                Command = 0x010F
	CmdCSReceiveKeyNtf                Command = 0x0110
	CmdCSPGCJobNtf                    Command = 0x0111
	CmdCSSystemTableUpdateNtf         Command = 0x0112
	CmdCSGenerateNewKeyReq            Command = 0x0113
	CmdCSGenerateNewKeyCfm            Command = 0x0114
	CmdCSGenerateNewKeyNtf            Command = 0x0115
	CmdCSRepairKeyReq                 Command = 0x0116
	CmdCSRepairKeyCfm                 Command = 0x0117
	CmdCSRepairKeyNtf                 Command = 0x0118
	CmdCSActivateConfigurationModeReq Command = 0x0119
	CmdCSActivateConfigurationModeCfm Command = 0x011A

	CmdGetNodeInformationReq             Command = 0x0200
	CmdGetNodeInformationCfm             Command = 0x0201
	CmdGetNodeInformationNtf             Command = 0x0210
	CmdGetAllNodesInformationReq         Command = 0x0202
	CmdGetAllNodesInformationCfm         Command = 0x0203
	CmdGetAllNodesInformationNtf         Command = 0x0204
	CmdGetAllNodesInformationFinishedNtf Command = 0x0205
	CmdSetNodeVariationReq               Command = 0x0206
	CmdSetNodeVariationCfm               Command = 0x0207
	CmdSetNodeNameReq                    Command = 0x0208
	CmdSetNodeNameCfm                    Command = 0x0209
	CmdSetNodeVelocityReq                Command = 0x020A
	CmdSetNodeVelocityCfm                Command = 0x020B
	CmdNodeInformationChangedNtf         Command = 0x020C
	CmdNodeStatePositionChangedNtf       Command = 0x0211
	CmdSetNodeOrderAndPlacementReq       Command = 0x020D
	CmdSetNodeOrderAndPlacementCfm       Command = 0x020E

	CmdGetGroupInformationReq             Command = 0x0220
	CmdGetGroupInformationCfm             Command = 0x0221
	CmdGetGroupInformationNtf             Command = 0x0230
	CmdSetGroupInformationReq             Command = 0x0222
	CmdSetGroupInformationCfm             Command = 0x0223
	CmdGroupInformationChangedNtf         Command = 0x0224
	CmdDeleteGroupReq                     Command = 0x0225
	CmdDeleteGroupCfm                     Command = 0x0226
	CmdNewGroupReq                        Command = 0x0227
	CmdNewGroupCfm                        Command = 0x0228
	CmdGetAllGroupsInformationReq         Command = 0x0229
	CmdGetAllGroupsInformationCfm         Command = 0x022A
	CmdGetAllGroupsInformationNtf         Command = 0x022B
	CmdGetAllGroupsInformationFinishedNtf Command = 0x022C
	CmdGroupDeletedNtf                    Command = 0x022D
	CmdHouseStatusMonitorEnableReq        Command = 0x0240
	CmdHouseStatusMonitorEnableCfm        Command = 0x0241
	CmdHouseStatusMonitorDisableReq       Command = 0x0242
	CmdHouseStatusMonitorDisableCfm       Command = 0x0243

	CmdCommandSendReq          Command = 0x0300
	CmdCommandSendCfm          Command = 0x0301
	CmdCommandRunStatusNtf     Command = 0x0302
	CmdCommandRemainingTimeNtf Command = 0x0303
	CmdSessionFinishedNtf      Command = 0x0304
	CmdStatusRequestReq        Command = 0x0305
	CmdStatusRequestCfm        Command = 0x0306
	CmdStatusRequestNtf        Command = 0x0307
	CmdWinkSendReq             Command = 0x0308
	CmdWinkSendCfm             Command = 0x0309
	CmdWinkSendNtf             Command = 0x030A

	CmdSetLimitationReq           Command = 0x0310
	CmdSetLimitationCfm           Command = 0x0311
	CmdGetLimitationStatusReq     Command = 0x0312
	CmdGetLimitationStatusCfm     Command = 0x0313
	CmdLimitationStatusNtf        Command = 0x0314
	CmdModeSendReq                Command = 0x0320
	CmdModeSendCfm                Command = 0x0321
	CmdModeSendNtf                Command = 0x0322
	CmdInitializeSceneReq         Command = 0x0400
	CmdInitializeSceneCfm         Command = 0x0401
	CmdInitializeSceneNtf         Command = 0x0402
	CmdInitializeSceneCancelReq   Command = 0x0403
	CmdInitializeSceneCancelCfm   Command = 0x0404
	CmdRecordSceneReq             Command = 0x0405
	CmdRecordSceneCfm             Command = 0x0406
	CmdRecordSceneNtf             Command = 0x0407
	CmdDeleteSceneReq             Command = 0x0408
	CmdDeleteSceneCfm             Command = 0x0409
	CmdRenameSceneReq             Command = 0x040A
	CmdRenameSceneCfm             Command = 0x040B
	CmdGetSceneListReq            Command = 0x040C
	CmdGetSceneListCfm            Command = 0x040D
	CmdGetSceneListNtf            Command = 0x040E
	CmdGetSceneInfoamationReq     Command = 0x040F
	CmdGetSceneInfoamationCfm     Command = 0x0410
	CmdGetSceneInfoamationNtf     Command = 0x0411
	CmdActivateSceneReq           Command = 0x0412
	CmdActivateSceneCfm           Command = 0x0413
	CmdStopSceneReq               Command = 0x0415
	CmdStopSceneCfm               Command = 0x0416
	CmdSceneInformationChangedNtf Command = 0x0419

	CmdActivateProductGroupReq Command = 0x0447
	CmdActivateProductGroupCfm Command = 0x0448
	CmdActivateProductGroupNtf Command = 0x0449

	CmdGetContactInputLinkListReq Command = 0x0460
	CmdGetContactInputLinkListCfm Command = 0x0461
	CmdSetContactInputLinkReq     Command = 0x0462
	CmdSetContactInputLinkCfm     Command = 0x0463
	CmdRemoveContactInputLinkReq  Command = 0x0464
	CmdRemoveContactInputLinkCfm  Command = 0x0465

	CmdGetActivationLogHeaderReq        Command = 0x0500
	CmdGetActivationLogHeaderCfm        Command = 0x0501
	CmdClearActivationLogReq            Command = 0x0502
	CmdClearActivationLogCfm            Command = 0x0503
	CmdGetActivationLogLineReq          Command = 0x0504
	CmdGetActivationLogLineCfm          Command = 0x0505
	CmdActivationLogUpdatedNtf          Command = 0x0506
	CmdGetMultipleActivationLogLinesReq Command = 0x0507
	CmdGetMultipleActivationLogLinesNtf Command = 0x0508
	CmdGetMultipleActivationLogLinesCfm Command = 0x0509

	CmdSetUTCReq         Command = 0x2000
	CmdSetUTCCfm         Command = 0x2001
	CmdRTCSetTimeZoneReq Command = 0x2002
	CmdRTCSetTimeZoneCfm Command = 0x2003
	CmdGetLocalTimeReq   Command = 0x2004
	CmdGetLocalTimeCfm   Command = 0x2005

	CmdPasswordEnterReq  Command = 0x3000
	CmdPasswordEnterCfm  Command = 0x3001
	CmdPasswordChangeReq Command = 0x3002
	CmdPasswordChangeCfm Command = 0x3003
	CmdPasswordChangeNtf Command = 0x3004
)

// commandNames holds the protocol name of every known command. Names carry
// the REQ, CFM or NTF suffix that classifies the command.
var commandNames = map[Command]string{
	CmdErrorNtf:                           "GW_ERROR_NTF",
	CmdRebootReq:                          "GW_REBOOT_REQ",
	CmdRebootCfm:                          "GW_REBOOT_CFM",
	CmdSetFactoryDefaultReq:               "GW_SET_FACTORY_DEFAULT_REQ",
	CmdSetFactoryDefaultCfm:               "GW_SET_FACTORY_DEFAULT_CFM",
	CmdGetVersionReq:                      "GW_GET_VERSION_REQ",
	CmdGetVersionCfm:                      "GW_GET_VERSION_CFM",
	CmdGetProtocolVersionReq:              "GW_GET_PROTOCOL_VERSION_REQ",
	CmdGetProtocolVersionCfm:              "GW_GET_PROTOCOL_VERSION_CFM",
	CmdGetStateReq:                        "GW_GET_STATE_REQ",
	CmdGetStateCfm:                        "GW_GET_STATE_CFM",
	CmdLeaveLearnStateReq:                 "GW_LEAVE_LEARN_STATE_REQ",
	CmdLeaveLearnStateCfm:                 "GW_LEAVE_LEARN_STATE_CFM",
	CmdGetNetworkSetupReq:                 "GW_GET_NETWORK_SETUP_REQ",
	CmdGetNetworkSetupCfm:                 "GW_GET_NETWORK_SETUP_CFM",
	CmdSetNetworkSetupReq:                 "GW_SET_NETWORK_SETUP_REQ",
	CmdSetNetworkSetupCfm:                 "GW_SET_NETWORK_SETUP_CFM",
	CmdCSGetSystemTableDataReq:            "GW_CS_GET_SYSTEMTABLE_DATA_REQ",
	CmdCSGetSystemTableDataCfm:            "GW_CS_GET_SYSTEMTABLE_DATA_CFM",
	CmdCSGetSystemTableDataNtf:            "GW_CS_GET_SYSTEMTABLE_DATA_NTF",
	CmdCSDiscoverNodesReq:                 "GW_CS_DISCOVER_NODES_REQ",
	CmdCSDiscoverNodesCfm:                 "GW_CS_DISCOVER_NODES_CFM",
	CmdCSDiscoverNodesNtf:                 "GW_CS_DISCOVER_NODES_NTF",
	CmdCSRemoveNodesReq:                   "GW_CS_REMOVE_NODES_REQ",
	CmdCSRemoveNodesCfm:                   "GW_CS_REMOVE_NODES_CFM",
	CmdCSVirginStateReq:                   "GW_CS_VIRGIN_STATE_REQ",
	CmdCSVirginStateCfm:                   "GW_CS_VIRGIN_STATE_CFM",
	CmdCSControllerCopyReq:                "GW_CS_CONTROLLER_COPY_REQ",
	CmdCSControllerCopyCfm:                "GW_CS_CONTROLLER_COPY_CFM",
	CmdCSControllerCopyNtf:                "GW_CS_CONTROLLER_COPY_NTF",
	CmdCSControllerCopyCancelNtf:          "GW_CS_CONTROLLER_COPY_CANCEL_NTF",
	CmdCSReceiveKeyReq:                    "GW_CS_RECEIVE_KEY_REQ",
	CmdCSReceiveKeyCfm:                    "GW_CS_RECEIVE_KEY_CFM",
	CmdCSReceiveKeyNtf:                    "GW_CS_RECEIVE_KEY_NTF",
	CmdCSPGCJobNtf:                        "GW_CS_PGC_JOB_NTF",
	CmdCSSystemTableUpdateNtf:             "GW_CS_SYSTEM_TABLE_UPDATE_NTF",
	CmdCSGenerateNewKeyReq:                "GW_CS_GENERATE_NEW_KEY_REQ",
	CmdCSGenerateNewKeyCfm:                "GW_CS_GENERATE_NEW_KEY_CFM",
	CmdCSGenerateNewKeyNtf:                "GW_CS_GENERATE_NEW_KEY_NTF",
	CmdCSRepairKeyReq:                     "GW_CS_REPAIR_KEY_REQ",
	CmdCSRepairKeyCfm:                     "GW_CS_REPAIR_KEY_CFM",
	CmdCSRepairKeyNtf:                     "GW_CS_REPAIR_KEY_NTF",
	CmdCSActivateConfigurationModeReq:     "GW_CS_ACTIVATE_CONFIGURATION_MODE_REQ",
	CmdCSActivateConfigurationModeCfm:     "GW_CS_ACTIVATE_CONFIGURATION_MODE_CFM",
	CmdGetNodeInformationReq:              "GW_GET_NODE_INFORMATION_REQ",
	CmdGetNodeInformationCfm:              "GW_GET_NODE_INFORMATION_CFM",
	CmdGetNodeInformationNtf:              "GW_GET_NODE_INFORMATION_NTF",
	CmdGetAllNodesInformationReq:          "GW_GET_ALL_NODES_INFORMATION_REQ",
	CmdGetAllNodesInformationCfm:          "GW_GET_ALL_NODES_INFORMATION_CFM",
	CmdGetAllNodesInformationNtf:          "GW_GET_ALL_NODES_INFORMATION_NTF",
	CmdGetAllNodesInformationFinishedNtf:  "GW_GET_ALL_NODES_INFORMATION_FINISHED_NTF",
	CmdSetNodeVariationReq:                "GW_SET_NODE_VARIATION_REQ",
	CmdSetNodeVariationCfm:                "GW_SET_NODE_VARIATION_CFM",
	CmdSetNodeNameReq:                     "GW_SET_NODE_NAME_REQ",
	CmdSetNodeNameCfm:                     "GW_SET_NODE_NAME_CFM",
	CmdSetNodeVelocityReq:                 "GW_SET_NODE_VELOCITY_REQ",
	CmdSetNodeVelocityCfm:                 "GW_SET_NODE_VELOCITY_CFM",
	CmdNodeInformationChangedNtf:          "GW_NODE_INFORMATION_CHANGED_NTF",
	CmdNodeStatePositionChangedNtf:        "GW_NODE_STATE_POSITION_CHANGED_NTF",
	CmdSetNodeOrderAndPlacementReq:        "GW_SET_NODE_ORDER_AND_PLACEMENT_REQ",
	CmdSetNodeOrderAndPlacementCfm:        "GW_SET_NODE_ORDER_AND_PLACEMENT_CFM",
	CmdGetGroupInformationReq:             "GW_GET_GROUP_INFORMATION_REQ",
	CmdGetGroupInformationCfm:             "GW_GET_GROUP_INFORMATION_CFM",
	CmdGetGroupInformationNtf:             "GW_GET_GROUP_INFORMATION_NTF",
	CmdSetGroupInformationReq:             "GW_SET_GROUP_INFORMATION_REQ",
	CmdSetGroupInformationCfm:             "GW_SET_GROUP_INFORMATION_CFM",
	CmdGroupInformationChangedNtf:         "GW_GROUP_INFORMATION_CHANGED_NTF",
	CmdDeleteGroupReq:                     "GW_DELETE_GROUP_REQ",
	CmdDeleteGroupCfm:                     "GW_DELETE_GROUP_CFM",
	CmdNewGroupReq:                        "GW_NEW_GROUP_REQ",
	CmdNewGroupCfm:                        "GW_NEW_GROUP_CFM",
	CmdGetAllGroupsInformationReq:         "GW_GET_ALL_GROUPS_INFORMATION_REQ",
	CmdGetAllGroupsInformationCfm:         "GW_GET_ALL_GROUPS_INFORMATION_CFM",
	CmdGetAllGroupsInformationNtf:         "GW_GET_ALL_GROUPS_INFORMATION_NTF",
	CmdGetAllGroupsInformationFinishedNtf: "GW_GET_ALL_GROUPS_INFORMATION_FINISHED_NTF",
	CmdGroupDeletedNtf:                    "GW_GROUP_DELETED_NTF",
	CmdHouseStatusMonitorEnableReq:        "GW_HOUSE_STATUS_MONITOR_ENABLE_REQ",
	CmdHouseStatusMonitorEnableCfm:        "GW_HOUSE_STATUS_MONITOR_ENABLE_CFM",
	CmdHouseStatusMonitorDisableReq:       "GW_HOUSE_STATUS_MONITOR_DISABLE_REQ",
	CmdHouseStatusMonitorDisableCfm:       "GW_HOUSE_STATUS_MONITOR_DISABLE_CFM",
	CmdCommandSendReq:                     "GW_COMMAND_SEND_REQ",
	CmdCommandSendCfm:                     "GW_COMMAND_SEND_CFM",
	CmdCommandRunStatusNtf:                "GW_COMMAND_RUN_STATUS_NTF",
	CmdCommandRemainingTimeNtf:            "GW_COMMAND_REMAINING_TIME_NTF",
	CmdSessionFinishedNtf:                 "GW_SESSION_FINISHED_NTF",
	CmdStatusRequestReq:                   "GW_STATUS_REQUEST_REQ",
	CmdStatusRequestCfm:                   "GW_STATUS_REQUEST_CFM",
	CmdStatusRequestNtf:                   "GW_STATUS_REQUEST_NTF",
	CmdWinkSendReq:                        "GW_WINK_SEND_REQ",
	CmdWinkSendCfm:                        "GW_WINK_SEND_CFM",
	CmdWinkSendNtf:                        "GW_WINK_SEND_NTF",
	CmdSetLimitationReq:                   "GW_SET_LIMITATION_REQ",
	CmdSetLimitationCfm:                   "GW_SET_LIMITATION_CFM",
	CmdGetLimitationStatusReq:             "GW_GET_LIMITATION_STATUS_REQ",
	CmdGetLimitationStatusCfm:             "GW_GET_LIMITATION_STATUS_CFM",
	CmdLimitationStatusNtf:                "GW_LIMITATION_STATUS_NTF",
	CmdModeSendReq:                        "GW_MODE_SEND_REQ",
	CmdModeSendCfm:                        "GW_MODE_SEND_CFM",
	CmdModeSendNtf:                        "GW_MODE_SEND_NTF",
	CmdInitializeSceneReq:                 "GW_INITIALIZE_SCENE_REQ",
	CmdInitializeSceneCfm:                 "GW_INITIALIZE_SCENE_CFM",
	CmdInitializeSceneNtf:                 "GW_INITIALIZE_SCENE_NTF",
	CmdInitializeSceneCancelReq:           "GW_INITIALIZE_SCENE_CANCEL_REQ",
	CmdInitializeSceneCancelCfm:           "GW_INITIALIZE_SCENE_CANCEL_CFM",
	CmdRecordSceneReq:                     "GW_RECORD_SCENE_REQ",
	CmdRecordSceneCfm:                     "GW_RECORD_SCENE_CFM",
	CmdRecordSceneNtf:                     "GW_RECORD_SCENE_NTF",
	CmdDeleteSceneReq:                     "GW_DELETE_SCENE_REQ",
	CmdDeleteSceneCfm:                     "GW_DELETE_SCENE_CFM",
	CmdRenameSceneReq:                     "GW_RENAME_SCENE_REQ",
	CmdRenameSceneCfm:                     "GW_RENAME_SCENE_CFM",
	CmdGetSceneListReq:                    "GW_GET_SCENE_LIST_REQ",
	CmdGetSceneListCfm:                    "GW_GET_SCENE_LIST_CFM",
	CmdGetSceneListNtf:                    "GW_GET_SCENE_LIST_NTF",
	CmdGetSceneInfoamationReq:             "GW_GET_SCENE_INFOAMATION_REQ",
	CmdGetSceneInfoamationCfm:             "GW_GET_SCENE_INFOAMATION_CFM",
	CmdGetSceneInfoamationNtf:             "GW_GET_SCENE_INFOAMATION_NTF",
	CmdActivateSceneReq:                   "GW_ACTIVATE_SCENE_REQ",
	CmdActivateSceneCfm:                   "GW_ACTIVATE_SCENE_CFM",
	CmdStopSceneReq:                       "GW_STOP_SCENE_REQ",
	CmdStopSceneCfm:                       "GW_STOP_SCENE_CFM",
	CmdSceneInformationChangedNtf:         "GW_SCENE_INFORMATION_CHANGED_NTF",
	CmdActivateProductGroupReq:            "GW_ACTIVATE_PRODUCTGROUP_REQ",
	CmdActivateProductGroupCfm:            "GW_ACTIVATE_PRODUCTGROUP_CFM",
	CmdActivateProductGroupNtf:            "GW_ACTIVATE_PRODUCTGROUP_NTF",
	CmdGetContactInputLinkListReq:         "GW_GET_CONTACT_INPUT_LINK_LIST_REQ",
	CmdGetContactInputLinkListCfm:         "GW_GET_CONTACT_INPUT_LINK_LIST_CFM",
	CmdSetContactInputLinkReq:             "GW_SET_CONTACT_INPUT_LINK_REQ",
	CmdSetContactInputLinkCfm:             "GW_SET_CONTACT_INPUT_LINK_CFM",
	CmdRemoveContactInputLinkReq:          "GW_REMOVE_CONTACT_INPUT_LINK_REQ",
	CmdRemoveContactInputLinkCfm:          "GW_REMOVE_CONTACT_INPUT_LINK_CFM",
	CmdGetActivationLogHeaderReq:          "GW_GET_ACTIVATION_LOG_HEADER_REQ",
	CmdGetActivationLogHeaderCfm:          "GW_GET_ACTIVATION_LOG_HEADER_CFM",
	CmdClearActivationLogReq:              "GW_CLEAR_ACTIVATION_LOG_REQ",
	CmdClearActivationLogCfm:              "GW_CLEAR_ACTIVATION_LOG_CFM",
	CmdGetActivationLogLineReq:            "GW_GET_ACTIVATION_LOG_LINE_REQ",
	CmdGetActivationLogLineCfm:            "GW_GET_ACTIVATION_LOG_LINE_CFM",
	CmdActivationLogUpdatedNtf:            "GW_ACTIVATION_LOG_UPDATED_NTF",
	CmdGetMultipleActivationLogLinesReq:   "GW_GET_MULTIPLE_ACTIVATION_LOG_LINES_REQ",
	CmdGetMultipleActivationLogLinesNtf:   "GW_GET_MULTIPLE_ACTIVATION_LOG_LINES_NTF",
	CmdGetMultipleActivationLogLinesCfm:   "GW_GET_MULTIPLE_ACTIVATION_LOG_LINES_CFM",
	CmdSetUTCReq:                          "GW_SET_UTC_REQ",
	CmdSetUTCCfm:                          "GW_SET_UTC_CFM",
	CmdRTCSetTimeZoneReq:                  "GW_RTC_SET_TIME_ZONE_REQ",
	CmdRTCSetTimeZoneCfm:                  "GW_RTC_SET_TIME_ZONE_CFM",
	CmdGetLocalTimeReq:                    "GW_GET_LOCAL_TIME_REQ",
	CmdGetLocalTimeCfm:                    "GW_GET_LOCAL_TIME_CFM",
	CmdPasswordEnterReq:                   "GW_PASSWORD_ENTER_REQ",
	CmdPasswordEnterCfm:                   "GW_PASSWORD_ENTER_CFM",
	CmdPasswordChangeReq:                  "GW_PASSWORD_CHANGE_REQ",
	CmdPasswordChangeCfm:                  "GW_PASSWORD_CHANGE_CFM",
	CmdPasswordChangeNtf:                  "GW_PASSWORD_CHANGE_NTF",
}
