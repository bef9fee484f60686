package klf

import "fmt"

// ErrorNumber is carried by GW_ERROR_NTF.
type ErrorNumber byte

var errorNumberText = map[ErrorNumber]string{
	0:  "not further defined error",
	1:  "unknown command or command not accepted in this state",
	2:  "error on frame structure",
	7:  "busy, try again later",
	8:  "bad system table index",
	12: "not authenticated",
}

func (e ErrorNumber) String() string {
	return lookupText(errorNumberText, e)
}

// GatewayState is the main state reported by GW_GET_STATE_CFM.
type GatewayState byte

var gatewayStateText = map[GatewayState]string{
	0: "test mode",
	1: "gateway mode, no actuator nodes in the system table",
	2: "gateway mode, with actuator nodes in the system table",
	3: "beacon mode, not configured by a remote controller",
	4: "beacon mode, configured by a remote controller",
}

func (s GatewayState) String() string {
	return lookupText(gatewayStateText, s)
}

// SubState refines GatewayState when the gateway is in gateway mode.
type SubState byte

var subStateText = map[SubState]string{
	0x00: "idle",
	0x01: "performing task in configuration service handler",
	0x02: "performing scene configuration",
	0x03: "performing information service configuration",
	0x04: "performing contact input configuration",
	0x80: "performing task in command handler",
	0x81: "performing task in activate group handler",
	0x82: "performing task in activate scene handler",
}

func (s SubState) String() string {
	return lookupText(subStateText, s)
}

// ActuatorType is the node type part of a node type/sub type pair.
type ActuatorType uint16

var actuatorTypeText = map[ActuatorType]string{
	0:  "no type",
	1:  "venetian blind",
	2:  "roller shutter",
	3:  "awning",
	4:  "window opener",
	5:  "garage opener",
	6:  "light",
	7:  "gate opener",
	8:  "rolling door opener",
	9:  "lock",
	10: "blind",
	12: "beacon",
	13: "dual shutter",
	14: "heating temperature interface",
	15: "on/off switch",
	16: "horizontal awning",
	17: "external venetian blind",
	18: "louvre blind",
	19: "curtain track",
	20: "ventilation point",
	21: "exterior heating",
	22: "heat pump",
	23: "intrusion alarm",
	24: "swinging shutter",
}

func (t ActuatorType) String() string {
	return lookupText(actuatorTypeText, t)
}

// PowerSaveMode of a system table entry.
type PowerSaveMode byte

var powerSaveModeText = map[PowerSaveMode]string{
	0: "always alive",
	1: "low power mode",
}

func (m PowerSaveMode) String() string {
	return lookupText(powerSaveModeText, m)
}

// Manufacturer is the io-homecontrol manufacturer id of a node.
type Manufacturer byte

var manufacturerText = map[Manufacturer]string{
	0:  "no type",
	1:  "VELUX",
	2:  "Somfy",
	3:  "Honeywell",
	4:  "Hörmann",
	5:  "ASSA ABLOY",
	6:  "Niko",
	7:  "WINDOW MASTER",
	8:  "Renson",
	9:  "CIAT",
	10: "Secuyou",
	11: "OVERKIZ",
	12: "Atlantic Group",
}

func (m Manufacturer) String() string {
	return lookupText(manufacturerText, m)
}

// DiscoverStatus closes a node discovery.
type DiscoverStatus byte

var discoverStatusText = map[DiscoverStatus]string{
	0: "ok, nodes discovered",
	5: "failed, configuration service not ready",
	6: "ok, some nodes were not added to the system table",
	7: "configuration service busy with another task",
}

func (s DiscoverStatus) String() string {
	return lookupText(discoverStatusText, s)
}

// NodeState is the operating state of an actuator.
type NodeState byte

var nodeStateText = map[NodeState]string{
	0:    "non executing",
	1:    "error while executing",
	2:    "not used",
	3:    "waiting for power",
	4:    "executing",
	5:    "done",
	0xFF: "unknown",
}

func (s NodeState) String() string {
	return lookupText(nodeStateText, s)
}

// RunStatus is reported by GW_COMMAND_RUN_STATUS_NTF.
type RunStatus byte

var runStatusText = map[RunStatus]string{
	0: "execution completed",
	1: "execution failed",
	2: "execution active",
}

func (s RunStatus) String() string {
	return lookupText(runStatusText, s)
}

// Velocity requested for a movement.
type Velocity byte

var velocityText = map[Velocity]string{
	0:    "default",
	1:    "silent",
	2:    "fast",
	0xFF: "not available",
}

func (v Velocity) String() string {
	return lookupText(velocityText, v)
}

// DaylightSaving flag of GW_GET_LOCAL_TIME_CFM.
type DaylightSaving int8

var daylightSavingText = map[DaylightSaving]string{
	-1: "DST information not available",
	0:  "DST is not in effect",
	1:  "DST is in effect",
}

func (d DaylightSaving) String() string {
	return lookupText(daylightSavingText, d)
}

type code interface {
	~uint8 | ~uint16 | ~int8
}

func lookupText[K code](table map[K]string, k K) string {
	if s, ok := table[k]; ok {
		return s
	}
	return fmt.Sprintf("reserved (%d)", int64(k))
}
