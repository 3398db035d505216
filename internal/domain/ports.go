package domain

import "strconv"

// PortNum is the Meshtastic application port of a decoded payload.
type PortNum int32

const (
	PortUnknown               PortNum = 0
	PortTextMessage           PortNum = 1
	PortRemoteHardware        PortNum = 2
	PortPosition              PortNum = 3
	PortNodeInfo              PortNum = 4
	PortRouting               PortNum = 5
	PortAdmin                 PortNum = 6
	PortTextMessageCompressed PortNum = 7
	PortWaypoint              PortNum = 8
	PortAudio                 PortNum = 9
	PortDetectionSensor       PortNum = 10
	PortAlert                 PortNum = 11
	PortReply                 PortNum = 32
	PortIPTunnel              PortNum = 33
	PortPaxcounter            PortNum = 34
	PortSerial                PortNum = 64
	PortStoreForward          PortNum = 65
	PortRangeTest             PortNum = 66
	PortTelemetry             PortNum = 67
	PortZPS                   PortNum = 68
	PortSimulator             PortNum = 69
	PortTraceroute            PortNum = 70
	PortNeighborInfo          PortNum = 71
	PortAtakPlugin            PortNum = 72
	PortMapReport             PortNum = 73
	PortPowerStress           PortNum = 74
	PortPrivate               PortNum = 256
	PortAtakForwarder         PortNum = 257
)

var portNames = map[PortNum]string{
	PortUnknown:               "UNKNOWN_APP",
	PortTextMessage:           "TEXT_MESSAGE_APP",
	PortRemoteHardware:        "REMOTE_HARDWARE_APP",
	PortPosition:              "POSITION_APP",
	PortNodeInfo:              "NODEINFO_APP",
	PortRouting:               "ROUTING_APP",
	PortAdmin:                 "ADMIN_APP",
	PortTextMessageCompressed: "TEXT_MESSAGE_COMPRESSED_APP",
	PortWaypoint:              "WAYPOINT_APP",
	PortAudio:                 "AUDIO_APP",
	PortDetectionSensor:       "DETECTION_SENSOR_APP",
	PortAlert:                 "ALERT_APP",
	PortReply:                 "REPLY_APP",
	PortIPTunnel:              "IP_TUNNEL_APP",
	PortPaxcounter:            "PAXCOUNTER_APP",
	PortSerial:                "SERIAL_APP",
	PortStoreForward:          "STORE_FORWARD_APP",
	PortRangeTest:             "RANGE_TEST_APP",
	PortTelemetry:             "TELEMETRY_APP",
	PortZPS:                   "ZPS_APP",
	PortSimulator:             "SIMULATOR_APP",
	PortTraceroute:            "TRACEROUTE_APP",
	PortNeighborInfo:          "NEIGHBORINFO_APP",
	PortAtakPlugin:            "ATAK_PLUGIN",
	PortMapReport:             "MAP_REPORT_APP",
	PortPowerStress:           "POWERSTRESS_APP",
	PortPrivate:               "PRIVATE_APP",
	PortAtakForwarder:         "ATAK_FORWARDER",
}

// String returns the firmware enum name, or the decimal value for ports
// this build does not know.
func (p PortNum) String() string {
	if name, ok := portNames[p]; ok {
		return name
	}

	return strconv.Itoa(int(p))
}

// Known reports whether p is a port number the firmware defines.
func (p PortNum) Known() bool {
	_, ok := portNames[p]

	return ok
}
