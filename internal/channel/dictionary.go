package channel

import "strings"

// baseNames are channel names seen in the wild or likely to be picked by
// operators. Dictionary expands each into its common case variants.
var baseNames = []string{
	// community and general purpose
	"Primary", "Public", "Default", "General", "Chat", "Main", "Mesh", "MeshNet",
	"Meshtastic", "Local", "LocalMesh", "Community", "Social", "Random", "Lobby",
	"Hello", "Welcome", "Open", "Free", "Everyone", "All", "Net", "Network",
	// private and admin
	"Admin", "Private", "Secret", "Hidden", "Secure", "Crypto", "Encrypted",
	"Backup", "Alt", "Alternate", "Secondary", "Ch1", "Ch2", "Channel1", "Channel2",
	"Test", "Testing", "Tests", "Dev", "Debug", "Lab", "Sandbox",
	// emergency and public service
	"Emergency", "EmComm", "EMCOMM", "SAR", "Rescue", "Fire", "FireDept", "EMS",
	"Police", "Medic", "Medical", "Disaster", "CERT", "ARES", "RACES", "Skywarn",
	"Storm", "Weather", "WX", "Alerts", "Alert", "SOS", "Help", "Safety",
	// amateur radio
	"Ham", "HamRadio", "Hams", "Amateur", "Radio", "QRP", "DX", "Contest",
	// groups
	"Family", "Friends", "Home", "House", "Work", "Office", "Team", "Group",
	"Club", "Crew", "Squad", "Gang", "Neighbors", "Hood", "Village", "Town",
	"City", "County", "State", "Region", "Regional",
	// outdoors
	"Camp", "Camping", "Hike", "Hiking", "Trail", "Outdoor", "Outdoors",
	"Backcountry", "OffGrid", "Offgrid", "Prepper", "Preppers", "Survival",
	"Hunting", "Fishing", "Climbing", "Ski", "Snow", "Bike", "Cycling", "Moto",
	"Sailing", "Marine", "Boat", "Aviation", "Drone", "Balloon", "HAB",
	// events
	"Events", "Event", "Festival", "Burn", "Playa", "Convoy", "Rally", "Race",
	"DEFCON", "Hackers", "Hacker", "Hackerspace", "Makerspace", "Maker",
	// infrastructure
	"Ops", "Operations", "Relay", "Repeater", "Router", "Infra", "Backbone",
	"Node", "Nodes", "Telemetry", "Sensors", "Sensor", "Tracker", "Tracking",
	"GPS", "Position", "Map", "Gateway", "MQTT", "Bridge", "Link",
	// places and regional meshes
	"Farm", "Ranch", "School", "Campus", "University", "Church",
	"BayMesh", "PDXMesh", "SeaMesh", "NYCMesh", "AustinMesh", "DenverMesh",
	"MeshMI", "MeshTX", "MeshCO", "MeshUK", "MeshDE", "MeshNL", "MeshAU",
	"NYC", "SF", "LA", "PDX", "SEA", "ATX", "Berlin", "London", "Paris",
	"Toronto", "Sydney",
}

// Dictionary returns the static list of candidate channel names in a stable
// order: modem preset titles first, then every base name followed by its
// lowercase and uppercase forms. Duplicates keep their first position.
func Dictionary() []string {
	seen := make(map[string]struct{}, (len(modemPresets)+len(baseNames))*3)
	out := make([]string, 0, (len(modemPresets)+len(baseNames))*3)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, group := range [][]string{modemPresets, baseNames} {
		for _, name := range group {
			add(name)
			add(strings.ToLower(name))
			add(strings.ToUpper(name))
		}
	}

	return out
}

// mergeNames appends extra after base, trimming blanks and dropping names
// already present.
func mergeNames(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, group := range [][]string{base, extra} {
		for _, name := range group {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}
