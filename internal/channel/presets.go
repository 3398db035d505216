package channel

import "strings"

// modemPresets lists modem preset channel titles in firmware enum order.
var modemPresets = []string{
	"LongFast",
	"LongSlow",
	"VeryLongSlow",
	"MediumSlow",
	"MediumFast",
	"ShortSlow",
	"ShortFast",
	"LongModerate",
	"ShortTurbo",
	"LongTurbo",
}

// PresetNames returns the channel titles the firmware uses for unnamed
// primary channels, one per modem preset.
func PresetNames() []string {
	return append([]string(nil), modemPresets...)
}

// ModemPresetTitle maps a modem preset enum name (e.g. "LONG_FAST") to the
// channel title an unnamed primary channel carries. Unknown presets fall back
// to LongFast.
func ModemPresetTitle(preset string) string {
	switch strings.ToUpper(strings.TrimSpace(preset)) {
	case "LONG_FAST":
		return "LongFast"
	case "LONG_SLOW":
		return "LongSlow"
	case "VERY_LONG_SLOW":
		return "VeryLongSlow"
	case "MEDIUM_SLOW":
		return "MediumSlow"
	case "MEDIUM_FAST":
		return "MediumFast"
	case "SHORT_SLOW":
		return "ShortSlow"
	case "SHORT_FAST":
		return "ShortFast"
	case "LONG_MODERATE":
		return "LongModerate"
	case "SHORT_TURBO":
		return "ShortTurbo"
	case "LONG_TURBO":
		return "LongTurbo"
	default:
		return "LongFast"
	}
}
