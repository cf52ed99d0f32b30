package utils

var aliasAdj = []string{
	"Amber",
	"Bold",
	"Bright",
	"Calm",
	"Clever",
	"Cool",
	"Eager",
	"Fast",
	"Fresh",
	"Gentle",
	"Golden",
	"Happy",
	"Keen",
	"Kind",
	"Lively",
	"Lucky",
	"Mellow",
	"Neat",
	"Quick",
	"Quiet",
	"Rapid",
	"Silent",
	"Smart",
	"Solid",
	"Steady",
	"Swift",
	"Tidy",
	"Warm",
	"Wise",
}

var aliasNoun = []string{
	"Badger",
	"Beacon",
	"Comet",
	"Falcon",
	"Fox",
	"Harbor",
	"Heron",
	"Lynx",
	"Maple",
	"Meadow",
	"Otter",
	"Pebble",
	"Pine",
	"Raven",
	"River",
	"Sparrow",
	"Spruce",
	"Summit",
	"Swan",
	"Willow",
	"Wren",
}

// GenAlias produces a human-readable device name, used when the user
// does not supply one.
func GenAlias() string {
	return RandChoice(aliasAdj) + " " + RandChoice(aliasNoun)
}
