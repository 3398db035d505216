package app

const (
	Name           = "meshdecode"
	MeshtasticURL  = "https://meshtastic.org"
	ConfigFilename = "config.json"
	DBFilename     = "channels.db"
	LogFilename    = "meshdecode.log"
	// WriterQueueSize bounds pending catalog writes before enqueue spills
	// into goroutines.
	WriterQueueSize = 512
)
