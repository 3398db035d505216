package events

const (
	// TopicPacketEncrypted carries EncryptedPacket values waiting to be decoded.
	TopicPacketEncrypted = "packet.encrypted"
	// TopicPacketDecoded carries DecodedPacket values.
	TopicPacketDecoded = "packet.decoded"
	// TopicPacketUndecodable carries UndecodablePacket values.
	TopicPacketUndecodable = "packet.undecodable"
)
