package domain

// ChannelInfo is the minimal view of a destination channel the relay
// needs: its identity and the parent context (guild/team/server name)
// embedded into spoofed display labels.
type ChannelInfo struct {
	ID         string
	Name       string
	ParentName string
}

// Endpoint is a per-(channel, room) identity-spoofing send target.
// Endpoints are ephemeral: owned by the destination channel, named
// deterministically from the room id, recreated on demand.
type Endpoint struct {
	ID        string
	ChannelID string
	Name      string
}

// EndpointName derives the deterministic endpoint name for a room.
func EndpointName(roomID string) string {
	return "relay-" + roomID
}
