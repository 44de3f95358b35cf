package network

import (
	"encoding/json"
	"time"

	"hilberthotel/internal/progress"
	"hilberthotel/internal/terrain"
)

type MessageType string

const (
	MessageGenerate MessageType = "generate"
	MessageFloor    MessageType = "floor"
	MessageMaps     MessageType = "maps"
	MessageError    MessageType = "error"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

// GenerateRequest asks for a floor. Zero size, quota and seed keep the values
// derived from the progression snapshot.
type GenerateRequest struct {
	Floor    string            `json:"floor"`
	Size     int               `json:"size,omitempty"`
	Quota    int               `json:"quota,omitempty"`
	Seed     int64             `json:"seed,omitempty"`
	Windows  *bool             `json:"windows,omitempty"`
	Progress progress.Snapshot `json:"progress"`
}

// FloorReply carries a loaded floor in the authored map format.
type FloorReply struct {
	Request   uint64                   `json:"request"`
	Name      string                   `json:"name"`
	Map       string                   `json:"map,omitempty"`
	Kind      string                   `json:"kind,omitempty"`
	Generated bool                     `json:"generated"`
	Seed      int64                    `json:"seed,omitempty"`
	Size      int                      `json:"size,omitempty"`
	Quota     int                      `json:"quota,omitempty"`
	Report    *terrain.PlacementReport `json:"report,omitempty"`
	Tilemap   json.RawMessage          `json:"tilemap"`
}

// MapsReply lists the authored maps the server can hand out.
type MapsReply struct {
	Request uint64   `json:"request"`
	Names   []string `json:"names"`
}

type ErrorReply struct {
	Request uint64   `json:"request"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
