package types

import (
	"encoding/json"
	"time"
)

// TimelineEntry is one stage change of an application.
type TimelineEntry struct {
	Date  string `json:"date"`
	Stage string `json:"stage"`
}

// Progress is the application progress shown on the tracker.
type Progress struct {
	Current  string          `json:"current"`
	Timeline []TimelineEntry `json:"timeline"`
}

// UpdateProgressRequest is the body of POST /api/progress.
type UpdateProgressRequest struct {
	Current string `json:"current"`
}

// Event is an analytics event sent by the client.
type Event struct {
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TrackRequest is the body of POST /api/track.
type TrackRequest struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// VoiceNote is a transcript captured by the voice input.
type VoiceNote struct {
	ID         string    `json:"id"`
	Transcript string    `json:"transcript"`
	At         time.Time `json:"at"`
}

// VoiceNoteRequest is the body of POST /api/voice-notes.
type VoiceNoteRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}
