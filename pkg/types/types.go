package types

import (
	"encoding/json"
	"time"
)

type SelectionChanged struct {
	Region    string    `json:"region"`
	Previous  string    `json:"previous"`
	Features  int       `json:"features"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *SelectionChanged) Body() []byte {
	b, _ := json.Marshal(s)
	return b
}
func (s *SelectionChanged) ContentType() string {
	return "application/vnd.diwise.quakemap.selection+json"
}
func (s *SelectionChanged) TopicName() string {
	return "selection.changed"
}

type LayersRebuilt struct {
	Revision  string    `json:"revision"`
	Source    string    `json:"source"`
	Region    string    `json:"region"`
	Layers    []string  `json:"layers"`
	Features  int       `json:"features"`
	Clustered bool      `json:"clustered"`
	Timestamp time.Time `json:"timestamp"`
}

func (l *LayersRebuilt) Body() []byte {
	b, _ := json.Marshal(l)
	return b
}
func (l *LayersRebuilt) ContentType() string {
	return "application/vnd.diwise.quakemap.layers+json"
}
func (l *LayersRebuilt) TopicName() string {
	return "layers.rebuilt"
}
