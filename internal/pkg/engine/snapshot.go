package engine

import (
	"slices"

	"github.com/paulmach/orb/geojson"
)

// Snapshot is a serializable view of a scene, shaped like a map style.
type Snapshot struct {
	Sources map[string]SourceSnapshot `json:"sources"`
	Layers  []Layer                   `json:"layers"`
	Images  []string                  `json:"images"`
	Camera  Camera                    `json:"camera"`
	Cursor  string                    `json:"cursor,omitempty"`
	Popups  []Popup                   `json:"popups"`
}

type SourceSnapshot struct {
	Type           string                     `json:"type"`
	Data           *geojson.FeatureCollection `json:"data"`
	Cluster        bool                       `json:"cluster,omitempty"`
	ClusterMaxZoom int                        `json:"clusterMaxZoom,omitempty"`
	ClusterRadius  float64                    `json:"clusterRadius,omitempty"`
}

func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Sources: make(map[string]SourceSnapshot, len(s.sources)),
		Layers:  slices.Clone(s.layers),
		Images:  make([]string, 0, len(s.images)),
		Camera:  s.camera,
		Cursor:  s.cursor,
		Popups:  slices.Clone(s.popups),
	}

	for id, src := range s.sources {
		ss := SourceSnapshot{Type: "geojson", Data: src.data}
		if src.index != nil {
			ss.Cluster = true
			ss.ClusterMaxZoom = src.index.maxZoom
			ss.ClusterRadius = src.index.radius
		}
		snap.Sources[id] = ss
	}

	for name := range s.images {
		snap.Images = append(snap.Images, name)
	}
	slices.Sort(snap.Images)

	if snap.Layers == nil {
		snap.Layers = []Layer{}
	}
	if snap.Popups == nil {
		snap.Popups = []Popup{}
	}

	return snap
}
