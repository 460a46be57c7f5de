package tiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
)

// VectorLayer describes one layer in tile.json.
type VectorLayer struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// TileJSON is the tile set descriptor map viewers load.
type TileJSON struct {
	TileJSON     string        `json:"tilejson"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Scheme       string        `json:"scheme"`
	Minzoom      uint8         `json:"minzoom"`
	Maxzoom      uint8         `json:"maxzoom"`
	VectorLayers []VectorLayer `json:"vector_layers,omitempty"`
}

// vectorLayerFields declares the attribute schema of the layers this
// pipeline produces.
var vectorLayerFields = map[string]map[string]string{
	"ridge":     zoneFields,
	"valley":    zoneFields,
	"erosion":   zoneFields,
	"centroids": {"zone": "String", "zone_id": "Number", "area": "Number"},
	"contours":  {"elevation": "Number", "text": "String"},
	"peaks":     {"elevation": "Number", "text": "String"},
}

var zoneFields = map[string]string{
	"zone":       "String",
	"zone_id":    "Number",
	"area":       "Number",
	"cell_count": "Number",
}

// WriteTileJSON writes tile.json next to the pyramid.
func WriteTileJSON(outputDirectory, datasetName string, maxZoom uint8, layerNames []string) error {
	vectorLayers := make([]VectorLayer, len(layerNames))
	for i, name := range layerNames {
		fields, found := vectorLayerFields[name]
		if !found {
			fields = map[string]string{}
		}
		vectorLayers[i] = VectorLayer{ID: name, Fields: fields}
	}

	obj := TileJSON{
		TileJSON:     "2.2.0",
		Name:         fmt.Sprintf("%s Terrain Zones", datasetName),
		Description:  fmt.Sprintf("Terrain analysis vector tiles of %s", datasetName),
		Scheme:       "xyz",
		Minzoom:      0,
		Maxzoom:      maxZoom,
		VectorLayers: vectorLayers,
	}

	data, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(outputDirectory, "tile.json"), data, 0644)
}
