package places

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_Execute(t *testing.T) {
	finder, _ := fakeNearby(t, http.StatusOK, "Zone 4 Police", "Zone 3 Police")
	tool := NewTool(finder, here)

	res, err := tool.Execute(context.Background(), map[string]interface{}{"place_type": "police"})
	require.NoError(t, err)
	require.True(t, res.Success)

	var got []Place
	require.NoError(t, json.Unmarshal([]byte(res.Output), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Zone 4 Police", got[0].Name)
}

func TestTool_Execute_BadInput(t *testing.T) {
	finder, _ := fakeNearby(t, http.StatusOK, "unused")

	tests := []struct {
		name   string
		tool   *Tool
		params map[string]interface{}
	}{
		{"invalid category", NewTool(finder, here), map[string]interface{}{"place_type": "airport"}},
		{"wrong argument type", NewTool(finder, here), map[string]interface{}{"place_type": 42}},
		{"unresolved location", NewTool(finder, nil), map[string]interface{}{"place_type": "hospital"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.tool.Execute(context.Background(), tt.params)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestTool_Parameters(t *testing.T) {
	tool := NewTool(nil, nil)
	assert.Equal(t, ToolName, tool.Name())

	props := tool.Parameters()["properties"].(map[string]interface{})
	placeType := props["place_type"].(map[string]interface{})
	assert.Equal(t, []string{"hospital", "police", "school", "fire_station"}, placeType["enum"])
}
