package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"crisis-assist/internal/location"
	"crisis-assist/internal/tools"
)

const ToolName = "find_nearby_place"

type toolArgs struct {
	PlaceType string `mapstructure:"place_type"`
}

// Tool exposes a Finder to the language model as a callable function bound
// to the session's resolved location.
type Tool struct {
	finder *Finder
	loc    *location.Location
}

func NewTool(finder *Finder, loc *location.Location) *Tool {
	return &Tool{finder: finder, loc: loc}
}

func (t *Tool) Name() string { return ToolName }

func (t *Tool) Description() string {
	return "Finds the top places of a given type near the user's current location. " +
		"Use it when the user needs a hospital, police station, school or fire station."
}

func (t *Tool) Parameters() map[string]interface{} {
	enum := make([]string, len(Categories))
	for i, c := range Categories {
		enum[i] = string(c)
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"place_type": map[string]interface{}{
				"type":        "string",
				"description": "The type of place to search for.",
				"enum":        enum,
			},
		},
		"required": []string{"place_type"},
	}
}

// Execute never fails the model conversation for bad input; it reports the
// problem in the result so the model can answer without the lookup.
func (t *Tool) Execute(ctx context.Context, params map[string]interface{}) (*tools.ToolResult, error) {
	var args toolArgs
	if err := mapstructure.Decode(params, &args); err != nil {
		return &tools.ToolResult{Success: false, Error: fmt.Sprintf("bad arguments: %v", err)}, nil
	}

	found, err := t.finder.FindPlaces(ctx, args.PlaceType, t.loc)
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return &tools.ToolResult{Success: false, Error: err.Error()}, nil
	case errors.Is(err, location.ErrUnresolved):
		return &tools.ToolResult{Success: false, Error: "the user's location is unknown"}, nil
	case err != nil:
		return nil, err
	}

	out, err := json.Marshal(found)
	if err != nil {
		return nil, err
	}
	return &tools.ToolResult{Success: true, Output: string(out)}, nil
}
