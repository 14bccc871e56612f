package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
)

// argument returns a parameter value, treating an explicit null as absent.
func argument(req mcp.CallToolRequest, name string) (any, bool) {
	v, ok := req.Params.Arguments[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requiredFloat(req mcp.CallToolRequest, name string) (float64, error) {
	v, ok := argument(req, name)
	if !ok {
		return 0, invalid(name, "is required")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, invalid(name, "must be a number")
	}
	return f, nil
}

// requiredCoordinate reads a latitude/longitude parameter pair.
func requiredCoordinate(req mcp.CallToolRequest, latName, lngName string) (geo.Coordinate, error) {
	lat, err := requiredFloat(req, latName)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := requiredFloat(req, lngName)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if lat < -90 || lat > 90 {
		return geo.Coordinate{}, invalid(latName, "%f is outside -90..90", lat)
	}
	if lng < -180 || lng > 180 {
		return geo.Coordinate{}, invalid(lngName, "%f is outside -180..180", lng)
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, nil
}

// optionalInt reads an integer parameter bounded by [min, max].
func optionalInt(req mcp.CallToolRequest, name string, minValue, maxValue int) (*int, error) {
	v, ok := argument(req, name)
	if !ok {
		return nil, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil, invalid(name, "must be an integer")
	}
	if n < minValue || n > maxValue {
		return nil, invalid(name, "%d is outside %d..%d", n, minValue, maxValue)
	}
	return &n, nil
}

// intOrDefault is optionalInt with a default for the absent case.
func intOrDefault(req mcp.CallToolRequest, name string, def, minValue, maxValue int) (int, error) {
	n, err := optionalInt(req, name, minValue, maxValue)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return def, nil
	}
	return *n, nil
}

func optionalBool(req mcp.CallToolRequest, name string) (*bool, error) {
	v, ok := argument(req, name)
	if !ok {
		return nil, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, invalid(name, "must be a boolean")
	}
	return &b, nil
}

func optionalString(req mcp.CallToolRequest, name string) string {
	return strings.TrimSpace(mcp.ParseString(req, name, ""))
}

// stringList reads an array parameter. A plain string is split on commas
// and whitespace, since agents frequently send "a, b" instead of ["a","b"].
func stringList(req mcp.CallToolRequest, name string) ([]string, error) {
	v, ok := argument(req, name)
	if !ok {
		return nil, nil
	}

	var raw []string
	if s, isString := v.(string); isString {
		raw = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
	} else {
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, invalid(name, "must be an array of strings")
		}
		raw = items
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// modesArg reads a list of transport mode names.
func modesArg(req mcp.CallToolRequest, name string) ([]tripgo.Mode, error) {
	names, err := stringList(req, name)
	if err != nil {
		return nil, err
	}
	modes := make([]tripgo.Mode, 0, len(names))
	for _, n := range names {
		m, err := tripgo.ParseMode(n)
		if err != nil {
			return nil, invalid(name, "%s", err.Error())
		}
		modes = append(modes, m)
	}
	return modes, nil
}
