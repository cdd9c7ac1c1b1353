package providers

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/i474232898/weather-notifier/internal/weather"
)

const pointsSchemaSrc = `{
  "type": "object",
  "required": ["properties"],
  "properties": {
    "properties": {
      "type": "object",
      "required": ["forecastGridData", "forecastHourly", "forecast", "observationStations"],
      "properties": {
        "gridId": {"type": "string"},
        "gridX": {"type": "integer"},
        "gridY": {"type": "integer"},
        "forecastGridData": {"type": "string", "minLength": 1},
        "forecastHourly": {"type": "string", "minLength": 1},
        "forecast": {"type": "string", "minLength": 1},
        "observationStations": {"type": "string", "minLength": 1}
      }
    }
  }
}`

const stationsSchemaSrc = `{
  "type": "object",
  "required": ["features"],
  "properties": {
    "features": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "properties"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "properties": {
            "type": "object",
            "required": ["stationIdentifier"],
            "properties": {"stationIdentifier": {"type": "string"}}
          }
        }
      }
    }
  }
}`

// Gridded data and observations only need a properties object.
const propertiesSchemaSrc = `{
  "type": "object",
  "required": ["properties"],
  "properties": {"properties": {"type": "object"}}
}`

const forecastSchemaSrc = `{
  "type": "object",
  "required": ["properties"],
  "properties": {
    "properties": {
      "type": "object",
      "required": ["periods"],
      "properties": {"periods": {"type": "array"}}
    }
  }
}`

const oneCallSchemaSrc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["lat", "lon"],
  "$defs": {
    "conditions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"type": "integer"}}
      }
    },
    "record": {
      "type": "object",
      "required": ["dt", "weather"],
      "properties": {
        "dt": {"type": "integer"},
        "weather": {"$ref": "#/$defs/conditions"}
      }
    }
  },
  "properties": {
    "lat": {"type": "number"},
    "lon": {"type": "number"},
    "current": {"$ref": "#/$defs/record"},
    "hourly": {"type": "array", "items": {"$ref": "#/$defs/record"}},
    "daily": {
      "type": "array",
      "items": {
        "allOf": [
          {"$ref": "#/$defs/record"},
          {"type": "object", "required": ["feels_like"], "properties": {"feels_like": {"type": "object"}}}
        ]
      }
    },
    "minutely": {"type": "array"}
  }
}`

var (
	pointsSchema      = mustCompile("points.json", pointsSchemaSrc)
	stationsSchema    = mustCompile("stations.json", stationsSchemaSrc)
	observationSchema = mustCompile("observation.json", propertiesSchemaSrc)
	gridDataSchema    = mustCompile("griddata.json", propertiesSchemaSrc)
	forecastSchema    = mustCompile("forecast.json", forecastSchemaSrc)
	oneCallSchema     = mustCompile("onecall.json", oneCallSchemaSrc)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// decodeDocument validates body against schema and, when into is non-nil,
// decodes it. Every failure is reported as a *weather.SchemaError.
func decodeDocument(document, url string, body []byte, schema *jsonschema.Schema, into any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return &weather.SchemaError{Document: document, URL: url, Err: err}
	}
	if err := schema.Validate(raw); err != nil {
		return &weather.SchemaError{Document: document, URL: url, Err: err}
	}
	if into == nil {
		return nil
	}
	if err := json.Unmarshal(body, into); err != nil {
		return &weather.SchemaError{Document: document, URL: url, Err: err}
	}
	return nil
}
