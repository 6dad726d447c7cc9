package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"snakepit/server"
)

// Emits a JSON Schema document for the replicated state and wire payloads
// so client toolchains can validate against the server's field layout.
func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("protocol-schema: missing -out path")
	}

	schema, err := buildSchema()
	if err != nil {
		log.Fatalf("protocol-schema: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("protocol-schema: marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("protocol-schema: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("protocol-schema: write schema: %v", err)
	}
}

func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Replicated State",
		Description: "Field layout of the diffed player state and event payloads.",
		Definitions: jsonschema.Definitions{},
	}

	types := map[string]any{
		"Player":          server.Player{},
		"Food":            server.Food{},
		"WorldConfig":     server.WorldConfig{},
		"Patch":           server.Patch{},
		"JoinOptions":     server.JoinOptions{},
		"PositionPayload": server.PositionPayload{},
		"AnglePayload":    server.AnglePayload{},
		"ScorePayload":    server.ScorePayload{},
		"AlivePayload":    server.AlivePayload{},
		"BoostPayload":    server.BoostPayload{},
		"KillsPayload":    server.KillsPayload{},
	}
	for name, value := range types {
		reflected := reflector.ReflectFromType(reflect.TypeOf(value))
		if reflected == nil {
			return nil, fmt.Errorf("failed to reflect schema for %s", name)
		}
		reflected.Version = ""
		root.Definitions[name] = reflected
	}

	return root, nil
}
