package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/in-toto/go-ers/report"
	"github.com/invopop/jsonschema"
)

func main() {
	output_dir := "schemas"
	if len(os.Args) > 1 && os.Args[1] != "" {
		output_dir = os.Args[1]
	}

	// Create the output directory if it doesn't exist
	if err := os.MkdirAll(output_dir, 0755); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	reflector := jsonschema.Reflector{
		BaseSchemaID:               "",
		Anonymous:                  false,
		AssignAnchor:               false,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
		DoNotReference:             false,
		ExpandedStruct:             true,
		IgnoredTypes:               []interface{}{},

		CommentMap: map[string]string{},
	}

	schema := reflector.Reflect(&report.Summary{})
	schema.ID = "https://github.com/in-toto/go-ers/schemas/report.json"
	schema.Title = "evidence record validation report"
	schema.Description = "Verdict tree produced by validating one or more evidence records"

	schemaJson, err := schema.MarshalJSON()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, schemaJson, "", "  "); err != nil {
		fmt.Println("Error marshalling JSON schema:", err)
		os.Exit(1)
	}

	filename := filepath.Join(output_dir, "report.json")
	if err := os.WriteFile(filename, indented.Bytes(), 0644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Wrote report schema to %s\n", filename)
}
