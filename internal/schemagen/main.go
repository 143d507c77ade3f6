// Command schemagen writes the JSON schema of the organize configuration.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/organize/api/v1beta1/configs"
)

var outFile = flag.String("o", configs.SchemaFile, "Output file for the generated schema")

func main() {
	flag.Parse()

	jsData, err := configs.Schema()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
