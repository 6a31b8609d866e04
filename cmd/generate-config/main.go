package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/the-notes/internal/config"
)

const header = `# Notes Configuration Example
# Copy this file to config.yaml (or point NOTES_CONFIG at it) and customize as needed.
# The note store itself is configured through the environment:
#   NOTES_STORE_URL  https://<project>.example.co | sqlite://<path> | s3://<bucket>/<prefix>?endpoint=...
#   NOTES_STORE_KEY  API key, or ACCESS_KEY_ID:SECRET for s3

`

func writeExample(w io.Writer) error {
	yamlData, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("error generating YAML: %w", err)
	}

	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

func main() {
	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		if err := writeExample(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	f, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := writeExample(f); err != nil {
		fmt.Fprintf(os.Stderr, config.ErrWriteConfigContentFmt+"\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
