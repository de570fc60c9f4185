// Command visionerctl is a demo harness for the stealth/perception
// resolution engine: it loads a YAML scene fixture and resolves visibility
// for every token pair, standing in for a real host's UI.
package main

import "github.com/duskward/visioner/cmd/visionerctl/cmd"

func main() {
	cmd.Execute()
}
