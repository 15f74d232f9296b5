// Command gen-timezones fetches the CLDR windowsZones.xml mapping and prints
// a compact JSON timezone lookup table to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"radiojournal/pkg/timezones"
)

const windowsZonesURL = "https://raw.githubusercontent.com/unicode-org/cldr/main/common/supplemental/windowsZones.xml"

func main() {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(windowsZonesURL)
	if err != nil {
		log.Fatalf("Failed to fetch windowsZones.xml: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Failed to fetch windowsZones.xml: status %s", resp.Status)
	}

	zones, err := timezones.Parse(resp.Body)
	if err != nil {
		log.Fatalf("Failed to parse windowsZones.xml: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(zones); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
