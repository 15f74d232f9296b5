// Package timezones converts the CLDR windowsZones.xml mapping into a compact
// JSON lookup table of display labels to zoneinfo identifiers.
package timezones

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Zone is one entry of the generated lookup table.
type Zone struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	ID    string `json:"id"`
}

// territory is one mapZone row inside a zone group.
type territory struct {
	Name        string
	ZoneinfoIDs []string
}

// zoneGroup is a display-label comment plus the mapZone rows that follow it.
// The source XML groups rows under "(UTC…)" comments rather than elements, so
// the parser works on the raw token stream.
type zoneGroup struct {
	Name        string
	Label       string
	Territories []territory
}

// Parse reads windowsZones.xml and returns the minimal lookup table. Each
// group's first territory must be the "001" world sentinel; any other shape
// means the upstream format changed and processing stops rather than guessing.
func Parse(r io.Reader) ([]Zone, error) {
	groups, err := parseGroups(r)
	if err != nil {
		return nil, err
	}

	zones := make([]Zone, 0, len(groups))
	for _, group := range groups {
		if len(group.Territories) == 0 {
			return nil, fmt.Errorf("zone %q has no territories", group.Label)
		}
		world := group.Territories[0]
		if world.Name != "001" {
			return nil, fmt.Errorf("zone %q: first territory is %q, want world sentinel 001", group.Label, world.Name)
		}
		if len(world.ZoneinfoIDs) == 0 {
			return nil, fmt.Errorf("zone %q: world territory has no zoneinfo ids", group.Label)
		}
		zones = append(zones, Zone{
			Name:  group.Name,
			Label: group.Label,
			ID:    world.ZoneinfoIDs[0],
		})
	}
	return zones, nil
}

func parseGroups(r io.Reader) ([]zoneGroup, error) {
	decoder := xml.NewDecoder(r)

	if err := seekMapTimezones(decoder); err != nil {
		return nil, err
	}

	var groups []zoneGroup
	depth := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}

		switch t := token.(type) {
		case xml.Comment:
			label := strings.TrimSpace(string(t))
			if depth == 0 && strings.HasPrefix(label, "(UTC") {
				groups = append(groups, zoneGroup{Label: label})
			}
		case xml.StartElement:
			if depth == 0 && t.Name.Local == "mapZone" && len(groups) > 0 {
				group := &groups[len(groups)-1]
				if err := appendMapZone(group, t); err != nil {
					return nil, err
				}
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				// closing mapTimezones
				return groups, nil
			}
			depth--
		}
	}
}

// seekMapTimezones advances the decoder just past the opening
// windowsZones/mapTimezones element.
func seekMapTimezones(decoder *xml.Decoder) error {
	path := []string{}
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("cannot find windowsZones/mapTimezones in xml")
			}
			return fmt.Errorf("read token: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			if len(path) >= 2 &&
				path[len(path)-2] == "windowsZones" && path[len(path)-1] == "mapTimezones" {
				return nil
			}
		case xml.EndElement:
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}
}

func appendMapZone(group *zoneGroup, elem xml.StartElement) error {
	var other, terr, zoneType string
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "other":
			other = attr.Value
		case "territory":
			terr = attr.Value
		case "type":
			zoneType = attr.Value
		}
	}
	if other == "" || terr == "" {
		return fmt.Errorf("mapZone under %q is missing other/territory attributes", group.Label)
	}

	if group.Name == "" {
		group.Name = other
	}
	group.Territories = append(group.Territories, territory{
		Name:        terr,
		ZoneinfoIDs: strings.Fields(zoneType),
	})
	return nil
}
