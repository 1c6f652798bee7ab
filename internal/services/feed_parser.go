package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/dtos"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// Flat address fields of the older feed format, promoted to a single address
var legacyAddressFields = map[string]string{
	"address":        "street",
	"city":           "city",
	"postalCode":     "postalCode",
	"departmentCode": "departmentCode",
	"departmentName": "departmentName",
	"region":         "region",
	"country":        "country",
	"lonlat":         "lonlat",
}

// xmlNode is one element of the decoded tree
type xmlNode struct {
	name     string
	text     strings.Builder
	children []*xmlNode
}

// ParseFeed turns a raw partner feed into mission entries, deduplicated by clientId
// (first occurrence wins). An empty or malformed feed yields no missions.
func ParseFeed(raw []byte) []dtos.FeedMission {
	root, err := decodeXMLTree(raw)
	if err != nil {
		logging.Warn("[FeedParser] Unparseable feed, treating as empty", "error", err)
		return nil
	}
	if root == nil {
		return nil
	}

	var nodes []*xmlNode
	if root.name == "mission" {
		nodes = []*xmlNode{root}
	} else {
		nodes = findMissionNodes(root)
	}

	seen := make(map[string]struct{}, len(nodes))
	missions := make([]dtos.FeedMission, 0, len(nodes))
	for _, node := range nodes {
		entry, ok := nodeValue(node).(dtos.FeedMission)
		if !ok {
			continue
		}
		clientID := entry.ClientID()
		if clientID == "" {
			continue
		}
		if _, dup := seen[clientID]; dup {
			continue
		}
		seen[clientID] = struct{}{}
		normalizeAddresses(entry)
		missions = append(missions, entry)
	}
	return missions
}

// findMissionNodes returns <mission> children of the root, or of its first child
// holding any (e.g. <source><missions><mission>)
func findMissionNodes(root *xmlNode) []*xmlNode {
	var direct []*xmlNode
	for _, child := range root.children {
		if child.name == "mission" {
			direct = append(direct, child)
		}
	}
	if len(direct) > 0 {
		return direct
	}
	for _, child := range root.children {
		if nested := findMissionNodes(child); len(nested) > 0 {
			return nested
		}
	}
	return nil
}

// charsetReader transcodes feeds that declare a non UTF-8 encoding
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "iso-8859-1", "iso8859-1", "latin-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15", "iso8859-15", "latin-9", "latin9":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported feed charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

func decodeXMLTree(raw []byte) (*xmlNode, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = false
	decoder.CharsetReader = charsetReader

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			} else if root == nil {
				root = node
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("feed has no root element")
	}
	return root, nil
}

// nodeValue converts an element to a string leaf or a FeedMission; repeated
// children become []any in document order
func nodeValue(node *xmlNode) any {
	if len(node.children) == 0 {
		return node.text.String()
	}

	out := make(dtos.FeedMission, len(node.children))
	for _, child := range node.children {
		value := nodeValue(child)
		existing, ok := out[child.name]
		if !ok {
			out[child.name] = value
			continue
		}
		if list, isList := existing.([]any); isList {
			out[child.name] = append(list, value)
		} else {
			out[child.name] = []any{existing, value}
		}
	}
	return out
}

// normalizeAddresses leaves entry["addresses"] as a list of address maps
func normalizeAddresses(entry dtos.FeedMission) {
	if container := entry.Map("addresses"); container != nil {
		if list := container.List("address"); len(list) > 0 {
			addresses := make([]any, 0, len(list))
			for _, address := range list {
				addresses = append(addresses, address)
			}
			entry["addresses"] = addresses
			return
		}
	}
	delete(entry, "addresses")

	// <address> elements directly under <mission>
	if list := entry.List("address"); len(list) > 0 {
		addresses := make([]any, 0, len(list))
		for _, address := range list {
			addresses = append(addresses, address)
		}
		entry["addresses"] = addresses
		return
	}

	legacy := dtos.FeedMission{}
	for from, to := range legacyAddressFields {
		if v := entry.String(from); v != "" {
			legacy[to] = v
		}
	}
	if location := entry.Map("location"); location != nil {
		legacy["location"] = location
	}
	if len(legacy) > 0 {
		entry["addresses"] = []any{legacy}
	}
}
