// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mechxml

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// Record is one flat record parsed from a top-level child element: its
// attributes, one field per text-bearing grandchild element, and a synthetic
// "type" field holding the child's own tag name.
type Record map[string]string

// node is a generic XML element for structure-free decoding.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

// ParseRecords repairs the input (CDATA pairing, single-root wrapping) and
// parses it into one Record per immediate child of the root. Input that still
// fails to parse after repair is a fatal error for this call; the returned
// error identifies the offending document.
func ParseRecords(raw string) ([]Record, error) {
	repaired := EnsureTopLevelClosed(RepairCData(raw))

	var root node
	if err := xml.Unmarshal([]byte(repaired), &root); err != nil {
		return nil, fmt.Errorf("parsing repaired XML %q: %w", truncate(repaired, 200), err)
	}

	records := make([]Record, 0, len(root.Nodes))
	for _, child := range root.Nodes {
		rec := Record{}
		for _, attr := range child.Attrs {
			rec[attr.Name.Local] = attr.Value
		}
		for _, grand := range child.Nodes {
			if text := strings.TrimSpace(grand.Text); text != "" {
				rec[grand.XMLName.Local] = text
			}
		}
		rec["type"] = child.XMLName.Local
		records = append(records, rec)
	}

	return records, nil
}

// RenderMarkdown projects the parsed records into a heading-structured
// document for display. CDATA delimiters are stripped from the rendered text.
func RenderMarkdown(raw, title string) (string, error) {
	records, err := ParseRecords(raw)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)

	for _, rec := range records {
		recType := valueOr(rec, "type", "No Type")
		recTitle := valueOr(rec, "title", "No Title")
		recID := valueOr(rec, "id", "No ID")
		fmt.Fprintf(&b, "\n## %s (%s): %s\n", titleCase(recType), recID, recTitle)

		keys := make([]string, 0, len(rec))
		for k := range rec {
			if k != "type" && k != "title" && k != "id" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "### %s\n%s\n\n", titleCase(k), rec[k])
		}
	}

	out := b.String()
	out = strings.ReplaceAll(out, cdataOpen, "")
	out = strings.ReplaceAll(out, cdataClose, "")
	return out, nil
}

func valueOr(rec Record, key, fallback string) string {
	if v, ok := rec[key]; ok {
		return v
	}
	return fallback
}

// titleCase capitalizes each underscore- or space-separated word.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
