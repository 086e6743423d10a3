// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mechxml

import (
	"fmt"
	"strings"
	"testing"
)

func TestParseRecords_MultiRootWithChatter(t *testing.T) {
	in := `noise<proposals><p id="1"><title>T</title></p><p id="2"><title>U</title></p></proposals>trailing`

	records, err := ParseRecords(in)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	want := []Record{
		{"id": "1", "title": "T", "type": "p"},
		{"id": "2", "title": "U", "type": "p"},
	}
	for i, w := range want {
		for k, v := range w {
			if records[i][k] != v {
				t.Errorf("record[%d][%q] = %q, want %q", i, k, records[i][k], v)
			}
		}
		if len(records[i]) != len(w) {
			t.Errorf("record[%d] has %d fields, want %d: %v", i, len(records[i]), len(w), records[i])
		}
	}
}

func TestParseRecords_FieldCount(t *testing.T) {
	// N children with K text-bearing grandchildren each must yield N records
	// with K+1 fields (K content fields plus the synthetic type field).
	const n, k = 3, 4
	var b strings.Builder
	b.WriteString("<root>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<item%d>", i)
		for j := 0; j < k; j++ {
			fmt.Fprintf(&b, "<field%d>value %d.%d</field%d>", j, i, j, j)
		}
		fmt.Fprintf(&b, "</item%d>", i)
	}
	b.WriteString("</root>")

	records, err := ParseRecords(b.String())
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	for i, rec := range records {
		if len(rec) != k+1 {
			t.Errorf("record[%d] has %d fields, want %d: %v", i, len(rec), k+1, rec)
		}
		if rec["type"] != fmt.Sprintf("item%d", i) {
			t.Errorf("record[%d] type = %q", i, rec["type"])
		}
	}
}

func TestParseRecords_CDATAContent(t *testing.T) {
	in := `<props><problem id="p1"><statement><![CDATA[Let \frac{a}{b} < 1</statement></problem></props>`

	records, err := ParseRecords(in)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if got := records[0]["statement"]; got != `Let \frac{a}{b} < 1` {
		t.Errorf("statement = %q", got)
	}
}

func TestParseRecords_EmptyGrandchildrenSkipped(t *testing.T) {
	in := `<root><item><full>text</full><empty>  </empty></item></root>`

	records, err := ParseRecords(in)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	rec := records[0]
	if _, ok := rec["empty"]; ok {
		t.Errorf("empty grandchild should be skipped: %v", rec)
	}
	if rec["full"] != "text" {
		t.Errorf("full = %q", rec["full"])
	}
}

func TestParseRecords_UnparseableIsFatal(t *testing.T) {
	// An unescaped ampersand survives repair but is not valid XML.
	_, err := ParseRecords("<root><a>this & that</a></root>")
	if err == nil {
		t.Fatal("expected parse error for invalid entity")
	}
	if !strings.Contains(err.Error(), "parsing repaired XML") {
		t.Errorf("error should identify the document: %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	in := `<proposals><conjecture id="c1"><title>Bound growth</title><statement><![CDATA[f(n) = O(n)]]></statement></conjecture></proposals>`

	out, err := RenderMarkdown(in, "Proposals Overview")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	for _, want := range []string{
		"# Proposals Overview",
		"## Conjecture (c1): Bound growth",
		"### Statement",
		"f(n) = O(n)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "CDATA") {
		t.Errorf("CDATA markers should be stripped:\n%s", out)
	}
}
