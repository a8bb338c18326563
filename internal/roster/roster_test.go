package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLookupIsCaseInsensitiveAndUsesAliases(t *testing.T) {
	r := New(
		Member{Name: "Priya", ID: "stf_priya", Aliases: []string{"Priya Nair"}},
		Member{Name: "  ", ID: "ignored"},
	)
	if r.Len() != 1 {
		t.Fatalf("expected blank member to be dropped, got %d", r.Len())
	}
	for _, name := range []string{"priya", "PRIYA", "priya   nair"} {
		member, ok := r.Lookup(name)
		if !ok || member.ID != "stf_priya" {
			t.Fatalf("lookup %q: got %+v %v", name, member, ok)
		}
	}
	if _, ok := r.Lookup("rahul"); ok {
		t.Fatal("expected unknown name to miss")
	}
}

func TestParseCSV(t *testing.T) {
	members, err := ParseCSV(" Priya=stf_1, Rahul Verma = stf_2 ,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(members) != 2 || members[1].Name != "Rahul Verma" || members[1].ID != "stf_2" {
		t.Fatalf("unexpected members: %+v", members)
	}
	if _, err := ParseCSV("Priya"); err == nil {
		t.Fatal("expected error for entry without id")
	}
}

func TestLoadMergesFileAndInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := "members:\n  - name: Priya\n    id: stf_file\n    aliases: [pn]\n  - name: Rahul\n    id: stf_rahul\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	members, err := Load(path, "priya=stf_inline,Asha=stf_asha")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := New(members...)
	if member, _ := r.Lookup("Priya"); member.ID != "stf_inline" {
		t.Fatalf("expected inline override, got %+v", member)
	}
	if _, ok := r.Lookup("asha"); !ok {
		t.Fatal("expected inline-only member")
	}
	if !strings.Contains(r.Names(), "Rahul") {
		t.Fatalf("unexpected names: %s", r.Names())
	}
}

func TestParseYAMLRejectsIncompleteMembers(t *testing.T) {
	if _, err := ParseYAML([]byte("members:\n  - name: Priya\n")); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := ParseYAML([]byte("members: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
