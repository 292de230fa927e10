package release

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestAssembleLayout(t *testing.T) {
	got := Assemble("Ship it.", "", "- one\n- two", "diff --git a/x b/x")
	want := "# Release Context\n\n" +
		"## Strategic Context / Adhoc Notes\n" +
		"Ship it.\n" +
		"\n## Commit History\n" +
		"- one\n- two\n\n" +
		"## Code Changes\n```diff\n" +
		"diff --git a/x b/x\n```"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleBlankNotesUsePlaceholder(t *testing.T) {
	for _, notes := range []string{"", "   ", "\n\t"} {
		got := Assemble(notes, "", "", "")
		if !strings.Contains(got, "## Strategic Context / Adhoc Notes\n"+domain.NoNotesPlaceholder+"\n") {
			t.Fatalf("notes %q: placeholder missing in\n%s", notes, got)
		}
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	section := RenderIssueSection([]domain.Issue{{Key: "ABC-1", Summary: "s", Status: "Done", Type: "Bug"}})
	first := Assemble("notes", section, "- a", "d")
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, Assemble("notes", section, "- a", "d")); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestAssembleOmitsEmptyIssueSection(t *testing.T) {
	without := Assemble("n", RenderIssueSection(nil), "- a", "d")
	with := Assemble("n", RenderIssueSection([]domain.Issue{{Key: "ABC-1", Summary: "Login", Status: "Done", Type: "Bug"}}), "- a", "d")

	if strings.Contains(without, "## Linked Issues") {
		t.Fatalf("zero issues should omit the section:\n%s", without)
	}
	if !strings.Contains(with, "## Linked Issues") {
		t.Fatalf("one issue should render the section:\n%s", with)
	}
	linked := strings.Index(with, "## Linked Issues")
	history := strings.Index(with, "## Commit History")
	notes := strings.Index(with, "## Strategic Context")
	if !(notes < linked && linked < history) {
		t.Fatalf("section order wrong: notes=%d linked=%d history=%d", notes, linked, history)
	}
}

func TestRenderIssueSection(t *testing.T) {
	issues := []domain.Issue{
		{
			Key:         "ABC-12",
			Summary:     "Login bug",
			Status:      "Done",
			Type:        "Bug",
			Description: strPtr("Users could not log in."),
			Comments: []domain.IssueComment{
				{Body: "Reproduced.\nOn staging too."},
				{Body: "Fixed", Updated: strPtr("2024-03-01T10:00:00.000+0000")},
			},
		},
		{Key: "XYZ-3", Summary: "Docs", Status: "Open", Type: "Task"},
	}

	want := "\n## Linked Issues\n\n" +
		"### ABC-12 Login bug\n**Type:** Bug | **Status:** Done\n\n" +
		"**Description:**\nUsers could not log in.\n\n" +
		"**Comments:**\n- Reproduced.\n  On staging too.\n- Fixed\n\n---\n" +
		"### XYZ-3 Docs\n**Type:** Task | **Status:** Open\n\n" +
		"**Description:**\nNo description provided.\n\n" +
		"**Comments:**\nNo comments.\n\n---\n"

	if diff := cmp.Diff(want, RenderIssueSection(issues)); diff != "" {
		t.Fatalf("section mismatch (-want +got):\n%s", diff)
	}
}

func TestPrependSystemPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "with prompt", prompt: "Summarize.", want: "Summarize.\n\n---\n**Data to Process:**\n\nDOC"},
		{name: "blank prompt", prompt: "  ", want: "DOC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrependSystemPrompt(tt.prompt, "DOC"); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
