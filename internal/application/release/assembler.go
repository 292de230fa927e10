package release

import (
	"fmt"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

// Assemble merges notes, the rendered issue section, the commit log and the
// diff into one document. It performs no I/O and returns byte-identical output
// for identical input. Blank notes are replaced with a placeholder; an empty
// issueSection is left out entirely.
func Assemble(notes, issueSection, log, diff string) string {
	if strings.TrimSpace(notes) == "" {
		notes = domain.NoNotesPlaceholder
	}

	var b strings.Builder
	b.WriteString("# Release Context\n\n")
	b.WriteString("## Strategic Context / Adhoc Notes\n")
	b.WriteString(notes)
	b.WriteString("\n")
	b.WriteString(issueSection)
	b.WriteString("\n## Commit History\n")
	b.WriteString(log)
	b.WriteString("\n\n## Code Changes\n```diff\n")
	b.WriteString(diff)
	b.WriteString("\n```")
	return b.String()
}

// RenderIssueSection renders resolved issues in the order given. No issues
// renders as "" so the caller can omit the section.
func RenderIssueSection(issues []domain.Issue) string {
	if len(issues) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## Linked Issues\n\n")
	for _, issue := range issues {
		description := domain.NoDescriptionPlaceholder
		if issue.Description != nil {
			description = *issue.Description
		}
		fmt.Fprintf(&b, "### %s %s\n**Type:** %s | **Status:** %s\n\n**Description:**\n%s\n\n**Comments:**\n%s\n\n---\n",
			issue.Key, issue.Summary, issue.Type, issue.Status, description, renderComments(issue.Comments))
	}
	return b.String()
}

func renderComments(comments []domain.IssueComment) string {
	if len(comments) == 0 {
		return domain.NoCommentsPlaceholder
	}
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, "- "+strings.ReplaceAll(c.Body, "\n", "\n  "))
	}
	return strings.Join(lines, "\n")
}

// PrependSystemPrompt builds the single document used when the caller feeds
// a model by hand instead of passing the prompt as a system message.
func PrependSystemPrompt(prompt, document string) string {
	if strings.TrimSpace(prompt) == "" {
		return document
	}
	return prompt + "\n\n---\n**Data to Process:**\n\n" + document
}
