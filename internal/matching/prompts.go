package matching

import (
	"fmt"
	"strings"
)

const (
	candidateNameDescription = "Full name of the candidate"
	summaryDescription       = "A complete and detailed summary covering education, main professional experience, competencies and skills"

	justifySystemInstruction = "You are a specialist in résumé analysis focused on identifying the candidate best suited to a specific need."
)

func summarizePrompt(documentText string) string {
	return fmt.Sprintf(`You are a specialist in writing résumé summaries, skilled at capturing as much relevant information as possible from each document.

Below is the content of a professional résumé:

%s

Extract the information according to the schema below, with rich detail:

- candidate_name: full name of the candidate
- summary: a complete and detailed summary covering education, main professional experience, competencies and skills.

Return only a JSON object following that schema.`, documentText)
}

func justifyPrompt(query string, resumes []SummaryResume) string {
	return fmt.Sprintf(`Below is the description of the position or need:
---
%s
---

Based on that need, carefully analyze the following résumés, previously extracted and already summarized:

Summaries:
%s

Task:
1. Evaluate each candidate against the requirements and context of the position.
2. Identify the candidate who best fits the given description.
3. Justify your choice based on the experience, skills or education described in the summary.
4. Be clear, objective and thorough in the justification.

Response format:
- Best-fit candidate: <Name>
- Justification: <Detailed text explaining why this candidate fits better than the others>`, query, numberedSummaries(resumes))
}

func numberedSummaries(resumes []SummaryResume) string {
	lines := make([]string, 0, len(resumes))
	for i, r := range resumes {
		lines = append(lines, fmt.Sprintf("%d. Name: %s\nSummary: %s", i+1, r.CandidateName, r.Summary))
	}
	return strings.Join(lines, "\n")
}
