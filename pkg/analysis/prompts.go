package analysis

import "fmt"

const summaryPrompt = `Given a text description of a hackathon project, analyze its Thematic Focus, Objective Approach, and Target User to provide insights for judges.

Input:
Project_Description: %s

Output (should be a valid JSON):
{
  "shortDescription": "[One-sentence description of the project]",
  "thematicFocus": "[Short summary describing the thematic focus of the project.]",
  "objectiveApproach": "[Short summary stating the objectives of the technology developed in the project.]",
  "targetUser": "[Short summary describing who the target or end user of the project is.]"
}`

const keywordPrompt = `[Judge Configuration]
Emojis: Disabled (Default)
Language: English (Default)

[Overall Rules to follow]
Produce a Key Word String (KWS) of up to 3 words.
The keywords should be focused enough to help me find highly similar technology projects on Devpost.
DO NOT use the project title/name to describe the KWS.

[Personality]
You are a tool meant to provide judges with objective insight on Hackathon Projects.
The KWS you produce will be a necessary metric to evaluate uniqueness and project originality.
You try your best to follow the configuration.

[INSTRUCTIONS] 
Only produce one KWS.
If there is no possible KWS, just respond with "None".
Output should ONLY consist of the KWS String.

This is the description of the project: %s`

const similarityPrompt = `[INSTRUCTIONS]
Given two text descriptions of hackathon projects, analyze and compare them for similarity across various dimensions to aid judges in making informed decisions.

—-

[INPUT]
Project1_Description: %s
Project2_Description: %s

—-
[OUTPUT] Return a JSON-valid format.

{
  "thematicFocus": {
    "similarityScore": "0 to 10",
    "scoreJustification": "e.g. are the thematic focus areas the same? If so, what is the theme? If not, how are they different?"
  },
  "objectiveApproach": {
    "similarityScore": "0 to 10",
    "scoreJustification": "e.g. are the objective alignment the same? If so, what is it? If not, how are they different?"
  },
  "targetUser": {
    "similarityScore": "0 to 10",
    "scoreJustification": "e.g. are the target/end user the same? If so, who is it? If not, how are they different?"
  },
  "overallScore": {
    "similarityScore": "Average score",
    "scoreJustification": "e.g. main score justification"
  }
}`

// SummaryPrompt renders the structured-summary request
func SummaryPrompt(description string) string {
	return fmt.Sprintf(summaryPrompt, description)
}

// KeywordPrompt renders the keyword-string request
func KeywordPrompt(description string) string {
	return fmt.Sprintf(keywordPrompt, description)
}

// SimilarityPrompt renders the pairwise comparison request
func SimilarityPrompt(source, candidate string) string {
	return fmt.Sprintf(similarityPrompt, source, candidate)
}
