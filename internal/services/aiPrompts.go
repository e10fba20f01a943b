package services

import (
	"fmt"
	"strings"

	"codequest/internal/models"
)

// FallbackText replaces the AI answer whenever the provider fails.
const FallbackText = "⚠️ Our AI mentor is taking a short break and couldn't answer right now. Please try again in a moment!"

const (
	defaultAgeGroup   = "9-11"
	defaultLanguage   = "python"
	defaultDifficulty = "beginner"
)

func buildExplainPrompt(req models.ExplainRequest) string {
	ageGroup := orDefault(req.AgeGroup, defaultAgeGroup)
	language := orDefault(req.Language, defaultLanguage)

	var b strings.Builder
	fmt.Fprintf(&b, "Explain the programming concept %q to a child aged %s who is learning %s.\n", strings.TrimSpace(req.Concept), ageGroup, language)
	b.WriteString("Use short sentences, a friendly tone and no jargon.\n")
	b.WriteString("Answer in Markdown using exactly these sections:\n\n")
	b.WriteString("## Title\nA short, fun title.\n\n")
	b.WriteString("## Explanation\nTwo or three short paragraphs.\n\n")
	b.WriteString("## Analogy\nOne real-life comparison.\n\n")
	fmt.Fprintf(&b, "## Code Example\nOne small fenced %s code block with comments.\n\n", language)
	b.WriteString("## Fun Fact\nOne sentence.\n\n")
	b.WriteString("## Key Points\nThree to five bullet points.\n")
	return b.String()
}

func buildReviewPrompt(req models.CodeReviewRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this %s code written by a young learner. Be kind, specific and encouraging.\n\n", req.Language)
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", strings.ToLower(req.Language), strings.TrimRight(req.Code, "\n"))
	b.WriteString("Answer in Markdown using exactly these sections:\n\n")
	b.WriteString("## Summary\nWhat the code does in one or two sentences.\n\n")
	b.WriteString("## Score\nA score written as X/10.\n\n")
	b.WriteString("## Strengths\nBullet points.\n\n")
	b.WriteString("## Improvements\nBullet points.\n\n")
	b.WriteString("## Bugs\nBullet points, or \"None\" if there are no bugs.\n\n")
	b.WriteString("## Improved Code\nOne fenced code block with the improved version.\n\n")
	b.WriteString("## Encouragement\nOne or two cheerful sentences.\n")
	return b.String()
}

func buildProjectIdeaPrompt(req models.ProjectIdeaRequest) string {
	difficulty := orDefault(req.Difficulty, defaultDifficulty)
	language := orDefault(req.Language, defaultLanguage)

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest one %s coding project in %s for a child interested in: %s.\n", difficulty, language, strings.Join(req.Interests, ", "))
	b.WriteString("Make it fun and achievable in a few sessions.\n")
	b.WriteString("Answer in Markdown using exactly these sections:\n\n")
	b.WriteString("## Title\n\n")
	b.WriteString("## Description\nTwo or three sentences.\n\n")
	b.WriteString("## Features\nBullet points.\n\n")
	b.WriteString("## Steps\nA numbered list of build steps.\n\n")
	b.WriteString("## Concepts You'll Learn\nBullet points.\n\n")
	b.WriteString("## Estimated Time\nFor example \"2-3 hours\".\n")
	return b.String()
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
