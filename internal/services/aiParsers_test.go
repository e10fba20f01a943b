package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const explanationAnswer = "## 🎯 Title\nLoops: Doing Things Again and Again\n\n" +
	"## 1. Explanation\nA loop repeats code.\n\nIt saves you typing!\n\n" +
	"## Analogy\nLike brushing each tooth one after another.\n\n" +
	"## Code Example\n```python\n# count to three\nfor i in range(3):\n    print(i)\n## not a heading\n```\n\n" +
	"## Fun Fact\nThe first loop ran on a loom.\n\n" +
	"## Key Points\n- Loops repeat code\n- `for` loops count\n* Stop conditions matter\n"

func TestParseExplanation(t *testing.T) {
	c := ParseExplanation(explanationAnswer, "loops")

	assert.Equal(t, "loops", c.Topic)
	assert.Equal(t, "Loops: Doing Things Again and Again", c.Title)
	assert.Equal(t, "A loop repeats code.\n\nIt saves you typing!", c.Explanation)
	assert.Equal(t, "Like brushing each tooth one after another.", c.Analogy)
	assert.Equal(t, "python", c.CodeLanguage)
	assert.Equal(t, "# count to three\nfor i in range(3):\n    print(i)\n## not a heading", c.CodeExample)
	assert.Equal(t, "The first loop ran on a loom.", c.FunFact)
	assert.Equal(t, []string{"Loops repeat code", "for loops count", "Stop conditions matter"}, c.KeyPoints)
}

func TestParseExplanationBoldAndPlainLabels(t *testing.T) {
	answer := "Title: Variables\n" +
		"**Explanation:** A variable is a box with a name.\n" +
		"**Fun fact**\nPython names are case sensitive.\n"

	c := ParseExplanation(answer, "variables")
	assert.Equal(t, "Variables", c.Title)
	assert.Equal(t, "A variable is a box with a name.", c.Explanation)
	assert.Equal(t, "Python names are case sensitive.", c.FunFact)
	assert.Empty(t, c.Analogy)
	assert.Empty(t, c.CodeExample)
	assert.Equal(t, []string{}, c.KeyPoints)
}

func TestParseExplanationUnstructured(t *testing.T) {
	c := ParseExplanation("A function is a recipe you can use again.", "functions")

	assert.Equal(t, "functions", c.Title)
	assert.Equal(t, "A function is a recipe you can use again.", c.Explanation)
	assert.Equal(t, []string{}, c.KeyPoints)
}

func TestParseExplanationCodeOutsideSection(t *testing.T) {
	answer := "# Lists\nLists hold many things.\n\n```js\nconst pets = ['cat', 'dog'];\n```\n"

	c := ParseExplanation(answer, "lists")
	assert.Equal(t, "Lists", c.Title)
	assert.Equal(t, "js", c.CodeLanguage)
	assert.Equal(t, "const pets = ['cat', 'dog'];", c.CodeExample)
	assert.Equal(t, "Lists hold many things.", c.Explanation)
}

func TestParseExplanationKeepsInlineLabels(t *testing.T) {
	answer := "## Explanation\nA variable is a box.\nRemember: names are case sensitive.\nYou can change what is inside.\n\n" +
		"## Key Points\n- boxes"

	c := ParseExplanation(answer, "variables")
	assert.Equal(t, "A variable is a box.\nRemember: names are case sensitive.\nYou can change what is inside.", c.Explanation)
	assert.Equal(t, []string{"boxes"}, c.KeyPoints)
}

func TestParseExplanationPlainLabelsChain(t *testing.T) {
	answer := "Title: Loops\nExplanation: A loop repeats code.\nFun fact: Loops never get tired."

	c := ParseExplanation(answer, "loops")
	assert.Equal(t, "Loops", c.Title)
	assert.Equal(t, "A loop repeats code.", c.Explanation)
	assert.Equal(t, "Loops never get tired.", c.FunFact)
}

func TestParseCodeReview(t *testing.T) {
	answer := "## Summary\nThis code greets the user.\n\n" +
		"**Score:** 8/10\n\n" +
		"## ✅ Strengths\n1. Clear names\n2. Short and simple\n\n" +
		"## Improvements\n- Add comments\n  so others understand\n\n" +
		"## Bugs\nNone! Great job.\n\n" +
		"## Improved Code\n```python\nname = input('Name? ')\nprint(f'Hi {name}')\n```\n\n" +
		"## Encouragement\nKeep coding, superstar!\n"

	r := ParseCodeReview(answer)
	assert.Equal(t, "This code greets the user.", r.Summary)
	assert.Equal(t, 8, r.Score)
	assert.Equal(t, []string{"Clear names", "Short and simple"}, r.Strengths)
	assert.Equal(t, []string{"Add comments so others understand"}, r.Improvements)
	assert.Equal(t, []string{}, r.Bugs)
	assert.Equal(t, "name = input('Name? ')\nprint(f'Hi {name}')", r.ImprovedCode)
	assert.Equal(t, "Keep coding, superstar!", r.Encouragement)
}

func TestParseCodeReviewScore(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{name: "slash", answer: "## Score\n7/10", want: 7},
		{name: "out of", answer: "## Score\nI give it 9 out of 10!", want: 9},
		{name: "bare number in score section", answer: "## Rating\n6", want: 6},
		{name: "clamped", answer: "## Score\n15/10", want: 10},
		{name: "decimal rounds", answer: "## Score\n7.5/10", want: 8},
		{name: "inline in summary", answer: "## Summary\nSolid work, 5/10 overall.", want: 5},
		{name: "missing", answer: "## Summary\nNice.", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCodeReview(tt.answer).Score)
		})
	}
}

func TestParseCodeReviewListsBugs(t *testing.T) {
	r := ParseCodeReview("## Bugs\n- Off by one in the loop\n- Missing colon\n")
	assert.Equal(t, []string{"Off by one in the loop", "Missing colon"}, r.Bugs)
	assert.Equal(t, []string{}, r.Strengths)
}

func TestParseProjectIdea(t *testing.T) {
	answer := "# 🚀 Space Pet Simulator\n\n" +
		"## Description\nBuild a virtual pet that lives on Mars.\n\n" +
		"## Features\n- Feed your pet\n- Day and night cycle\n\n" +
		"## Steps\n### Step 1: Setup\n1. Create the project\n2. Draw the pet\n\n" +
		"## Concepts You'll Learn\nVariables, loops, events\n\n" +
		"## Estimated Time\n**2-3 hours**\n"

	p := ParseProjectIdea(answer)
	assert.Equal(t, "Space Pet Simulator", p.Title)
	assert.Equal(t, "Build a virtual pet that lives on Mars.", p.Description)
	assert.Equal(t, []string{"Feed your pet", "Day and night cycle"}, p.Features)
	assert.Equal(t, []string{"Create the project", "Draw the pet"}, p.Steps)
	assert.Equal(t, []string{"Variables", "loops", "events"}, p.Concepts)
	assert.Equal(t, "2-3 hours", p.EstimatedTime)
}

func TestParseProjectIdeaKeepsDescriptionLines(t *testing.T) {
	answer := "## Title\nRobot Race\n\n## Description\nA robot game.\nTime to code: you will build it in Scratch.\n\n" +
		"## Estimated Time\n1 hour"

	p := ParseProjectIdea(answer)
	assert.Equal(t, "Robot Race", p.Title)
	assert.Equal(t, "A robot game.\nTime to code: you will build it in Scratch.", p.Description)
	assert.Equal(t, "1 hour", p.EstimatedTime)
}

func TestParseHeadingClosingHashes(t *testing.T) {
	assert.Equal(t, "Learning C#", ParseProjectIdea("# Learning C#\n\n## Description\nBuild a calculator.").Title)
	assert.Equal(t, "Space Game", ParseProjectIdea("## Space Game ##\n\n## Description\nFly!").Title)
}

func TestParseProjectIdeaMissingSections(t *testing.T) {
	p := ParseProjectIdea("**Title:** Weather Bot\n\nIt tells you if you need an umbrella.")

	assert.Equal(t, "Weather Bot", p.Title)
	assert.Contains(t, p.Description, "umbrella")
	assert.Equal(t, []string{}, p.Features)
	assert.Equal(t, []string{}, p.Steps)
	assert.Equal(t, []string{}, p.Concepts)
	assert.Empty(t, p.EstimatedTime)
}

func TestNormalizeHeading(t *testing.T) {
	assert.Equal(t, "fun fact", normalizeHeading("🎉 **Fun Fact!**"))
	assert.Equal(t, "key points", normalizeHeading("3. Key Points"))
	assert.Equal(t, "concepts you ll learn", normalizeHeading("Concepts You'll Learn"))
}
