package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"codequest/internal/models"
)

var (
	hashHeadingRe = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)
	boldHeadingRe = regexp.MustCompile(`^\s*(?:\*\*|__)([^*_]+?)(?:\*\*|__)\s*(.*)$`)
	plainLabelRe  = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z '’]{1,40}):\s*(.*)$`)
	numberingRe   = regexp.MustCompile(`^\s*\d+\s*[.):-]\s*`)
	bulletRe      = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])\s+(.*)$`)
	scoreRe       = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)\s*(?:/|out of)\s*10\b`)
	bareNumberRe  = regexp.MustCompile(`\b(\d{1,2}(?:\.\d+)?)\b`)
)

// Weakest heading level; bold and plain labels rank below every # heading.
const labelHeadingLevel = 7

var (
	explanationTitleLabels   = []string{"title", "concept name", "concept"}
	explanationBodyLabels    = []string{"explanation", "simple explanation", "what is it", "what is", "how it works", "description"}
	explanationAnalogyLabels = []string{"analogy", "real life example", "real world example", "think of it like", "think of it", "imagine"}
	explanationCodeLabels    = []string{"code example", "example code", "try it", "example", "code"}
	explanationFunFactLabels = []string{"fun fact", "did you know", "bonus fact"}
	explanationPointLabels   = []string{"key points", "key takeaways", "takeaways", "remember", "quick recap", "recap", "summary"}

	reviewSummaryLabels       = []string{"summary", "overview", "overall feedback", "what your code does", "feedback"}
	reviewScoreLabels         = []string{"score", "rating", "grade"}
	reviewStrengthLabels      = []string{"strengths", "what you did well", "what went well", "good things", "positives"}
	reviewImprovementLabels   = []string{"improvements", "suggestions", "areas to improve", "things to improve", "how to improve", "tips", "next steps"}
	reviewBugLabels           = []string{"bugs", "errors", "issues", "problems", "mistakes"}
	reviewImprovedCodeLabels  = []string{"improved code", "better code", "fixed code", "corrected code", "improved version", "updated code", "refactored code"}
	reviewEncouragementLabels = []string{"encouragement", "keep going", "final thoughts", "motivation", "you ve got this"}

	ideaTitleLabels       = []string{"title", "project title", "project name", "name"}
	ideaDescriptionLabels = []string{"description", "overview", "about", "the idea", "what you ll build", "summary"}
	ideaFeatureLabels     = []string{"features", "key features", "cool features", "what it does"}
	ideaStepLabels        = []string{"steps", "build steps", "how to build", "step by step", "instructions", "getting started", "plan"}
	ideaConceptLabels     = []string{"concepts you ll learn", "concepts", "what you ll learn", "you will learn", "skills", "learning goals"}
	ideaTimeLabels        = []string{"estimated time", "time needed", "duration", "time"}
)

// ParseExplanation turns a markdown concept explanation into a Concept. Missing sections
// leave fields empty; unstructured answers become the explanation text.
func ParseExplanation(text, topic string) models.Concept {
	doc := parseMarkdownSections(text, explanationTitleLabels, explanationBodyLabels, explanationAnalogyLabels,
		explanationCodeLabels, explanationFunFactLabels, explanationPointLabels)

	c := models.Concept{Topic: topic, KeyPoints: []string{}}
	if title, ok := doc.find(explanationTitleLabels...); ok {
		c.Title = firstLine(title)
	}
	c.Explanation, _ = doc.find(explanationBodyLabels...)
	c.Analogy, _ = doc.find(explanationAnalogyLabels...)
	if code, ok := doc.find(explanationCodeLabels...); ok {
		c.CodeExample, c.CodeLanguage = firstCodeBlock(code)
	}
	if c.CodeExample == "" {
		c.CodeExample, c.CodeLanguage = firstCodeBlock(text)
	}
	c.FunFact, _ = doc.find(explanationFunFactLabels...)
	if points, ok := doc.find(explanationPointLabels...); ok {
		c.KeyPoints = listItems(points)
	}

	if c.Title == "" {
		c.Title = doc.title
	}
	if c.Title == "" {
		c.Title = strings.TrimSpace(topic)
	}
	if c.Explanation == "" {
		c.Explanation = doc.leftover()
	}
	return c
}

// ParseCodeReview turns a markdown code review into a CodeReview. Score is clamped to 0..10
// and 0 means the answer carried no score.
func ParseCodeReview(text string) models.CodeReview {
	doc := parseMarkdownSections(text, reviewSummaryLabels, reviewScoreLabels, reviewStrengthLabels,
		reviewImprovementLabels, reviewBugLabels, reviewImprovedCodeLabels, reviewEncouragementLabels)

	r := models.CodeReview{Strengths: []string{}, Improvements: []string{}, Bugs: []string{}}
	r.Summary, _ = doc.find(reviewSummaryLabels...)
	if scoreText, ok := doc.find(reviewScoreLabels...); ok {
		r.Score = parseScore(scoreText, true)
	}
	if r.Score == 0 {
		r.Score = parseScore(text, false)
	}
	if s, ok := doc.find(reviewStrengthLabels...); ok {
		r.Strengths = listItems(s)
	}
	if s, ok := doc.find(reviewImprovementLabels...); ok {
		r.Improvements = listItems(s)
	}
	if s, ok := doc.find(reviewBugLabels...); ok {
		r.Bugs = dropNoneItems(listItems(s))
	}
	if s, ok := doc.find(reviewImprovedCodeLabels...); ok {
		r.ImprovedCode, _ = firstCodeBlock(s)
	}
	r.Encouragement, _ = doc.find(reviewEncouragementLabels...)

	if r.Summary == "" {
		r.Summary = doc.leftover()
	}
	return r
}

// ParseProjectIdea turns a markdown project suggestion into a ProjectIdea.
func ParseProjectIdea(text string) models.ProjectIdea {
	doc := parseMarkdownSections(text, ideaTitleLabels, ideaDescriptionLabels, ideaFeatureLabels,
		ideaStepLabels, ideaConceptLabels, ideaTimeLabels)

	p := models.ProjectIdea{Features: []string{}, Steps: []string{}, Concepts: []string{}}
	if title, ok := doc.find(ideaTitleLabels...); ok {
		p.Title = firstLine(title)
	}
	p.Description, _ = doc.find(ideaDescriptionLabels...)
	if s, ok := doc.find(ideaFeatureLabels...); ok {
		p.Features = listItems(s)
	}
	if s, ok := doc.find(ideaStepLabels...); ok {
		p.Steps = listItems(s)
	}
	if s, ok := doc.find(ideaConceptLabels...); ok {
		p.Concepts = splitConcepts(listItems(s))
	}
	if s, ok := doc.find(ideaTimeLabels...); ok {
		p.EstimatedTime = firstLine(s)
	}

	if p.Title == "" {
		p.Title = doc.title
	}
	if p.Description == "" {
		p.Description = doc.leftover()
	}
	return p
}

type mdSection struct {
	key   string
	level int
	lines []string
}

type mdDocument struct {
	// title is the first heading that is not one of the expected labels.
	title    string
	preamble []string
	sections []mdSection
	labels   []string
}

// parseMarkdownSections splits text on headings. Three heading forms are recognized:
// "# Heading", a line that is only bold text ("**Strengths**"), and "Label: value" or
// "**Label:** value" when Label is one of the expected labels. A plain "Label:" line only
// starts a section before any heading or after another label; inside a "#" section it is
// ordinary text. Lines inside fenced code blocks are never headings. Unknown headings
// nested deeper than the current section are kept as content of that section.
func parseMarkdownSections(text string, labelGroups ...[]string) *mdDocument {
	doc := &mdDocument{}
	for _, g := range labelGroups {
		doc.labels = append(doc.labels, g...)
	}

	cur := -1
	appendLine := func(line string) {
		if cur < 0 {
			doc.preamble = append(doc.preamble, line)
			return
		}
		doc.sections[cur].lines = append(doc.sections[cur].lines, line)
	}

	inFence := false
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			appendLine(line)
			continue
		}
		if inFence {
			appendLine(line)
			continue
		}

		plainAllowed := cur < 0 || doc.sections[cur].level == labelHeadingLevel
		heading, rest, level, ok := doc.matchHeading(line, plainAllowed)
		if !ok {
			appendLine(line)
			continue
		}

		key := normalizeHeading(heading)
		known := doc.isKnownLabel(key)
		if !known && cur >= 0 && doc.sections[cur].level < level {
			appendLine(joinNonEmpty(heading, rest, ": "))
			continue
		}
		if !known && doc.title == "" {
			doc.title = trimDecoration(heading)
		}

		doc.sections = append(doc.sections, mdSection{key: key, level: level})
		cur = len(doc.sections) - 1
		if rest != "" {
			doc.sections[cur].lines = append(doc.sections[cur].lines, rest)
		}
	}
	return doc
}

func (d *mdDocument) matchHeading(line string, plainAllowed bool) (heading, rest string, level int, ok bool) {
	if m := hashHeadingRe.FindStringSubmatch(line); m != nil {
		text := stripInline(m[2])
		heading, rest = text, ""
		if label, value, found := strings.Cut(text, ":"); found && d.isKnownLabel(normalizeHeading(label)) {
			heading, rest = strings.TrimSpace(label), strings.TrimSpace(value)
		}
		return heading, rest, len(m[1]), heading != ""
	}

	if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
		inner := strings.TrimSpace(m[1])
		after := strings.TrimSpace(m[2])
		hasColon := strings.HasSuffix(inner, ":") || strings.HasPrefix(after, ":")
		label := strings.TrimSpace(strings.TrimSuffix(inner, ":"))
		value := strings.TrimSpace(strings.TrimPrefix(after, ":"))

		if value == "" {
			// standalone bold line
			return label, "", labelHeadingLevel, label != ""
		}
		if hasColon && d.isKnownLabel(normalizeHeading(label)) {
			return label, value, labelHeadingLevel, true
		}
		return "", "", 0, false
	}

	if !plainAllowed || bulletRe.MatchString(line) {
		return "", "", 0, false
	}
	if m := plainLabelRe.FindStringSubmatch(line); m != nil && d.isExactLabel(normalizeHeading(m[1])) {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), labelHeadingLevel, true
	}
	return "", "", 0, false
}

func (d *mdDocument) isKnownLabel(key string) bool {
	for _, label := range d.labels {
		if key == label || strings.HasPrefix(key, label+" ") {
			return true
		}
	}
	return false
}

func (d *mdDocument) isExactLabel(key string) bool {
	for _, label := range d.labels {
		if key == label {
			return true
		}
	}
	return false
}

// find returns the body of the first non-empty section matching one of the aliases.
// Exact heading matches win over headings that merely contain an alias as whole words.
func (d *mdDocument) find(aliases ...string) (string, bool) {
	for _, exact := range []bool{true, false} {
		for _, alias := range aliases {
			for _, s := range d.sections {
				if exact && s.key != alias {
					continue
				}
				if !exact && !strings.Contains(" "+s.key+" ", " "+alias+" ") {
					continue
				}
				if body := strings.TrimSpace(strings.Join(s.lines, "\n")); body != "" {
					return body, true
				}
			}
		}
	}
	return "", false
}

// leftover is the text to fall back on when the expected section is missing: the
// preamble, or the whole answer without code when there is no preamble.
func (d *mdDocument) leftover() string {
	if pre := strings.TrimSpace(stripCodeBlocks(strings.Join(d.preamble, "\n"))); pre != "" {
		return pre
	}
	var all []string
	for _, s := range d.sections {
		all = append(all, s.lines...)
	}
	return strings.TrimSpace(stripCodeBlocks(strings.Join(all, "\n")))
}

// normalizeHeading lower-cases a heading and drops numbering, emoji and punctuation.
func normalizeHeading(s string) string {
	s = numberingRe.ReplaceAllString(stripInline(s), "")
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func stripInline(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "#"))
	return strings.Trim(s, `"'“”`)
}

// listItems extracts bullet or numbered items. Indented non-bullet lines continue the
// previous item. Without any bullets every non-empty line is an item.
func listItems(body string) []string {
	items := []string{}
	var plain []string
	for _, line := range strings.Split(stripCodeBlocks(body), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if item := stripInline(m[1]); item != "" {
				items = append(items, item)
			}
			continue
		}
		if len(items) > 0 && (strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t")) {
			items[len(items)-1] += " " + stripInline(line)
			continue
		}
		plain = append(plain, stripInline(line))
	}
	if len(items) == 0 {
		for _, p := range plain {
			if p != "" {
				items = append(items, p)
			}
		}
	}
	return items
}

func dropNoneItems(items []string) []string {
	if len(items) != 1 {
		return items
	}
	lower := strings.ToLower(items[0])
	for _, none := range []string{"none", "no bugs", "no errors", "no issues", "no problems", "n/a", "nothing"} {
		if strings.HasPrefix(lower, none) {
			return []string{}
		}
	}
	return items
}

// splitConcepts accepts both a bullet list and a single comma separated line.
func splitConcepts(items []string) []string {
	if len(items) != 1 || !strings.Contains(items[0], ",") {
		return items
	}
	out := []string{}
	for _, part := range strings.Split(items[0], ",") {
		if part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ".")); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// firstCodeBlock returns the contents and info string of the first fenced block.
func firstCodeBlock(text string) (code, lang string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") && !strings.HasPrefix(trimmed, "~~~") {
			continue
		}
		if start < 0 {
			start = i
			lang = strings.ToLower(strings.TrimSpace(trimmed[3:]))
			continue
		}
		return strings.Trim(strings.Join(lines[start+1:i], "\n"), "\n"), lang
	}
	return "", ""
}

func stripCodeBlocks(text string) string {
	var out []string
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func parseScore(text string, allowBare bool) int {
	raw := ""
	if m := scoreRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if allowBare {
		if m := bareNumberRe.FindStringSubmatch(text); m != nil {
			raw = m[1]
		}
	}
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = trimDecoration(stripInline(line)); line != "" {
			return line
		}
	}
	return ""
}

// trimDecoration drops leading emoji and punctuation from a title.
func trimDecoration(s string) string {
	return strings.TrimSpace(strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

func joinNonEmpty(a, b, sep string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	return a + sep + b
}
