package parser

import "strings"

// docExample is one interactive-transcript block found in a docstring: the
// source behind the >>> and ... prompts, plus the 0-based line offset of the
// first prompt within the docstring.
type docExample struct {
	Source string
	Line   int
}

// parseExamples splits a docstring into transcript examples. A line whose
// first non-blank text is ">>>" starts an example; immediately following
// "..." lines continue its source; anything else up to a blank line is the
// expected output and is skipped.
func parseExamples(text string) []docExample {
	lines := strings.Split(text, "\n")
	var examples []docExample

	i := 0
	for i < len(lines) {
		payload, ok := promptPayload(lines[i], ">>>")
		if !ok {
			i++
			continue
		}
		start := i
		source := []string{payload}
		i++
		for i < len(lines) {
			cont, ok := promptPayload(lines[i], "...")
			if !ok {
				break
			}
			source = append(source, cont)
			i++
		}
		// Skip expected output up to a blank line or the next prompt.
		for i < len(lines) {
			if strings.TrimSpace(lines[i]) == "" {
				break
			}
			if _, ok := promptPayload(lines[i], ">>>"); ok {
				break
			}
			i++
		}
		examples = append(examples, docExample{
			Source: strings.Join(source, "\n") + "\n",
			Line:   start,
		})
	}

	return examples
}

// promptPayload returns the text after a ">>> " or "... " prompt. A bare
// prompt with no trailing space yields an empty payload.
func promptPayload(line, prompt string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, prompt) {
		return "", false
	}
	rest := trimmed[len(prompt):]
	if rest == "" {
		return "", true
	}
	if rest[0] != ' ' {
		return "", false
	}
	return rest[1:], true
}
