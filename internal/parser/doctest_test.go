package parser

import "testing"

func TestParseExamples(t *testing.T) {
	text := `Summary line.

>>> import os
>>> os.getcwd()
'/home'

    >>> for i in range(2):
    ...     print(i)
    0
    1
`
	examples := parseExamples(text)
	if len(examples) != 3 {
		t.Fatalf("examples = %d, want 3", len(examples))
	}

	if examples[0].Source != "import os\n" || examples[0].Line != 2 {
		t.Errorf("example 0 = %+v", examples[0])
	}
	if examples[1].Source != "os.getcwd()\n" || examples[1].Line != 3 {
		t.Errorf("example 1 = %+v", examples[1])
	}
	if examples[2].Source != "for i in range(2):\n    print(i)\n" || examples[2].Line != 6 {
		t.Errorf("example 2 = %+v", examples[2])
	}
}

func TestParseExamples_NoExamples(t *testing.T) {
	if got := parseExamples("Just prose.\nNothing else.\n"); got != nil {
		t.Errorf("examples = %v, want none", got)
	}
}

func TestParseExamples_BarePrompt(t *testing.T) {
	examples := parseExamples(">>> x = 1\n>>>\n")
	if len(examples) != 2 {
		t.Fatalf("examples = %d, want 2", len(examples))
	}
	if examples[1].Source != "\n" {
		t.Errorf("bare prompt source = %q", examples[1].Source)
	}
}
