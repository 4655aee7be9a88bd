package flashcard

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, text string) []Flashcard {
	t.Helper()
	cards, err := Extract(text, DefaultConfig())
	require.NoError(t, err)
	return cards
}

func TestExtract_ExplicitQA(t *testing.T) {
	cards := extract(t, "Q: What is Docker?\nA: A containerization platform.")

	require.Len(t, cards, 1)
	assert.Equal(t, "What is Docker?", cards[0].Question)
	assert.Equal(t, "A containerization platform.", cards[0].Answer)
	assert.Equal(t, Easy, cards[0].Difficulty)
}

func TestExtract_Definition(t *testing.T) {
	cards := extract(t, "**API**: A set of rules for software communication.")

	require.Len(t, cards, 1)
	assert.Equal(t, "What is API?", cards[0].Question)
	assert.Equal(t, "A set of rules for software communication.", cards[0].Answer)
}

func TestExtract_DefinitionVariants(t *testing.T) {
	text := strings.Join([]string{
		"**Goroutine:** A lightweight thread managed by the Go runtime.",
		"__Channel__: A typed conduit between goroutines.",
		"Mutex: A mutual exclusion lock.",
		"Note: this line is not a definition.",
		"This sentence has far too many words before: the colon.",
	}, "\n")
	cards := extract(t, text)

	var qs []string
	for _, c := range cards {
		qs = append(qs, c.Question)
	}
	assert.Equal(t, []string{"What is Goroutine?", "What is Channel?", "What is Mutex?"}, qs)
}

func TestExtract_EnumeratedLabelsAreNotTerms(t *testing.T) {
	text := strings.Join([]string{
		"Step 1: Install the docker engine on the host",
		"Phase 2b: Roll the change out to staging",
		"Stage Two: Verify the dashboards",
		"Kubernetes: A container orchestrator.",
	}, "\n")
	cards := extract(t, text)

	require.Len(t, cards, 1)
	assert.Equal(t, "What is Kubernetes?", cards[0].Question)
}

func TestExtract_ShortInput(t *testing.T) {
	cards := extract(t, "Hi")
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestExtract_DuplicateQuestions(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Q: What is Go?\nA: A programming language, copy %d.\n\n", i)
	}
	cards := extract(t, b.String())

	require.Len(t, cards, 1)
	assert.Equal(t, "A programming language, copy 0.", cards[0].Answer)
}

func TestExtract_DedupIgnoresCaseAndSpacing(t *testing.T) {
	text := "Q: What is   Go?\nA: A language.\n\nQ: what IS go?\nA: Something else."
	cards := extract(t, text)
	require.Len(t, cards, 1)
	assert.Equal(t, "A language.", cards[0].Answer)
}

func TestExtract_MultilineAnswerAndGap(t *testing.T) {
	text := "**Q:** Which ports does the service use?\n\nA: 8080 for HTTP\n9090 for metrics\n\nTrailing prose."
	cards := extract(t, text)

	require.Len(t, cards, 1)
	assert.Equal(t, "Which ports does the service use?", cards[0].Question)
	assert.Equal(t, "8080 for HTTP\n9090 for metrics", cards[0].Answer)
}

func TestExtract_InlinePair(t *testing.T) {
	cards := extract(t, "Q: What does TCP stand for? A: Transmission Control Protocol.")
	require.Len(t, cards, 1)
	assert.Equal(t, "What does TCP stand for?", cards[0].Question)
	assert.Equal(t, "Transmission Control Protocol.", cards[0].Answer)
}

func TestExtract_InlinePairLowercaseMarker(t *testing.T) {
	for _, text := range []string{
		"Q: What is DNS? a: The internet's name service.",
		"q: What is DNS? answer: The internet's name service.",
	} {
		cards := extract(t, text)
		require.Len(t, cards, 1, text)
		assert.Equal(t, "What is DNS?", cards[0].Question)
		assert.Equal(t, "The internet's name service.", cards[0].Answer)
	}
}

func TestExtract_UnansweredQuestionDropped(t *testing.T) {
	cards := extract(t, "Q: What is missing here?\n\nQ: What is present?\nA: This answer.")
	require.Len(t, cards, 1)
	assert.Equal(t, "What is present?", cards[0].Question)
}

func TestExtract_ListBased(t *testing.T) {
	text := "1. What are Go's basic types?\n  - bool\n  - string\n  - int\n2. Unrelated item"
	cards := extract(t, text)

	require.Len(t, cards, 1)
	assert.Equal(t, "What are Go's basic types?", cards[0].Question)
	assert.Equal(t, "bool; string; int", cards[0].Answer)
}

func TestExtract_SectionHeading(t *testing.T) {
	text := "## Kubernetes objects\n\n- Pods run containers\n- Services expose pods\n"
	cards := extract(t, text)

	require.Len(t, cards, 1)
	assert.Equal(t, "What are the key points of Kubernetes objects?", cards[0].Question)
	assert.Equal(t, "Pods run containers; Services expose pods", cards[0].Answer)
}

func TestExtract_HeadingQuestionKeptVerbatim(t *testing.T) {
	cards := extract(t, "### Why use channels?\n- Share memory by communicating\n")
	require.Len(t, cards, 1)
	assert.Equal(t, "Why use channels?", cards[0].Question)
}

func TestExtract_HeadingYieldsToOverlappingCandidates(t *testing.T) {
	text := "## Glossary\n- **Latency**: Time to first byte.\n- **Throughput**: Requests per second.\n"
	cards := extract(t, text)

	var qs []string
	for _, c := range cards {
		qs = append(qs, c.Question)
	}
	assert.Equal(t, []string{"What is Latency?", "What is Throughput?"}, qs)
}

func TestExtract_SourceOrderAcrossStrategies(t *testing.T) {
	text := strings.Join([]string{
		"**Alpha**: The first letter.",
		"",
		"Q: What comes second?",
		"A: Beta follows alpha.",
		"",
		"**Gamma**: The third letter.",
	}, "\n")
	cards := extract(t, text)

	require.Len(t, cards, 3)
	assert.Equal(t, "What is Alpha?", cards[0].Question)
	assert.Equal(t, "What comes second?", cards[1].Question)
	assert.Equal(t, "What is Gamma?", cards[2].Question)
}

func TestExtract_MaxCards(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Q: What is item %d?\nA: Item number %d.\n\n", i, i)
	}
	cfg := DefaultConfig()
	cfg.MaxCards = 3

	cards, err := Extract(b.String(), cfg)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "What is item 0?", cards[0].Question)
	assert.Equal(t, "What is item 2?", cards[2].Question)
}

func TestExtract_LengthBounds(t *testing.T) {
	long := strings.Repeat("x", 2001)
	text := "Q: What is short?\nA: ok\n\nQ: What is long?\nA: " + long + "\n\nQ: What is fine?\nA: Just right."
	cards := extract(t, text)

	require.Len(t, cards, 1)
	assert.Equal(t, "What is fine?", cards[0].Question)
	for _, c := range cards {
		assert.GreaterOrEqual(t, len([]rune(c.Question)), 5)
		assert.LessOrEqual(t, len([]rune(c.Answer)), 2000)
	}
}

func TestExtract_RejectsPlaceholderOnlyAnswers(t *testing.T) {
	text := "Password: [REDACTED_CREDENTIAL]\nQ: Who maintains the database?\nA: [REDACTED_EMAIL]"
	cards := extract(t, text)
	assert.Empty(t, cards)
}

func TestExtract_CRLF(t *testing.T) {
	cards := extract(t, "Q: What is Docker?\r\nA: A containerization platform.\r\n")
	require.Len(t, cards, 1)
	assert.Equal(t, "A containerization platform.", cards[0].Answer)
}

func TestExtract_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero max cards", func(c *Config) { c.MaxCards = 0 }},
		{"negative max cards", func(c *Config) { c.MaxCards = -1 }},
		{"max below min question", func(c *Config) { c.MaxQuestionLen = 2 }},
		{"max below min answer", func(c *Config) { c.MinAnswerLen = 50; c.MaxAnswerLen = 10 }},
		{"zero min question", func(c *Config) { c.MinQuestionLen = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			_, err := Extract("Q: What is Docker?\nA: A containerization platform.", cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "# Topics\n- one\n- two\n\nQ: What is one?\nA: The first.\n\n**Two**: The second."
	a := extract(t, text)
	b := extract(t, text)
	assert.Equal(t, a, b)
}

func TestExtract_ConcurrentUse(t *testing.T) {
	text := "# Topics\n- one\n- two\n\nQ: What is one?\nA: The first.\n\n**Two**: The second."
	want := extract(t, text)

	var wg sync.WaitGroup
	got := make([][]Flashcard, 32)
	errs := make([]error, len(got))
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = Extract(text, DefaultConfig())
		}(i)
	}
	wg.Wait()
	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want, got[i])
	}
}

func TestOverrides_Apply(t *testing.T) {
	n := 5
	cfg := Overrides{MaxCards: &n}.Apply(DefaultConfig())
	assert.Equal(t, 5, cfg.MaxCards)
	assert.Equal(t, DefaultConfig().MaxAnswerLen, cfg.MaxAnswerLen)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate("What is 2+2?", "4", cfg))
	assert.ErrorIs(t, Validate("  ", "4", cfg), ErrInvalidCard)
	assert.ErrorIs(t, Validate("What?", "", cfg), ErrInvalidCard)
	assert.ErrorIs(t, Validate("What?", strings.Repeat("a", 2001), cfg), ErrInvalidCard)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Normalize("What  is\tGo?"), Normalize("what is go?"))
	assert.NotEqual(t, Normalize("What is Go?"), Normalize("What is Rust?"))
}
