package models

import "strings"

// QuestionKind names the answer-choice variant of a question.
type QuestionKind string

const (
	// QuestionKindSingleCorrectChoice carries four options A..D with one correct letter.
	QuestionKindSingleCorrectChoice QuestionKind = "single_correct_choice"
	// QuestionKindBinaryChoice carries two options A..B with one correct letter.
	QuestionKindBinaryChoice QuestionKind = "binary_choice"
)

// OptionLetter labels a single answer option.
type OptionLetter string

const (
	OptionA OptionLetter = "A"
	OptionB OptionLetter = "B"
	OptionC OptionLetter = "C"
	OptionD OptionLetter = "D"
)

// ParseOptionLetter normalises user input such as " b " into an OptionLetter.
func ParseOptionLetter(value string) OptionLetter {
	return OptionLetter(strings.ToUpper(strings.TrimSpace(value)))
}

// Choices is the option payload of a question. The concrete type decides which
// letters must be populated and which correct letters are legal.
type Choices interface {
	Kind() QuestionKind
	Letters() []OptionLetter
	Option(letter OptionLetter) string
	CorrectOption() OptionLetter
	// MissingOptions lists required letters whose text is empty.
	MissingOptions() []OptionLetter
	// ValidCorrect reports whether the correct letter references a populated option.
	ValidCorrect() bool
	sealed()
}

// SingleCorrectChoice is the four-option variant.
type SingleCorrectChoice struct {
	A       string
	B       string
	C       string
	D       string
	Correct OptionLetter
}

func (SingleCorrectChoice) Kind() QuestionKind { return QuestionKindSingleCorrectChoice }

func (SingleCorrectChoice) Letters() []OptionLetter {
	return []OptionLetter{OptionA, OptionB, OptionC, OptionD}
}

func (c SingleCorrectChoice) Option(letter OptionLetter) string {
	switch letter {
	case OptionA:
		return c.A
	case OptionB:
		return c.B
	case OptionC:
		return c.C
	case OptionD:
		return c.D
	}
	return ""
}

func (c SingleCorrectChoice) CorrectOption() OptionLetter { return c.Correct }

func (c SingleCorrectChoice) MissingOptions() []OptionLetter { return missingOptions(c) }

func (c SingleCorrectChoice) ValidCorrect() bool { return validCorrect(c) }

func (SingleCorrectChoice) sealed() {}

// BinaryChoice is the fixed two-option variant.
type BinaryChoice struct {
	A       string
	B       string
	Correct OptionLetter
}

func (BinaryChoice) Kind() QuestionKind { return QuestionKindBinaryChoice }

func (BinaryChoice) Letters() []OptionLetter {
	return []OptionLetter{OptionA, OptionB}
}

func (c BinaryChoice) Option(letter OptionLetter) string {
	switch letter {
	case OptionA:
		return c.A
	case OptionB:
		return c.B
	}
	return ""
}

func (c BinaryChoice) CorrectOption() OptionLetter { return c.Correct }

func (c BinaryChoice) MissingOptions() []OptionLetter { return missingOptions(c) }

func (c BinaryChoice) ValidCorrect() bool { return validCorrect(c) }

func (BinaryChoice) sealed() {}

// NewChoices builds the variant for kind from loosely keyed option text.
// Unknown kinds yield nil.
func NewChoices(kind QuestionKind, options map[OptionLetter]string, correct OptionLetter) Choices {
	switch kind {
	case QuestionKindSingleCorrectChoice:
		return SingleCorrectChoice{
			A:       options[OptionA],
			B:       options[OptionB],
			C:       options[OptionC],
			D:       options[OptionD],
			Correct: correct,
		}
	case QuestionKindBinaryChoice:
		return BinaryChoice{
			A:       options[OptionA],
			B:       options[OptionB],
			Correct: correct,
		}
	}
	return nil
}

func missingOptions(c Choices) []OptionLetter {
	var missing []OptionLetter
	for _, letter := range c.Letters() {
		if strings.TrimSpace(c.Option(letter)) == "" {
			missing = append(missing, letter)
		}
	}
	return missing
}

func validCorrect(c Choices) bool {
	correct := c.CorrectOption()
	for _, letter := range c.Letters() {
		if letter == correct {
			return strings.TrimSpace(c.Option(letter)) != ""
		}
	}
	return false
}
