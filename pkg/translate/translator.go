package translate

import (
	"context"
	"fmt"
	"strings"
)

// Engine is the narrow slice of a provider client the translator needs.
type Engine interface {
	RunTask(ctx context.Context, instructions string, input string) (string, error)
}

// Translator turns text into a target language via a language engine.
type Translator struct {
	engine Engine
}

func NewTranslator(engine Engine) *Translator {
	return &Translator{engine: engine}
}

// Translate returns the text in the target language, whitespace-trimmed.
func (t *Translator) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	translation, err := t.engine.RunTask(ctx, guidelines(targetLanguage), text)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(translation), nil
}

// guidelines builds the fixed instruction template. Few-shot examples keep
// small models from answering the text instead of translating it.
func guidelines(targetLanguage string) string {
	return fmt.Sprintf(`You are a translator. Follow these examples exactly:

Example 1:
Input: "Hello"
Output: Bonjour

Example 2:
Input: "Good morning"
Output: Bonjour

Example 3:
Input: "How are you?"
Output: Comment allez-vous ?

Now translate to %s. Respond with ONLY the translation:`, targetLanguage)
}
