package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiRequestTimeout = 10 * time.Second
)

// Gemini calls the Google generative language REST API to produce topics,
// chain words and word-validation verdicts.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini oracle for the given model (e.g. "gemini-pro")
func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: geminiRequestTimeout},
	}
}

// NewGeminiWithBaseURL is used by tests to point the client at a stub server
func NewGeminiWithBaseURL(apiKey, model, baseURL string) *Gemini {
	g := NewGemini(apiKey, model)
	g.baseURL = baseURL
	return g
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// generateContent sends one prompt and returns the first candidate's text
func (g *Gemini) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	ctx, cancel := context.WithTimeout(ctx, geminiRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func (g *Gemini) RandomTopic(ctx context.Context) (string, error) {
	prompt := `Generate a single creative topic for a word game.
The topic should be something that has many related words.
Examples: fruits, animals, programming languages, movie genres, etc.
Respond with just the topic name, nothing else.`

	text, err := g.generateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	topic := strings.ToLower(text)
	if len(strings.Fields(topic)) > 3 || len(topic) <= 2 {
		return "", fmt.Errorf("gemini produced an unusable topic: %q", topic)
	}
	return topic, nil
}

func (g *Gemini) GenerateWord(ctx context.Context, topic, lastWord string, usedWords []string) (string, error) {
	lastWord = strings.ToLower(strings.TrimSpace(lastWord))

	var prompt string
	if lastWord != "" {
		startChar := lastWord[len(lastWord)-1:]
		usedList := "none used yet"
		if len(usedWords) > 0 {
			usedList = strings.Join(usedWords, ", ")
		}
		prompt = fmt.Sprintf(`You are playing a Shiritori word game about "%s".
Generate a word that:
1. Starts with the letter "%s"
2. Is related to the topic "%s" (can be loosely related)
3. Has not been used: %s
4. Is a real word

Respond with just the word, nothing else.`, topic, strings.ToUpper(startChar), topic, usedList)
	} else {
		prompt = fmt.Sprintf(`You are starting a Shiritori word game about "%s".
Generate a word that:
1. Is related to the topic "%s" (can be loosely related)
2. Is a real word
3. Would be a good starting word for this topic

Respond with just the word, nothing else.`, topic, topic)
	}

	text, err := g.generateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	word := strings.ToLower(text)
	if err := checkGeneratedWord(word, lastWord, usedWords); err != nil {
		return "", err
	}
	return word, nil
}

// checkGeneratedWord sanity-checks a model answer before trusting it
func checkGeneratedWord(word, lastWord string, usedWords []string) error {
	if len(word) < 2 || !isAlpha(word) {
		return fmt.Errorf("gemini produced an unusable word: %q", word)
	}
	if lastWord != "" && word[0] != lastWord[len(lastWord)-1] {
		return fmt.Errorf("gemini word %q does not start with %q", word, string(lastWord[len(lastWord)-1]))
	}
	for _, used := range usedWords {
		if strings.EqualFold(used, word) {
			return fmt.Errorf("gemini repeated the used word %q", word)
		}
	}
	return nil
}

func (g *Gemini) ValidateWord(ctx context.Context, word, topic string) (ValidationResult, error) {
	word = strings.ToLower(strings.TrimSpace(word))

	prompt := fmt.Sprintf(`Is "%s" a real English word that exists in the dictionary?

Rules:
- Check if this is a legitimate English word
- Accept common words, proper nouns, and valid English terms
- Reject made-up words, nonsense, or gibberish
- Accept plurals, verb forms, and common variations

Word to check: "%s"

Respond with only "YES" if it's a real English word, or "NO" if it's not a real word.`, word, word)

	text, err := g.generateContent(ctx, prompt)
	if err != nil {
		return ValidationResult{}, err
	}

	// The model sometimes decorates its answer; look for the verdict token
	if strings.Contains(strings.ToUpper(text), "YES") {
		return ValidationResult{Valid: true}, nil
	}
	return ValidationResult{
		Valid:  false,
		Reason: fmt.Sprintf("'%s' is not a recognized English word", word),
	}, nil
}
