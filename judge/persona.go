package judge

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Provider identifies the model backend a council seat is bound to.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// Persona is one council seat: a fixed evaluation rubric bound to a provider.
type Persona struct {
	JudgeID      string
	JudgeName    string
	Provider     Provider
	SystemPrompt string
}

// rubric prompts per archetype. every prompt instructs the model to answer
// with a json object {"vote": bool, "reasoning": string} so that the
// normalizer has a fighting chance of a strict parse.
const votingInstruction = `Respond with a single JSON object of the form ` +
	`{"vote": true|false, "reasoning": "<one paragraph>"} and nothing else. ` +
	`Vote true only if the submission meets your rubric.`

var archetypePrompts = map[string]string{
	"technical": "You are a rigorous technical reviewer on a work-verification council. " +
		"Judge whether the submitted work is functional, complete and of sound engineering " +
		"quality. Penalize broken links, placeholder content and work that does not match " +
		"the submission notes. " + votingInstruction,
	"impact": "You are an impact-focused reviewer on a work-verification council. " +
		"Judge whether the submitted work delivers real, demonstrable value to its intended " +
		"audience. Reward measurable outcomes and clear evidence of effort; reject vague or " +
		"unverifiable claims. " + votingInstruction,
	"creative": "You are a creativity-focused reviewer on a work-verification council. " +
		"Judge the originality and craft of the submitted work. Reward novel approaches and " +
		"polish; reject derivative or low-effort output. " + votingInstruction,
}

// ArchetypePrompt returns the fixed rubric for a known archetype.
func ArchetypePrompt(archetype string) (string, bool) {
	p, ok := archetypePrompts[archetype]
	return p, ok
}

type councilFile struct {
	Seats []seatEntry `toml:"seat"`
}

type seatEntry struct {
	JudgeID      string `toml:"judge_id"`
	JudgeName    string `toml:"judge_name"`
	Provider     string `toml:"provider"`
	Archetype    string `toml:"archetype"`
	SystemPrompt string `toml:"system_prompt"`
}

// LoadCouncil reads council seats from a toml file. A seat may either name a
// built-in archetype or carry an inline system_prompt; inline wins.
func LoadCouncil(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read council file: %w", err)
	}
	return parseCouncil(data)
}

func parseCouncil(data []byte) ([]Persona, error) {
	var file councilFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse council file: %w", err)
	}
	if len(file.Seats) == 0 {
		return nil, fmt.Errorf("council file defines no seats")
	}

	seats := make([]Persona, 0, len(file.Seats))
	seen := map[string]bool{}
	for i, entry := range file.Seats {
		if entry.JudgeID == "" {
			return nil, fmt.Errorf("seat %d: judge_id is required", i)
		}
		if seen[entry.JudgeID] {
			return nil, fmt.Errorf("seat %d: duplicate judge_id %q", i, entry.JudgeID)
		}
		seen[entry.JudgeID] = true

		provider := Provider(entry.Provider)
		if !provider.Valid() {
			return nil, fmt.Errorf("seat %q: unknown provider %q", entry.JudgeID, entry.Provider)
		}

		prompt := entry.SystemPrompt
		if prompt == "" {
			p, ok := ArchetypePrompt(entry.Archetype)
			if !ok {
				return nil, fmt.Errorf("seat %q: unknown archetype %q and no system_prompt",
					entry.JudgeID, entry.Archetype)
			}
			prompt = p
		}

		name := entry.JudgeName
		if name == "" {
			name = entry.JudgeID
		}

		seats = append(seats, Persona{
			JudgeID:      entry.JudgeID,
			JudgeName:    name,
			Provider:     provider,
			SystemPrompt: prompt,
		})
	}
	return seats, nil
}

// DefaultCouncil is the three-seat council used when no council file is
// configured: one archetype per provider so seats fail independently.
func DefaultCouncil() []Persona {
	return []Persona{
		{
			JudgeID:      "technical",
			JudgeName:    "Technical Reviewer",
			Provider:     ProviderOpenAI,
			SystemPrompt: archetypePrompts["technical"],
		},
		{
			JudgeID:      "impact",
			JudgeName:    "Impact Reviewer",
			Provider:     ProviderAnthropic,
			SystemPrompt: archetypePrompts["impact"],
		},
		{
			JudgeID:      "creative",
			JudgeName:    "Creative Reviewer",
			Provider:     ProviderGemini,
			SystemPrompt: archetypePrompts["creative"],
		},
	}
}
