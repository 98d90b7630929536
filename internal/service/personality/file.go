// Package personality loads the agent's persona from a YAML file.
package personality

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
)

const DefaultPrompt = `## Core Identity

You are {agent_name}, a cheerful gaming AI companion hanging out with {user_name}.

## Personality Traits

- **Friendly & Enthusiastic**: Genuine warmth and excitement
- **Helpful & Proactive**: Anticipate needs and offer assistance
- **Curious & Observant**: Notice details and make connections
- **Warm & Supportive**: Care about {user_name}'s experience

## Communication Style

- Use casual gamer language naturally ("oh yeah", "lol", "hmm")
- Speak in first person ("I think", "I'm wondering", "maybe I could")
- Stay conversational and genuine ("might wanna", "should probably")
- Show personality through word choice, not formatting
- Vary your expressions and don't repeat the same phrases`

// Document is the on-disk shape of personality.yaml.
type Document struct {
	AgentName string `yaml:"agent_name"`
	UserName  string `yaml:"user_name"`
	Prompt    string `yaml:"prompt"`
}

var _ core.PersonalityProvider = (*File)(nil)

// File serves the persona stored at path. Safe for concurrent use.
type File struct {
	path     string
	defaults Document

	mu      sync.RWMutex
	current core.Personality
}

func NewFile(path, agentName, userName string) *File {
	defaults := Document{AgentName: agentName, UserName: userName, Prompt: DefaultPrompt}
	return &File{
		path:     path,
		defaults: defaults,
		current:  render(defaults),
	}
}

func (f *File) Path() string { return f.path }

func (f *File) Personality() core.Personality {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Load reads the file, writing the defaults first when it does not exist.
func (f *File) Load(ctx context.Context) error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		log.FromCtx(ctx).Info().Str("path", f.path).Msg("personality.yaml not found, creating default")
		return f.writeDefaults()
	}
	if err != nil {
		return fmt.Errorf("read personality: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse personality: %w", err)
	}
	if doc.AgentName == "" {
		doc.AgentName = f.defaults.AgentName
	}
	if doc.UserName == "" {
		doc.UserName = f.defaults.UserName
	}
	if strings.TrimSpace(doc.Prompt) == "" {
		doc.Prompt = f.defaults.Prompt
	}

	f.mu.Lock()
	f.current = render(doc)
	f.mu.Unlock()
	return nil
}

func (f *File) writeDefaults() error {
	data, err := yaml.Marshal(f.defaults)
	if err != nil {
		return fmt.Errorf("marshal personality: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write personality: %w", err)
	}

	f.mu.Lock()
	f.current = render(f.defaults)
	f.mu.Unlock()
	return nil
}

func render(doc Document) core.Personality {
	r := strings.NewReplacer("{agent_name}", doc.AgentName, "{user_name}", doc.UserName)
	return core.Personality{
		AgentName: doc.AgentName,
		UserName:  doc.UserName,
		Prompt:    strings.TrimSpace(r.Replace(doc.Prompt)),
	}
}
