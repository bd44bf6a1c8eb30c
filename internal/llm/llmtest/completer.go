// Package llmtest provides a scripted llm.Completer for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"
)

// Prompt is one recorded completion request
type Prompt struct {
	System string
	User   string
	JSON   bool
}

// Completer replays queued responses in order. When the queue is empty it
// returns an error. It is safe for concurrent use.
type Completer struct {
	mu        sync.Mutex
	disabled  bool
	responses []response
	prompts   []Prompt
}

type response struct {
	text string
	err  error
}

// New creates an enabled Completer with no queued responses
func New() *Completer {
	return &Completer{}
}

// Disabled creates a Completer that reports not enabled
func Disabled() *Completer {
	return &Completer{disabled: true}
}

// Respond queues a successful completion
func (c *Completer) Respond(text string) *Completer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, response{text: text})
	return c
}

// Fail queues a failed completion
func (c *Completer) Fail(err error) *Completer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, response{err: err})
	return c
}

// IsEnabled implements llm.Completer
func (c *Completer) IsEnabled() bool {
	return !c.disabled
}

// Complete implements llm.Completer
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.next(Prompt{System: systemPrompt, User: userPrompt})
}

// CompleteJSON implements llm.Completer
func (c *Completer) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.next(Prompt{System: systemPrompt, User: userPrompt, JSON: true})
}

// Prompts returns the recorded requests in order
func (c *Completer) Prompts() []Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

func (c *Completer) next(p Prompt) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, p)
	if len(c.responses) == 0 {
		return "", fmt.Errorf("llmtest: no response queued")
	}
	r := c.responses[0]
	c.responses = c.responses[1:]
	return r.text, r.err
}
