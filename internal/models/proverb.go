package models

import "strings"

const maxProverbLen = 200

// sentenceEnd is the Japanese full stop that terminates a sentence.
const sentenceEnd = "。"

// Proverb is a saying worth rereading.
type Proverb struct {
	Record `yaml:",inline"`

	Content string `json:"content" yaml:"content"`
}

func (p *Proverb) Validate() error {
	v := ValidationErrors{}
	v.requireText("content", p.Content, maxProverbLen)
	return v.Err()
}

// FirstMessage returns the content up to and including the first full stop.
// Content without a full stop has no first message.
func (p *Proverb) FirstMessage() string {
	i := strings.Index(p.Content, sentenceEnd)
	if i < 0 {
		return ""
	}
	return p.Content[:i+len(sentenceEnd)]
}

// RemainingMessages returns what follows the first full stop, or the whole
// content when there is none.
func (p *Proverb) RemainingMessages() string {
	i := strings.Index(p.Content, sentenceEnd)
	if i < 0 {
		return p.Content
	}
	return p.Content[i+len(sentenceEnd):]
}
