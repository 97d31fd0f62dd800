// FILE: logroute/src/internal/core/message.go
package core

// Message is what callers submit for dispatch.
type Message struct {
	Content   string
	Level     Level
	Namespace string
	// Origin overrides the captured goroutine identity when set
	Origin string
}

// NewMessage builds a Message and validates it.
func NewMessage(content string, level Level, namespace string) (Message, error) {
	m := Message{Content: content, Level: level, Namespace: namespace}
	return m, m.Validate()
}

// Validate fails when content, level or namespace is absent.
func (m Message) Validate() error {
	if m.Content == "" {
		return NewValidationError("content", "missing")
	}
	if m.Level == LevelNone {
		return NewValidationError("level", "missing")
	}
	if !m.Level.Valid() {
		return NewValidationError("level", "unknown level "+m.Level.String())
	}
	if m.Namespace == "" {
		return NewValidationError("namespace", "missing")
	}
	return nil
}
