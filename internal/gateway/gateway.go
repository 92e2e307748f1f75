package gateway

import "context"

// Message is one turn of an ordered prompt.
type Message struct {
	Role    string
	Content string
}

// Gateway is the language-model completion service. It takes an
// ordered prompt and returns a single reply turn as plain text. An
// empty reply with a nil error means the model produced no usable
// content; callers substitute their own fallback text.
type Gateway interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
