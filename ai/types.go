package ai

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation sent to a Model.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message, used to replay earlier model output.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Provider names a model backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Providers lists the supported backends.
var Providers = []Provider{
	ProviderOpenAI,
	ProviderOllama,
	ProviderAnthropic,
	ProviderBedrock,
}
