package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	workspace string
}

// WithWorkspace forces a specific workspace (global or project).
func WithWorkspace(workspace string) Option {
	return func(c *clientConfig) {
		c.workspace = workspace
	}
}
