package discord

import (
	"context"
	"sort"
	"strings"
	"sync"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/logger"
)

// CommandHandler executes a prefix command; args holds the whitespace-split
// tokens after the command name.
type CommandHandler func(ctx context.Context, ev *Event, args []string) error

// Command represents a text command with its handler and metadata.
type Command struct {
	Handler     CommandHandler
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Registry holds the bot's prefix commands. Command names are stored without
// the prefix ("post", not "!post").
type Registry struct {
	mu       sync.RWMutex
	prefix   string
	commands map[string]Command
}

// NewRegistry creates an empty Registry for the given command prefix.
func NewRegistry(prefix string) *Registry {
	if prefix == "" {
		prefix = "!"
	}
	return &Registry{
		prefix:   prefix,
		commands: make(map[string]Command),
	}
}

// Prefix returns the configured command prefix.
func (r *Registry) Prefix() string {
	return r.prefix
}

// RegisterCommand adds a new command under its bare name.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, r.prefix)))
	if name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.Warn(context.Background(), "dg.wire", "register.command.skip",
			slog.String("command", name),
			slog.String("cause", "invalid"),
		)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		logger.Warn(context.Background(), "dg.wire", "register.command.duplicate",
			slog.String("command", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Lookup parses a message body and returns the matched command with its
// arguments. It reports false when the body is not a command invocation.
func (r *Registry) Lookup(body string) (string, Command, []string, bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, r.prefix) {
		return "", Command{}, nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(body, r.prefix))
	if len(fields) == 0 {
		return "", Command{}, nil, false
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, args, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if strings.EqualFold(alias, name) {
				return key, cmd, args, true
			}
		}
	}
	return "", Command{}, nil, false
}

// List returns command names in sorted order, optionally filtering out hidden
// and admin-only commands.
func (r *Registry) List(visibleOnly bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
