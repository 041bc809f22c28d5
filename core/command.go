package core

import (
	"errors"
	"sync"

	"escctl/protocol"
)

var (
	ErrInvalidMarker   = errors.New("invalid command marker")
	ErrDuplicateMarker = errors.New("command marker already registered")
)

// CommandHandler handles one received line. The marker byte has already been
// consumed. A handler may read up to the line terminator and must push the
// terminator back if it reads it; the pipeline discards whatever is left.
// Returns the number of arguments applied.
type CommandHandler func(src protocol.ByteSource) int

// Command is a line command selected by its first byte
type Command struct {
	Marker  byte
	Name    string
	Format  string // Human readable argument list
	Handler CommandHandler
}

// CommandRegistry maps line markers to handlers
type CommandRegistry struct {
	mu       sync.RWMutex
	commands [128]*Command
	order    []byte
}

// NewCommandRegistry creates an empty registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{}
}

// Register adds a command for a 7-bit printable marker
func (r *CommandRegistry) Register(marker byte, name string, format string, handler CommandHandler) error {
	if marker <= ' ' || marker >= 0x7f || handler == nil {
		return ErrInvalidMarker
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.commands[marker] != nil {
		return ErrDuplicateMarker
	}
	r.commands[marker] = &Command{
		Marker:  marker,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.order = append(r.order, marker)
	return nil
}

// Lookup retrieves the command for a marker byte
func (r *CommandRegistry) Lookup(marker byte) (*Command, bool) {
	if marker >= 0x80 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd := r.commands[marker]
	return cmd, cmd != nil
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Dictionary lists the commands in registration order, one per line:
// "<marker> <name> <format>"
func (r *CommandRegistry) Dictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dict := ""
	for _, m := range r.order {
		cmd := r.commands[m]
		dict += string(rune(cmd.Marker)) + " " + cmd.Name
		if cmd.Format != "" {
			dict += " " + cmd.Format
		}
		dict += "\n"
	}
	return dict
}
