package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"rewecart/internal/matching"
)

// maxSuggestDistance is the largest edit distance offered as a "did you mean".
const maxSuggestDistance = 2

// Registry maps command names and aliases to commands. Keys are lower case.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds c under its name and aliases. Names are unique across
// all commands, aliases included.
func (r *Registry) Register(c Command) error {
	name := strings.ToLower(strings.TrimSpace(c.Name()))
	if name == "" {
		return fmt.Errorf("command name required")
	}

	keys := []string{name}
	for _, alias := range c.Aliases() {
		keys = append(keys, strings.ToLower(alias))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, key := range keys {
		if _, taken := r.cmds[key]; taken || containsKey(keys[:i], key) {
			return fmt.Errorf("command name already registered: %s", key)
		}
	}
	for _, key := range keys {
		r.cmds[key] = c
	}
	return nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Find returns the command registered under name. Case is ignored.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[strings.ToLower(name)]
	return cmd, ok
}

// All returns each command once, ordered by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]Command, len(r.cmds))
	for _, cmd := range r.cmds {
		byName[cmd.Name()] = cmd
	}

	all := make([]Command, 0, len(byName))
	for _, cmd := range byName {
		all = append(all, cmd)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// Suggest returns the command name closest to a mistyped name, if any
// name or alias is within a small edit distance.
func (r *Registry) Suggest(name string) (string, bool) {
	name = strings.ToLower(name)
	best, bestDist := "", maxSuggestDistance+1
	for _, cmd := range r.All() {
		for _, key := range append([]string{cmd.Name()}, cmd.Aliases()...) {
			if d := matching.Levenshtein(name, strings.ToLower(key)); d < bestDist {
				best, bestDist = cmd.Name(), d
			}
		}
	}
	return best, best != ""
}

// DefaultRegistry holds the commands registered by this package.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
