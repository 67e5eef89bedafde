package command

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds the edit distance for "did you mean" hints.
const maxSuggestDistance = 3

// Registry maps canonical command names to commands.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns a registry holding every chart command. QUIT is an
// alias bound to the same EXIT instance.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]Command)}

	exit := ExitCommand{}
	for _, cmd := range []Command{
		exit,
		RefreshCommand{},
		ClearCommand{},
		DeleteCommand{},
		ChartCommand{},
		NewRandomCommand(),
		NewRandomCryptoCommand(),
		NewRandomStockCommand(),
		NewTopGainersCommand(),
		NewTopLosersCommand(),
		NewFomoFilterCommand(),
		TwitterScraperCommand{},
		ScreenshotCommand{},
	} {
		r.mustRegister(cmd.Name(), cmd)
	}
	r.mustRegister(NameQuit, exit)
	return r
}

// Register binds cmd under name. Names must be upper case with no
// whitespace; callers normalize input before Lookup.
func (r *Registry) Register(name string, cmd Command) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if name != strings.ToUpper(name) || strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("command name %q must be upper case without spaces", name)
	}
	if cmd == nil {
		return fmt.Errorf("command %s is nil", name)
	}
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

func (r *Registry) mustRegister(name string, cmd Command) {
	if err := r.Register(name, cmd); err != nil {
		panic(err)
	}
}

// Lookup returns the command registered under exactly name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns every registered name, aliases included, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the registered name closest to name, or "" when nothing
// is within a small edit distance.
func (r *Registry) Suggest(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return ""
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, candidate := range r.Names() {
		if d := levenshtein.ComputeDistance(key, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
