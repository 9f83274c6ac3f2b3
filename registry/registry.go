// Package registry holds the per-command records, aliases, and
// completion/command tables that back dispatch and completion.
package registry

import "fmt"

// Callback is invoked to run a registered command.
type Callback func(name, line string, data any, argv []string) (int, error)

// CompletionCallback gathers completion candidates for a partially typed
// word. term is the byte that should terminate the match on insertion
// (0 means "use the default delimiter"; NoSpace means "append nothing").
type CompletionCallback func(argv []string, match string, data any) (candidates []string, term byte)

// NoSpace is the sentinel terminator byte meaning "do not append a
// delimiter after this match".
const NoSpace = 1

// Command is a flat, by-name registered command record.
type Command struct {
	Name     string
	Run      Callback
	Complete CompletionCallback
	Data     any
}

// Alias substitutes expansion for name at the start of a line. Executing
// is set transiently while the alias's expansion is being dispatched, to
// break recursion when an alias expands to itself directly or through
// another alias.
type Alias struct {
	Name      string
	Expansion string
	Executing bool
}

// CommandNode is one node of a hierarchical command table. The root
// node's Name is ignored.
type CommandNode struct {
	Name        string
	Run         Callback
	Data        any
	Subcommands []*CommandNode
}

// CompletionNode is one node of a hierarchical completion table.
type CompletionNode struct {
	Name     string
	Complete CompletionCallback
	Data     any
	Options  []*CompletionNode
}

// Registry stores commands, aliases, hooks, and optional tables.
type Registry struct {
	commands   []*Command
	aliases    []*Alias
	commandTbl *CommandNode
	complTbl   *CompletionNode

	defaultComplete CompletionCallback
	enterHook       EnterHookFunc
	unknownHook     UnknownHookFunc
	interruptHook   InterruptHookFunc
}

// EnterHookFunc handles submission of an empty line. It returns the
// loop-control code and any text to echo to the output endpoint.
type EnterHookFunc func(line string, pos int) (rc int, msg string)

// UnknownHookFunc handles submission of a line whose first word matched
// no command.
type UnknownHookFunc func(name, line string, argv []string) (rc int, msg string)

// InterruptHookFunc handles Ctrl-C.
type InterruptHookFunc func(line string, pos int) (rc int, msg string)

// New returns an empty Registry with default hooks: enter returns 0
// silently, unknown reports "Command not found: <name>", and interrupt
// reports "^C" and ends the loop.
func New() *Registry {
	r := &Registry{}
	r.enterHook = func(line string, pos int) (int, string) { return 0, "" }
	r.unknownHook = func(name, line string, argv []string) (int, string) {
		return 0, fmt.Sprintf("Command not found: %s\n", name)
	}
	r.interruptHook = func(line string, pos int) (int, string) {
		return 1, "^C\n"
	}
	return r
}

// Register adds a command, or replaces the callback/data of an
// existing one with the same name in place.
func (r *Registry) Register(name string, run Callback, data any) {
	for _, c := range r.commands {
		if c.Name == name {
			c.Run = run
			c.Data = data
			return
		}
	}
	r.commands = append(r.commands, &Command{Name: name, Run: run, Data: data})
}

// Unregister removes a command by name.
func (r *Registry) Unregister(name string) {
	for i, c := range r.commands {
		if c.Name == name {
			r.commands = append(r.commands[:i], r.commands[i+1:]...)
			return
		}
	}
}

// SetCompletion attaches a per-command completion callback, registering
// the command first if it does not already exist.
func (r *Registry) SetCompletion(name string, fn CompletionCallback) {
	for _, c := range r.commands {
		if c.Name == name {
			c.Complete = fn
			return
		}
	}
	r.commands = append(r.commands, &Command{Name: name, Complete: fn})
}

// Lookup finds a command by exact name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	for _, c := range r.commands {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Commands returns all registered flat commands in registration order.
func (r *Registry) Commands() []*Command {
	return r.commands
}

// SetAlias registers name to expand to expansion. An empty expansion
// removes the alias.
func (r *Registry) SetAlias(name, expansion string) {
	for i, a := range r.aliases {
		if a.Name == name {
			if expansion == "" {
				r.aliases = append(r.aliases[:i], r.aliases[i+1:]...)
				return
			}
			a.Expansion = expansion
			return
		}
	}
	if expansion == "" {
		return
	}
	r.aliases = append(r.aliases, &Alias{Name: name, Expansion: expansion})
}

// LookupAlias finds an alias by exact name.
func (r *Registry) LookupAlias(name string) (*Alias, bool) {
	for _, a := range r.aliases {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Aliases returns all registered aliases in registration order.
func (r *Registry) Aliases() []*Alias {
	return r.aliases
}

// SetEnterHook replaces the empty-line submission hook.
func (r *Registry) SetEnterHook(fn EnterHookFunc) {
	r.enterHook = fn
}

// EnterHook returns the current empty-line submission hook.
func (r *Registry) EnterHook() EnterHookFunc {
	return r.enterHook
}

// SetUnknownHook replaces the no-match submission hook.
func (r *Registry) SetUnknownHook(fn UnknownHookFunc) {
	r.unknownHook = fn
}

// UnknownHook returns the current no-match submission hook.
func (r *Registry) UnknownHook() UnknownHookFunc {
	return r.unknownHook
}

// SetInterruptHook replaces the Ctrl-C hook.
func (r *Registry) SetInterruptHook(fn InterruptHookFunc) {
	r.interruptHook = fn
}

// InterruptHook returns the current Ctrl-C hook.
func (r *Registry) InterruptHook() InterruptHookFunc {
	return r.interruptHook
}

// SetDefaultCompletion replaces the fallback completion callback used
// when no per-command completion fires.
func (r *Registry) SetDefaultCompletion(fn CompletionCallback) {
	r.defaultComplete = fn
}

// DefaultCompletion returns the fallback completion callback, if any.
func (r *Registry) DefaultCompletion() CompletionCallback {
	return r.defaultComplete
}

// RegisterCommandTable validates and installs a hierarchical command
// table. Each top-level subcommand is also registered as a flat command
// whose callback re-enters the tree with argv offset by one. Because Go
// table nodes are ordinary slices, the only structural defect that
// remains representable is a cycle: a node reachable from two different
// parents.
func (r *Registry) RegisterCommandTable(root *CommandNode) error {
	if err := walkCommandTree(root, map[*CommandNode]bool{}); err != nil {
		return err
	}
	r.commandTbl = root
	for _, top := range root.Subcommands {
		node := top
		r.Register(node.Name, func(name, line string, data any, argv []string) (int, error) {
			return dispatchNode(node, name, line, argv)
		}, node.Data)
	}
	return nil
}

func dispatchNode(node *CommandNode, name, line string, argv []string) (int, error) {
	rest := argv[1:]
	if len(rest) > 0 {
		for _, child := range node.Subcommands {
			if child.Name == rest[0] {
				return dispatchNode(child, rest[0], line, rest)
			}
		}
	}
	if node.Run == nil {
		return 0, fmt.Errorf("registry: command %q has no handler", name)
	}
	return node.Run(name, line, node.Data, argv)
}

func walkCommandTree(node *CommandNode, seen map[*CommandNode]bool) error {
	if seen[node] {
		return &BadStructureError{Reason: "command table contains a cycle"}
	}
	seen[node] = true
	for _, c := range node.Subcommands {
		if err := walkCommandTree(c, seen); err != nil {
			return err
		}
	}
	return nil
}

// CommandTable returns the registered command table, if any.
func (r *Registry) CommandTable() *CommandNode {
	return r.commandTbl
}

// RegisterCompletionTable validates and installs a hierarchical
// completion table.
func (r *Registry) RegisterCompletionTable(root *CompletionNode) error {
	if err := walkCompletionTree(root, map[*CompletionNode]bool{}); err != nil {
		return err
	}
	r.complTbl = root
	return nil
}

func walkCompletionTree(node *CompletionNode, seen map[*CompletionNode]bool) error {
	if seen[node] {
		return &BadStructureError{Reason: "completion table contains a cycle"}
	}
	seen[node] = true
	for _, c := range node.Options {
		if err := walkCompletionTree(c, seen); err != nil {
			return err
		}
	}
	return nil
}

// CompletionTable returns the registered completion table, if any.
func (r *Registry) CompletionTable() *CompletionNode {
	return r.complTbl
}

// BadStructureError reports a malformed command or completion table
// detected at registration time.
type BadStructureError struct {
	Reason string
}

func (e *BadStructureError) Error() string {
	return "registry: bad structure: " + e.Reason
}
