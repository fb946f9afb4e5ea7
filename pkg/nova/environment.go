package nova

import (
	"fmt"
	"sort"
)

// MaxCallDepth bounds nested function calls within one global frame.
const MaxCallDepth = 10000

// Environment is one scope frame. Lookups and assignments that miss walk
// up through the parents; the root frame has no parent.
type Environment struct {
	entries map[string]Value
	parent  *Environment
	// depth counts calls in progress; shared by every frame under a root
	depth *int
}

func NewEnvironment() *Environment {
	return &Environment{entries: make(map[string]Value), depth: new(int)}
}

func (frame *Environment) GetChild() *Environment {
	return &Environment{
		entries: make(map[string]Value),
		parent:  frame,
		depth:   frame.depth,
	}
}

func (frame *Environment) Parent() *Environment {
	return frame.parent
}

// Get a variable's value by looking through every scope (bottom to top)
func (frame *Environment) Get(key string) (Value, bool) {
	for ; frame != nil; frame = frame.parent {
		if value, ok := frame.entries[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// Define always binds in this frame, shadowing any outer binding.
func (frame *Environment) Define(key string, value Value) {
	frame.entries[key] = value
}

// Assign updates the nearest existing binding. It reports false when no
// frame declares the key.
func (frame *Environment) Assign(key string, value Value) bool {
	for ; frame != nil; frame = frame.parent {
		if _, ok := frame.entries[key]; ok {
			frame.entries[key] = value
			return true
		}
	}
	return false
}

// Names lists the keys bound directly in this frame, sorted.
func (frame *Environment) Names() []string {
	names := make([]string, 0, len(frame.entries))
	for key := range frame.entries {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

func (frame *Environment) String() string {
	s := ""
	for {
		s += "{\n"
		for _, key := range frame.Names() {
			s += fmt.Sprintf("\t %v: %v\n", key, inspect(frame.entries[key]))
		}
		s += "}"
		if parent := frame.Parent(); parent != nil {
			frame = parent
		} else {
			break
		}
	}
	return s
}
