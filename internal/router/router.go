// Package router keeps the stack of screens the app model renders. Only
// the top screen receives messages.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
)

// Navigation messages. Screens return them from commands; the app model
// hands them to Update.
type (
	PushScreenMsg    struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
	ReplaceScreenMsg struct{ Screen screen.Screen }
)

type Router struct {
	stack []screen.Screen
}

func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Push stacks s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes and drops the top screen. The last screen is never popped.
func (r *Router) Pop() tea.Cmd {
	if r.top() < 1 {
		return nil
	}
	release(r.stack[r.top()])
	r.stack[r.top()] = nil
	r.stack = r.stack[:r.top()]
	return nil
}

// Replace closes the top screen and puts s in its place, e.g. a finished
// assessment giving way to its result.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	release(r.stack[r.top()])
	r.stack[r.top()] = s
	return s.Init()
}

// CloseAll releases every screen, top first, on program exit. A running
// assessment is abandoned this way rather than left open.
func (r *Router) CloseAll() {
	for i := r.top(); i >= 0; i-- {
		release(r.stack[i])
	}
}

func release(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}
	if len(r.stack) == 0 {
		return nil
	}
	next, cmd := r.stack[r.top()].Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
