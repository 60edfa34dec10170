// Package router maps namespaced method names to registered handlers.
package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Separator is the namespace delimiter in method names.
const Separator = "."

// systemNamespace is reserved by the router for its built-in
// introspection handler.
const systemNamespace = "system"

// ErrReserved is returned when registering under the reserved system
// namespace.
var ErrReserved = errors.New("jrpc: namespace \"system\" is reserved")

// node is one level of the namespace tree. A node may carry a handler,
// children, or both.
type node struct {
	handler  Handler
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Router routes namespaced method names to handlers. The tree is built
// during configuration and is immutable afterwards, so any number of
// concurrent requests may resolve against it without coordination.
//
// The router mounts its own introspection handler under the "system"
// namespace at construction, exposing listMethods and isAlive.
type Router struct {
	root *node
}

// New creates a router with the built-in system namespace mounted.
func New() *Router {
	r := &Router{root: newNode()}
	sys := newNode()
	sys.handler = &system{router: r}
	r.root.children[systemNamespace] = sys
	return r
}

// Register binds a handler at the given dotted namespace path,
// overwriting any handler previously bound at that exact path. The
// empty path binds the default handler, used when no namespace prefix
// of a method name matches. The system namespace cannot be rebound.
func (r *Router) Register(path string, h Handler) error {
	if path == systemNamespace || strings.HasPrefix(path, systemNamespace+Separator) {
		return ErrReserved
	}
	if path == "" {
		r.root.handler = h
		return nil
	}

	n := r.root
	for _, seg := range strings.Split(path, Separator) {
		if seg == "" {
			return fmt.Errorf("jrpc: invalid namespace path %q", path)
		}
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	n.handler = h
	return nil
}

// Resolve walks the namespace tree, greedily consuming the longest
// registered prefix of method, and returns the bound handler together
// with the remaining local method name. When no namespace segment
// matches, the default handler (if registered) receives the full
// method name.
func (r *Router) Resolve(method string) (Handler, string, bool) {
	segs := strings.Split(method, Separator)

	handler := r.root.handler
	consumed := 0

	n := r.root
	// The last segment is always the local method name and is never
	// consumed as a namespace.
	for i := 0; i < len(segs)-1; i++ {
		child, ok := n.children[segs[i]]
		if !ok {
			break
		}
		n = child
		if n.handler != nil {
			handler = n.handler
			consumed = i + 1
		}
	}

	if handler == nil {
		return nil, "", false
	}
	return handler, strings.Join(segs[consumed:], Separator), true
}

// MethodNames enumerates every registered, exposed method name across
// the whole tree, namespace-qualified and sorted.
func (r *Router) MethodNames() []string {
	var names []string
	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		if n.handler != nil {
			for _, m := range n.handler.Names() {
				if prefix == "" {
					names = append(names, m)
				} else {
					names = append(names, prefix+Separator+m)
				}
			}
		}
		for seg, child := range n.children {
			next := seg
			if prefix != "" {
				next = prefix + Separator + seg
			}
			walk(next, child)
		}
	}
	walk("", r.root)
	sort.Strings(names)
	return names
}
