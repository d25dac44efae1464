// Package answerkey resolves contest question answers from match
// telemetry. A question carries a dotted data path into the raw match
// snapshot; questions without a usable path can delegate to an external
// generation collaborator.
package answerkey

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/crease/internal/domain/model"
)

// Generator produces an answer key for a question that cannot be
// resolved from the snapshot alone.
type Generator interface {
	Generate(ctx context.Context, question model.Question, snap model.MatchSnapshot) (string, error)
}

// Resolver resolves answer keys at settlement time.
type Resolver struct {
	generator Generator
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGenerator installs the external generation collaborator used when
// a question's data path yields nothing.
func WithGenerator(g Generator) Option {
	return func(r *Resolver) {
		r.generator = g
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the key for a still-unresolved question. The data
// path is tried first; if it yields nothing and a generator is
// configured, the generator decides. A missing path without a
// generator resolves to nil, not an error.
func (r *Resolver) Resolve(ctx context.Context, question model.Question, snap model.MatchSnapshot) (*string, error) {
	if question.DataPath != "" {
		if v, ok := Lookup(snap.Raw, question.DataPath); ok {
			return &v, nil
		}
	}

	if r.generator != nil {
		key, err := r.generator.Generate(ctx, question, snap)
		if err != nil {
			return nil, fmt.Errorf("generating answer for question %s: %w", question.ID, err)
		}
		return &key, nil
	}
	return nil, nil
}

// Lookup walks a dot-separated key path through a raw snapshot payload
// and renders the leaf as a string. Missing segments and non-scalar
// leaves report false.
func Lookup(raw map[string]any, path string) (string, bool) {
	if raw == nil || path == "" {
		return "", false
	}

	var current any = raw
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = node[segment]
		if !ok {
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}
