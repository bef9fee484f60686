package klf

import (
	"slices"
	"sync"
)

// Record is a decoded payload. Built-in codecs use the struct types in this
// package; custom codecs may use any type.
type Record any

// Encoder turns a record into payload bytes.
type Encoder func(Record) ([]byte, error)

// Decoder turns payload bytes into a record.
type Decoder func([]byte) (Record, error)

// Codec pairs the payload encoder and decoder of one command. Either side may
// be nil: pure notifications only decode and empty requests need neither.
type Codec struct {
	Encode Encoder
	Decode Decoder
}

// Registry maps command codes to codecs. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[Command]Codec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[Command]Codec)}
}

// DefaultRegistry returns a registry loaded with the built-in codecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

// Register adds or replaces the codec for cmd.
func (r *Registry) Register(cmd Command, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[cmd] = c
}

// Encoder returns the payload encoder registered for cmd.
func (r *Registry) Encoder(cmd Command) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[cmd]
	if !ok || c.Encode == nil {
		return nil, false
	}
	return c.Encode, true
}

// Decoder returns the payload decoder registered for cmd.
func (r *Registry) Decoder(cmd Command) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[cmd]
	if !ok || c.Decode == nil {
		return nil, false
	}
	return c.Decode, true
}

// Commands lists the registered command codes in ascending order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.codecs))
	for cmd := range r.codecs {
		out = append(out, cmd)
	}
	slices.Sort(out)
	return out
}
