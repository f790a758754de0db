// Package identity generates unique identifiers for events and other objects.
//
// A Generator is injected wherever identities are minted. Counter produces
// prefixed, monotonically increasing identifiers; Service hands out one
// Counter per owner prefix so unrelated owners never share a sequence.
// UUID and NUID are random generators for identifiers that must be unique
// across processes.
package identity

import (
	"strconv"
	"sync/atomic"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/registry"
	"github.com/google/uuid"
	"github.com/nats-io/nuid"
)

// Generator mints unique identifiers.
type Generator interface {
	New() string
}

var (
	// UUID generates random RFC 4122 identifiers.
	UUID Generator = &uuidGen{}

	// NUID generates NATS unique identifiers.
	NUID Generator = &nuidGen{}
)

type uuidGen struct{}

func (*uuidGen) New() string {
	return uuid.New().String()
}

type nuidGen struct{}

func (*nuidGen) New() string {
	return nuid.Next()
}

// Counter generates identifiers of the form "<prefix>-<n>" where n starts
// at 1 and increases by one per call. Safe for concurrent use.
type Counter struct {
	prefix string
	n      atomic.Uint64
}

// NewCounter creates a counter with the given prefix.
// An empty prefix yields bare numbers.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// New returns the next identifier.
func (c *Counter) New() string {
	n := strconv.FormatUint(c.n.Add(1), 10)
	if c.prefix == "" {
		return n
	}
	return c.prefix + "-" + n
}

// Prefix returns the counter's prefix.
func (c *Counter) Prefix() string {
	return c.prefix
}

// Issued returns how many identifiers the counter has produced.
func (c *Counter) Issued() uint64 {
	return c.n.Load()
}

// Service is a counter service scoped by prefix. Every call to For with
// the same prefix returns the same Counter.
type Service struct {
	counters *registry.Registry[string, *Counter]
}

// NewService creates an empty counter service.
func NewService() *Service {
	return &Service{counters: registry.New[string, *Counter]()}
}

// For returns the counter owned by prefix, creating it on first use.
func (s *Service) For(prefix string) *Counter {
	return s.counters.GetOrCreate(prefix, func() *Counter {
		return NewCounter(prefix)
	})
}

// Prefixes returns every prefix that has a counter.
func (s *Service) Prefixes() []string {
	return s.counters.Keys()
}

// Default is the process-wide counter service.
var Default = NewService()
