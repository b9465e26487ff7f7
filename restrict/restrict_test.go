package restrict

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
)

type allowAll struct{ name string }

func (p *allowAll) Allow(ctx context.Context, inv Invocation) (bool, error) {
	return true, nil
}

type denyAll struct{ name string }

func (p *denyAll) Allow(ctx context.Context, inv Invocation) (bool, error) {
	return false, nil
}

type testInvocation struct {
	class Class
}

func (i *testInvocation) Class() Class { return i.class }

func TestDirectory_nearestWins(t *testing.T) {
	// A extends B extends C; policies registered for B and C.
	policyB := &allowAll{name: "b"}
	policyC := &denyAll{name: "c"}

	d := NewDirectory()
	d.Add(
		Entry{Class: "C", Policy: policyC},
		Entry{Class: "B", Policy: policyB},
	)

	classA := NewClass("A", "B", "C")

	got, ok := d.Resolve(classA)
	assert.True(t, ok)
	assert.Equal[Policy](t, policyB, got, "distance 1 (B) must win over distance 2 (C)")

	got, ok = d.Resolve(NewClass("C"))
	assert.True(t, ok)
	assert.Equal[Policy](t, policyC, got)
}

func TestDirectory_exactMatchWins(t *testing.T) {
	policyA := &allowAll{name: "a"}
	policyB := &denyAll{name: "b"}

	d := NewDirectory()
	d.Add(
		Entry{Class: "B", Policy: policyB},
		Entry{Class: "A", Policy: policyA},
	)

	got, ok := d.Resolve(NewClass("A", "B"))
	assert.True(t, ok)
	assert.Equal[Policy](t, policyA, got)
}

func TestDirectory_tieBreakFirstRegistered(t *testing.T) {
	first := &allowAll{name: "first"}
	second := &denyAll{name: "second"}

	d := NewDirectory()
	d.Add(Entry{Class: "B", Policy: first})
	d.Add(Entry{Class: "B", Policy: second})

	got, ok := d.Resolve(NewClass("B"))
	assert.True(t, ok)
	assert.Equal[Policy](t, first, got, "equal distance resolves to the first-registered entry")
}

func TestDirectory_absent(t *testing.T) {
	d := NewDirectory()
	d.Add(Entry{Class: "B", Policy: &allowAll{}})

	_, ok := d.Resolve(NewClass("X", "Y"))
	assert.False(t, ok)
}

func TestDirectory_proxiedSubtype(t *testing.T) {
	policy := &allowAll{name: "guild"}

	d := NewDirectory()
	d.Add(Entry{Class: "GuildContext", Policy: policy})

	// A platform adapter wrapping GuildContext presents an unseen name
	// with the original chain appended.
	proxied := NewClass("GuildContext", "MessageContext").Derive("proxy$GuildContext")

	got, ok := d.Resolve(proxied)
	assert.True(t, ok)
	assert.Equal[Policy](t, policy, got)
}

func TestDirectory_cacheInvalidatedOnAdd(t *testing.T) {
	far := &denyAll{name: "far"}
	near := &allowAll{name: "near"}

	d := NewDirectory()
	d.Add(Entry{Class: "C", Policy: far})

	classA := NewClass("A", "B", "C")

	got, ok := d.Resolve(classA)
	assert.True(t, ok)
	assert.Equal[Policy](t, far, got)

	// A nearer entry registered later must be visible immediately, even
	// though the previous resolution was cached.
	d.Add(Entry{Class: "B", Policy: near})

	got, ok = d.Resolve(classA)
	assert.True(t, ok)
	assert.Equal[Policy](t, near, got)
}

func TestDirectory_deduplicates(t *testing.T) {
	policy := &allowAll{}

	d := NewDirectory()
	d.Add(Entry{Class: "B", Policy: policy})
	d.Add(Entry{Class: "B", Policy: policy})

	assert.Equal(t, 1, d.Len())
}

func TestDirectory_concurrentResolve(t *testing.T) {
	d := NewDirectory()
	d.Add(Entry{Class: "B", Policy: &allowAll{}})

	class := NewClass("A", "B")

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if j%10 == 0 {
					d.Add(Entry{Class: "B", Policy: &allowAll{}})
				}
				_, ok := d.Resolve(class)
				assert.True(t, ok)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
