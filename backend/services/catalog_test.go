// ABOUTME: Tests for the instance type catalog
// ABOUTME: Covers static lookups, provider fallback, caching, and shared lookups

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/markalston/pypiserver-capacity/backend/cache"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	types map[string]models.InstanceType
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GetInstanceType(ctx context.Context, name string) (models.InstanceType, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return models.InstanceType{}, s.err
	}
	it, ok := s.types[name]
	if !ok {
		return models.InstanceType{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
	}
	return it, nil
}

func newTestCache(t *testing.T) *cache.Cache[models.InstanceType] {
	t.Helper()
	c := cache.New[models.InstanceType](time.Minute)
	t.Cleanup(c.Close)
	return c
}

func TestCatalog_StaticLookup(t *testing.T) {
	c := NewCatalog(nil)

	it, err := c.Lookup(context.Background(), "t3.small")
	require.NoError(t, err)
	assert.Equal(t, 2, it.VCPUCount)
	assert.Equal(t, 2048, it.MemoryMB)
	assert.Equal(t, 0.0208, it.OnDemandPricePerHour)
	assert.Equal(t, models.SourceStatic, it.Source)
}

func TestCatalog_UnknownWithoutProviders(t *testing.T) {
	c := NewCatalog(nil)

	_, err := c.Lookup(context.Background(), "x9.huge")
	assert.ErrorIs(t, err, models.ErrUnknownInstanceType)
}

func TestCatalog_InvalidName(t *testing.T) {
	p := &stubProvider{name: "ec2"}
	c := NewCatalog(nil, p)

	_, err := c.Lookup(context.Background(), "../etc/passwd")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrUnknownInstanceType))
	assert.Zero(t, p.calls.Load(), "invalid names must not reach providers")
}

func TestCatalog_StaticTakesPrecedence(t *testing.T) {
	p := &stubProvider{name: "ec2", types: map[string]models.InstanceType{
		"t3.small": {VCPUCount: 99, MemoryMB: 99},
	}}
	c := NewCatalog(nil, p)

	it, err := c.Lookup(context.Background(), "t3.small")
	require.NoError(t, err)
	assert.Equal(t, 2, it.VCPUCount)
	assert.Zero(t, p.calls.Load())
}

func TestCatalog_ProviderFallbackAndCache(t *testing.T) {
	p := &stubProvider{name: "ec2", types: map[string]models.InstanceType{
		"m6i.large": {VCPUCount: 2, MemoryMB: 8192},
	}}
	c := NewCatalog(newTestCache(t), p)

	it, err := c.Lookup(context.Background(), "m6i.large")
	require.NoError(t, err)
	assert.Equal(t, "m6i.large", it.Name)
	assert.Equal(t, "ec2", it.Source)

	_, err = c.Lookup(context.Background(), "m6i.large")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load(), "second lookup should be served from cache")
}

func TestCatalog_ProvidersConsultedInOrder(t *testing.T) {
	first := &stubProvider{name: "ec2"}
	second := &stubProvider{name: "vsphere", types: map[string]models.InstanceType{
		"pypi-2x4": {VCPUCount: 2, MemoryMB: 4096},
	}}
	c := NewCatalog(nil, first, second)

	it, err := c.Lookup(context.Background(), "pypi-2x4")
	require.NoError(t, err)
	assert.Equal(t, "vsphere", it.Source)
	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(1), second.calls.Load())
}

func TestCatalog_ProviderFailureReported(t *testing.T) {
	p := &stubProvider{name: "ec2", err: errors.New("throttled")}
	c := NewCatalog(nil, p)

	_, err := c.Lookup(context.Background(), "m6i.large")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrUnknownInstanceType))
	assert.Contains(t, err.Error(), "throttled")
}

func TestCatalog_ProviderFailureNotCached(t *testing.T) {
	p := &stubProvider{name: "ec2", err: errors.New("throttled")}
	c := NewCatalog(newTestCache(t), p)

	_, _ = c.Lookup(context.Background(), "m6i.large")
	_, _ = c.Lookup(context.Background(), "m6i.large")
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestCatalog_IncompleteShapeRejected(t *testing.T) {
	p := &stubProvider{name: "vsphere", types: map[string]models.InstanceType{
		"broken": {VCPUCount: 0, MemoryMB: 4096},
	}}
	c := NewCatalog(nil, p)

	_, err := c.Lookup(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete shape")
}

func TestCatalog_ConcurrentLookupsShareCall(t *testing.T) {
	p := &stubProvider{name: "ec2", delay: 50 * time.Millisecond, types: map[string]models.InstanceType{
		"m6i.large": {VCPUCount: 2, MemoryMB: 8192},
	}}
	c := NewCatalog(newTestCache(t), p)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Lookup(context.Background(), "m6i.large")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
}

// gatedProvider blocks until released or its context ends
type gatedProvider struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedProvider) Name() string { return "gated" }

func (g *gatedProvider) GetInstanceType(ctx context.Context, name string) (models.InstanceType, error) {
	g.calls.Add(1)
	close(g.started)
	select {
	case <-g.release:
		return models.InstanceType{Name: name, VCPUCount: 4, MemoryMB: 16384}, nil
	case <-ctx.Done():
		return models.InstanceType{}, ctx.Err()
	}
}

func TestCatalog_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	p := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCatalog(newTestCache(t), p)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Lookup(firstCtx, "m6i.xlarge")
		firstErr <- err
	}()
	<-p.started

	type result struct {
		it  models.InstanceType
		err error
	}
	second := make(chan result, 1)
	go func() {
		it, err := c.Lookup(context.Background(), "m6i.xlarge")
		second <- result{it, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(p.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, 4, res.it.VCPUCount)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestCatalog_ListOrdered(t *testing.T) {
	list := NewCatalog(nil).List()
	require.Len(t, list, len(staticInstanceTypes))

	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		assert.True(t, prev.VCPUCount < cur.VCPUCount ||
			(prev.VCPUCount == cur.VCPUCount && prev.MemoryMB <= cur.MemoryMB),
			"%s should sort before %s", prev.Name, cur.Name)
	}
	assert.Equal(t, "t3.micro", list[0].Name)
}

func TestCatalog_Sources(t *testing.T) {
	c := NewCatalog(nil, &stubProvider{name: "ec2"}, &stubProvider{name: "vsphere"})
	assert.Equal(t, []string{"static", "ec2", "vsphere"}, c.Sources())
}
