package pool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id int
}

// recorder counts hook invocations for a pool of *item
type recorder struct {
	next       int
	pooled     []*item
	borrowed   []*item
	overflowed []*item
}

func (r *recorder) hooks() Hooks[*item] {
	return Hooks[*item]{
		Allocate: func() *item {
			r.next++
			return &item{id: r.next}
		},
		OnPooled:         func(i *item) { r.pooled = append(r.pooled, i) },
		OnBorrowed:       func(i *item) { r.borrowed = append(r.borrowed, i) },
		OnUnableToReturn: func(i *item) { r.overflowed = append(r.overflowed, i) },
	}
}

func newRecorded(capacity, pre int) (*Pool[*item], *recorder) {
	r := &recorder{}
	return New(capacity, pre, WithHooks(r.hooks())), r
}

func TestNewClampsConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		pre          int
		wantCapacity int
		wantStored   int
	}{
		{"zero capacity", 0, 0, 1, 0},
		{"negative capacity", -5, 3, 1, 1},
		{"pre above capacity", 3, 10, 3, 3},
		{"negative pre", 4, -2, 4, 0},
		{"in range", 8, 5, 8, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, r := newRecorded(tt.capacity, tt.pre)
			assert.Equal(t, tt.wantCapacity, p.Capacity())
			assert.Equal(t, tt.wantStored, p.NumAllocated())
			assert.Len(t, r.pooled, tt.wantStored, "pre-allocated objects go through OnPooled")
			assert.Empty(t, r.borrowed)
		})
	}
}

func TestPreAllocateMatchesStoredForAllValidInputs(t *testing.T) {
	for capacity := 1; capacity <= 6; capacity++ {
		for pre := 0; pre <= capacity; pre++ {
			p := NewOf[item](capacity, pre)
			require.Equal(t, pre, p.NumAllocated(), "capacity=%d pre=%d", capacity, pre)
		}
	}
}

func TestBorrowFromEmptyAllocatesWithoutHooks(t *testing.T) {
	p, r := newRecorded(2, 0)
	require.True(t, p.IsEmpty())

	obj := p.Borrow()

	require.NotNil(t, obj)
	assert.Equal(t, 1, obj.id)
	assert.Empty(t, r.pooled)
	assert.Empty(t, r.borrowed)
	assert.Equal(t, 0, p.NumAllocated())
	assert.Equal(t, int64(1), p.Stats().Misses)
}

func TestBorrowReturnBorrowYieldsSameInstance(t *testing.T) {
	p, r := newRecorded(4, 2)

	first := p.Borrow()
	p.Return(first)
	second := p.Borrow()

	assert.Same(t, first, second)
	assert.Equal(t, []*item{first, first}, r.borrowed)
}

func TestBorrowIsLastInFirstOut(t *testing.T) {
	p, _ := newRecorded(3, 0)
	a, b, c := &item{id: 10}, &item{id: 11}, &item{id: 12}
	p.Return(a)
	p.Return(b)
	p.Return(c)

	assert.Same(t, c, p.Borrow())
	assert.Same(t, b, p.Borrow())
	assert.Same(t, a, p.Borrow())
	assert.True(t, p.IsEmpty())
}

func TestOnPooledSeesObjectAlreadyStored(t *testing.T) {
	var p *Pool[*item]
	var storedDuringHook int
	p = New(2, 0, WithOnPooled(func(*item) { storedDuringHook = p.NumAllocated() }))

	p.Return(&item{})

	assert.Equal(t, 1, storedDuringHook)
}

func TestReturnIntoFullPoolOverflows(t *testing.T) {
	p, r := newRecorded(2, 2)
	require.True(t, p.IsFull())
	extra := &item{id: 99}

	p.Return(extra)

	assert.Equal(t, 2, p.NumAllocated())
	assert.Equal(t, []*item{extra}, r.overflowed)
	assert.Len(t, r.pooled, 2, "overflow must not run OnPooled")
	assert.Equal(t, int64(1), p.Stats().Overflows)
}

func TestDefaultHooksAreNoOps(t *testing.T) {
	p := New[int](1, 1)
	assert.Equal(t, 0, p.Borrow())
	p.Return(5)
	p.Return(6)
	assert.Equal(t, 5, p.Borrow())
}

func TestScenarioCapacityTwo(t *testing.T) {
	p, r := newRecorded(2, 1)
	assert.Equal(t, 1, p.NumAllocated())

	pre := p.Borrow()
	assert.Equal(t, 0, p.NumAllocated())
	assert.Equal(t, 1, pre.id, "borrow returns the pre-allocated object")

	p.Return(pre)
	assert.Equal(t, 1, p.NumAllocated())

	again := p.Borrow()
	assert.Equal(t, 0, p.NumAllocated())
	assert.Same(t, pre, again)

	objA, objB, objC := &item{id: 100}, &item{id: 101}, &item{id: 102}
	p.Return(objA)
	p.Return(objB)
	assert.Equal(t, 2, p.NumAllocated())
	assert.True(t, p.IsFull())

	p.Return(objC)
	assert.Equal(t, []*item{objC}, r.overflowed)
	assert.Equal(t, 2, p.NumAllocated())
}

func TestStoredNeverExceedsCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p, _ := newRecorded(5, 2)
	var out []*item

	for i := 0; i < 2000; i++ {
		if rng.Intn(2) == 0 {
			out = append(out, p.Borrow())
		} else if len(out) > 0 || rng.Intn(3) == 0 {
			var obj *item
			if len(out) > 0 {
				obj = out[len(out)-1]
				out = out[:len(out)-1]
			} else {
				obj = &item{}
			}
			p.Return(obj)
		}
		require.LessOrEqual(t, p.NumAllocated(), p.Capacity())
	}
}

func TestAllocateIsAdditive(t *testing.T) {
	p, r := newRecorded(10, 2)

	p.Allocate(3)
	assert.Equal(t, 5, p.NumAllocated())

	p.Allocate(3)
	assert.Equal(t, 8, p.NumAllocated())

	p.Allocate(100)
	assert.Equal(t, 10, p.NumAllocated(), "allocate stops at capacity")
	assert.Len(t, r.pooled, 10)

	p.Allocate(0)
	p.Allocate(-1)
	assert.Equal(t, 10, p.NumAllocated())
}

// Clear drops stored objects without any teardown. Objects owning
// external resources are leaked by it; this pins the behavior.
func TestClearSkipsTeardown(t *testing.T) {
	p, r := newRecorded(3, 3)
	stored := len(r.pooled)

	p.Clear()

	assert.True(t, p.IsEmpty())
	assert.Empty(t, r.borrowed)
	assert.Empty(t, r.overflowed)
	assert.Equal(t, stored, len(r.pooled))

	// the pool is still usable after clearing
	obj := p.Borrow()
	assert.Equal(t, 4, obj.id)
}

func TestDrainSkipsHooksAndCounters(t *testing.T) {
	p, r := newRecorded(3, 3)
	var drained []int

	p.Drain(func(i *item) { drained = append(drained, i.id) })

	assert.Equal(t, []int{3, 2, 1}, drained, "newest first")
	assert.True(t, p.IsEmpty())
	assert.Empty(t, r.borrowed)
	assert.Zero(t, p.Stats().Borrows)
	assert.Zero(t, p.Stats().Misses)
}

func TestDisposeRunsOnce(t *testing.T) {
	calls := 0
	p := New(1, 0, WithDisposer[int](func() { calls++ }))

	p.Dispose()
	p.Dispose()

	assert.Equal(t, 1, calls)
	assert.True(t, p.Disposed())
}

func TestStatsTrackCounters(t *testing.T) {
	p, _ := newRecorded(1, 1)
	a := p.Borrow()
	b := p.Borrow()
	p.Return(a)
	p.Return(b)

	assert.Equal(t, Stats{
		Capacity:    1,
		Stored:      1,
		Allocations: 2,
		Borrows:     2,
		Returns:     1,
		Misses:      1,
		Overflows:   1,
	}, p.Stats())
}

func BenchmarkBorrowReturn(b *testing.B) {
	p := NewOf[item](64, 64)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		obj := p.Borrow()
		p.Return(obj)
	}
}
