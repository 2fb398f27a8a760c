package learned

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"rankidx/pkg/common"
	"rankidx/pkg/model"
)

func sortedRandomKeys(t *testing.T, seed int64, n int) []common.KeyType {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	seen := make(map[common.KeyType]struct{}, n)
	keys := make([]common.KeyType, 0, n)
	for len(keys) < n {
		k := common.KeyType(rng.Int63n(int64(n) * 20))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func TestBuildEmptyInput(t *testing.T) {
	if _, err := Build(nil, 4); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := BuildAdaptive(nil, 8); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("adaptive: expected ErrEmptyInput, got %v", err)
	}
}

func TestPerfectlyLinearDataHasZeroErrorBounds(t *testing.T) {
	keys := make([]common.KeyType, 100)
	for i := range keys {
		keys[i] = common.KeyType(2 * i) // 0,2,4,...,198
	}

	idx, err := Build(keys, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for j, leaf := range idx.Leaves() {
		if leaf.MaxErr != 0 {
			t.Errorf("leaf %d: max_err=%d, want 0 for perfectly linear keys", j, leaf.MaxErr)
		}
	}

	i, ok := idx.Search(50)
	if !ok || i != 25 {
		t.Fatalf("Search(50): got (%d,%v), want (25,true)", i, ok)
	}
	if idx.FallbackCount() != 0 {
		t.Errorf("expected zero fallbacks, got %d", idx.FallbackCount())
	}
	if got := idx.ParameterCount(); got != 2*(1+4) {
		t.Errorf("ParameterCount: got %d, want %d", got, 2*(1+4))
	}
}

func TestSearchFindsEveryKey(t *testing.T) {
	keys := sortedRandomKeys(t, 1, 1000)

	idx, err := Build(keys, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for want, key := range keys {
		got, ok := idx.Search(key)
		if !ok {
			t.Fatalf("Search(%d): not found, want rank %d", key, want)
		}
		if got != want {
			t.Fatalf("Search(%d): got rank %d, want %d", key, got, want)
		}
	}

	// Present keys route to the leaf they were trained on, so the window
	// never misses and the fallback stays a diagnostic for absent keys.
	if idx.FallbackCount() != 0 {
		t.Errorf("expected zero fallbacks for present keys, got %d", idx.FallbackCount())
	}
}

func TestSearchAbsentKeys(t *testing.T) {
	keys := []common.KeyType{2, 4, 8, 16, 32, 64, 128}
	idx, err := Build(keys, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, key := range []common.KeyType{0, 3, 5, 100, 1000, -7} {
		if i, ok := idx.Search(key); ok {
			t.Errorf("Search(%d): found at %d, want not found", key, i)
		}
	}
}

func TestErrorBoundsAreExact(t *testing.T) {
	keys := sortedRandomKeys(t, 2, 500)
	idx, err := Build(keys, 8)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Recompute each leaf's worst error by replaying the routing.
	stage0 := idx.Stage0()
	leaves := idx.Leaves()
	want := make([]int, len(leaves))
	for rank, key := range keys {
		j := int(math.Round(stage0.Predict(float64(key))))
		if j < 0 {
			j = 0
		}
		if j > len(leaves)-1 {
			j = len(leaves) - 1
		}
		predicted := int(math.Round(leaves[j].Model.Predict(float64(key))))
		if d := predicted - rank; d > want[j] {
			want[j] = d
		} else if -d > want[j] {
			want[j] = -d
		}
	}

	for j, leaf := range leaves {
		if leaf.MaxErr != want[j] {
			t.Errorf("leaf %d: max_err=%d, want exactly %d", j, leaf.MaxErr, want[j])
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	keys := sortedRandomKeys(t, 3, 800)

	a, err := Build(keys, 16)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(keys, 16)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if a.Stage0() != b.Stage0() {
		t.Errorf("stage0 differs across identical builds: %+v vs %+v", a.Stage0(), b.Stage0())
	}
	if !reflect.DeepEqual(a.Leaves(), b.Leaves()) {
		t.Errorf("leaves differ across identical builds")
	}
}

func TestBuildAdaptive(t *testing.T) {
	keys := sortedRandomKeys(t, 4, 600)

	idx, err := BuildAdaptive(keys, 4)
	if err != nil {
		t.Fatalf("BuildAdaptive: %v", err)
	}
	if idx.NumLeaves() < 1 {
		t.Fatalf("expected at least one leaf, got %d", idx.NumLeaves())
	}
	if got := idx.ParameterCount(); got != 2*(1+idx.NumLeaves()) {
		t.Errorf("ParameterCount: got %d, want %d", got, 2*(1+idx.NumLeaves()))
	}

	for want, key := range keys {
		got, ok := idx.Search(key)
		if !ok || got != want {
			t.Fatalf("Search(%d): got (%d,%v), want (%d,true)", key, got, ok, want)
		}
	}
}

func TestPredictClipsToArray(t *testing.T) {
	keys := []common.KeyType{10, 20, 30}
	idx, err := Build(keys, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, key := range []common.KeyType{-1000, 0, 35, 100000} {
		pos, bound := idx.Predict(key)
		if pos < 0 || pos >= len(keys) {
			t.Errorf("Predict(%d): position %d out of [0,%d)", key, pos, len(keys))
		}
		if bound < 0 {
			t.Errorf("Predict(%d): negative bound %d", key, bound)
		}
	}
}

func TestInsertOverflowAndRebuild(t *testing.T) {
	keys := []common.KeyType{0, 10, 20, 30, 40, 50}
	idx, err := Build(keys, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	idx.Insert(25)
	idx.Insert(-5)
	if idx.OverflowLen() != 2 {
		t.Fatalf("OverflowLen: got %d, want 2", idx.OverflowLen())
	}
	if idx.Len() != 8 {
		t.Fatalf("Len: got %d, want 8", idx.Len())
	}

	// Buffered keys are reachable before Rebuild via the overflow scan and
	// report their position in the logical concatenation.
	i, ok := idx.Search(25)
	if !ok || i != len(keys) {
		t.Fatalf("Search(25) pre-rebuild: got (%d,%v), want (%d,true)", i, ok, len(keys))
	}
	if idx.Stats().OverflowHitCount() != 1 {
		t.Errorf("expected one overflow hit, got %d", idx.Stats().OverflowHitCount())
	}
	if idx.FallbackCount() == 0 {
		t.Errorf("an overflow hit implies a window miss; fallback counter stayed 0")
	}

	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if idx.OverflowLen() != 0 {
		t.Fatalf("OverflowLen after Rebuild: got %d, want 0", idx.OverflowLen())
	}

	// Merged array is -5,0,10,20,25,30,40,50.
	if i, ok := idx.Search(25); !ok || i != 4 {
		t.Fatalf("Search(25) post-rebuild: got (%d,%v), want (4,true)", i, ok)
	}
	if i, ok := idx.Search(-5); !ok || i != 0 {
		t.Fatalf("Search(-5) post-rebuild: got (%d,%v), want (0,true)", i, ok)
	}
	if _, ok := idx.Search(26); ok {
		t.Fatalf("Search(26): found, want not found")
	}
}

func TestRebuildWithoutInsertsIsNoop(t *testing.T) {
	keys := []common.KeyType{1, 2, 3}
	idx, err := Build(keys, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := idx.Stage0()
	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if idx.Stage0() != before {
		t.Errorf("Rebuild with empty overflow retrained the index")
	}
}

func TestSingleKeyArray(t *testing.T) {
	idx, err := Build([]common.KeyType{7}, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if i, ok := idx.Search(7); !ok || i != 0 {
		t.Fatalf("Search(7): got (%d,%v), want (0,true)", i, ok)
	}
	if _, ok := idx.Search(8); ok {
		t.Fatalf("Search(8): found in single-key array")
	}
}
