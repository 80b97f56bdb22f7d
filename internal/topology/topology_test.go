package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaPipe_Valid(t *testing.T) {
	t.Parallel()
	topo := MediaPipe()
	require.NoError(t, topo.Validate())
	assert.Equal(t, 468, topo.PointCount)
	assert.Equal(t, 94, topo.NoseTip())
	assert.Len(t, topo.LipIndices(), 44)
}

func TestMediaPipe_ReturnsCopy(t *testing.T) {
	t.Parallel()
	a := MediaPipe()
	a.TopLip[0] = 999
	b := MediaPipe()
	assert.Equal(t, 61, b.TopLip[0])
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Topology)
	}{
		{"zero point count", func(tp *Topology) { tp.PointCount = 0 }},
		{"eye index out of range", func(tp *Topology) { tp.LeftEye.Top = 468 }},
		{"negative brow index", func(tp *Topology) { tp.RightBrow.Arch[1] = -1 }},
		{"short nose side", func(tp *Topology) { tp.NoseBridgeLeft = tp.NoseBridgeLeft[:4] }},
		{"empty nose bridge", func(tp *Topology) { tp.NoseBridge = nil }},
		{"forehead mismatch", func(tp *Topology) { tp.ForeheadEnd = []int{1} }},
		{"empty lip", func(tp *Topology) { tp.BottomLip = nil }},
		{"temple out of range", func(tp *Topology) { tp.LeftJaw.Temple = 1000 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			topo := MediaPipe()
			tt.mutate(&topo)
			assert.Error(t, topo.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("partial override keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "topology.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"chin_end": 150, "right_eye": {"front": 1, "back": 2, "top": 3, "bottom": 4}}`), 0644))

		topo, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 150, topo.ChinEnd)
		assert.Equal(t, Eye{Front: 1, Back: 2, Top: 3, Bottom: 4}, topo.RightEye)
		assert.Equal(t, MediaPipe().LeftEye, topo.LeftEye)
	})

	t.Run("rejects wrong extension", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "topology.yaml"))
		assert.ErrorContains(t, err, ".json extension")
	})

	t.Run("rejects invalid index", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "topology.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"point_count": 100}`), 0644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "invalid topology")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "topology.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to parse")
	})
}
