package slideshow

import (
	"context"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/effect"
	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/imaging"
	"github.com/quenby/photoframed/internal/overlay"
)

func writePNG(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := imaging.New(4, 4)
	imaging.Fill(img, color.RGBA{shade, shade, shade, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testManager(t *testing.T, dir string, cfg Config) (*Manager, *fanout.Fanout) {
	t.Helper()
	cfg.Dir = dir
	out := fanout.New()
	r := overlay.New(16, 12, overlay.Config{TimeSize: 8, DateSize: 6})
	comp := compositor.New(compositor.Config{
		Width:           16,
		Height:          12,
		FrameRate:       100,
		DefaultDuration: 20 * time.Millisecond,
	}, r, out, nil)
	lib := effect.DefaultLibrary(rand.New(rand.NewPCG(1, 2)))
	return New(cfg, comp, lib, rand.New(rand.NewPCG(3, 4))), out
}

func TestScanFindsOnlyImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 10)
	writePNG(t, filepath.Join(dir, "b.jpg"), 20) // extension decides at scan time
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	m, _ := testManager(t, dir, Config{})
	require.NoError(t, m.scan())
	assert.Equal(t, 2, m.ImageCount())
}

func TestScanMissingDirFails(t *testing.T) {
	m, _ := testManager(t, "/nonexistent/photos", Config{})
	assert.Error(t, m.scan())
}

func TestLoadRejectsBadPaths(t *testing.T) {
	dir := t.TempDir()
	m, _ := testManager(t, dir, Config{})

	assert.Error(t, m.Load(filepath.Join(dir, "missing.png")))

	txt := filepath.Join(dir, "not-an-image.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	assert.Error(t, m.Load(txt))

	ok := filepath.Join(dir, "real.png")
	writePNG(t, ok, 50)
	assert.NoError(t, m.Load(ok))
}

func TestNextPathSequentialOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"c.png", "a.png", "b.png"} {
		writePNG(t, filepath.Join(dir, n), 1)
	}
	m, _ := testManager(t, dir, Config{Shuffle: false})
	require.NoError(t, m.scan())

	var got []string
	for i := 0; i < 6; i++ {
		got = append(got, filepath.Base(m.nextPath()))
	}
	assert.Equal(t, []string{"a.png", "b.png", "c.png", "a.png", "b.png", "c.png"}, got)
}

func TestNextPathShuffleNeverRepeatsAcrossSeam(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "c.png", "d.png"} {
		writePNG(t, filepath.Join(dir, n), 1)
	}
	m, _ := testManager(t, dir, Config{Shuffle: true})
	require.NoError(t, m.scan())

	last := ""
	for i := 0; i < 100; i++ {
		p := m.nextPath()
		require.NotEmpty(t, p)
		require.NotEqual(t, last, p, "pick %d repeated", i)
		// Track only across wrap seams via lastPath bookkeeping.
		m.mu.Lock()
		m.lastPath = p
		m.mu.Unlock()
		last = p
	}
}

func TestCommandQueueBounded(t *testing.T) {
	dir := t.TempDir()
	m, _ := testManager(t, dir, Config{})

	for i := 0; i < maxPending*2; i++ {
		m.Next()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, maxPending, m.cmds.Len())
}

func TestRunShowsImagesAndHandlesNext(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"), 30)
	writePNG(t, filepath.Join(dir, "two.png"), 200)

	m, out := testManager(t, dir, Config{
		Delay:              time.Hour, // no automatic advance during the test
		TransitionDuration: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	waitFor(t, func() bool { return out.Published() >= 1 }, "priming frame")
	primed := out.Published()

	m.Next()
	waitFor(t, func() bool { return out.Published() > primed }, "frames after next command")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on cancellation")
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
