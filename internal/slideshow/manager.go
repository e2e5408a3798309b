// Package slideshow drives the compositor: it scans the image directory,
// keeps a no-repeat rotation, advances on a timer and serves the commands
// arriving over the control socket. All compositor access happens on the
// single Run goroutine; commands from other goroutines are queued, never
// applied directly.
package slideshow

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gammazero/deque"

	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/effect"
)

// maxPending bounds the command queue; floods of commands drop the newest.
const maxPending = 64

// rescanDebounce coalesces bursts of directory events into one rescan.
const rescanDebounce = time.Second

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Config mirrors the slideshow portion of the config file.
type Config struct {
	Dir     string
	Shuffle bool

	// Delay is the dwell time between automatic advances.
	Delay time.Duration

	// TransitionDuration is passed through to every transition request.
	TransitionDuration time.Duration

	// Effects restricts the rotation to the named effects. Empty means the
	// library's full rotation.
	Effects []string
}

type commandKind int

const (
	cmdAdvance commandKind = iota
	cmdLoad
	cmdRescan
)

type command struct {
	kind commandKind
	path string
}

// Manager owns the slideshow loop.
type Manager struct {
	cfg     Config
	comp    *compositor.Compositor
	library *effect.Library
	rng     *rand.Rand

	mu       sync.Mutex
	images   []string
	pos      int
	lastPath string
	cmds     deque.Deque[command]

	wake chan struct{}
}

// New builds a manager. rng drives the image shuffle; nil selects an
// OS-seeded source.
func New(cfg Config, comp *compositor.Compositor, library *effect.Library, rng *rand.Rand) *Manager {
	if cfg.Delay <= 0 {
		cfg.Delay = 30 * time.Second
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{
		cfg:     cfg,
		comp:    comp,
		library: library,
		rng:     rng,
		wake:    make(chan struct{}, 1),
	}
}

// Next queues an immediate advance to the next image.
func (m *Manager) Next() {
	m.enqueue(command{kind: cmdAdvance})
}

// Load queues a transition to a specific file. The file is checked up front
// so callers get a synchronous error for a bad path.
func (m *Manager) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("slideshow: cannot load %s: %w", path, err)
	}
	if info.IsDir() || !imageExts[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("slideshow: %s is not a supported image", path)
	}
	m.enqueue(command{kind: cmdLoad, path: path})
	return nil
}

// Rescan queues a directory rescan.
func (m *Manager) Rescan() {
	m.enqueue(command{kind: cmdRescan})
}

// Dir returns the directory the rotation is built from.
func (m *Manager) Dir() string { return m.cfg.Dir }

// ImageCount reports the size of the current rotation.
func (m *Manager) ImageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

func (m *Manager) enqueue(c command) {
	m.mu.Lock()
	if m.cmds.Len() >= maxPending {
		m.mu.Unlock()
		log.Warn("command queue full, dropping command")
		return
	}
	m.cmds.PushBack(c)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) dequeue() (command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmds.Len() == 0 {
		return command{}, false
	}
	return m.cmds.PopFront(), true
}

// Run blocks until ctx ends, driving idle ticks, timed advances and queued
// commands. The initial scan failing is fatal; everything after that is
// logged and survived.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.scan(); err != nil {
		return err
	}

	watcher, err := m.startWatcher(ctx)
	if err != nil {
		log.Warn("directory watch unavailable, relying on manual rescans", "error", err)
	} else {
		defer watcher.Close()
	}

	// Prime the first image so the screen is never blank.
	m.advance(ctx)

	tick := time.NewTicker(m.comp.Period())
	defer tick.Stop()
	delay := time.NewTimer(m.cfg.Delay)
	defer delay.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-tick.C:
			m.comp.Tick()

		case <-delay.C:
			m.advance(ctx)
			delay.Reset(m.cfg.Delay)

		case <-m.wake:
			if m.drainCommands(ctx) {
				// A command changed the image; restart the dwell timer.
				if !delay.Stop() {
					select {
					case <-delay.C:
					default:
					}
				}
				delay.Reset(m.cfg.Delay)
			}
		}
	}
}

// drainCommands processes every queued command in arrival order, one at a
// time, and reports whether any of them advanced the image.
func (m *Manager) drainCommands(ctx context.Context) bool {
	advanced := false
	for {
		c, ok := m.dequeue()
		if !ok {
			return advanced
		}
		switch c.kind {
		case cmdAdvance:
			m.advance(ctx)
			advanced = true
		case cmdLoad:
			if m.show(ctx, c.path) {
				advanced = true
			}
		case cmdRescan:
			if err := m.scan(); err != nil {
				log.Error("rescan failed", "dir", m.cfg.Dir, "error", err)
			}
		}
	}
}

// advance transitions to the next image of the rotation. Undecodable files
// are skipped, trying at most one full rotation before giving up.
func (m *Manager) advance(ctx context.Context) {
	attempts := m.ImageCount()
	for i := 0; i < attempts; i++ {
		path := m.nextPath()
		if path == "" {
			return
		}
		if m.show(ctx, path) {
			return
		}
	}
	if attempts > 0 {
		log.Error("no displayable image found", "dir", m.cfg.Dir)
	}
}

// show decodes path and hands it to the compositor. Returns false when the
// image could not be shown.
func (m *Manager) show(ctx context.Context, path string) bool {
	img, err := decode(path)
	if err != nil {
		log.Warn("skipping image", "path", path, "error", err)
		return false
	}

	req := compositor.Request{
		Image:    img,
		Name:     filepath.Base(path),
		Duration: m.cfg.TransitionDuration,
	}
	if gen, err := m.pickEffect(); err == nil {
		req.Generator = gen
	} else {
		log.Warn("no usable effect, cutting straight to the image", "error", err)
		req.Generator = effect.AlphaDissolve{}
	}

	if err := m.comp.Transition(ctx, req); err != nil && ctx.Err() == nil {
		log.Error("transition failed", "path", path, "error", err)
		return false
	}

	m.mu.Lock()
	m.lastPath = path
	m.mu.Unlock()
	return true
}

// pickEffect draws from the configured subset, or the library rotation when
// none is configured.
func (m *Manager) pickEffect() (effect.Generator, error) {
	if len(m.cfg.Effects) == 0 {
		return m.library.Pick()
	}
	name := m.cfg.Effects[m.rng.IntN(len(m.cfg.Effects))]
	gen, ok := m.library.Get(name)
	if !ok {
		return nil, fmt.Errorf("slideshow: unknown effect %q", name)
	}
	return gen, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// scan rebuilds the rotation from the directory, keeping the position stable
// when the list is unchanged.
func (m *Manager) scan() error {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		return fmt.Errorf("slideshow: reading %s: %w", m.cfg.Dir, err)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			images = append(images, filepath.Join(m.cfg.Dir, e.Name()))
		}
	}
	sort.Strings(images)

	m.mu.Lock()
	defer m.mu.Unlock()
	same := len(images) == len(m.images)
	if same {
		known := make(map[string]bool, len(m.images))
		for _, p := range m.images {
			known[p] = true
		}
		for _, p := range images {
			if !known[p] {
				same = false
				break
			}
		}
	}
	if same {
		return nil
	}

	m.images = images
	m.pos = len(images) // force a reshuffle / restart
	log.Info("image directory scanned", "dir", m.cfg.Dir, "images", len(images))
	return nil
}

// nextPath walks the rotation, reshuffling at the wrap and avoiding an
// immediate repeat across the seam.
func (m *Manager) nextPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.images) == 0 {
		return ""
	}

	if m.pos >= len(m.images) {
		if m.cfg.Shuffle {
			m.rng.Shuffle(len(m.images), func(i, j int) {
				m.images[i], m.images[j] = m.images[j], m.images[i]
			})
			if len(m.images) > 1 && m.images[0] == m.lastPath {
				j := 1 + m.rng.IntN(len(m.images)-1)
				m.images[0], m.images[j] = m.images[j], m.images[0]
			}
		} else {
			sort.Strings(m.images)
		}
		m.pos = 0
	}

	p := m.images[m.pos]
	m.pos++
	return p
}

// startWatcher rescans after bursts of filesystem activity in the image
// directory settle down.
func (m *Manager) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(m.cfg.Dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var debounce *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if debounce == nil {
					debounce = time.AfterFunc(rescanDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				} else {
					debounce.Reset(rescanDebounce)
				}
			case <-fire:
				debounce = nil
				m.Rescan()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("directory watch error", "error", err)
			}
		}
	}()
	return watcher, nil
}
