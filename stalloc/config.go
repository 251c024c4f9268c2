package stalloc

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
)

// AllocatorTuning holds the knobs an operator can set without recompiling:
// initial region size, the frame-array growth guess (the C original's
// STACK_FRAME_GUESS), the hash table's load-factor trigger, and a minimum
// block-format version constraint.
type AllocatorTuning struct {
	InitialRegionBytes int     `json:"initial_region_bytes"`
	StackFrameGuess    int     `json:"stack_frame_guess"`
	HashLoadFactor     float64 `json:"hash_load_factor"`
	MinFormatVersion   string  `json:"min_format_version"`
}

const (
	defaultInitialRegionBytes = 1024 // STALLOC_DEFAULT in the C original
	defaultStackFrameGuess    = 8
	defaultHashLoadFactor     = 0.75
)

// DefaultTuning returns the library's built-in defaults.
func DefaultTuning() AllocatorTuning {
	return AllocatorTuning{
		InitialRegionBytes: defaultInitialRegionBytes,
		StackFrameGuess:    defaultStackFrameGuess,
		HashLoadFactor:     defaultHashLoadFactor,
	}
}

// withDefaults replaces any zero or negative numeric field with the library
// default, leaving positive caller-supplied values and MinFormatVersion
// untouched.
func (t AllocatorTuning) withDefaults() AllocatorTuning {
	d := DefaultTuning()

	if t.InitialRegionBytes <= 0 {
		t.InitialRegionBytes = d.InitialRegionBytes
	}

	if t.StackFrameGuess <= 0 {
		t.StackFrameGuess = d.StackFrameGuess
	}

	if t.HashLoadFactor <= 0 {
		t.HashLoadFactor = d.HashLoadFactor
	}

	return t
}

// LoadTuning reads an AllocatorTuning from a JSON file and validates its
// MinFormatVersion constraint, if any, against FormatVersion.
func LoadTuning(path string) (AllocatorTuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AllocatorTuning{}, fmt.Errorf("stalloc: read tuning file: %w", err)
	}

	var t AllocatorTuning
	if err := json.Unmarshal(data, &t); err != nil {
		return AllocatorTuning{}, fmt.Errorf("stalloc: parse tuning file: %w", err)
	}

	CheckFormatCompatibility(t.MinFormatVersion)

	return t.withDefaults(), nil
}

// TuningWatcher hot-reloads an AllocatorTuning from disk whenever the file
// changes, using github.com/fsnotify/fsnotify the same way the teacher's
// internal/runtime/vfs/watch_fsnotify.go turns OS events into a channel.
// It only ever affects tuning fields consulted by future containers/frames
// (e.g. HashLoadFactor for a HashMap created after a reload); it never
// mutates an Allocator already constructed, matching the single-threaded,
// no-compaction contract of the allocator itself.
type TuningWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(AllocatorTuning)
	done     chan struct{}
}

// WatchTuning starts watching path and invokes onChange with the freshly
// parsed tuning every time the file is written.
func WatchTuning(path string, onChange func(AllocatorTuning)) (*TuningWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("stalloc: create watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("stalloc: watch %s: %w", path, err)
	}

	tw := &TuningWatcher{watcher: w, path: path, onChange: onChange, done: make(chan struct{})}
	go tw.loop()

	return tw, nil
}

func (tw *TuningWatcher) loop() {
	for {
		select {
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			tuning, err := LoadTuning(tw.path)
			if err != nil {
				log.Printf("stalloc: tuning reload from %s failed: %v", tw.path, err)
				continue
			}

			tw.onChange(tuning)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}

			log.Printf("stalloc: tuning watcher error: %v", err)
		case <-tw.done:
			return
		}
	}
}

// Close stops the watcher.
func (tw *TuningWatcher) Close() error {
	close(tw.done)
	return tw.watcher.Close()
}
