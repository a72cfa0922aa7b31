// Package watchlist persists the ordered list of channels the media-only
// policy applies to. The file is a plain JSON array of channel IDs; it is
// loaded once at startup and edited through the CLI between runs.
package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tinyland-inc/mediaclaw/pkg/config"
)

// Watchlist is the set of media-only channels, with the file's ordering
// preserved for display.
type Watchlist struct {
	path    string
	ordered []string
	lookup  map[string]struct{}
}

// Load reads the watchlist file. A missing file is not an error: an empty
// one is created and the bot runs with zero watched channels. An
// unparseable file is an error and should abort startup.
func Load(path string) (*Watchlist, error) {
	w := &Watchlist{path: path, lookup: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := w.Save(); err != nil {
			return nil, fmt.Errorf("creating watchlist %s: %w", path, err)
		}
		return w, nil
	}
	if err != nil {
		return nil, err
	}

	var ids config.FlexibleStringSlice
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing watchlist %s: %w", path, err)
	}

	for _, id := range ids {
		w.add(id)
	}
	return w, nil
}

func (w *Watchlist) add(id string) bool {
	if _, ok := w.lookup[id]; ok {
		return false
	}
	w.ordered = append(w.ordered, id)
	w.lookup[id] = struct{}{}
	return true
}

// Contains reports whether a channel is under the media-only policy.
func (w *Watchlist) Contains(channelID string) bool {
	_, ok := w.lookup[channelID]
	return ok
}

// IDs returns the watched channel IDs in file order.
func (w *Watchlist) IDs() []string {
	out := make([]string, len(w.ordered))
	copy(out, w.ordered)
	return out
}

// Len returns the number of watched channels.
func (w *Watchlist) Len() int {
	return len(w.ordered)
}

// Add appends a channel and persists the list. Returns false if the channel
// was already present.
func (w *Watchlist) Add(channelID string) (bool, error) {
	if !w.add(channelID) {
		return false, nil
	}
	return true, w.Save()
}

// Remove deletes a channel and persists the list. Returns false if the
// channel was not present.
func (w *Watchlist) Remove(channelID string) (bool, error) {
	if _, ok := w.lookup[channelID]; !ok {
		return false, nil
	}
	delete(w.lookup, channelID)
	for i, id := range w.ordered {
		if id == channelID {
			w.ordered = append(w.ordered[:i], w.ordered[i+1:]...)
			break
		}
	}
	return true, w.Save()
}

// Save writes the list back to disk, creating parent directories as needed.
func (w *Watchlist) Save() error {
	ids := w.ordered
	if ids == nil {
		ids = []string{}
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0o600)
}
