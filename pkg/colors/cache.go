package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/config"
)

const (
	cacheFile = "category_colors.json"

	// NoCategory is the calendar color (graphite) for uncategorized tasks.
	NoCategory = "8"

	// paletteSize is the number of Google Calendar event colors (1..11).
	paletteSize = 11
)

type CategoryState struct {
	ColorID  string    `json:"color_id"`
	LastUsed time.Time `json:"last_used"`
}

// ColorCache gives each category a stable calendar color, recycling the
// least recently used one once the palette runs out.
type ColorCache struct {
	Path       string
	Categories map[string]*CategoryState
	now        func() time.Time
	mu         sync.Mutex
	dirty      bool
}

func NewColorCache() (*ColorCache, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, cacheFile))
}

func Open(path string) (*ColorCache, error) {
	c := &ColorCache{
		Path:       path,
		Categories: make(map[string]*CategoryState),
		now:        time.Now,
	}
	if _, err := os.Stat(path); err == nil {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Categories)
}

func (c *ColorCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(c.Categories); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// ColorID returns the color for category. Categories are case-insensitive.
func (c *ColorCache) ColorID(category string) string {
	name := strings.ToLower(strings.TrimSpace(category))
	if name == "" {
		return NoCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok := c.Categories[name]; ok {
		state.LastUsed = c.now()
		c.dirty = true
		return state.ColorID
	}
	return c.assign(name)
}

func (c *ColorCache) assign(name string) string {
	used := make(map[string]bool)
	for _, s := range c.Categories {
		used[s.ColorID] = true
	}

	for i := 1; i <= paletteSize; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Categories[name] = &CategoryState{ColorID: id, LastUsed: c.now()}
			c.dirty = true
			return id
		}
	}

	var oldest string
	var oldestTime time.Time
	for cat, s := range c.Categories {
		if oldest == "" || s.LastUsed.Before(oldestTime) {
			oldest, oldestTime = cat, s.LastUsed
		}
	}

	recycled := c.Categories[oldest].ColorID
	delete(c.Categories, oldest)
	c.Categories[name] = &CategoryState{ColorID: recycled, LastUsed: c.now()}
	c.dirty = true
	return recycled
}
