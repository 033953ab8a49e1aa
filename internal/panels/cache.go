package panels

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jedarden/frankendash/internal/adapters"
	"github.com/jedarden/frankendash/internal/keys"
	"github.com/jedarden/frankendash/internal/state"
	"github.com/jedarden/frankendash/internal/ui"
)

// Cache shows the cache store and clears it on request
type Cache struct {
	ui.Base
	ui.NoNavigation
	ui.NoSearch

	deps Deps
	src  CacheSource
	feed *state.Feed[adapters.CacheStats]
	note ui.Note
}

// NewCache creates the cache panel
func NewCache(deps Deps, src CacheSource) *Cache {
	return &Cache{
		Base: ui.NewBase("cache", "Cache"),
		deps: deps,
		src:  src,
		feed: state.NewFeed[adapters.CacheStats]("cache", deps.log()),
	}
}

// Refresh reads cache statistics
func (c *Cache) Refresh(ctx context.Context) {
	c.feed.Update(c.src.Stats(ctx))
}

// Bindings lists the panel actions
func (c *Cache) Bindings() []key.Binding {
	return []key.Binding{c.deps.Keys.ClearCache}
}

// HandleKey clears the cache
func (c *Cache) HandleKey(ctx context.Context, ev keys.Event) bool {
	if !keys.Matches(ev, c.deps.Keys.ClearCache) {
		return false
	}
	if err := c.src.Clear(ctx); err != nil {
		c.deps.log().Error("clear cache", "error", err)
		c.note.Set(c.deps.now(), false, "clear failed: "+err.Error())
	} else {
		c.deps.log().Info("cache cleared")
		c.note.Set(c.deps.now(), true, "cache, config, view and route caches cleared")
	}
	c.Refresh(ctx)
	return true
}

// Render draws the cache summary
func (c *Cache) Render(width, height int) []string {
	t := c.deps.Theme
	lines := []string{title(t, "Cache"), ""}
	stats, ok := c.feed.Data()
	if !ok {
		lines = append(lines, feedNoData(t, c.feed))
	} else {
		lines = append(lines,
			fmt.Sprintf("Driver   %s", stats.Driver),
			fmt.Sprintf("Status   %s", t.Success.Render(stats.Status)),
			fmt.Sprintf("Entries  %d", stats.Entries),
			fmt.Sprintf("Size     %s", stats.SizeText()),
		)
	}
	lines = append(lines, "", c.note.Line(c.deps.now(), t))
	return lines
}
