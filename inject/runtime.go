// Package inject delivers compiled CSS to a live stylesheet surface exactly
// once per key.
package inject

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stylx/common"
)

// DevelopmentPrefix starts id of every per-key development style element.
const DevelopmentPrefix = "stylx-dev-"

// Sheet is a constructed stylesheet.
type Sheet interface {
	// InsertRule appends CSS text to the sheet. Malformed text is reported by
	// the surface.
	InsertRule(text string) error
}

// StyleElement is an individually addressable style element.
type StyleElement interface {
	// SetText replaces whole content of the element.
	SetText(text string)
}

// Surface is the live document stylesheets are delivered to.
type Surface interface {
	NewSheet() Sheet
	Adopt(sheet Sheet) error
	// StyleElement returns existing element with id or creates a new one.
	StyleElement(id string) (StyleElement, error)
}

// Item is a single keyed piece of CSS.
type Item struct {
	Key string
	CSS string
}

// Batch is an ordered list of items delivered together.
type Batch []Item

// Runtime is the injection registry. It is safe for concurrent use.
type Runtime struct {
	mu        sync.Mutex
	surface   Surface
	sheet     Sheet // nil until attached
	delivered map[string]bool
	pending   Batch
	log       *zap.Logger
}

// New creates runtime delivering to surface.
func New(surface Surface, log *zap.Logger) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runtime{
		surface:   surface,
		delivered: make(map[string]bool),
		log:       log.Named("inject"),
	}
}

// Attached reports whether shared sheet was adopted by the surface.
func (r *Runtime) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sheet != nil
}

// Delivered reports whether CSS for key was inserted into shared sheet.
func (r *Runtime) Delivered(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered[key]
}

func (r *Runtime) attach() error {
	if r.sheet != nil {
		return nil
	}
	sheet := r.surface.NewSheet()
	if err := r.surface.Adopt(sheet); err != nil {
		return err
	}
	r.sheet = sheet
	r.log.Debug("Shared sheet attached")
	return nil
}

// Inject appends css to the shared sheet unless key was already delivered.
// Errors of the surface are returned as is and key stays undelivered.
func (r *Runtime) Inject(key, css string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.delivered[key] {
		return nil
	}
	if err := r.attach(); err != nil {
		return err
	}
	if err := r.sheet.InsertRule(css); err != nil {
		return err
	}
	r.delivered[key] = true
	r.log.Debug("Injected", zap.String("key", key), zap.Int("bytes", len(css)))
	return nil
}

// InjectDevelopment replaces content of the style element dedicated to key.
// It does not touch shared sheet or delivered keys, so changed CSS of the same
// key replaces previous one.
func (r *Runtime) InjectDevelopment(key, css string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	el, err := r.surface.StyleElement(DevelopmentPrefix + key)
	if err != nil {
		return err
	}
	el.SetText(css)
	r.log.Debug("Replaced development style", zap.String("key", key), zap.Int("bytes", len(css)))
	return nil
}

// InjectBatch inserts CSS of all not yet delivered keys of the batch with a
// single insertion, keeping batch order. Repeated keys are taken once.
func (r *Runtime) InjectBatch(batch Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.injectBatch(batch)
}

func (r *Runtime) injectBatch(batch Batch) error {
	var (
		sb   strings.Builder
		keys []string
	)
	seen := make(map[string]bool, len(batch))
	for _, it := range batch {
		if r.delivered[it.Key] || seen[it.Key] {
			continue
		}
		seen[it.Key] = true
		keys = append(keys, it.Key)
		sb.WriteString(it.CSS)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.attach(); err != nil {
		return err
	}
	if err := r.sheet.InsertRule(sb.String()); err != nil {
		return err
	}
	for _, k := range keys {
		r.delivered[k] = true
	}
	r.log.Debug("Injected batch", zap.Strings("keys", keys), zap.Int("bytes", sb.Len()))
	return nil
}

// Queue adds item to the pending batch, see Flush.
func (r *Runtime) Queue(key, css string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Item{Key: key, CSS: css})
}

// Pending returns number of queued items.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush delivers queued items as a single batch. Queue is emptied even when
// delivery fails.
func (r *Runtime) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := r.pending
	r.pending = nil
	return r.injectBatch(batch)
}

// Deliver hands CSS of key to runtime according to delivery mode. In batch
// mode CSS is only queued and reaches the surface on Flush.
func Deliver(r *Runtime, mode common.DeliveryMode, key, css string) error {
	switch mode {
	case common.DeliveryModeShared:
		return r.Inject(key, css)
	case common.DeliveryModeDevelopment:
		return r.InjectDevelopment(key, css)
	case common.DeliveryModeBatch:
		r.Queue(key, css)
		return nil
	default:
		return fmt.Errorf("unsupported delivery mode %s", mode)
	}
}
