package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTraceRepository in-memory реализация TraceRepository
type MemoryTraceRepository struct {
	mu     sync.RWMutex
	traces map[string]*Trace
	order  []string // id в порядке сохранения
	now    func() time.Time
}

// NewMemoryTraceRepository создаёт новый in-memory репозиторий
func NewMemoryTraceRepository() *MemoryTraceRepository {
	return &MemoryTraceRepository{
		traces: make(map[string]*Trace),
		now:    time.Now,
	}
}

func (r *MemoryTraceRepository) Save(_ context.Context, trace *Trace) error {
	if err := trace.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if trace.ID == "" {
		trace.ID = uuid.New().String()
	}
	trace.CreatedAt = r.now()

	if _, exists := r.traces[trace.ID]; !exists {
		r.order = append(r.order, trace.ID)
	}
	r.traces[trace.ID] = cloneTrace(trace)

	return nil
}

func (r *MemoryTraceRepository) GetByID(_ context.Context, id string) (*Trace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.traces[id]
	if !exists {
		return nil, ErrTraceNotFound
	}
	return cloneTrace(t), nil
}

func (r *MemoryTraceRepository) List(_ context.Context, opts *ListOptions) ([]*TraceSummary, int64, error) {
	o := opts.normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Новые первыми
	var matched []*TraceSummary
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.traces[r.order[i]]
		if o.Method != "" && t.Method != o.Method {
			continue
		}
		matched = append(matched, t.Summary())
	}

	total := int64(len(matched))
	if o.Offset >= len(matched) {
		return []*TraceSummary{}, total, nil
	}
	end := min(o.Offset+o.Limit, len(matched))

	return matched[o.Offset:end], total, nil
}

func (r *MemoryTraceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.traces[id]; !exists {
		return ErrTraceNotFound
	}
	delete(r.traces, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	return nil
}

// Len возвращает число сохранённых трасс
func (r *MemoryTraceRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.traces)
}

func cloneTrace(t *Trace) *Trace {
	c := *t
	c.Path = slices.Clone(t.Path)
	c.Graph = slices.Clone(t.Graph)
	c.Result = slices.Clone(t.Result)
	if t.SourceValue != nil {
		v := *t.SourceValue
		c.SourceValue = &v
	}
	return &c
}
