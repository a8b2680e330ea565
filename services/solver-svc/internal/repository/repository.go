package repository

import (
	"context"
	"errors"
	"time"
)

// Стандартные ошибки
var (
	ErrTraceNotFound = errors.New("trace not found")
	ErrInvalidTrace  = errors.New("invalid trace")
)

// Trace сохранённое решение: граф, запрос и полная трасса шагов.
// Graph и Result - JSON в формате solverv1.
type Trace struct {
	ID        string
	Method    string
	SourceID  string
	TargetID  string
	GraphHash string
	NodeCount int
	EdgeCount int
	StepCount int
	// SourceValue - итоговое значение источника, nil если цель недостижима
	SourceValue *int64
	PathFound   bool
	Path        []string
	Graph       []byte
	Result      []byte
	CreatedAt   time.Time
}

// TraceSummary краткая информация о трассе для списков
type TraceSummary struct {
	ID          string
	Method      string
	SourceID    string
	TargetID    string
	GraphHash   string
	NodeCount   int
	EdgeCount   int
	StepCount   int
	SourceValue *int64
	PathFound   bool
	CreatedAt   time.Time
}

// Summary возвращает краткую форму трассы
func (t *Trace) Summary() *TraceSummary {
	return &TraceSummary{
		ID:          t.ID,
		Method:      t.Method,
		SourceID:    t.SourceID,
		TargetID:    t.TargetID,
		GraphHash:   t.GraphHash,
		NodeCount:   t.NodeCount,
		EdgeCount:   t.EdgeCount,
		StepCount:   t.StepCount,
		SourceValue: t.SourceValue,
		PathFound:   t.PathFound,
		CreatedAt:   t.CreatedAt,
	}
}

func (t *Trace) validate() error {
	switch {
	case t == nil:
		return ErrInvalidTrace
	case t.Method == "", t.SourceID == "", t.TargetID == "", t.GraphHash == "":
		return ErrInvalidTrace
	case len(t.Graph) == 0, len(t.Result) == 0:
		return ErrInvalidTrace
	}
	return nil
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// ListOptions опции для списка; новые трассы первыми
type ListOptions struct {
	Limit  int
	Offset int
	Method string
}

func (o *ListOptions) normalize() ListOptions {
	out := ListOptions{Limit: DefaultPageSize}
	if o != nil {
		out = *o
	}
	if out.Limit <= 0 {
		out.Limit = DefaultPageSize
	}
	if out.Limit > MaxPageSize {
		out.Limit = MaxPageSize
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// TraceRepository хранилище трасс решений
type TraceRepository interface {
	// Save присваивает ID (если пуст) и CreatedAt
	Save(ctx context.Context, trace *Trace) error
	GetByID(ctx context.Context, id string) (*Trace, error)
	List(ctx context.Context, opts *ListOptions) ([]*TraceSummary, int64, error)
	Delete(ctx context.Context, id string) error
}
