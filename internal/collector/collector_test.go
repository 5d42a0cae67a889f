package collector

import (
	"context"
	"testing"

	"github.com/ftorres/b3score/internal/core"
	"github.com/stretchr/testify/assert"
)

type stubCollector struct {
	name string
	fail map[string]bool
}

func (s stubCollector) Name() string { return s.name }

func (s stubCollector) Fetch(ctx context.Context, code string) (core.FinancialRecord, error) {
	if s.fail[code] {
		return core.FinancialRecord{}, core.ErrStockNotFound
	}
	return core.FinancialRecord{Code: code}, nil
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubCollector{name: "yahoo"})

	c, ok := reg.Get("yahoo")
	assert.True(t, ok)
	assert.Equal(t, "yahoo", c.Name())

	_, ok = reg.Get("unknown")
	assert.False(t, ok)
}

func TestFetchAll(t *testing.T) {
	stub := stubCollector{name: "stub", fail: map[string]bool{"XXXX3": true}}
	codes := []string{"PETR4", "VALE3", "XXXX3", "ITUB4"}

	var observed int
	records, failed := FetchAll(context.Background(), stub, codes, 2,
		func(code string, err error) { observed++ })

	assert.Len(t, records, 3)
	assert.Len(t, failed, 1)
	assert.ErrorIs(t, failed["XXXX3"], core.ErrStockNotFound)
	assert.Equal(t, len(codes), observed)
}

func TestFetchAll_NilObserver(t *testing.T) {
	stub := stubCollector{name: "stub"}

	records, failed := FetchAll(context.Background(), stub, []string{"PETR4"}, 0, nil)

	assert.Len(t, records, 1)
	assert.Empty(t, failed)
}
