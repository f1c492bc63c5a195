package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/remates-cli/internal/extract"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/reconcile"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, req extract.Request) (*model.Remate, error) {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(context.Context, extract.Request) *model.Remate); ok {
		return fn(ctx, req), args.Error(1)
	}
	r, _ := args.Get(0).(*model.Remate)
	return r, args.Error(1)
}

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(ctx context.Context, records []model.Remate, info reconcile.RunInfo) (*reconcile.Result, error) {
	args := m.Called(ctx, records, info)
	r, _ := args.Get(0).(*reconcile.Result)
	return r, args.Error(1)
}

// byMatricula matches an extract request carrying the given known matrícula.
func byMatricula(m string) any {
	return mock.MatchedBy(func(r extract.Request) bool { return r.Matricula == m })
}

// byText matches an extract request whose text contains s.
func byText(s string) any {
	return mock.MatchedBy(func(r extract.Request) bool { return contains(r.RawText, s) })
}
