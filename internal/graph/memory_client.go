package graph

import (
	"context"
	"strings"
	"sync"
)

// MemoryClient records statements and replays canned results. Tests and
// servers started without GRAPH_URI use it.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	batches      [][]ExecutedQuery
	readResults  []Result
	writeResults []Result
	responders   []responder
	err          error
	connectivity error
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

type responder struct {
	fragment string
	result   Result
}

// NewMemoryClient returns an empty client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// RespondTo answers every read whose cypher contains fragment with res. Keyed
// responses take precedence over queued ones, which keeps results stable when
// reads run concurrently.
func (m *MemoryClient) RespondTo(fragment string, res Result) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders = append(m.responders, responder{fragment: fragment, result: res})
	return m
}

// PushReadResult queues a result for the next unmatched ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

// PushWriteResult queues a result for the next ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.writeCalls = append(m.writeCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})
	return shift(&m.writeResults), nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.readCalls = append(m.readCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})

	for _, r := range m.responders {
		if strings.Contains(cypher, r.fragment) {
			return r.result, nil
		}
	}
	return shift(&m.readResults), nil
}

// ExecuteBatch records the statements as one batch. Each statement also shows
// up in WriteCalls.
func (m *MemoryClient) ExecuteBatch(_ context.Context, statements []Statement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	batch := make([]ExecutedQuery, 0, len(statements))
	for _, st := range statements {
		batch = append(batch, ExecutedQuery{Query: st.Cypher, Params: cloneMap(st.Params)})
	}
	m.batches = append(m.batches, batch)
	m.writeCalls = append(m.writeCalls, batch...)
	return nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write statements.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

// Batches returns a snapshot of executed batches.
func (m *MemoryClient) Batches() [][]ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]ExecutedQuery(nil), m.batches...)
}

func shift(queue *[]Result) Result {
	if len(*queue) == 0 {
		return Result{}
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
