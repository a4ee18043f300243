// ABOUTME: Scripted Transport for api package tests
// ABOUTME: Records every call and replays canned envelopes per method+path

package api

import (
	"context"
	"encoding/json"
	"sync"
)

type recordedCall struct {
	Method string
	Path   string
	Body   any
}

// fakeTransport replays envelopes keyed by "METHOD path".
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]Envelope
	calls     []recordedCall
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]Envelope)}
}

func (f *fakeTransport) on(method, path string, env Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = env
}

func (f *fakeTransport) Do(ctx context.Context, method, path string, body any) Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, recordedCall{Method: method, Path: path, Body: body})
	env, ok := f.responses[method+" "+path]
	if !ok {
		return Failure("NOT_FOUND", "no canned response for "+method+" "+path)
	}
	return env
}

func (f *fakeTransport) lastCall() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func ok(data any) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return Envelope{Success: true, Data: raw}
}
