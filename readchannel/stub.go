// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

// stubHandle holds the channel's current RPC stub and evicts/recreates it
// on broken-transport signals. It is the only field the channel's methods
// mutably share across calls besides the logical position bookkeeping,
// and it is only ever swapped between RPC attempts.
type stubHandle struct {
	provider StubProvider
	current  Stub
}

func newStubHandle(provider StubProvider) *stubHandle {
	return &stubHandle{provider: provider}
}

// get returns the current stub, creating one lazily on first use.
func (h *stubHandle) get() (Stub, error) {
	if h.current != nil {
		return h.current, nil
	}
	s, err := h.provider.NewStub()
	if err != nil {
		return nil, err
	}
	h.current = s
	return s, nil
}

// reportFailure inspects err and, if it indicates the transport is broken,
// evicts the current stub so the next get() call mints a fresh one.
func (h *stubHandle) reportFailure(err error) {
	if h.current == nil {
		return
	}
	if h.provider.IsStubBroken(err) {
		h.provider.EvictStub(h.current)
		h.current = nil
	}
}

// defaultStubProvider adapts a bare stub factory closure into a
// StubProvider using the standard gRPC status-code classification
// (isStubBrokenStatus) for IsStubBroken, and a no-op EvictStub — suitable
// when the factory always returns a stub bound to a fresh transport.
type defaultStubProvider struct {
	newStub func() (Stub, error)
}

// NewDefaultStubProvider builds a StubProvider around a stub factory,
// classifying broken transports via gRPC status codes (Unavailable,
// Aborted, Internal, Canceled, ResourceExhausted).
func NewDefaultStubProvider(newStub func() (Stub, error)) StubProvider {
	return &defaultStubProvider{newStub: newStub}
}

func (p *defaultStubProvider) NewStub() (Stub, error) { return p.newStub() }
func (p *defaultStubProvider) IsStubBroken(err error) bool { return isStubBrokenStatus(err) }
func (p *defaultStubProvider) EvictStub(Stub)              {}
