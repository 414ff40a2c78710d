// Written by hand in MockGen's output format.
// Source: handler/listener.go

// Package handlermock provides a go.uber.org/mock double for
// handler.SuccessListener, mockgen-shaped by hand since the interface is
// a single method and doesn't warrant a `go generate` step of its own.
package handlermock

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	boundwitness "github.com/xyo-network/origin-chain/boundwitness"
)

// MockSuccessListener is a mock of the SuccessListener interface.
type MockSuccessListener struct {
	ctrl     *gomock.Controller
	recorder *MockSuccessListenerMockRecorder
}

// MockSuccessListenerMockRecorder is the mock recorder for MockSuccessListener.
type MockSuccessListenerMockRecorder struct {
	mock *MockSuccessListener
}

// NewMockSuccessListener creates a new mock instance.
func NewMockSuccessListener(ctrl *gomock.Controller) *MockSuccessListener {
	mock := &MockSuccessListener{ctrl: ctrl}
	mock.recorder = &MockSuccessListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSuccessListener) EXPECT() *MockSuccessListenerMockRecorder {
	return m.recorder
}

// OnBoundWitnessComplete mocks base method.
func (m *MockSuccessListener) OnBoundWitnessComplete(ctx context.Context, bw boundwitness.BoundWitness, participantIndex int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OnBoundWitnessComplete", ctx, bw, participantIndex)
	ret0, _ := ret[0].(error)
	return ret0
}

// OnBoundWitnessComplete indicates an expected call of OnBoundWitnessComplete.
func (mr *MockSuccessListenerMockRecorder) OnBoundWitnessComplete(ctx, bw, participantIndex interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OnBoundWitnessComplete", reflect.TypeOf((*MockSuccessListener)(nil).OnBoundWitnessComplete), ctx, bw, participantIndex)
}
