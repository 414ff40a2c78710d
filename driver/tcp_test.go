package driver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xyo-network/origin-chain/driver"
)

func TestTCPPipe_SendAwaitsResponseAcrossFraming(t *testing.T) {
	connA, connB := net.Pipe()
	pipeA := driver.NewTCPPipe(connA)
	pipeB := driver.NewTCPPipe(connB)
	defer pipeA.Close()
	defer pipeB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resultCh := make(chan struct {
		resp []byte
		err  error
	}, 1)
	go func() {
		resp, err := pipeA.Send(ctx, []byte("hello"), true)
		resultCh <- struct {
			resp []byte
			err  error
		}{resp, err}
	}()

	first, err := pipeB.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), first)

	_, err = pipeB.Send(ctx, []byte("world"), false)
	require.NoError(t, err)

	res := <-resultCh
	require.NoError(t, res.err)
	require.Equal(t, []byte("world"), res.resp)
}

func TestTCPPipe_SendWithoutAwaitDoesNotBlock(t *testing.T) {
	connA, connB := net.Pipe()
	pipeA := driver.NewTCPPipe(connA)
	pipeB := driver.NewTCPPipe(connB)
	defer pipeA.Close()
	defer pipeB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := pipeA.Send(ctx, []byte("fire and forget"), false)
		done <- err
	}()

	received, err := pipeB.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("fire and forget"), received)
	require.NoError(t, <-done)
}

func TestTCPPipe_SendErrorsOncePeerConnClosed(t *testing.T) {
	connA, connB := net.Pipe()
	pipeA := driver.NewTCPPipe(connA)
	defer pipeA.Close()
	connB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := pipeA.Send(ctx, []byte("no one is listening"), true)
	require.Error(t, err)
}

func TestTCPPipe_CloseIsIdempotent(t *testing.T) {
	connA, connB := net.Pipe()
	defer connB.Close()
	pipeA := driver.NewTCPPipe(connA)

	require.NoError(t, pipeA.Close())
	require.NoError(t, pipeA.Close())
}

func TestTCPPipe_ReceiveErrorsAfterClose(t *testing.T) {
	connA, connB := net.Pipe()
	defer connB.Close()
	pipeA := driver.NewTCPPipe(connA)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := pipeA.Receive(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, pipeA.Close())
	require.Error(t, <-done)
}
