package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/service"
)

func newBrokerFixture(timeout time.Duration) (*service.InputBroker, *service.ResponseSlot, *mockControl, *service.ControlRelay) {
	slot := service.NewResponseSlot()
	control := &mockControl{}
	broker := service.NewInputBroker(slot, control, "1001", timeout, discardLogger())
	relay := service.NewControlRelay(slot, control, "1001", discardLogger())
	return broker, slot, control, relay
}

func TestRequestInput_RoundTrip(t *testing.T) {
	broker, _, control, relay := newBrokerFixture(5 * time.Second)

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := broker.RequestInput(context.Background(), "enter phone")
		done <- result{v, err}
	}()

	// Wait for the prompt to go out before answering.
	deadline := time.Now().Add(time.Second)
	for len(control.messages()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("prompt never sent")
		}
		time.Sleep(time.Millisecond)
	}
	if msg := control.messages()[0]; msg.ChatID != "1001" || msg.Text != "enter phone" {
		t.Errorf("prompt = %+v, want chat 1001 text 'enter phone'", msg)
	}

	if err := relay.HandleControlMessage(context.Background(), model.NewControlMessage("1001", "+15550100")); err != nil {
		t.Fatalf("HandleControlMessage: %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("RequestInput: %v", r.err)
		}
		if r.value != "+15550100" {
			t.Errorf("RequestInput = %q, want %q", r.value, "+15550100")
		}
	case <-time.After(time.Second):
		t.Fatal("RequestInput did not return")
	}
}

func TestRequestInput_DeliveryError(t *testing.T) {
	broker, _, control, _ := newBrokerFixture(time.Second)
	control.sendErr = errors.New("network down")

	_, err := broker.RequestInput(context.Background(), "enter phone")
	var deliveryErr *service.DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("error = %v, want DeliveryError", err)
	}
	if deliveryErr.ChatID != "1001" {
		t.Errorf("DeliveryError.ChatID = %q, want 1001", deliveryErr.ChatID)
	}
}

func TestRequestInput_Timeout(t *testing.T) {
	broker, _, _, _ := newBrokerFixture(10 * time.Millisecond)

	_, err := broker.RequestInput(context.Background(), "enter code")
	if !errors.Is(err, service.ErrInputTimeout) {
		t.Errorf("error = %v, want ErrInputTimeout", err)
	}
}

func TestRequestInput_SecondRequestRejected(t *testing.T) {
	broker, _, control, _ := newBrokerFixture(time.Second)

	started := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		close(started)
		_, err := broker.RequestInput(context.Background(), "first")
		finished <- err
	}()
	<-started
	deadline := time.Now().Add(time.Second)
	for len(control.messages()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first prompt never sent")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := broker.RequestInput(context.Background(), "second")
	if !errors.Is(err, service.ErrRequestInFlight) {
		t.Errorf("second request error = %v, want ErrRequestInFlight", err)
	}

	<-finished // first request times out, releasing the guard
}

func TestRequestInput_ContextCancel(t *testing.T) {
	broker, _, _, _ := newBrokerFixture(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := broker.RequestInput(ctx, "enter phone")
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RequestInput did not observe cancellation")
	}
}
