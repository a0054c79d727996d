package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/service"
)

func TestRelay_AuthorizedChatFillsSlot(t *testing.T) {
	slot := service.NewResponseSlot()
	relay := service.NewControlRelay(slot, nil, "42", discardLogger())
	token := slot.Arm()

	if err := relay.HandleControlMessage(context.Background(), model.NewControlMessage("42", "12345")); err != nil {
		t.Fatalf("HandleControlMessage: %v", err)
	}

	got, err := slot.Wait(context.Background(), token, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got != "12345" {
		t.Errorf("slot value = %q, want %q", got, "12345")
	}
}

func TestRelay_MostRecentTextWins(t *testing.T) {
	slot := service.NewResponseSlot()
	relay := service.NewControlRelay(slot, nil, "42", discardLogger())
	token := slot.Arm()

	_ = relay.HandleControlMessage(context.Background(), model.NewControlMessage("42", "old"))
	_ = relay.HandleControlMessage(context.Background(), model.NewControlMessage("42", "new"))

	got, err := slot.Wait(context.Background(), token, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got != "new" {
		t.Errorf("slot value = %q, want most recent %q", got, "new")
	}
}

func TestRelay_UnauthorizedChatLeavesSlotUntouched(t *testing.T) {
	slot := service.NewResponseSlot()
	control := &mockControl{}
	relay := service.NewControlRelay(slot, control, "42", discardLogger())
	token := slot.Arm()

	if err := relay.HandleControlMessage(context.Background(), model.NewControlMessage("666", "intrusion")); err != nil {
		t.Fatalf("HandleControlMessage: %v", err)
	}

	// Slot must not become ready.
	_, err := slot.Wait(context.Background(), token, 20*time.Millisecond)
	if err != service.ErrInputTimeout {
		t.Errorf("Wait error = %v, want timeout (slot untouched)", err)
	}

	// A rejection notice went back to the unexpected sender.
	msgs := control.messages()
	if len(msgs) != 1 {
		t.Fatalf("rejection notices = %d, want 1", len(msgs))
	}
	if msgs[0].ChatID != "666" {
		t.Errorf("notice chat = %q, want 666", msgs[0].ChatID)
	}
}

func TestRelay_StaleInputDiscarded(t *testing.T) {
	slot := service.NewResponseSlot()
	relay := service.NewControlRelay(slot, nil, "42", discardLogger())

	// No outstanding request.
	_ = relay.HandleControlMessage(context.Background(), model.NewControlMessage("42", "unsolicited"))

	// A later request must not be satisfied by the stale input.
	token := slot.Arm()
	_, err := slot.Wait(context.Background(), token, 20*time.Millisecond)
	if err != service.ErrInputTimeout {
		t.Errorf("Wait error = %v, want timeout (stale input discarded)", err)
	}
}
