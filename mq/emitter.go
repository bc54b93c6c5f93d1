package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"nailbar/models"
	"nailbar/rdx"
)

const channel = "booking-events"

// Event names
const (
	EvBookingCreated   = "booking_created"
	EvBookingConfirmed = "booking_confirmed"
	EvBookingReleased  = "booking_released"
	EvSlotRepaired     = "slot_repaired"
	EvReminderDue      = "reminder_due"
)

// Emit publishes a booking lifecycle event to Redis. Delivery is best
// effort; the booking write has already committed when Emit runs.
func Emit(ctx context.Context, name string, ev models.Event) {
	ev.Name = name
	if ev.At == 0 {
		ev.At = time.Now().Unix()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", name, err)
		return
	}
}

// StartNotifierWorker consumes booking events. The actual mailer lives
// outside this service; here we only log what a notifier would act on.
func StartNotifierWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[NotifierWorker] Listening for booking events...")

	for msg := range ch {
		var ev models.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[NotifierWorker] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[NotifierWorker] %s booking=%s code=%s tech=%s %s %s",
			ev.Name, ev.BookingID, ev.Code, ev.TechID, ev.Date, ev.Time)
	}
}
