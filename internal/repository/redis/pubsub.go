package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Change tells a customer's open dashboards that their data moved on.
type Change struct {
	Type       string `json:"type"`
	CustomerID string `json:"customerId"`
	BookingID  string `json:"bookingId,omitempty"`
	TempID     string `json:"tempId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	TsUnix     int64  `json:"tsUnix"`
}

const (
	ChangeBookings    = "bookings_changed"
	ChangeBidRequests = "bid_requests_changed"
)

// CustomerPubSub fans change notifications out over one channel per
// customer.
type CustomerPubSub struct {
	rdb *redis.Client
}

func NewCustomerPubSub(rdb *redis.Client) *CustomerPubSub {
	return &CustomerPubSub{rdb: rdb}
}

func (p *CustomerPubSub) PublishBookingsChanged(ctx context.Context, customerID, bookingID, tempID string) error {
	return p.publish(ctx, Change{
		Type:       ChangeBookings,
		CustomerID: customerID,
		BookingID:  bookingID,
		TempID:     tempID,
	})
}

func (p *CustomerPubSub) PublishBidRequestsChanged(ctx context.Context, customerID, requestID string) error {
	return p.publish(ctx, Change{
		Type:       ChangeBidRequests,
		CustomerID: customerID,
		RequestID:  requestID,
	})
}

func (p *CustomerPubSub) publish(ctx context.Context, msg Change) error {
	msg.TsUnix = time.Now().Unix()

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, ChannelCustomer(msg.CustomerID), b).Err()
}

// Subscribe calls handler for every change of the customer until ctx is
// done or the subscription is closed.
func (p *CustomerPubSub) Subscribe(
	ctx context.Context,
	customerID string,
	handler func(ctx context.Context, ch Change),
) error {
	sub := p.rdb.Subscribe(ctx, ChannelCustomer(customerID))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(64))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(m.Payload), &c); err == nil && c.Type != "" {
				handler(ctx, c)
			}
		}
	}
}
