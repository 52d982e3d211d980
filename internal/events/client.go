package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	EventContractCreated    = "lease.contract.created"
	EventContractUpdated    = "lease.contract.updated"
	EventContractTerminated = "lease.contract.terminated"
	EventInvoiceCreated     = "lease.invoice.created"
	EventInvoicePaid        = "lease.invoice.paid"
	EventInvoiceDeleted     = "lease.invoice.deleted"
	EventMaintenanceFiled   = "lease.maintenance.filed"
)

// ContractEvent is published on contract lifecycle transitions.
type ContractEvent struct {
	EventType  string    `json:"event_type"`
	ContractID string    `json:"contract_id"`
	RoomID     string    `json:"room_id"`
	TenantID   string    `json:"tenant_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// InvoiceEvent is published when an invoice is created, paid or deleted.
type InvoiceEvent struct {
	EventType     string    `json:"event_type"`
	InvoiceID     string    `json:"invoice_id"`
	ContractID    string    `json:"contract_id"`
	BillingPeriod string    `json:"billing_period"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// MaintenanceEvent is published when a tenant files a maintenance request.
type MaintenanceEvent struct {
	EventType string    `json:"event_type"`
	RequestID string    `json:"request_id"`
	RoomID    string    `json:"room_id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Client wraps the NATS connection
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Config holds NATS connection configuration
type Config struct {
	URL string
}

// DefaultConfig returns the default NATS configuration
func DefaultConfig() *Config {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}
	return &Config{
		URL: url,
	}
}

// NewClient creates a new NATS client
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log.Printf("[NATS] Connecting to %s", cfg.URL)

	opts := []nats.Option{
		nats.Name("property-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATS] Disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] Connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// Ensure the lease events stream exists.
	// LimitsPolicy so the billing and notification consumers can both read it.
	_, err = js.AddStream(&nats.StreamConfig{
		Name:        "LEASE_EVENTS",
		Description: "Stream for lease lifecycle events",
		Subjects:    []string{"lease.>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      24 * time.Hour * 7,
		MaxMsgs:     100000,
		Discard:     nats.DiscardOld,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		log.Printf("[NATS] Warning: Could not create stream (may already exist): %v", err)
	}

	log.Printf("[NATS] Connected successfully to %s", cfg.URL)

	return &Client{
		conn: conn,
		js:   js,
	}, nil
}

// PublishContractEvent publishes a contract lifecycle event with retry logic
func (c *Client) PublishContractEvent(ctx context.Context, eventType string, event *ContractEvent) error {
	if c == nil || c.js == nil {
		log.Printf("[NATS] Client not initialized, skipping publish")
		return nil
	}

	event.EventType = eventType
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return c.publishWithRetry(ctx, eventType, data)
}

// PublishInvoiceEvent publishes an invoice event
func (c *Client) PublishInvoiceEvent(ctx context.Context, eventType string, event *InvoiceEvent) error {
	if c == nil || c.js == nil {
		log.Printf("[NATS] Client not initialized, skipping publish")
		return nil
	}

	event.EventType = eventType
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return c.publishWithRetry(ctx, eventType, data)
}

// PublishMaintenanceEvent publishes a maintenance request event
func (c *Client) PublishMaintenanceEvent(ctx context.Context, event *MaintenanceEvent) error {
	if c == nil || c.js == nil {
		log.Printf("[NATS] Client not initialized, skipping publish")
		return nil
	}

	event.EventType = EventMaintenanceFiled
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return c.publishWithRetry(ctx, EventMaintenanceFiled, data)
}

// publishWithRetry publishes through JetStream with exponential backoff.
func (c *Client) publishWithRetry(ctx context.Context, subject string, data []byte) error {
	var ack *nats.PubAck
	var err error
	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ack, err = c.js.Publish(subject, data)
		if err == nil {
			break
		}
		log.Printf("[NATS] Attempt %d/%d: Failed to publish %s event: %v", attempt, maxRetries, subject, err)
		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while retrying publish: %w", ctx.Err())
			case <-time.After(backoff):
				continue
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, err)
	}

	log.Printf("[NATS] Published %s event (seq: %d)", subject, ack.Sequence)
	return nil
}

// Close drains and closes the NATS connection
func (c *Client) Close() {
	if c != nil && c.conn != nil {
		c.conn.Close()
	}
}
