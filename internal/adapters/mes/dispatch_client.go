package mes

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/factoryplan/aps-go/internal/domain/workorder"
)

// Transport delivers a work order to the MES endpoint. Implementations own
// the wire protocol; the client only paces calls and tracks order status.
type Transport interface {
	SendPackerOrder(ctx context.Context, order workorder.PackerOrder) error
	SendFeederOrder(ctx context.Context, order workorder.FeederOrder) error
}

// NoopTransport accepts every order without sending anything. Used when no
// MES endpoint is configured.
type NoopTransport struct{}

func (NoopTransport) SendPackerOrder(ctx context.Context, order workorder.PackerOrder) error {
	return nil
}

func (NoopTransport) SendFeederOrder(ctx context.Context, order workorder.FeederOrder) error {
	return nil
}

// DispatchClient pushes the PLANNED orders of a completed task to the MES
// and marks them DISPATCHED. Calls are paced by a token-bucket limiter so a
// large task cannot flood the endpoint.
type DispatchClient struct {
	orders    workorder.Repository
	transport Transport
	limiter   *rate.Limiter
}

// NewDispatchClient builds a client sending at most ratePerSecond orders per
// second with a burst of one.
func NewDispatchClient(orders workorder.Repository, transport Transport, ratePerSecond float64) *DispatchClient {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &DispatchClient{
		orders:    orders,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// DispatchTask sends every PLANNED packer order of the task and returns how
// many were dispatched. Orders already past PLANNED are skipped. The first
// transport or persistence failure aborts the run; already-dispatched orders
// keep their status.
func (c *DispatchClient) DispatchTask(ctx context.Context, taskID string) (int, error) {
	orders, err := c.orders.FindPackerOrdersByTaskID(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("failed to load orders for task %s: %w", taskID, err)
	}

	dispatched := 0
	for _, order := range orders {
		if order.Status != workorder.StatusPlanned {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return dispatched, err
		}
		if err := c.transport.SendPackerOrder(ctx, order); err != nil {
			return dispatched, fmt.Errorf("failed to send order %s: %w", order.PlanID, err)
		}
		if err := c.orders.UpdatePackerOrderStatus(ctx, order.PlanID, workorder.StatusDispatched); err != nil {
			return dispatched, err
		}
		dispatched++
	}
	return dispatched, nil
}
