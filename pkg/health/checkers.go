package health

import (
	"context"
	"time"

	"github.com/docuflow/dataapi/pkg/dataapi"
)

const defaultCheckTimeout = 5 * time.Second

// DataAPIChecker verifies connectivity to the remote data API by issuing a
// minimal findOne against a probe collection. The call succeeding with any
// JSON body counts as healthy; only transport failures mark the check
// unhealthy.
type DataAPIChecker struct {
	name       string
	dispatcher *dataapi.Dispatcher[dataapi.Endpoint]
	collection string
	timeout    time.Duration
}

// NewDataAPIChecker creates a checker probing the given collection through
// the dispatcher.
func NewDataAPIChecker(name string, dispatcher *dataapi.Dispatcher[dataapi.Endpoint], collection string, timeout time.Duration) *DataAPIChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &DataAPIChecker{
		name:       name,
		dispatcher: dispatcher,
		collection: collection,
		timeout:    timeout,
	}
}

// Check dispatches the probe and reports the outcome.
func (c *DataAPIChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := dataapi.ForCollection(c.collection)
	req.SetEndpoint(dataapi.EndpointFindOne)
	req.SetQuery(dataapi.Query{"filter": map[string]interface{}{}})

	_, err := c.dispatcher.Dispatch(checkCtx, req)
	duration := time.Since(start)

	if err != nil {
		return CheckResult{
			Name:      c.name,
			Status:    StatusUnhealthy,
			Error:     err.Error(),
			Timestamp: time.Now(),
			Duration:  duration,
			Metadata:  map[string]interface{}{"collection": c.collection},
		}
	}
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "data api reachable",
		Timestamp: time.Now(),
		Duration:  duration,
		Metadata:  map[string]interface{}{"collection": c.collection},
	}
}

// Name returns the name of the health check
func (c *DataAPIChecker) Name() string {
	return c.name
}

// PingChecker always reports healthy. Useful as a liveness probe.
type PingChecker struct {
	name string
}

// NewPingChecker creates a new ping checker
func NewPingChecker(name string) *PingChecker {
	return &PingChecker{name: name}
}

// Check always returns healthy status
func (c *PingChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "alive",
		Timestamp: time.Now(),
	}
}

// Name returns the name of the health check
func (c *PingChecker) Name() string {
	return c.name
}
