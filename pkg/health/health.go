package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/RowanMueller/ai-production/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check represents a health check function
type Check func() (Status, string, error)

// Checker manages health checks for the system
type Checker struct {
	checks     map[string]Check
	components map[string]*Component
	mutex      sync.RWMutex
	log        *logger.Logger
	startTime  time.Time
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger) *Checker {
	checker := &Checker{
		checks:     make(map[string]Check),
		components: make(map[string]*Component),
		log:        log,
		startTime:  time.Now(),
	}

	checker.RegisterCheck("self", func() (Status, string, error) {
		return StatusUp, "Gateway is running", nil
	})

	return checker
}

// RegisterCheck registers a new health check
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = check
	c.components[name] = &Component{
		Name:   name,
		Status: StatusUp,
	}
}

// RunChecks executes all registered checks and returns the component snapshots
func (c *Checker) RunChecks() []Component {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result := make([]Component, 0, len(c.checks))
	for name, check := range c.checks {
		status, description, err := check()
		component := c.components[name]
		component.Status = status
		component.Description = description
		component.LastChecked = time.Now()
		if err != nil {
			component.Error = err.Error()
		} else {
			component.Error = ""
		}
		result = append(result, *component)
	}
	return result
}

// Overall reduces component statuses to a single status: down wins over
// degraded, degraded wins over up.
func Overall(components []Component) Status {
	overall := StatusUp
	for _, component := range components {
		switch component.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Handler returns a gin handler serving the liveness report
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		components := c.RunChecks()
		overall := Overall(components)

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":     overall,
			"service":    "ai-stock-gateway",
			"uptime":     time.Since(c.startTime).String(),
			"timestamp":  time.Now().Format(time.RFC3339),
			"components": components,
		})
	}
}
