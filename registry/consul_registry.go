package registry

import (
	"fmt"
	"sms-backend/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

// Ensure consulRegistry implements ServiceRegistry
var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry creates a new registry backed by Consul.
func NewConsulRegistry(logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = config.AppConfig.Consul.Address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	// Ping Consul agent to check connectivity
	_, err = client.Agent().NodeName()
	if err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", consulConfig.Address, err)
	}
	logger.Infow("Successfully connected to Consul agent", "address", consulConfig.Address)

	return &consulRegistry{
		client: client,
		logger: logger.Named("ConsulRegistry"),
	}, nil
}

// Register registers a service instance with Consul, including a health check.
func (r *consulRegistry) Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      id,      // Unique ID for this service instance
		Name:    name,    // Service Name (e.g., "sms-backend")
		Tags:    tags,    // Optional tags
		Port:    port,    // Service port
		Address: address, // Service IP address or hostname
		Check:   check,   // Health Check configuration
	}

	err := r.client.Agent().ServiceRegister(reg)
	if err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", id, "service_name", name, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", id, err)
	}
	r.logger.Infow("Successfully registered service with Consul", "service_id", id, "service_name", name, "address", address, "port", port)
	return nil
}

// Deregister removes a service instance from Consul.
func (r *consulRegistry) Deregister(id string) error {
	err := r.client.Agent().ServiceDeregister(id)
	if err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Successfully deregistered service from Consul", "service_id", id)
	return nil
}

// CreateHTTPCheck creates a Consul HTTP health check configuration.
// serviceHost: The address Consul should *hit* for the check (usually localhost or container IP).
// checkPath: The HTTP path for the health check (e.g., "/healthz").
// interval: How often to run the check (e.g., "10s").
// timeout: How long to wait for a response (e.g., "1s").
func CreateHTTPCheck(serviceID, serviceHost string, servicePort int, checkPath string, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           fmt.Sprintf("http://%s:%d%s", serviceHost, servicePort, checkPath),
		Method:                         "GET",
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m", // Automatically deregister after 1 minute of being critical
	}
}
