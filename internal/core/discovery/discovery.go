package discovery

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/pkg/version"
)

const serviceType = "_brightpanel._tcp"

// Service announces the panel over mDNS so companion clients on the local
// network can find it without configuration.
type Service struct {
	server *zeroconf.Server
	logger *logrus.Logger
}

// Register announces the service on all interfaces. instance defaults to the
// hostname when empty.
func Register(instance string, port int, logger *logrus.Logger) (*Service, error) {
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "brightpanel"
		}
		instance = fmt.Sprintf("brightpanel-%s", hostname)
	}

	txt := []string{
		"version=" + version.GetVersion(),
		"api=/api/v1",
	}

	server, err := zeroconf.Register(instance, serviceType, "local.", port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns registration failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"instance": instance,
		"service":  serviceType,
		"port":     port,
	}).Info("mDNS service registered")

	return &Service{server: server, logger: logger}, nil
}

// Shutdown withdraws the mDNS announcement.
func (s *Service) Shutdown() {
	if s.server != nil {
		s.server.Shutdown()
		s.logger.Info("mDNS service withdrawn")
	}
}
