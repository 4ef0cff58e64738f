package constants

import (
	"path/filepath"
	"time"
)

// Remote filesystem layout.
const (
	AppsDir            = "/opt/apps"
	NginxDir           = "/etc/nginx"
	NginxSitesAvail    = NginxDir + "/sites-available"
	NginxSitesEnabled  = NginxDir + "/sites-enabled"
	NginxDefaultAvail  = NginxSitesAvail + "/default"
	NginxDefaultActive = NginxSitesEnabled + "/default"
)

// ComposeFiles lists the multi-service descriptor filename variants,
// in detection order.
var ComposeFiles = []string{"docker-compose.yml", "docker-compose.yaml"}

// Dockerfile is the single-service build descriptor.
const Dockerfile = "Dockerfile"

// Timing defaults.
const (
	SSHConnectTimeout  = 30 * time.Second
	DeploySettleDelay  = 5 * time.Second
	HealthProbeTimeout = 10 * time.Second
)

// AppDir returns the remote application directory for a deployment identity.
func AppDir(identity string) string {
	return filepath.Join(AppsDir, identity)
}

// ContainerName returns the reserved single-container name for an identity.
func ContainerName(identity string) string {
	return identity + "_app"
}

// ImageName returns the image tag built for the single-Dockerfile path.
func ImageName(identity string) string {
	return identity + ":latest"
}

// SiteAvailablePath returns the nginx sites-available path for an identity.
func SiteAvailablePath(identity string) string {
	return filepath.Join(NginxSitesAvail, identity+".conf")
}

// SiteEnabledPath returns the nginx sites-enabled symlink path for an identity.
func SiteEnabledPath(identity string) string {
	return filepath.Join(NginxSitesEnabled, identity+".conf")
}
