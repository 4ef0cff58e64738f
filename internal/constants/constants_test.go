package constants

import "testing"

func TestAppDir(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		expected string
	}{
		{"simple name", "sampleapi", "/opt/apps/sampleapi"},
		{"hyphenated name", "sample-api", "/opt/apps/sample-api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppDir(tt.identity)
			if got != tt.expected {
				t.Errorf("AppDir(%q) = %q, want %q", tt.identity, got, tt.expected)
			}
		})
	}
}

func TestContainerName(t *testing.T) {
	got := ContainerName("sample-api")
	if got != "sample-api_app" {
		t.Errorf("ContainerName() = %q, want sample-api_app", got)
	}
}

func TestImageName(t *testing.T) {
	got := ImageName("sample-api")
	if got != "sample-api:latest" {
		t.Errorf("ImageName() = %q, want sample-api:latest", got)
	}
}

func TestSitePaths(t *testing.T) {
	if got := SiteAvailablePath("sample-api"); got != "/etc/nginx/sites-available/sample-api.conf" {
		t.Errorf("SiteAvailablePath() = %q", got)
	}
	if got := SiteEnabledPath("sample-api"); got != "/etc/nginx/sites-enabled/sample-api.conf" {
		t.Errorf("SiteEnabledPath() = %q", got)
	}
}

func TestConstants(t *testing.T) {
	if AppsDir != "/opt/apps" {
		t.Errorf("AppsDir = %q, want /opt/apps", AppsDir)
	}
	if NginxSitesAvail != "/etc/nginx/sites-available" {
		t.Errorf("NginxSitesAvail = %q", NginxSitesAvail)
	}
	if NginxSitesEnabled != "/etc/nginx/sites-enabled" {
		t.Errorf("NginxSitesEnabled = %q", NginxSitesEnabled)
	}
	if len(ComposeFiles) != 2 {
		t.Fatalf("expected 2 compose file variants, got %d", len(ComposeFiles))
	}
	if ComposeFiles[0] != "docker-compose.yml" || ComposeFiles[1] != "docker-compose.yaml" {
		t.Errorf("ComposeFiles = %v", ComposeFiles)
	}
}
