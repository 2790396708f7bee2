// Package integration carries the deployable collector artifacts served
// to operators from the dashboard.
package integration

import (
	_ "embed"
	"strings"
)

//go:embed collector.py
var collectorScript string

const endpointPlaceholder = "{{API_ENDPOINT}}"

// DefaultEndpoint is substituted when no public URL is configured.
const DefaultEndpoint = "http://YOUR_SERVER_IP:3000/api/v1/events"

// Step is one numbered block of the deployment guide.
type Step struct {
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Commands []string `json:"commands,omitempty"`
}

// Guide bundles the collector source with its deployment instructions.
type Guide struct {
	Title       string `json:"title"`
	Script      string `json:"script"`
	ServiceUnit string `json:"serviceUnit"`
	Steps       []Step `json:"steps"`
}

const serviceUnit = `[Unit]
Description=CyberVision SIEM Smart Agent
After=network-online.target

[Service]
ExecStart=/usr/bin/python3 /opt/cybervision/collector.py
Restart=on-failure
User=root

[Install]
WantedBy=multi-user.target
`

// Script returns the collector source with the ingestion endpoint filled in.
// An empty endpoint keeps the placeholder operators replace by hand.
func Script(endpoint string) string {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return strings.ReplaceAll(collectorScript, endpointPlaceholder, endpoint)
}

// CollectorGuide builds the full deployment guide payload.
func CollectorGuide(endpoint string) Guide {
	return Guide{
		Title:       "CentOS 9 Deployment",
		Script:      Script(endpoint),
		ServiceUnit: serviceUnit,
		Steps: []Step{
			{
				Title:  "Dependencies",
				Detail: "Install the Python runtime and the collector's libraries.",
				Commands: []string{
					"dnf install python3-pip -y",
					"pip3 install google-generativeai",
					"pip3 install requests",
				},
			},
			{
				Title:  "Systemd Service",
				Detail: "Install the unit so the agent starts at boot.",
				Commands: []string{
					"install -D -m 0755 collector.py /opt/cybervision/collector.py",
					"nano /etc/systemd/system/cv-agent.service",
					"systemctl enable --now cv-agent",
				},
			},
			{
				Title:  "Connectivity",
				Detail: "Set GEMINI_API_KEY, paste an agent token from the dashboard into API_KEY, point API_ENDPOINT at this server, and verify the agent can read alerts.json.",
			},
		},
	}
}
